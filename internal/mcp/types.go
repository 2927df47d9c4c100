package mcp

// MouseGetPositionInput is the input for the mouse_get_position tool.
type MouseGetPositionInput struct{}

// PointOutput is a screen coordinate.
type PointOutput struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StatusOutput carries a short human-readable result.
type StatusOutput struct {
	Status string `json:"status"`
}

// MouseSetPositionInput is the input for the mouse_set_position tool.
type MouseSetPositionInput struct {
	X int `json:"x" jsonschema:"Target x coordinate in screen space"`
	Y int `json:"y" jsonschema:"Target y coordinate in screen space"`
}

// MouseClickInput is the input for the mouse_click tool.
type MouseClickInput struct {
	Button string `json:"button,omitempty" jsonschema:"Mouse button to click at the current cursor position; defaults to left"`
}

// WindowListInput is the input for the window_list tool.
type WindowListInput struct {
	VisibleOnly *bool `json:"visible_only,omitempty" jsonschema:"Only include visible windows; defaults to true"`
	TitleOnly   *bool `json:"title_only,omitempty" jsonschema:"Only include windows with a non-empty title; defaults to true"`
}

// WindowRecord describes one top-level window.
type WindowRecord struct {
	Hwnd   uint64 `json:"hwnd"`
	Title  string `json:"title"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WindowListOutput is the output for window_list and window_find_by_title.
type WindowListOutput struct {
	Windows []WindowRecord `json:"windows"`
}

// WindowFindInput is the input for the window_find_by_title tool.
type WindowFindInput struct {
	Substring string `json:"substring" jsonschema:"Case-insensitive substring to match against window titles. Empty matches every visible window."`
}

// WindowMoveInput is the input for the window_move tool.
type WindowMoveInput struct {
	Hwnd   uint64 `json:"hwnd" jsonschema:"Window handle from window_list"`
	X      int    `json:"x" jsonschema:"New left edge in screen space"`
	Y      int    `json:"y" jsonschema:"New top edge in screen space"`
	Width  *int   `json:"width,omitempty" jsonschema:"New width; defaults to the current width"`
	Height *int   `json:"height,omitempty" jsonschema:"New height; defaults to the current height"`
}

// WindowActivateInput is the input for the window_activate tool.
type WindowActivateInput struct {
	Hwnd uint64 `json:"hwnd" jsonschema:"Window handle from window_list"`
}

// CursorInput is the input for tools that act at the cursor position.
type CursorInput struct{}

// ElementRecord describes an accessibility element. Nil fields could not be
// read.
type ElementRecord struct {
	Name        *string `json:"name"`
	ControlType *string `json:"control_type"`
	ClassName   *string `json:"class_name"`
	Bounding    *[4]int `json:"bounding" jsonschema:"left, top, right, bottom"`
	RuntimeID   *[]int  `json:"runtime_id"`
	Hwnd        *uint64 `json:"hwnd"`
}

// ElementOutput is the output for element_under_cursor.
type ElementOutput struct {
	Element *ElementRecord `json:"element"`
}

// TextOutput is the output for text_under_cursor.
type TextOutput struct {
	Text *string `json:"text"`
}

// ScreenshotInput is the input for the take_screenshot tool.
type ScreenshotInput struct {
	Monitor *int   `json:"monitor,omitempty" jsonschema:"Monitor index: 0 is the whole virtual screen and 1..N are monitors from left to right. Ignored when a region is given."`
	Left    *int   `json:"left,omitempty" jsonschema:"Region left edge; left, top, width and height must be given together"`
	Top     *int   `json:"top,omitempty" jsonschema:"Region top edge"`
	Width   *int   `json:"width,omitempty" jsonschema:"Region width in pixels"`
	Height  *int   `json:"height,omitempty" jsonschema:"Region height in pixels"`
	Format  string `json:"fmt,omitempty" jsonschema:"Image format; defaults to png unless screenshot.default_format is configured"`
	Quality *int   `json:"quality,omitempty" jsonschema:"JPEG quality from 1 to 100; ignored for png. Defaults to screenshot.jpeg_quality (90)."`
}

// ScreenshotOutput is the output for the take_screenshot tool.
type ScreenshotOutput struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Format     string `json:"format"`
	DataBase64 string `json:"data_base64"`
}
