package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/system-mcp/internal/audit"
	"github.com/1broseidon/system-mcp/internal/desktop"
	"github.com/1broseidon/system-mcp/internal/platform"
)

// toolFunc runs one tool call. The returned fields are written to the
// audit log.
type toolFunc[In, Out any] func(ctx context.Context, in In) (Out, map[string]any, error)

// addTool registers fn under spec, wrapping it with metrics, audit logging
// and error classification.
func addTool[In, Out any](s *Server, spec ToolSpec, fn toolFunc[In, Out]) {
	tool := &mcpsdk.Tool{
		Name:        spec.Name,
		Title:       spec.Title,
		Description: spec.Description,
		Annotations: &mcpsdk.ToolAnnotations{
			Title:        spec.Title,
			ReadOnlyHint: spec.ReadOnly,
		},
	}
	if spec.InputSchema != nil {
		tool.InputSchema = spec.InputSchema
	}

	mcpsdk.AddTool(s.mcpServer, tool, func(ctx context.Context, _ *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, Out, error) {
		start := time.Now()
		out, fields, err := fn(ctx, in)
		elapsed := time.Since(start)
		s.metrics.Observe(spec.Name, err, elapsed)

		if err != nil {
			kind := platform.Kind(err)
			s.logger.Debug("tool call failed", "tool", spec.Name, "kind", kind, "error", err)
			if fields == nil {
				fields = map[string]any{}
			}
			fields["kind"] = kind
			fields["error"] = err.Error()
			s.audit.Record(audit.CategoryError, spec.Name, fields)
			var zero Out
			return nil, zero, toolError(kind, err)
		}

		if fields == nil {
			fields = map[string]any{}
		}
		fields["duration_ms"] = elapsed.Milliseconds()
		s.audit.Record(spec.Category, spec.Name, fields)
		return nil, out, nil
	})
}

// toolError renders err as "<kind>: <message>".
func toolError(kind string, err error) error {
	return fmt.Errorf("%s: %w", kind, err)
}

func (s *Server) handleMouseGetPosition(ctx context.Context, _ MouseGetPositionInput) (PointOutput, map[string]any, error) {
	pt, err := s.desktop.GetPosition(ctx)
	if err != nil {
		return PointOutput{}, nil, err
	}
	return PointOutput{X: pt.X, Y: pt.Y}, map[string]any{"x": pt.X, "y": pt.Y}, nil
}

func (s *Server) handleMouseSetPosition(ctx context.Context, in MouseSetPositionInput) (StatusOutput, map[string]any, error) {
	fields := map[string]any{"x": in.X, "y": in.Y}
	if err := s.desktop.SetPosition(ctx, in.X, in.Y); err != nil {
		return StatusOutput{}, fields, err
	}
	return StatusOutput{Status: fmt.Sprintf("moved to %d,%d", in.X, in.Y)}, fields, nil
}

func (s *Server) handleMouseClick(ctx context.Context, in MouseClickInput) (StatusOutput, map[string]any, error) {
	fields := map[string]any{"button": in.Button}
	button, err := s.desktop.Click(ctx, in.Button)
	if err != nil {
		return StatusOutput{}, fields, err
	}
	fields["button"] = button.String()
	return StatusOutput{Status: "clicked " + button.String()}, fields, nil
}

func (s *Server) handleWindowList(ctx context.Context, in WindowListInput) (WindowListOutput, map[string]any, error) {
	opts := desktop.ListOptions{
		VisibleOnly: boolOr(in.VisibleOnly, true),
		TitleOnly:   boolOr(in.TitleOnly, true),
	}
	fields := map[string]any{"visible_only": opts.VisibleOnly, "title_only": opts.TitleOnly}
	windows, err := s.desktop.ListWindows(ctx, opts)
	if err != nil {
		return WindowListOutput{}, fields, err
	}
	fields["count"] = len(windows)
	return WindowListOutput{Windows: windowRecords(windows)}, fields, nil
}

func (s *Server) handleWindowFindByTitle(ctx context.Context, in WindowFindInput) (WindowListOutput, map[string]any, error) {
	fields := map[string]any{"substring": in.Substring}
	windows, err := s.desktop.FindWindowsByTitle(ctx, in.Substring)
	if err != nil {
		return WindowListOutput{}, fields, err
	}
	fields["count"] = len(windows)
	return WindowListOutput{Windows: windowRecords(windows)}, fields, nil
}

func (s *Server) handleWindowMove(ctx context.Context, in WindowMoveInput) (StatusOutput, map[string]any, error) {
	fields := map[string]any{"hwnd": in.Hwnd, "x": in.X, "y": in.Y}
	if in.Width != nil {
		fields["width"] = *in.Width
	}
	if in.Height != nil {
		fields["height"] = *in.Height
	}
	if err := s.desktop.MoveWindow(ctx, platform.WindowID(in.Hwnd), in.X, in.Y, in.Width, in.Height); err != nil {
		return StatusOutput{}, fields, err
	}
	return StatusOutput{Status: "ok"}, fields, nil
}

func (s *Server) handleWindowActivate(ctx context.Context, in WindowActivateInput) (StatusOutput, map[string]any, error) {
	fields := map[string]any{"hwnd": in.Hwnd}
	if err := s.desktop.Activate(ctx, platform.WindowID(in.Hwnd)); err != nil {
		return StatusOutput{}, fields, err
	}
	return StatusOutput{Status: "ok"}, fields, nil
}

func (s *Server) handleElementUnderCursor(ctx context.Context, _ CursorInput) (ElementOutput, map[string]any, error) {
	pt, err := s.desktop.GetPosition(ctx)
	if err != nil {
		return ElementOutput{}, nil, err
	}
	fields := map[string]any{"x": pt.X, "y": pt.Y}
	info, err := s.desktop.ElementAt(ctx, pt.X, pt.Y)
	if err != nil {
		return ElementOutput{}, fields, err
	}
	fields["found"] = info != nil
	return ElementOutput{Element: elementRecord(info)}, fields, nil
}

func (s *Server) handleTextUnderCursor(ctx context.Context, _ CursorInput) (TextOutput, map[string]any, error) {
	pt, err := s.desktop.GetPosition(ctx)
	if err != nil {
		return TextOutput{}, nil, err
	}
	fields := map[string]any{"x": pt.X, "y": pt.Y}
	text, err := s.desktop.TextAt(ctx, pt.X, pt.Y)
	if err != nil {
		return TextOutput{}, fields, err
	}
	fields["found"] = text != nil
	if text != nil {
		fields["text_length"] = len(*text)
		if s.audit.IncludeContent() {
			fields["text"] = s.audit.Preview(*text)
		}
	}
	return TextOutput{Text: text}, fields, nil
}

func (s *Server) handleTakeScreenshot(ctx context.Context, in ScreenshotInput) (ScreenshotOutput, map[string]any, error) {
	req := desktop.CaptureRequest{
		Monitor: in.Monitor,
		Region: desktop.RegionSpec{
			Left:   in.Left,
			Top:    in.Top,
			Width:  in.Width,
			Height: in.Height,
		},
		Format:  in.Format,
		Quality: in.Quality,
	}
	fields := map[string]any{"format": in.Format}
	if in.Monitor != nil {
		fields["monitor"] = *in.Monitor
	}
	if in.Left != nil || in.Top != nil || in.Width != nil || in.Height != nil {
		fields["region"] = true
	}

	shot, err := s.desktop.Capture(ctx, req)
	if err != nil {
		return ScreenshotOutput{}, fields, err
	}
	fields["format"] = shot.Format
	fields["width"] = shot.Width
	fields["height"] = shot.Height
	fields["bytes"] = len(shot.Data)
	return ScreenshotOutput{
		Width:      shot.Width,
		Height:     shot.Height,
		Format:     shot.Format,
		DataBase64: shot.Base64(),
	}, fields, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func windowRecords(windows []desktop.WindowInfo) []WindowRecord {
	out := make([]WindowRecord, 0, len(windows))
	for _, w := range windows {
		out = append(out, WindowRecord{
			Hwnd:   uint64(w.Handle),
			Title:  w.Title,
			Left:   w.Bounds.Left,
			Top:    w.Bounds.Top,
			Width:  w.Bounds.Width,
			Height: w.Bounds.Height,
		})
	}
	return out
}

func elementRecord(info *desktop.ElementInfo) *ElementRecord {
	if info == nil {
		return nil
	}
	rec := &ElementRecord{
		Name:        info.Name,
		ControlType: info.ControlType,
		ClassName:   info.ClassName,
		Bounding:    info.Bounding,
	}
	if info.RuntimeID != nil {
		id := info.RuntimeID
		rec.RuntimeID = &id
	}
	if info.Handle != nil {
		hwnd := uint64(*info.Handle)
		rec.Hwnd = &hwnd
	}
	return rec
}
