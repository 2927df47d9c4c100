package mcp

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// inputSchema infers the schema of T and lets customize adjust its
// properties, e.g. to add enums the struct tags cannot carry. Defaults are
// applied by the handlers, not the schema: "arguments": null decodes to a
// nil map that cannot take them.
func inputSchema[T any](customize func(props map[string]*jsonschema.Schema)) (*jsonschema.Schema, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, err
	}
	if customize != nil {
		if s.Properties == nil {
			s.Properties = map[string]*jsonschema.Schema{}
		}
		customize(s.Properties)
	}
	return s, nil
}

func setEnum(s *jsonschema.Schema, values ...string) {
	if s == nil {
		return
	}
	s.Enum = make([]any, len(values))
	for i, v := range values {
		s.Enum[i] = v
	}
}

// buildInputSchemas returns the input schema of every tool keyed by name.
func buildInputSchemas() (map[string]*jsonschema.Schema, error) {
	builders := map[string]func() (*jsonschema.Schema, error){
		"mouse_get_position": func() (*jsonschema.Schema, error) {
			return inputSchema[MouseGetPositionInput](nil)
		},
		"mouse_set_position": func() (*jsonschema.Schema, error) {
			return inputSchema[MouseSetPositionInput](nil)
		},
		"mouse_click": func() (*jsonschema.Schema, error) {
			return inputSchema[MouseClickInput](func(p map[string]*jsonschema.Schema) {
				setEnum(p["button"], "left", "right", "middle")
			})
		},
		"window_list": func() (*jsonschema.Schema, error) {
			return inputSchema[WindowListInput](nil)
		},
		"window_find_by_title": func() (*jsonschema.Schema, error) {
			return inputSchema[WindowFindInput](nil)
		},
		"window_move": func() (*jsonschema.Schema, error) {
			return inputSchema[WindowMoveInput](nil)
		},
		"window_activate": func() (*jsonschema.Schema, error) {
			return inputSchema[WindowActivateInput](nil)
		},
		"element_under_cursor": func() (*jsonschema.Schema, error) {
			return inputSchema[CursorInput](nil)
		},
		"text_under_cursor": func() (*jsonschema.Schema, error) {
			return inputSchema[CursorInput](nil)
		},
		"take_screenshot": func() (*jsonschema.Schema, error) {
			return inputSchema[ScreenshotInput](func(p map[string]*jsonschema.Schema) {
				setEnum(p["fmt"], "png", "jpeg")
			})
		},
	}

	out := make(map[string]*jsonschema.Schema, len(builders))
	for name, build := range builders {
		s, err := build()
		if err != nil {
			return nil, fmt.Errorf("%s input schema: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}
