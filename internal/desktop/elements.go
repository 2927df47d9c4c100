package desktop

import (
	"context"

	"github.com/1broseidon/system-mcp/internal/platform"
)

// lookupElement resolves the element at (x, y). Provider faults are logged
// and reported as "no element"; only context cancellation is an error.
func (s *Service) lookupElement(ctx context.Context, x, y int) (platform.Element, error) {
	el, err := s.backend.ElementAt(ctx, x, y)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Debug("element lookup failed", "x", x, "y", y, "error", err)
		return nil, nil
	}
	return el, nil
}

// ElementAt snapshots the topmost accessibility element at (x, y). It
// returns nil when there is none. Each field is read independently and left
// nil when its read fails.
func (s *Service) ElementAt(ctx context.Context, x, y int) (*ElementInfo, error) {
	el, err := s.lookupElement(ctx, x, y)
	if err != nil || el == nil {
		return nil, err
	}
	defer el.Release()

	info := &ElementInfo{
		Name:        optionalString(el.Name),
		ControlType: optionalString(el.ControlType),
		ClassName:   optionalString(el.ClassName),
	}
	if bounds, err := el.Bounds(); err == nil {
		info.Bounding = &bounds
	}
	if id, err := el.RuntimeID(); err == nil && len(id) > 0 {
		info.RuntimeID = id
	}
	if hwnd, err := el.WindowHandle(); err == nil && hwnd != 0 {
		info.Handle = &hwnd
	}
	return info, nil
}

func optionalString(read func() (string, error)) *string {
	v, err := read()
	if err != nil {
		return nil
	}
	return &v
}

// textStrategy is one way of reading displayable text from an element.
type textStrategy struct {
	name string
	read func(platform.Element) (string, error)
}

// textStrategies run in order; the first non-empty result wins.
var textStrategies = []textStrategy{
	{name: "value", read: platform.Element.Value},
	{name: "legacy_name", read: platform.Element.LegacyName},
	{name: "name", read: platform.Element.Name},
}

// TextAt returns the best available text of the element at (x, y), or nil
// when there is no element or none of the strategies yields text.
func (s *Service) TextAt(ctx context.Context, x, y int) (*string, error) {
	el, err := s.lookupElement(ctx, x, y)
	if err != nil || el == nil {
		return nil, err
	}
	defer el.Release()

	for _, strategy := range textStrategies {
		text, err := strategy.read(el)
		if err != nil {
			s.logger.Debug("text strategy failed", "strategy", strategy.name, "error", err)
			continue
		}
		if text != "" {
			return &text, nil
		}
	}
	return nil, nil
}
