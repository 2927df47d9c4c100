package desktop

import (
	"context"

	"github.com/1broseidon/system-mcp/internal/platform"
)

// GetPosition reads the global cursor position.
func (s *Service) GetPosition(ctx context.Context) (Point, error) {
	pt, err := s.backend.CursorPosition(ctx)
	if err != nil {
		return Point{}, err
	}
	return Point{X: pt.X, Y: pt.Y}, nil
}

// SetPosition moves the cursor to an absolute screen position.
func (s *Service) SetPosition(ctx context.Context, x, y int) error {
	return s.backend.SetCursorPosition(ctx, x, y)
}

// Click presses and releases button at the current cursor position. An
// empty button name means left. Unknown names fail before any input is
// injected.
func (s *Service) Click(ctx context.Context, button string) (platform.Button, error) {
	if button == "" {
		button = platform.ButtonLeft.String()
	}
	b, err := platform.ParseButton(button)
	if err != nil {
		return 0, err
	}
	if err := s.backend.Click(ctx, b); err != nil {
		return 0, err
	}
	return b, nil
}
