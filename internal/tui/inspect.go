// Package tui implements the interactive element inspector.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/system-mcp/internal/desktop"
	"github.com/1broseidon/system-mcp/internal/platform"
)

const (
	DefaultInterval = 500 * time.Millisecond
	probeTimeout    = 2 * time.Second
)

// Probe reads the desktop state shown by the inspector. *desktop.Service
// implements it.
type Probe interface {
	GetPosition(ctx context.Context) (desktop.Point, error)
	ListWindows(ctx context.Context, opts desktop.ListOptions) ([]desktop.WindowInfo, error)
	ElementAt(ctx context.Context, x, y int) (*desktop.ElementInfo, error)
	TextAt(ctx context.Context, x, y int) (*string, error)
}

// Snapshot is one reading of the desktop under the cursor.
type Snapshot struct {
	Cursor  desktop.Point
	Window  *desktop.WindowInfo
	Element *desktop.ElementInfo
	Text    *string
	Err     error
	At      time.Time
}

type snapshotMsg Snapshot

type tickMsg struct{}

// TakeSnapshot reads the cursor position and what lies under it. Only a
// failure to read the cursor is fatal to the snapshot; window and element
// lookups degrade to nil.
func TakeSnapshot(ctx context.Context, probe Probe) Snapshot {
	snap := Snapshot{At: time.Now()}
	pt, err := probe.GetPosition(ctx)
	if err != nil {
		snap.Err = err
		return snap
	}
	snap.Cursor = pt

	if el, err := probe.ElementAt(ctx, pt.X, pt.Y); err == nil {
		snap.Element = el
	}
	if text, err := probe.TextAt(ctx, pt.X, pt.Y); err == nil {
		snap.Text = text
	}
	if windows, err := probe.ListWindows(ctx, desktop.ListOptions{VisibleOnly: true, TitleOnly: true}); err == nil {
		snap.Window = windowUnder(windows, pt, snap.Element)
	}
	return snap
}

// windowUnder prefers the element's owning window and otherwise takes the
// first window containing the point.
func windowUnder(windows []desktop.WindowInfo, pt desktop.Point, el *desktop.ElementInfo) *desktop.WindowInfo {
	if el != nil && el.Handle != nil {
		for i := range windows {
			if windows[i].Handle == *el.Handle {
				return &windows[i]
			}
		}
	}
	for i := range windows {
		b := windows[i].Bounds
		r := platform.Rect{X: b.Left, Y: b.Top, Width: b.Width, Height: b.Height}
		if r.Contains(pt.X, pt.Y) {
			return &windows[i]
		}
	}
	return nil
}

// model is the bubbletea model for the inspector.
type model struct {
	ctx      context.Context
	probe    Probe
	interval time.Duration

	snapshot Snapshot
	loaded   bool
	paused   bool

	width  int
	height int
}

func newModel(ctx context.Context, probe Probe, interval time.Duration) model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return model{ctx: ctx, probe: probe, interval: interval}
}

func (m model) probeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, probeTimeout)
		defer cancel()
		return snapshotMsg(TakeSnapshot(ctx, m.probe))
	}
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.probeCmd()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
			if !m.paused {
				return m, m.probeCmd()
			}
			return m, nil
		case "r":
			return m, m.probeCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg:
		m.snapshot = Snapshot(msg)
		m.loaded = true
		if m.paused {
			return m, nil
		}
		return m, m.tickCmd()

	case tickMsg:
		if m.paused {
			return m, nil
		}
		return m, m.probeCmd()
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	detail := "waiting for first reading"
	if m.loaded {
		detail = "updated " + m.snapshot.At.Format("15:04:05.000")
	}
	statusBar := renderStatusBar(!m.paused, detail, width)
	helpBar := renderHelpBar(width)

	var content string
	switch {
	case !m.loaded:
		content = dimStyle.Render("reading desktop...")
	case m.snapshot.Err != nil:
		content = errorStyle.Render("cursor: " + m.snapshot.Err.Error())
	default:
		content = renderSnapshot(m.snapshot)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		"",
		content,
		helpBar,
	)
}

func renderSnapshot(s Snapshot) string {
	sections := []string{
		renderSection("Cursor", [][2]string{
			{"position", value(fmt.Sprintf("%d, %d", s.Cursor.X, s.Cursor.Y))},
		}),
	}

	if w := s.Window; w != nil {
		sections = append(sections, renderSection("Window", [][2]string{
			{"hwnd", value(fmt.Sprintf("0x%x", uint64(w.Handle)))},
			{"title", value(w.Title)},
			{"bounds", value(fmt.Sprintf("%d, %d  %dx%d", w.Bounds.Left, w.Bounds.Top, w.Bounds.Width, w.Bounds.Height))},
		}))
	} else {
		sections = append(sections, renderSection("Window", [][2]string{{"", dimStyle.Render("no window under cursor")}}))
	}

	if el := s.Element; el != nil {
		rows := [][2]string{
			{"name", optional(el.Name)},
			{"control type", optional(el.ControlType)},
			{"class name", optional(el.ClassName)},
		}
		if el.Bounding != nil {
			b := el.Bounding
			rows = append(rows, [2]string{"bounding", value(fmt.Sprintf("%d, %d, %d, %d", b[0], b[1], b[2], b[3]))})
		}
		if len(el.RuntimeID) > 0 {
			rows = append(rows, [2]string{"runtime id", value(intList(el.RuntimeID))})
		}
		if el.Handle != nil {
			rows = append(rows, [2]string{"hwnd", value(fmt.Sprintf("0x%x", uint64(*el.Handle)))})
		}
		rows = append(rows, [2]string{"text", optional(s.Text)})
		sections = append(sections, renderSection("Element", rows))
	} else {
		sections = append(sections, renderSection("Element", [][2]string{{"", dimStyle.Render("no accessible element")}}))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Run starts the inspector and blocks until the user quits or ctx ends.
func Run(ctx context.Context, probe Probe, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("inspect requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(ctx, probe, interval), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
