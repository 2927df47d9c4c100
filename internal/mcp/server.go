// Package mcp exposes the desktop operations as MCP tools.
package mcp

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/1broseidon/system-mcp/internal/audit"
	"github.com/1broseidon/system-mcp/internal/desktop"
)

const (
	ServerName    = "system-mcp"
	ServerVersion = "0.1.0"

	Instructions = "Tools to read and control cursor, windows, and UI elements. Use cautiously; coordinates are in screen space."
)

// ToolSpec describes one registered tool.
type ToolSpec struct {
	Name        string             `json:"name"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	ReadOnly    bool               `json:"read_only"`
	Category    audit.Category     `json:"-"`
	InputSchema *jsonschema.Schema `json:"input_schema,omitempty"`
}

// toolSpecs is the fixed tool registry, in registration order.
var toolSpecs = [...]ToolSpec{
	{
		Name:        "mouse_get_position",
		Title:       "Mouse: Get Position",
		Description: "Get the current cursor position in screen coordinates.",
		ReadOnly:    true,
		Category:    audit.CategoryQuery,
	},
	{
		Name:        "mouse_set_position",
		Title:       "Mouse: Set Position",
		Description: "Move the cursor to an absolute screen position.",
		Category:    audit.CategoryInput,
	},
	{
		Name:        "mouse_click",
		Title:       "Mouse: Click",
		Description: "Click a mouse button (left, right or middle) at the current cursor position. Sends one press followed by one release.",
		Category:    audit.CategoryInput,
	},
	{
		Name:        "window_list",
		Title:       "Window: List",
		Description: "List top-level windows with their handle, title and bounds. By default only visible windows with a title are returned.",
		ReadOnly:    true,
		Category:    audit.CategoryQuery,
	},
	{
		Name:        "window_find_by_title",
		Title:       "Window: Find By Title",
		Description: "Find visible windows whose title contains a substring (case-insensitive).",
		ReadOnly:    true,
		Category:    audit.CategoryQuery,
	},
	{
		Name:        "window_move",
		Title:       "Window: Move",
		Description: "Move a window and optionally resize it. Omitted width or height keeps the current size. Handles can go stale once the window closes.",
		Category:    audit.CategoryWindow,
	},
	{
		Name:        "window_activate",
		Title:       "Window: Activate",
		Description: "Bring a window to the foreground. Best effort: the OS may refuse to move focus even when the call succeeds.",
		Category:    audit.CategoryWindow,
	},
	{
		Name:        "element_under_cursor",
		Title:       "UIA: Element Under Cursor",
		Description: "Describe the accessibility element under the cursor: name, control type, class name, bounding rectangle, runtime id and owning window. Returns null when there is none.",
		ReadOnly:    true,
		Category:    audit.CategoryQuery,
	},
	{
		Name:        "text_under_cursor",
		Title:       "UIA: Text Under Cursor",
		Description: "Read the best available text of the element under the cursor (value, then legacy name, then name). Returns null when there is none.",
		ReadOnly:    true,
		Category:    audit.CategoryQuery,
	},
	{
		Name:        "take_screenshot",
		Title:       "Screen: Take Screenshot",
		Description: "Capture a monitor or a region as a base64-encoded PNG or JPEG. A region (left, top, width, height) takes precedence over monitor.",
		ReadOnly:    true,
		Category:    audit.CategoryCapture,
	},
}

// Tools returns the tool registry with input schemas filled in.
func Tools() ([]ToolSpec, error) {
	schemas, err := buildInputSchemas()
	if err != nil {
		return nil, err
	}
	specs := slices.Clone(toolSpecs[:])
	for i := range specs {
		specs[i].InputSchema = schemas[specs[i].Name]
	}
	return specs, nil
}

func lookupTool(specs []ToolSpec, name string) ToolSpec {
	for _, spec := range specs {
		if spec.Name == name {
			return spec
		}
	}
	panic(fmt.Sprintf("tool %q is not in the registry", name))
}

// Options configures a Server.
type Options struct {
	Desktop *desktop.Service
	// Audit may be nil.
	Audit *audit.Logger
	// Registry receives the tool metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// Server is the MCP server for desktop automation.
type Server struct {
	mcpServer *mcpsdk.Server
	desktop   *desktop.Service
	audit     *audit.Logger
	registry  *prometheus.Registry
	metrics   *Metrics
	logger    *slog.Logger
}

// NewServer creates a server with every tool registered.
func NewServer(opts Options) (*Server, error) {
	if opts.Desktop == nil {
		return nil, fmt.Errorf("desktop service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	specs, err := Tools()
	if err != nil {
		return nil, err
	}

	s := &Server{
		desktop:  opts.Desktop,
		audit:    opts.Audit,
		registry: registry,
		metrics:  NewMetrics(registry),
		logger:   logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		&mcpsdk.ServerOptions{
			Instructions: Instructions,
			Logger:       logger,
		},
	)

	s.registerTools(specs)
	return s, nil
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.mcpServer
}

// Registry returns the registry holding the tool metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Close releases server resources.
func (s *Server) Close() error {
	if s == nil || s.audit == nil {
		return nil
	}
	return s.audit.Close()
}

func (s *Server) registerTools(specs []ToolSpec) {
	addTool(s, lookupTool(specs, "mouse_get_position"), s.handleMouseGetPosition)
	addTool(s, lookupTool(specs, "mouse_set_position"), s.handleMouseSetPosition)
	addTool(s, lookupTool(specs, "mouse_click"), s.handleMouseClick)
	addTool(s, lookupTool(specs, "window_list"), s.handleWindowList)
	addTool(s, lookupTool(specs, "window_find_by_title"), s.handleWindowFindByTitle)
	addTool(s, lookupTool(specs, "window_move"), s.handleWindowMove)
	addTool(s, lookupTool(specs, "window_activate"), s.handleWindowActivate)
	addTool(s, lookupTool(specs, "element_under_cursor"), s.handleElementUnderCursor)
	addTool(s, lookupTool(specs, "text_under_cursor"), s.handleTextUnderCursor)
	addTool(s, lookupTool(specs, "take_screenshot"), s.handleTakeScreenshot)
}
