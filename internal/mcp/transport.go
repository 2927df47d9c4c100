package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1broseidon/system-mcp/internal/config"
)

const (
	streamablePath  = "/mcp"
	shutdownTimeout = 5 * time.Second
)

// ServeOptions selects the transport.
type ServeOptions struct {
	Transport string
	Addr      string
	Stateless bool
	// MetricsPath mounts the prometheus handler; empty disables it.
	MetricsPath string
}

// Serve runs the server on the chosen transport until ctx is cancelled or
// the client disconnects.
func (s *Server) Serve(ctx context.Context, opts ServeOptions) error {
	switch opts.Transport {
	case "", config.TransportStdio:
		return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
	case config.TransportSSE, config.TransportStreamableHTTP:
		handler, err := s.HTTPHandler(opts)
		if err != nil {
			return err
		}
		ln, err := net.Listen("tcp", opts.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", opts.Addr, err)
		}
		return s.serveHTTP(ctx, ln, handler, opts)
	default:
		return fmt.Errorf("unknown transport %q", opts.Transport)
	}
}

// HTTPHandler builds the HTTP mux for the sse and streamable-http
// transports.
func (s *Server) HTTPHandler(opts ServeOptions) (http.Handler, error) {
	getServer := func(*http.Request) *mcpsdk.Server { return s.mcpServer }

	mux := http.NewServeMux()
	switch opts.Transport {
	case config.TransportSSE:
		mux.Handle("/", mcpsdk.NewSSEHandler(getServer, nil))
	case config.TransportStreamableHTTP:
		mux.Handle(streamablePath, mcpsdk.NewStreamableHTTPHandler(getServer, &mcpsdk.StreamableHTTPOptions{
			Stateless: opts.Stateless,
			Logger:    s.logger,
		}))
	default:
		return nil, fmt.Errorf("transport %q is not served over HTTP", opts.Transport)
	}
	if opts.MetricsPath != "" {
		mux.Handle(opts.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return mux, nil
}

func (s *Server) serveHTTP(ctx context.Context, ln net.Listener, handler http.Handler, opts ServeOptions) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	endpoint := "/"
	if opts.Transport == config.TransportStreamableHTTP {
		endpoint = streamablePath
	}
	s.logger.Info("MCP server listening",
		"transport", opts.Transport,
		"addr", ln.Addr().String(),
		"endpoint", endpoint,
		"metrics", opts.MetricsPath,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP shutdown incomplete", "error", err)
		return srv.Close()
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
