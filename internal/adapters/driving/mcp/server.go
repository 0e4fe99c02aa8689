package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/salasync/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// instructions tell clients how the registry is organised.
const instructions = `Read-only view of the salasync patient registry.
Rooms come from the room folders of the master Drive folder; patients come
from the final reports of each room. Names are matched ignoring case and
surrounding spaces.

Tools: list_rooms, list_patients (optional room name), get_patient (name).
Resources: salasync://rooms, salasync://rooms/{room}/patients,
salasync://patients/{name}.`

// shutdownTimeout bounds the graceful stop of the HTTP transport.
const shutdownTimeout = 5 * time.Second

// Server serves the registry to MCP clients. It never writes to the registry;
// syncing stays with the CLI.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a server over the registry port.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "salasync", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves one client over stdio until ctx is cancelled or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP registry server on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler. Every request shares the
// same registry-backed server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves Handler on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Info("MCP registry server on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
