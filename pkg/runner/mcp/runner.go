package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/apptcal/pkg/app"
)

// Transport names how clients reach the server.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

const (
	defaultEndpoint   = "/mcp"
	defaultListenAddr = "127.0.0.1:8080"
	shutdownGrace     = 5 * time.Second
)

// Runner serves the calendar over MCP until ctx ends.
type Runner struct {
	App     *app.Service
	Name    string
	Version string

	Transport Transport

	// HTTP only.
	HTTPListenAddr   string
	HTTPEndpointPath string
	HTTPServerCert   string
	HTTPServerKey    string
	// OnHTTPListening is told the bound address, useful with port 0.
	OnHTTPListening func(net.Addr)
}

// Do builds the server and blocks on the chosen transport.
func (r Runner) Do(ctx context.Context) error {
	if r.App == nil {
		return errors.New("mcp: no calendar to serve")
	}
	srv := r.newServer()

	switch r.Transport {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.NewStdioServer(srv).Listen(ctx, os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("mcp: unknown transport %q", r.Transport)
	}
}

func (r Runner) newServer() *server.MCPServer {
	name, version := r.Name, r.Version
	if name == "" {
		name = "apptcal"
	}
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		name+" MCP",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Read and change calendar appointments. Changes are stored locally first and synced when online."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	svc := NewService(r.App)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// EndpointPath is the HTTP path the server answers on, always rooted.
func EndpointPath(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		return defaultEndpoint
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// TLS reports whether a certificate pair was configured. Half a pair is an
// error.
func (r Runner) TLS() (bool, error) {
	cert, key := strings.TrimSpace(r.HTTPServerCert), strings.TrimSpace(r.HTTPServerKey)
	switch {
	case cert == "" && key == "":
		return false, nil
	case cert == "" || key == "":
		return false, errors.New("mcp: tls needs both a certificate and a key")
	default:
		return true, nil
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	useTLS, err := r.TLS()
	if err != nil {
		return err
	}
	addr := r.HTTPListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}

	mux := http.NewServeMux()
	mux.Handle(EndpointPath(r.HTTPEndpointPath), server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", addr, err)
	}
	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	})
	defer stop()

	if useTLS {
		err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
