package mcp

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"tableflip.dev/apptcal/pkg/app"
)

func TestEndpointPath(t *testing.T) {
	tests := map[string]string{
		"":       "/mcp",
		"  ":     "/mcp",
		"rpc":    "/rpc",
		"/a/b":   "/a/b",
		" /mcp ": "/mcp",
	}
	for in, want := range tests {
		if got := EndpointPath(in); got != want {
			t.Fatalf("EndpointPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunnerTLSPair(t *testing.T) {
	if on, err := (Runner{}).TLS(); on || err != nil {
		t.Fatalf("no pair = %v, %v", on, err)
	}
	if _, err := (Runner{HTTPServerCert: "c.pem"}).TLS(); err == nil {
		t.Fatal("expected error for a cert without key")
	}
	if on, err := (Runner{HTTPServerCert: "c.pem", HTTPServerKey: "k.pem"}).TLS(); !on || err != nil {
		t.Fatalf("pair = %v, %v", on, err)
	}
}

func TestRunnerRejectsUnknownTransport(t *testing.T) {
	r := Runner{App: app.New(app.Options{}), Transport: "carrier-pigeon"}
	if err := r.Do(context.Background()); err == nil || !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Fatalf("err = %v", err)
	}
	if err := (Runner{}).Do(context.Background()); err == nil {
		t.Fatal("expected error without a calendar")
	}
}

func TestRunnerHTTPStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bound := make(chan net.Addr, 1)
	r := Runner{
		App:             app.New(app.Options{}),
		Transport:       TransportHTTP,
		HTTPListenAddr:  "127.0.0.1:0",
		OnHTTPListening: func(a net.Addr) { bound <- a },
	}
	done := make(chan error, 1)
	go func() { done <- r.Do(ctx) }()

	var addr net.Addr
	select {
	case addr = <-bound:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server never listened")
	}

	resp, err := http.Get("http://" + addr.String() + "/elsewhere")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 outside the endpoint", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Do = %v", err)
		}
	case <-time.After(7 * time.Second):
		t.Fatal("server did not stop")
	}
}
