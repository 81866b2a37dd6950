package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer exposes the default prometheus registry on /metrics.
type MetricsServer struct {
	mu     sync.Mutex
	server *http.Server
}

func (m *MetricsServer) Handler() http.Handler {
	hdlr := http.NewServeMux()
	hdlr.Handle("/metrics", promhttp.Handler())
	return hdlr
}

// Init installs the server for addr without serving it, so a Shutdown issued
// before Serve still reaches it.
func (m *MetricsServer) Init(ctx context.Context, addr string) {
	install(ctx, &m.mu, &m.server, addr, m.Handler())
}

func (m *MetricsServer) Serve() error {
	return serve(&m.mu, &m.server)
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return shutdown(ctx, &m.mu, &m.server)
}

func (m *MetricsServer) Server() *http.Server {
	return current(&m.mu, &m.server)
}

func install(ctx context.Context, mu *sync.Mutex, slot **http.Server, addr string, handler http.Handler) {
	server := &http.Server{
		Handler:     handler,
		Addr:        addr,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	mu.Lock()
	*slot = server
	mu.Unlock()
}

// serve blocks on the installed server. It returns http.ErrServerClosed when
// the server was shut down, even if that happened before serve was called.
func serve(mu *sync.Mutex, slot **http.Server) error {
	server := current(mu, slot)
	if server == nil {
		return errors.New("server not initialized")
	}
	return server.ListenAndServe()
}

func shutdown(ctx context.Context, mu *sync.Mutex, slot **http.Server) error {
	server := current(mu, slot)
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func current(mu *sync.Mutex, slot **http.Server) *http.Server {
	mu.Lock()
	defer mu.Unlock()
	return *slot
}
