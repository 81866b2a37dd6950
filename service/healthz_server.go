package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/rs/cors"
)

type HealthzServer struct {
	mu     sync.Mutex
	server *http.Server
}

// Handler serves /healthz with permissive CORS.
func (h *HealthzServer) Handler() http.Handler {
	hdlr := http.NewServeMux()
	hdlr.HandleFunc("/healthz", h.Handle)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	return c.Handler(hdlr)
}

func (h *HealthzServer) Init(ctx context.Context, addr string) {
	install(ctx, &h.mu, &h.server, addr, h.Handler())
}

func (h *HealthzServer) Serve() error {
	return serve(&h.mu, &h.server)
}

func (h *HealthzServer) Shutdown(ctx context.Context) error {
	return shutdown(ctx, &h.mu, &h.server)
}

func (h *HealthzServer) Server() *http.Server {
	return current(&h.mu, &h.server)
}

func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	log.Debug("Received health check request", "path", r.URL.Path)
	w.Write([]byte("OK")) //nolint:errcheck
}
