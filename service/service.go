package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-sweetest/metrics"
)

// Config selects which auxiliary servers run next to the test runs.
type Config struct {
	HealthzEnabled bool
	HealthzHost    string
	HealthzPort    int

	MetricsEnabled bool
	MetricsHost    string
	MetricsPort    int
}

type Service struct {
	cfg     Config
	log     log.Logger
	Healthz *HealthzServer
	Metrics *MetricsServer
}

func New(cfg Config, logger log.Logger) *Service {
	if logger == nil {
		logger = log.Root()
	}
	s := &Service{
		cfg:     cfg,
		log:     logger,
		Healthz: &HealthzServer{},
		Metrics: &MetricsServer{},
	}
	return s
}

// Start installs every enabled server before returning and serves them in the
// background. A Shutdown that follows Start always reaches them.
func (s *Service) Start(ctx context.Context) {
	s.log.Info("service starting")

	if s.cfg.HealthzEnabled {
		addr := net.JoinHostPort(s.cfg.HealthzHost, strconv.Itoa(s.cfg.HealthzPort))
		s.Healthz.Init(ctx, addr)
		go func() {
			s.log.Info("starting healthz server", "addr", addr)
			if err := s.Healthz.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("error starting healthz server", "err", err)
				metrics.RecordErrorDetails("error starting healthz server", err)
			}
		}()
	}

	if s.cfg.MetricsEnabled {
		addr := net.JoinHostPort(s.cfg.MetricsHost, strconv.Itoa(s.cfg.MetricsPort))
		s.Metrics.Init(ctx, addr)
		go func() {
			s.log.Info("starting metrics server", "addr", addr)
			if err := s.Metrics.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("error starting metrics server", "err", err)
				metrics.RecordErrorDetails("error starting metrics server", err)
			}
		}()
	}

	s.log.Info("service started")
}

func (s *Service) Shutdown(ctx context.Context) {
	s.log.Info("service shutting down")

	_ = s.Healthz.Shutdown(ctx)
	s.log.Info("healthz stopped")

	_ = s.Metrics.Shutdown(ctx)
	s.log.Info("metrics stopped")

	s.log.Info("service stopped")
}
