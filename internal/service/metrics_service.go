package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/json"
	"github.com/Mykobyhub/kibana-connectors/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// HealthReporter exposes the state of a periodic health check.
type HealthReporter interface {
	Status() base.HealthStatus
	IsHealthy() bool
}

// MetricsService serves the Prometheus endpoint on /metrics and a health
// probe on /healthz. Without a HealthReporter the probe always answers 200.
type MetricsService struct {
	addr   string
	server *http.Server
	logger *zap.Logger
	ready  chan string
}

// NewMetricsService creates a metrics server listening on addr.
func NewMetricsService(addr string, health HealthReporter, logger *zap.Logger) *MetricsService {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if health == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		code := http.StatusOK
		if !health.IsHealthy() {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(health.Status())
	})

	return &MetricsService{
		addr: addr,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
		ready:  make(chan string, 1),
	}
}

// Name implements Service.
func (m *MetricsService) Name() string {
	return "metrics"
}

// Addr blocks until the listener is bound and returns its address.
func (m *MetricsService) Addr(ctx context.Context) (string, error) {
	select {
	case addr := <-m.ready:
		m.ready <- addr
		return addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run implements Service.
func (m *MetricsService) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", m.addr)
	if err != nil {
		return err
	}
	m.ready <- lis.Addr().String()
	m.logger.Info("metrics endpoint listening", zap.String("addr", lis.Addr().String()))

	done := make(chan error, 1)
	go func() {
		done <- m.server.Serve(lis)
	}()

	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := m.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
