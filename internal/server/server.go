// File: internal/server/server.go

// Package server exposes the prediction endpoints over HTTP. Routes are
// registered once per execution provider segment; the handlers themselves are
// device-agnostic and forward the segment to the predictor untouched.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vulnserve/api/schemas"
	"vulnserve/internal/config"
	"vulnserve/internal/runtime"
)

// healthProbeTimeout bounds the runtime dependency check on /healthz so a
// wedged sidecar cannot stall liveness probing.
const healthProbeTimeout = 2 * time.Second

// Service is the prediction surface the handlers dispatch to.
type Service interface {
	Predict(ctx context.Context, provider runtime.Provider, code []string) (*schemas.PredictResponse, error)
	CWE(ctx context.Context, provider runtime.Provider, code []string) (*schemas.CWEResponse, error)
	Severity(ctx context.Context, provider runtime.Provider, code []string) (*schemas.SeverityResponse, error)
	Repair(ctx context.Context, provider runtime.Provider, code []string) (*schemas.RepairResponse, error)
}

// HealthProbe reports whether the inference runtime is reachable.
type HealthProbe interface {
	Healthy(ctx context.Context) error
}

type Server struct {
	cfg    config.ServerConfig
	svc    Service
	probe  HealthProbe
	logger *zap.Logger
	http   *http.Server
}

func New(cfg config.ServerConfig, svc Service, probe HealthProbe, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		svc:    svc,
		probe:  probe,
		logger: logger.Named("server"),
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(s.logger.Named("http")),
	}
	return s
}

// Handler builds the full route table wrapped in the middleware chain. It is
// exported so tests can drive the server through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/{provider}/predict", s.handlePredict)
	mux.HandleFunc("POST /api/v1/{provider}/cwe", s.handleCWE)
	mux.HandleFunc("POST /api/v1/{provider}/sev", s.handleSeverity)
	mux.HandleFunc("POST /api/v1/{provider}/repair", s.handleRepair)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return requestID(accessLog(s.logger, mux))
}

// Run serves until ctx is cancelled, then drains in-flight requests within the
// configured shutdown window.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down", zap.Duration("grace", s.cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("stopped")
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	if err := s.probe.Healthy(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, schemas.HealthResponse{
			Status: "degraded",
			Reason: err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, schemas.HealthResponse{Status: "ok"})
}
