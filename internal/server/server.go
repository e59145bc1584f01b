package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/retina/internal/agent"
	"github.com/MeKo-Tech/retina/internal/config"
)

// Config holds server construction settings. Retina carries the sensor,
// network and agent configuration the endpoints run on.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	Retina      *config.Config
}

// NewServer creates a glimpse server instance. The agent is built for
// single-channel batches; color uploads are supported on the raw glimpse
// endpoint but converted to grayscale before observation runs.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Retina == nil {
		cfg.Retina = config.DefaultConfig()
	}

	ag, err := agent.FromConfig(cfg.Retina, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to build agent: %w", err)
	}

	return &Server{
		sensor:      ag.Sensor,
		agent:       ag,
		corsOrigin:  cfg.CORSOrigin,
		maxUploadMB: cfg.MaxUploadMB,
		timeoutSec:  cfg.TimeoutSec,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/v1/glimpse", s.corsMiddleware(s.glimpseHandler))
	mux.HandleFunc("/v1/observe", s.corsMiddleware(s.observeHandler))
	mux.HandleFunc("/v1/trajectory", s.trajectoryHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
