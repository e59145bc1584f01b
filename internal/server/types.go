package server

import (
	"github.com/MeKo-Tech/retina/internal/agent"
	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/tensor"
)

// glimpser is the sensor surface the handlers need; satisfied by
// *glimpse.Sensor and by test fakes.
type glimpser interface {
	Extract(batch *tensor.ImageBatch, locs []glimpse.Location) (*tensor.Retina, error)
	PatchSizes() []int
	PatchSize() int
	NumPatches() int
	ScaleFactor() float64
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	sensor      glimpser
	agent       *agent.Agent
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// PatchSummary describes one extracted patch of a glimpse.
type PatchSummary struct {
	Index      int     `json:"index"`
	SourceSize int     `json:"source_size"`
	Min        float32 `json:"min"`
	Max        float32 `json:"max"`
	Mean       float32 `json:"mean"`
}

// GlimpseResponse is returned by POST /v1/glimpse.
type GlimpseResponse struct {
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Channels     int            `json:"channels"`
	Location     [2]float64     `json:"location"`
	Shape        []int          `json:"shape"` // (B, k, g, g, C)
	PatchSizes   []int          `json:"patch_sizes"`
	Patches      []PatchSummary `json:"patches"`
	ProcessingMs int64          `json:"processing_ms"`
}

// ObserveResponse is returned by POST /v1/observe.
type ObserveResponse struct {
	Steps         []agent.StepRecord `json:"steps"`
	Probabilities [][]float32        `json:"probabilities,omitempty"`
	ProcessingMs  int64              `json:"processing_ms"`
}

// ErrorResponse is the JSON error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
