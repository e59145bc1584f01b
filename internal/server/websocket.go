package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/utils"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS origin checking is handled at the HTTP layer; the serve
		// command is intended for local and internal deployments.
		return true
	},
}

// TrajectoryRequest starts a streamed attention run over one image. The
// image is always converted to grayscale since the agent is built for
// single-channel input.
type TrajectoryRequest struct {
	Image []byte `json:"image"` // base64-encoded by encoding/json
	Steps int    `json:"steps,omitempty"`
}

// TrajectoryFrame is one streamed message: a per-step glimpse record or the
// final classification result.
type TrajectoryFrame struct {
	Type          string             `json:"type"` // "step", "result", "error"
	Step          int                `json:"step,omitempty"`
	Locations     []glimpse.Location `json:"locations,omitempty"`
	PatchSizes    []int              `json:"patch_sizes,omitempty"`
	Probabilities [][]float32        `json:"probabilities,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// trajectoryHandler streams per-step glimpse frames for one uploaded image
// over a WebSocket connection.
func (s *Server) trajectoryHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		slog.Debug("WebSocket read failed", "error", err)
		return
	}

	var req TrajectoryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeTrajectoryError(conn, "invalid request: "+err.Error())
		return
	}
	s.streamTrajectory(r.Context(), conn, &req)
}

func (s *Server) streamTrajectory(ctx context.Context, conn *websocket.Conn, req *TrajectoryRequest) {
	if s.agent == nil {
		s.writeTrajectoryError(conn, "observation not configured")
		return
	}

	steps := req.Steps
	if steps <= 0 || steps > 64 {
		steps = 6
	}
	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		s.writeTrajectoryError(conn, "failed to decode image: "+err.Error())
		return
	}
	batch, err := utils.ToImageBatch([]image.Image{img}, true)
	if err != nil {
		s.writeTrajectoryError(conn, err.Error())
		return
	}

	start := time.Now()
	res, err := s.agent.Observe(ctx, batch, steps)
	if err != nil {
		glimpseRequestsTotal.WithLabelValues("trajectory", "error").Inc()
		s.writeTrajectoryError(conn, err.Error())
		return
	}

	for _, step := range res.Steps {
		frame := TrajectoryFrame{
			Type:       "step",
			Step:       step.Step,
			Locations:  step.Locations,
			PatchSizes: step.PatchSizes,
		}
		if err := conn.WriteJSON(frame); err != nil {
			slog.Debug("WebSocket write failed", "error", err)
			return
		}
	}

	final := TrajectoryFrame{Type: "result", Probabilities: res.Probabilities}
	if err := conn.WriteJSON(final); err != nil {
		slog.Debug("WebSocket write failed", "error", err)
		return
	}

	glimpseRequestsTotal.WithLabelValues("trajectory", "success").Inc()
	glimpseProcessingDuration.WithLabelValues("trajectory").Observe(time.Since(start).Seconds())
}

func (s *Server) writeTrajectoryError(conn *websocket.Conn, msg string) {
	if err := conn.WriteJSON(TrajectoryFrame{Type: "error", Error: msg}); err != nil {
		slog.Debug("WebSocket error write failed", "error", err)
	}
}
