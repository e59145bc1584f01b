package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/tensor"
	"github.com/MeKo-Tech/retina/internal/utils"
	"github.com/MeKo-Tech/retina/internal/version"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := HealthResponse{
		Status:  "ok",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// glimpseHandler extracts a single glimpse from an uploaded image.
// Form fields: image (file, required), loc_x, loc_y (optional, default 0),
// grayscale (optional, default true).
func (s *Server) glimpseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	batch, loc, err := s.parseGlimpseRequest(w, r)
	if err != nil {
		glimpseRequestsTotal.WithLabelValues("glimpse", "error").Inc()
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	sensor, err := s.requestSensor(r)
	if err != nil {
		glimpseRequestsTotal.WithLabelValues("glimpse", "error").Inc()
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ret, err := sensor.Extract(batch, []glimpse.Location{loc})
	if err != nil {
		glimpseRequestsTotal.WithLabelValues("glimpse", "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, glimpse.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		s.writeErrorResponse(w, err.Error(), status)
		return
	}

	sizes := sensor.PatchSizes()
	resp := GlimpseResponse{
		Width:        batch.W,
		Height:       batch.H,
		Channels:     batch.C,
		Location:     [2]float64{loc.X, loc.Y},
		Shape:        []int{ret.B, ret.K, ret.G, ret.G, ret.C},
		PatchSizes:   sizes,
		Patches:      make([]PatchSummary, ret.K),
		ProcessingMs: time.Since(start).Milliseconds(),
	}
	for i := 0; i < ret.K; i++ {
		minV, maxV, mean := tensor.Stats(ret.Patch(0, i))
		resp.Patches[i] = PatchSummary{
			Index:      i,
			SourceSize: sizes[i],
			Min:        minV,
			Max:        maxV,
			Mean:       mean,
		}
	}

	glimpseRequestsTotal.WithLabelValues("glimpse", "success").Inc()
	glimpseProcessingDuration.WithLabelValues("glimpse").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode glimpse response", "error", err)
	}
}

// observeHandler runs the full attention loop on an uploaded image.
// Form fields as for glimpseHandler plus steps (optional).
func (s *Server) observeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.agent == nil {
		s.writeErrorResponse(w, "observation not configured", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	batch, _, err := s.parseGlimpseRequest(w, r)
	if err != nil {
		glimpseRequestsTotal.WithLabelValues("observe", "error").Inc()
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if batch.C != 1 {
		s.writeErrorResponse(w, "observation requires grayscale input", http.StatusBadRequest)
		return
	}

	steps := 6
	if v := r.FormValue("steps"); v != "" {
		steps, err = strconv.Atoi(v)
		if err != nil || steps <= 0 || steps > 64 {
			s.writeErrorResponse(w, "invalid steps value", http.StatusBadRequest)
			return
		}
	}

	res, err := s.agent.Observe(r.Context(), batch, steps)
	if err != nil {
		glimpseRequestsTotal.WithLabelValues("observe", "error").Inc()
		s.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	glimpseRequestsTotal.WithLabelValues("observe", "success").Inc()
	glimpseProcessingDuration.WithLabelValues("observe").Observe(time.Since(start).Seconds())

	resp := ObserveResponse{
		Steps:         res.Steps,
		Probabilities: res.Probabilities,
		ProcessingMs:  time.Since(start).Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode observe response", "error", err)
	}
}

// parseGlimpseRequest reads the multipart form shared by the glimpse and
// observe endpoints and converts the upload into a single-image batch.
func (s *Server) parseGlimpseRequest(w http.ResponseWriter, r *http.Request) (*tensor.ImageBatch, glimpse.Location, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		return nil, glimpse.Location{}, fmt.Errorf("failed to parse upload: %w", err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, glimpse.Location{}, errors.New("missing image file")
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, glimpse.Location{}, fmt.Errorf("failed to decode image: %w", err)
	}

	var loc glimpse.Location
	if loc.X, err = parseCoord(r.FormValue("loc_x")); err != nil {
		return nil, glimpse.Location{}, err
	}
	if loc.Y, err = parseCoord(r.FormValue("loc_y")); err != nil {
		return nil, glimpse.Location{}, err
	}

	grayscale := true
	if v := r.FormValue("grayscale"); v != "" {
		grayscale, err = strconv.ParseBool(v)
		if err != nil {
			return nil, glimpse.Location{}, fmt.Errorf("invalid grayscale value %q", v)
		}
	}

	batch, err := utils.ToImageBatch([]image.Image{img}, grayscale)
	if err != nil {
		return nil, glimpse.Location{}, err
	}
	return batch, loc, nil
}

// requestSensor returns the configured sensor, or a one-off sensor when the
// request overrides the (g, k, s) triple via patch_size, num_patches or
// scale_factor form fields.
func (s *Server) requestSensor(r *http.Request) (glimpser, error) {
	g := s.sensor.PatchSize()
	k := s.sensor.NumPatches()
	scale := s.sensor.ScaleFactor()
	overridden := false

	if v := r.FormValue("patch_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid patch_size %q", v)
		}
		g, overridden = n, true
	}
	if v := r.FormValue("num_patches"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid num_patches %q", v)
		}
		k, overridden = n, true
	}
	if v := r.FormValue("scale_factor"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid scale_factor %q", v)
		}
		scale, overridden = f, true
	}

	if !overridden {
		return s.sensor, nil
	}
	return glimpse.NewSensor(g, k, scale)
}

func parseCoord(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	c, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", v)
	}
	return c, nil
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
