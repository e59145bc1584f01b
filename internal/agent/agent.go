// Package agent wires the glimpse sensor to the forward networks and runs
// the recurrent attention loop: at each time step the location policy picks
// a focus point per sample, the sensor extracts a retina tensor, the glimpse
// network encodes it, and the core network folds it into the running state.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/network"
	"github.com/MeKo-Tech/retina/internal/tensor"
)

// Agent bundles the sensor, the forward networks and the location policy.
type Agent struct {
	Sensor  *glimpse.Sensor
	Glimpse *network.GlimpseNetwork
	Core    *network.CoreNetwork
	Action  *network.ActionNetwork
	Policy  network.LocationPolicy
}

// New validates the wiring. Action may be nil for observation-only runs.
func New(sensor *glimpse.Sensor, gn *network.GlimpseNetwork, core *network.CoreNetwork,
	action *network.ActionNetwork, policy network.LocationPolicy,
) (*Agent, error) {
	if sensor == nil {
		return nil, errors.New("nil sensor")
	}
	if gn == nil || core == nil {
		return nil, errors.New("glimpse and core networks are required")
	}
	if policy == nil {
		return nil, errors.New("nil location policy")
	}
	return &Agent{Sensor: sensor, Glimpse: gn, Core: core, Action: action, Policy: policy}, nil
}

// StepRecord captures one time step of the attention loop.
type StepRecord struct {
	Step       int                `json:"step"`
	Locations  []glimpse.Location `json:"locations"`
	PatchSizes []int              `json:"patch_sizes"`
	Duration   time.Duration      `json:"duration_ns"`
}

// ObservationResult is the outcome of an attention run over a batch.
type ObservationResult struct {
	Steps         []StepRecord `json:"steps"`
	Probabilities [][]float32  `json:"probabilities,omitempty"`
	Hidden        [][]float32  `json:"-"`
}

// Observe runs the attention loop for the given number of steps and returns
// per-step records plus, when an action head is configured, the final class
// probabilities per sample.
func (a *Agent) Observe(ctx context.Context, batch *tensor.ImageBatch, steps int) (*ObservationResult, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if batch == nil {
		return nil, errors.New("nil image batch")
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	states := a.Core.InitHidden(batch.B)
	result := &ObservationResult{Steps: make([]StepRecord, 0, steps)}

	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		locs := make([]glimpse.Location, batch.B)
		for b := range locs {
			locs[b] = a.Policy.Next(step, states[b])
		}

		start := time.Now()
		ret, err := a.Sensor.Extract(batch, locs)
		if err != nil {
			extractionsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		extractionsTotal.WithLabelValues("ok").Inc()
		extractionDuration.Observe(time.Since(start).Seconds())

		for b := 0; b < batch.B; b++ {
			gt, err := a.Glimpse.Forward(ret.Flatten(b), locs[b])
			if err != nil {
				return nil, fmt.Errorf("step %d sample %d: %w", step, b, err)
			}
			states[b], err = a.Core.Step(states[b], gt)
			if err != nil {
				return nil, fmt.Errorf("step %d sample %d: %w", step, b, err)
			}
		}

		result.Steps = append(result.Steps, StepRecord{
			Step:       step,
			Locations:  locs,
			PatchSizes: a.Sensor.PatchSizes(),
			Duration:   time.Since(start),
		})
	}
	observationSteps.Observe(float64(steps))

	result.Hidden = states
	if a.Action != nil {
		result.Probabilities = make([][]float32, batch.B)
		for b := 0; b < batch.B; b++ {
			probs, err := a.Action.Forward(states[b])
			if err != nil {
				return nil, fmt.Errorf("action head sample %d: %w", b, err)
			}
			result.Probabilities[b] = probs
		}
	}

	slog.Debug("observation complete", "steps", steps, "batch", batch.B)
	return result, nil
}
