package network

import (
	"math/rand"
	"sync"

	"github.com/MeKo-Tech/retina/internal/glimpse"
)

// LocationPolicy chooses the next focus location from the current core
// state. This is the seam for a learned location policy; the sensor itself
// has no dependency on it, and the implementations below are fixed
// strategies for driving the attention loop without one.
type LocationPolicy interface {
	Next(step int, hidden []float32) glimpse.Location
}

// CenterPolicy always looks at the image center.
type CenterPolicy struct{}

func (CenterPolicy) Next(int, []float32) glimpse.Location { return glimpse.Location{} }

// FixedTrajectory cycles through a predefined sequence of locations.
type FixedTrajectory struct {
	Points []glimpse.Location
}

func (f FixedTrajectory) Next(step int, _ []float32) glimpse.Location {
	if len(f.Points) == 0 {
		return glimpse.Location{}
	}
	return f.Points[step%len(f.Points)]
}

// RandomPolicy samples locations uniformly from [-1, 1] x [-1, 1] with a
// seeded generator. Safe for concurrent use.
type RandomPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPolicy creates a seeded uniform policy.
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // exploration, not crypto
}

func (r *RandomPolicy) Next(int, []float32) glimpse.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return glimpse.Location{
		X: r.rng.Float64()*2 - 1,
		Y: r.rng.Float64()*2 - 1,
	}
}
