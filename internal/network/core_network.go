package network

import (
	"fmt"
	"math/rand"
)

// CoreNetwork maintains the internal state summarizing the history of past
// glimpses:
//
//	h_t = relu( fc(h_{t-1}) + fc(g_t) )
type CoreNetwork struct {
	fcState *Linear
	fcInput *Linear
	hidden  int
}

// NewCoreNetwork builds the recurrent state update for glimpse
// representations of length inputSize and a state of length hiddenSize.
func NewCoreNetwork(inputSize, hiddenSize int, seed int64) (*CoreNetwork, error) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic init, not crypto
	fcState, err := NewLinear(hiddenSize, hiddenSize, rng)
	if err != nil {
		return nil, fmt.Errorf("state projection: %w", err)
	}
	fcInput, err := NewLinear(inputSize, hiddenSize, rng)
	if err != nil {
		return nil, fmt.Errorf("input projection: %w", err)
	}
	return &CoreNetwork{fcState: fcState, fcInput: fcInput, hidden: hiddenSize}, nil
}

// HiddenSize returns the state vector length.
func (c *CoreNetwork) HiddenSize() int { return c.hidden }

// InitHidden returns a zeroed state per sample.
func (c *CoreNetwork) InitHidden(batchSize int) [][]float32 {
	states := make([][]float32, batchSize)
	for i := range states {
		states[i] = make([]float32, c.hidden)
	}
	return states
}

// Step advances the state for one sample given the new glimpse
// representation gt.
func (c *CoreNetwork) Step(h, gt []float32) ([]float32, error) {
	fromState, err := c.fcState.Forward(h)
	if err != nil {
		return nil, fmt.Errorf("state projection: %w", err)
	}
	fromInput, err := c.fcInput.Forward(gt)
	if err != nil {
		return nil, fmt.Errorf("input projection: %w", err)
	}
	for i := range fromState {
		fromState[i] += fromInput[i]
	}
	return ReLU(fromState), nil
}
