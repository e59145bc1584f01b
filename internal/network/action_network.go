package network

import (
	"fmt"
	"math/rand"
)

// ActionNetwork maps the core state to class probabilities via a dense
// layer followed by a softmax.
type ActionNetwork struct {
	fc *Linear
}

// NewActionNetwork builds the classification head.
func NewActionNetwork(inputSize, numClasses int, seed int64) (*ActionNetwork, error) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic init, not crypto
	fc, err := NewLinear(inputSize, numClasses, rng)
	if err != nil {
		return nil, fmt.Errorf("action head: %w", err)
	}
	return &ActionNetwork{fc: fc}, nil
}

// NumClasses returns the output distribution size.
func (a *ActionNetwork) NumClasses() int { return a.fc.OutSize }

// Forward returns the class probability distribution for one state vector.
func (a *ActionNetwork) Forward(h []float32) ([]float32, error) {
	logits, err := a.fc.Forward(h)
	if err != nil {
		return nil, fmt.Errorf("action head: %w", err)
	}
	return Softmax(logits), nil
}
