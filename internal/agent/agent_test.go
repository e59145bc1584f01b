package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/network"
	"github.com/MeKo-Tech/retina/internal/tensor"
)

func newTestAgent(t *testing.T, g, k int, c int, classes int) *Agent {
	t.Helper()

	sensor, err := glimpse.NewSensor(g, k, 2)
	require.NoError(t, err)

	phiSize := k * g * g * c
	gn, err := network.NewGlimpseNetwork(phiSize, 16, 8, 1)
	require.NoError(t, err)
	core, err := network.NewCoreNetwork(gn.OutputSize(), 32, 2)
	require.NoError(t, err)
	action, err := network.NewActionNetwork(32, classes, 3)
	require.NoError(t, err)

	a, err := New(sensor, gn, core, action, network.CenterPolicy{})
	require.NoError(t, err)
	return a
}

func testBatch(t *testing.T, b, h, w, c int) *tensor.ImageBatch {
	t.Helper()
	batch, err := tensor.NewImageBatch(b, h, w, c)
	require.NoError(t, err)
	for i := range batch.Data {
		batch.Data[i] = float32(i%255) / 255
	}
	return batch
}

func TestNew_Validation(t *testing.T) {
	gn, err := network.NewGlimpseNetwork(16, 8, 4, 1)
	require.NoError(t, err)
	core, err := network.NewCoreNetwork(12, 16, 2)
	require.NoError(t, err)

	_, err = New(nil, gn, core, nil, network.CenterPolicy{})
	assert.Error(t, err)

	sensor, err := glimpse.NewSensor(4, 1, 2)
	require.NoError(t, err)
	_, err = New(sensor, nil, core, nil, network.CenterPolicy{})
	assert.Error(t, err)
	_, err = New(sensor, gn, core, nil, nil)
	assert.Error(t, err)
}

func TestObserve_ProducesStepsAndProbabilities(t *testing.T) {
	a := newTestAgent(t, 4, 2, 1, 10)
	batch := testBatch(t, 3, 16, 16, 1)

	res, err := a.Observe(context.Background(), batch, 5)
	require.NoError(t, err)

	require.Len(t, res.Steps, 5)
	for i, step := range res.Steps {
		assert.Equal(t, i, step.Step)
		assert.Len(t, step.Locations, 3)
		assert.Equal(t, []int{4, 8}, step.PatchSizes)
	}

	require.Len(t, res.Probabilities, 3)
	for _, probs := range res.Probabilities {
		require.Len(t, probs, 10)
		var sum float32
		for _, p := range probs {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-4)
	}
}

func TestObserve_NoActionHead(t *testing.T) {
	a := newTestAgent(t, 4, 1, 1, 10)
	a.Action = nil
	batch := testBatch(t, 1, 8, 8, 1)

	res, err := a.Observe(context.Background(), batch, 2)
	require.NoError(t, err)
	assert.Nil(t, res.Probabilities)
	assert.Len(t, res.Hidden, 1)
}

func TestObserve_InvalidSteps(t *testing.T) {
	a := newTestAgent(t, 4, 1, 1, 2)
	batch := testBatch(t, 1, 8, 8, 1)
	_, err := a.Observe(context.Background(), batch, 0)
	assert.Error(t, err)
}

func TestObserve_CancelledContext(t *testing.T) {
	a := newTestAgent(t, 4, 1, 1, 2)
	batch := testBatch(t, 1, 8, 8, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Observe(ctx, batch, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObserve_Deterministic(t *testing.T) {
	batch := testBatch(t, 2, 16, 16, 1)

	runOnce := func() *ObservationResult {
		a := newTestAgent(t, 4, 2, 1, 10)
		res, err := a.Observe(context.Background(), batch, 4)
		require.NoError(t, err)
		return res
	}
	first := runOnce()
	second := runOnce()
	assert.Equal(t, first.Probabilities, second.Probabilities)
}
