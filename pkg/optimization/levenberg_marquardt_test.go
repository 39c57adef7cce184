package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenbergMarquardtConverges(t *testing.T) {
	s := sineSamples(t, 100, 0, 2*math.Pi, 1, 1, 0, 0)
	cost := NewCostFunction(testLogger(t), SineModel{}, s)

	lm := NewLevenbergMarquardt(testLogger(t), DefaultLevenbergMarquardtConfig())
	result := lm.Optimize(cost, []float64{1.2, 0.9, 0.2, 0.1}, nil)

	require.Len(t, result.X, 4)
	assert.InDelta(t, 1.0, result.X[0], 1e-6)
	assert.InDelta(t, 1.0, result.X[1], 1e-6)
	assert.InDelta(t, 0.0, result.X[2], 1e-6)
	assert.InDelta(t, 0.0, result.X[3], 1e-6)
	assert.Less(t, result.Value, 1e-10)
}

func TestLevenbergMarquardtAcceptedCostsDecrease(t *testing.T) {
	s := sineSamples(t, 60, 0, 4*math.Pi, 2.5, 1.2, 0.5, 1)
	cost := NewCostFunction(testLogger(t), SineModel{}, s)

	result := NewLevenbergMarquardt(testLogger(t), DefaultLevenbergMarquardtConfig()).
		Optimize(cost, []float64{2, 1.1, 0.3, 0.8}, nil)

	require.NotEmpty(t, result.History)
	for i := 1; i < len(result.History); i++ {
		assert.Less(t, result.History[i], result.History[i-1], "step %d", i)
	}
	assert.Equal(t, result.History[len(result.History)-1], result.Value)
	assert.Equal(t, cost.Value(result.X), result.Value)
}

func TestLevenbergMarquardtRejectedStepsKeepParams(t *testing.T) {
	s := sineSamples(t, 50, 0, 5, 1, 1, 0.3, 0)
	cost := NewCostFunction(testLogger(t), SineModel{}, s)
	exact := []float64{1, 1, 0.3, 0}

	// в точном минимуме ни один шаг не уменьшает стоимость
	result := NewLevenbergMarquardt(testLogger(t), DefaultLevenbergMarquardtConfig()).Optimize(cost, exact, nil)

	assert.Equal(t, exact, result.X)
	assert.Len(t, result.History, 1)
}

func TestLevenbergMarquardtSingularSystem(t *testing.T) {
	s := sineSamples(t, 30, 0, 5, 1, 1, 0, 0)
	cost := NewCostFunction(testLogger(t), SineModel{}, s)
	// при нулевой амплитуде столбцы по f и φ нулевые
	initial := []float64{0, 1, 0, 0}

	result := NewLevenbergMarquardt(testLogger(t), DefaultLevenbergMarquardtConfig()).Optimize(cost, initial, nil)

	assert.Equal(t, initial, result.X)
	assert.False(t, result.Converged)
	assert.Less(t, result.Iterations, DefaultLevenbergMarquardtConfig().MaxIterations)
}
