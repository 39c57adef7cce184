package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sine-fitting/internal/domain"
)

// partialModel: p0, второй параметр допустим только в нуле
type partialModel struct{}

func (partialModel) Name() string   { return "partial" }
func (partialModel) NumParams() int { return 2 }
func (partialModel) Eval(x float64, p []float64) float64 {
	if p[1] != 0 {
		return math.NaN()
	}
	return p[0]
}

type nanModel struct{}

func (nanModel) Name() string                        { return "nan" }
func (nanModel) NumParams() int                      { return 1 }
func (nanModel) Eval(x float64, p []float64) float64 { return math.NaN() }

type constModel struct{}

func (constModel) Name() string                        { return "const" }
func (constModel) NumParams() int                      { return 1 }
func (constModel) Eval(x float64, p []float64) float64 { return p[0] }

func rampSamples(t *testing.T) *domain.SampleSet {
	t.Helper()
	s, err := domain.NewSampleSet([]float64{0, 1, 2, 3}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	return s
}

func TestGradientDescentConverges(t *testing.T) {
	cost := NewCostFunction(testLogger(t), constModel{}, rampSamples(t))

	cfg := DefaultGradientDescentConfig()
	cfg.LearningRate = 1e-3
	cfg.MaxIterations = 5000
	cfg.Tolerance = 1e-14
	gd := NewGradientDescent(testLogger(t), cfg)

	initial := []float64{0}
	result := gd.Optimize(cost, initial, nil)

	require.Len(t, result.X, 1)
	assert.Less(t, result.Value, cost.Value(initial))
	assert.InDelta(t, 2.5, result.X[0], 1e-2)
	assert.Equal(t, []float64{0}, initial, "initial vector must not be modified")
}

func TestGradientDescentSkipsNonFiniteComponent(t *testing.T) {
	cost := NewCostFunction(testLogger(t), partialModel{}, rampSamples(t))

	cfg := DefaultGradientDescentConfig()
	cfg.LearningRate = 1e-3
	cfg.MaxIterations = 5000
	cfg.Tolerance = 1e-14
	result := NewGradientDescent(testLogger(t), cfg).Optimize(cost, []float64{0, 0}, nil)

	assert.Equal(t, 0.0, result.X[1])
	assert.InDelta(t, 2.5, result.X[0], 1e-2)
}

func TestGradientDescentNonFiniteObjective(t *testing.T) {
	cost := NewCostFunction(testLogger(t), nanModel{}, lineSamples(t))

	result := NewGradientDescent(testLogger(t), DefaultGradientDescentConfig()).
		Optimize(cost, []float64{0.5}, nil)

	assert.Equal(t, []float64{0.5}, result.X)
	assert.Equal(t, HUGE_VAL, result.Value)
	assert.False(t, result.Converged)
}

func TestGradientDescentClampsParameters(t *testing.T) {
	samples, err := domain.NewSampleSet([]float64{0, 1, 2, 3}, []float64{1e5, 1e5, 1e5, 1e5})
	require.NoError(t, err)
	cost := NewCostFunction(testLogger(t), constModel{}, samples)

	cfg := DefaultGradientDescentConfig()
	cfg.LearningRate = 0.1
	result := NewGradientDescent(testLogger(t), cfg).Optimize(cost, []float64{0}, nil)

	assert.Equal(t, 1000.0, result.X[0])
}
