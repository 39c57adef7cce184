package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sine-fitting/internal/domain"
)

func lineBounds() domain.Bounds {
	return domain.Bounds{{Low: -10, High: 10}, {Low: -10, High: 10}}
}

func TestDifferentialEvolutionFindsMinimum(t *testing.T) {
	cost := NewCostFunction(testLogger(t), lineModel{}, lineSamples(t))

	cfg := DefaultDifferentialEvolutionConfig()
	cfg.Generations = 200
	result := NewDifferentialEvolution(testLogger(t), cfg).Optimize(cost, nil, lineBounds())

	require.Len(t, result.X, 2)
	assert.InDelta(t, 2.0, result.X[0], 0.05)
	assert.InDelta(t, 1.0, result.X[1], 0.2)
	assert.Equal(t, cost.Value(result.X), result.Value)
}

func TestDifferentialEvolutionMonotoneHistory(t *testing.T) {
	s := sineSamples(t, 60, 0, 4*math.Pi, 2.5, 1.2, 0.5, 1)
	cost := NewCostFunction(testLogger(t), SineModel{}, s)
	initial := EstimateInitial(s)

	cfg := DefaultDifferentialEvolutionConfig()
	cfg.Generations = 60
	result := NewDifferentialEvolution(testLogger(t), cfg).Optimize(cost, initial, SimpleBounds(s, initial))

	require.Len(t, result.History, cfg.Generations+1)
	for i := 1; i < len(result.History); i++ {
		assert.LessOrEqual(t, result.History[i], result.History[i-1], "generation %d", i)
	}
	assert.Equal(t, result.History[len(result.History)-1], result.Value)
}

func TestDifferentialEvolutionDeterministic(t *testing.T) {
	cost := NewCostFunction(testLogger(t), lineModel{}, lineSamples(t))

	cfg := DefaultDifferentialEvolutionConfig()
	cfg.Generations = 20
	cfg.Seed = 7

	first := NewDifferentialEvolution(testLogger(t), cfg).Optimize(cost, nil, lineBounds())
	second := NewDifferentialEvolution(testLogger(t), cfg).Optimize(cost, nil, lineBounds())

	assert.Equal(t, first.X, second.X)
	assert.Equal(t, first.History, second.History)
}

func TestDifferentialEvolutionRespectsBounds(t *testing.T) {
	cost := NewCostFunction(testLogger(t), lineModel{}, lineSamples(t))
	// минимум (2, 1) вне области поиска
	bounds := domain.Bounds{{Low: -1, High: 0.5}, {Low: 3, High: 4}}

	cfg := DefaultDifferentialEvolutionConfig()
	cfg.Generations = 50
	result := NewDifferentialEvolution(testLogger(t), cfg).Optimize(cost, nil, bounds)

	for i, b := range bounds {
		assert.GreaterOrEqual(t, result.X[i], b.Low)
		assert.LessOrEqual(t, result.X[i], b.High)
	}
}

func TestDifferentialEvolutionIncludesInitial(t *testing.T) {
	cost := NewCostFunction(testLogger(t), lineModel{}, lineSamples(t))

	cfg := DefaultDifferentialEvolutionConfig()
	cfg.Generations = 0
	cfg.IncludeInitial = true
	result := NewDifferentialEvolution(testLogger(t), cfg).Optimize(cost, []float64{2, 1}, lineBounds())

	assert.Equal(t, []float64{2, 1}, result.X)
	assert.Equal(t, 0.0, result.Value)
}

func TestDifferentialEvolutionTooSmallPopulation(t *testing.T) {
	cost := NewCostFunction(testLogger(t), lineModel{}, lineSamples(t))

	cfg := DefaultDifferentialEvolutionConfig()
	cfg.PopulationSize = 3
	result := NewDifferentialEvolution(testLogger(t), cfg).Optimize(cost, []float64{1, 1}, lineBounds())

	assert.Equal(t, []float64{1, 1}, result.X)
}
