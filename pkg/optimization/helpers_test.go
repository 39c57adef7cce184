package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/floats"

	"sine-fitting/internal/domain"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

// sineSamples generates amplitude*sin(frequency*x + phase) + offset on n evenly spaced points.
func sineSamples(t *testing.T, n int, lo, hi, amplitude, frequency, phase, offset float64) *domain.SampleSet {
	t.Helper()
	x := floats.Span(make([]float64, n), lo, hi)
	y := make([]float64, n)
	for i, xi := range x {
		y[i] = amplitude*math.Sin(frequency*xi+phase) + offset
	}
	s, err := domain.NewSampleSet(x, y)
	require.NoError(t, err)
	return s
}

// lineModel: p0*x + p1
type lineModel struct{}

func (lineModel) Name() string   { return "line" }
func (lineModel) NumParams() int { return 2 }
func (lineModel) Eval(x float64, p []float64) float64 {
	return p[0]*x + p[1]
}

func lineSamples(t *testing.T) *domain.SampleSet {
	t.Helper()
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 2*xi + 1
	}
	s, err := domain.NewSampleSet(x, y)
	require.NoError(t, err)
	return s
}
