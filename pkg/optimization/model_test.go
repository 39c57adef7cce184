package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPhase(t *testing.T) {
	assert.Equal(t, math.Pi, WrapPhase(-math.Pi))
	assert.Equal(t, math.Pi, WrapPhase(math.Pi))
	assert.InDelta(t, 0.5*math.Pi, WrapPhase(2.5*math.Pi), 1e-12)
	assert.InDelta(t, -0.5*math.Pi, WrapPhase(-2.5*math.Pi), 1e-12)
	assert.Equal(t, 0.0, WrapPhase(0))
}

func TestSineCanonicalizePreservesCurve(t *testing.T) {
	model := SineModel{}
	cases := [][]float64{
		{-2, 1.5, 0.3, 1},
		{2, -1.5, 0.3, 1},
		{-2, -1.5, 7.1, -0.5},
		{1, 1, -9, 0},
	}

	for _, p := range cases {
		canon := model.Canonicalize(p)
		require.Len(t, canon, 4)
		assert.GreaterOrEqual(t, canon[0], 0.0)
		assert.GreaterOrEqual(t, canon[1], 0.0)
		assert.Greater(t, canon[2], -math.Pi)
		assert.LessOrEqual(t, canon[2], math.Pi)

		for _, x := range []float64{-3, -0.5, 0, 0.7, 2, 5.5} {
			assert.InDelta(t, model.Eval(x, p), model.Eval(x, canon), 1e-9, "params %v at x=%v", p, x)
		}
	}
}

func TestCompositeCanonicalizePreservesCurve(t *testing.T) {
	model := CompositeModel{}
	p := []float64{-1, 2, 4, -0.5, -3, -5, 0.2}
	canon := model.Canonicalize(p)

	for _, idx := range []int{0, 1, 3, 4} {
		assert.GreaterOrEqual(t, canon[idx], 0.0)
	}
	for _, x := range []float64{-1, 0, 0.3, 1.7, 4} {
		assert.InDelta(t, model.Eval(x, p), model.Eval(x, canon), 1e-9)
	}
	// исходный вектор не меняется
	assert.Equal(t, -1.0, p[0])
}

func TestCanonicalizeUnknownModelCopies(t *testing.T) {
	p := []float64{1, 2}
	out := Canonicalize(lineModel{}, p)
	assert.Equal(t, p, out)
	out[0] = 5
	assert.Equal(t, 1.0, p[0])
}

func TestAnalyticGradients(t *testing.T) {
	const h = 1e-6
	models := []struct {
		model  JacobianModel
		params []float64
	}{
		{SineModel{}, []float64{1.3, 0.8, 0.4, -0.2}},
		{CompositeModel{}, []float64{1.3, 0.8, 0.4, 0.7, 2.1, -0.3, 0.5}},
	}

	for _, tc := range models {
		row := make([]float64, tc.model.NumParams())
		for _, x := range []float64{0, 0.5, 2, 3.3} {
			tc.model.Gradient(x, tc.params, row)
			for k := range row {
				plus := append([]float64(nil), tc.params...)
				minus := append([]float64(nil), tc.params...)
				plus[k] += h
				minus[k] -= h
				numeric := (tc.model.Eval(x, plus) - tc.model.Eval(x, minus)) / (2 * h)
				assert.InDelta(t, numeric, row[k], 1e-6, "%s param %d at x=%v", tc.model.Name(), k, x)
			}
		}
	}
}
