package optimization

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"sine-fitting/internal/domain"
)

const (
	// HUGE_VAL заменяет неконечное значение целевой функции
	HUGE_VAL = 1e10

	gradientStep = 1e-8
	jacobianStep = 1e-7
)

// CostFunction - сумма квадратов невязок модели на наборе точек.
type CostFunction struct {
	logger  *zap.Logger
	model   Model
	samples *domain.SampleSet
}

func NewCostFunction(logger *zap.Logger, model Model, samples *domain.SampleSet) *CostFunction {
	return &CostFunction{
		logger:  logger,
		model:   model,
		samples: samples,
	}
}

func (c *CostFunction) Model() Model {
	return c.model
}

func (c *CostFunction) Samples() *domain.SampleSet {
	return c.samples
}

func (c *CostFunction) NumParams() int {
	return c.model.NumParams()
}

// sse вычисляет сумму квадратов без защиты от переполнения.
func (c *CostFunction) sse(x []float64) float64 {
	var sum float64
	for i, xi := range c.samples.X {
		r := c.samples.Y[i] - c.model.Eval(xi, x)
		sum += r * r
	}
	return sum
}

// Value - основная функция стоимости. Неконечный результат заменяется на HUGE_VAL.
func (c *CostFunction) Value(x []float64) float64 {
	// Проверка размерности
	if len(x) != c.model.NumParams() {
		return HUGE_VAL
	}

	total := c.sse(x)
	if !isFinite(total) {
		c.logger.Debug("Non-finite cost replaced",
			zap.String("model", c.model.Name()),
			zap.Float64s("params", x))
		return HUGE_VAL
	}
	return total
}

// Residuals returns y - f(x; p) for every sample, reusing dst when it is large enough.
func (c *CostFunction) Residuals(x []float64, dst []float64) []float64 {
	n := c.samples.Len()
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	for i, xi := range c.samples.X {
		dst[i] = c.samples.Y[i] - c.model.Eval(xi, x)
	}
	return dst
}

// Predict evaluates the model at arbitrary abscissae.
func (c *CostFunction) Predict(x []float64, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, xi := range xs {
		out[i] = c.model.Eval(xi, x)
	}
	return out
}

// Gradient вычисляет градиент центральными разностями (h = 1e-8).
// Если в смещённой точке значение неконечно, компонента обнуляется.
func (c *CostFunction) Gradient(x []float64) []float64 {
	n := len(x)
	gradient := make([]float64, n)
	h := gradientStep

	// Временный срез для модификаций (не трогаем входной x)
	xMod := make([]float64, n)
	copy(xMod, x)

	for i := 0; i < n; i++ {
		xMod[i] = x[i] + h
		fPlus := c.sse(xMod)
		xMod[i] = x[i] - h
		fMinus := c.sse(xMod)

		if !isFinite(fPlus) || !isFinite(fMinus) {
			gradient[i] = 0
		} else {
			gradient[i] = (fPlus - fMinus) / (2 * h)
		}

		// Восстанавливаем исходное значение
		xMod[i] = x[i]
	}

	c.logger.Debug("Gradient computed",
		zap.Float64s("input", x),
		zap.Float64s("gradient", gradient))

	return gradient
}

// Jacobian returns the (samples × params) matrix of ∂f/∂p. Models implementing
// JacobianModel are differentiated analytically, others by forward differences.
func (c *CostFunction) Jacobian(x []float64) *mat.Dense {
	m, n := c.samples.Len(), len(x)
	jac := mat.NewDense(m, n, nil)

	if jm, ok := c.model.(JacobianModel); ok {
		row := make([]float64, n)
		for i, xi := range c.samples.X {
			jm.Gradient(xi, x, row)
			jac.SetRow(i, row)
		}
		return jac
	}

	xMod := make([]float64, n)
	copy(xMod, x)
	for k := 0; k < n; k++ {
		h := jacobianStep * math.Max(1, math.Abs(x[k]))
		xMod[k] = x[k] + h
		for i, xi := range c.samples.X {
			jac.Set(i, k, (c.model.Eval(xi, xMod)-c.model.Eval(xi, x))/h)
		}
		xMod[k] = x[k]
	}
	return jac
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
