package optimization

import (
	"math"

	"go.uber.org/zap"

	"sine-fitting/internal/domain"
)

type GradientDescentConfig struct {
	LearningRate  float64
	MaxIterations int
	Tolerance     float64

	Momentum         float64 // коэффициент экспоненциального сглаживания градиента
	BurnIn           int     // число итераций до разрешения роста шага
	GrowthFactor     float64
	ShrinkFactor     float64
	ImprovementRatio float64 // рост шага только если sse < prev*ratio
	OverflowCut      float64
	MinLearningRate  float64
	ParamLimit       float64
}

func DefaultGradientDescentConfig() GradientDescentConfig {
	return GradientDescentConfig{
		LearningRate:     0.01,
		MaxIterations:    1000,
		Tolerance:        1e-8,
		Momentum:         0.9,
		BurnIn:           100,
		GrowthFactor:     1.01,
		ShrinkFactor:     0.5,
		ImprovementRatio: 0.99,
		OverflowCut:      0.1,
		MinLearningRate:  1e-10,
		ParamLimit:       1000,
	}
}

// GradientDescent минимизирует сумму квадратов градиентным спуском с моментом
// и адаптивным шагом. Производные берутся численно, поэтому метод подходит
// для любой модели.
type GradientDescent struct {
	logger *zap.Logger
	config GradientDescentConfig
}

func NewGradientDescent(logger *zap.Logger, config GradientDescentConfig) *GradientDescent {
	return &GradientDescent{logger: logger, config: config}
}

// Optimize ignores bounds; parameters are clamped to ±ParamLimit instead.
func (g *GradientDescent) Optimize(cost *CostFunction, initial []float64, _ domain.Bounds) Result {
	cfg := g.config
	n := len(initial)

	params := append([]float64(nil), initial...)
	prev := append([]float64(nil), initial...)
	velocity := make([]float64, n)

	lr := cfg.LearningRate
	prevSSE := math.Inf(1)
	converged := false

	it := 0
	for ; it < cfg.MaxIterations; it++ {
		sse := cost.sse(params)

		if !isFinite(sse) {
			// переполнение: уменьшаем шаг и повторяем его из последней допустимой точки
			lr *= cfg.OverflowCut
			if lr < cfg.MinLearningRate {
				g.logger.Debug("Learning rate too small, stopping", zap.Int("iteration", it))
				copy(params, prev)
				break
			}
			g.step(params, prev, velocity, lr)
			continue
		}

		if math.Abs(prevSSE-sse) < cfg.Tolerance {
			converged = true
			break
		}

		grad := cost.Gradient(params)
		if !allFinite(grad) {
			g.logger.Debug("Invalid gradient, stopping", zap.Int("iteration", it))
			break
		}

		for i := range velocity {
			velocity[i] = cfg.Momentum*velocity[i] + (1-cfg.Momentum)*grad[i]
		}

		if sse > prevSSE {
			lr *= cfg.ShrinkFactor
		} else if it > cfg.BurnIn && sse < prevSSE*cfg.ImprovementRatio {
			lr *= cfg.GrowthFactor
		}

		copy(prev, params)
		g.step(params, prev, velocity, lr)
		prevSSE = sse
	}

	if !isFinite(cost.sse(params)) {
		copy(params, prev)
	}

	g.logger.Debug("Gradient descent finished",
		zap.Int("iterations", it),
		zap.Float64("learning_rate", lr),
		zap.Bool("converged", converged))

	return Result{
		X:          params,
		Value:      cost.Value(params),
		Iterations: it,
		Converged:  converged,
	}
}

// step: params = clamp(from - lr*velocity)
func (g *GradientDescent) step(params, from, velocity []float64, lr float64) {
	limit := g.config.ParamLimit
	for i := range params {
		params[i] = math.Max(-limit, math.Min(limit, from[i]-lr*velocity[i]))
	}
}
