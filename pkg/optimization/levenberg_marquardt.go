package optimization

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"sine-fitting/internal/domain"
)

type LevenbergMarquardtConfig struct {
	MaxIterations int
	InitialLambda float64
	Tolerance     float64 // порог нормы шага
	LambdaUp      float64
	LambdaDown    float64
	MaxLambda     float64
}

func DefaultLevenbergMarquardtConfig() LevenbergMarquardtConfig {
	return LevenbergMarquardtConfig{
		MaxIterations: 100,
		InitialLambda: 1e-3,
		Tolerance:     1e-8,
		LambdaUp:      10,
		LambdaDown:    0.1,
		MaxLambda:     1e16,
	}
}

// LevenbergMarquardt - локальный метод Гаусса-Ньютона с демпфированием
// λ·diag(JᵀJ) (масштабирование Левенберга).
type LevenbergMarquardt struct {
	logger *zap.Logger
	config LevenbergMarquardtConfig
}

func NewLevenbergMarquardt(logger *zap.Logger, config LevenbergMarquardtConfig) *LevenbergMarquardt {
	return &LevenbergMarquardt{logger: logger, config: config}
}

// Optimize ignores bounds. History starts with the initial cost and gets one
// entry per accepted step.
func (l *LevenbergMarquardt) Optimize(cost *CostFunction, initial []float64, _ domain.Bounds) Result {
	cfg := l.config
	n := len(initial)

	params := append([]float64(nil), initial...)
	current := cost.Value(params)
	history := []float64{current}
	lambda := cfg.InitialLambda
	converged := false

	var (
		jtj       mat.Dense
		jtr       mat.VecDense
		residuals []float64
		stale     = true
	)
	candidate := make([]float64, n)

	it := 0
	for ; it < cfg.MaxIterations; it++ {
		if stale {
			residuals = cost.Residuals(params, residuals)
			jac := cost.Jacobian(params)
			jtj.Reset()
			jtr.Reset()
			jtj.Mul(jac.T(), jac)
			jtr.MulVec(jac.T(), mat.NewVecDense(len(residuals), residuals))
			stale = false
		}

		// (JᵀJ + λ·diag(JᵀJ)) Δ = Jᵀr
		damped := mat.DenseCopyOf(&jtj)
		for i := 0; i < n; i++ {
			damped.Set(i, i, jtj.At(i, i)*(1+lambda))
		}

		var delta mat.VecDense
		if err := delta.SolveVec(damped, &jtr); err != nil || !allFinite(delta.RawVector().Data) {
			lambda *= cfg.LambdaUp
			if lambda > cfg.MaxLambda {
				l.logger.Debug("Damping limit reached", zap.Int("iteration", it))
				break
			}
			continue
		}

		step := delta.RawVector().Data
		floats.AddTo(candidate, params, step)
		newCost := cost.Value(candidate)

		if newCost < current {
			// шаг принят, уменьшаем демпфирование
			copy(params, candidate)
			current = newCost
			history = append(history, current)
			lambda *= cfg.LambdaDown
			stale = true

			if floats.Norm(step, 2) < cfg.Tolerance {
				converged = true
				break
			}
		} else {
			lambda *= cfg.LambdaUp
			if lambda > cfg.MaxLambda {
				l.logger.Debug("Damping limit reached", zap.Int("iteration", it))
				break
			}
		}
	}

	l.logger.Debug("Levenberg-Marquardt finished",
		zap.Int("iterations", it),
		zap.Float64("cost", current),
		zap.Float64("lambda", lambda),
		zap.Bool("converged", converged))

	return Result{
		X:          params,
		Value:      current,
		Iterations: it,
		Converged:  converged,
		History:    history,
	}
}
