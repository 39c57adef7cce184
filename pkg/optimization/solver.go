package optimization

import (
	"go.uber.org/zap"

	"sine-fitting/internal/domain"
)

// Optimizer минимизирует функцию стоимости, начиная с initial.
// Границы используют только глобальные методы.
type Optimizer interface {
	Optimize(cost *CostFunction, initial []float64, bounds domain.Bounds) Result
}

// Result - результат оптимизации
type Result struct {
	X          []float64
	Value      float64
	Iterations int
	Converged  bool
	// History хранит последовательность значений стоимости (лучшее по поколениям
	// для DE, принятые шаги для LM)
	History []float64
}

// Chain запускает этапы последовательно; каждый стартует с результата предыдущего.
type Chain struct {
	logger *zap.Logger
	stages []Optimizer
}

func NewChain(logger *zap.Logger, stages ...Optimizer) *Chain {
	return &Chain{logger: logger, stages: stages}
}

// Optimize returns the lowest-cost result seen across the initial point and all stages.
func (c *Chain) Optimize(cost *CostFunction, initial []float64, bounds domain.Bounds) Result {
	best := Result{
		X:     append([]float64(nil), initial...),
		Value: cost.Value(initial),
	}
	x := best.X
	iterations := 0

	for i, stage := range c.stages {
		result := stage.Optimize(cost, x, bounds)
		iterations += result.Iterations

		c.logger.Debug("Stage finished",
			zap.Int("stage", i),
			zap.Float64("cost", result.Value),
			zap.Int("iterations", result.Iterations),
			zap.Bool("converged", result.Converged))

		if len(result.X) != len(initial) || !allFinite(result.X) {
			c.logger.Warn("Stage produced invalid parameters, keeping previous", zap.Int("stage", i))
			continue
		}
		if result.Value <= best.Value {
			best = result
		}
		x = result.X
	}

	best.Iterations = iterations
	return best
}

// NewOptimizer собирает стратегию оптимизации для заданной модели по конфигурации.
func NewOptimizer(logger *zap.Logger, config *domain.Config, kind domain.ModelKind) Optimizer {
	switch config.GetOptMethod() {
	case domain.MethodGradientDescent:
		gdConf := DefaultGradientDescentConfig()
		gdConf.Tolerance = config.GDTolerance
		if kind == domain.ModelComposite {
			gdConf.LearningRate = config.CompositeLearningRate
			gdConf.MaxIterations = config.CompositeMaxIter
		} else {
			gdConf.LearningRate = config.GDLearningRate
			gdConf.MaxIterations = config.GDMaxIter
		}
		return NewGradientDescent(logger, gdConf)

	default:
		deConf := DefaultDifferentialEvolutionConfig()
		deConf.PopulationSize = config.Population
		deConf.Generations = config.Generations
		deConf.Mutation = config.Mutation
		deConf.Crossover = config.Crossover
		deConf.Seed = uint64(config.Seed)
		deConf.IncludeInitial = config.IncludeInitial()

		lmConf := DefaultLevenbergMarquardtConfig()
		lmConf.MaxIterations = config.LMMaxIter
		lmConf.InitialLambda = config.LMLambda

		return NewChain(logger,
			NewDifferentialEvolution(logger, deConf),
			NewLevenbergMarquardt(logger, lmConf))
	}
}

// BestOf returns the finite candidate with the lowest cost, or nil when none is finite.
func BestOf(cost *CostFunction, candidates ...[]float64) []float64 {
	var best []float64
	bestValue := 0.0
	for _, p := range candidates {
		if len(p) != cost.NumParams() || !allFinite(p) {
			continue
		}
		v := cost.Value(p)
		if best == nil || v < bestValue {
			best, bestValue = p, v
		}
	}
	if best == nil {
		return nil
	}
	return append([]float64(nil), best...)
}
