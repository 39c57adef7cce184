package optimization

import (
	"slices"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"sine-fitting/internal/domain"
)

type DifferentialEvolutionConfig struct {
	PopulationSize int
	Generations    int
	Mutation       float64 // F
	Crossover      float64 // CR
	Seed           uint64
	// IncludeInitial заменяет первую особь стартовым приближением (с учётом границ)
	IncludeInitial bool
}

func DefaultDifferentialEvolutionConfig() DifferentialEvolutionConfig {
	return DifferentialEvolutionConfig{
		PopulationSize: 40,
		Generations:    300,
		Mutation:       0.8,
		Crossover:      0.9,
		Seed:           42,
		IncludeInitial: false,
	}
}

// DifferentialEvolution - глобальный поиск в заданных границах (схема DE/rand/1/bin
// без обязательного индекса скрещивания).
//
// Особь заменяется сразу после успешного испытания, поэтому следующие особи того
// же поколения видят уже обновлённую популяцию. При фиксированном Seed результат
// воспроизводим.
type DifferentialEvolution struct {
	logger *zap.Logger
	config DifferentialEvolutionConfig
}

func NewDifferentialEvolution(logger *zap.Logger, config DifferentialEvolutionConfig) *DifferentialEvolution {
	return &DifferentialEvolution{logger: logger, config: config}
}

func (d *DifferentialEvolution) Optimize(cost *CostFunction, initial []float64, bounds domain.Bounds) Result {
	cfg := d.config
	dim := len(bounds)
	popSize := cfg.PopulationSize

	if dim == 0 || popSize < 4 {
		d.logger.Warn("Differential evolution skipped",
			zap.Int("dimensions", dim),
			zap.Int("population", popSize))
		return Result{
			X:     append([]float64(nil), initial...),
			Value: cost.Value(initial),
		}
	}

	src := rand.NewSource(cfg.Seed)
	rng := rand.New(src)

	// Инициализация популяции
	population := make([][]float64, popSize)
	for i := range population {
		population[i] = make([]float64, dim)
	}
	for j, b := range bounds {
		u := distuv.Uniform{Min: b.Low, Max: b.High, Src: src}
		for i := range population {
			population[i][j] = u.Rand()
		}
	}
	if cfg.IncludeInitial && len(initial) == dim && allFinite(initial) {
		population[0] = bounds.Clamp(initial)
	}

	fitness := make([]float64, popSize)
	for i, ind := range population {
		fitness[i] = cost.Value(ind)
	}

	history := make([]float64, 0, cfg.Generations+1)
	history = append(history, slices.Min(fitness))

	mutant := make([]float64, dim)
	trial := make([]float64, dim)

	for generation := 0; generation < cfg.Generations; generation++ {
		for i := range population {
			a, b, c := pickPartners(rng, i, popSize)

			// Мутация
			for j := range mutant {
				mutant[j] = population[a][j] + cfg.Mutation*(population[b][j]-population[c][j])
			}

			// Скрещивание
			copy(trial, population[i])
			for j := range trial {
				if rng.Float64() < cfg.Crossover {
					trial[j] = mutant[j]
				}
			}

			// Возврат в границы
			for j := range trial {
				trial[j] = bounds[j].Clamp(trial[j])
			}

			// Отбор
			if trialFitness := cost.Value(trial); trialFitness < fitness[i] {
				copy(population[i], trial)
				fitness[i] = trialFitness
			}
		}

		history = append(history, slices.Min(fitness))
	}

	bestIdx := 0
	for i, f := range fitness {
		if f < fitness[bestIdx] {
			bestIdx = i
		}
	}

	d.logger.Debug("Differential evolution finished",
		zap.Int("generations", cfg.Generations),
		zap.Float64("best", fitness[bestIdx]),
		zap.Float64s("x", population[bestIdx]))

	return Result{
		X:          append([]float64(nil), population[bestIdx]...),
		Value:      fitness[bestIdx],
		Iterations: cfg.Generations,
		History:    history,
	}
}

// pickPartners выбирает три различных индекса, отличных от i.
func pickPartners(rng *rand.Rand, i, n int) (int, int, int) {
	pick := func(exclude ...int) int {
		for {
			k := rng.Intn(n)
			if !slices.Contains(exclude, k) {
				return k
			}
		}
	}
	a := pick(i)
	b := pick(i, a)
	c := pick(i, a, b)
	return a, b, c
}
