package app

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"sine-fitting/internal/domain"
	"sine-fitting/pkg/optimization"
)

// SineFitter - конвейер аппроксимации: оценка, оптимизация, выбор модели, метрики.
type SineFitter struct {
	logger *zap.Logger
	config *domain.Config
}

func NewSineFitter(logger *zap.Logger, config *domain.Config) *SineFitter {
	cfg := *config
	cfg.ApplyDefaults()
	return &SineFitter{
		logger: logger,
		config: &cfg,
	}
}

// FitXY validates raw sequences and fits them.
func (f *SineFitter) FitXY(x, y []float64) (*domain.FitResult, error) {
	samples, err := domain.NewSampleSet(x, y)
	if err != nil {
		return nil, err
	}
	return f.Fit(samples)
}

// Fit runs the whole pipeline. Only input errors are returned; numerical
// problems inside the optimizers are absorbed and the best candidate found
// is reported.
func (f *SineFitter) Fit(samples *domain.SampleSet) (*domain.FitResult, error) {
	if samples == nil {
		return nil, domain.ErrEmptySamples
	}
	// повторная проверка для наборов, собранных без конструктора
	if _, err := domain.NewSampleSet(samples.X, samples.Y); err != nil {
		return nil, err
	}

	f.logger.Debug("Fitting samples", zap.Int("points", samples.Len()))

	// Начальное приближение
	initial := optimization.EstimateInitial(samples)
	f.logger.Debug("Initial estimate", zap.Float64s("params", initial))

	// Простая модель
	simpleCost := optimization.NewCostFunction(f.logger, optimization.SineModel{}, samples)
	simple := f.fitModel(simpleCost, domain.ModelSimple, initial, optimization.SimpleBounds(samples, initial))
	chosen := simple

	// Составная модель
	compositeR2 := 0.0
	if f.config.CompareCompositeModel() {
		compositeCost := optimization.NewCostFunction(f.logger, optimization.CompositeModel{}, samples)
		compositeInitial := optimization.CompositeInitial(samples, simple.Params)
		composite := f.fitModel(compositeCost, domain.ModelComposite, compositeInitial,
			optimization.CompositeBounds(samples, compositeInitial))
		compositeR2 = composite.RSquared

		f.logger.Debug("Model comparison",
			zap.Float64("simple_r2", simple.RSquared),
			zap.Float64("composite_r2", composite.RSquared))

		chosen = optimization.SelectModel(simple, &composite, f.config.SelectionMargin)
	}

	return f.buildResult(samples, initial, chosen, simple.RSquared, compositeR2), nil
}

// fitModel оптимизирует модель и оценивает лучший найденный вектор.
func (f *SineFitter) fitModel(cost *optimization.CostFunction, kind domain.ModelKind,
	initial []float64, bounds domain.Bounds) optimization.Candidate {

	opt := optimization.NewOptimizer(f.logger, f.config, kind)
	result := opt.Optimize(cost, initial, bounds)

	// последний рубеж: если оптимизация не удалась, остаётся начальное приближение
	params := optimization.BestOf(cost, result.X, initial)
	if params == nil {
		f.logger.Warn("No finite parameters found, using initial estimate", zap.String("model", kind.String()))
		params = append([]float64(nil), initial...)
	}
	params = optimization.Canonicalize(cost.Model(), params)

	candidate := optimization.Evaluate(cost, kind, params)
	f.logger.Debug("Model fitted",
		zap.String("model", kind.String()),
		zap.Float64s("params", params),
		zap.Float64("r2", candidate.RSquared),
		zap.Int("iterations", result.Iterations))
	return candidate
}

func (f *SineFitter) buildResult(samples *domain.SampleSet, initial []float64,
	chosen optimization.Candidate, simpleR2, compositeR2 float64) *domain.FitResult {

	cost := optimization.NewCostFunction(f.logger, chosen.Model, samples)
	estimator := optimization.NewCovarianceEstimator(f.logger, f.config.GetCovarianceMethod())
	uncertainty := estimator.Estimate(cost, chosen.Params)

	lo, hi := samples.XRange()
	curveX, curveY := optimization.Curve(chosen.Model, chosen.Params, lo, hi, f.config.CurvePoints)
	if !finiteAll(curveY) {
		// исходные данные вместо кривой
		f.logger.Warn("Reconstructed curve is not finite, returning raw data")
		curveX = append([]float64(nil), samples.X...)
		curveY = append([]float64(nil), samples.Y...)
	}

	p := chosen.Params
	result := &domain.FitResult{
		CurveX:    curveX,
		CurveY:    curveY,
		Model:     chosen.Kind,
		Params:    p,
		Initial:   initial,
		Amplitude: p[0],
		Frequency: p[1],
		Phase:     p[2],
		Offset:    p[len(p)-1],
		Metrics: domain.Metrics{
			RSquared:    chosen.RSquared,
			RMSE:        chosen.RMSE,
			AIC:         chosen.AIC,
			ParamErrors: uncertainty.StdErrors,
		},
		Covariance:        estimator.Name(),
		SimpleRSquared:    simpleR2,
		CompositeRSquared: compositeR2,
		Residuals:         cost.Residuals(p, nil),
	}

	f.logger.Info("Fit completed",
		zap.String("model", result.Model.String()),
		zap.Float64("amplitude", result.Amplitude),
		zap.Float64("frequency", result.Frequency),
		zap.Float64("phase", result.Phase),
		zap.Float64("offset", result.Offset),
		zap.Float64("r2", result.Metrics.RSquared),
		zap.Float64("rmse", result.Metrics.RMSE))

	return result
}

// ProcessBatch fits independent sample sets on a pool of workers.
func (f *SineFitter) ProcessBatch(inputs map[string]*domain.SampleSet) map[string]*domain.ProcessingResult {
	results := make(map[string]*domain.ProcessingResult, len(inputs))

	var wg sync.WaitGroup
	taskChan := make(chan domain.ProcessingTask, f.config.Workers*2)
	resultChan := make(chan *domain.ProcessingResult, len(inputs))

	// Запускаем воркеры
	for i := 0; i < f.config.Workers; i++ {
		wg.Add(1)
		f.logger.Debug("Starting worker", zap.Int("id", i))
		go f.worker(i, taskChan, &wg)
	}

	// Отправляем задачи
	go func() {
		for name, samples := range inputs {
			taskChan <- domain.ProcessingTask{
				Name:    name,
				Samples: samples,
				Result:  resultChan,
			}
		}
		close(taskChan)
	}()

	// Собираем результаты
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		if result.Err != nil {
			f.logger.Error("Fit failed", zap.String("input", result.Name), zap.Error(result.Err))
		}
		results[result.Name] = result
	}

	return results
}

func (f *SineFitter) worker(id int, tasks <-chan domain.ProcessingTask, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range tasks {
		f.logger.Debug("Processing input",
			zap.Int("worker", id),
			zap.String("input", task.Name))

		result, err := f.Fit(task.Samples)
		task.Result <- &domain.ProcessingResult{
			Name:   task.Name,
			Result: result,
			Err:    err,
		}
	}
}

func finiteAll(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
