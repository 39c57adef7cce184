package domain

// FittingService сервис аппроксимации синусоидой
type FittingService interface {
	Fit(samples *SampleSet) (*FitResult, error)
	ProcessBatch(inputs map[string]*SampleSet) map[string]*ProcessingResult
}

// ProcessingTask задача обработки одного набора данных
type ProcessingTask struct {
	Name    string
	Samples *SampleSet
	Result  chan<- *ProcessingResult
}

type ProcessingResult struct {
	Name   string
	Result *FitResult
	Err    error
}
