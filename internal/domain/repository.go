package domain

// SampleReader интерфейс для чтения входных точек
type SampleReader interface {
	ReadSamples(filename string) (*SampleSet, error)
}

// ResultWriter интерфейс для записи результатов
type ResultWriter interface {
	WriteCurve(filename string, result *FitResult) error
	WriteHistogram(filename string, hist *Histogram) error
	WriteReport(filename string, result *FitResult) error
}

// ConfigReader интерфейс для чтения конфигурации
type ConfigReader interface {
	ReadConfig(path string, args []string) (*Config, error)
}
