package service

// Forecaster produces horizon forward values from a historical series.
type Forecaster interface {
	Forecast(series []float64, horizon int) ([]float64, error)
}
