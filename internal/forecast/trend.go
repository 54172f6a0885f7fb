// Package forecast fits a straight least-squares trend to a monthly series and
// projects it one month ahead.
package forecast

import (
	"errors"
	"math"

	"fabricstore/internal/domain"
)

// ErrInsufficientData is returned when the series has fewer than two points.
var ErrInsufficientData = errors.New("forecast: at least two observations are required")

// FitTrend fits y against x[i] = i - n/2. With x centred this way the
// intercept is mean(y) and the slope is Σxy/Σx², so no normal equations are
// solved. The only error is ErrInsufficientData.
func FitTrend(y []float64) (domain.ForecastResult, error) {
	n := len(y)
	if n < 2 {
		return domain.ForecastResult{}, ErrInsufficientData
	}

	half := n / 2
	x := make([]int, n)
	var sumY, sumXY, sumXX float64
	for i, value := range y {
		x[i] = i - half
		xf := float64(x[i])
		sumY += value
		sumXY += xf * value
		sumXX += xf * xf
	}
	if sumXX == 0 {
		panic("forecast: x axis has no spread")
	}

	a := sumY / float64(n)
	b := sumXY / sumXX

	result := domain.ForecastResult{
		X:                x,
		Y:                append([]float64(nil), y...),
		A:                a,
		B:                b,
		FittedValues:     make([]float64, n),
		AbsoluteErrors:   make([]float64, n),
		PercentageErrors: []float64{},
	}

	var sumAbs, sumPct float64
	for i, actual := range y {
		fitted := a + b*float64(x[i])
		absErr := math.Abs(actual - fitted)
		result.FittedValues[i] = fitted
		result.AbsoluteErrors[i] = absErr
		sumAbs += absErr

		// Months with zero actuals have no defined percentage error and are
		// left out of MAPE entirely.
		if actual != 0 {
			pct := absErr / math.Abs(actual) * 100
			result.PercentageErrors = append(result.PercentageErrors, pct)
			sumPct += pct
		}
	}

	result.MAE = sumAbs / float64(n)
	if len(result.PercentageErrors) > 0 {
		result.MAPE = sumPct / float64(len(result.PercentageErrors))
	}

	xNext := x[n-1] + 1
	result.PredictedNext = domain.Round2(a + b*float64(xNext))
	return result, nil
}
