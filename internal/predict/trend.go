package predict

import "errors"

// MinPoints is the fewest closes a trend fit will accept.
const MinPoints = 10

// ErrInsufficientData is a valid result state, not a failure: the caller
// reports the latest close with a Hold recommendation.
var ErrInsufficientData = errors.New("not enough data points for a prediction")

// NextClose fits an ordinary-least-squares line of close price against the
// integer time index 0..n-1 and extrapolates one step to index n. The input
// must already be sorted ascending by time; ordering is the caller's job.
//
// Deterministic and pure. A perfect line reproduces exactly: closes 1..10
// predict 11.
func NextClose(closes []float64) (float64, error) {
	n := len(closes)
	if n < MinPoints {
		return 0, ErrInsufficientData
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	return intercept + slope*fn, nil
}
