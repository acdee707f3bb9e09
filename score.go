package trafficcast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoSamples      = errors.New("no samples to score")
)

// Scores measures how far the live forecast has been from what was observed
type Scores struct {
	MSE     float64 `json:"mse"`  // mean squared error
	MAPE    float64 `json:"mape"` // mean average percent error
	Samples int     `json:"samples"`
}

func NewScores(predicted, actual []float64) (*Scores, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	return &Scores{
		MSE:     mse,
		MAPE:    mape,
		Samples: len(actual),
	}, nil
}

func MSE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, ErrResLenMismatch
	}
	if len(actual) == 0 {
		return 0, ErrNoSamples
	}

	diff := make([]float64, len(actual))
	floats.SubTo(diff, actual, predicted)
	return floats.Dot(diff, diff) / float64(len(actual)), nil
}

// MAPE skips slots with zero observed traffic
func MAPE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, ErrResLenMismatch
	}
	if len(actual) == 0 {
		return 0, ErrNoSamples
	}

	var mape float64
	var n int
	for i := 0; i < len(actual); i++ {
		if actual[i] == 0 {
			continue
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return mape / float64(n), nil
}
