package linear

import (
	"fmt"
	"math"
)

// The model is trained on survival, so Probability is the modelled survival
// likelihood. A feature whose value*weight is negative pulls the score down and
// therefore raises mortality risk. Downstream explanation and annotation depend
// on this orientation.

var (
	minProbability = math.Nextafter(0, 1)
	maxProbability = math.Nextafter(1, 0)
)

type Result struct {
	Score       float64 `json:"score"`
	Probability float64 `json:"probability"`
}

// Score computes x·weights + intercept and its logistic transform.
func Score(x, weights []float64, intercept float64) (Result, error) {
	if len(x) != len(weights) {
		return Result{}, fmt.Errorf("feature vector has %d values for %d weights", len(x), len(weights))
	}
	score := dot(weights, x) + intercept
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Result{}, fmt.Errorf("score is not finite")
	}
	return Result{Score: score, Probability: Sigmoid(score)}, nil
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

// Sigmoid returns 1/(1+exp(-x)) kept inside the open interval (0,1) for
// every finite x. Sigmoid(0) is exactly 0.5.
func Sigmoid(x float64) float64 {
	var p float64
	if x >= 0 {
		p = 1 / (1 + math.Exp(-x))
	} else {
		e := math.Exp(x)
		p = e / (1 + e)
	}
	if p < minProbability {
		return minProbability
	}
	if p > maxProbability {
		return maxProbability
	}
	return p
}
