// Package model runs fitted tabular pipelines (impute, scale, classify)
// loaded from JSON artifacts. Loaded artifacts are never mutated, so a
// Pipeline may be shared across goroutines.
package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable       = errors.New("model unavailable")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
)

// Imputer fills missing (NaN) features.
type Imputer interface {
	Transform(x []float64) ([]float64, error)
}

// Scaler normalizes feature scale.
type Scaler interface {
	Transform(x []float64) ([]float64, error)
}

// Classifier produces a class label and the positive-class probability.
type Classifier interface {
	Predict(x []float64) (int, error)
	PredictProba(x []float64) (float64, error)
}

// Pipeline is one disease's artifact triple.
type Pipeline struct {
	Imputer    Imputer
	Scaler     Scaler
	Classifier Classifier
}

// Output is the result of one pipeline pass.
type Output struct {
	Label       int
	Probability float64
}

// Run pushes x through impute, scale and classify. x is not modified.
func (p *Pipeline) Run(x []float64) (Output, error) {
	imputed, err := p.Imputer.Transform(x)
	if err != nil {
		return Output{}, fmt.Errorf("impute: %w", err)
	}
	scaled, err := p.Scaler.Transform(imputed)
	if err != nil {
		return Output{}, fmt.Errorf("scale: %w", err)
	}
	label, err := p.Classifier.Predict(scaled)
	if err != nil {
		return Output{}, fmt.Errorf("predict: %w", err)
	}
	prob, err := p.Classifier.PredictProba(scaled)
	if err != nil {
		return Output{}, fmt.Errorf("predict proba: %w", err)
	}
	return Output{Label: label, Probability: prob}, nil
}

func checkDim(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), want)
	}
	return nil
}
