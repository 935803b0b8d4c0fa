package model

import "math"

// MeanImputer replaces NaN at index i with Statistics[i].
type MeanImputer struct {
	Statistics []float64 `json:"statistics"`
}

func (m *MeanImputer) Transform(x []float64) ([]float64, error) {
	if err := checkDim(x, len(m.Statistics)); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			v = m.Statistics[i]
		}
		out[i] = v
	}
	return out, nil
}

// StandardScaler centers and scales each feature.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if err := checkDim(x, len(s.Mean)); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		// constant columns were fitted with zero variance
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}
