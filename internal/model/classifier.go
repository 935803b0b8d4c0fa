package model

import (
	"fmt"
	"math"
)

// Tree is a fitted decision tree in scikit-learn's flat array layout.
// Node i is a leaf when ChildrenLeft[i] == -1.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d: %d class weights, want %d", i, len(t.Value[i]), nClasses)
		}
		if t.ChildrenLeft[i] == -1 {
			continue
		}
		if t.ChildrenLeft[i] <= i || t.ChildrenLeft[i] >= n || t.ChildrenRight[i] <= i || t.ChildrenRight[i] >= n {
			return fmt.Errorf("node %d: child index out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, t.Feature[i])
		}
	}
	return nil
}

// leaf walks to the leaf reached by x and returns its normalised class
// distribution.
func (t *Tree) leaf(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	weights := t.Value[node]
	total := 0.0
	for _, w := range weights {
		total += w
	}
	dist := make([]float64, len(weights))
	if total == 0 {
		return dist
	}
	for i, w := range weights {
		dist[i] = w / total
	}
	return dist
}

// Forest is a random forest classifier: class probabilities are the mean of
// the per-tree leaf distributions.
type Forest struct {
	Classes   []int  `json:"classes"`
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

func (f *Forest) validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures, len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (f *Forest) proba(x []float64) ([]float64, error) {
	if err := checkDim(x, f.NFeatures); err != nil {
		return nil, err
	}
	sum := make([]float64, len(f.Classes))
	for i := range f.Trees {
		for c, p := range f.Trees[i].leaf(x) {
			sum[c] += p
		}
	}
	for c := range sum {
		sum[c] /= float64(len(f.Trees))
	}
	return sum, nil
}

func (f *Forest) Predict(x []float64) (int, error) {
	dist, err := f.proba(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(dist); c++ {
		if dist[c] > dist[best] {
			best = c
		}
	}
	return f.Classes[best], nil
}

// PredictProba returns the probability of Classes[1].
func (f *Forest) PredictProba(x []float64) (float64, error) {
	dist, err := f.proba(x)
	if err != nil {
		return 0, err
	}
	return dist[1], nil
}

// Logistic is a binary logistic regression.
type Logistic struct {
	Classes   []int     `json:"classes"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (l *Logistic) PredictProba(x []float64) (float64, error) {
	if err := checkDim(x, len(l.Coef)); err != nil {
		return 0, err
	}
	z := l.Intercept
	for i, w := range l.Coef {
		z += w * x[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func (l *Logistic) Predict(x []float64) (int, error) {
	p, err := l.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p > 0.5 {
		return l.Classes[1], nil
	}
	return l.Classes[0], nil
}
