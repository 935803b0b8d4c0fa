package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownDisease   = errors.New("disease not recognized")
	ErrModelUnavailable = errors.New("prediction temporarily unavailable")
)

type Disease string

const (
	Diabetes  Disease = "diabetes"
	Heart     Disease = "heart"
	Kidney    Disease = "kidney"
	Liver     Disease = "liver"
	Malaria   Disease = "malaria"
	Thyroid   Disease = "thyroid"
	Pneumonia Disease = "pneumonia"
)

// Diseases lists every supported disease in display order.
func Diseases() []Disease {
	return []Disease{Diabetes, Kidney, Heart, Liver, Malaria, Thyroid, Pneumonia}
}

// ParseDisease normalizes a caller-supplied identifier.
func ParseDisease(name string) (Disease, error) {
	d := Disease(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Diseases() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDisease, name)
}

type Verdict string

const (
	Normal Verdict = "Normal"
	Risky  Verdict = "Risky"
)

// ParseVerdict accepts the two verdict names, case-insensitively.
func ParseVerdict(name string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "normal":
		return Normal, nil
	case "risky":
		return Risky, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", name)
	}
}

type Strategy string

const (
	StrategyRules Strategy = "rules"
	StrategyModel Strategy = "model"
)

// Inputs is the raw form bundle for one classification. Keys are
// disease-specific; absent keys take the evaluator's default.
type Inputs map[string]string

// InputsFromValues converts a decoded JSON object into Inputs. Numbers are
// rendered in their shortest decimal form, so 1, 1.0 and 1e0 all become "1".
func InputsFromValues(values map[string]any) Inputs {
	in := make(Inputs, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			in[k] = val
		case json.Number:
			in[k] = formatNumber(val)
		case float64:
			in[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			in[k] = strconv.Itoa(val)
		case bool:
			if val {
				in[k] = "1"
			} else {
				in[k] = "0"
			}
		default:
			in[k] = fmt.Sprint(val)
		}
	}
	return in
}

// formatNumber keeps the raw text when the number overflows float64 so the
// readers reject it instead of seeing infinity.
func formatNumber(n json.Number) string {
	v, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return n.String()
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// lookup returns the first key present in the bundle.
func (in Inputs) lookup(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := in[k]; ok {
			return v, true
		}
	}
	return "", false
}

type Suggestion struct {
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
	Clinical       []string `json:"clinical" yaml:"clinical"`
	Herbal         []string `json:"herbal" yaml:"herbal"`
}

type Result struct {
	Disease     Disease    `json:"disease" yaml:"disease"`
	Verdict     Verdict    `json:"verdict" yaml:"verdict"`
	Strategy    Strategy   `json:"strategy" yaml:"strategy"`
	Probability *float64   `json:"probability,omitempty" yaml:"probability,omitempty"`
	RuleClamped bool       `json:"rule_clamped,omitempty" yaml:"rule_clamped,omitempty"`
	Suggestion  Suggestion `json:"suggestion" yaml:"suggestion"`
}
