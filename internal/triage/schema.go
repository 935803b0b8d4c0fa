package triage

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// featureSchemas is the ordered field layout per disease. For model-backed
// diseases the order is the column order the artifacts were fitted with;
// reordering without refitting corrupts predictions.
var featureSchemas = map[Disease][]string{
	Diabetes:  {"Pregnancies", "Glucose", "BloodPressure", "BMI", "Age"},
	Kidney:    {"sg", "al", "rbc", "pc", "hemo", "wc", "rc", "bp"},
	Heart:     {"age", "sex", "cp", "trestbps", "chol", "thalach", "exang"},
	Liver:     {"Age", "Gender", "Total_Bilirubin", "Direct_Bilirubin", "Alkaline_Phosphotase", "Alamine_Aminotransferase", "Aspartate_Aminotransferase"},
	Malaria:   {"Temperature", "Headache", "Vomiting", "Joint_Pain", "rbc_count"},
	Thyroid:   {"Age", "Sex", "TSH", "T3", "T4", "Thyroxine"},
	Pneumonia: {"Age", "Cough_Severity", "WBC_Count", "Oxygen_Saturation", "Fever"},
}

// modelCapable lists the diseases that ship fitted artifacts.
var modelCapable = []Disease{Diabetes, Kidney, Heart, Liver}

// FeatureSchema returns a copy of the ordered field list for d.
func FeatureSchema(d Disease) []string {
	return slices.Clone(featureSchemas[d])
}

// ModelSchemas returns the schemas of every model-capable disease keyed by
// name, in the shape the artifact loader expects.
func ModelSchemas() map[string][]string {
	out := make(map[string][]string, len(modelCapable))
	for _, d := range modelCapable {
		out[string(d)] = FeatureSchema(d)
	}
	return out
}

// ModelCapable reports whether d can be routed to a fitted pipeline.
func ModelCapable(d Disease) bool {
	return slices.Contains(modelCapable, d)
}

// FeatureVector lays the bundle out in schema order. Values that do not
// parse become zero; "nan" survives as NaN so the imputer can fill it.
func FeatureVector(d Disease, in Inputs) []float64 {
	schema := featureSchemas[d]
	vec := make([]float64, len(schema))
	for i, field := range schema {
		raw, ok := in[field]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsInf(v, 0) {
			continue
		}
		vec[i] = v
	}
	return vec
}
