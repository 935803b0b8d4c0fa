package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	imputerSchema = `{
	"type": "object",
	"required": ["kind", "statistics"],
	"properties": {
		"kind": {"const": "simple_imputer"},
		"strategy": {"enum": ["mean", "median", "most_frequent"]},
		"statistics": {"type": "array", "minItems": 1, "items": {"type": "number"}}
	}
}`

	scalerSchema = `{
	"type": "object",
	"required": ["kind", "mean", "scale"],
	"properties": {
		"kind": {"const": "standard_scaler"},
		"mean": {"type": "array", "minItems": 1, "items": {"type": "number"}},
		"scale": {"type": "array", "minItems": 1, "items": {"type": "number", "minimum": 0}}
	}
}`

	classifierSchema = `{
	"type": "object",
	"required": ["kind", "classes"],
	"properties": {
		"kind": {"enum": ["random_forest", "logistic_regression"]},
		"classes": {"type": "array", "minItems": 2, "maxItems": 2, "items": {"type": "integer"}}
	},
	"allOf": [
		{
			"if": {"properties": {"kind": {"const": "random_forest"}}},
			"then": {
				"required": ["n_features", "trees"],
				"properties": {
					"n_features": {"type": "integer", "minimum": 1},
					"trees": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["children_left", "children_right", "feature", "threshold", "value"]
						}
					}
				}
			}
		},
		{
			"if": {"properties": {"kind": {"const": "logistic_regression"}}},
			"then": {
				"required": ["coef", "intercept"],
				"properties": {
					"coef": {"type": "array", "minItems": 1, "items": {"type": "number"}},
					"intercept": {"type": "number"}
				}
			}
		}
	]
}`
)

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func artifactSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		defs := map[string]string{
			"imputer":    imputerSchema,
			"scaler":     scalerSchema,
			"classifier": classifierSchema,
		}
		c := jsonschema.NewCompiler()
		for name, def := range defs {
			var doc any
			if err := json.Unmarshal([]byte(def), &doc); err != nil {
				compileErr = fmt.Errorf("parse %s schema: %w", name, err)
				return
			}
			if err := c.AddResource(schemaURL(name), doc); err != nil {
				compileErr = fmt.Errorf("add %s schema: %w", name, err)
				return
			}
		}
		out := make(map[string]*jsonschema.Schema, len(defs))
		for name := range defs {
			sch, err := c.Compile(schemaURL(name))
			if err != nil {
				compileErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			out[name] = sch
		}
		compiled = out
	})
	return compiled, compileErr
}

func schemaURL(name string) string {
	return fmt.Sprintf("schema://medtriage/%s.json", name)
}

// decodeArtifact validates raw against the named schema, then decodes it
// into dst.
func decodeArtifact(kind string, raw []byte, dst any) error {
	schemas, err := artifactSchemas()
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schemas[kind].Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// ArtifactPaths returns the imputer, scaler and classifier file paths for a
// disease.
func ArtifactPaths(dir, name string) (imputer, scaler, classifier string) {
	return filepath.Join(dir, name+"_imputer.json"),
		filepath.Join(dir, name+"_scaler.json"),
		filepath.Join(dir, name+"_model.json")
}

type classifierFile struct {
	Kind      string    `json:"kind"`
	Classes   []int     `json:"classes"`
	NFeatures int       `json:"n_features"`
	Trees     []Tree    `json:"trees"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// LoadPipeline reads and validates one disease's artifact triple. Every
// artifact must agree with nFeatures.
func LoadPipeline(dir, name string, nFeatures int) (*Pipeline, error) {
	impPath, scalerPath, clfPath := ArtifactPaths(dir, name)

	var imp MeanImputer
	if err := readArtifact("imputer", impPath, &imp); err != nil {
		return nil, err
	}
	if len(imp.Statistics) != nFeatures {
		return nil, fmt.Errorf("%s: %w: %d statistics, want %d", impPath, ErrDimensionMismatch, len(imp.Statistics), nFeatures)
	}

	var sc StandardScaler
	if err := readArtifact("scaler", scalerPath, &sc); err != nil {
		return nil, err
	}
	if len(sc.Mean) != nFeatures || len(sc.Scale) != nFeatures {
		return nil, fmt.Errorf("%s: %w: mean %d scale %d, want %d", scalerPath, ErrDimensionMismatch, len(sc.Mean), len(sc.Scale), nFeatures)
	}

	var cf classifierFile
	if err := readArtifact("classifier", clfPath, &cf); err != nil {
		return nil, err
	}
	clf, err := buildClassifier(cf, nFeatures)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", clfPath, err)
	}

	return &Pipeline{Imputer: &imp, Scaler: &sc, Classifier: clf}, nil
}

func readArtifact(kind, path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", kind, err)
	}
	if err := decodeArtifact(kind, raw, dst); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func buildClassifier(cf classifierFile, nFeatures int) (Classifier, error) {
	switch cf.Kind {
	case "random_forest":
		if cf.NFeatures != nFeatures {
			return nil, fmt.Errorf("%w: forest fitted on %d features, want %d", ErrDimensionMismatch, cf.NFeatures, nFeatures)
		}
		f := &Forest{Classes: cf.Classes, NFeatures: cf.NFeatures, Trees: cf.Trees}
		if err := f.validate(); err != nil {
			return nil, err
		}
		return f, nil
	case "logistic_regression":
		if len(cf.Coef) != nFeatures {
			return nil, fmt.Errorf("%w: %d coefficients, want %d", ErrDimensionMismatch, len(cf.Coef), nFeatures)
		}
		return &Logistic{Classes: cf.Classes, Coef: cf.Coef, Intercept: cf.Intercept}, nil
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", cf.Kind)
	}
}
