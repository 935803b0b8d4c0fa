package triage

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/medtriage/internal/model"
)

type passThrough struct{}

func (passThrough) Transform(x []float64) ([]float64, error) {
	return append([]float64(nil), x...), nil
}

// fixedClassifier always answers with the same label and records the last
// vector it saw.
type fixedClassifier struct {
	label int
	prob  float64

	mu   sync.Mutex
	seen []float64
}

func (c *fixedClassifier) Predict(x []float64) (int, error) {
	c.mu.Lock()
	c.seen = append([]float64(nil), x...)
	c.mu.Unlock()
	return c.label, nil
}

func (c *fixedClassifier) PredictProba(x []float64) (float64, error) {
	return c.prob, nil
}

type failingScaler struct{}

func (failingScaler) Transform(x []float64) ([]float64, error) {
	return nil, model.ErrDimensionMismatch
}

func stubPipeline(clf model.Classifier) *model.Pipeline {
	return &model.Pipeline{Imputer: passThrough{}, Scaler: passThrough{}, Classifier: clf}
}

func newTestEngine(t *testing.T, reg *model.Registry, modelRouted ...Disease) *Engine {
	t.Helper()
	e, err := NewEngine(reg, DefaultCatalog(), modelRouted...)
	require.NoError(t, err)
	return e
}

func TestNewEngine_DefaultRoutes(t *testing.T) {
	e := newTestEngine(t, nil)
	routes := e.Routes()

	assert.Equal(t, StrategyModel, routes[Diabetes])
	for _, d := range []Disease{Thyroid, Malaria, Pneumonia, Heart, Kidney, Liver} {
		assert.Equal(t, StrategyRules, routes[d], d)
	}
	assert.Len(t, routes, len(Diseases()))
}

func TestNewEngine_RejectsModelRouteWithoutSchema(t *testing.T) {
	_, err := NewEngine(nil, nil, Malaria)
	require.Error(t, err)
}

func TestClassify_UnknownDisease(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Classify("influenza", Inputs{})
	require.ErrorIs(t, err, ErrUnknownDisease)
}

func TestClassify_NormalizesDiseaseName(t *testing.T) {
	e := newTestEngine(t, nil)
	res, err := e.Classify("  Thyroid ", normalThyroid)
	require.NoError(t, err)
	assert.Equal(t, Thyroid, res.Disease)
	assert.Equal(t, Normal, res.Verdict)
}

func TestClassify_RuleRouteAttachesSuggestions(t *testing.T) {
	e := newTestEngine(t, nil)

	res, err := e.Classify("thyroid", with(normalThyroid, "TSH", "10.0"))
	require.NoError(t, err)
	assert.Equal(t, Risky, res.Verdict)
	assert.Equal(t, StrategyRules, res.Strategy)
	assert.Nil(t, res.Probability)
	assert.Contains(t, res.Suggestion.Clinical, "Regular TSH monitoring.")
	assert.NotEmpty(t, res.Suggestion.Herbal)
	assert.NotEmpty(t, res.Suggestion.Recommendation)
}

func TestClassify_ModelRoute(t *testing.T) {
	clf := &fixedClassifier{label: 1, prob: 0.83}
	reg := model.NewRegistry(model.Loaded("diabetes", stubPipeline(clf)))
	e := newTestEngine(t, reg)

	in := Inputs{"Pregnancies": "2", "Glucose": "160", "BloodPressure": "abc", "Age": "44", "Unused": "9"}
	res, err := e.Classify("diabetes", in)
	require.NoError(t, err)
	assert.Equal(t, Risky, res.Verdict)
	assert.Equal(t, StrategyModel, res.Strategy)
	require.NotNil(t, res.Probability)
	assert.InDelta(t, 0.83, *res.Probability, 1e-9)
	assert.False(t, res.RuleClamped)

	// schema order, unparsable and missing fields zeroed
	assert.Equal(t, []float64{2, 160, 0, 0, 44}, clf.seen)
}

func TestClassify_ModelLabelZeroIsNormal(t *testing.T) {
	reg := model.NewRegistry(model.Loaded("diabetes", stubPipeline(&fixedClassifier{label: 0, prob: 0.1})))
	e := newTestEngine(t, reg)

	res, err := e.Classify("diabetes", Inputs{})
	require.NoError(t, err)
	assert.Equal(t, Normal, res.Verdict)
	assert.Contains(t, res.Suggestion.Clinical, "Monitor blood glucose periodically.")
}

func TestClassify_ModelUnavailable(t *testing.T) {
	tests := []struct {
		name string
		reg  *model.Registry
	}{
		{"no registry", nil},
		{"not registered", model.NewRegistry()},
		{"failed to load", model.NewRegistry(model.Unavailable("diabetes", "read imputer: file not found"))},
		{"runtime failure", model.NewRegistry(model.Loaded("diabetes", &model.Pipeline{
			Imputer: passThrough{}, Scaler: failingScaler{}, Classifier: &fixedClassifier{},
		}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.reg)
			res, err := e.Classify("diabetes", Inputs{"Glucose": "120"})
			require.ErrorIs(t, err, ErrModelUnavailable)
			assert.False(t, errors.Is(err, ErrUnknownDisease))
			assert.Empty(t, res.Verdict)
		})
	}
}

func TestClassify_KidneyRuleClampOverridesModel(t *testing.T) {
	breach := with(normalKidney, "sg", "1.000")

	tests := []struct {
		name  string
		label int
		in    Inputs
		want  Verdict
	}{
		{"model normal, panel out of range", 0, breach, Risky},
		{"model risky, panel in range", 1, normalKidney, Normal},
		{"model normal, panel in range", 0, normalKidney, Normal},
		{"model risky, panel unparsable", 1, with(normalKidney, "bp", "?"), Risky},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := &fixedClassifier{label: tt.label, prob: 0.5}
			reg := model.NewRegistry(model.Loaded("kidney", stubPipeline(clf)))
			e := newTestEngine(t, reg, Kidney)

			pred, err := e.Infer(Kidney, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.label != 0, pred.Verdict == Risky)

			res, err := e.Classify("kidney", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Verdict)
			assert.Equal(t, StrategyModel, res.Strategy)
			assert.True(t, res.RuleClamped)
			assert.Equal(t, e.catalog.Lookup(Kidney, tt.want), res.Suggestion)
		})
	}
}

func TestClassify_KidneyModelRouteStillNeedsArtifacts(t *testing.T) {
	e := newTestEngine(t, model.NewRegistry(model.Unavailable("kidney", "corrupt")), Kidney)
	_, err := e.Classify("kidney", normalKidney)
	require.ErrorIs(t, err, ErrModelUnavailable)
}

func TestClassify_HeartOnModelRouteIsNotClamped(t *testing.T) {
	reg := model.NewRegistry(model.Loaded("heart", stubPipeline(&fixedClassifier{label: 0})))
	e := newTestEngine(t, reg, Heart)

	risky := Inputs{"age": "60", "chol": "250", "trestbps": "135", "thalach": "90", "exang": "1", "cp": "0"}
	res, err := e.Classify("heart", risky)
	require.NoError(t, err)
	assert.Equal(t, Normal, res.Verdict)
	assert.False(t, res.RuleClamped)
}

func TestClassify_Idempotent(t *testing.T) {
	reg := model.NewRegistry(model.Loaded("diabetes", stubPipeline(&fixedClassifier{label: 1, prob: 0.7})))
	e := newTestEngine(t, reg)

	for _, d := range Diseases() {
		in := Inputs{"Age": "45", "TSH": "3", "Temperature": "100", "Headache": "1", "rbc_count": "4"}
		first, err := e.Classify(string(d), in)
		require.NoError(t, err)

		// mutating a returned payload must not leak into the next call
		if len(first.Suggestion.Clinical) > 0 {
			first.Suggestion.Clinical[0] = "tampered"
		}

		second, err := e.Classify(string(d), in)
		require.NoError(t, err)
		third, err := e.Classify(string(d), in)
		require.NoError(t, err)
		assert.Equal(t, second, third, d)
		assert.Equal(t, first.Verdict, second.Verdict, d)
		assert.NotContains(t, second.Suggestion.Clinical, "tampered", d)
	}
}

func TestClassify_Concurrent(t *testing.T) {
	reg := model.NewRegistry(model.Loaded("diabetes", stubPipeline(&fixedClassifier{label: 1, prob: 0.9})))
	e := newTestEngine(t, reg)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := Diseases()[i%len(Diseases())]
			if _, err := e.Classify(string(d), normalKidney); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent classify: %v", err)
	}
}

func TestFeatureVector(t *testing.T) {
	in := Inputs{"sg": "1.02", "al": " 1 ", "rbc": "nan", "pc": "", "hemo": "inf", "bp": "120"}
	vec := FeatureVector(Kidney, in)
	require.Len(t, vec, 8)
	assert.Equal(t, 1.02, vec[0])
	assert.Equal(t, 1.0, vec[1])
	assert.True(t, math.IsNaN(vec[2]))
	assert.Equal(t, 0.0, vec[3])
	assert.Equal(t, 0.0, vec[4])
	assert.Equal(t, 0.0, vec[5])
	assert.Equal(t, 120.0, vec[7])
}

func TestModelSchemas(t *testing.T) {
	schemas := ModelSchemas()
	assert.Len(t, schemas, 4)
	assert.Equal(t, []string{"Pregnancies", "Glucose", "BloodPressure", "BMI", "Age"}, schemas["diabetes"])

	// returned schemas are copies
	schemas["diabetes"][0] = "changed"
	assert.Equal(t, "Pregnancies", FeatureSchema(Diabetes)[0])
}

func TestInputsFromValues(t *testing.T) {
	in := InputsFromValues(map[string]any{
		"Age":       30.0,
		"TSH":       2.5,
		"Sex":       "1",
		"Thyroxine": false,
		"Skip":      nil,
	})
	assert.Equal(t, Inputs{"Age": "30", "TSH": "2.5", "Sex": "1", "Thyroxine": "0"}, in)
}

func TestInputsFromValues_JSONNumbers(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2", "2"},
		{"2.0", "2"},
		{"3e0", "3"},
		{"0.0", "0"},
		{"-1.50", "-1.5"},
		{"1e400", "1e400"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			in := InputsFromValues(map[string]any{"v": json.Number(tt.raw)})
			assert.Equal(t, tt.want, in["v"])
		})
	}
}

func TestInputsFromValues_WholeFloatsReachIntegerFields(t *testing.T) {
	pneumonia := InputsFromValues(map[string]any{
		"Age": json.Number("30"), "Cough": json.Number("2.0"), "Fever": json.Number("37"),
		"WBC": json.Number("8000"), "Oxygen_Saturation": json.Number("98"),
	})
	assert.Equal(t, Risky, EvaluatePneumonia(pneumonia))

	thyroid := InputsFromValues(map[string]any{
		"Age": json.Number("30"), "Sex": json.Number("0.0"), "TSH": json.Number("2.0"),
		"T3": json.Number("1.0"), "T4": json.Number("8.0"), "Thyroxine": json.Number("0e0"),
	})
	assert.Equal(t, Normal, EvaluateThyroid(thyroid))
}
