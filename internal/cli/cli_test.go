package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/medtriage/internal/model"
	"github.com/Skufu/medtriage/internal/triage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeDiabetesModel writes a logistic pipeline that flags Glucose above 100.
func writeDiabetesModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	imp, sc, clf := model.ArtifactPaths(dir, "diabetes")
	files := map[string]string{
		imp: `{"kind": "simple_imputer", "strategy": "mean", "statistics": [3, 120, 70, 32, 33]}`,
		sc:  `{"kind": "standard_scaler", "mean": [0, 0, 0, 0, 0], "scale": [1, 1, 1, 1, 1]}`,
		clf: `{"kind": "logistic_regression", "classes": [0, 1], "coef": [0, 0.1, 0, 0, 0], "intercept": -10}`,
	}
	for path, body := range files {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestParseInputs(t *testing.T) {
	in, err := parseInputs([]string{"TSH=2.0", " Age =30", "note=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, triage.Inputs{"TSH": "2.0", "Age": "30", "note": "a=b", "empty": ""}, in)

	for _, bad := range [][]string{{"TSH"}, {"=2"}, {"TSH=1", "TSH=2"}} {
		_, err := parseInputs(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestClassifyJSON(t *testing.T) {
	out, err := run(t, "classify", "thyroid", "Age=30", "Sex=0", "TSH=2.0", "T3=1.0", "T4=8.0", "Thyroxine=0",
		"--model-dir", t.TempDir(), "-o", "json")
	require.NoError(t, err)

	var res triage.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, triage.Thyroid, res.Disease)
	assert.Equal(t, triage.Normal, res.Verdict)
	assert.Equal(t, triage.StrategyRules, res.Strategy)
	assert.NotEmpty(t, res.Suggestion.Clinical)
}

func TestClassifyHuman(t *testing.T) {
	out, err := run(t, "classify", "malaria", "Temperature=103", "--model-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "MALARIA")
	assert.Contains(t, out, "Risky")
	assert.Contains(t, out, "CLINICAL:")
}

func TestClassifyModelRoute(t *testing.T) {
	dir := writeDiabetesModel(t)

	out, err := run(t, "classify", "diabetes", "Glucose=160", "--model-dir", dir, "-o", "yaml")
	require.NoError(t, err)

	var res triage.Result
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, triage.Risky, res.Verdict)
	assert.Equal(t, triage.StrategyModel, res.Strategy)
	require.NotNil(t, res.Probability)
	assert.InDelta(t, 0.9975, *res.Probability, 1e-3)

	// missing Glucose is imputed with the fitted mean
	out, err = run(t, "classify", "diabetes", "Glucose=nan", "--model-dir", dir, "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, triage.Risky, res.Verdict)

	out, err = run(t, "classify", "diabetes", "Glucose=80", "--model-dir", dir, "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, triage.Normal, res.Verdict)
}

func TestClassifyErrors(t *testing.T) {
	_, err := run(t, "classify", "diabetes", "Glucose=160", "--model-dir", t.TempDir())
	require.ErrorIs(t, err, triage.ErrModelUnavailable)

	_, err = run(t, "classify", "flu", "--model-dir", t.TempDir())
	require.ErrorIs(t, err, triage.ErrUnknownDisease)

	_, err = run(t, "classify", "thyroid", "TSH", "--model-dir", t.TempDir())
	require.Error(t, err)

	_, err = run(t, "classify", "thyroid", "-o", "xml")
	require.ErrorContains(t, err, "unsupported output format")

	_, err = run(t, "classify", "thyroid", "--model-route", "malaria", "--model-dir", t.TempDir())
	require.Error(t, err)
	assert.False(t, errors.Is(err, triage.ErrUnknownDisease))

	_, err = run(t, "classify")
	require.Error(t, err)
}

func TestModelsCmd(t *testing.T) {
	dir := writeDiabetesModel(t)

	out, err := run(t, "models", "--model-dir", dir, "-o", "json")
	require.NoError(t, err)

	var statuses []model.Status
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	require.Len(t, statuses, 4)
	for _, s := range statuses {
		if s.Name == "diabetes" {
			assert.Equal(t, model.StateLoaded, s.State)
		} else {
			assert.Equal(t, model.StateUnavailable, s.State, s.Name)
			assert.NotEmpty(t, s.Reason)
		}
	}
}

func TestDiseasesCmd(t *testing.T) {
	out, err := run(t, "diseases", "--model-dir", t.TempDir(), "--model-route", "kidney", "-o", "json")
	require.NoError(t, err)

	var rows []diseaseRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, len(triage.Diseases()))

	routes := map[triage.Disease]triage.Strategy{}
	for _, r := range rows {
		routes[r.Name] = r.Strategy
		assert.Equal(t, triage.FeatureSchema(r.Name), r.Fields)
	}
	assert.Equal(t, triage.StrategyModel, routes[triage.Kidney])
	assert.Equal(t, triage.StrategyModel, routes[triage.Diabetes])
	assert.Equal(t, triage.StrategyRules, routes[triage.Heart])

	human, err := run(t, "diseases", "--model-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, human, "pneumonia")
}

func TestSuggestionsFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("malaria:\n  risky:\n    recommendation: see a doctor\n"), 0o644))

	out, err := run(t, "classify", "malaria", "Temperature=103", "--model-dir", t.TempDir(), "--suggestions", path, "-o", "json")
	require.NoError(t, err)

	var res triage.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "see a doctor", res.Suggestion.Recommendation)
	assert.Empty(t, res.Suggestion.Clinical)
}
