package triage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_CoversEveryVerdict(t *testing.T) {
	c := DefaultCatalog()
	for _, d := range Diseases() {
		for _, v := range []Verdict{Normal, Risky} {
			s := c.Lookup(d, v)
			assert.NotEmpty(t, s.Recommendation, "%s/%s", d, v)
			assert.NotEmpty(t, s.Clinical, "%s/%s", d, v)
			assert.NotEmpty(t, s.Herbal, "%s/%s", d, v)
		}
	}
}

func TestCatalogLookup_MissingEntryIsEmpty(t *testing.T) {
	c := NewCatalog(map[Disease]map[Verdict]Suggestion{
		Malaria: {Risky: {Clinical: []string{"See a doctor."}}},
	})

	s := c.Lookup(Malaria, Normal)
	assert.Empty(t, s.Recommendation)
	assert.NotNil(t, s.Clinical)
	assert.NotNil(t, s.Herbal)
	assert.Empty(t, s.Clinical)

	s = c.Lookup(Malaria, Risky)
	assert.Equal(t, []string{"See a doctor."}, s.Clinical)
	assert.Empty(t, s.Herbal)

	var nilCatalog *Catalog
	assert.Empty(t, nilCatalog.Lookup(Heart, Risky).Clinical)
}

func TestNewCatalog_CopiesInput(t *testing.T) {
	clinical := []string{"rest"}
	c := NewCatalog(map[Disease]map[Verdict]Suggestion{Heart: {Normal: {Clinical: clinical}}})
	clinical[0] = "changed"
	assert.Equal(t, []string{"rest"}, c.Lookup(Heart, Normal).Clinical)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.yaml")
	doc := `
thyroid:
  Risky:
    recommendation: See an endocrinologist.
    clinical:
      - Repeat TSH in six weeks.
    herbal:
      - Sleep well.
  normal:
    clinical: []
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)

	s := c.Lookup(Thyroid, Risky)
	assert.Equal(t, "See an endocrinologist.", s.Recommendation)
	assert.Equal(t, []string{"Repeat TSH in six weeks."}, s.Clinical)
	assert.Equal(t, []string{"Sleep well."}, s.Herbal)
	assert.Empty(t, c.Lookup(Thyroid, Normal).Clinical)
	assert.Empty(t, c.Lookup(Heart, Risky).Clinical)
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown disease": "influenza:\n  Risky:\n    clinical: [x]\n",
		"unknown verdict": "heart:\n  Maybe:\n    clinical: [x]\n",
		"bad yaml":        "heart: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadCatalogFile_Missing(t *testing.T) {
	_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
