package triage

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Catalog is the read-only suggestion table keyed by disease and verdict.
type Catalog struct {
	entries map[Disease]map[Verdict]Suggestion
}

// Lookup returns a copy of the suggestion for (d, v). A missing entry yields
// empty lists.
func (c *Catalog) Lookup(d Disease, v Verdict) Suggestion {
	out := Suggestion{Clinical: []string{}, Herbal: []string{}}
	if c == nil {
		return out
	}
	s, ok := c.entries[d][v]
	if !ok {
		return out
	}
	out.Recommendation = s.Recommendation
	if len(s.Clinical) > 0 {
		out.Clinical = slices.Clone(s.Clinical)
	}
	if len(s.Herbal) > 0 {
		out.Herbal = slices.Clone(s.Herbal)
	}
	return out
}

// NewCatalog copies entries into a new catalog.
func NewCatalog(entries map[Disease]map[Verdict]Suggestion) *Catalog {
	c := &Catalog{entries: make(map[Disease]map[Verdict]Suggestion, len(entries))}
	for d, byVerdict := range entries {
		m := make(map[Verdict]Suggestion, len(byVerdict))
		for v, s := range byVerdict {
			m[v] = Suggestion{
				Recommendation: s.Recommendation,
				Clinical:       slices.Clone(s.Clinical),
				Herbal:         slices.Clone(s.Herbal),
			}
		}
		c.entries[d] = m
	}
	return c
}

// LoadCatalogFile reads a YAML catalog of the form
//
//	diabetes:
//	  Normal:
//	    recommendation: ...
//	    clinical: [...]
//	    herbal: [...]
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc map[string]map[string]Suggestion
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	entries := make(map[Disease]map[Verdict]Suggestion, len(doc))
	for name, byVerdict := range doc {
		d, err := ParseDisease(name)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		m := make(map[Verdict]Suggestion, len(byVerdict))
		for vname, s := range byVerdict {
			v, err := ParseVerdict(vname)
			if err != nil {
				return nil, fmt.Errorf("catalog %s: %w", name, err)
			}
			m[v] = s
		}
		entries[d] = m
	}
	return NewCatalog(entries), nil
}

// DefaultCatalog returns the built-in advice table.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultSuggestions)
}

var defaultSuggestions = map[Disease]map[Verdict]Suggestion{
	Diabetes: {
		Normal: {
			Recommendation: "Keep a balanced diet and exercise regularly to maintain healthy blood sugar levels.",
			Clinical: []string{
				"Maintain healthy body weight.",
				"Monitor blood glucose periodically.",
				"Balanced diet and regular exercise.",
				"Limit refined sugars and processed foods.",
			},
			Herbal: []string{
				"Fenugreek seeds may support glucose balance.",
				"Cinnamon may improve insulin sensitivity.",
				"Bitter gourd juice is traditionally used.",
				"Daily walking or yoga is beneficial.",
			},
		},
		Risky: {
			Recommendation: "Consult a doctor for blood sugar management, maintain a healthy diet, and monitor glucose levels.",
			Clinical: []string{
				"Consult an endocrinologist immediately.",
				"Regular blood sugar monitoring is required.",
				"Follow prescribed medical treatment strictly.",
				"Reduce carbohydrate and sugar intake.",
			},
			Herbal: []string{
				"Neem leaves may help control blood sugar.",
				"Amla supports metabolic health.",
				"Avoid sugary and fried foods.",
				"Practice stress management techniques.",
			},
		},
	},
	Heart: {
		Normal: {
			Recommendation: "Maintain cardiovascular health through exercise, low salt intake, and regular checkups.",
			Clinical: []string{
				"Maintain healthy cholesterol levels.",
				"Regular cardiovascular exercise.",
				"Routine blood pressure monitoring.",
			},
			Herbal: []string{
				"Garlic supports heart health.",
				"Omega-3 rich foods like flaxseed are beneficial.",
				"Meditation improves cardiovascular wellness.",
			},
		},
		Risky: {
			Recommendation: "Seek immediate medical consultation. Monitor blood pressure, cholesterol, and heart health.",
			Clinical: []string{
				"Immediate cardiologist consultation required.",
				"Strict blood pressure and cholesterol control.",
				"Medication adherence is essential.",
			},
			Herbal: []string{
				"Arjuna bark traditionally supports heart function.",
				"Reduce salt and saturated fats.",
				"Smoking cessation is critical.",
			},
		},
	},
	Kidney: {
		Normal: {
			Recommendation: "Stay hydrated, avoid excessive salt, and maintain kidney-friendly habits.",
			Clinical: []string{
				"Stay well hydrated.",
				"Routine kidney function tests.",
				"Maintain normal blood pressure.",
			},
			Herbal: []string{
				"Coconut water supports hydration.",
				"Cranberry may support urinary health.",
				"Low-sodium diet is beneficial.",
			},
		},
		Risky: {
			Recommendation: "Consult a nephrologist. Monitor kidney function and avoid high-risk foods or medications.",
			Clinical: []string{
				"Consult a nephrologist immediately.",
				"Monitor creatinine and kidney markers.",
				"Limit protein and salt intake as advised.",
			},
			Herbal: []string{
				"Punarnava traditionally supports kidney health.",
				"Avoid painkillers without prescription.",
				"Maintain adequate fluid intake.",
			},
		},
	},
	Liver: {
		Normal: {
			Recommendation: "Maintain a healthy lifestyle, avoid excess alcohol, and eat a balanced diet.",
			Clinical: []string{
				"Maintain healthy liver enzyme levels.",
				"Avoid unnecessary medications.",
				"Limit alcohol consumption.",
			},
			Herbal: []string{
				"Turmeric supports liver detoxification.",
				"Milk thistle is hepatoprotective.",
				"Balanced diet supports liver function.",
			},
		},
		Risky: {
			Recommendation: "Consult a hepatologist. Avoid alcohol, fatty foods, and get liver function tests regularly.",
			Clinical: []string{
				"Consult a hepatologist immediately.",
				"Regular liver function tests required.",
				"Avoid alcohol completely.",
			},
			Herbal: []string{
				"Amla supports liver regeneration.",
				"Kutki is traditionally used for liver care.",
				"Avoid fatty and fried foods.",
			},
		},
	},
	Malaria: {
		Normal: {
			Recommendation: "Use mosquito protection and maintain hygiene to prevent infection.",
			Clinical: []string{
				"Prevent mosquito exposure.",
				"Maintain immunity and hydration.",
			},
			Herbal: []string{
				"Neem-based mosquito repellents.",
				"Papaya leaf juice traditionally used.",
				"Adequate hydration is essential.",
			},
		},
		Risky: {
			Recommendation: "Seek immediate medical attention. Take prescribed antimalarial medications.",
			Clinical: []string{
				"Immediate medical treatment required.",
				"Antimalarial drugs are essential.",
				"Monitor platelet count closely.",
			},
			Herbal: []string{
				"Papaya leaf extract may support platelet recovery.",
				"Tulsi supports immune function.",
				"Complete rest and hydration.",
			},
		},
	},
	Thyroid: {
		Normal: {
			Recommendation: "Maintain a balanced diet with adequate iodine. Routine checkups are recommended.",
			Clinical: []string{
				"Annual thyroid profile testing.",
				"Maintain balanced iodine intake.",
			},
			Herbal: []string{
				"Ashwagandha supports thyroid balance.",
				"Selenium-rich foods are beneficial.",
				"Stress reduction is important.",
			},
		},
		Risky: {
			Recommendation: "Consult an endocrinologist. Follow prescribed medications and monitor hormone levels.",
			Clinical: []string{
				"Consult an endocrinologist.",
				"Strict medication adherence required.",
				"Regular TSH monitoring.",
			},
			Herbal: []string{
				"Avoid excess soy intake.",
				"Yoga and pranayama may help.",
				"Ensure adequate sleep.",
			},
		},
	},
	Pneumonia: {
		Normal: {
			Recommendation: "Practice good hygiene and maintain a healthy immune system.",
			Clinical: []string{
				"Maintain respiratory hygiene.",
				"Annual flu vaccination recommended.",
			},
			Herbal: []string{
				"Steam inhalation improves breathing.",
				"Tulsi and ginger tea support immunity.",
				"Breathing exercises are helpful.",
			},
		},
		Risky: {
			Recommendation: "Seek medical attention. Rest, hydrate, and follow doctor's instructions.",
			Clinical: []string{
				"Immediate medical treatment required.",
				"Antibiotics or oxygen support if prescribed.",
				"Monitor oxygen saturation.",
			},
			Herbal: []string{
				"Licorice supports respiratory health.",
				"Honey and ginger soothe airways.",
				"Complete bed rest is essential.",
			},
		},
	},
}
