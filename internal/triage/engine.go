package triage

import (
	"fmt"
	"maps"

	"github.com/Skufu/medtriage/internal/model"
)

// clamped diseases re-run their rule evaluator after the model and let the
// rule verdict replace the model's.
var clamped = map[Disease]bool{Kidney: true}

// Engine routes a disease to its rule evaluator or model pipeline and
// attaches suggestions. All state is fixed at construction, so Classify is
// safe for concurrent use.
type Engine struct {
	routes  map[Disease]Strategy
	rules   map[Disease]Evaluator
	models  *model.Registry
	catalog *Catalog
}

// NewEngine builds the routing table. Rule-backed diseases are routed to
// their evaluators unless listed in modelRouted; diabetes is always model
// routed since it has no rule evaluator.
func NewEngine(models *model.Registry, catalog *Catalog, modelRouted ...Disease) (*Engine, error) {
	rules := RuleEvaluators()
	routes := make(map[Disease]Strategy, len(Diseases()))
	for d := range rules {
		routes[d] = StrategyRules
	}
	routes[Diabetes] = StrategyModel

	for _, d := range modelRouted {
		if !ModelCapable(d) {
			return nil, fmt.Errorf("cannot route %s to a model: no fitted feature schema", d)
		}
		routes[d] = StrategyModel
	}

	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{routes: routes, rules: rules, models: models, catalog: catalog}, nil
}

// Routes returns a copy of the routing table.
func (e *Engine) Routes() map[Disease]Strategy {
	return maps.Clone(e.routes)
}

// Classify returns the verdict and suggestions for one input bundle. Errors
// wrap ErrUnknownDisease or ErrModelUnavailable; every other failure is
// resolved to a verdict.
func (e *Engine) Classify(name string, in Inputs) (Result, error) {
	d, err := ParseDisease(name)
	if err != nil {
		return Result{}, err
	}
	strategy, ok := e.routes[d]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s is not routed", ErrUnknownDisease, d)
	}

	res := Result{Disease: d, Strategy: strategy}
	switch strategy {
	case StrategyRules:
		res.Verdict = e.rules[d](in)
	case StrategyModel:
		pred, err := e.Infer(d, in)
		if err != nil {
			return Result{}, err
		}
		res.Verdict = pred.Verdict
		res.Probability = &pred.Probability
		if clamped[d] {
			res.Verdict = e.rules[d](in)
			res.RuleClamped = true
		}
	}

	res.Suggestion = e.catalog.Lookup(d, res.Verdict)
	return res, nil
}

// Prediction is the model adapter's reading of one bundle.
type Prediction struct {
	Verdict     Verdict
	Label       int
	Probability float64
}

// Infer runs d's fitted pipeline. Unparsable fields become zero rather than
// failing the request. Label 0 is Normal, anything else Risky.
func (e *Engine) Infer(d Disease, in Inputs) (Prediction, error) {
	if !ModelCapable(d) {
		return Prediction{}, fmt.Errorf("%w: %s has no fitted feature schema", ErrModelUnavailable, d)
	}
	p, err := e.models.Pipeline(string(d))
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	out, err := p.Run(FeatureVector(d, in))
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %s: %w", ErrModelUnavailable, d, err)
	}

	pred := Prediction{Verdict: Risky, Label: out.Label, Probability: out.Probability}
	if out.Label == 0 {
		pred.Verdict = Normal
	}
	return pred, nil
}
