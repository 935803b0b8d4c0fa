package model

import (
	"fmt"
	"log/slog"
	"sort"
)

type State string

const (
	StateLoaded      State = "loaded"
	StateUnavailable State = "unavailable"
)

// Status reports whether a disease's artifacts are usable.
type Status struct {
	Name   string `json:"name" yaml:"name"`
	State  State  `json:"state" yaml:"state"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Entry is one registry slot, built with Loaded or Unavailable.
type Entry struct {
	Status   Status
	pipeline *Pipeline
}

func Loaded(name string, p *Pipeline) Entry {
	return Entry{Status: Status{Name: name, State: StateLoaded}, pipeline: p}
}

func Unavailable(name, reason string) Entry {
	return Entry{Status: Status{Name: name, State: StateUnavailable, Reason: reason}}
}

// Registry holds the pipelines built at startup. It is read-only after
// construction.
type Registry struct {
	entries map[string]Entry
}

func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.Status.Name] = e
	}
	return r
}

// LoadDir loads every schema's artifact triple from dir. A failure marks
// only that disease unavailable.
func LoadDir(dir string, schemas map[string][]string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		p, err := LoadPipeline(dir, name, len(schemas[name]))
		if err != nil {
			logger.Warn("model artifacts unavailable", "disease", name, "dir", dir, "error", err)
			entries = append(entries, Unavailable(name, err.Error()))
			continue
		}
		logger.Info("model artifacts loaded", "disease", name, "features", len(schemas[name]))
		entries = append(entries, Loaded(name, p))
	}
	return NewRegistry(entries...)
}

// Pipeline returns the loaded pipeline for name, or an error wrapping
// ErrUnavailable.
func (r *Registry) Pipeline(name string) (*Pipeline, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s: no registry", ErrUnavailable, name)
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s: not registered", ErrUnavailable, name)
	}
	if e.Status.State != StateLoaded || e.pipeline == nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, name, e.Status.Reason)
	}
	return e.pipeline, nil
}

func (r *Registry) Status(name string) (Status, bool) {
	if r == nil {
		return Status{}, false
	}
	e, ok := r.entries[name]
	return e.Status, ok
}

// Statuses lists every entry sorted by name.
func (r *Registry) Statuses() []Status {
	if r == nil {
		return nil
	}
	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
