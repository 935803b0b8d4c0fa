package triage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// strictReader reads typed fields and remembers the first failure. Rule
// evaluators check err once after reading and fail closed.
type strictReader struct {
	in  Inputs
	err error
}

func (r *strictReader) float(def float64, keys ...string) float64 {
	raw, ok := r.in.lookup(keys...)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = fmt.Errorf("non-finite value")
	}
	if err != nil {
		r.fail(keys[0], raw, err)
		return def
	}
	return v
}

func (r *strictReader) int(def int, keys ...string) int {
	raw, ok := r.in.lookup(keys...)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		r.fail(keys[0], raw, err)
		return def
	}
	return v
}

func (r *strictReader) fail(key, raw string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s=%q: %w", key, raw, err)
	}
}

// lenientReader substitutes the default for anything it cannot parse.
type lenientReader struct {
	in Inputs
}

func (r lenientReader) float(def float64, keys ...string) float64 {
	raw, ok := r.in.lookup(keys...)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return v
}

func (r lenientReader) int(def int, keys ...string) int {
	raw, ok := r.in.lookup(keys...)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func isFlag(v int) bool {
	return v == 0 || v == 1
}
