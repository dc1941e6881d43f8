package negotiator

import (
	"net/http"

	"github.com/vango-dev/inertia/pkg/protocol"
)

// partialMode is the filtering applied to a JSON response.
type partialMode int

const (
	partialNone partialMode = iota
	partialOnly
	partialExcept
)

// signals are the header-derived inputs to the decision table.
type signals struct {
	inertia     bool
	get         bool
	versionOK   bool
	targetMatch bool
	hasOnly     bool
	hasExcept   bool
}

func readSignals(r *protocol.Request, component, version string) signals {
	// An empty selector list selects nothing and counts as absent.
	only, _ := r.PartialOnly()
	except, _ := r.PartialExcept()
	target := r.PartialComponent()
	return signals{
		inertia:     r.IsInertia(),
		get:         r.Method() == http.MethodGet,
		versionOK:   r.Version() == version,
		targetMatch: target != "" && target == component,
		hasOnly:     len(only) > 0,
		hasExcept:   len(except) > 0,
	}
}

type decision struct {
	rule    string
	kind    Kind
	partial partialMode
}

type rule struct {
	name  string
	match func(signals) bool
	kind  Kind
	mode  partialMode
}

// decisionTable is evaluated top to bottom; the first matching row wins.
// A mismatched partial target falls through to the full page row.
var decisionTable = []rule{
	{"document", func(s signals) bool { return !s.inertia }, KindDocument, partialNone},
	{"stale-version", func(s signals) bool { return s.get && !s.versionOK }, KindVersionConflict, partialNone},
	{"partial-only", func(s signals) bool { return s.targetMatch && s.hasOnly }, KindJSON, partialOnly},
	{"partial-except", func(s signals) bool { return s.targetMatch && s.hasExcept }, KindJSON, partialExcept},
	{"full-page", func(signals) bool { return true }, KindJSON, partialNone},
}

func classify(s signals) decision {
	for _, row := range decisionTable {
		if row.match(s) {
			return decision{rule: row.name, kind: row.kind, partial: row.mode}
		}
	}
	return decision{rule: "full-page", kind: KindJSON}
}
