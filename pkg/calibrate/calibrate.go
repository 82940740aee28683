// Package calibrate implements the Calibrator: classification of
// surviving candidate Pad Tables, optional scoring against a Reference
// Header, and selection of at most one winner per class (§4.E).
package calibrate

import (
	"github.com/hashicorp/go-multierror"

	"github.com/linuxboot/gpioxtract/pkg/pad"
	"github.com/linuxboot/gpioxtract/pkg/pipeline"
	"github.com/linuxboot/gpioxtract/pkg/platform"
	"github.com/linuxboot/gpioxtract/pkg/reference"
)

// Rejection records why a candidate did not survive calibration, for
// diagnostic reporting.
type Rejection struct {
	Table  *pad.Table
	Reason string
}

// Result is the Calibrator's output: up to four winners, one per class,
// plus the full rejection ledger and (if no physical table survived) the
// corresponding error.
type Result struct {
	Winners    map[pad.Class]*pad.Table
	Rejections []Rejection
	Err        error
}

// state names the Calibrator's state-machine steps, recorded only for
// diagnostics — the transitions themselves are unconditional once the
// previous step completes.
type state int

const (
	stateCollecting state = iota
	stateClassifying
	stateScoring
	stateSelecting
	stateEmitting
)

// Run drives the Collecting -> Classifying -> Scoring -> Selecting ->
// Emitting state machine over candidates. ref may be nil, in which case
// scoring falls back to entry_count (the emitter attaches a secondary
// Confidence metric for diagnostics; see SPEC_FULL.md "Confidence
// scoring").
func Run(candidates []*pad.Table, prof *platform.Profile, ref *reference.Header) *Result {
	st := stateCollecting
	res := &Result{Winners: make(map[pad.Class]*pad.Table)}

	// Collecting: classify and immediately drop anything that doesn't
	// land in a known band. This is the only step that shrinks input.
	st = stateClassifying
	classified := make([]*pad.Table, 0, len(candidates))
	for _, t := range candidates {
		class, ok := classify(t, prof)
		if !ok {
			res.Rejections = append(res.Rejections, Rejection{Table: t, Reason: "entry_count does not fall in any Profile class band"})
			continue
		}
		t.Class = class
		assignNames(t, prof)
		classified = append(classified, t)
	}

	// Scoring.
	st = stateScoring
	if ref != nil {
		for _, t := range classified {
			t.Score = score(t, ref)
			t.Scored = true
		}
	}

	// Selecting: keep the highest scorer per class (or, with no
	// reference, the largest validated entry_count); ties broken by
	// larger entry_count then smaller offset.
	st = stateSelecting
	byClass := make(map[pad.Class][]*pad.Table)
	for _, t := range classified {
		byClass[t.Class] = append(byClass[t.Class], t)
	}
	for class, tables := range byClass {
		winner := selectWinner(tables)
		for _, t := range tables {
			if t != winner {
				res.Rejections = append(res.Rejections, Rejection{Table: t, Reason: "lost selection to a higher-ranked candidate in the same class"})
			}
		}
		res.Winners[class] = winner
	}

	// Emitting.
	st = stateEmitting
	_ = st

	if _, ok := res.Winners[pad.ClassPhysical]; !ok {
		var merr *multierror.Error
		merr = multierror.Append(merr, pipeline.NoPhysicalTableFound{})
		res.Err = merr.ErrorOrNil()
	}

	return res
}

func classify(t *pad.Table, prof *platform.Profile) (pad.Class, bool) {
	if t.FromSignature {
		// The signature-scan anchor is always PHYSICAL regardless of
		// count; its origin is dispositive.
		return pad.ClassPhysical, true
	}
	n := t.EntryCount()
	for class, band := range prof.ClassBands {
		if class == pad.ClassPhysical {
			continue // physical classification only comes from the signature scan
		}
		if band.In(n) {
			return class, true
		}
	}
	return pad.ClassUnknown, false
}

func assignNames(t *pad.Table, prof *platform.Profile) {
	for i := range t.Entries {
		if t.Class == pad.ClassPhysical {
			if name, ok := prof.PhysicalPadName(t.Entries[i].Index); ok {
				t.Entries[i].Name = name
				continue
			}
		}
		t.Entries[i].Name = platform.ClassPadName(t.Class, t.Entries[i].Index)
	}
}

// score counts named pads whose (mode, reset_domain, direction) matches
// the reference.
func score(t *pad.Table, ref *reference.Header) int {
	n := 0
	for _, e := range t.Entries {
		expected, ok := ref.Lookup(e.Name)
		if !ok {
			continue
		}
		if expected.Mode == e.Descriptor.Mode &&
			expected.Reset == e.Descriptor.ResetDomain &&
			expected.Direction == e.Descriptor.Direction() {
			n++
		}
	}
	return n
}

// Confidence is the diagnostic fallback metric used when no Reference
// Header is supplied: entry_count/100, capped at 1.0. It does not
// participate in selection; the primary, spec-mandated tiebreak with no
// reference is the largest validated entry_count.
func Confidence(t *pad.Table) float64 {
	c := float64(t.EntryCount()) / 100
	if c > 1.0 {
		c = 1.0
	}
	return c
}

func selectWinner(tables []*pad.Table) *pad.Table {
	best := tables[0]
	for _, t := range tables[1:] {
		if better(t, best) {
			best = t
		}
	}
	return best
}

// better reports whether candidate outranks current under the Selecting
// rule: highest score first (when scored), then larger entry_count, then
// smaller offset.
func better(candidate, current *pad.Table) bool {
	if candidate.Scored && current.Scored && candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	if candidate.EntryCount() != current.EntryCount() {
		return candidate.EntryCount() > current.EntryCount()
	}
	return candidate.AbsoluteOffset() < current.AbsoluteOffset()
}
