// Package ops implements the geometry operations of the editing engine:
// union, difference, split, simplify, scale, rotate, and copy. Operations
// are pure functions over features. They never mutate their inputs and
// never panic: faults in the underlying geometry algebra are converted to
// failed results at the operation boundary.
package ops

import (
	"fmt"

	"github.com/dshills/geostorm/internal/geo"
)

// Result represents the outcome of a geometry operation.
type Result struct {
	// Feature is the primary output, nil when the operation consumed the
	// geometry entirely or produced several features.
	Feature *geo.Feature

	// Features holds the outputs of operations that produce more than
	// one feature, such as Split.
	Features []*geo.Feature

	// Success reports whether the operation ran. A successful result
	// with no output feature is meaningful: the geometry was fully
	// consumed, for example a difference that subtracted everything.
	Success bool

	// Err describes why the operation did not run. Empty on success.
	Err string

	// InputIDs lists the resolved ids of the features the operation
	// consumed, in the order they were used.
	InputIDs []string

	// Stats carries vertex counts for operations that report them.
	Stats *SimplifyStats
}

// Failed returns true if the operation did not run.
func (r Result) Failed() bool { return !r.Success }

// Consumed returns true if the operation succeeded with no output, which
// means the geometry was subtracted away entirely.
func (r Result) Consumed() bool {
	return r.Success && r.Feature == nil && len(r.Features) == 0
}

// Outputs returns all output features regardless of arity.
func (r Result) Outputs() []*geo.Feature {
	if r.Feature != nil {
		return []*geo.Feature{r.Feature}
	}
	return r.Features
}

// ok creates a successful single-feature result.
func ok(f *geo.Feature) Result {
	return Result{Feature: f, Success: true}
}

// okMany creates a successful multi-feature result.
func okMany(fs ...*geo.Feature) Result {
	return Result{Features: fs, Success: true}
}

// okConsumed creates a successful result with no output feature.
func okConsumed() Result {
	return Result{Success: true}
}

// failf creates a failed result with a formatted reason.
func failf(format string, args ...interface{}) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}

// withInputs returns a copy of the result with input ids recorded.
func (r Result) withInputs(ids ...string) Result {
	r.InputIDs = append(r.InputIDs, ids...)
	return r
}

// withStats returns a copy of the result with stats attached.
func (r Result) withStats(s *SimplifyStats) Result {
	r.Stats = s
	return r
}

// recoverFailure converts a panic from the geometry layer into a failed
// result. The clipper can fault on degenerate rings; callers get a
// structured failure instead of a crash.
func recoverFailure(r *Result) {
	if p := recover(); p != nil {
		*r = failf("geometry fault: %v", p)
	}
}

// idsOf returns the resolved ids of features, in order.
func idsOf(features []*geo.Feature) []string {
	ids := make([]string, len(features))
	for i, f := range features {
		ids[i] = f.ID()
	}
	return ids
}
