// Diagnostics and error handling.
//
// Invariant violations can't arise from valid input; they indicate a bug in
// the database this package was handed, so they panic a typed fault rather
// than returning an error, mirroring the throw/catch convention for
// "unlabeled panics... full aborts" that driver-style command-line tools in
// this tradition use. Anonymous branches, cycles and missed tags are
// recovered locally and never reach here as a panic; a malformed date is
// retried in UTC and faults only if that also fails.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

import (
	"fmt"
	"io"
	"os"
)

// fault is an invariant violation: a condition the source documents as "it
// is a fatal bug" or "abort ()". Recover it at the top of a driver and
// report with Croak.
type fault struct {
	message string
}

func (f *fault) Error() string { return f.message }

func throwFault(format string, args ...interface{}) {
	panic(&fault{message: fmt.Sprintf(format, args...)})
}

// RecoverFault turns a panicked fault into an error, the way a top-level
// driver should call it in a defer to convert an internal invariant
// violation into a clean non-zero exit instead of an unrecovered panic.
// Any other panic value is re-raised: only faults raised by this package
// are meant to be caught here.
func RecoverFault(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if f, ok := r.(*fault); ok {
		*err = f
		return
	}
	panic(r)
}

// Diagnostics controls where this package's non-fatal output goes, whether
// announce is silenced, and an optional progress Baton that Run twirls once
// per emitted changeset.
type Diagnostics struct {
	Stream io.Writer
	Quiet  bool
	Baton  *Baton
}

// DefaultDiagnostics writes to stderr and is not quiet.
func DefaultDiagnostics() *Diagnostics {
	return &Diagnostics{Stream: os.Stderr}
}

var diag = DefaultDiagnostics()

// SetDiagnostics installs d as the package-wide diagnostics sink. Pass nil
// to restore the default (stderr, not quiet).
func SetDiagnostics(d *Diagnostics) {
	if d == nil {
		d = DefaultDiagnostics()
	}
	diag = d
}

// Croak reports a fatal, user-caused condition and is meant to be followed
// by the caller aborting the run (the core itself never calls this; it is
// exposed for cmd/crap and other drivers).
func Croak(format string, args ...interface{}) {
	fmt.Fprintf(diag.Stream, "crap: croaking, "+format+"\n", args...)
}

// announce reports a non-fatal diagnostic: cycle splits, tag hits,
// per-tag "Missed" lines and the run summary. Silenced by Diagnostics.Quiet.
func announce(format string, args ...interface{}) {
	if diag.Quiet {
		return
	}
	fmt.Fprintf(diag.Stream, "crap: "+format+"\n", args...)
}

// Summary tallies end-of-run emission counts for the two summary lines
// and the per-tag "Missed tag|branch N" diagnostics.
type Summary struct {
	EmittedChangesets int
	TotalChangesets   int

	EmittedBranches int
	TotalBranches   int
	EmittedTags     int
	TotalTags       int
}

// Tally walks db.Tags to fill in the branch/tag counts, emitting a "Missed"
// diagnostic for every tag that never got released. Call after emission
// completes (or aborts) and after setting EmittedChangesets/TotalChangesets.
func (s *Summary) Tally(db *Database) {
	for _, t := range db.Tags {
		if t.IsBranch() {
			s.TotalBranches++
			if t.IsReleased {
				s.EmittedBranches++
			} else {
				announce("Missed branch %s", t.Name)
			}
		} else {
			s.TotalTags++
			if t.IsReleased {
				s.EmittedTags++
			} else {
				announce("Missed tag %s", t.Name)
			}
		}
	}
}

// Report prints the two summary lines.
func (s *Summary) Report() {
	announce("Emitted %d of %d changesets", s.EmittedChangesets, s.TotalChangesets)
	announce("Emitted %d + %d = %d of %d + %d = %d branches + tags = total",
		s.EmittedBranches, s.EmittedTags, s.EmittedBranches+s.EmittedTags,
		s.TotalBranches, s.TotalTags, s.TotalBranches+s.TotalTags)
}
