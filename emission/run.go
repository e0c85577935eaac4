// Run drives the two emission passes, ported from
// original_source/rlog_parse.c's main(): a tag-point assignment pass that
// discovers which commit produces which named branch/tag snapshot, and the
// real emission pass that walks the whole graph in dependency order,
// handing every emitted changeset to a Writer and splitting any cycle the
// scheduler finds along the way.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

import "fmt"

// Run assumes db already satisfies every invariant except unready
// counts and heap membership, which Run computes itself: every ordinary
// Children edge and every tag's BranchVersions snapshot must already be
// populated by the caller (the parser and branch analyzer that produce
// those are out of this core's scope), and IndexTags must have been
// called. Run returns once emission terminates, successfully or not; an
// invariant violation anywhere in the core surfaces as a non-nil error
// rather than an unrecovered panic.
func Run(db *Database, w Writer) (summary Summary, err error) {
	defer RecoverFault(&err)

	// Pass 1: tag-point assignment. No ready-versions heap is tracked, so
	// no cycle detection is attempted here - this pass exists only to let
	// changeset_update_branch_hash discover tag matches as far through
	// the graph as plain readiness (no splitting) can reach, wiring each
	// matched tag's changeset as a dependent of the commit that produced
	// its snapshot.
	PrepareForEmission(db, nil)
	for {
		cs := NextChangeset(db)
		if cs == nil {
			break
		}
		ChangesetEmitted(db, nil, cs)
		ChangesetUpdateBranchHash(db, cs)
	}

	// Pass 2: the real emission. Tags discovered above now hang off their
	// producing commit as a dependent, so recomputing unready counts from
	// the (now tag-enriched) graph gives every matched tag a correct
	// count; is_released resets between the passes (monotonic only within
	// a single pass), but the parent edges recorded above persist.
	for _, t := range db.Tags {
		t.IsReleased = false
	}
	readyVersions := &Heap[*Version]{}
	PrepareForEmission(db, readyVersions)

	// A tag that matched nothing in pass 1 keeps an unready_count of
	// zero: nothing ever decrements it via changeset_release, since
	// nothing in the graph names it as a dependency. Such tags must be
	// seeded into the ready-changesets heap directly, the way
	// rlog_parse.c's main() does right before its real emission loop.
	for _, t := range db.Tags {
		if t.Changeset.UnreadyCount == 0 {
			db.ReadyChangesets.Insert(t.Changeset)
		}
	}

	for _, cs := range db.Changesets {
		if cs.Kind != KindTag {
			summary.TotalChangesets++
		}
	}

	for {
		cs := NextChangesetSplit(db, readyVersions)
		if cs == nil {
			break
		}
		if werr := Write(w, cs); werr != nil {
			return summary, werr
		}
		if cs.Kind != KindTag {
			summary.EmittedChangesets++
		}
		diag.Baton.Twirl()
		ChangesetEmitted(db, readyVersions, cs)
	}

	diag.Baton.End(fmt.Sprintf("%d changesets", summary.EmittedChangesets))
	summary.Tally(db)
	summary.Report()
	return summary, nil
}
