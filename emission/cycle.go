// Cycle detection and split. A changeset is not ready iff at least
// one of its versions has a still-unreleased parent; preceed walks from
// such a version back to the nearest ready ancestor, and a Floyd
// tortoise-and-hare walk over preceed locates a cycle among the unready
// changesets.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

// preceed returns some ready version that blocks v's changeset from being
// ready. It is a bug to call this when every version of v.Commit is
// already ready, since then the changeset would itself be ready.
func preceed(v *Version) *Version {
	for csv := v.Commit.Versions; csv != nil; csv = csv.CSSibling {
		if csv.Ready() {
			continue
		}
		for p := csv.Parent; p != nil; p = p.Parent {
			if p.Ready() {
				return p
			}
		}
	}
	throwFault("preceed: changeset at %s has no blocked version with a ready ancestor", v.Commit.Time)
	panic("unreachable")
}

// cycleFind re-runs Floyd's tortoise-and-hare over preceed starting from v,
// returning the meeting point: a version on the cycle among the unready
// changesets that next_changeset_split must break.
func cycleFind(v *Version) *Version {
	slow, fast := v, v
	for {
		slow = preceed(slow)
		fast = preceed(preceed(fast))
		if slow == fast {
			return slow
		}
	}
}

// cycleSplit breaks the cycle centered on cs by partitioning cs.Versions
// into a ready half (moved to a new commit changeset nw, inserted into the
// ready-changesets heap) and a blocked half (left on cs). Only commit
// changesets can be split this way; a cycle that routes through an
// implicit-merge changeset's versions is an unhandled case the source
// itself flags and is reported rather than silently mis-split.
func cycleSplit(db *Database, cs *Changeset) {
	if cs.Kind != KindCommit {
		throwFault("cycle split target is a %s changeset, not commit: splitting %s is not implemented", cs.Kind, cs.Kind)
	}

	announce("*********** CYCLE **********")

	nw := db.newChangeset(KindCommit, cs.Time)

	var blocked, ready *Version
	blockedTail, readyTail := &blocked, &ready
	for v := cs.Versions; v != nil; {
		next := v.CSSibling
		v.CSSibling = nil
		if v.ImplicitMerge {
			throwFault("cycle split: version %s:%s participates in an implicit merge; splitting that is not implemented", v.File.Path, v.VersionString)
		}
		if v.Ready() {
			v.Commit = nw
			*readyTail = v
			readyTail = &v.CSSibling
		} else {
			*blockedTail = v
			blockedTail = &v.CSSibling
		}
		v = next
	}

	cs.Versions = blocked
	nw.Versions = ready

	if cs.Versions == nil || nw.Versions == nil {
		throwFault("cycle split produced an empty half")
	}

	db.ReadyChangesets.Insert(nw)

	branch := ""
	if b := cs.Branch(); b != nil {
		branch = b.Name
	}
	announce("Changeset %s %s\n%s", branch, cs.Versions.Author, cs.Versions.Log)
	for v := nw.Versions; v != nil; v = v.CSSibling {
		announce("    %s:%s", v.File.Path, v.VersionString)
	}
	announce("Deferring:")
	for v := cs.Versions; v != nil; v = v.CSSibling {
		announce("    %s:%s", v.File.Path, v.VersionString)
	}
}
