// Readiness accounting and the emission scheduler.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

// ChangesetRelease decrements cs's unready count; when it reaches zero, cs
// enters the ready-changesets heap. It is a fatal bug to call this on a
// changeset whose count is already zero.
func ChangesetRelease(db *Database, cs *Changeset) {
	if cs.UnreadyCount == 0 {
		throwFault("changeset_release: unready_count underflow on changeset at %s", cs.Time)
	}
	cs.UnreadyCount--
	if cs.UnreadyCount == 0 {
		db.ReadyChangesets.Insert(cs)
	}
}

// VersionRelease marks v ready. If readyVersions is non-nil v is inserted
// into it first (the main emission pass tracks per-version readiness to
// enable cycle detection; the tag-point assignment pass does not need to,
// so it passes a nil heap). Either way v's owning changeset is released.
func VersionRelease(db *Database, readyVersions *Heap[*Version], v *Version) {
	if readyVersions != nil {
		readyVersions.Insert(v)
	}
	ChangesetRelease(db, v.Commit)
}

// ChangesetEmitted records that cs has just been emitted: for commit
// changesets, every version is removed from readyVersions (if tracked) and
// every child version is released; for every variant, every dependent
// changeset in cs.Children is released.
func ChangesetEmitted(db *Database, readyVersions *Heap[*Version], cs *Changeset) {
	if cs.Kind == KindCommit {
		for i := cs.Versions; i != nil; i = i.CSSibling {
			if readyVersions != nil {
				readyVersions.Remove(i)
			}
			for v := i.Children; v != nil; v = v.Sibling {
				VersionRelease(db, readyVersions, v)
			}
		}
	}

	for _, child := range cs.Children {
		ChangesetRelease(db, child)
	}
}

// PrepareForEmission resets and recomputes every changeset's unready count
// from the graph, then releases every root version (one with no parent) on
// every file. readyVersions may be nil, exactly as in VersionRelease.
func PrepareForEmission(db *Database, readyVersions *Heap[*Version]) {
	for _, cs := range db.Changesets {
		cs.UnreadyCount = 0
	}
	for _, cs := range db.Changesets {
		if cs.Kind == KindCommit {
			for j := cs.Versions; j != nil; j = j.CSSibling {
				cs.UnreadyCount++
			}
		}
		for _, child := range cs.Children {
			child.UnreadyCount++
		}
	}

	for _, f := range db.Files {
		for _, j := range f.Versions {
			if j.Parent == nil {
				VersionRelease(db, readyVersions, j)
			}
		}
	}
}

// NextChangeset pops the earliest ready changeset, or returns nil if none
// is ready. It performs no cycle handling.
func NextChangeset(db *Database) *Changeset {
	if db.ReadyChangesets.Empty() {
		return nil
	}
	return db.ReadyChangesets.PopFront()
}

// NextChangesetSplit pops the earliest ready changeset, splitting a cycle
// first if none is currently ready but unreleased versions remain. It
// returns nil only on genuine termination: no ready changeset AND no
// unreleased version (readyVersions empty).
func NextChangesetSplit(db *Database, readyVersions *Heap[*Version]) *Changeset {
	if !db.ReadyChangesets.Empty() {
		return db.ReadyChangesets.PopFront()
	}

	if readyVersions.Empty() {
		return nil
	}

	target := cycleFind(readyVersions.Front()).Commit
	cycleSplit(db, target)

	if db.ReadyChangesets.Empty() {
		throwFault("next_changeset_split: split produced no ready changeset")
	}

	return db.ReadyChangesets.PopFront()
}
