// Branch-state tracking & tag matching. Per-branch current snapshot
// of (file -> live version), and a fingerprint index mapping branch-state
// hashes to matching tags.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

import (
	"crypto/sha1"
	"encoding/binary"

	orderedset "github.com/emirpasic/gods/sets/linkedhashset"
)

// IndexTags (re)builds the tag-fingerprint index from every tag's recorded
// BranchVersions snapshot. Tags are indexed in database order, the order
// changeset_update_branch_hash must later visit same-hash matches in;
// linkedhashset's insertion-order iteration gives that for free.
func (db *Database) IndexTags() {
	db.tagIndex = make(map[fingerprint]*orderedset.Set)
	for _, t := range db.Tags {
		if t.BranchVersions == nil {
			continue
		}
		fp := hashBranchVersions(t.BranchVersions)
		bucket, ok := db.tagIndex[fp]
		if !ok {
			bucket = orderedset.New()
			db.tagIndex[fp] = bucket
		}
		bucket.Add(t)
	}
}

func hashBranchVersions(branch []*Version) fingerprint {
	h := sha1.New()
	var buf [8]byte
	for _, v := range branch {
		if v == nil || v.Dead {
			continue
		}
		// The source feeds the raw version_t* pointer bytes into the
		// digest; a pointer is not a stable cross-run identity in Go, so
		// this feeds the version's deterministic allocation sequence
		// number instead - seq is assigned in the same file/version
		// traversal order the parser produced, so two runs over
		// identical input still hash identically.
		binary.LittleEndian.PutUint64(buf[:], v.seq)
		h.Write(buf[:])
	}
	var out fingerprint
	copy(out[:], h.Sum(nil))
	return out
}

// ChangesetUpdateBranchVersions identifies which branch cs writes to and
// applies its changes to that branch's live snapshot, returning the number
// of files that actually changed. Anonymous-branch changesets are a
// documented no-op: stringing them into a branch history is more bother
// than it is worth, so they are simply skipped.
func ChangesetUpdateBranchVersions(db *Database, cs *Changeset) int {
	var branch []*Version
	var versions *Version
	implicitMerge := false

	switch {
	case cs.Kind == KindImplicitMerge:
		branch = db.Tags[0].BranchVersions
		if branch == nil {
			throwFault("changeset_update_branch_versions: trunk tag has no branch_versions snapshot")
		}
		implicitMerge = true
		versions = cs.Parent.Versions
	case cs.Versions.Branch == nil:
		return 0 // changeset on an anonymous branch
	default:
		branch = cs.Versions.Branch.BranchVersions
		versions = cs.Versions
	}

	changes := 0
	for i := versions; i != nil; i = i.CSSibling {
		if implicitMerge && !i.ImplicitMerge {
			continue
		}
		var v *Version
		if !i.Dead {
			v = i
		}
		slot := i.File.Index()
		if branch[slot] != v {
			branch[slot] = v
			changes++
		}
	}
	return changes
}

// ChangesetUpdateBranchHash applies cs's branch-version changes, and if any
// occurred, rehashes the affected branch snapshot and finds every tag
// whose recorded snapshot hashes the same way. Every matching tag whose
// changeset has no parent yet is attached as cs's dependent (it cannot be
// emitted before cs); every match that was not already released enters the
// ready-tags heap.
func ChangesetUpdateBranchHash(db *Database, cs *Changeset) int {
	changes := ChangesetUpdateBranchVersions(db, cs)
	if changes == 0 {
		return 0
	}

	var branch []*Version
	switch cs.Kind {
	case KindCommit:
		branch = cs.Versions.Branch.BranchVersions
	case KindImplicitMerge:
		branch = db.Tags[0].BranchVersions
	default:
		throwFault("changeset_update_branch_hash: unexpected changeset kind %s", cs.Kind)
	}

	fp := hashBranchVersions(branch)
	bucket, ok := db.tagIndex[fp]
	if !ok {
		return changes
	}

	it := bucket.Iterator()
	for it.Next() {
		t := it.Value().(*Tag)
		t.hitCount++

		kind := "TAG"
		if t.IsBranch() {
			kind = "BRANCH"
		}
		suffix := ""
		if t.hitCount > 1 {
			suffix = " (DUPLICATE)"
		}
		announce("*** HIT %s %s%s ***", kind, t.Name, suffix)

		if t.Changeset.Parent == nil {
			t.ExactMatch = true
			t.Changeset.Parent = cs
			AddChild(cs, t.Changeset)
		}
		if !t.IsReleased {
			t.IsReleased = true
			db.ReadyTags.Insert(t)
		}
	}

	return changes
}
