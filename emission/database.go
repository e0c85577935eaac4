// Database: the shared graph of files, versions, changesets and tags. Owns
// all nodes; every other component holds non-owning references.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

import (
	"time"

	orderedset "github.com/emirpasic/gods/sets/linkedhashset"
)

// fingerprint is the 160-bit branch-state digest used to key the tag index.
type fingerprint [20]byte

// Database is the arena that owns every File, Version, Changeset and Tag
// created during a run. Every inter-node link inside the graph is a plain
// pointer into this arena; nothing outside Database frees anything until
// the whole run is torn down.
type Database struct {
	Files      []*File
	Changesets []*Changeset
	Tags       []*Tag

	ReadyChangesets Heap[*Changeset]
	ReadyTags       Heap[*Tag]

	// tagIndex maps a branch-state fingerprint to the set of tags whose
	// recorded branch_versions snapshot hashes to it, preserving the
	// order tags were indexed in (database index order), exactly the
	// order changeset_update_branch_hash must visit matches in.
	tagIndex map[fingerprint]*orderedset.Set

	seq uint64 // monotonically assigned heap tie-break counter
}

// NewDatabase returns an empty, ready-to-populate Database. Tag index 0 is
// conventionally the empty-named trunk branch, matching the source's
// assert (db->tags[0].tag[0] == 0); callers that want implicit-merge
// support must register it first via NewTrunkTag.
func NewDatabase() *Database {
	return &Database{
		tagIndex: make(map[fingerprint]*orderedset.Set),
	}
}

func (db *Database) nextSeq() uint64 {
	db.seq++
	return db.seq
}

// NewFile registers a new file artifact, identified by its path.
func (db *Database) NewFile(path string) *File {
	f := &File{
		Path:  path,
		index: len(db.Files),
	}
	db.Files = append(db.Files, f)
	return f
}

// NewVersion creates a new revision of f, appending it to f's ordered
// version sequence. parent may be nil for a root version.
func (db *Database) NewVersion(f *File, versionString string, parent *Version) *Version {
	v := &Version{
		heapHandle:    heapHandle{seq: db.nextSeq(), index: heapIndexUnset},
		File:          f,
		VersionString: versionString,
		Parent:        parent,
	}
	if parent != nil {
		v.Sibling = parent.Children
		parent.Children = v
	}
	f.Versions = append(f.Versions, v)
	return v
}

// NewCommit allocates a new commit-variant changeset aggregating versions.
// versions must be non-empty and share author, log and approximate time;
// the versions are linked via CSSibling and their Commit
// back-pointer is set to the new changeset.
func (db *Database) NewCommit(t time.Time, author, log, commitID string, versions []*Version) *Changeset {
	cs := db.newChangeset(KindCommit, t)
	cs.Author, cs.Log, cs.CommitID = author, log, commitID
	var prev *Version
	for _, v := range versions {
		v.Commit = cs
		v.Author, v.Log, v.CommitID, v.Time = author, log, commitID, t
		if prev == nil {
			cs.Versions = v
		} else {
			prev.CSSibling = v
		}
		prev = v
	}
	return cs
}

// NewImplicitMerge allocates an implicit_merge changeset derived from a
// commit parent: the trunk-merge side effect of a vendor-branch commit.
func (db *Database) NewImplicitMerge(parent *Changeset) *Changeset {
	cs := db.newChangeset(KindImplicitMerge, parent.Time)
	cs.Parent = parent
	return cs
}

// NewTag allocates a tag-variant changeset naming a snapshot. If
// branchVersions is non-nil this tag denotes a branch rather than a plain
// tag, and branchVersions holds the per-file live-version snapshot array
// (indexed by File.index) that this tag's fingerprint is computed from.
func (db *Database) NewTag(name string, branchVersions []*Version, t time.Time) *Tag {
	cs := db.newChangeset(KindTag, t)
	tag := &Tag{
		heapHandle:     heapHandle{seq: db.nextSeq(), index: heapIndexUnset},
		Name:           name,
		BranchVersions: branchVersions,
		Changeset:      cs,
	}
	cs.TagData = tag
	db.Tags = append(db.Tags, tag)
	return tag
}

// NewTrunkTag registers the conventional tag-index-0 trunk branch: an
// empty-named branch tag whose BranchVersions snapshot has one slot per
// file already registered with db. Call it after registering every file
// whose versions should track trunk state (a file registered later has no
// slot in the snapshot), and before any implicit-merge
// changeset is created (they read db.Tags[0] directly). t is the time at
// which trunk's snapshot begins tracking.
func (db *Database) NewTrunkTag(t time.Time) *Tag {
	trunk := db.NewTag("", make([]*Version, len(db.Files)), t)
	return trunk
}

func (db *Database) newChangeset(kind ChangesetKind, t time.Time) *Changeset {
	cs := &Changeset{
		heapHandle: heapHandle{seq: db.nextSeq(), index: heapIndexUnset},
		Kind:       kind,
		Time:       t,
	}
	db.Changesets = append(db.Changesets, cs)
	return cs
}

// File is an input artifact identified by its path; it owns an ordered
// sequence of versions and lives for the entire run.
type File struct {
	Path     string
	Versions []*Version
	index    int // position in Database.Files; the branch_versions slot
}

// Index returns this file's position in the database, the slot used to
// look it up in any branch_versions snapshot array.
func (f *File) Index() int { return f.index }

// AddChild records that cs depends on parent: cs will not be ready until
// parent has been emitted.
func AddChild(parent *Changeset, cs *Changeset) {
	parent.Children = append(parent.Children, cs)
}
