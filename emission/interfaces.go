// External-collaborator boundary. The emission core assumes it is handed a
// fully populated, invariant-satisfying Database; it never reads a raw
// revision log, resolves branch topology, or interns strings itself. These
// interfaces name the seams where that upstream work plugs in, even though
// this repository's own driver (cmd/crap) exercises the core against
// canned in-memory scenarios rather than a real one of each.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

import "time"

// Parser populates a fresh Database from a raw revision log. A real
// implementation reads CVS rlog output (or equivalent) file by file,
// calling NewFile/NewVersion/NewCommit/NewImplicitMerge/NewTag as it
// discovers each revision, branch, and tag. The emission core never calls
// this itself; it is satisfied once before Run.
type Parser interface {
	Parse(db *Database) error
}

// BranchAnalyzer resolves branch topology and tag-point candidates once
// parsing is complete: assigning each Version.Branch, recording every
// Tag.BranchVersions snapshot, and linking implicit-merge changesets to
// their vendor-branch parents. Run assumes this has already happened and
// that IndexTags has been called on the result.
type BranchAnalyzer interface {
	Analyze(db *Database) error
}

// StringInterner deduplicates the repeated author names, log messages, and
// commit identifiers a revision log is full of. Neither Parser nor
// BranchAnalyzer is required to use one, but a production implementation
// of either typically does; the emission core is indifferent to whether
// the strings it reads off Version and Changeset are interned.
type StringInterner interface {
	Intern(s string) string
}

// Clock abstracts "the current time" for a driver that needs to stamp a
// run (for example, a log line noting when emission started); the
// emission core itself never calls this, since every timestamp it acts on
// comes from the database.
type Clock interface {
	Now() time.Time
}
