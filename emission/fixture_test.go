package emission

import "time"

// fixture wraps a Database with the bookkeeping helpers the tests need to
// build small synthetic histories directly against the graph (file F with
// versions 1.1, 1.2, 1.3 ...) rather than through a real CVS rlog parser,
// which is out of this core's scope.
type fixture struct {
	db    *Database
	trunk *Tag
	base  time.Time
}

func newFixture() *fixture {
	db := NewDatabase()
	base := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &fixture{db: db, base: base}
}

func (f *fixture) at(seconds int64) time.Time {
	return f.base.Add(time.Duration(seconds) * time.Second)
}

// file registers a new file and returns it.
func (f *fixture) file(path string) *File {
	return f.db.NewFile(path)
}

// trunkTag must be called after every file used on trunk has been
// registered; it mirrors NewTrunkTag's documented ordering requirement.
func (f *fixture) trunkTag(atSeconds int64) *Tag {
	f.trunk = f.db.NewTrunkTag(f.at(atSeconds))
	return f.trunk
}

// root creates a parentless (root) version of file on trunk.
func (f *fixture) root(file *File, versionString string) *Version {
	v := f.db.NewVersion(file, versionString, nil)
	v.Branch = f.trunk
	return v
}

// child creates a version of file descended from parent, on trunk.
func (f *fixture) child(parent *Version, versionString string) *Version {
	v := f.db.NewVersion(parent.File, versionString, parent)
	v.Branch = f.trunk
	return v
}

// commit groups versions into a single commit-variant changeset at the
// given offset from the fixture's base time.
func (f *fixture) commit(atSeconds int64, author, log string, versions ...*Version) *Changeset {
	return f.db.NewCommit(f.at(atSeconds), author, log, "", versions)
}
