package emission

import (
	"bytes"
	"strings"
	"testing"
)

type recordingWriter struct {
	commits []*Changeset
	merges  []*Changeset
	tags    []*Changeset
	order   []*Changeset // emission order across all three kinds
	buf     bytes.Buffer
}

func (w *recordingWriter) text() *TextWriter { return &TextWriter{Out: &w.buf} }

func (w *recordingWriter) WriteCommit(cs *Changeset) error {
	w.commits = append(w.commits, cs)
	w.order = append(w.order, cs)
	return w.text().WriteCommit(cs)
}
func (w *recordingWriter) WriteImplicitMerge(cs *Changeset) error {
	w.merges = append(w.merges, cs)
	w.order = append(w.order, cs)
	return w.text().WriteImplicitMerge(cs)
}
func (w *recordingWriter) WriteTag(cs *Changeset) error {
	w.tags = append(w.tags, cs)
	w.order = append(w.order, cs)
	return w.text().WriteTag(cs)
}

func TestRunLinearHistory(t *testing.T) {
	f := newFixture()
	fa := f.file("F")
	f.trunkTag(0)
	v1 := f.root(fa, "1.1")
	v2 := f.child(v1, "1.2")
	f.commit(1, "esr", "rev1\n", v1)
	f.commit(2, "esr", "rev2\n", v2)
	f.db.IndexTags()

	w := &recordingWriter{}
	summary, err := Run(f.db, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, len(w.commits), 2)
	assertEqual(t, summary.EmittedChangesets, summary.TotalChangesets)
	if w.commits[0].Time.After(w.commits[1].Time) {
		t.Fatal("expected commits emitted in time order")
	}
}

func TestRunTwoFileSimultaneousCommit(t *testing.T) {
	f := newFixture()
	fa, fb := f.file("A"), f.file("B")
	f.trunkTag(0)
	va := f.root(fa, "1.1")
	vb := f.root(fb, "1.1")
	f.commit(1, "esr", "initial import\n", va, vb)
	f.db.IndexTags()

	w := &recordingWriter{}
	summary, err := Run(f.db, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, len(w.commits), 1)
	assertEqual(t, summary.TotalChangesets, 1)
	assertEqual(t, summary.EmittedChangesets, 1)
}

func TestRunInducedCycleStillCompletesAndAnnounces(t *testing.T) {
	f := newFixture()
	fa := f.file("A")
	fb := f.file("B")
	f.trunkTag(0)

	a1 := f.root(fa, "1.1")
	a2 := f.child(a1, "1.2")
	a3 := f.child(a2, "1.3")
	b1 := f.root(fb, "1.1")
	b2 := f.child(b1, "1.2")

	f.commit(0, "esr", "P1\n", a1)
	f.commit(2, "esr", "X\n", a2, b2)
	f.commit(1, "esr", "Y\n", a3, b1)
	f.db.IndexTags()

	var diagBuf bytes.Buffer
	SetDiagnostics(&Diagnostics{Stream: &diagBuf})
	defer SetDiagnostics(nil)

	w := &recordingWriter{}
	summary, err := Run(f.db, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.EmittedChangesets <= summary.TotalChangesets {
		t.Fatalf("expected the cycle split to emit more changesets than counted up front: emitted=%d total=%d",
			summary.EmittedChangesets, summary.TotalChangesets)
	}
	if !strings.Contains(diagBuf.String(), "CYCLE") {
		t.Fatal("expected a cycle diagnostic on the configured stream")
	}
}

func TestRunTagMatchReleasesTag(t *testing.T) {
	f := newFixture()
	fa := f.file("A")
	f.trunkTag(0)
	v := f.root(fa, "1.1")
	f.commit(1, "esr", "initial\n", v)
	rel := f.db.NewTag("REL_1_0", []*Version{v}, f.at(5))
	f.db.IndexTags()

	w := &recordingWriter{}
	summary, err := Run(f.db, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rel.IsReleased {
		t.Fatal("expected the tag to be released by the end of the run")
	}
	assertEqual(t, len(w.tags), 1)
	assertEqual(t, summary.TotalTags, 1)
	assertEqual(t, summary.EmittedTags, 1)
}

func TestRunImplicitMergeIsWrittenAfterItsParent(t *testing.T) {
	f := newFixture()
	fa := f.file("A")
	f.trunkTag(0)
	trunkV := f.root(fa, "1.1")
	vendorV := f.db.NewVersion(fa, "1.1.1.1", nil)
	branchTag := f.db.NewTag("vendor", make([]*Version, len(f.db.Files)), f.at(0))
	vendorV.Branch = branchTag
	vendorV.ImplicitMerge = true

	f.commit(0, "esr", "trunk baseline\n", trunkV)
	vendorCommit := f.db.NewCommit(f.at(1), "esr", "vendor drop\n", "", []*Version{vendorV})
	merge := f.db.NewImplicitMerge(vendorCommit)
	AddChild(vendorCommit, merge)

	f.db.IndexTags()

	w := &recordingWriter{}
	_, err := Run(f.db, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.merges) != 1 {
		t.Fatalf("expected exactly one implicit-merge changeset emitted, got %d", len(w.merges))
	}
	mergeIdx, commitIdx := -1, -1
	for i, cs := range w.order {
		switch cs {
		case vendorCommit:
			commitIdx = i
		case merge:
			mergeIdx = i
		}
	}
	if commitIdx == -1 || mergeIdx == -1 {
		t.Fatal("expected both the vendor commit and its implicit merge to be emitted")
	}
	if mergeIdx < commitIdx {
		t.Fatal("expected the implicit merge to be emitted after its parent commit")
	}
}

func TestRunMissedTagIsReportedInSummary(t *testing.T) {
	f := newFixture()
	fa := f.file("A")
	f.trunkTag(0)
	v := f.root(fa, "1.1")
	f.commit(1, "esr", "initial\n", v)

	// This tag's snapshot names a version that was never actually
	// committed to trunk under this hash, so it can never match: phantom
	// sits on an anonymous branch, so no branch-state update ever touches
	// B's slot.
	other := f.db.NewFile("B")
	phantom := f.db.NewVersion(other, "1.1", nil)
	f.commit(2, "esr", "on an anonymous branch\n", phantom)
	f.db.NewTag("PHANTOM", []*Version{v, phantom}, f.at(5))
	f.db.IndexTags()

	var diagBuf bytes.Buffer
	SetDiagnostics(&Diagnostics{Stream: &diagBuf})
	defer SetDiagnostics(nil)

	w := &recordingWriter{}
	summary, err := Run(f.db, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, summary.EmittedTags, 0)
	assertEqual(t, summary.TotalTags, 1)
	if !strings.Contains(diagBuf.String(), "Missed tag PHANTOM") {
		t.Fatalf("expected a missed-tag diagnostic, got: %s", diagBuf.String())
	}
}
