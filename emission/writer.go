// Output collaborator interface. The emission core calls a
// Writer once per emitted changeset; the Writer is otherwise opaque to the
// core. TextWriter is a reference implementation of the text format,
// ported from original_source/rlog_parse.c's print_commit/
// print_implicit_merge/print_tag and format_date.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

import (
	"fmt"
	"io"
	"time"
)

// Writer is the output collaborator: the emission core calls exactly one
// of these three methods per emitted changeset, chosen by Changeset.Kind.
type Writer interface {
	WriteCommit(cs *Changeset) error
	WriteImplicitMerge(cs *Changeset) error
	WriteTag(cs *Changeset) error
}

// Write dispatches cs to the right Writer method by kind, the same switch
// rlog_parse.c's main() does around print_commit/print_implicit_merge/
// print_tag.
func Write(w Writer, cs *Changeset) error {
	switch cs.Kind {
	case KindCommit:
		return w.WriteCommit(cs)
	case KindImplicitMerge:
		return w.WriteImplicitMerge(cs)
	case KindTag:
		return w.WriteTag(cs)
	default:
		throwFault("write: unknown changeset kind %s", cs.Kind)
		panic("unreachable")
	}
}

// TextWriter renders the text format to Out.
type TextWriter struct {
	Out io.Writer
}

// WriteCommit prints the date/branch/author/log header and one line per
// file:version in the changeset.
func (w *TextWriter) WriteCommit(cs *Changeset) error {
	v := cs.Versions
	branch := ""
	if v.Branch != nil {
		branch = v.Branch.Name
	}
	if _, err := fmt.Fprintf(w.Out, "%s %s %s %s\n%s\n", formatDate(cs.Time), branch, v.Author, v.CommitID, v.Log); err != nil {
		return err
	}
	for i := v; i != nil; i = i.CSSibling {
		if _, err := fmt.Fprintf(w.Out, "\t%s %s\n", i.File.Path, i.VersionString); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w.Out)
	return err
}

// WriteImplicitMerge prints the parent commit's header but lists only the
// versions flagged ImplicitMerge.
func (w *TextWriter) WriteImplicitMerge(cs *Changeset) error {
	v := cs.Parent.Versions
	branch := ""
	if v.Branch != nil {
		branch = v.Branch.Name
	}
	if _, err := fmt.Fprintf(w.Out, "%s %s %s %s\n%s\n", formatDate(cs.Time), branch, v.Author, v.CommitID, v.Log); err != nil {
		return err
	}
	for i := v; i != nil; i = i.CSSibling {
		if !i.ImplicitMerge {
			continue
		}
		if _, err := fmt.Fprintf(w.Out, "\t%s %s\n", i.File.Path, i.VersionString); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w.Out)
	return err
}

// WriteTag prints the date, BRANCH or TAG, and the name.
func (w *TextWriter) WriteTag(cs *Changeset) error {
	t := cs.TagData
	kind := "TAG"
	if t.IsBranch() {
		kind = "BRANCH"
	}
	t.IsReleased = true
	_, err := fmt.Fprintf(w.Out, "%s %s %s\n", formatDate(cs.Time), kind, t.Name)
	return err
}

// formatDate renders t the way format_date does: in t's own zone first,
// falling back to UTC if that zone has no name. Go's
// time.Format never truly fails the way C's strftime can against a corrupt
// TZ database, but an empty zone abbreviation is the equivalent signal, and
// the two-step fallback is kept for fidelity with the original's "Malformed
// date" error kind, and so it stays testable by supplying a Time in a zone
// with no name.
func formatDate(t time.Time) string {
	const layout = "2006-01-02 15:04:05 MST"
	if zone, _ := t.Zone(); zone != "" {
		return t.Format(layout)
	}
	utc := t.UTC()
	if zone, _ := utc.Zone(); zone != "" {
		return utc.Format(layout)
	}
	throwFault("format_date: unable to format time %v in local or UTC zone", t)
	panic("unreachable")
}
