// crap drives the changeset-emission core against a handful of canned
// in-memory scenarios, in lieu of a real CVS revision-log parser, which
// remains an external collaborator outside this repository's scope.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tisoft/crap/emission"
)

var quiet bool

func croak(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "crap: croaking, "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	var scenario string
	var outfile string
	flag.BoolVar(&quiet, "q", false, "disable progress and summary diagnostics")
	flag.BoolVar(&quiet, "quiet", false, "disable progress and summary diagnostics")
	flag.StringVar(&scenario, "s", "linear", "scenario to emit: "+scenarioNames())
	flag.StringVar(&scenario, "scenario", "linear", "scenario to emit: "+scenarioNames())
	flag.StringVar(&outfile, "o", "", "write emitted changesets here instead of stdout")
	flag.StringVar(&outfile, "outfile", "", "write emitted changesets here instead of stdout")
	flag.Parse()

	build, ok := scenarios[scenario]
	if !ok {
		croak("unknown scenario %q, want one of %s", scenario, scenarioNames())
	}

	out := os.Stdout
	if outfile != "" {
		f, err := os.Create(outfile)
		if err != nil {
			croak("opening output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	var baton *emission.Baton
	if !quiet {
		baton = emission.NewBaton(os.Stderr, "crap: emitting "+scenario)
	}
	emission.SetDiagnostics(&emission.Diagnostics{Stream: os.Stderr, Quiet: quiet, Baton: baton})

	db := build()
	summary, err := emission.Run(db, &emission.TextWriter{Out: out})
	if err != nil {
		croak("%v", err)
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "crap: done, %d changesets emitted\n", summary.EmittedChangesets)
	}
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for _, n := range scenarioOrder {
		names = append(names, n)
	}
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s
}

var scenarioOrder = []string{"linear", "concurrent", "cycle", "tag", "merge"}

var scenarios = map[string]func() *emission.Database{
	"linear":     scenarioLinear,
	"concurrent": scenarioConcurrent,
	"cycle":      scenarioCycle,
	"tag":        scenarioTag,
	"merge":      scenarioMerge,
}

var base = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func at(seconds int64) time.Time { return base.Add(time.Duration(seconds) * time.Second) }

// scenarioLinear: one file, three sequential revisions, each its own commit.
func scenarioLinear() *emission.Database {
	db := emission.NewDatabase()
	f := db.NewFile("README")
	trunk := db.NewTrunkTag(at(0))

	v1 := db.NewVersion(f, "1.1", nil)
	v1.Branch = trunk
	v2 := db.NewVersion(f, "1.2", v1)
	v2.Branch = trunk
	v3 := db.NewVersion(f, "1.3", v2)
	v3.Branch = trunk

	db.NewCommit(at(1), "esr", "initial revision\n", "c1", []*emission.Version{v1})
	db.NewCommit(at(2), "esr", "fix typo\n", "c2", []*emission.Version{v2})
	db.NewCommit(at(3), "esr", "add section\n", "c3", []*emission.Version{v3})
	db.IndexTags()
	return db
}

// scenarioConcurrent: two files imported together in a single changeset.
func scenarioConcurrent() *emission.Database {
	db := emission.NewDatabase()
	fa := db.NewFile("Makefile")
	fb := db.NewFile("main.c")
	trunk := db.NewTrunkTag(at(0))

	va := db.NewVersion(fa, "1.1", nil)
	va.Branch = trunk
	vb := db.NewVersion(fb, "1.1", nil)
	vb.Branch = trunk

	db.NewCommit(at(1), "esr", "initial import\n", "c1", []*emission.Version{va, vb})
	db.IndexTags()
	return db
}

// scenarioCycle: two interleaved commits across two files that block each
// other until next_changeset_split breaks the cycle.
func scenarioCycle() *emission.Database {
	db := emission.NewDatabase()
	fa := db.NewFile("a.c")
	fb := db.NewFile("b.c")
	trunk := db.NewTrunkTag(at(0))

	a1 := db.NewVersion(fa, "1.1", nil)
	a1.Branch = trunk
	a2 := db.NewVersion(fa, "1.2", a1)
	a2.Branch = trunk
	a3 := db.NewVersion(fa, "1.3", a2)
	a3.Branch = trunk
	b1 := db.NewVersion(fb, "1.1", nil)
	b1.Branch = trunk
	b2 := db.NewVersion(fb, "1.2", b1)
	b2.Branch = trunk

	db.NewCommit(at(0), "esr", "P1\n", "c0", []*emission.Version{a1})
	db.NewCommit(at(2), "esr", "X\n", "c1", []*emission.Version{a2, b2})
	db.NewCommit(at(1), "esr", "Y\n", "c2", []*emission.Version{a3, b1})
	db.IndexTags()
	return db
}

// scenarioTag: a release tag whose recorded snapshot matches the trunk
// state exactly one commit produces.
func scenarioTag() *emission.Database {
	db := emission.NewDatabase()
	f := db.NewFile("VERSION")
	trunk := db.NewTrunkTag(at(0))

	v := db.NewVersion(f, "1.1", nil)
	v.Branch = trunk

	db.NewCommit(at(1), "esr", "cut 1.0\n", "c1", []*emission.Version{v})
	db.NewTag("REL_1_0", []*emission.Version{v}, at(5))
	db.IndexTags()
	return db
}

// scenarioMerge: a vendor-branch commit and the implicit merge it drops
// onto trunk.
func scenarioMerge() *emission.Database {
	db := emission.NewDatabase()
	f := db.NewFile("lib.c")
	trunk := db.NewTrunkTag(at(0))
	vendor := db.NewTag("vendor", make([]*emission.Version, 1), at(0))

	trunkV := db.NewVersion(f, "1.1", nil)
	trunkV.Branch = trunk
	vendorV := db.NewVersion(f, "1.1.1.1", nil)
	vendorV.Branch = vendor
	vendorV.ImplicitMerge = true

	db.NewCommit(at(0), "esr", "trunk baseline\n", "c0", []*emission.Version{trunkV})
	vendorCommit := db.NewCommit(at(1), "esr", "vendor drop\n", "c1", []*emission.Version{vendorV})
	merge := db.NewImplicitMerge(vendorCommit)
	emission.AddChild(vendorCommit, merge)

	db.IndexTags()
	return db
}
