// Package emission is the changeset emission core: the dependency graph
// between file versions and repository-wide changesets, the
// readiness/heap-driven scheduler that emits changesets in a valid order,
// the cycle detection and splitting procedure that breaks cycles induced by
// inconsistent timestamps, and the branch-state fingerprinting that matches
// reconstructed branch states against named tags.
//
// The parser that populates a Database, the branch analyzer that resolves
// branch topology, and the string-interning cache that backs author/log
// text are all external collaborators; this package only consumes what
// they produce.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission
