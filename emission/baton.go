// Baton: a stderr progress spinner, adapted from the batch tools' own
// progress-indicator convention to twirl once per emitted changeset rather
// than once per filtered revision.
//
// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause
package emission

import (
	"fmt"
	"os"
	"time"

	terminal "golang.org/x/crypto/ssh/terminal"
)

// Baton ships progress indications to a terminal. Twirling against a
// non-terminal stream (a redirected file, a pipe) is a silent no-op, so a
// driver can always twirl unconditionally without checking isatty itself.
type Baton struct {
	stream *os.File
	count  int
	prompt string
	start  time.Time
}

// NewBaton writes prompt followed by "..." to stream and starts its clock.
func NewBaton(stream *os.File, prompt string) *Baton {
	b := &Baton{stream: stream, prompt: prompt, start: time.Now()}
	fmt.Fprint(b.stream, prompt+"...")
	if terminal.IsTerminal(int(b.stream.Fd())) {
		fmt.Fprint(b.stream, " \b")
	}
	return b
}

// Twirl advances the spinner by one frame.
func (b *Baton) Twirl() {
	if b == nil || b.stream == nil || !terminal.IsTerminal(int(b.stream.Fd())) {
		if b != nil {
			b.count++
		}
		return
	}
	b.stream.WriteString(string("-/|\\"[b.count%4]))
	b.stream.WriteString("\b")
	b.count++
}

// End closes out the spinner with an elapsed-time summary.
func (b *Baton) End(msg string) {
	if b == nil || b.stream == nil {
		return
	}
	fmt.Fprintf(b.stream, "...(%s) %s.\n", time.Since(b.start), msg)
}
