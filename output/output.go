// Package output accumulates the report lines of a suite.
package output

import "strings"

// Accumulator is an ordered line buffer. Prepended lines always precede
// appended ones, whatever order the calls were made in.
type Accumulator struct {
	head []string
	tail []string
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Append adds line after everything accumulated so far. A line may itself
// hold several newline separated lines, such as a rendered child suite.
func (a *Accumulator) Append(line string) {
	a.tail = append(a.tail, line)
}

// Prepend places line at position 0.
func (a *Accumulator) Prepend(line string) {
	a.head = append([]string{line}, a.head...)
}

// Lines returns the accumulated entries in render order.
func (a *Accumulator) Lines() []string {
	lines := make([]string, 0, len(a.head)+len(a.tail))
	lines = append(lines, a.head...)
	return append(lines, a.tail...)
}

// Render joins the entries with newlines.
func (a *Accumulator) Render() string {
	return strings.Join(a.Lines(), "\n")
}
