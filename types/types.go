// Package types contains shared types used across the sweetest engine
package types

// Status is the outcome of a suite or a test case. A suite has exactly two
// states: it passed, or something in its subtree failed.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// StatusFromFailed maps a failed flag to a Status.
func StatusFromFailed(failed bool) Status {
	if failed {
		return StatusFail
	}
	return StatusPass
}

// Report glyphs
const (
	PassGlyph = "✅"
	FailGlyph = "❌"
)

// Glyph returns the report glyph of the status.
func (s Status) Glyph() string {
	if s == StatusFail {
		return FailGlyph
	}
	return PassGlyph
}
