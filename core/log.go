package core

import "fmt"

// Log is an ordered, append-only list of diagnostic lines produced by one run.
// The zero value is ready to use.
type Log struct {
	lines []string
}

// Append formats a line and adds it to the log.
func (l *Log) Append(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the recorded lines.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)

	return out
}

// Len returns the number of recorded lines.
func (l *Log) Len() int { return len(l.lines) }
