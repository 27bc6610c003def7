// Package gritpos implements 1-indexed source positions and byte ranges,
// and the conversions between byte and character offsets needed when a
// target language's parser hands back byte offsets but a caller wants
// positions expressed in Unicode characters (editor protocols, JSON
// output).
package gritpos

import (
	"fmt"
	"strings"
)

// Position is a 1-indexed line and column within some source string.
type Position struct {
	Line   uint32
	Column uint32
}

// NewPosition builds a Position from 1-indexed line and column values.
func NewPosition(line, column uint32) Position {
	return Position{Line: line, Column: column}
}

// FirstPosition is the first position in any source string.
func FirstPosition() Position {
	return Position{Line: 1, Column: 1}
}

// LastPosition returns the last position in source.
func LastPosition(source string) Position {
	return PositionFromByteIndex(source, len(source))
}

// Add shifts p by other, treating other as a line/column delta from
// (1,1): the line advances by other.Line-1 and the column by
// other.Column-1.
func (p *Position) Add(other Position) {
	p.Line += other.Line - 1
	p.Column += other.Column - 1
}

// PositionFromByteIndex locates the 1-indexed line/column of byteIndex
// within source.
func PositionFromByteIndex(source string, byteIndex int) Position {
	idx := byteIndex
	if idx > len(source) {
		idx = len(source)
	}
	prefix := source[:idx]
	lines := splitLinesKeepEmpty(prefix)
	lineCount := uint32(len(lines))
	if lineCount == 0 {
		return FirstPosition()
	}
	if strings.HasSuffix(prefix, "\n") {
		return Position{Line: lineCount + 1, Column: 1}
	}
	lastLine := lines[len(lines)-1]
	return Position{Line: lineCount, Column: uint32(len(lastLine)) + 1}
}

// ByteIndex returns the byte offset of p within source.
func (p Position) ByteIndex(source string) int {
	lines := strings.Split(source, "\n")
	take := int(p.Line) - 1
	if take < 0 {
		take = 0
	}
	if take > len(lines) {
		take = len(lines)
	}
	start := 0
	for _, line := range lines[:take] {
		start += len(line) + 1
	}
	return start + int(p.Column) - 1
}

// splitLinesKeepEmpty mirrors Rust's str::lines() applied to a byte
// prefix: it yields one entry per newline-terminated line, dropping a
// single trailing newline, but (unlike strings.Split) never reports a
// phantom trailing empty line for a prefix that itself ends right after
// a newline only when that prefix is empty.
func splitLinesKeepEmpty(s string) []string {
	if s == "" {
		return nil
	}
	trimmed := s
	trailingNewline := strings.HasSuffix(trimmed, "\n")
	if trailingNewline {
		trimmed = trimmed[:len(trimmed)-1]
	}
	lines := strings.Split(trimmed, "\n")
	if trailingNewline {
		return lines
	}
	return lines
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Less orders positions by line then column, giving Position a total
// order usable as a sort/map key alongside Range.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}
