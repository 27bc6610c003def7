package gritpos

import "fmt"

// Range is a source span expressed both in (line, column) positions and
// in byte offsets, so callers that only have one representation handy
// never need a side-channel conversion.
type Range struct {
	Start     Position
	End       Position
	StartByte uint32
	EndByte   uint32
}

// NewRange builds a Range from explicit start/end positions and byte offsets.
func NewRange(start, end Position, startByte, endByte uint32) Range {
	return Range{Start: start, End: end, StartByte: startByte, EndByte: endByte}
}

// AbbreviatedDebug renders a Range the way diagnostic output does:
// "[start-end]/[startByte-endByte]".
func (r Range) AbbreviatedDebug() string {
	return fmt.Sprintf("[%s-%s]/[%d-%d]", r.Start, r.End, r.StartByte, r.EndByte)
}

// Add shifts both endpoints of r by a position delta and a byte delta,
// used when splicing a parsed sub-document back into its host's
// coordinate space.
func (r *Range) Add(other Position, otherByte uint32) {
	r.Start.Add(other)
	r.End.Add(other)
	r.StartByte += otherByte
	r.EndByte += otherByte
}

// ByteRange returns the [StartByte, EndByte) slice bounds.
func (r Range) ByteRange() (start, end int) {
	return int(r.StartByte), int(r.EndByte)
}

// IsEmpty reports whether the range spans zero bytes.
func (r Range) IsEmpty() bool {
	return r.StartByte == r.EndByte
}

// AdjustColumns shifts only the column components (and matching byte
// offsets) of r, leaving line numbers untouched; used for same-line
// trims where padding has been consumed or inserted on one side.
// Reports false (and leaves r unmodified) on underflow.
func (r *Range) AdjustColumns(startDelta, endDelta int32) bool {
	newStartCol, ok1 := addSignedUint32(r.Start.Column, startDelta)
	newEndCol, ok2 := addSignedUint32(r.End.Column, endDelta)
	newStartByte, ok3 := addSignedUint32(r.StartByte, startDelta)
	newEndByte, ok4 := addSignedUint32(r.EndByte, endDelta)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	r.Start.Column = newStartCol
	r.End.Column = newEndCol
	r.StartByte = newStartByte
	r.EndByte = newEndByte
	return true
}

func addSignedUint32(base uint32, delta int32) (uint32, bool) {
	result := int64(base) + int64(delta)
	if result < 0 || result > int64(^uint32(0)) {
		return 0, false
	}
	return uint32(result), true
}

// GetLineRange returns the 0-based [start, end) column bounds of r's
// intersection with 1-indexed line `line`, given that line's length in
// bytes. Returns ok=false if r does not touch that line at all.
func (r Range) GetLineRange(line, lineLength uint32) (start, end int, ok bool) {
	if line < r.Start.Line || line > r.End.Line {
		return 0, 0, false
	}
	maxLength := lineLength + 1
	if lineLength == 0 {
		maxLength = 1
	}
	switch {
	case r.Start.Line == line && r.End.Line == line:
		return int(r.Start.Column - 1), int(r.End.Column - 1), true
	case r.Start.Line == line:
		return int(r.Start.Column - 1), int(maxLength - 1), true
	case r.End.Line == line:
		return 0, int(r.End.Column - 1), true
	default:
		return 0, int(maxLength - 1), true
	}
}

// ByteRangeToCharRange converts a Range expressed in byte offsets into
// one expressed in Unicode character offsets, against context (the full
// source text the byte offsets are relative to).
func (r Range) ByteRangeToCharRange(context string) Range {
	return Range{
		Start:     r.Start.bytePositionToCharPosition(context),
		End:       r.End.bytePositionToCharPosition(context),
		StartByte: byteIndexToCharOffset(r.StartByte, context),
		EndByte:   byteIndexToCharOffset(r.EndByte, context),
	}
}

// bytePositionToCharPosition converts a position expressed via byte
// column offsets into one expressed via character offsets.
func (p Position) bytePositionToCharPosition(context string) Position {
	charPos := Position{Line: 1, Column: 1}
	bytesProcessed := 0

	for _, c := range context {
		bytesProcessed += runeLen(c)

		if p.Line == charPos.Line && uint32(bytesProcessed) >= p.Column {
			break
		}

		if c == '\n' {
			charPos.Line++
			charPos.Column = 1
		} else {
			charPos.Column++
		}
	}

	return charPos
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

func byteIndexToCharOffset(index uint32, text string) uint32 {
	count := uint32(0)
	for i := range text {
		if uint32(i) >= index {
			break
		}
		count++
	}
	return count
}

// RangeWithoutByte is a Range with only position information, used when
// the byte offsets have not yet been computed (e.g. directly from a
// config or editor protocol that only speaks line/column).
type RangeWithoutByte struct {
	Start Position
	End   Position
}

// StartColumn, EndColumn, StartLine, EndLine are thin field accessors
// kept for symmetry with Range's method surface.
func (r RangeWithoutByte) StartColumn() uint32 { return r.Start.Column }
func (r RangeWithoutByte) EndColumn() uint32   { return r.End.Column }
func (r RangeWithoutByte) StartLine() uint32   { return r.Start.Line }
func (r RangeWithoutByte) EndLine() uint32     { return r.End.Line }

// IsEmpty reports whether start and end coincide.
func (r RangeWithoutByte) IsEmpty() bool { return r.Start == r.End }

// RangeFromByteless computes byte offsets for a RangeWithoutByte against
// concrete source text, producing a full Range.
func RangeFromByteless(r RangeWithoutByte, str string) Range {
	var startByte, byteLength uint32

	startLineZero := r.Start.Line - 1
	endLineZero := r.End.Line - 1

	lines := splitLinesForByteless(str)
	for i, line := range lines {
		current := uint32(i)
		switch {
		case current < startLineZero:
			startByte += uint32(len(line)) + 1
		case current == startLineZero:
			startByte += r.Start.Column - 1
			if current == endLineZero {
				byteLength += r.End.Column - r.Start.Column
				return Range{Start: r.Start, End: r.End, StartByte: startByte, EndByte: startByte + byteLength}
			}
			byteLength += (uint32(len(line)) + 1) - r.Start.Column
		case current < endLineZero:
			byteLength += uint32(len(line)) + 1
		case current == endLineZero:
			byteLength += r.End.Column
			return Range{Start: r.Start, End: r.End, StartByte: startByte, EndByte: startByte + byteLength}
		}
	}

	return Range{Start: r.Start, End: r.End, StartByte: startByte, EndByte: startByte + byteLength}
}

func splitLinesForByteless(s string) []string {
	if s == "" {
		return nil
	}
	trimmed := s
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\n' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return splitOn(trimmed, '\n')
}

func splitOn(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// FileRange pairs a range (with or without byte offsets) with the file
// path it applies to, for cross-file diagnostics.
type FileRange struct {
	FilePath string
	Range    UtilRange
}

// UtilRange is either a byte-resolved Range or a RangeWithoutByte.
type UtilRange struct {
	Range            *Range
	RangeWithoutByte *RangeWithoutByte
}

// FromRange wraps a Range as a UtilRange.
func FromRange(r Range) UtilRange { return UtilRange{Range: &r} }

// FromRangeWithoutByte wraps a RangeWithoutByte as a UtilRange.
func FromRangeWithoutByte(r RangeWithoutByte) UtilRange { return UtilRange{RangeWithoutByte: &r} }

// CodeRange identifies a byte span within a specific source revision:
// (start_byte, end_byte, source identity). Two CodeRanges over
// different revisions of the same logical file are never equal.
type CodeRange struct {
	StartByte      uint32
	EndByte        uint32
	SourceIdentity SourceIdentity
}

// SourceIdentity distinguishes distinct source string instances (e.g.
// different FileRegistry revisions) even when their contents happen to
// be byte-identical.
type SourceIdentity uintptr

// NewCodeRange builds a CodeRange from explicit bounds and a source identity.
func NewCodeRange(startByte, endByte uint32, identity SourceIdentity) CodeRange {
	return CodeRange{StartByte: startByte, EndByte: endByte, SourceIdentity: identity}
}

// FromRangeAndIdentity derives a CodeRange from a Range plus the
// identity of the source it was computed against.
func FromRangeAndIdentity(r Range, identity SourceIdentity) CodeRange {
	return CodeRange{StartByte: r.StartByte, EndByte: r.EndByte, SourceIdentity: identity}
}
