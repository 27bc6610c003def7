// Package sourcemap tracks code embedded inside a larger host document
// (e.g. a Python cell inside a Jupyter notebook's JSON, or a fenced
// code block inside Markdown): the byte range each embedded section
// occupies in the host, and how to splice a rewritten version of the
// embedded text back into the host's own encoding (a quoted JSON
// string, a JSON array of lines, ...).
package sourcemap

import (
	"encoding/json"
	"fmt"
)

// ByteRange is a half-open [Start, End) span of byte offsets.
type ByteRange struct {
	Start, End int
}

// ValueFormat is how a section's code is encoded inside the host
// document.
type ValueFormat int

const (
	// FormatString encodes the section as a single JSON string.
	FormatString ValueFormat = iota
	// FormatArray encodes the section as a one-element JSON array of
	// strings, the shape Jupyter uses for a cell's "source" field.
	FormatArray
)

// Section describes one embedded span: where it sits in the host
// (OuterRange), where its own text ends in the concatenated inner
// document (InnerRangeEnd, cumulative across every section so far),
// how to re-encode it (Format), and how many trailing bytes of its
// inner text to drop before re-encoding (InnerEndTrim — e.g. a
// trailing newline tree-sitter requires but the host's own format
// doesn't carry).
type Section struct {
	OuterRange    ByteRange
	InnerRangeEnd int
	Format        ValueFormat
	InnerEndTrim  int
}

// NewSection builds a Section with the given fields.
func NewSection(outerRange ByteRange, innerRangeEnd int, format ValueFormat, innerEndTrim int) Section {
	return Section{OuterRange: outerRange, InnerRangeEnd: innerRangeEnd, Format: format, InnerEndTrim: innerEndTrim}
}

func (s Section) asJSON(code string) (string, error) {
	var v any
	switch s.Format {
	case FormatString:
		v = code
	case FormatArray:
		v = []string{code}
	default:
		return "", fmt.Errorf("sourcemap: unknown value format %d", s.Format)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Map is the embedded-source map for one host document: every section
// it carries, plus the host's own original text.
type Map struct {
	sections    []Section
	OuterSource string
}

// New builds an empty Map over outerSource.
func New(outerSource string) *Map {
	return &Map{OuterSource: outerSource}
}

// AddSection registers one more embedded span, in host order.
func (m *Map) AddSection(s Section) {
	m.sections = append(m.sections, s)
}

// Sections returns the map's sections, for inspection/testing.
func (m *Map) Sections() []Section {
	return m.sections
}

// Adjustment records that a [Start, End) span of the (pre-adjustment)
// inner document was replaced by a run of ReplacementLength bytes,
// e.g. one step of a rewrite pass splicing a shorter or longer value
// into the combined inner text. Adjustments must be supplied in
// ascending Start order, matching the order effects were applied in.
type Adjustment struct {
	Start, End        int
	ReplacementLength int
}

// CloneWithAdjustments returns a copy of m whose sections' InnerRangeEnd
// offsets have been shifted to account for every adjustment, without
// needing the adjusted inner text itself yet — FillWithInner is called
// afterward, once the new inner text has actually been produced.
func (m *Map) CloneWithAdjustments(adjustments []Adjustment) *Map {
	out := &Map{
		sections:    append([]Section(nil), m.sections...),
		OuterSource: m.OuterSource,
	}

	var accumulatedOffset, nextOffset, idx int
	for i := range out.sections {
		section := &out.sections[i]
		sectionOffset := nextOffset
		nextOffset = 0
		for idx < len(adjustments) {
			adj := adjustments[idx]
			lengthDiff := adj.ReplacementLength - (adj.End - adj.Start)
			if adj.Start >= section.InnerRangeEnd {
				nextOffset = lengthDiff
				idx++
				break
			}
			sectionOffset += lengthDiff
			idx++
		}
		accumulatedOffset += sectionOffset
		section.InnerRangeEnd += accumulatedOffset
	}
	return out
}

// FillWithInner splices newInnerSource's per-section slices back into a
// fresh copy of the host document, re-encoded per each section's
// Format, and returns the resulting host text.
func (m *Map) FillWithInner(newInnerSource string) (string, error) {
	outer := m.OuterSource
	var out []byte
	cursor := 0
	innerOffset := 0

	for _, section := range m.sections {
		start, end := innerOffset, section.InnerRangeEnd-section.InnerEndTrim
		if start < 0 || end > len(newInnerSource) || start > end {
			return "", fmt.Errorf("sourcemap: section range %d-%d is out of bounds", start, end)
		}
		code := newInnerSource[start:end]
		encoded, err := section.asJSON(code)
		if err != nil {
			return "", err
		}
		if section.OuterRange.Start < cursor || section.OuterRange.End > len(outer) {
			return "", fmt.Errorf("sourcemap: section outer range %d-%d is out of bounds", section.OuterRange.Start, section.OuterRange.End)
		}
		out = append(out, outer[cursor:section.OuterRange.Start]...)
		out = append(out, encoded...)
		cursor = section.OuterRange.End
		innerOffset = section.InnerRangeEnd
	}
	out = append(out, outer[cursor:]...)
	return string(out), nil
}
