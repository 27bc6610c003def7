package unparse

import (
	"strings"

	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/match"
	"github.com/standardbeagle/gritql/internal/pattern"
)

// normalizeInsert prepends whatever separator text an inserted value
// needs in front of its own text, so that splicing it into binding's
// position reproduces the spacing/indentation a human editing the same
// list by hand would have typed. Node-shaped targets (statements) get a
// bare newline when neither side already supplies one; list targets
// infer their separator from the punctuation/whitespace already
// sitting between the list's existing named children.
func normalizeInsert(binding pattern.Binding, text string, isFirst bool, source []byte, target lang.TargetLanguage) string {
	switch b := binding.(type) {
	case *pattern.ListBinding:
		sep, ok := calculatePadding(source, b, text, isFirst, target)
		if !ok {
			return text
		}
		return sep + text
	case *pattern.NodeBinding:
		if !target.IsStatement(b.Node.Kind()) {
			return text
		}
		nodeText := b.Node.Text(source)
		if strings.HasSuffix(nodeText, "\n") || strings.HasPrefix(text, "\n") {
			return text
		}
		return "\n" + text
	default:
		return text
	}
}

// calculatePadding infers a single consistent separator from the
// source text between lb's existing named siblings, then trims it so
// it doesn't duplicate whitespace already adjacent to the insertion
// point. It reports ok=false when the list has fewer than two siblings
// to infer a separator from, or when siblings disagree on one.
func calculatePadding(source []byte, lb *pattern.ListBinding, insertText string, isFirst bool, target lang.TargetLanguage) (string, bool) {
	children := match.FieldChildren(lb.Parent, lb.FieldID)
	if len(children) < 2 {
		return "", false
	}

	var separator string
	for i := 1; i < len(children); i++ {
		between := string(source[children[i-1].EndByte():children[i].StartByte()])
		if separator == "" {
			separator = between
			continue
		}
		if separator == between {
			continue
		}
		if strings.Contains(separator, between) {
			separator = between
			continue
		}
		if strings.Contains(between, separator) {
			continue
		}
		return "", false
	}
	if separator == "" {
		return "", false
	}

	if target.SemanticWhitespace() && strings.HasSuffix(separator, "\n") {
		separator = strings.TrimSuffix(separator, "\n")
	}

	var trailing string
	if isFirst {
		first := children[0]
		trailing = string(source[lb.Parent.StartByte():first.StartByte()])
	} else {
		last := children[len(children)-1]
		trailing = string(source[last.EndByte():lb.Parent.EndByte()])
	}
	separator = adjustSeparatorStart(separator, trailing)
	separator = adjustSeparatorEnd(separator, insertText)
	return separator, true
}

// adjustSeparatorStart finds the longest suffix of trailing that is
// also a prefix of separator, and strips that overlap from separator's
// front, so a separator that would repeat text already present right
// before the insertion point isn't duplicated.
func adjustSeparatorStart(separator, trailing string) string {
	max := len(separator)
	if len(trailing) < max {
		max = len(trailing)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(trailing, separator[:n]) {
			return separator[n:]
		}
	}
	return separator
}

// adjustSeparatorEnd finds the longest prefix of insert that is also a
// suffix of separator, and strips that overlap from separator's end, so
// a separator that would repeat text the inserted value itself starts
// with isn't duplicated.
func adjustSeparatorEnd(separator, insert string) string {
	max := len(separator)
	if len(insert) < max {
		max = len(insert)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(insert, separator[len(separator)-n:]) {
			return separator[:len(separator)-n]
		}
	}
	return separator
}
