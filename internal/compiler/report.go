package compiler

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"convgen/internal/missing"
	"convgen/internal/tree"
)

var titleCaser = cases.Title(language.English)

// StubName suggests a Go identifier for a hand-written implementation
// of a missing conversion, derived from its kind and first-seen tag.
func StubName(kind tree.ConvKind, tagName string) string {
	var prefix string
	switch kind {
	case tree.ValueConv:
		prefix = "Convert"
	case tree.Condition:
		prefix = "Is"
	default:
		prefix = "Print"
	}

	var b strings.Builder
	b.WriteString(prefix)
	for _, part := range splitIdent(tagName) {
		// Keep existing CamelCase parts; only title fully-lowercase ones.
		if part == strings.ToLower(part) {
			part = titleCaser.String(part)
		}
		b.WriteString(part)
	}
	if b.Len() == len(prefix) {
		b.WriteString("Unknown")
	}
	return b.String()
}

// splitIdent breaks a tag name on non-alphanumeric boundaries.
func splitIdent(s string) []string {
	var parts []string
	var current strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// RenderMissingReport formats the tracker's records for the CLI. Order
// is the tracker's insertion order, which is deterministic per input.
func RenderMissingReport(records []missing.Record) string {
	if len(records) == 0 {
		return "no missing conversions\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d missing conversion(s)\n\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "%-9s 0x%04x %s (%s)\n", r.Kind, r.TagID, r.TagName, r.Group)
		fmt.Fprintf(&b, "  expr: %s\n", strings.ReplaceAll(r.Expr, "\n", "\\n"))
		fmt.Fprintf(&b, "  stub: %s\n", StubName(r.Kind, r.TagName))
	}
	return b.String()
}
