package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single compile error, warning, or info
// message, positioned by the tag-table context it came from.
type Diagnostic struct {
	Severity Severity
	Message  string
	Module   string
	Table    string
	Tag      string
	Hint     string // optional suggestion
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(module, table, tag, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Module:   module,
		Table:    table,
		Tag:      tag,
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(module, table, tag, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Module:   module,
		Table:    table,
		Tag:      tag,
	})
}

// Infof adds an info diagnostic with formatted message
func (d *Diagnostics) Infof(module, table, tag, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Info,
		Message:  fmt.Sprintf(format, args...),
		Module:   module,
		Table:    table,
		Tag:      tag,
	})
}

// WarningWithHint adds a warning diagnostic with an optional hint
func (d *Diagnostics) WarningWithHint(module, table, tag, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  msg,
		Module:   module,
		Table:    table,
		Tag:      tag,
		Hint:     hint,
	})
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Warning {
			count++
		}
	}
	return count
}

// Format returns human-readable messages.
// Output format:
//
//	warning[Canon.Main.LensType]: expression fell back to placeholder
//	  hint: register a manual implementation
func (d *Diagnostics) Format() string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		builder.WriteString(fmt.Sprintf("%s[%s.%s.%s]: %s",
			item.Severity.String(),
			item.Module,
			item.Table,
			item.Tag,
			item.Message,
		))

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n  hint: %s", item.Hint))
		}

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = make([]Diagnostic, 0)
}
