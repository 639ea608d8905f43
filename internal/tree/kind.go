package tree

import "fmt"

// ConvKind identifies which of the three conversion roles an expression
// fills. It determines the generated function's signature and what a
// placeholder does.
type ConvKind int

const (
	// PrintConv turns a logical value into its display form. Total.
	PrintConv ConvKind = iota
	// ValueConv turns a raw value into its logical form. Fallible.
	ValueConv
	// Condition decides whether a tag definition applies. Total.
	Condition
)

// String returns the conversion kind name
func (k ConvKind) String() string {
	switch k {
	case PrintConv:
		return "PrintConv"
	case ValueConv:
		return "ValueConv"
	case Condition:
		return "Condition"
	default:
		return fmt.Sprintf("ConvKind(%d)", int(k))
	}
}

// ParseConvKind maps the table-extraction field names onto ConvKind.
func ParseConvKind(s string) (ConvKind, error) {
	switch s {
	case "PrintConv":
		return PrintConv, nil
	case "ValueConv":
		return ValueConv, nil
	case "Condition":
		return Condition, nil
	default:
		return PrintConv, fmt.Errorf("unknown conversion kind %q", s)
	}
}
