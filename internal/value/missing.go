package value

import "sync"

// MissingFunc receives the first-invocation report from a placeholder
// conversion function: the conversion kind name ("PrintConv",
// "ValueConv"), the identifying tag fields, and the original source
// expression that could not be translated.
type MissingFunc func(kind string, tagID uint32, tagName, group, expr string)

var missingMu sync.RWMutex
var missingHook MissingFunc

// SetMissingHook installs the process-wide recorder that placeholder
// functions call. The compiler wires this to the invocation's
// missing-conversion tracker; passing nil disables reporting.
func SetMissingHook(fn MissingFunc) {
	missingMu.Lock()
	missingHook = fn
	missingMu.Unlock()
}

func reportMissing(kind string, tagID uint32, tagName, group, expr string) {
	missingMu.RLock()
	fn := missingHook
	missingMu.RUnlock()
	if fn != nil {
		fn(kind, tagID, tagName, group, expr)
	}
}

// MissingPrintConv is the body of a PrintConv placeholder: it records
// the untranslated expression and returns the input unchanged.
func MissingPrintConv(tagID uint32, tagName, group, expr string, val Value) Value {
	reportMissing("PrintConv", tagID, tagName, group, expr)
	return val
}

// MissingValueConv is the body of a ValueConv placeholder.
func MissingValueConv(tagID uint32, tagName, group, expr string, val Value) Value {
	reportMissing("ValueConv", tagID, tagName, group, expr)
	return val
}

// MissingCondition is the body of a Condition placeholder. An
// untranslatable condition never matches.
func MissingCondition(tagID uint32, tagName, group, expr string, _ Value) bool {
	reportMissing("Condition", tagID, tagName, group, expr)
	return false
}
