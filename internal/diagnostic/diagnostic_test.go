package diagnostic

import (
	"strings"
	"testing"
)

func TestCountsAndFilters(t *testing.T) {
	d := New()
	d.Errorf("Canon", "Main", "LensType", "bad tree: %s", "truncated")
	d.Warningf("Canon", "Main", "FocalLength", "placeholder emitted")
	d.Infof("Nikon", "Main", "ISO", "manual registry hit")

	if d.Count() != 3 || d.ErrorCount() != 1 || d.WarningCount() != 1 {
		t.Errorf("counts: total %d errors %d warnings %d", d.Count(), d.ErrorCount(), d.WarningCount())
	}
	if !d.HasErrors() {
		t.Error("HasErrors should be true")
	}
	if len(d.Errors()) != 1 || d.Errors()[0].Tag != "LensType" {
		t.Errorf("Errors() = %+v", d.Errors())
	}
}

func TestFormat(t *testing.T) {
	d := New()
	d.WarningWithHint("Canon", "Main", "LensType",
		"expression fell back to placeholder",
		"register a manual implementation")

	got := d.Format()
	if !strings.Contains(got, "warning[Canon.Main.LensType]: expression fell back to placeholder") {
		t.Errorf("format: %q", got)
	}
	if !strings.Contains(got, "hint: register a manual implementation") {
		t.Errorf("hint missing: %q", got)
	}
}

func TestClear(t *testing.T) {
	d := New()
	d.Errorf("m", "t", "x", "boom")
	d.Clear()
	if d.Count() != 0 || d.HasErrors() {
		t.Error("clear should drop everything")
	}
	if d.Format() != "" {
		t.Error("empty collection formats to empty string")
	}
}
