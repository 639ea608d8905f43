package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"convgen/internal/missing"
	"convgen/internal/registry"
	"convgen/internal/tree"
	"convgen/internal/value"
)

func sampleRecords() []Record {
	return []Record{
		{Module: "Canon", Table: "Main", Tag: "FocalLength", TagID: 2,
			Group: "Canon", Kind: "PrintConv", Expr: "$val / 32"},
		{Module: "Canon", Table: "Main", Tag: "ExposureTime", TagID: 3,
			Group: "Canon", Kind: "PrintConv",
			Expr: "Image::ExifTool::Exif::PrintExposureTime($val)"},
		{Module: "Canon", Table: "Main", Tag: "LensType", TagID: 4,
			Group: "Canon", Kind: "PrintConv", Expr: "DecodeLens($val)"},
	}
}

func TestCompileBatch(t *testing.T) {
	res := Compile(sampleRecords(), Options{})
	if res.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", res.Diagnostics.Format())
	}
	if res.Stats.Arith != 1 || res.Stats.Manual != 1 || res.Stats.Placeholder != 1 {
		t.Errorf("stats: %+v", res.Stats)
	}
	if len(res.Missing) != 1 || res.Missing[0].Expr != "DecodeLens($val)" {
		t.Errorf("missing: %+v", res.Missing)
	}
	if res.Diagnostics.WarningCount() != 1 {
		t.Errorf("placeholder should warn: %s", res.Diagnostics.Format())
	}
	if _, ok := res.Files["manifest.json"]; !ok {
		t.Error("manifest missing from output set")
	}
}

func TestCompileBadKindIsDiagnostic(t *testing.T) {
	res := Compile([]Record{
		{Module: "Canon", Table: "Main", Tag: "X", Kind: "RawConv", Expr: "$val"},
	}, Options{})
	if !res.Diagnostics.HasErrors() {
		t.Error("unknown kind should produce an error diagnostic")
	}
}

func TestCompileRejectsMisconfiguredManual(t *testing.T) {
	m := registry.NewManualRegistry()
	m.Add("Broken($val)", registry.ManualEntry{Kind: tree.PrintConv})
	res := Compile(sampleRecords(), Options{Manual: m})
	if !res.Diagnostics.HasErrors() {
		t.Error("empty manual target should fail the batch")
	}
	if len(res.Files) != 0 {
		t.Error("no files should be produced for a misconfigured registry")
	}
}

func TestCompileWithTree(t *testing.T) {
	res := Compile([]Record{
		{Module: "Canon", Table: "Main", Tag: "SelfTimer", TagID: 5,
			Group: "Canon", Kind: "PrintConv",
			Expr: `$val ? 1/$val : 0`,
			Tree: []byte(`{"kind":"statement","children":[
				{"kind":"symbol","content":"$val","symbol":"val"},
				{"kind":"operator","content":"?"},
				{"kind":"number","content":"1","number":1},
				{"kind":"operator","content":"/"},
				{"kind":"symbol","content":"$val","symbol":"val"},
				{"kind":"operator","content":":"},
				{"kind":"number","content":"0","number":0}]}`)},
	}, Options{})
	if res.Diagnostics.HasErrors() {
		t.Fatalf("errors:\n%s", res.Diagnostics.Format())
	}
	if res.Stats.Tree != 1 {
		t.Fatalf("should resolve through the tree pipeline: %+v", res.Stats)
	}
	found := false
	for name, content := range res.Files {
		if name != "manifest.json" && strings.Contains(content, "value.SafeReciprocal(val)") {
			found = true
		}
	}
	if !found {
		t.Error("safe-reciprocal body not found in output")
	}
}

func TestLoadRecordsArrayAndStream(t *testing.T) {
	array := `[{"module":"Canon","table":"Main","tag":"A","kind":"PrintConv","expr":"$val"}]`
	recs, err := LoadRecords(strings.NewReader(array))
	if err != nil || len(recs) != 1 {
		t.Fatalf("array form: %v, %d records", err, len(recs))
	}

	stream := `{"module":"Canon","table":"Main","tag":"A","kind":"PrintConv","expr":"$val"}
{"module":"Canon","table":"Main","tag":"B","kind":"ValueConv","expr":"$val/8"}`
	recs, err = LoadRecords(strings.NewReader(stream))
	if err != nil || len(recs) != 2 {
		t.Fatalf("stream form: %v, %d records", err, len(recs))
	}
	if recs[1].Tag != "B" {
		t.Errorf("order: %+v", recs)
	}
}

func TestLoadDirAndEmit(t *testing.T) {
	dir := t.TempDir()
	content := `[{"module":"Canon","table":"Main","tag":"A","kind":"PrintConv","expr":"$val / 8"}]`
	if err := os.WriteFile(filepath.Join(dir, "canon.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	// Generated manifests are not inputs.
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	recs, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("want 1 record, got %d", len(recs))
	}

	res := Compile(recs, Options{})
	out := filepath.Join(dir, "gen")
	if err := EmitFiles(res.Files, out); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(res.Files) {
		t.Errorf("wrote %d files, want %d", len(entries), len(res.Files))
	}
}

func TestInstallRuntimeHook(t *testing.T) {
	tr := missing.NewTracker()
	InstallRuntimeHook(tr)
	defer InstallRuntimeHook(nil)

	// Simulate a generated placeholder firing at runtime.
	value.MissingPrintConv(0x10, "LensType", "Canon", "Decode($val)", value.I32(1))
	value.MissingPrintConv(0x10, "LensType", "Canon", "Decode($val)", value.I32(2))

	if tr.Len() != 1 {
		t.Fatalf("want one deduplicated record, got %d", tr.Len())
	}
	r := tr.List()[0]
	if r.Kind != tree.PrintConv || r.TagName != "LensType" {
		t.Errorf("record: %+v", r)
	}
}

func TestRenderMissingReport(t *testing.T) {
	tr := missing.NewTracker()
	tr.Record(tree.PrintConv, 0x1234, "lens_type-2", "Canon", "Decode($val)")
	got := RenderMissingReport(tr.List())

	if !strings.Contains(got, "1 missing conversion(s)") {
		t.Errorf("header: %q", got)
	}
	if !strings.Contains(got, "0x1234") || !strings.Contains(got, "Decode($val)") {
		t.Errorf("record body: %q", got)
	}
	if !strings.Contains(got, "stub: PrintLensType2") {
		t.Errorf("stub suggestion: %q", got)
	}

	if RenderMissingReport(nil) != "no missing conversions\n" {
		t.Error("empty report")
	}
}

func TestStubName(t *testing.T) {
	tests := []struct {
		kind tree.ConvKind
		tag  string
		want string
	}{
		{tree.PrintConv, "LensType", "PrintLensType"},
		{tree.ValueConv, "focal length", "ConvertFocalLength"},
		{tree.Condition, "EOS-1D", "IsEOS1D"},
		{tree.PrintConv, "", "PrintUnknown"},
	}
	for _, tt := range tests {
		if got := StubName(tt.kind, tt.tag); got != tt.want {
			t.Errorf("StubName(%s, %q) = %q, want %q", tt.kind, tt.tag, got, tt.want)
		}
	}
}
