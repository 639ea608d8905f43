package registry

import (
	"encoding/json"
	"strings"
	"testing"

	"convgen/internal/tree"
)

func TestGenerateFiles(t *testing.T) {
	r, _ := newResolver()
	exprs := []string{
		"$val / 8",
		"$val * 100",
		"Image::ExifTool::Exif::PrintFNumber($val)",
		"DecodeLensInfo($val)",
	}
	for _, e := range exprs {
		if _, err := r.Resolve(req(tree.PrintConv, e)); err != nil {
			t.Fatal(err)
		}
	}

	files, err := r.GenerateFiles("convs")
	if err != nil {
		t.Fatal(err)
	}

	manifest, ok := files["manifest.json"]
	if !ok {
		t.Fatal("manifest.json missing")
	}
	var entries []ManifestEntry
	if err := json.Unmarshal([]byte(manifest), &entries); err != nil {
		t.Fatalf("manifest does not parse: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("want 4 manifest entries, got %d", len(entries))
	}

	sourceFiles := 0
	for name, content := range files {
		if name == "manifest.json" {
			continue
		}
		sourceFiles++
		if !strings.HasPrefix(name, "conv_") || !strings.HasSuffix(name, ".go") {
			t.Errorf("unexpected file name %q", name)
		}
		if !strings.HasPrefix(content, "// Code generated by convgen. DO NOT EDIT.") {
			t.Errorf("%s missing generated header", name)
		}
		if !strings.Contains(content, "package convs") {
			t.Errorf("%s missing package clause", name)
		}
		if !strings.Contains(content, `"convgen/internal/value"`) {
			t.Errorf("%s missing value import", name)
		}
	}
	if sourceFiles == 0 {
		t.Fatal("no source files generated")
	}

	// Every manifest entry's file must exist and contain the function.
	for _, e := range entries {
		content, ok := files[e.File]
		if !ok {
			t.Errorf("manifest references missing file %s", e.File)
			continue
		}
		if !strings.Contains(content, "func "+e.Name+"(") {
			t.Errorf("%s not found in %s", e.Name, e.File)
		}
		if !strings.HasPrefix(e.File, "conv_"+e.Name[strings.LastIndex(e.Name, "_")+1:][:2]) {
			t.Errorf("%s sharded into %s, want prefix of its hash", e.Name, e.File)
		}
	}
}

func TestGenerateFilesDeterministic(t *testing.T) {
	build := func() map[string]string {
		r, _ := newResolver()
		for _, e := range []string{"$val / 8", "$val + 1", "Unknown($val)"} {
			if _, err := r.Resolve(req(tree.ValueConv, e)); err != nil {
				t.Fatal(err)
			}
		}
		files, err := r.GenerateFiles("convs")
		if err != nil {
			t.Fatal(err)
		}
		return files
	}
	a, b := build(), build()
	if len(a) != len(b) {
		t.Fatalf("file sets differ: %d vs %d", len(a), len(b))
	}
	for name, content := range a {
		if b[name] != content {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestManualImportEmitted(t *testing.T) {
	r, _ := newResolver()
	if _, err := r.Resolve(req(tree.PrintConv, "Image::ExifTool::Exif::PrintFraction($val)")); err != nil {
		t.Fatal(err)
	}
	files, err := r.GenerateFiles("convs")
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if name == "manifest.json" {
			continue
		}
		if !strings.Contains(content, `"convgen/internal/manual"`) {
			t.Errorf("%s should import the manual package:\n%s", name, content)
		}
	}
}
