// Package compiler orchestrates a batch compile: it feeds extracted
// tag-table records through the resolver, collects diagnostics, and
// renders the generated source files plus the missing-conversion
// report.
package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"convgen/internal/diagnostic"
	"convgen/internal/missing"
	"convgen/internal/registry"
	"convgen/internal/tree"
	"convgen/internal/value"
)

// Record is one extracted conversion: the tag-table coordinates, the
// conversion kind, the raw expression text, and (when the extractor
// produced one) the pre-parsed expression tree.
type Record struct {
	Module string          `json:"module"`
	Table  string          `json:"table"`
	Tag    string          `json:"tag"`
	TagID  uint32          `json:"tag_id"`
	Group  string          `json:"group"`
	Kind   string          `json:"kind"`
	Expr   string          `json:"expr"`
	Tree   json.RawMessage `json:"tree,omitempty"`
}

// Result holds the output of a batch compile
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	Files       map[string]string
	Missing     []missing.Record
	Stats       registry.Stats
}

// Options configures a compile.
type Options struct {
	// Package name for the generated files. Defaults to "convs".
	Package string
	// Manual overrides the Tier 2 table; nil means the default table.
	Manual *registry.ManualRegistry
}

// Compile resolves every record and renders the output file set.
// Resolution never aborts the batch: defective records produce error
// diagnostics, untranslatable expressions produce placeholders.
func Compile(records []Record, opts Options) *Result {
	manual := opts.Manual
	if manual == nil {
		manual = registry.DefaultManualRegistry()
	}
	diag := diagnostic.New()
	if err := manual.Validate(); err != nil {
		diag.Errorf("", "", "", "%v", err)
		return &Result{Diagnostics: diag}
	}
	tracker := missing.NewTracker()
	resolver := registry.NewResolver(manual, tracker)

	for _, rec := range records {
		kind, err := tree.ParseConvKind(rec.Kind)
		if err != nil {
			diag.Errorf(rec.Module, rec.Table, rec.Tag, "%v", err)
			continue
		}

		req := registry.Request{
			Module: rec.Module,
			Table:  rec.Table,
			Tag:    rec.Tag,
			TagID:  rec.TagID,
			Group:  rec.Group,
			Kind:   kind,
			Expr:   rec.Expr,
		}
		if len(rec.Tree) > 0 {
			n, err := tree.DecodeBytes(rec.Tree)
			if err != nil {
				diag.Errorf(rec.Module, rec.Table, rec.Tag, "%v", err)
				continue
			}
			req.Tree = &n
		}

		spec, err := resolver.Resolve(req)
		if err != nil {
			diag.Errorf(rec.Module, rec.Table, rec.Tag, "%v", err)
			continue
		}
		if spec.Tier == registry.TierPlaceholder {
			diag.WarningWithHint(rec.Module, rec.Table, rec.Tag,
				fmt.Sprintf("no translation for %q, placeholder emitted", rec.Expr),
				"register a manual implementation for this expression")
		}
	}

	res := &Result{
		Diagnostics: diag,
		Missing:     tracker.List(),
		Stats:       resolver.Stats(),
	}

	files, err := resolver.GenerateFiles(opts.Package)
	if err != nil {
		diag.Errorf("", "", "", "rendering output: %v", err)
		return res
	}
	res.Files = files
	return res
}

// LoadRecords reads records from a JSON array or a stream of JSON
// objects (one per line), whichever the extractor produced.
func LoadRecords(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decoding record array: %w", err)
		}
		return records, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var records []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadRecordsFile reads one extraction file.
func LoadRecordsFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	records, err := LoadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// EmitFiles writes the generated file set under outDir.
func EmitFiles(files map[string]string, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	for name, content := range files {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// InstallRuntimeHook routes the placeholder telemetry emitted by
// generated code into the given tracker. Pass nil to detach.
func InstallRuntimeHook(tracker *missing.Tracker) {
	if tracker == nil {
		value.SetMissingHook(nil)
		return
	}
	value.SetMissingHook(func(kindName string, tagID uint32, tagName, group, expr string) {
		kind, err := tree.ParseConvKind(kindName)
		if err != nil {
			return
		}
		tracker.Record(kind, tagID, tagName, group, expr)
	})
}
