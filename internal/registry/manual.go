package registry

import (
	"fmt"
	"strings"

	"convgen/internal/tree"
)

// ManualEntry points at a hand-written implementation: the qualified
// call target and the import that supplies it.
type ManualEntry struct {
	Func   string
	Import string
	Kind   tree.ConvKind
}

// ManualRegistry is the Tier 2 exact-match table. Lookups are by the
// unnormalized expression text, optionally scoped by source module so
// identical text can mean different things in different manufacturer
// modules. There is deliberately no fuzzy or whitespace-normalized
// matching.
type ManualRegistry struct {
	universal map[string]ManualEntry
	scoped    map[string]map[string]ManualEntry
	tagged    map[string]ManualEntry // "module\x00table\x00tag" overrides
}

// NewManualRegistry creates an empty registry
func NewManualRegistry() *ManualRegistry {
	return &ManualRegistry{
		universal: make(map[string]ManualEntry),
		scoped:    make(map[string]map[string]ManualEntry),
		tagged:    make(map[string]ManualEntry),
	}
}

// normalizeModule makes "Canon_pm" and "Canon" name the same scope.
func normalizeModule(module string) string {
	return strings.TrimSuffix(module, "_pm")
}

// Add registers a universal entry.
func (r *ManualRegistry) Add(expr string, e ManualEntry) {
	r.universal[expr] = e
}

// AddScoped registers an entry visible only from one source module.
func (r *ManualRegistry) AddScoped(module, expr string, e ManualEntry) {
	module = normalizeModule(module)
	if r.scoped[module] == nil {
		r.scoped[module] = make(map[string]ManualEntry)
	}
	r.scoped[module][expr] = e
}

// AddTagged registers an override for one specific tag.
func (r *ManualRegistry) AddTagged(module, table, tag string, e ManualEntry) {
	r.tagged[normalizeModule(module)+"\x00"+table+"\x00"+tag] = e
}

// Lookup resolves an expression. Tag overrides win over module scope,
// module scope over the universal table.
func (r *ManualRegistry) Lookup(module, table, tag, expr string) (ManualEntry, bool) {
	module = normalizeModule(module)
	if e, ok := r.tagged[module+"\x00"+table+"\x00"+tag]; ok {
		return e, true
	}
	if scope, ok := r.scoped[module]; ok {
		if e, ok := scope[expr]; ok {
			return e, true
		}
	}
	e, ok := r.universal[expr]
	return e, ok
}

// Validate reports misconfigured entries. An entry without a call
// target or import would generate code that cannot compile, so it is
// rejected before any resolution happens.
func (r *ManualRegistry) Validate() error {
	check := func(where, expr string, e ManualEntry) error {
		if e.Func == "" || e.Import == "" {
			return fmt.Errorf("manual registry: entry for %s %q has an empty target", where, expr)
		}
		return nil
	}
	for expr, e := range r.universal {
		if err := check("expression", expr, e); err != nil {
			return err
		}
	}
	for module, scope := range r.scoped {
		for expr, e := range scope {
			if err := check("module "+module+" expression", expr, e); err != nil {
				return err
			}
		}
	}
	for key, e := range r.tagged {
		if err := check("tag", strings.ReplaceAll(key, "\x00", "."), e); err != nil {
			return err
		}
	}
	return nil
}

const manualImport = "convgen/internal/manual"

// DefaultManualRegistry returns the registry pre-seeded with the
// implementations in the manual package.
func DefaultManualRegistry() *ManualRegistry {
	r := NewManualRegistry()
	r.Add("Image::ExifTool::Exif::PrintExposureTime($val)",
		ManualEntry{Func: "manual.PrintExposureTime", Import: manualImport, Kind: tree.PrintConv})
	r.Add("Image::ExifTool::Exif::PrintFNumber($val)",
		ManualEntry{Func: "manual.PrintFNumber", Import: manualImport, Kind: tree.PrintConv})
	r.Add("Image::ExifTool::Exif::PrintFraction($val)",
		ManualEntry{Func: "manual.PrintFraction", Import: manualImport, Kind: tree.PrintConv})
	r.AddScoped("Canon", "CanonEv($val)",
		ManualEntry{Func: "manual.CanonEv", Import: manualImport, Kind: tree.ValueConv})
	r.AddScoped("Canon", "CanonEvInv($val)",
		ManualEntry{Func: "manual.CanonEvInverse", Import: manualImport, Kind: tree.ValueConv})
	return r
}
