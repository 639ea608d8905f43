package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// fileHeader goes at the top of every generated source file.
const fileHeader = "// Code generated by convgen. DO NOT EDIT.\n"

// ManifestEntry describes one generated function for the build
// manifest.
type ManifestEntry struct {
	Name   string  `json:"name"`
	File   string  `json:"file"`
	Kind   string  `json:"kind"`
	Tier   string  `json:"tier"`
	Expr   string  `json:"expr"`
	Usages []Usage `json:"usages"`
}

// GenerateFiles renders every resolved function into output files,
// sharded by the first two hash characters so no single file grows
// unbounded. The result maps file name to content and includes a
// manifest.json describing the whole set.
func (r *Resolver) GenerateFiles(pkg string) (map[string]string, error) {
	if pkg == "" {
		pkg = "convs"
	}

	shards := make(map[string][]*FuncSpec)
	for _, name := range r.order {
		spec := r.funcs[name]
		prefix := spec.Hash[:2]
		shards[prefix] = append(shards[prefix], spec)
	}

	out := make(map[string]string, len(shards)+1)
	var manifest []ManifestEntry

	prefixes := maps.Keys(shards)
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		specs := shards[prefix]
		sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

		fileName := fmt.Sprintf("conv_%s.go", prefix)
		out[fileName] = renderFile(pkg, specs)

		for _, spec := range specs {
			manifest = append(manifest, ManifestEntry{
				Name:   spec.Name,
				File:   fileName,
				Kind:   spec.Kind.String(),
				Tier:   spec.Tier.String(),
				Expr:   spec.Expr,
				Usages: spec.Usages,
			})
		}
	}

	sort.Slice(manifest, func(i, j int) bool { return manifest[i].Name < manifest[j].Name })
	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	out["manifest.json"] = string(b) + "\n"

	return out, nil
}

func renderFile(pkg string, specs []*FuncSpec) string {
	imports := make(map[string]bool)
	for _, spec := range specs {
		for _, imp := range spec.Imports {
			imports[imp] = true
		}
	}

	var b strings.Builder
	b.WriteString(fileHeader)
	fmt.Fprintf(&b, "\npackage %s\n\n", pkg)

	if len(imports) > 0 {
		paths := maps.Keys(imports)
		sort.Strings(paths)
		b.WriteString("import (\n")
		for _, p := range paths {
			fmt.Fprintf(&b, "\t%q\n", p)
		}
		b.WriteString(")\n\n")
	}

	for i, spec := range specs {
		fmt.Fprintf(&b, "// %s resolves %q (%s, %s tier).\n",
			spec.Name, summarize(spec.Expr), spec.Kind, spec.Tier)
		b.WriteString(spec.Body)
		if i < len(specs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// summarize keeps doc comments on one line for long expressions.
func summarize(expr string) string {
	expr = strings.ReplaceAll(expr, "\n", " ")
	if len(expr) > 60 {
		return expr[:57] + "..."
	}
	return expr
}
