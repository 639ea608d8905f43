// Package registry orchestrates expression resolution: direct code
// generation first, the manual exact-match table second, and a
// placeholder that records the miss last. It owns the compiler's symbol
// table: function identities are content-addressed, so the same
// (expression, kind) always resolves to one generated function no
// matter how many tags reference it.
package registry

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"convgen/internal/arith"
	"convgen/internal/codegen"
	"convgen/internal/missing"
	"convgen/internal/normalize"
	"convgen/internal/tree"
)

// Tier records which resolution stage produced a function.
type Tier int

const (
	TierCodegen Tier = iota
	TierManual
	TierPlaceholder
)

// String returns the tier name
func (t Tier) String() string {
	switch t {
	case TierCodegen:
		return "codegen"
	case TierManual:
		return "manual"
	case TierPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Request is one conversion to resolve. Tree is optional: expressions
// that fail the arithmetic pre-filter need one to reach the general
// pipeline.
type Request struct {
	Module  string
	Table   string
	Tag     string
	TagID   uint32
	Group   string
	Kind    tree.ConvKind
	Expr    string
	Tree    *tree.Node
}

// Usage is one (module, table, tag) site referencing a function.
type Usage struct {
	Module string
	Table  string
	Tag    string
	TagID  uint32
}

// FuncSpec is the content-addressed record for one generated function.
type FuncSpec struct {
	Name    string
	Hash    string
	Kind    tree.ConvKind
	Expr    string
	Tier    Tier
	Body    string
	Imports []string
	Usages  []Usage
}

// Stats counts resolutions per path.
type Stats struct {
	Requests    int
	Arith       int
	Tree        int
	Manual      int
	Placeholder int
}

// Resolver runs the three-tier state machine and deduplicates results.
type Resolver struct {
	manual  *ManualRegistry
	tracker *missing.Tracker

	funcs  map[string]*FuncSpec
	byExpr map[string]*FuncSpec
	order  []string
	stats  Stats
}

// NewResolver creates a resolver around the given manual table and
// missing-conversion tracker.
func NewResolver(manual *ManualRegistry, tracker *missing.Tracker) *Resolver {
	return &Resolver{
		manual:  manual,
		tracker: tracker,
		funcs:   make(map[string]*FuncSpec),
		byExpr:  make(map[string]*FuncSpec),
	}
}

// identity hashes the canonical tree when one exists, else the raw
// expression text, always mixed with the conversion kind. FNV-1a keeps
// naming stable across runs and platforms.
func identity(req Request, normalized *tree.Node) (string, error) {
	h := fnv.New64a()
	if normalized != nil {
		b, err := normalized.CanonicalJSON()
		if err != nil {
			return "", fmt.Errorf("hashing expression tree: %w", err)
		}
		h.Write(b)
	} else {
		h.Write([]byte(req.Expr))
	}
	h.Write([]byte{0})
	h.Write([]byte(req.Kind.String()))
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func funcName(kind tree.ConvKind, hash string) string {
	switch kind {
	case tree.ValueConv:
		return "convValue_" + hash
	case tree.Condition:
		return "convCondition_" + hash
	default:
		return "convPrint_" + hash
	}
}

// Resolve runs the tiers for one request. It never fails on expression
// content — only on defects like an empty expression.
func (r *Resolver) Resolve(req Request) (*FuncSpec, error) {
	if req.Expr == "" {
		return nil, fmt.Errorf("empty expression for tag %s.%s.%s", req.Module, req.Table, req.Tag)
	}
	r.stats.Requests++

	// Text-level dedup first: the same (expression, kind) names one
	// function whether or not a pre-parsed tree came along this time.
	exprKey := req.Expr + "\x00" + req.Kind.String()
	if spec, ok := r.byExpr[exprKey]; ok {
		spec.addUsage(req)
		return spec, nil
	}

	var normalized *tree.Node
	if req.Tree != nil {
		n := normalize.Normalize(*req.Tree)
		normalized = &n
	}

	hash, err := identity(req, normalized)
	if err != nil {
		return nil, err
	}
	name := funcName(req.Kind, hash)

	if spec, ok := r.funcs[name]; ok {
		spec.addUsage(req)
		r.byExpr[exprKey] = spec
		return spec, nil
	}

	spec := r.resolveNew(req, normalized, name, hash)
	spec.addUsage(req)
	r.funcs[name] = spec
	r.byExpr[exprKey] = spec
	r.order = append(r.order, name)
	return spec, nil
}

func (r *Resolver) resolveNew(req Request, normalized *tree.Node, name, hash string) *FuncSpec {
	spec := &FuncSpec{Name: name, Hash: hash, Kind: req.Kind, Expr: req.Expr}

	// Tier 1a: arithmetic fast path.
	if arith.IsCompilable(req.Expr) {
		if ce, err := arith.Compile(req.Expr); err == nil {
			spec.Tier = TierCodegen
			spec.Body = codegen.FunctionFromArith(req.Kind, name, ce)
			spec.Imports = []string{"convgen/internal/value"}
			if ce.UsesMath {
				spec.Imports = append(spec.Imports, "math")
			}
			r.stats.Arith++
			return spec
		}
	}

	// Tier 1b: general tree pipeline.
	if normalized != nil {
		if expr, err := codegen.New(req.Kind).Generate(*normalized); err == nil && expr != "" {
			spec.Tier = TierCodegen
			spec.Body = codegen.Function(req.Kind, name, expr)
			spec.Imports = []string{"convgen/internal/value"}
			r.stats.Tree++
			return spec
		}
	}

	// Tier 2: manual exact-match lookup.
	if entry, ok := r.manual.Lookup(req.Module, req.Table, req.Tag, req.Expr); ok && entry.Kind == req.Kind {
		spec.Tier = TierManual
		spec.Body = manualWrapper(req.Kind, name, entry)
		spec.Imports = []string{"convgen/internal/value", entry.Import}
		r.stats.Manual++
		return spec
	}

	// Tier 3: placeholder. Recorded here so batch reports see the miss
	// without running the generated code; the embedded hook call covers
	// runtime telemetry.
	r.tracker.Record(req.Kind, req.TagID, req.Tag, req.Group, req.Expr)
	spec.Tier = TierPlaceholder
	spec.Body = placeholder(req, name)
	spec.Imports = []string{"convgen/internal/value"}
	r.stats.Placeholder++
	return spec
}

func manualWrapper(kind tree.ConvKind, name string, entry ManualEntry) string {
	var b strings.Builder
	b.WriteString(codegen.Signature(kind, name))
	b.WriteString(" {\n")
	fmt.Fprintf(&b, "\treturn %s(val)\n", entry.Func)
	b.WriteString("}\n")
	return b.String()
}

// placeholder emits the identity (or constant-false) stand-in. The
// original expression is quoted so that unquoting the embedded literal
// recovers it byte for byte.
func placeholder(req Request, name string) string {
	quoted := strconv.Quote(req.Expr)
	var b strings.Builder
	b.WriteString(codegen.Signature(req.Kind, name))
	b.WriteString(" {\n")
	switch req.Kind {
	case tree.ValueConv:
		fmt.Fprintf(&b, "\treturn value.MissingValueConv(%#x, %q, %q, %s, val), nil\n",
			req.TagID, req.Tag, req.Group, quoted)
	case tree.Condition:
		fmt.Fprintf(&b, "\treturn value.MissingCondition(%#x, %q, %q, %s, val)\n",
			req.TagID, req.Tag, req.Group, quoted)
	default:
		fmt.Fprintf(&b, "\treturn value.MissingPrintConv(%#x, %q, %q, %s, val)\n",
			req.TagID, req.Tag, req.Group, quoted)
	}
	b.WriteString("}\n")
	return b.String()
}

func (s *FuncSpec) addUsage(req Request) {
	u := Usage{Module: req.Module, Table: req.Table, Tag: req.Tag, TagID: req.TagID}
	for _, existing := range s.Usages {
		if existing == u {
			return
		}
	}
	s.Usages = append(s.Usages, u)
	sort.Slice(s.Usages, func(i, j int) bool {
		a, b := s.Usages[i], s.Usages[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		return a.Tag < b.Tag
	})
}

// Funcs returns all resolved functions in first-resolution order.
func (r *Resolver) Funcs() []*FuncSpec {
	out := make([]*FuncSpec, len(r.order))
	for i, name := range r.order {
		out[i] = r.funcs[name]
	}
	return out
}

// Stats returns the per-tier resolution counts.
func (r *Resolver) Stats() Stats { return r.stats }
