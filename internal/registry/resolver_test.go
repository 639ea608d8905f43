package registry

import (
	"strconv"
	"strings"
	"testing"

	"convgen/internal/missing"
	"convgen/internal/tree"
)

func newResolver() (*Resolver, *missing.Tracker) {
	tr := missing.NewTracker()
	return NewResolver(DefaultManualRegistry(), tr), tr
}

func req(kind tree.ConvKind, expr string) Request {
	return Request{
		Module: "Canon", Table: "Main", Tag: "TestTag",
		TagID: 0x01, Group: "Canon", Kind: kind, Expr: expr,
	}
}

func TestArithFastPath(t *testing.T) {
	r, _ := newResolver()
	spec, err := r.Resolve(req(tree.PrintConv, "$val / 8"))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Tier != TierCodegen {
		t.Errorf("tier = %s, want codegen", spec.Tier)
	}
	if !strings.Contains(spec.Body, "value.F64((v / 8))") {
		t.Errorf("body:\n%s", spec.Body)
	}
	if r.Stats().Arith != 1 {
		t.Errorf("stats: %+v", r.Stats())
	}
}

func TestPreFilterRoutesToTreePipeline(t *testing.T) {
	// 2**($val/384-1) contains ** so the arithmetic subset must refuse
	// it; with a tree attached it reaches the general pipeline.
	expr := "2**($val/384-1)"
	root := tree.Node{Kind: tree.Statement, Children: []tree.Node{
		{Kind: tree.Number, Content: "2"},
		{Kind: tree.Operator, Content: "**"},
		{Kind: tree.Structure, Bounds: "(", Children: []tree.Node{
			{Kind: tree.Group, Children: []tree.Node{
				tree.NewVariable(),
				{Kind: tree.Operator, Content: "/"},
				{Kind: tree.Number, Content: "384"},
			}},
			{Kind: tree.Operator, Content: "-"},
			{Kind: tree.Number, Content: "1"},
		}},
	}}

	r, _ := newResolver()
	request := req(tree.ValueConv, expr)
	request.Tree = &root
	spec, err := r.Resolve(request)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Tier != TierCodegen {
		t.Fatalf("tier = %s, want codegen via tree pipeline", spec.Tier)
	}
	if r.Stats().Arith != 0 || r.Stats().Tree != 1 {
		t.Errorf("must not take the arithmetic path: %+v", r.Stats())
	}
	if !strings.Contains(spec.Body, "value.Pow2(") {
		t.Errorf("body:\n%s", spec.Body)
	}
}

func TestIdempotentIdentity(t *testing.T) {
	r, _ := newResolver()
	a, err := r.Resolve(req(tree.PrintConv, "$val / 8"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Resolve(req(tree.PrintConv, "$val / 8"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != b.Name {
		t.Errorf("same (expr, kind) must share identity: %s vs %s", a.Name, b.Name)
	}
	if len(r.Funcs()) != 1 {
		t.Errorf("want one function, got %d", len(r.Funcs()))
	}
}

func TestKindSplitsIdentity(t *testing.T) {
	r, _ := newResolver()
	a, _ := r.Resolve(req(tree.PrintConv, "$val / 8"))
	b, _ := r.Resolve(req(tree.ValueConv, "$val / 8"))
	if a.Name == b.Name {
		t.Error("different kinds must not share identity")
	}
	if !strings.HasPrefix(a.Name, "convPrint_") || !strings.HasPrefix(b.Name, "convValue_") {
		t.Errorf("name prefixes: %s, %s", a.Name, b.Name)
	}
}

func TestDedupAcrossTags(t *testing.T) {
	r, tr := newResolver()
	expr := "DecodeLensInfo($val)" // untranslatable, lands in tier 3
	for i, tag := range []string{"LensA", "LensB", "LensC"} {
		rq := req(tree.PrintConv, expr)
		rq.Tag = tag
		rq.TagID = uint32(i + 1)
		if _, err := r.Resolve(rq); err != nil {
			t.Fatal(err)
		}
	}
	if len(r.Funcs()) != 1 {
		t.Errorf("want one placeholder function, got %d", len(r.Funcs()))
	}
	if tr.Len() != 1 {
		t.Errorf("want one missing record, got %d", tr.Len())
	}
	spec := r.Funcs()[0]
	if len(spec.Usages) != 3 {
		t.Errorf("want 3 usage sites, got %+v", spec.Usages)
	}
	// First occurrence wins in the tracker.
	if tr.List()[0].TagName != "LensA" {
		t.Errorf("first-seen tag: %+v", tr.List()[0])
	}
}

func TestManualTier(t *testing.T) {
	r, _ := newResolver()
	spec, err := r.Resolve(req(tree.PrintConv, "Image::ExifTool::Exif::PrintExposureTime($val)"))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Tier != TierManual {
		t.Fatalf("tier = %s, want manual", spec.Tier)
	}
	if !strings.Contains(spec.Body, "manual.PrintExposureTime(val)") {
		t.Errorf("body:\n%s", spec.Body)
	}
}

func TestManualModuleSuffixEquivalence(t *testing.T) {
	r, _ := newResolver()
	rq := req(tree.ValueConv, "CanonEv($val)")
	rq.Module = "Canon_pm"
	spec, err := r.Resolve(rq)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Tier != TierManual {
		t.Errorf("Canon_pm must match the Canon scope, got tier %s", spec.Tier)
	}

	// The same text from another module must not match the scoped entry.
	r2, _ := newResolver()
	rq = req(tree.ValueConv, "CanonEv($val)")
	rq.Module = "Nikon"
	spec, err = r2.Resolve(rq)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Tier != TierPlaceholder {
		t.Errorf("scoped entry leaked across modules: tier %s", spec.Tier)
	}
}

func TestManualKindMismatchFallsThrough(t *testing.T) {
	r, _ := newResolver()
	// Registered as PrintConv; requesting Condition must not match.
	spec, err := r.Resolve(req(tree.Condition, "Image::ExifTool::Exif::PrintFNumber($val)"))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Tier != TierPlaceholder {
		t.Errorf("kind mismatch should fall through, got tier %s", spec.Tier)
	}
}

func TestPlaceholderEscapingRoundTrip(t *testing.T) {
	exprs := []string{
		`$val =~ s/"//g; $val`,
		"line one\nline two",
		`back\slash and "quotes" mixed`,
		"tab\there\and\x00nul",
	}
	for _, expr := range exprs {
		r, _ := newResolver()
		spec, err := r.Resolve(req(tree.PrintConv, expr))
		if err != nil {
			t.Fatal(err)
		}
		if spec.Tier != TierPlaceholder {
			t.Fatalf("expected placeholder for %q", expr)
		}
		start := strings.Index(spec.Body, `"`)
		// The expression literal is the last argument before ", val)".
		end := strings.LastIndex(spec.Body, ", val)")
		if start < 0 || end < 0 || end <= start {
			t.Fatalf("cannot locate embedded literal in:\n%s", spec.Body)
		}
		lit := spec.Body[strings.LastIndex(spec.Body[:end], `, "`)+2 : end]
		recovered, err := strconv.Unquote(strings.TrimSpace(lit))
		if err != nil {
			t.Fatalf("unquoting %q: %v", lit, err)
		}
		if recovered != expr {
			t.Errorf("round trip lost bytes:\n got %q\nwant %q", recovered, expr)
		}
	}
}

func TestConditionPlaceholderIsFalse(t *testing.T) {
	r, _ := newResolver()
	spec, err := r.Resolve(req(tree.Condition, `$$self{Model} =~ /EOS/`))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Tier != TierPlaceholder {
		t.Fatalf("tier = %s", spec.Tier)
	}
	if !strings.Contains(spec.Body, "value.MissingCondition(") {
		t.Errorf("body:\n%s", spec.Body)
	}
}

func TestEmptyExpressionIsDefect(t *testing.T) {
	r, _ := newResolver()
	if _, err := r.Resolve(req(tree.PrintConv, "")); err == nil {
		t.Error("empty expression should error")
	}
}

func TestBareWordFallsToPlaceholder(t *testing.T) {
	// A statement holding a single bare word must never surface its raw
	// text as a Go expression.
	root := tree.Node{Kind: tree.Statement, Children: []tree.Node{
		{Kind: tree.Word, Content: "undef"},
	}}
	r, _ := newResolver()
	request := req(tree.ValueConv, "undef")
	request.Tree = &root
	spec, err := r.Resolve(request)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Tier != TierPlaceholder {
		t.Fatalf("tier = %s, want placeholder", spec.Tier)
	}
	if strings.Contains(spec.Body, "return undef") {
		t.Errorf("raw token leaked into body:\n%s", spec.Body)
	}
	if !strings.Contains(spec.Body, "value.MissingValueConv(") {
		t.Errorf("body:\n%s", spec.Body)
	}
}

func TestSameExprWithAndWithoutTree(t *testing.T) {
	expr := "$val ? 1/$val : 0"
	root := tree.Node{Kind: tree.Statement, Children: []tree.Node{
		tree.NewVariable(),
		{Kind: tree.Operator, Content: "?"},
		{Kind: tree.Number, Content: "1"},
		{Kind: tree.Operator, Content: "/"},
		tree.NewVariable(),
		{Kind: tree.Operator, Content: ":"},
		{Kind: tree.Number, Content: "0"},
	}}

	r, _ := newResolver()
	withTree := req(tree.PrintConv, expr)
	withTree.Tree = &root
	first, err := r.Resolve(withTree)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve(req(tree.PrintConv, expr))
	if err != nil {
		t.Fatal(err)
	}
	if first.Name != second.Name {
		t.Errorf("same (expr, kind) split: %s vs %s", first.Name, second.Name)
	}
	if len(r.Funcs()) != 1 {
		t.Errorf("want one function, got %d", len(r.Funcs()))
	}
}

func TestManualRegistryValidate(t *testing.T) {
	if err := DefaultManualRegistry().Validate(); err != nil {
		t.Errorf("default registry should validate: %v", err)
	}

	m := NewManualRegistry()
	m.Add("Broken($val)", ManualEntry{Kind: tree.PrintConv})
	if err := m.Validate(); err == nil {
		t.Error("empty call target should be rejected")
	}

	m = NewManualRegistry()
	m.AddScoped("Canon", "Broken($val)", ManualEntry{Func: "manual.X", Kind: tree.PrintConv})
	if err := m.Validate(); err == nil {
		t.Error("empty import should be rejected")
	}
}
