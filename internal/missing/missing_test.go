package missing

import (
	"fmt"
	"sync"
	"testing"

	"convgen/internal/tree"
)

func TestRecordIdempotent(t *testing.T) {
	tr := NewTracker()
	tr.Record(tree.PrintConv, 1, "LensType", "Canon", "Decode($val)")
	tr.Record(tree.PrintConv, 2, "OtherTag", "Canon", "Decode($val)")

	got := tr.List()
	if len(got) != 1 {
		t.Fatalf("want 1 record, got %d", len(got))
	}
	// First occurrence wins.
	if got[0].TagID != 1 || got[0].TagName != "LensType" {
		t.Errorf("first-seen tag should be kept: %+v", got[0])
	}
}

func TestKindDistinguishes(t *testing.T) {
	tr := NewTracker()
	tr.Record(tree.PrintConv, 1, "A", "g", "$val x")
	tr.Record(tree.ValueConv, 1, "A", "g", "$val x")
	if tr.Len() != 2 {
		t.Errorf("same expression under different kinds is two records, got %d", tr.Len())
	}
}

func TestInsertionOrder(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 5; i++ {
		tr.Record(tree.Condition, uint32(i), "T", "g", fmt.Sprintf("expr-%d", i))
	}
	got := tr.List()
	for i, r := range got {
		if r.Expr != fmt.Sprintf("expr-%d", i) {
			t.Fatalf("order broken at %d: %q", i, r.Expr)
		}
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()
	tr.Record(tree.PrintConv, 1, "A", "g", "x")
	tr.Reset()
	if tr.Len() != 0 {
		t.Error("reset should clear records")
	}
	tr.Record(tree.PrintConv, 1, "A", "g", "x")
	if tr.Len() != 1 {
		t.Error("reset should also clear the seen set")
	}
}

func TestConcurrentRecord(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Record(tree.PrintConv, uint32(n), "T", "g", fmt.Sprintf("expr-%d", j))
			}
		}(i)
	}
	wg.Wait()
	if tr.Len() != 100 {
		t.Errorf("want 100 unique records, got %d", tr.Len())
	}
}

func TestListIsCopy(t *testing.T) {
	tr := NewTracker()
	tr.Record(tree.PrintConv, 1, "A", "g", "x")
	got := tr.List()
	got[0].Expr = "mutated"
	if tr.List()[0].Expr != "x" {
		t.Error("List must return a copy")
	}
}
