package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nuflow/nuparse/source"
)

// TestParseLetTreeShape asserts the tree shape `let x = 5` parses to:
// one pipeline with one KeywordExpr wrapping a BinaryExpr, whose
// right-hand literal is diffed against the wanted IntExpr.
func TestParseLetTreeShape(t *testing.T) {
	m := source.NewMap()
	ws := NewWorkingSet(nil, m)
	p := NewParser(ws)
	sp := m.AddFileSpan("t.nu", []byte("let x = 5\n"))
	blk := p.ParseSource(sp)

	if len(blk.Pipelines) != 1 || len(blk.Pipelines[0].Elements) != 1 {
		t.Fatalf("got %#v, want exactly one pipeline with one element", blk.Pipelines)
	}
	kw, ok := blk.Pipelines[0].Elements[0].Expr.Expr.(KeywordExpr)
	if !ok {
		t.Fatalf("got %#v, want KeywordExpr", blk.Pipelines[0].Elements[0].Expr.Expr)
	}
	bin, ok := kw.Inner.Expr.(BinaryExpr)
	if !ok {
		t.Fatalf("got %#v, want BinaryExpr", kw.Inner.Expr)
	}
	want := IntExpr{Value: 5}
	if diff := cmp.Diff(want, bin.Rhs.Expr); diff != "" {
		t.Fatalf("rhs literal mismatch (-want +got):\n%s", diff)
	}
}
