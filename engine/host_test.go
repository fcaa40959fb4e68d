package engine

import (
	"testing"

	"github.com/nuflow/nuparse/source"
	"github.com/nuflow/nuparse/syntax"
)

func TestParseAndMergeResolvesBootstrapDecl(t *testing.T) {
	s := New()
	s.RegisterDecl("echo", syntax.Signature{Name: "echo", RestPositional: &syntax.PositionalArg{Name: "rest", Shape: syntax.SyntaxShape{Kind: syntax.ShapeAny}}})

	m := source.NewMap()
	sp := m.AddFileSpan("t.nu", []byte("echo hello\n"))
	blk, err := s.ParseAndMerge(m, sp)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(blk.Pipelines) != 1 {
		t.Fatalf("got %d pipelines, want 1", len(blk.Pipelines))
	}
}

func TestMergeAccumulatesAcrossParses(t *testing.T) {
	s := New()

	m := source.NewMap()
	sp1 := m.AddFileSpan("a.nu", []byte("let x = 1\n"))
	if _, err := s.ParseAndMerge(m, sp1); err != nil {
		t.Fatalf("first parse: %v", err)
	}
	if s.NumVars() != 1 {
		t.Fatalf("got %d vars after first parse, want 1", s.NumVars())
	}

	sp2 := m.AddFileSpan("b.nu", []byte("$x\n"))
	blk2, err := s.ParseAndMerge(m, sp2)
	if err != nil {
		t.Fatalf("second parse referencing $x from the first: %v", err)
	}

	xID, ok := s.FindVar("x")
	if !ok {
		t.Fatalf("x not found in permanent state after merge")
	}
	found := false
	for _, v := range blk2.Captures {
		if v == xID {
			found = true
		}
	}
	if !found {
		t.Fatalf("got captures %v, want them to include x's var id %d", blk2.Captures, xID)
	}
}
