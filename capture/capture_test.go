package capture

import (
	"testing"

	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/source"
	"github.com/nuflow/nuparse/syntax"
)

type fakeLookup struct {
	blocks  map[ids.BlockId]*syntax.Block
	mutable map[ids.VarId]bool
}

func (f fakeLookup) GetBlock(id ids.BlockId) *syntax.Block { return f.blocks[id] }
func (f fakeLookup) VarMutable(id ids.VarId) bool          { return f.mutable[id] }

func varExpr(id ids.VarId) *syntax.Expression {
	return &syntax.Expression{Expr: syntax.VarExpr{Var: id}, ExprSpan: source.Span{}}
}

func TestAnalyseFindsUnboundVariable(t *testing.T) {
	outer := ids.VarId(10)
	blk := &syntax.Block{
		Pipelines: []syntax.Pipeline{{
			Elements: []syntax.PipelineElement{{Expr: varExpr(outer)}},
		}},
	}
	a := New(fakeLookup{}, 16)
	got, errs := a.Analyse(blk)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(got) != 1 || got[0] != outer {
		t.Fatalf("got %v, want [%v]", got, outer)
	}
}

func TestAnalyseExcludesSignatureParam(t *testing.T) {
	param := ids.VarId(11)
	blk := &syntax.Block{
		Signature: syntax.Signature{
			RequiredPositional: []syntax.PositionalArg{{Name: "x", VarId: param, HasVarId: true}},
		},
		Pipelines: []syntax.Pipeline{{
			Elements: []syntax.PipelineElement{{Expr: varExpr(param)}},
		}},
	}
	a := New(fakeLookup{}, 16)
	got, errs := a.Analyse(blk)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want no captures", got)
	}
}

func TestAnalyseBubblesNestedClosureCaptures(t *testing.T) {
	outer := ids.VarId(12)
	nestedID := ids.BlockId(1)
	nested := &syntax.Block{
		Pipelines: []syntax.Pipeline{{
			Elements: []syntax.PipelineElement{{Expr: varExpr(outer)}},
		}},
	}
	lookup := fakeLookup{blocks: map[ids.BlockId]*syntax.Block{nestedID: nested}}
	outerBlk := &syntax.Block{
		Pipelines: []syntax.Pipeline{{
			Elements: []syntax.PipelineElement{{
				Expr: &syntax.Expression{Expr: syntax.ClosureExpr{Block: nestedID}},
			}},
		}},
	}
	a := New(lookup, 16)
	got, errs := a.Analyse(outerBlk)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(got) != 1 || got[0] != outer {
		t.Fatalf("got %v, want [%v]", got, outer)
	}
	if len(nested.Captures) != 1 || nested.Captures[0] != outer {
		t.Fatalf("expected the nested block's own Captures to be filled in, got %v", nested.Captures)
	}
}

func TestAnalyseRejectsCaptureOfMutableVar(t *testing.T) {
	mutVar := ids.VarId(13)
	nestedID := ids.BlockId(1)
	nested := &syntax.Block{
		Pipelines: []syntax.Pipeline{{
			Elements: []syntax.PipelineElement{{Expr: varExpr(mutVar)}},
		}},
	}
	lookup := fakeLookup{
		blocks:  map[ids.BlockId]*syntax.Block{nestedID: nested},
		mutable: map[ids.VarId]bool{mutVar: true},
	}
	outerBlk := &syntax.Block{
		Pipelines: []syntax.Pipeline{{
			Elements: []syntax.PipelineElement{{
				Expr: &syntax.Expression{Expr: syntax.ClosureExpr{Block: nestedID}},
			}},
		}},
	}
	a := New(lookup, 16)
	got, errs := a.Analyse(outerBlk)
	if len(got) != 0 {
		t.Fatalf("mutable capture should not appear in captures, got %v", got)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	pe, ok := errs[0].(*syntax.ParseError)
	if !ok {
		t.Fatalf("got %T, want *syntax.ParseError", errs[0])
	}
	if pe.Kind != syntax.ErrCaptureOfMutableVar {
		t.Fatalf("got kind %v, want ErrCaptureOfMutableVar", pe.Kind)
	}
}
