// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"testing"

	"github.com/nuflow/nuparse/source"
)

func newTestParser(t *testing.T) (*Parser, *source.Map) {
	t.Helper()
	m := source.NewMap()
	ws := NewWorkingSet(nil, m)
	return NewParser(ws), m
}

func parseSrc(t *testing.T, p *Parser, m *source.Map, src string) *Block {
	t.Helper()
	sp := m.AddFileSpan("t.nu", []byte(src))
	return p.ParseSource(sp)
}

func TestParseLetBindsVariable(t *testing.T) {
	p, m := newTestParser(t)
	blk := parseSrc(t, p, m, "let x = 5\n")
	if len(blk.Pipelines) != 1 {
		t.Fatalf("got %d pipelines, want 1", len(blk.Pipelines))
	}
	elem := blk.Pipelines[0].Elements[0]
	kw, ok := elem.Expr.Expr.(KeywordExpr)
	if !ok || kw.Keyword != "let" {
		t.Fatalf("got %#v, want a let KeywordExpr", elem.Expr.Expr)
	}
	if _, ok := p.Working.FindVariable("x"); !ok {
		t.Fatalf("expected $x to be registered after let")
	}
}

func TestParseUnknownCommandBecomesExternalCall(t *testing.T) {
	p, m := newTestParser(t)
	blk := parseSrc(t, p, m, "git status\n")
	elem := blk.Pipelines[0].Elements[0]
	if _, ok := elem.Expr.Expr.(ExternalCallExpr); !ok {
		t.Fatalf("got %#v, want ExternalCallExpr", elem.Expr.Expr)
	}
}

func TestParseKnownCommandResolvesDecl(t *testing.T) {
	p, m := newTestParser(t)
	p.Working.AddDecl("greet", Signature{
		Name:               "greet",
		RequiredPositional: []PositionalArg{{Name: "name", Shape: SyntaxShape{Kind: ShapeString}}},
	})
	blk := parseSrc(t, p, m, `greet "world"`+"\n")
	elem := blk.Pipelines[0].Elements[0]
	call, ok := elem.Expr.Expr.(CallExpr)
	if !ok {
		t.Fatalf("got %#v, want CallExpr", elem.Expr.Expr)
	}
	if len(call.Call.Arguments) != 1 {
		t.Fatalf("got %d arguments, want 1", len(call.Call.Arguments))
	}
	pos, ok := call.Call.Arguments[0].(PositionalArgument)
	if !ok {
		t.Fatalf("got %#v, want PositionalArgument", call.Call.Arguments[0])
	}
	str, ok := pos.Expr.Expr.(StringExpr)
	if !ok || str.Value != "world" {
		t.Fatalf("got %#v, want StringExpr{world}", pos.Expr.Expr)
	}
}

func TestParseCellPathWithOptional(t *testing.T) {
	p, m := newTestParser(t)
	p.Working.AddVariable("rec", Type{Kind: TRecord}, false)
	blk := parseSrc(t, p, m, "$rec.name?\n")
	elem := blk.Pipelines[0].Elements[0]
	fcp, ok := elem.Expr.Expr.(FullCellPathExpr)
	if !ok {
		t.Fatalf("got %#v, want FullCellPathExpr", elem.Expr.Expr)
	}
	if len(fcp.Tail) != 1 || fcp.Tail[0].Name != "name" || !fcp.Tail[0].Optional {
		t.Fatalf("got tail %#v, want optional member 'name'", fcp.Tail)
	}
}

func TestParseIfElse(t *testing.T) {
	p, m := newTestParser(t)
	blk := parseSrc(t, p, m, "if true { 1 } else { 2 }\n")
	elem := blk.Pipelines[0].Elements[0]
	kw, ok := elem.Expr.Expr.(KeywordExpr)
	if !ok || kw.Keyword != "if" {
		t.Fatalf("got %#v, want an if KeywordExpr", elem.Expr.Expr)
	}
	call := kw.Inner.Expr.(CallExpr).Call
	if call.ParserInfo["else"] == nil {
		t.Fatalf("expected an else branch to be recorded")
	}
}

func TestParseMathExpressionPrecedence(t *testing.T) {
	p, m := newTestParser(t)
	m2 := m
	sp := m2.AddFileSpan("t.nu", []byte("1 + 2 * 3"))
	expr := p.parseMathExpression(sp)
	bin, ok := expr.Expr.(BinaryExpr)
	if !ok || bin.Op != OpAdd {
		t.Fatalf("got %#v, want a top-level +", expr.Expr)
	}
	rhs, ok := bin.Rhs.Expr.(BinaryExpr)
	if !ok || rhs.Op != OpMul {
		t.Fatalf("got rhs %#v, want a nested *", bin.Rhs.Expr)
	}
}

func TestParseEnvShorthandWrapsWithEnv(t *testing.T) {
	p, m := newTestParser(t)
	blk := parseSrc(t, p, m, "FOO=bar cmd\n")
	elem := blk.Pipelines[0].Elements[0]
	kw, ok := elem.Expr.Expr.(KeywordExpr)
	if !ok || kw.Keyword != "with-env" {
		t.Fatalf("got %#v, want a with-env KeywordExpr", elem.Expr.Expr)
	}
}
