// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/source"
)

// peelEnvShorthand splits off any leading "NAME=value" words from a
// lite command's parts. `FOO=bar BAZ=qux cmd args` parses exactly like
// `with-env {FOO: bar, BAZ: qux} { cmd args }`, peeled here rather than
// at the lexer so ordinary arguments containing "=" (e.g. --opt=val)
// are untouched — only parts[0..] before the command head qualify.
func (p *Parser) peelEnvShorthand(parts []source.Span) (pairs []envPair, rest []source.Span) {
	i := 0
	for i < len(parts) {
		name, val, ok := p.envShorthandSplit(parts[i])
		if !ok {
			break
		}
		pairs = append(pairs, envPair{Name: name, ValueSpan: val})
		i++
	}
	return pairs, parts[i:]
}

type envPair struct {
	Name      string
	ValueSpan source.Span
}

// envShorthandSplit reports whether span is a bare NAME=value word: no
// surrounding quotes, name starts with a letter/underscore, and the
// '=' is not part of a long flag spelling (those always start with
// '-', never a name char).
func (p *Parser) envShorthandSplit(span source.Span) (name string, value source.Span, ok bool) {
	text := p.Working.SpanContents(span)
	if len(text) == 0 || !isNameStart(text[0]) {
		return "", source.Span{}, false
	}
	for i, b := range text {
		if b == '=' {
			valSpan := source.Span{Start: span.Start + uint32(i) + 1, End: span.End, File: span.File}
			return string(text[:i]), valSpan, true
		}
		if !isNameByte(b) {
			return "", source.Span{}, false
		}
	}
	return "", source.Span{}, false
}

func isNameStart(b byte) bool { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isNameByte(b byte) bool  { return isNameStart(b) || isDigit(b) }

// wrapWithEnv builds the with-env KeywordExpr around inner, used once
// peelEnvShorthand finds at least one NAME=value prefix on a command.
func (p *Parser) wrapWithEnv(pairs []envPair, nameSpans []source.Span, inner *Expression) *Expression {
	rec := RecordExpr{}
	for i, pair := range pairs {
		rec.Keys = append(rec.Keys, &Expression{Expr: StringExpr{Value: pair.Name}, ExprSpan: nameSpans[i], Type: Type{Kind: TString}})
		rec.Values = append(rec.Values, p.parseValue(pair.ValueSpan, SyntaxShape{Kind: ShapeString}))
	}
	recSpan := spanUnion(nameSpans)
	recExpr := &Expression{Expr: rec, ExprSpan: recSpan, Type: Type{Kind: TRecord}}
	blk := &Block{Pipelines: []Pipeline{{Elements: []PipelineElement{{Expr: inner}}}}}
	blockID := p.Working.AddBlock(blk)
	call := &Call{ParserInfo: map[string]*Expression{
		"env":  recExpr,
		"body": {Expr: BlockExpr{Block: blockID}, ExprSpan: inner.ExprSpan, Type: Type{Kind: TBlock}},
	}}
	full := source.Span{Start: recSpan.Start, End: inner.ExprSpan.End, File: recSpan.File}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "with-env", Inner: &Expression{Expr: CallExpr{Call: call}, ExprSpan: full, Type: inner.Type}},
		ExprSpan: full,
		Type:     inner.Type,
	}
}

// wrapImplicitIn gives a non-first pipeline element explicit access to
// the previous element's output. A bare cell-path with no head (`.foo`)
// reads implicitly from the pipeline input, so it is first filled in
// with a VarExpr over ids.InVariableID the same way an explicit `$in`
// would parse. Once any `$in` reference is present anywhere in the
// element's expression tree, the whole element is wrapped in
// `collect { |$in| <expr> }` so evaluation sees a single materialized
// value rather than the previous element's raw stream.
func (p *Parser) wrapImplicitIn(elem *PipelineElement, isFirst bool) {
	if isFirst || elem.Expr == nil {
		return
	}
	if cp, ok := elem.Expr.Expr.(CellPathExpr); ok {
		head := &Expression{Expr: VarExpr{Var: ids.InVariableID}, ExprSpan: elem.Expr.ExprSpan, Type: Type{Kind: TAny}}
		elem.Expr = &Expression{
			Expr:     FullCellPathExpr{Head: head, Tail: cp.Members},
			ExprSpan: elem.Expr.ExprSpan,
			Type:     elem.Expr.Type,
		}
	}
	if !referencesImplicitIn(elem.Expr.Expr) {
		return
	}
	elem.Expr = p.wrapInCollect(elem.Expr)
}

// wrapInCollect builds `collect { |$in| inner }` around inner, resolving
// against the working set's own "collect" decl when one is registered
// and falling back to an unresolved external call otherwise (e.g. in a
// standalone parser test that never registered the builtin table).
func (p *Parser) wrapInCollect(inner *Expression) *Expression {
	param := PositionalArg{Name: "in", Shape: SyntaxShape{Kind: ShapeAny}, VarId: ids.InVariableID, HasVarId: true}
	blk := &Block{
		Signature: Signature{RequiredPositional: []PositionalArg{param}},
		Pipelines: []Pipeline{{Elements: []PipelineElement{{Expr: inner}}}},
	}
	blockID := p.Working.AddBlock(blk)
	closure := &Expression{Expr: ClosureExpr{Block: blockID}, ExprSpan: inner.ExprSpan, Type: Type{Kind: TClosure}}

	if declID, ok := p.Working.FindDecl("collect"); ok {
		call := &Call{
			Head:       inner.ExprSpan,
			Decl:       declID,
			Arguments:  []Argument{PositionalArgument{Expr: closure}},
			ParserInfo: map[string]*Expression{},
		}
		return &Expression{Expr: CallExpr{Call: call}, ExprSpan: inner.ExprSpan, Type: inner.Type}
	}
	name := &Expression{Expr: StringExpr{Value: "collect"}, ExprSpan: inner.ExprSpan, Type: Type{Kind: TString}}
	return &Expression{
		Expr:     ExternalCallExpr{Name: name, Args: []*Expression{closure}},
		ExprSpan: inner.ExprSpan,
		Type:     inner.Type,
	}
}

// referencesImplicitIn reports whether e contains a VarExpr over the
// implicit "$in" variable anywhere in its tree. It deliberately does not
// descend into nested BlockExpr/ClosureExpr/RowConditionExpr/
// SubexpressionExpr bodies: those are independently scoped blocks whose
// own pipeline elements get their own wrapImplicitIn treatment, so a
// $in reference inside one of them belongs to that inner scope, not
// this one.
func referencesImplicitIn(e Expr) bool {
	switch v := e.(type) {
	case VarExpr:
		return v.Var == ids.InVariableID
	case BinaryExpr:
		return exprRefsIn(v.Lhs) || exprRefsIn(v.Rhs)
	case BinaryOpExpr:
		return exprRefsIn(v.Lhs) || exprRefsIn(v.Rhs)
	case UnaryNotExpr:
		return exprRefsIn(v.Expr)
	case RangeExpr:
		return exprRefsIn(v.From) || exprRefsIn(v.NextAfterFrom) || exprRefsIn(v.To)
	case CallExpr:
		return callRefsIn(v.Call)
	case ExternalCallExpr:
		if exprRefsIn(v.Name) {
			return true
		}
		for _, a := range v.Args {
			if exprRefsIn(a) {
				return true
			}
		}
		return false
	case ListExpr:
		for _, it := range v.Items {
			if exprRefsIn(it) {
				return true
			}
		}
		return false
	case TableExpr:
		for _, c := range v.Columns {
			if exprRefsIn(c) {
				return true
			}
		}
		for _, row := range v.Rows {
			for _, c := range row {
				if exprRefsIn(c) {
					return true
				}
			}
		}
		return false
	case RecordExpr:
		for _, k := range v.Keys {
			if exprRefsIn(k) {
				return true
			}
		}
		for _, val := range v.Values {
			if exprRefsIn(val) {
				return true
			}
		}
		return false
	case StringInterpolationExpr:
		for _, part := range v.Parts {
			if exprRefsIn(part) {
				return true
			}
		}
		return false
	case FullCellPathExpr:
		return exprRefsIn(v.Head)
	case ValueWithUnitExpr:
		return exprRefsIn(v.Value)
	case KeywordExpr:
		return exprRefsIn(v.Inner)
	case MatchBlockExpr:
		if exprRefsIn(v.Subject) {
			return true
		}
		for _, arm := range v.Arms {
			if exprRefsIn(arm.Guard) || exprRefsIn(arm.Body) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func exprRefsIn(e *Expression) bool {
	if e == nil {
		return false
	}
	return referencesImplicitIn(e.Expr)
}

func callRefsIn(c *Call) bool {
	if c == nil {
		return false
	}
	for _, arg := range c.Arguments {
		switch av := arg.(type) {
		case PositionalArgument:
			if exprRefsIn(av.Expr) {
				return true
			}
		case NamedArgument:
			if exprRefsIn(av.Value) {
				return true
			}
		case UnknownArgument:
			if exprRefsIn(av.Expr) {
				return true
			}
		case SpreadArgument:
			if exprRefsIn(av.Expr) {
				return true
			}
		}
	}
	for _, e := range c.ParserInfo {
		if exprRefsIn(e) {
			return true
		}
	}
	return false
}

