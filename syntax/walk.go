// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import "fmt"

// Visitor holds a Visit method which is invoked for each node
// encountered by Walk. If the result visitor w is not nil, Walk visits
// each of the children of node with the visitor w, followed by a call
// of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order: it starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w
// for each of the non-nil children of node, followed by a call of
// w.Visit(nil). cmd/nuparse's parse subcommand uses it to print the
// tree; the capture analyser has its own walk.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch x := node.(type) {
	case *Block:
		for i := range x.Pipelines {
			Walk(v, &x.Pipelines[i])
		}
	case *Pipeline:
		for i := range x.Elements {
			Walk(v, &x.Elements[i])
		}
	case *PipelineElement:
		if x.Expr != nil {
			Walk(v, x.Expr)
		}
		if x.Redirection != nil {
			if x.Redirection.Target != nil {
				Walk(v, x.Redirection.Target)
			}
			if x.Redirection.Out != nil {
				Walk(v, x.Redirection.Out)
			}
			if x.Redirection.Err != nil {
				Walk(v, x.Redirection.Err)
			}
		}
	case *Expression:
		walkExpr(v, x.Expr)
	default:
		panic(fmt.Sprintf("syntax.Walk: unexpected node type %T", x))
	}

	v.Visit(nil)
}

// walkExpr dispatches on the Expr tagged-union payload; it is not
// itself part of the Node interface (Expr has no Span of its own, only
// its owning Expression does) so it is a plain helper rather than a
// Walk case.
func walkExpr(v Visitor, e Expr) {
	switch x := e.(type) {
	case BinaryExpr:
		Walk(v, x.Lhs)
		Walk(v, x.Rhs)
	case BinaryOpExpr:
		Walk(v, x.Lhs)
		Walk(v, x.Rhs)
	case UnaryNotExpr:
		Walk(v, x.Expr)
	case RangeExpr:
		if x.From != nil {
			Walk(v, x.From)
		}
		if x.To != nil {
			Walk(v, x.To)
		}
	case CallExpr:
		walkCall(v, x.Call)
	case ExternalCallExpr:
		Walk(v, x.Name)
		for _, a := range x.Args {
			Walk(v, a)
		}
	case ListExpr:
		for _, it := range x.Items {
			Walk(v, it)
		}
	case TableExpr:
		for _, c := range x.Columns {
			Walk(v, c)
		}
		for _, row := range x.Rows {
			for _, cell := range row {
				Walk(v, cell)
			}
		}
	case RecordExpr:
		for _, k := range x.Keys {
			Walk(v, k)
		}
		for _, val := range x.Values {
			Walk(v, val)
		}
	case StringInterpolationExpr:
		for _, part := range x.Parts {
			Walk(v, part)
		}
	case FullCellPathExpr:
		if x.Head != nil {
			Walk(v, x.Head)
		}
	case ValueWithUnitExpr:
		Walk(v, x.Value)
	case MatchBlockExpr:
		Walk(v, x.Subject)
		for _, arm := range x.Arms {
			if arm.Guard != nil {
				Walk(v, arm.Guard)
			}
			Walk(v, arm.Body)
		}
	case KeywordExpr:
		if x.Inner != nil {
			Walk(v, x.Inner)
		}
	case BoolExpr, IntExpr, FloatExpr, VarExpr, VarDeclExpr, OperatorExpr,
		RowConditionExpr, SubexpressionExpr, BlockExpr, ClosureExpr,
		DateTimeExpr, FilepathExpr, DirectoryExpr, GlobPatternExpr,
		StringExpr, RawStringExpr, CellPathExpr, ImportPatternExpr,
		OverlayExpr, SignatureExpr, NothingExpr, GarbageExpr:
		// leaves: nothing further to walk.
	default:
		panic(fmt.Sprintf("syntax.Walk: unexpected Expr type %T", x))
	}
}

func walkCall(v Visitor, c *Call) {
	if c == nil {
		return
	}
	for _, arg := range c.Arguments {
		switch a := arg.(type) {
		case PositionalArgument:
			Walk(v, a.Expr)
		case NamedArgument:
			if a.Value != nil {
				Walk(v, a.Value)
			}
		case UnknownArgument:
			Walk(v, a.Expr)
		case SpreadArgument:
			Walk(v, a.Expr)
		}
	}
	for _, info := range c.ParserInfo {
		Walk(v, info)
	}
}
