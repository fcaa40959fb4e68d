// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/source"
)

// Node is implemented by every AST node; it exposes the span of source it
// covers.
type Node interface {
	Span() source.Span
}

// Expr is the tagged-sum payload of an Expression; exactly one of the
// concrete types below is ever held. It is a closed set
// matched with a type switch rather than virtual dispatch, mirroring how
// SyntaxShape itself is a closed enum.
type Expr interface {
	exprNode()
}

// Expression pairs an Expr payload with its span, its checked Type, and
// an optional completion hook DeclId.
type Expression struct {
	Expr             Expr
	ExprSpan         source.Span
	Type             Type
	CustomCompletion ids.DeclId
	HasCompletion    bool
}

func (e *Expression) Span() source.Span { return e.ExprSpan }

// --- Expr variants -----------------------------------------------------

type BoolExpr struct{ Value bool }
type IntExpr struct{ Value int64 }
type FloatExpr struct{ Value float64 }

// BinaryExpr is the generic X Op Y node produced by precedence climbing
// over math and comparison operators.
type BinaryExpr struct {
	Op       MathOperator
	Lhs, Rhs *Expression
}

type RangeExpr struct {
	From, NextAfterFrom, To *Expression // any may be nil: at least one bound is required
	Inclusion               RangeInclusion
}

type RangeInclusion int

const (
	RangeInclusive RangeInclusion = iota // ..=
	RangeExclusive                       // ..<
	RangeUnbounded                       // ..  (legacy inclusive spelling)
)

type VarExpr struct{ Var ids.VarId }

type VarDeclExpr struct {
	Var      ids.VarId
	Name     string
	Mutable  bool
	HasType  bool
	Declared Type
}

// Call is a resolved invocation: head span, resolved decl, its bound
// arguments, and any parser-attached side information (e.g. the library
// path a `source` keyword needs at evaluation time).
type Call struct {
	Head       source.Span
	Decl       ids.DeclId
	Arguments  []Argument
	ParserInfo map[string]*Expression
}

type CallExpr struct{ Call *Call }

// ExternalCallExpr is a call to a name the working set could not resolve
// to any decl; args are carried as raw expressions, uninterpreted by any
// signature.
type ExternalCallExpr struct {
	Name *Expression
	Args []*Expression
}

// OperatorExpr names a bare math/comparison operator appearing on its
// own (used while building BinaryExpr during precedence climbing).
type OperatorExpr struct{ Op MathOperator }

// RowConditionExpr wraps a block whose implicit positional is $it,
// produced by e.g. `where`'s argument.
type RowConditionExpr struct{ Block ids.BlockId }

type UnaryNotExpr struct{ Expr *Expression }

// BinaryOpExpr is kept distinct from BinaryExpr for row conditions built
// via cell-path rewriting ($it.col > 10), where Lhs started life as a
// bare column reference.
type BinaryOpExpr struct {
	Op       MathOperator
	Lhs, Rhs *Expression
}

type SubexpressionExpr struct{ Block ids.BlockId }
type BlockExpr struct{ Block ids.BlockId }
type ClosureExpr struct{ Block ids.BlockId }

type MatchBlockExpr struct {
	Subject *Expression
	Arms    []MatchArm
}

type MatchArm struct {
	Patterns []Pattern
	Guard    *Expression // nil when there is no `if guard`
	Body     *Expression
}

type ListExpr struct{ Items []*Expression }

type TableExpr struct {
	Columns []*Expression
	Rows    [][]*Expression
}

type RecordExpr struct {
	Keys   []*Expression
	Values []*Expression
}

// KeywordExpr wraps keyword-handler output (def/let/module/... produce
// this so a Pipeline element can be "a call to a keyword" uniformly).
type KeywordExpr struct {
	Keyword string
	Inner   *Expression
}

type ValueWithUnitExpr struct {
	Value *Expression
	Unit  string
}

type DateTimeExpr struct{ Raw string }
type FilepathExpr struct{ Raw string }
type DirectoryExpr struct{ Raw string }
type GlobPatternExpr struct {
	Raw       string
	HasQuotes bool
}
type StringExpr struct{ Value string }
type RawStringExpr struct{ Value string }

type StringInterpolationExpr struct{ Parts []*Expression }

// CellPathExpr is the tail alone (no head): .member/.N/? chain.
type CellPathExpr struct{ Members []PathMember }

type PathMember struct {
	IsInt    bool
	Name     string
	Int      int64
	Optional bool
}

// FullCellPathExpr is an optional head followed by a cell-path tail.
type FullCellPathExpr struct {
	Head *Expression
	Tail []PathMember
}

type ImportPatternExpr struct {
	Head     string
	Segments []ImportSegment
}

type ImportSegment struct {
	Kind ImportSegmentKind
	Name string
	List []string // for the ::[a,b,c] form
}

type ImportSegmentKind int

const (
	ImportName ImportSegmentKind = iota
	ImportGlob                   // ::*
	ImportList                   // ::[a,b,c]
)

type OverlayExpr struct{ Name string }

type SignatureExpr struct{ Signature *Signature }

type NothingExpr struct{}

// GarbageExpr is the only way a completed tree leaves a structural hole
//; it still carries the best-known span via the
// owning Expression.
type GarbageExpr struct{}

func (BoolExpr) exprNode()                {}
func (IntExpr) exprNode()                 {}
func (FloatExpr) exprNode()               {}
func (BinaryExpr) exprNode()              {}
func (RangeExpr) exprNode()               {}
func (VarExpr) exprNode()                 {}
func (VarDeclExpr) exprNode()             {}
func (CallExpr) exprNode()                {}
func (ExternalCallExpr) exprNode()        {}
func (OperatorExpr) exprNode()            {}
func (RowConditionExpr) exprNode()        {}
func (UnaryNotExpr) exprNode()            {}
func (BinaryOpExpr) exprNode()            {}
func (SubexpressionExpr) exprNode()       {}
func (BlockExpr) exprNode()               {}
func (ClosureExpr) exprNode()             {}
func (MatchBlockExpr) exprNode()          {}
func (ListExpr) exprNode()                {}
func (TableExpr) exprNode()               {}
func (RecordExpr) exprNode()              {}
func (KeywordExpr) exprNode()             {}
func (ValueWithUnitExpr) exprNode()       {}
func (DateTimeExpr) exprNode()            {}
func (FilepathExpr) exprNode()            {}
func (DirectoryExpr) exprNode()           {}
func (GlobPatternExpr) exprNode()         {}
func (StringExpr) exprNode()              {}
func (RawStringExpr) exprNode()           {}
func (StringInterpolationExpr) exprNode() {}
func (CellPathExpr) exprNode()            {}
func (FullCellPathExpr) exprNode()        {}
func (ImportPatternExpr) exprNode()       {}
func (OverlayExpr) exprNode()             {}
func (SignatureExpr) exprNode()           {}
func (NothingExpr) exprNode()             {}
func (GarbageExpr) exprNode()             {}

// --- Argument ------------------------------------------------------------

// Argument is one bound argument of a Call.
type Argument interface {
	argNode()
}

type PositionalArgument struct{ Expr *Expression }
type NamedArgument struct {
	Name     string
	Short    rune
	HasShort bool
	Value    *Expression // nil for a boolean switch present without a value
}
type UnknownArgument struct{ Expr *Expression }
type SpreadArgument struct{ Expr *Expression }

func (PositionalArgument) argNode() {}
func (NamedArgument) argNode()      {}
func (UnknownArgument) argNode()    {}
func (SpreadArgument) argNode()     {}

// --- Pipeline / Block ----------------------------------------------------

// PipelineRedirection mirrors LiteRedirection once spans have been
// resolved into parsed targets.
type PipelineRedirection struct {
	Source   RedirectionSource
	Separate bool
	Target   *Expression // Single form
	Out, Err *Expression // Separate form
}

type PipelineElement struct {
	Pipe        *source.Span
	Expr        *Expression
	Redirection *PipelineRedirection
}

type Pipeline struct {
	Elements []PipelineElement
}

func (pl *Pipeline) Span() source.Span {
	if len(pl.Elements) == 0 {
		return source.Span{}
	}
	first, last := pl.Elements[0], pl.Elements[len(pl.Elements)-1]
	var start, end uint32
	var file source.FileID
	if first.Expr != nil {
		start, file = first.Expr.ExprSpan.Start, first.Expr.ExprSpan.File
	}
	if last.Expr != nil {
		end = last.Expr.ExprSpan.End
	}
	return source.Span{Start: start, End: end, File: file}
}

func (pe *PipelineElement) Span() source.Span {
	if pe.Expr == nil {
		return source.Span{}
	}
	return pe.Expr.ExprSpan
}

// Block is a parsed body: its declared signature, its pipelines, the
// free variables it captures (filled in by the capture analyser), and
// its own span when it was parsed from source text (HasSpan false and a
// zero BlockSpan for a synthetic block built by a rewrite or a row
// condition).
type Block struct {
	Signature Signature
	Pipelines []Pipeline
	Captures  []ids.VarId
	HasSpan   bool
	BlockSpan source.Span
}

func (b *Block) Span() source.Span { return b.BlockSpan }
