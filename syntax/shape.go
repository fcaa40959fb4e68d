// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import "github.com/nuflow/nuparse/ids"

// Type tags an Expression's result for parse-time checking only; this
// module never evaluates anything, so Type carries no representation of
// actual values. It mirrors the closed SyntaxShape set wherever a shape
// corresponds 1:1 to a type, and adds the few result types (Nothing,
// Custom, Garbage) that have no standalone argument shape.
type Type struct {
	Kind     TypeKind
	Elem     *Type            // List
	Fields   []TypeField      // Record, Table
	Variants []Type           // OneOf-style unions produced by e.g. if/else with mismatched arms
	Custom   string           // CustomCompleter or user-declared type name
}

type TypeField struct {
	Name string
	Type Type
}

type TypeKind int

const (
	TAny TypeKind = iota
	TBool
	TInt
	TFloat
	TNumber
	TString
	TGlobPattern
	TFilepath
	TDirectory
	TFilesize
	TDuration
	TDateTime
	TRange
	TBinary
	TBlock
	TClosure
	TList
	TRecord
	TTable
	TCellPath
	TNothing
	TCustom
	TGarbage
)

var typeKindNames = map[TypeKind]string{
	TAny: "any", TBool: "bool", TInt: "int", TFloat: "float", TNumber: "number",
	TString: "string", TGlobPattern: "glob", TFilepath: "path", TDirectory: "directory",
	TFilesize: "filesize", TDuration: "duration", TDateTime: "datetime", TRange: "range",
	TBinary: "binary", TBlock: "block", TClosure: "closure", TList: "list",
	TRecord: "record", TTable: "table", TCellPath: "cell-path", TNothing: "nothing",
	TCustom: "custom", TGarbage: "garbage",
}

func (t Type) String() string {
	if t.Kind == TCustom && t.Custom != "" {
		return t.Custom
	}
	return typeKindNames[t.Kind]
}

// Is reports whether t satisfies the shape required by want. TAny always
// satisfies and is always satisfied; TNumber accepts TInt/TFloat; a
// TGarbage expression type is never checked (it already carries an
// error) and is reported as satisfying anything so a single failure does
// not cascade into a wall of TypeMismatch errors.
func (t Type) Is(want Type) bool {
	if want.Kind == TAny || t.Kind == TAny || t.Kind == TGarbage {
		return true
	}
	if want.Kind == TNumber && (t.Kind == TInt || t.Kind == TFloat || t.Kind == TNumber) {
		return true
	}
	if want.Kind == TList && t.Kind == TList {
		if want.Elem == nil || want.Elem.Kind == TAny {
			return true
		}
		if t.Elem == nil {
			return false
		}
		return t.Elem.Is(*want.Elem)
	}
	return t.Kind == want.Kind
}

// SyntaxShape is the closed set of argument/value shapes a signature
// position can declare. It is a tagged union rather than an
// interface so the shape-directed parser is one match-heavy dispatch
// function instead of a virtual dispatch tree.
type SyntaxShape struct {
	Kind SyntaxShapeKind

	// Closure / List
	Elem *SyntaxShape

	// Closure's optional declared parameter shapes.
	ClosureParams []SyntaxShape

	// Record / Table
	Fields []ShapeField

	// Keyword
	KeywordBytes []byte
	KeywordRest  *SyntaxShape

	// OneOf
	Alternatives []SyntaxShape

	// CompleterWrapper
	CompleterDecl ids.DeclId
}

type ShapeField struct {
	Name  string
	Shape SyntaxShape
}

type SyntaxShapeKind int

const (
	ShapeAny SyntaxShapeKind = iota
	ShapeInt
	ShapeNumber
	ShapeFloat
	ShapeString
	ShapeGlobPattern
	ShapeFilepath
	ShapeDirectory
	ShapeBoolean
	ShapeFilesize
	ShapeDuration
	ShapeDateTime
	ShapeRange
	ShapeBinary
	ShapeBlock
	ShapeClosure
	ShapeRecord
	ShapeTable
	ShapeList
	ShapeCellPath
	ShapeMathExpression
	ShapeRowCondition
	ShapeExpression
	ShapeSignature
	ShapeVarWithOptType
	ShapeKeyword
	ShapeOneOf
	ShapeCompleterWrapper
)

// ResultType reports the Type an argument of this shape produces once
// parsed, used for the positional/flag type-checking pass.
func (s SyntaxShape) ResultType() Type {
	switch s.Kind {
	case ShapeInt:
		return Type{Kind: TInt}
	case ShapeNumber:
		return Type{Kind: TNumber}
	case ShapeFloat:
		return Type{Kind: TFloat}
	case ShapeString, ShapeVarWithOptType:
		return Type{Kind: TString}
	case ShapeGlobPattern:
		return Type{Kind: TGlobPattern}
	case ShapeFilepath:
		return Type{Kind: TFilepath}
	case ShapeDirectory:
		return Type{Kind: TDirectory}
	case ShapeBoolean:
		return Type{Kind: TBool}
	case ShapeFilesize:
		return Type{Kind: TFilesize}
	case ShapeDuration:
		return Type{Kind: TDuration}
	case ShapeDateTime:
		return Type{Kind: TDateTime}
	case ShapeRange:
		return Type{Kind: TRange}
	case ShapeBinary:
		return Type{Kind: TBinary}
	case ShapeBlock:
		return Type{Kind: TBlock}
	case ShapeClosure:
		return Type{Kind: TClosure}
	case ShapeRecord:
		return Type{Kind: TRecord}
	case ShapeTable:
		return Type{Kind: TTable}
	case ShapeList:
		var elem Type
		if s.Elem != nil {
			elem = s.Elem.ResultType()
		} else {
			elem = Type{Kind: TAny}
		}
		return Type{Kind: TList, Elem: &elem}
	case ShapeCellPath:
		return Type{Kind: TCellPath}
	case ShapeKeyword:
		if s.KeywordRest != nil {
			return s.KeywordRest.ResultType()
		}
		return Type{Kind: TAny}
	default:
		return Type{Kind: TAny}
	}
}

// PositionalArg is one required/optional/rest positional slot of a
// Signature.
type PositionalArg struct {
	Name     string
	Desc     string
	Shape    SyntaxShape
	VarId    ids.VarId
	HasVarId bool
	Default  *Literal // nil when there is no default
}

// Flag is one named (possibly short-aliased) flag of a Signature.
type Flag struct {
	Long     string
	Short    rune // 0 when there is no short form
	HasShort bool
	Arg      *SyntaxShape // nil for a boolean switch
	Required bool
	Desc     string
	VarId    ids.VarId
	HasVarId bool
	Default  *Literal
}

// Literal is a constant value usable as a default_value: the handful of
// shapes that can be evaluated at parse time without the runtime value
// model.
type Literal struct {
	Kind LiteralKind
	Str  string
	Int  int64
	Flt  float64
	Bool bool
}

type LiteralKind int

const (
	LitNothing LiteralKind = iota
	LitString
	LitInt
	LitFloat
	LitBool
)

// Signature fully describes a callable's shape.
type Signature struct {
	Name       string
	Usage      string

	RequiredPositional []PositionalArg
	OptionalPositional []PositionalArg
	RestPositional     *PositionalArg

	Named []Flag

	InputOutputTypes []InOut

	IsFilter          bool
	CreatesScope      bool
	AllowsUnknownArgs bool
}

type InOut struct {
	In, Out Type
}

// FindNamed looks up a long-flag name (without leading "--").
func (s *Signature) FindNamed(long string) *Flag {
	for i := range s.Named {
		if s.Named[i].Long == long {
			return &s.Named[i]
		}
	}
	return nil
}

// FindShort looks up a short-flag letter.
func (s *Signature) FindShort(r rune) *Flag {
	for i := range s.Named {
		if s.Named[i].HasShort && s.Named[i].Short == r {
			return &s.Named[i]
		}
	}
	return nil
}

// TotalPositionalCount is required+optional, excluding rest.
func (s *Signature) TotalPositionalCount() int {
	return len(s.RequiredPositional) + len(s.OptionalPositional)
}
