// Package builtins provides the bootstrap signature table a host
// registers into a fresh engine.PermanentState before parsing any user
// source, so the non-keyword commands the rewrite passes and keyword
// handlers depend on (with-env, collect, where, str length, echo)
// resolve to real decls instead of falling through to
// ExternalCallExpr.
package builtins

import (
	"github.com/nuflow/nuparse/engine"
	"github.com/nuflow/nuparse/syntax"
)

func shape(k syntax.SyntaxShapeKind) syntax.SyntaxShape { return syntax.SyntaxShape{Kind: k} }

func required(name string, k syntax.SyntaxShapeKind) syntax.PositionalArg {
	return syntax.PositionalArg{Name: name, Shape: shape(k)}
}

func rest(name string, k syntax.SyntaxShapeKind) *syntax.PositionalArg {
	return &syntax.PositionalArg{Name: name, Shape: shape(k)}
}

// Register adds every bootstrap signature to s. Call it exactly once
// per PermanentState, before parsing any user source.
func Register(s *engine.PermanentState) {
	for _, b := range table {
		s.RegisterDecl(b.name, b.sig)
	}
}

var table = []struct {
	name string
	sig  syntax.Signature
}{
	{
		name: "with-env",
		sig: syntax.Signature{
			Name:               "with-env",
			Usage:              "Run a block with environment variables set.",
			RequiredPositional: []syntax.PositionalArg{required("environment", syntax.ShapeRecord), required("block", syntax.ShapeClosure)},
			CreatesScope:       true,
		},
	},
	{
		name: "collect",
		sig: syntax.Signature{
			Name:               "collect",
			Usage:              "Collect the pipeline input and pass it to a closure.",
			RequiredPositional: []syntax.PositionalArg{required("closure", syntax.ShapeClosure)},
			IsFilter:           true,
		},
	},
	{
		name: "where",
		sig: syntax.Signature{
			Name:               "where",
			Usage:              "Filter values of a list or table according to a row condition.",
			RequiredPositional: []syntax.PositionalArg{required("row_condition", syntax.ShapeRowCondition)},
			IsFilter:           true,
		},
	},
	{
		name: "str length",
		sig: syntax.Signature{
			Name:  "str length",
			Usage: "Output the length of any strings in the pipeline.",
			Named: []syntax.Flag{
				{Long: "grapheme-clusters", Short: 'g', HasShort: true, Desc: "count grapheme clusters instead of bytes"},
			},
			IsFilter: true,
		},
	},
	{
		name: "echo",
		sig: syntax.Signature{
			Name:           "echo",
			Usage:          "Returns its arguments, ignoring the piped-in value.",
			RestPositional: rest("rest", syntax.ShapeAny),
		},
	},
}
