package main

import (
	"fmt"

	"github.com/nuflow/nuparse/source"
	"github.com/nuflow/nuparse/syntax"
)

// printVisitor dumps every node Walk visits as one indented line naming
// its Go type and source span, giving an at-a-glance tree shape for the
// parse subcommand without depending on any particular AST-diff tool.
type printVisitor struct {
	m     *source.Map
	depth int
}

func (p *printVisitor) Visit(node syntax.Node) syntax.Visitor {
	if node == nil {
		p.depth--
		return nil
	}
	indent := ""
	for i := 0; i < p.depth; i++ {
		indent += "  "
	}
	fmt.Printf("%s%T %q\n", indent, node, string(p.m.SpanContents(node.Span())))
	p.depth++
	return p
}
