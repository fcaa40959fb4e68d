package syntax

import (
	"strings"

	"github.com/nuflow/nuparse/source"
)

// parseModule handles `module <name> { <body> }`, recursing the parser
// over the body in its own scope so names declared inside are not
// visible outside without an explicit `use`.
func (p *Parser) parseModule(parts []source.Span) *Expression {
	if len(parts) < 3 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "module needs a name and a body"})
		return p.garbageExpr(spanUnion(parts))
	}
	name := unquote(p.Working.SpanContents(parts[1]))
	bodySpan := parts[2]
	p.Working.EnterScope()
	body := p.parseSubBlock(stripBracketsSpan(bodySpan))
	p.Working.ExitScope()
	blockID := p.Working.AddBlock(body)
	inner := &Expression{Expr: BlockExpr{Block: blockID}, ExprSpan: bodySpan, Type: Type{Kind: TBlock}}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "module:" + name, Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseUse handles `use <module> [<import pattern>]`, building an
// ImportPatternExpr. It records the pattern only: neither this parser
// nor engine.Merge looks the module up or brings its names into scope.
func (p *Parser) parseUse(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "use needs a module name"})
		return p.garbageExpr(spanUnion(parts))
	}
	head := unquote(p.Working.SpanContents(parts[1]))
	pattern := ImportPatternExpr{Head: head}
	if len(parts) > 2 {
		pattern.Segments = p.parseImportSegments(parts[2])
	}
	inner := &Expression{Expr: pattern, ExprSpan: spanUnion(parts[1:]), Type: Type{Kind: TAny}}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "use", Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

func (p *Parser) parseImportSegments(span source.Span) []ImportSegment {
	text := string(p.Working.SpanContents(span))
	text = strings.TrimPrefix(text, "::")
	switch {
	case text == "*":
		return []ImportSegment{{Kind: ImportGlob}}
	case strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]"):
		inner := text[1 : len(text)-1]
		var names []string
		for _, n := range strings.Split(inner, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		return []ImportSegment{{Kind: ImportList, List: names}}
	default:
		return []ImportSegment{{Kind: ImportName, Name: text}}
	}
}

// parseOverlay handles `overlay use <module>` / `overlay hide <name>`,
// the two overlay sub-forms this front-end resolves at parse time.
func (p *Parser) parseOverlay(parts []source.Span) *Expression {
	if len(parts) < 3 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "overlay needs a sub-command and a name"})
		return p.garbageExpr(spanUnion(parts))
	}
	sub := string(p.Working.SpanContents(parts[1]))
	name := unquote(p.Working.SpanContents(parts[2]))
	inner := &Expression{Expr: OverlayExpr{Name: name}, ExprSpan: spanUnion(parts[1:]), Type: Type{Kind: TNothing}}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "overlay:" + sub, Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseExport re-dispatches to whichever keyword follows `export`
// (export def, export use, export module, export alias) and wraps the
// result in an "export" KeywordExpr; the export is not recorded anywhere
// else.
func (p *Parser) parseExport(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "export needs a sub-keyword"})
		return p.garbageExpr(spanUnion(parts))
	}
	sub := string(p.Working.SpanContents(parts[1]))
	rest := parts[1:]
	var inner *Expression
	switch sub {
	case "def":
		inner = p.parseDef(rest)
	case "use":
		inner = p.parseUse(rest)
	case "module":
		inner = p.parseModule(rest)
	case "alias":
		inner = p.parseAlias(rest)
	default:
		p.Working.Error(&ParseError{Kind: ErrUnexpectedKeyword, Span: parts[1], Message: "unknown export sub-keyword: " + sub})
		inner = p.garbageExpr(parts[1])
	}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "export", Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseAlias handles `alias <name> = <call>`, registering name as a
// decl that accepts any arguments. The aliased call is kept only in the
// returned KeywordExpr: the decl does not store it, and later uses of
// name are not expanded to it.
func (p *Parser) parseAlias(parts []source.Span) *Expression {
	if len(parts) < 3 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "alias needs a name and a call"})
		return p.garbageExpr(spanUnion(parts))
	}
	name := unquote(p.Working.SpanContents(parts[1]))
	rhsParts := parts[2:]
	if string(p.Working.SpanContents(rhsParts[0])) == "=" {
		rhsParts = rhsParts[1:]
	}
	if len(rhsParts) == 0 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "alias needs a name and a call"})
		return p.garbageExpr(spanUnion(parts))
	}
	rhs := p.parseOnePart(rhsParts)
	sig := Signature{Name: name, AllowsUnknownArgs: true}
	p.Working.AddDecl(name, sig)
	return &Expression{
		Expr:     KeywordExpr{Keyword: "alias", Inner: rhs},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseHide handles `hide <name>` by deleting name from the innermost
// frame's decl and variable maps at parse time. A binding of name in an
// outer frame or in the permanent state stays visible, and overlays are
// not touched.
func (p *Parser) parseHide(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "hide needs a name"})
		return p.garbageExpr(spanUnion(parts))
	}
	name := unquote(p.Working.SpanContents(parts[1]))
	delete(p.Working.top().decls, name)
	delete(p.Working.top().vars, name)
	inner := &Expression{Expr: StringExpr{Value: name}, ExprSpan: parts[1], Type: Type{Kind: TString}}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "hide", Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseRegister handles `register <path>`, declaring a plugin binary to
// the working set; resolving the path and querying the plugin for its
// actual command signatures is the host's job at merge time, same as
// parseSource leaves file resolution to the host.
func (p *Parser) parseRegister(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "register needs a plugin path"})
		return p.garbageExpr(spanUnion(parts))
	}
	inner := p.parseValue(parts[1], SyntaxShape{Kind: ShapeFilepath})
	return &Expression{
		Expr:     KeywordExpr{Keyword: "register", Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parsePlugin re-dispatches `plugin use <name>` the way parseExport
// re-dispatches its sub-keyword; `plugin use` loads a previously
// registered plugin's commands into scope.
func (p *Parser) parsePlugin(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "plugin needs a sub-keyword"})
		return p.garbageExpr(spanUnion(parts))
	}
	sub := string(p.Working.SpanContents(parts[1]))
	if sub != "use" {
		p.Working.Error(&ParseError{Kind: ErrUnexpectedKeyword, Span: parts[1], Message: "unknown plugin sub-keyword: " + sub})
		return p.garbageExpr(spanUnion(parts))
	}
	inner := p.parseUse(parts[1:])
	return &Expression{
		Expr:     KeywordExpr{Keyword: "plugin", Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseSource handles `source <path.nu>`: the referenced file's
// declarations are meant to merge into the caller's scope, but resolving
// the actual file contents and doing that merge is the host's job, not
// this parser's; it only records which path was requested.
func (p *Parser) parseSource(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "source needs a file path"})
		return p.garbageExpr(spanUnion(parts))
	}
	inner := p.parseValue(parts[1], SyntaxShape{Kind: ShapeFilepath})
	return &Expression{
		Expr:     KeywordExpr{Keyword: "source", Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}
