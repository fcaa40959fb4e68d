package syntax

import (
	"strings"

	"github.com/nuflow/nuparse/source"
)

// parseDef handles `def <name> [<signature>] { <body> }`, registering
// the declaration in the enclosing scope before parsing its body so
// recursive calls resolve.
func (p *Parser) parseDef(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "def needs a name"})
		return p.garbageExpr(spanUnion(parts))
	}
	name := unquote(p.Working.SpanContents(parts[1]))

	var sigSpan, bodySpan source.Span
	bodyIdx := -1
	for i := 2; i < len(parts); i++ {
		text := p.Working.SpanContents(parts[i])
		if len(text) > 0 && text[0] == '{' {
			bodyIdx = i
			break
		}
	}
	if bodyIdx == -1 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "def needs a body block"})
		return p.garbageExpr(spanUnion(parts))
	}
	if bodyIdx > 2 {
		sigSpan = spanUnion(parts[2:bodyIdx])
	}
	bodySpan = parts[bodyIdx]

	sig := Signature{Name: name}
	if sigSpan.End > sigSpan.Start {
		sig = p.parseSignature(sigSpan)
		sig.Name = name
	}
	declID := p.Working.AddDecl(name, sig)

	p.Working.EnterScope()
	bindSignatureVars(p.Working, &sig)
	body := p.parseSubBlock(stripBracketsSpan(bodySpan))
	body.Signature = sig
	p.Working.ExitScope()
	*p.Working.DeclSignature(declID) = sig

	blockID := p.Working.AddBlock(body)
	inner := &Expression{Expr: BlockExpr{Block: blockID}, ExprSpan: bodySpan, Type: Type{Kind: TBlock}}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "def", Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseExtern handles `extern <name> [<signature>]`: declaration only,
// no body block, for an external binary whose call shape this front
// end should still validate.
func (p *Parser) parseExtern(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "extern needs a name"})
		return p.garbageExpr(spanUnion(parts))
	}
	name := unquote(p.Working.SpanContents(parts[1]))
	sig := Signature{Name: name, AllowsUnknownArgs: true}
	if len(parts) > 2 {
		sig = p.parseSignature(spanUnion(parts[2:]))
		sig.Name = name
	}
	p.Working.AddDecl(name, sig)
	inner := &Expression{Expr: StringExpr{Value: name}, ExprSpan: parts[1], Type: Type{Kind: TString}}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "extern", Inner: inner},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseSignature parses the bracketed "[a: int, --flag(-f): string, ...rest]"
// signature grammar shared by def, extern and closures.
func (p *Parser) parseSignature(span source.Span) Signature {
	inner := span
	text := p.Working.SpanContents(span)
	if len(text) >= 2 && text[0] == '[' && text[len(text)-1] == ']' {
		inner = stripBracketsSpan(span)
	}
	var sig Signature
	for _, part := range splitTopLevel(p.Working, inner, ',') {
		text := strings.TrimSpace(string(p.Working.SpanContents(part)))
		if text == "" {
			continue
		}
		p.parseSignatureEntry(&sig, text)
	}
	return sig
}

func (p *Parser) parseSignatureEntry(sig *Signature, text string) {
	desc := ""
	if idx := strings.Index(text, "#"); idx >= 0 {
		desc = strings.TrimSpace(text[idx+1:])
		text = strings.TrimSpace(text[:idx])
	}
	switch {
	case strings.HasPrefix(text, "--"):
		flag := parseFlagSpelling(text[2:])
		flag.Desc = desc
		sig.Named = append(sig.Named, flag)
	case strings.HasPrefix(text, "..."):
		pa := parsePositionalSpelling(text[3:])
		pa.Desc = desc
		sig.RestPositional = &pa
	case strings.HasSuffix(text, "?"):
		pa := parsePositionalSpelling(strings.TrimSuffix(text, "?"))
		pa.Desc = desc
		sig.OptionalPositional = append(sig.OptionalPositional, pa)
	default:
		pa := parsePositionalSpelling(text)
		pa.Desc = desc
		sig.RequiredPositional = append(sig.RequiredPositional, pa)
	}
}

func parsePositionalSpelling(text string) PositionalArg {
	name, typ, hasType := strings.Cut(text, ":")
	name = strings.TrimSpace(name)
	shape := SyntaxShape{Kind: ShapeAny}
	if hasType {
		shape = shapeFromTypeName(strings.TrimSpace(typ))
	}
	return PositionalArg{Name: name, Shape: shape}
}

func parseFlagSpelling(text string) Flag {
	spelling, typeName, hasType := strings.Cut(text, ":")
	name, rest, hasShort := strings.Cut(spelling, "(-")
	flag := Flag{Long: strings.TrimSpace(name)}
	if hasShort {
		rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), ")"))
		if len(rest) > 0 {
			flag.Short = rune(rest[0])
			flag.HasShort = true
		}
	}
	if hasType {
		shape := shapeFromTypeName(strings.TrimSpace(typeName))
		flag.Arg = &shape
	}
	return flag
}
