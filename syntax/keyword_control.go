package syntax

import "github.com/nuflow/nuparse/source"

// parseKeyword is the dispatch table the pipeline-element parser calls
// once recognizedKeyword has matched a command's head.
func (p *Parser) parseKeyword(kw string, parts []source.Span) *Expression {
	switch kw {
	case "let", "mut", "const":
		return p.parseLetLike(kw, parts)
	case "def":
		return p.parseDef(parts)
	case "module":
		return p.parseModule(parts)
	case "use":
		return p.parseUse(parts)
	case "overlay":
		return p.parseOverlay(parts)
	case "export":
		return p.parseExport(parts)
	case "alias":
		return p.parseAlias(parts)
	case "hide":
		return p.parseHide(parts)
	case "source":
		return p.parseSource(parts)
	case "for":
		return p.parseFor(parts)
	case "while":
		return p.parseWhile(parts)
	case "loop":
		return p.parseLoop(parts)
	case "if":
		return p.parseIf(parts)
	case "match":
		return p.parseMatch(parts)
	case "extern":
		return p.parseExtern(parts)
	case "register":
		return p.parseRegister(parts)
	case "plugin":
		return p.parsePlugin(parts)
	default:
		return p.parseCallExpr(parts)
	}
}

// parseFor handles `for <var> in <expr> { <body> }`.
func (p *Parser) parseFor(parts []source.Span) *Expression {
	if len(parts) < 5 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "for needs a variable, an `in` expression and a body"})
		return p.garbageExpr(spanUnion(parts))
	}
	varName := unquote(p.Working.SpanContents(parts[1]))
	bodyIdx := len(parts) - 1
	iterSpan := spanUnion(parts[3:bodyIdx])
	iter := p.parseExpression(iterSpan)

	p.Working.EnterScope()
	varID := p.Working.AddVariable(varName, Type{Kind: TAny}, false)
	body := p.parseSubBlock(stripBracketsSpan(parts[bodyIdx]))
	p.Working.ExitScope()
	blockID := p.Working.AddBlock(body)

	call := &Call{
		Head: parts[0],
		ParserInfo: map[string]*Expression{
			"iterable": iter,
			"body":     {Expr: BlockExpr{Block: blockID}, ExprSpan: parts[bodyIdx], Type: Type{Kind: TBlock}},
			"var":      {Expr: VarExpr{Var: varID}, ExprSpan: parts[1], Type: Type{Kind: TAny}},
		},
	}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "for", Inner: &Expression{Expr: CallExpr{Call: call}, ExprSpan: spanUnion(parts), Type: Type{Kind: TNothing}}},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

func (p *Parser) parseWhile(parts []source.Span) *Expression {
	if len(parts) < 3 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "while needs a condition and a body"})
		return p.garbageExpr(spanUnion(parts))
	}
	bodyIdx := len(parts) - 1
	condSpan := spanUnion(parts[1:bodyIdx])
	cond := p.parseExpression(condSpan)
	p.Working.EnterScope()
	body := p.parseSubBlock(stripBracketsSpan(parts[bodyIdx]))
	p.Working.ExitScope()
	blockID := p.Working.AddBlock(body)
	call := &Call{Head: parts[0], ParserInfo: map[string]*Expression{
		"cond": cond,
		"body": {Expr: BlockExpr{Block: blockID}, ExprSpan: parts[bodyIdx], Type: Type{Kind: TBlock}},
	}}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "while", Inner: &Expression{Expr: CallExpr{Call: call}, ExprSpan: spanUnion(parts), Type: Type{Kind: TNothing}}},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

func (p *Parser) parseLoop(parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "loop needs a body"})
		return p.garbageExpr(spanUnion(parts))
	}
	bodyIdx := len(parts) - 1
	p.Working.EnterScope()
	body := p.parseSubBlock(stripBracketsSpan(parts[bodyIdx]))
	p.Working.ExitScope()
	blockID := p.Working.AddBlock(body)
	call := &Call{Head: parts[0], ParserInfo: map[string]*Expression{
		"body": {Expr: BlockExpr{Block: blockID}, ExprSpan: parts[bodyIdx], Type: Type{Kind: TBlock}},
	}}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "loop", Inner: &Expression{Expr: CallExpr{Call: call}, ExprSpan: spanUnion(parts), Type: Type{Kind: TNothing}}},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}

// parseIf handles `if <cond> { <then> } [else [if <cond2>] { <else> }]`,
// recursing for an `else if` chain.
func (p *Parser) parseIf(parts []source.Span) *Expression {
	if len(parts) < 3 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "if needs a condition and a body"})
		return p.garbageExpr(spanUnion(parts))
	}
	thenIdx := -1
	for i := 1; i < len(parts); i++ {
		if len(p.Working.SpanContents(parts[i])) > 0 && p.Working.SpanContents(parts[i])[0] == '{' {
			thenIdx = i
			break
		}
	}
	if thenIdx == -1 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "if needs a body block"})
		return p.garbageExpr(spanUnion(parts))
	}
	condSpan := spanUnion(parts[1:thenIdx])
	cond := p.parseRowConditionTopLevel(condSpan)

	p.Working.EnterScope()
	thenBlock := p.parseSubBlock(stripBracketsSpan(parts[thenIdx]))
	p.Working.ExitScope()
	thenID := p.Working.AddBlock(thenBlock)

	call := &Call{Head: parts[0], ParserInfo: map[string]*Expression{
		"cond": cond,
		"then": {Expr: BlockExpr{Block: thenID}, ExprSpan: parts[thenIdx], Type: Type{Kind: TBlock}},
	}}

	if thenIdx+1 < len(parts) {
		text := string(p.Working.SpanContents(parts[thenIdx+1]))
		if text == "else" {
			elseParts := parts[thenIdx+2:]
			if len(elseParts) > 0 && string(p.Working.SpanContents(elseParts[0])) == "if" {
				call.ParserInfo["else"] = p.parseIf(elseParts)
			} else if len(elseParts) > 0 {
				p.Working.EnterScope()
				elseBlock := p.parseSubBlock(stripBracketsSpan(elseParts[0]))
				p.Working.ExitScope()
				elseID := p.Working.AddBlock(elseBlock)
				call.ParserInfo["else"] = &Expression{Expr: BlockExpr{Block: elseID}, ExprSpan: elseParts[0], Type: Type{Kind: TBlock}}
			}
		}
	}
	return &Expression{
		Expr:     KeywordExpr{Keyword: "if", Inner: &Expression{Expr: CallExpr{Call: call}, ExprSpan: spanUnion(parts), Type: Type{Kind: TAny}}},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TAny},
	}
}

// parseRowConditionTopLevel parses an `if`/`while` condition as an
// ordinary boolean expression rather than the `$it`-implicit row
// condition `where` uses — the two share parseMathExpression but differ
// in whether an implicit subject variable is bound.
func (p *Parser) parseRowConditionTopLevel(span source.Span) *Expression {
	return p.parseExpression(span)
}

// parseMatch handles `match <subject> { <arms> }`.
func (p *Parser) parseMatch(parts []source.Span) *Expression {
	if len(parts) < 3 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: "match needs a subject and arms"})
		return p.garbageExpr(spanUnion(parts))
	}
	subjectSpan := spanUnion(parts[1 : len(parts)-1])
	subject := p.parseExpression(subjectSpan)
	armsSpan := stripBracketsSpan(parts[len(parts)-1])
	var armSpans []source.Span
	for _, line := range splitTopLevel(p.Working, armsSpan, '\n') {
		for _, arm := range splitTopLevel(p.Working, line, ',') {
			if arm.End > arm.Start {
				armSpans = append(armSpans, arm)
			}
		}
	}
	arms := p.parseMatchArms(armSpans)
	return &Expression{
		Expr:     MatchBlockExpr{Subject: subject, Arms: arms},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TAny},
	}
}
