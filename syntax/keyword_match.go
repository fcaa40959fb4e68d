package syntax

import (
	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/source"
)

// PatternKind is the closed set of match-arm pattern forms.
type PatternKind int

const (
	PatternLiteral PatternKind = iota
	PatternVariable
	PatternList
	PatternRecord
	PatternRest
	PatternOr
	PatternWildcard
	PatternGarbage
)

// Pattern is one arm-level pattern; a MatchArm carries one or more (an
// or-pattern is expressed as multiple top-level Patterns on the same arm
// rather than nested, matching how `1 | 2 | 3 => ...` reads).
type Pattern struct {
	Kind PatternKind

	// PatternLiteral
	Literal *Expression

	// PatternVariable: binds the whole matched value to a fresh VarId.
	Var     ids.VarId
	VarName string

	// PatternList: each element is itself a Pattern; one element may be
	// PatternRest to collect the remaining items.
	List []Pattern

	// PatternRecord
	RecordKeys []string
	RecordVals []Pattern

	// PatternRest: binds the collected remainder within a PatternList.
	RestVar     ids.VarId
	RestVarName string
}

// parseMatchPattern parses a single pattern from the span belonging to
// one token of a match arm's pattern list. Patterns never span a lite
// command boundary: each pattern word/bracketed-group is its own span
// from the lite parser, mirroring how a call argument is its own span.
func (p *Parser) parseMatchPattern(span source.Span) Pattern {
	text := p.Working.SpanContents(span)
	switch {
	case len(text) == 0:
		return Pattern{Kind: PatternGarbage}
	case text[0] == '_' && len(text) == 1:
		return Pattern{Kind: PatternWildcard}
	case text[0] == '$':
		name := string(text[1:])
		v := p.Working.AddVariable(name, Type{Kind: TAny}, false)
		return Pattern{Kind: PatternVariable, Var: v, VarName: name}
	case text[0] == '.' && len(text) >= 2 && text[1] == '.':
		name := string(text[2:])
		var v ids.VarId
		if name != "" {
			v = p.Working.AddVariable(name, Type{Kind: TList}, false)
		}
		return Pattern{Kind: PatternRest, RestVar: v, RestVarName: name}
	case text[0] == '[':
		return p.parseListPattern(span)
	case text[0] == '{':
		return p.parseRecordPattern(span)
	default:
		expr := p.parseValue(span, SyntaxShape{Kind: ShapeAny})
		return Pattern{Kind: PatternLiteral, Literal: expr}
	}
}

// parseListPattern splits the bracketed span on top-level commas and
// parses each element as its own pattern, exactly like parseListLiteral
// does for ordinary list expressions.
func (p *Parser) parseListPattern(span source.Span) Pattern {
	inner := stripBrackets(span)
	elems := splitTopLevel(p.Working, inner, ',')
	out := make([]Pattern, 0, len(elems))
	for _, e := range elems {
		out = append(out, p.parseMatchPattern(e))
	}
	return Pattern{Kind: PatternList, List: out}
}

func (p *Parser) parseRecordPattern(span source.Span) Pattern {
	inner := stripBrackets(span)
	fields := splitTopLevel(p.Working, inner, ',')
	pat := Pattern{Kind: PatternRecord}
	for _, f := range fields {
		k, v, ok := splitOnce(p.Working, f, ':')
		keyName := string(p.Working.SpanContents(k))
		pat.RecordKeys = append(pat.RecordKeys, keyName)
		if ok {
			pat.RecordVals = append(pat.RecordVals, p.parseMatchPattern(v))
		} else {
			v := p.Working.AddVariable(keyName, Type{Kind: TAny}, false)
			pat.RecordVals = append(pat.RecordVals, Pattern{Kind: PatternVariable, Var: v, VarName: keyName})
		}
	}
	return pat
}

// parseMatchArms parses the comma/newline-separated arm list inside a
// match block's braces. Each arm opens its own scope so a variable bound in one arm's pattern is invisible in the
// next arm's guard or body.
func (p *Parser) parseMatchArms(armSpans []source.Span) []MatchArm {
	var arms []MatchArm
	for _, armSpan := range armSpans {
		p.Working.EnterScope()
		arm := p.parseOneArm(armSpan)
		p.Working.ExitScope()
		arms = append(arms, arm)
	}
	return arms
}

// parseOneArm parses "<patterns> [if <guard>] => <body>" out of one
// arm's span, where patterns may be an or-pattern joined by `|`.
func (p *Parser) parseOneArm(armSpan source.Span) MatchArm {
	arrowAt, ok := findKeyword(p.Working, armSpan, "=>")
	if !ok {
		return MatchArm{Body: p.garbageExpr(armSpan)}
	}
	before := source.Span{Start: armSpan.Start, End: arrowAt, File: armSpan.File}
	body := trimSpan(p.Working, source.Span{Start: arrowAt + 2, End: armSpan.End, File: armSpan.File})
	patternPart, guardPart := before, source.Span{}
	if ifAt, found := findKeyword(p.Working, before, "if"); found {
		patternPart = source.Span{Start: before.Start, End: ifAt, File: before.File}
		guardPart = trimSpan(p.Working, source.Span{Start: ifAt + 2, End: before.End, File: before.File})
	}
	var patterns []Pattern
	for _, ps := range splitTopLevel(p.Working, patternPart, '|') {
		patterns = append(patterns, p.parseMatchPattern(ps))
	}
	arm := MatchArm{Patterns: patterns}
	if guardPart.End > guardPart.Start {
		arm.Guard = p.parseExpression(guardPart)
	}
	arm.Body = p.parseExpression(body)
	return arm
}
