// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nuflow/nuparse/pattern"
	"github.com/nuflow/nuparse/source"
)

// parseValue dispatches a single span to the right literal/value parser
// according to the shape the calling position demands.
// Shapes that accept any value (ShapeAny, ShapeExpression) fall through
// to parseExpression, which tries each literal form in turn.
func (p *Parser) parseValue(span source.Span, shape SyntaxShape) *Expression {
	text := p.Working.SpanContents(span)
	switch shape.Kind {
	case ShapeInt:
		return p.parseIntLiteral(span)
	case ShapeNumber:
		if looksLikeFloat(text) {
			return p.parseFloatLiteral(span)
		}
		return p.parseIntLiteral(span)
	case ShapeFloat:
		return p.parseFloatLiteral(span)
	case ShapeString, ShapeVarWithOptType:
		return p.parseStringLiteral(span)
	case ShapeGlobPattern:
		return p.parseGlobPattern(span)
	case ShapeFilepath:
		return &Expression{Expr: FilepathExpr{Raw: unquote(text)}, ExprSpan: span, Type: Type{Kind: TFilepath}}
	case ShapeDirectory:
		return &Expression{Expr: DirectoryExpr{Raw: unquote(text)}, ExprSpan: span, Type: Type{Kind: TDirectory}}
	case ShapeBoolean:
		return p.parseBoolLiteral(span)
	case ShapeFilesize:
		return p.parseFilesizeLiteral(span)
	case ShapeDuration:
		return p.parseDurationLiteral(span)
	case ShapeDateTime:
		return &Expression{Expr: DateTimeExpr{Raw: string(text)}, ExprSpan: span, Type: Type{Kind: TDateTime}}
	case ShapeRange:
		return p.parseRangeLiteral(span)
	case ShapeBlock, ShapeClosure:
		return p.parseBlockOrClosureLiteral(span, shape.Kind == ShapeClosure)
	case ShapeRecord:
		return p.parseRecordLiteral(span)
	case ShapeTable, ShapeList:
		return p.parseListLiteral(span, shape)
	case ShapeCellPath:
		return p.parseCellPath(span)
	case ShapeRowCondition:
		return p.parseRowCondition(span)
	case ShapeMathExpression:
		return p.parseMathExpression(span)
	case ShapeKeyword:
		return p.parseValue(span, derefShape(shape.KeywordRest))
	default:
		return p.parseExpression(span)
	}
}

func derefShape(s *SyntaxShape) SyntaxShape {
	if s == nil {
		return SyntaxShape{Kind: ShapeAny}
	}
	return *s
}

// parseExpression is the shape-free entry point (ShapeAny/ShapeExpression).
// It is precedence climbing over parseOperand leaves:
// a span with no top-level operator word parses as a single operand,
// and one with operators builds up BinaryExpr nodes via parseMathExpression.
func (p *Parser) parseExpression(span source.Span) *Expression {
	return p.parseMathExpression(span)
}

// parseOperand handles the forms that have an unambiguous leading
// marker byte, then falls back to a full cell path.
func (p *Parser) parseOperand(span source.Span) *Expression {
	text := p.Working.SpanContents(span)
	if len(text) == 0 {
		return p.garbageExpr(span)
	}
	switch text[0] {
	case '$':
		return p.parseFullCellPath(span)
	case '[':
		return p.parseListLiteral(span, SyntaxShape{Kind: ShapeList})
	case '{':
		return p.parseRecordOrBlock(span)
	case '"', '\'':
		return p.parseStringLiteral(span)
	}
	if looksLikeInt(text) {
		return p.parseIntLiteral(span)
	}
	if looksLikeFloat(text) {
		return p.parseFloatLiteral(span)
	}
	if string(text) == "true" || string(text) == "false" {
		return p.parseBoolLiteral(span)
	}
	if _, ok := parseFilesize(string(text)); ok && hasFilesizeSuffix(text) {
		return p.parseFilesizeLiteral(span)
	}
	if hasTopLevelRange(text) {
		return p.parseRangeLiteral(span)
	}
	return p.parseFullCellPath(span)
}

// parseFullCellPath parses an optional head ($var, (subexpr), literal)
// followed by a .member/.N/? tail.
func (p *Parser) parseFullCellPath(span source.Span) *Expression {
	text := p.Working.SpanContents(span)
	if len(text) == 0 {
		return p.garbageExpr(span)
	}
	headEnd := span.End
	for i, b := range text {
		if b == '.' && i > 0 {
			headEnd = span.Start + uint32(i)
			break
		}
	}
	headSpan := source.Span{Start: span.Start, End: headEnd, File: span.File}
	tailSpan := source.Span{Start: headEnd, End: span.End, File: span.File}

	var head *Expression
	headText := p.Working.SpanContents(headSpan)
	if len(headText) > 0 && headText[0] == '$' {
		head = p.parseVarRef(headSpan)
	} else {
		head = p.parseBareValue(headSpan)
	}
	if tailSpan.Start >= tailSpan.End {
		return head
	}
	members := p.parseCellPathMembers(tailSpan)
	return &Expression{
		Expr:     FullCellPathExpr{Head: head, Tail: members},
		ExprSpan: span,
		Type:     Type{Kind: TAny},
	}
}

func (p *Parser) parseVarRef(span source.Span) *Expression {
	text := p.Working.SpanContents(span)
	name := string(text[1:])
	id, ok := p.Working.FindVariable(name)
	if !ok {
		p.Working.Error(&ParseError{Kind: ErrVariableNotFound, Span: span, Message: "variable not found: $" + name, Suggestion: p.suggestVariable(name)})
		return p.garbageExpr(span)
	}
	return &Expression{Expr: VarExpr{Var: id}, ExprSpan: span, Type: p.Working.VarType(id)}
}

// parseBareValue parses a head that is not a $var: a literal, a
// parenthesised subexpression, or a bare word taken as a string.
func (p *Parser) parseBareValue(span source.Span) *Expression {
	text := p.Working.SpanContents(span)
	if len(text) >= 2 && text[0] == '(' && text[len(text)-1] == ')' {
		inner := stripBracketsSpan(span)
		block := p.parseSubBlock(inner)
		id := p.Working.AddBlock(block)
		return &Expression{Expr: SubexpressionExpr{Block: id}, ExprSpan: span, Type: Type{Kind: TAny}}
	}
	if looksLikeExpressionHead(text) {
		return p.parseExpression(span)
	}
	return p.parseStringLiteral(span)
}

// parseCellPathMembers splits the byte span on '.' (outside quotes/brackets)
// into PathMembers, honoring a trailing '?' on any member as optional
// access.
func (p *Parser) parseCellPathMembers(span source.Span) []PathMember {
	parts := splitTopLevel(p.Working, span, '.')
	var out []PathMember
	for _, part := range parts {
		text := p.Working.SpanContents(part)
		if len(text) == 0 {
			continue
		}
		m := PathMember{}
		if text[len(text)-1] == '?' {
			m.Optional = true
			text = text[:len(text)-1]
		}
		if n, err := strconv.ParseInt(string(text), 10, 64); err == nil {
			m.IsInt = true
			m.Int = n
		} else {
			m.Name = unquote(text)
		}
		out = append(out, m)
	}
	return out
}

func (p *Parser) parseCellPath(span source.Span) *Expression {
	members := p.parseCellPathMembers(span)
	return &Expression{Expr: CellPathExpr{Members: members}, ExprSpan: span, Type: Type{Kind: TCellPath}}
}

func (p *Parser) parseIntLiteral(span source.Span) *Expression {
	text := string(p.Working.SpanContents(span))
	n, err := strconv.ParseInt(strings.ReplaceAll(text, "_", ""), 0, 64)
	if err != nil {
		p.Working.Error(&ParseError{Kind: ErrInvalidLiteral, Span: span, Message: "invalid integer: " + text})
		return p.garbageExpr(span)
	}
	return &Expression{Expr: IntExpr{Value: n}, ExprSpan: span, Type: Type{Kind: TInt}}
}

func (p *Parser) parseFloatLiteral(span source.Span) *Expression {
	text := string(p.Working.SpanContents(span))
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		p.Working.Error(&ParseError{Kind: ErrInvalidLiteral, Span: span, Message: "invalid float: " + text})
		return p.garbageExpr(span)
	}
	return &Expression{Expr: FloatExpr{Value: f}, ExprSpan: span, Type: Type{Kind: TFloat}}
}

func (p *Parser) parseBoolLiteral(span source.Span) *Expression {
	text := string(p.Working.SpanContents(span))
	return &Expression{Expr: BoolExpr{Value: text == "true"}, ExprSpan: span, Type: Type{Kind: TBool}}
}

func (p *Parser) parseStringLiteral(span source.Span) *Expression {
	text := p.Working.SpanContents(span)
	if hasInterpolationParts(text) {
		return p.parseStringInterpolation(span)
	}
	return &Expression{Expr: StringExpr{Value: unquote(text)}, ExprSpan: span, Type: Type{Kind: TString}}
}

func (p *Parser) parseStringInterpolation(span source.Span) *Expression {
	text := p.Working.SpanContents(span)
	inner := text
	if len(inner) >= 3 {
		inner = inner[2 : len(inner)-1] // strip the $" ... " or $'...' quotes
	} else {
		inner = inner[len(inner):]
	}
	innerSpan := source.Span{Start: span.Start + uint32(len(text)-len(inner)-1), End: span.End - 1, File: span.File}
	var parts []*Expression
	start := innerSpan.Start
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(':
			if depth == 0 && i+int(start-innerSpan.Start) >= 0 {
				if start < innerSpan.Start+uint32(i) {
					lit := source.Span{Start: start, End: innerSpan.Start + uint32(i), File: span.File}
					parts = append(parts, &Expression{Expr: StringExpr{Value: string(p.Working.SpanContents(lit))}, ExprSpan: lit, Type: Type{Kind: TString}})
				}
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				sub := source.Span{Start: innerSpan.Start + uint32(i) - uint32(countParenRun(inner, i)), End: innerSpan.Start + uint32(i) + 1, File: span.File}
				parts = append(parts, p.parseBareValue(sub))
				start = sub.End
			}
		}
	}
	if start < innerSpan.End {
		tail := source.Span{Start: start, End: innerSpan.End, File: span.File}
		parts = append(parts, &Expression{Expr: StringExpr{Value: string(p.Working.SpanContents(tail))}, ExprSpan: tail, Type: Type{Kind: TString}})
	}
	return &Expression{Expr: StringInterpolationExpr{Parts: parts}, ExprSpan: span, Type: Type{Kind: TString}}
}

func countParenRun(s []byte, end int) int {
	depth := 1
	for i := end - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return end - i
			}
		}
	}
	return end
}

// parseGlobPattern parses a bare or quoted glob literal. The raw text is
// validated against POSIX pattern-matching syntax via pattern.Regexp so a
// malformed glob (an unterminated bracket expression, say) becomes a
// recorded ParseError instead of silently reaching evaluation.
func (p *Parser) parseGlobPattern(span source.Span) *Expression {
	text := p.Working.SpanContents(span)
	hasQuotes := len(text) > 0 && (text[0] == '"' || text[0] == '\'')
	raw := unquote(text)
	if !hasQuotes {
		if _, err := pattern.Regexp(raw, pattern.Filenames); err != nil {
			p.Working.Error(&ParseError{Kind: ErrInvalidLiteral, Span: span, Message: "invalid glob pattern: " + err.Error()})
		}
	}
	return &Expression{Expr: GlobPatternExpr{Raw: raw, HasQuotes: hasQuotes}, ExprSpan: span, Type: Type{Kind: TGlobPattern}}
}

// parseFilesizeLiteral parses nushell filesize suffixes (10mb, 2.5GiB)
// by reusing go-humanize's byte-size parser, then remembering the
// original suffix as the Unit.
func (p *Parser) parseFilesizeLiteral(span source.Span) *Expression {
	text := string(p.Working.SpanContents(span))
	bytes, ok := parseFilesize(text)
	if !ok {
		p.Working.Error(&ParseError{Kind: ErrInvalidLiteral, Span: span, Message: "invalid filesize: " + text})
		return p.garbageExpr(span)
	}
	unit := strings.TrimLeft(text, "0123456789._")
	val := &Expression{Expr: IntExpr{Value: bytes}, ExprSpan: span, Type: Type{Kind: TInt}}
	return &Expression{Expr: ValueWithUnitExpr{Value: val, Unit: unit}, ExprSpan: span, Type: Type{Kind: TFilesize}}
}

func hasFilesizeSuffix(text []byte) bool {
	i := len(text)
	for i > 0 && !isDigit(text[i-1]) {
		i--
	}
	return i < len(text)
}

func parseFilesize(text string) (int64, bool) {
	n, err := humanize.ParseBytes(text)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

var durationUnits = []string{"ns", "us", "µs", "ms", "sec", "min", "hr", "day", "wk"}

func (p *Parser) parseDurationLiteral(span source.Span) *Expression {
	text := string(p.Working.SpanContents(span))
	for _, u := range durationUnits {
		if strings.HasSuffix(text, u) {
			numText := strings.TrimSuffix(text, u)
			f, err := strconv.ParseFloat(numText, 64)
			if err != nil {
				break
			}
			val := &Expression{Expr: FloatExpr{Value: f}, ExprSpan: span, Type: Type{Kind: TFloat}}
			return &Expression{Expr: ValueWithUnitExpr{Value: val, Unit: u}, ExprSpan: span, Type: Type{Kind: TDuration}}
		}
	}
	p.Working.Error(&ParseError{Kind: ErrInvalidLiteral, Span: span, Message: "invalid duration: " + text})
	return p.garbageExpr(span)
}

func (p *Parser) parseRangeLiteral(span source.Span) *Expression {
	text := p.Working.SpanContents(span)
	incl := RangeInclusive
	sepIdx, sepLen := -1, 2
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '.' && text[i+1] == '.' {
			sepIdx = i
			if i+2 < len(text) && text[i+2] == '<' {
				incl = RangeExclusive
				sepLen = 3
			} else if i+2 < len(text) && text[i+2] == '=' {
				incl = RangeInclusive
				sepLen = 3
			} else {
				incl = RangeUnbounded
			}
			break
		}
	}
	if sepIdx < 0 {
		return p.garbageExpr(span)
	}
	rng := RangeExpr{Inclusion: incl}
	if sepIdx > 0 {
		fromSpan := source.Span{Start: span.Start, End: span.Start + uint32(sepIdx), File: span.File}
		rng.From = p.parseExpression(fromSpan)
	}
	toStart := sepIdx + sepLen
	if toStart < len(text) {
		toSpan := source.Span{Start: span.Start + uint32(toStart), End: span.End, File: span.File}
		rng.To = p.parseExpression(toSpan)
	}
	if rng.From == nil && rng.To == nil {
		p.Working.Error(&ParseError{Kind: ErrInvalidLiteral, Span: span, Message: "a range needs at least one bound"})
		return p.garbageExpr(span)
	}
	return &Expression{Expr: rng, ExprSpan: span, Type: Type{Kind: TRange}}
}

func (p *Parser) parseRowCondition(span source.Span) *Expression {
	p.Working.EnterScope()
	itVar := p.Working.AddVariable("it", Type{Kind: TAny}, false)
	inner := p.parseExpression(span)
	p.Working.ExitScope()
	sig := Signature{RequiredPositional: []PositionalArg{{Name: "it", Shape: SyntaxShape{Kind: ShapeAny}, VarId: itVar, HasVarId: true}}}
	blk := &Block{Signature: sig, Pipelines: []Pipeline{{Elements: []PipelineElement{{Expr: inner}}}}}
	id := p.Working.AddBlock(blk)
	return &Expression{Expr: RowConditionExpr{Block: id}, ExprSpan: span, Type: Type{Kind: TBool}}
}

func (p *Parser) parseBlockOrClosureLiteral(span source.Span, closure bool) *Expression {
	inner := stripBracketsSpan(span)
	var sig *Signature
	text := p.Working.SpanContents(inner)
	body := inner
	if len(text) > 0 && text[0] == '|' {
		for i := 1; i < len(text); i++ {
			if text[i] == '|' {
				sigSpan := source.Span{Start: inner.Start + 1, End: inner.Start + uint32(i), File: inner.File}
				s := p.parseClosureSignature(sigSpan)
				sig = &s
				body = source.Span{Start: inner.Start + uint32(i) + 1, End: inner.End, File: inner.File}
				break
			}
		}
	}
	p.Working.EnterScope()
	if sig != nil {
		bindSignatureVars(p.Working, sig)
	}
	block := p.parseSubBlock(body)
	if sig != nil {
		block.Signature = *sig
	}
	p.Working.ExitScope()
	id := p.Working.AddBlock(block)
	if closure {
		return &Expression{Expr: ClosureExpr{Block: id}, ExprSpan: span, Type: Type{Kind: TClosure}}
	}
	return &Expression{Expr: BlockExpr{Block: id}, ExprSpan: span, Type: Type{Kind: TBlock}}
}

func bindSignatureVars(ws *WorkingSet, sig *Signature) {
	for i := range sig.RequiredPositional {
		sig.RequiredPositional[i].VarId = ws.AddVariable(sig.RequiredPositional[i].Name, sig.RequiredPositional[i].Shape.ResultType(), false)
		sig.RequiredPositional[i].HasVarId = true
	}
	for i := range sig.OptionalPositional {
		sig.OptionalPositional[i].VarId = ws.AddVariable(sig.OptionalPositional[i].Name, sig.OptionalPositional[i].Shape.ResultType(), false)
		sig.OptionalPositional[i].HasVarId = true
	}
	if sig.RestPositional != nil {
		sig.RestPositional.VarId = ws.AddVariable(sig.RestPositional.Name, Type{Kind: TList}, false)
		sig.RestPositional.HasVarId = true
	}
}

func (p *Parser) parseClosureSignature(span source.Span) Signature {
	var sig Signature
	for _, part := range splitTopLevel(p.Working, span, ',') {
		text := string(p.Working.SpanContents(part))
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		name, typ, hasType := strings.Cut(text, ":")
		pa := PositionalArg{Name: strings.TrimPrefix(name, "$"), Shape: SyntaxShape{Kind: ShapeAny}}
		if hasType {
			pa.Shape = shapeFromTypeName(strings.TrimSpace(typ))
		}
		sig.RequiredPositional = append(sig.RequiredPositional, pa)
	}
	return sig
}

func shapeFromTypeName(name string) SyntaxShape {
	switch name {
	case "int":
		return SyntaxShape{Kind: ShapeInt}
	case "string":
		return SyntaxShape{Kind: ShapeString}
	case "bool":
		return SyntaxShape{Kind: ShapeBoolean}
	case "float", "number":
		return SyntaxShape{Kind: ShapeNumber}
	case "list":
		return SyntaxShape{Kind: ShapeList}
	case "record":
		return SyntaxShape{Kind: ShapeRecord}
	default:
		return SyntaxShape{Kind: ShapeAny}
	}
}

// parseSubBlock parses a nested block body in its own fresh LiteParser
// pass over the already-lexed span (spans are always re-lexed rather
// than re-sliced tokens, so a nested block can itself contain
// delimiter-balanced items).
func (p *Parser) parseSubBlock(span source.Span) *Block {
	toks, lexErrs := LexSpan(p.Working.Map, span)
	for _, le := range lexErrs {
		p.Working.Error(le)
	}
	lp := NewLiteParser(toks)
	lite := lp.Parse()
	blk := p.parseLiteBlock(lite, nil)
	blk.HasSpan, blk.BlockSpan = true, span
	return blk
}

func (p *Parser) parseRecordOrBlock(span source.Span) *Expression {
	inner := stripBracketsSpan(span)
	text := p.Working.SpanContents(inner)
	if looksLikeRecordBody(text) {
		return p.parseRecordLiteral(span)
	}
	return p.parseBlockOrClosureLiteral(span, false)
}

func looksLikeRecordBody(text []byte) bool {
	depth := 0
	for i, b := range text {
		switch b {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return true
			}
		case '|':
			if depth == 0 {
				return false
			}
		}
		_ = i
	}
	return false
}

func (p *Parser) parseRecordLiteral(span source.Span) *Expression {
	inner := stripBracketsSpan(span)
	fields := splitTopLevel(p.Working, inner, ',')
	rec := RecordExpr{}
	for _, f := range fields {
		keySpan, valSpan, ok := splitOnce(p.Working, f, ':')
		if !ok {
			continue
		}
		rec.Keys = append(rec.Keys, p.parseExpression(trimSpan(p.Working, keySpan)))
		rec.Values = append(rec.Values, p.parseExpression(trimSpan(p.Working, valSpan)))
	}
	return &Expression{Expr: rec, ExprSpan: span, Type: Type{Kind: TRecord}}
}

func (p *Parser) parseListLiteral(span source.Span, shape SyntaxShape) *Expression {
	inner := stripBracketsSpan(span)
	items := splitTopLevel(p.Working, inner, ',')
	lst := ListExpr{}
	elemShape := SyntaxShape{Kind: ShapeAny}
	if shape.Elem != nil {
		elemShape = *shape.Elem
	}
	for _, it := range items {
		it = trimSpan(p.Working, it)
		if it.Start >= it.End {
			continue
		}
		lst.Items = append(lst.Items, p.parseValue(it, elemShape))
	}
	elem := elemShape.ResultType()
	return &Expression{Expr: lst, ExprSpan: span, Type: Type{Kind: TList, Elem: &elem}}
}

// --- byte-level span helpers shared across this file and keyword_*.go ---

func unquote(text []byte) string {
	if len(text) >= 2 {
		if (text[0] == '"' && text[len(text)-1] == '"') || (text[0] == '\'' && text[len(text)-1] == '\'') {
			return string(text[1 : len(text)-1])
		}
	}
	return string(text)
}

func stripBrackets(span source.Span) source.Span { return stripBracketsSpan(span) }

func stripBracketsSpan(span source.Span) source.Span {
	if span.End-span.Start < 2 {
		return span
	}
	return source.Span{Start: span.Start + 1, End: span.End - 1, File: span.File}
}

func trimSpan(ws *WorkingSet, span source.Span) source.Span {
	text := ws.SpanContents(span)
	start, end := span.Start, span.End
	for start < end && isSpaceByte(text[start-span.Start]) {
		start++
	}
	for end > start && isSpaceByte(text[end-span.Start-1]) {
		end--
	}
	return source.Span{Start: start, End: end, File: span.File}
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

// splitTopLevel splits span on every occurrence of sep that is not
// nested inside (), [], {} or a quoted string, mirroring how the lexer
// itself only splits on whitespace outside such groups.
func splitTopLevel(ws *WorkingSet, span source.Span, sep byte) []source.Span {
	text := ws.SpanContents(span)
	var out []source.Span
	depth := 0
	var quote byte
	start := span.Start
	for i, b := range text {
		pos := span.Start + uint32(i)
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, trimSpan(ws, source.Span{Start: start, End: pos, File: span.File}))
				start = pos + 1
			}
		}
	}
	if start < span.End {
		out = append(out, trimSpan(ws, source.Span{Start: start, End: span.End, File: span.File}))
	}
	return out
}

// splitOnce is splitTopLevel limited to the first top-level occurrence
// of sep, returning ok=false when sep never appears outside nesting.
func splitOnce(ws *WorkingSet, span source.Span, sep byte) (before, after source.Span, ok bool) {
	text := ws.SpanContents(span)
	depth := 0
	var quote byte
	for i, b := range text {
		pos := span.Start + uint32(i)
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return source.Span{Start: span.Start, End: pos, File: span.File},
					source.Span{Start: pos + 1, End: span.End, File: span.File}, true
			}
		}
	}
	return source.Span{}, source.Span{}, false
}

// findKeyword locates the top-level occurrence of a bare keyword word
// (surrounded by whitespace or span boundaries) inside span, used by
// the match-arm parser to split "<pattern> if <guard>".
func findKeyword(ws *WorkingSet, span source.Span, kw string) (uint32, bool) {
	text := ws.SpanContents(span)
	kb := []byte(kw)
	depth := 0
	var quote byte
	for i := 0; i+len(kb) <= len(text); i++ {
		b := text[i]
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
			continue
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if string(text[i:i+len(kb)]) != kw {
			continue
		}
		atStart := i == 0 || isSpaceByte(text[i-1])
		atEnd := i+len(kb) == len(text) || isSpaceByte(text[i+len(kb)])
		if atStart && atEnd {
			return span.Start + uint32(i), true
		}
	}
	return 0, false
}

func looksLikeInt(text []byte) bool {
	i := 0
	if len(text) > 0 && (text[0] == '+' || text[0] == '-') {
		i = 1
	}
	if i >= len(text) {
		return false
	}
	for ; i < len(text); i++ {
		if !isDigit(text[i]) && text[i] != '_' {
			return false
		}
	}
	return true
}

func looksLikeFloat(text []byte) bool {
	hasDot, hasDigit := false, false
	i := 0
	if len(text) > 0 && (text[0] == '+' || text[0] == '-') {
		i = 1
	}
	for ; i < len(text); i++ {
		switch {
		case isDigit(text[i]):
			hasDigit = true
		case text[i] == '.':
			hasDot = true
		case text[i] == '_':
		default:
			return false
		}
	}
	return hasDot && hasDigit
}

func hasInterpolationParts(text []byte) bool {
	return len(text) > 1 && text[0] == '$' && (text[1] == '"' || text[1] == '\'')
}

func hasTopLevelRange(text []byte) bool {
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '.' && text[i+1] == '.' {
			return true
		}
	}
	return false
}
