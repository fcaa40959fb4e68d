package syntax

import (
	"github.com/nuflow/nuparse/source"
)

// parseLetLike handles let/mut/const, all of which share the shape
// "<name>[: <type>] = <rhs>" and differ only in mutability. const is
// parsed exactly like let: its right-hand side is not checked for being
// a compile-time constant.
func (p *Parser) parseLetLike(keyword string, parts []source.Span) *Expression {
	if len(parts) < 2 {
		p.Working.Error(&ParseError{Kind: ErrMissingPositional, Span: spanUnion(parts), Message: keyword + " needs a name and a value"})
		return p.garbageExpr(spanUnion(parts))
	}
	nameSpan := parts[1]
	nameText := string(p.Working.SpanContents(nameSpan))
	var declaredType Type
	hasType := false
	eqIdx := 2
	if eqIdx < len(parts) {
		eqText := string(p.Working.SpanContents(parts[eqIdx]))
		if eqText != "=" && len(eqText) > 0 && eqText[0] == ':' {
			declaredType = shapeFromTypeName(eqText[1:]).ResultType()
			hasType = true
			eqIdx++
		}
	}
	var rhs *Expression
	if eqIdx+1 < len(parts) {
		rhsSpan := spanUnion(parts[eqIdx+1:])
		rhs = p.parseExpression(rhsSpan)
	} else {
		rhs = p.garbageExpr(spanUnion(parts))
	}
	typ := rhs.Type
	if hasType {
		typ = declaredType
	}
	varId := p.Working.AddVariable(nameText, typ, keyword == "mut")
	decl := VarDeclExpr{Var: varId, Name: nameText, Mutable: keyword == "mut", HasType: hasType, Declared: declaredType}
	declExpr := &Expression{Expr: decl, ExprSpan: nameSpan, Type: typ}
	return &Expression{
		Expr:     KeywordExpr{Keyword: keyword, Inner: &Expression{Expr: BinaryExpr{Op: OpAssign, Lhs: declExpr, Rhs: rhs}, ExprSpan: spanUnion(parts), Type: typ}},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TNothing},
	}
}
