package syntax

import "github.com/nuflow/nuparse/source"

// MathOperator is the closed set of binary operators recognised by
// parseMathExpression. Spelling matches the bare words the lexer already
// produced as Item spans; there is no separate operator-token kind at the
// lexer level.
type MathOperator int

const (
	OpInvalid MathOperator = iota
	OpAdd                 // +
	OpSub                 // -
	OpMul                 // *
	OpDiv                 // /
	OpFloorDiv            // //
	OpMod                 // mod
	OpPow                 // **
	OpEq                  // ==
	OpNeq                 // !=
	OpLt                  // <
	OpLte                 // <=
	OpGt                  // >
	OpGte                 // >=
	OpAnd                 // and
	OpOr                  // or
	OpXor                 // xor
	OpIn                  // in
	OpNotIn               // not-in
	OpLike                // =~ / like
	OpNotLike             // !~ / not-like
	OpConcat              // ++
	OpBitOr               // bit-or
	OpBitAnd              // bit-and
	OpBitXor              // bit-xor
	OpShl                 // bit-shl
	OpShr                 // bit-shr
	OpAssign              // =
)

var mathOpWords = map[string]MathOperator{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "//": OpFloorDiv,
	"mod": OpMod, "**": OpPow,
	"==": OpEq, "!=": OpNeq, "<": OpLt, "<=": OpLte, ">": OpGt, ">=": OpGte,
	"and": OpAnd, "or": OpOr, "xor": OpXor,
	"in": OpIn, "not-in": OpNotIn,
	"=~": OpLike, "like": OpLike, "!~": OpNotLike, "not-like": OpNotLike,
	"++": OpConcat,
	"bit-or": OpBitOr, "bit-and": OpBitAnd, "bit-xor": OpBitXor,
	"bit-shl": OpShl, "bit-shr": OpShr,
	"=": OpAssign,
}

// precedence follows nushell's usual ladder: ** tightest, then
// multiplicative (and ++), additive, the bit shifts, bit-and, bit-xor,
// bit-or, comparisons, boolean and, xor, or, and = loosest. A higher
// number binds tighter.
func (op MathOperator) precedence() int {
	switch op {
	case OpPow:
		return 100
	case OpMul, OpDiv, OpFloorDiv, OpMod, OpConcat:
		return 95
	case OpAdd, OpSub:
		return 90
	case OpBitShl, OpBitShr:
		return 85
	case OpBitAnd:
		return 80
	case OpBitXor:
		return 75
	case OpBitOr:
		return 70
	case OpLt, OpLte, OpGt, OpGte, OpEq, OpNeq, OpIn, OpNotIn, OpLike, OpNotLike:
		return 60
	case OpAnd:
		return 50
	case OpXor:
		return 45
	case OpOr:
		return 40
	case OpAssign:
		return 10
	}
	return 0
}

// aliases to keep the switch above legible despite the Shl/Shr naming
// mismatch with the token table (kept distinct so renaming one doesn't
// silently break the other).
const (
	OpBitShl = OpShl
	OpBitShr = OpShr
)

func (op MathOperator) String() string {
	for w, o := range mathOpWords {
		if o == op {
			return w
		}
	}
	return "?"
}

// splitTopLevelWords splits span on runs of whitespace outside any
// quote/bracket nesting, the word granularity operators and operands
// both live at.
func splitTopLevelWords(ws *WorkingSet, span source.Span) []source.Span {
	text := ws.SpanContents(span)
	var out []source.Span
	depth := 0
	var quote byte
	start := -1
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
			if start == -1 {
				start = int(pos)
			}
			quote = b
			continue
		case '(', '[', '{':
			if start == -1 {
				start = int(pos)
			}
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if isSpaceByte(b) {
			if start != -1 {
				out = append(out, source.Span{Start: uint32(start), End: pos, File: span.File})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = int(pos)
		}
	}
	if start != -1 {
		out = append(out, source.Span{Start: uint32(start), End: span.End, File: span.File})
	}
	return out
}

// parseMathExpression implements precedence climbing over the
// whitespace-separated word spans of span, building BinaryExpr nodes
// left-associatively within each precedence tier.
func (p *Parser) parseMathExpression(span source.Span) *Expression {
	words := splitTopLevelWords(p.Working, span)
	if len(words) == 0 {
		return p.garbageExpr(span)
	}
	if len(words) == 1 {
		return p.parseOperand(words[0])
	}
	pos := 0
	return p.climbMath(words, &pos, 0)
}

func (p *Parser) climbMath(words []source.Span, pos *int, minPrec int) *Expression {
	lhs := p.parseUnaryOperand(words, pos)
	for *pos < len(words) {
		opWord := string(p.Working.SpanContents(words[*pos]))
		op, isOp := mathOpWords[opWord]
		if !isOp || op.precedence() < minPrec {
			break
		}
		*pos++
		rhs := p.climbMath(words, pos, op.precedence()+1)
		span := source.Span{Start: lhs.ExprSpan.Start, End: rhs.ExprSpan.End, File: lhs.ExprSpan.File}
		lhs = &Expression{Expr: BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs}, ExprSpan: span, Type: binaryResultType(op, lhs.Type, rhs.Type)}
	}
	return lhs
}

func (p *Parser) parseUnaryOperand(words []source.Span, pos *int) *Expression {
	if *pos < len(words) {
		text := string(p.Working.SpanContents(words[*pos]))
		if text == "not" || text == "!" {
			*pos++
			inner := p.parseUnaryOperand(words, pos)
			span := source.Span{Start: words[*pos-1].Start, End: inner.ExprSpan.End, File: inner.ExprSpan.File}
			return &Expression{Expr: UnaryNotExpr{Expr: inner}, ExprSpan: span, Type: Type{Kind: TBool}}
		}
	}
	w := words[*pos]
	*pos++
	return p.parseOperand(w)
}

func binaryResultType(op MathOperator, lhs, rhs Type) Type {
	switch {
	case op >= OpEq && op <= OpGte, op == OpAnd || op == OpOr || op == OpXor,
		op == OpIn || op == OpNotIn, op == OpLike || op == OpNotLike:
		return Type{Kind: TBool}
	case op == OpAssign:
		return rhs
	default:
		if lhs.Kind == TFloat || rhs.Kind == TFloat {
			return Type{Kind: TFloat}
		}
		return lhs
	}
}
