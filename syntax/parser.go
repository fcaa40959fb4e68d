// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"bytes"
	"fmt"

	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/source"
)

// Parser is the shape-directed parser core: it walks the
// LiteBlock skeleton and, for each command, resolves the head against
// the working set's declarations and parses each remaining part
// according to the SyntaxShape the resolved Signature demands at that
// position. Parsing never fails outright: a structural hole becomes a
// GarbageExpr and a recorded *ParseError, accumulating errors rather
// than stopping at the first one.
type Parser struct {
	Working *WorkingSet
}

// NewParser builds a Parser over an already-open working set.
func NewParser(ws *WorkingSet) *Parser { return &Parser{Working: ws} }

// ParseSource lexes, lite-parses and fully parses one chunk of source
// text already registered in the working set's source map as span.
func (p *Parser) ParseSource(span source.Span) *Block {
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

// parseLiteBlock turns a LiteBlock into a Block, optionally under a
// declared Signature (the block's own parameters, already bound as
// variables in the current scope by the caller).
func (p *Parser) parseLiteBlock(lite *LiteBlock, sig *Signature) *Block {
	blk := &Block{}
	if sig != nil {
		blk.Signature = *sig
	}
	for _, litePipe := range lite.Block {
		blk.Pipelines = append(blk.Pipelines, p.parsePipeline(litePipe))
	}
	return blk
}

func (p *Parser) parsePipeline(lite LitePipeline) Pipeline {
	var pipe Pipeline
	for idx, cmd := range lite.Commands {
		elem := PipelineElement{Pipe: cmd.Pipe}
		parts := cmd.Parts
		envPairs, rest := p.peelEnvShorthand(parts)
		switch {
		case len(rest) == 0:
			elem.Expr = p.garbageExprAt(spanUnion(parts))
		case len(envPairs) > 0:
			inner := p.parseOnePart(rest)
			elem.Expr = p.wrapWithEnv(envPairs, parts[:len(envPairs)], inner)
		default:
			elem.Expr = p.parseOnePart(rest)
		}
		if cmd.Redirection != nil {
			elem.Redirection = p.parseRedirection(cmd.Redirection)
		}
		p.wrapImplicitIn(&elem, idx == 0)
		pipe.Elements = append(pipe.Elements, elem)
	}
	return pipe
}

// parseOnePart dispatches a (possibly env-shorthand-stripped) command's
// parts to the keyword handlers, a bare expression, or the ordinary
// call parser. A pipeline element whose head cannot be a command name
// ($var, a literal, a bracketed value) is parsed as an expression
// instead of an external/internal call.
func (p *Parser) parseOnePart(parts []source.Span) *Expression {
	if kw, ok := p.recognizedKeyword(parts[0]); ok {
		return p.parseKeyword(kw, parts)
	}
	if looksLikeExpressionHead(p.Working.SpanContents(parts[0])) {
		return p.parseExpression(spanUnion(parts))
	}
	return p.parseCallExpr(parts)
}

func looksLikeExpressionHead(text []byte) bool {
	if len(text) == 0 {
		return false
	}
	switch text[0] {
	case '$', '[', '{', '"', '\'':
		return true
	}
	if looksLikeInt(text) || looksLikeFloat(text) {
		return true
	}
	return string(text) == "true" || string(text) == "false"
}

func (p *Parser) parseRedirection(r *LiteRedirection) *PipelineRedirection {
	out := &PipelineRedirection{Source: r.Source, Separate: r.Separate}
	if r.Separate {
		out.Out = p.parseRedirectionTarget(r.Out)
		out.Err = p.parseRedirectionTarget(r.Err)
	} else {
		out.Target = p.parseRedirectionTarget(r.Target)
	}
	return out
}

func (p *Parser) parseRedirectionTarget(t LiteRedirectionTarget) *Expression {
	if t.IsPipe {
		return &Expression{Expr: NothingExpr{}, ExprSpan: t.Connector, Type: Type{Kind: TNothing}}
	}
	return p.parseValue(t.File, SyntaxShape{Kind: ShapeFilepath})
}

// recognizedKeyword reports whether the first part of a command spells
// a keyword this parser has a dedicated handler for.
func (p *Parser) recognizedKeyword(head source.Span) (string, bool) {
	text := string(p.Working.SpanContents(head))
	switch text {
	case "def", "let", "mut", "const", "module", "use", "overlay", "export",
		"for", "while", "loop", "if", "match", "source", "alias", "hide",
		"extern", "register", "plugin":
		return text, true
	}
	return "", false
}

// parseCallExpr resolves parts[0] against the working set's decls and
// binds the remaining parts as arguments per the resolved Signature,
// falling back to an ExternalCallExpr when the head does not resolve.
func (p *Parser) parseCallExpr(parts []source.Span) *Expression {
	headSpan := parts[0]
	name := string(p.Working.SpanContents(headSpan))
	declID, ok := p.Working.FindDecl(name)
	if !ok {
		return p.parseExternalCall(parts)
	}
	call := p.parseInternalCall(declID, headSpan, parts[1:])
	full := spanUnion(parts)
	return &Expression{Expr: CallExpr{Call: call}, ExprSpan: full, Type: p.callResultType(declID)}
}

func (p *Parser) callResultType(id ids.DeclId) Type {
	sig := p.Working.DeclSignature(id)
	if sig == nil || len(sig.InputOutputTypes) == 0 {
		return Type{Kind: TAny}
	}
	return sig.InputOutputTypes[0].Out
}

func (p *Parser) parseExternalCall(parts []source.Span) *Expression {
	nameExpr := p.parseValue(parts[0], SyntaxShape{Kind: ShapeString})
	var args []*Expression
	for _, a := range parts[1:] {
		args = append(args, p.parseValue(a, SyntaxShape{Kind: ShapeAny}))
	}
	return &Expression{
		Expr:     ExternalCallExpr{Name: nameExpr, Args: args},
		ExprSpan: spanUnion(parts),
		Type:     Type{Kind: TAny},
	}
}

// parseInternalCall binds args against sig's positionals/flags in
// order, consuming named flags wherever they appear, then runs a
// completeness pass over whatever required positionals and flags the
// loop never saw.
func (p *Parser) parseInternalCall(declID ids.DeclId, head source.Span, args []source.Span) *Call {
	call := &Call{Head: head, Decl: declID, ParserInfo: map[string]*Expression{}}
	sig := p.Working.DeclSignature(declID)
	if sig == nil {
		for _, a := range args {
			call.Arguments = append(call.Arguments, UnknownArgument{Expr: p.parseValue(a, SyntaxShape{Kind: ShapeAny})})
		}
		return call
	}
	positionalIdx := 0
	seenFlags := map[string]bool{}
	for i := 0; i < len(args); i++ {
		text := p.Working.SpanContents(args[i])
		if len(text) >= 2 && text[0] == '-' && text[1] == '-' {
			call.Arguments = append(call.Arguments, p.bindLongFlag(sig, args[i], seenFlags))
			continue
		}
		if len(text) >= 2 && text[0] == '-' && !isDigit(text[1]) {
			call.Arguments = append(call.Arguments, p.bindShortFlagBatch(sig, args, &i, seenFlags)...)
			continue
		}
		shape := SyntaxShape{Kind: ShapeAny}
		if pa := positionalAt(sig, positionalIdx); pa != nil {
			shape = pa.Shape
		} else if sig.RestPositional != nil {
			shape = sig.RestPositional.Shape
		}
		call.Arguments = append(call.Arguments, PositionalArgument{Expr: p.parseValue(args[i], shape)})
		positionalIdx++
	}
	p.checkCompleteness(sig, head, args, positionalIdx, seenFlags)
	return call
}

// checkCompleteness emits MissingPositional/MissingRequiredFlag for
// every required slot the binding loop never consumed. The anchor span
// is the last argument seen, or the call head itself when there were no
// arguments at all.
func (p *Parser) checkCompleteness(sig *Signature, head source.Span, args []source.Span, positionalIdx int, seenFlags map[string]bool) {
	anchor := head
	if len(args) > 0 {
		anchor = spanUnion(args)
	}
	for _, missing := range requiredPositionalsFrom(sig, positionalIdx) {
		p.Working.Error(&ParseError{
			Kind:    ErrMissingPositional,
			Span:    anchor,
			Message: fmt.Sprintf("%s needs a value for %q", sig.Name, missing.Name),
		})
	}
	for _, f := range sig.Named {
		if f.Required && !seenFlags[f.Long] {
			p.Working.Error(&ParseError{
				Kind:    ErrMissingRequiredFlag,
				Span:    anchor,
				Message: fmt.Sprintf("%s needs --%s", sig.Name, f.Long),
			})
		}
	}
}

// requiredPositionalsFrom returns the required positionals at and after
// idx; idx only ever lands inside RequiredPositional; once the loop
// reaches OptionalPositional every remaining slot is optional by
// definition.
func requiredPositionalsFrom(sig *Signature, idx int) []PositionalArg {
	if idx >= len(sig.RequiredPositional) {
		return nil
	}
	return sig.RequiredPositional[idx:]
}

func positionalAt(sig *Signature, idx int) *PositionalArg {
	if idx < len(sig.RequiredPositional) {
		return &sig.RequiredPositional[idx]
	}
	idx -= len(sig.RequiredPositional)
	if idx < len(sig.OptionalPositional) {
		return &sig.OptionalPositional[idx]
	}
	return nil
}

// bindLongFlag handles one "--name" or "--name=value" argument.
func (p *Parser) bindLongFlag(sig *Signature, arg source.Span, seenFlags map[string]bool) Argument {
	text := p.Working.SpanContents(arg)
	body := text[2:]
	if eq := bytes.IndexByte(body, '='); eq >= 0 {
		name := string(body[:eq])
		flag := sig.FindNamed(name)
		if flag == nil {
			return p.unknownFlagArgument(sig, "--"+name, arg)
		}
		seenFlags[flag.Long] = true
		valSpan := source.Span{Start: arg.Start + uint32(2+eq+1), End: arg.End, File: arg.File}
		if flag.Arg == nil {
			p.Working.Error(&ParseError{Kind: ErrInvalidLiteral, Span: arg, Message: fmt.Sprintf("--%s takes no value", name)})
			return NamedArgument{Name: flag.Long, Short: flag.Short, HasShort: flag.HasShort}
		}
		return NamedArgument{Name: flag.Long, Short: flag.Short, HasShort: flag.HasShort, Value: p.parseValue(valSpan, *flag.Arg)}
	}
	name := string(body)
	flag := sig.FindNamed(name)
	if flag == nil {
		return p.unknownFlagArgument(sig, "--"+name, arg)
	}
	seenFlags[flag.Long] = true
	return NamedArgument{Name: flag.Long, Short: flag.Short, HasShort: flag.HasShort}
}

// bindShortFlagBatch handles "-xyz": every letter but the last is a
// boolean switch, and the last letter consumes a trailing argument only
// if its flag declares one.
func (p *Parser) bindShortFlagBatch(sig *Signature, args []source.Span, i *int, seenFlags map[string]bool) []Argument {
	full := args[*i]
	letters := p.Working.SpanContents(full)[1:]
	var out []Argument
	for j := 0; j < len(letters); j++ {
		letterSpan := source.Span{Start: full.Start + uint32(1+j), End: full.Start + uint32(2+j), File: full.File}
		flag := sig.FindShort(rune(letters[j]))
		if flag == nil {
			out = append(out, p.unknownFlagArgument(sig, "-"+string(letters[j]), letterSpan))
			continue
		}
		seenFlags[flag.Long] = true
		if flag.Arg == nil || j != len(letters)-1 {
			out = append(out, NamedArgument{Name: flag.Long, Short: flag.Short, HasShort: flag.HasShort})
			continue
		}
		if *i+1 >= len(args) {
			p.Working.Error(&ParseError{Kind: ErrMissingFlagArg, Span: full, Message: fmt.Sprintf("flag -%c needs an argument", flag.Short)})
			out = append(out, NamedArgument{Name: flag.Long, Short: flag.Short, HasShort: flag.HasShort})
			continue
		}
		*i++
		out = append(out, NamedArgument{Name: flag.Long, Short: flag.Short, HasShort: flag.HasShort, Value: p.parseValue(args[*i], *flag.Arg)})
	}
	return out
}

// unknownFlagArgument reports ErrUnknownFlag unless sig allows unknown
// args, but always returns a bound UnknownArgument: an unresolved flag
// is still a structural hole recorded in the tree, not a parse abort.
func (p *Parser) unknownFlagArgument(sig *Signature, display string, span source.Span) Argument {
	if !sig.AllowsUnknownArgs {
		p.Working.Error(&ParseError{Kind: ErrUnknownFlag, Span: span, Message: fmt.Sprintf("unknown flag %s", display)})
	}
	return UnknownArgument{Expr: p.parseValue(span, SyntaxShape{Kind: ShapeAny})}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// garbageExprAt/garbageExpr produce the structural hole a sub-parse
// leaves behind whenever it cannot proceed, so the tree stays complete
// instead of the parser aborting outright.
func (p *Parser) garbageExprAt(span source.Span) *Expression {
	return &Expression{Expr: GarbageExpr{}, ExprSpan: span, Type: Type{Kind: TGarbage}}
}
func (p *Parser) garbageExpr(span source.Span) *Expression { return p.garbageExprAt(span) }

// spanUnion returns the smallest span covering every span in spans;
// they are assumed to share a FileID, as they always do here (every
// part of one lite command comes from one lex of one file's bytes).
func spanUnion(spans []source.Span) source.Span {
	if len(spans) == 0 {
		return source.Span{}
	}
	out := spans[0]
	for _, s := range spans[1:] {
		if s.Start < out.Start {
			out.Start = s.Start
		}
		if s.End > out.End {
			out.End = s.End
		}
	}
	return out
}
