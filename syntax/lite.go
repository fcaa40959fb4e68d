// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import "github.com/nuflow/nuparse/source"

// RedirectionSource names which stream(s) a LiteRedirection reroutes.
type RedirectionSource int

const (
	Stdout RedirectionSource = iota
	Stderr
	StdoutAndStderr
)

// LiteRedirectionTarget is either a file (optionally append-mode) or a
// pipe, the destination side of a LiteRedirection.
type LiteRedirectionTarget struct {
	IsPipe    bool
	Connector source.Span
	File      source.Span // valid when !IsPipe
	Append    bool
}

// LiteRedirection is either a single rerouted stream, or two streams
// folded together when a command carries both an out> and an err>
// operator (Separate).
type LiteRedirection struct {
	// Single form.
	Source RedirectionSource
	Target LiteRedirectionTarget

	// Separate form: out> and err> both present on the same command.
	Separate bool
	Out      LiteRedirectionTarget
	Err      LiteRedirectionTarget
}

// LiteCommand is the signature-free skeleton of one command: its leading
// doc comments, the spans that make up its parts (head + args, not yet
// classified), an optional trailing pipe connector, and an optional
// redirection.
type LiteCommand struct {
	Comments    []source.Span
	Parts       []source.Span
	Pipe        *source.Span
	Redirection *LiteRedirection
}

// LitePipeline is a sequence of commands connected by pipes.
type LitePipeline struct {
	Commands []LiteCommand
}

// LiteBlock is a sequence of pipelines, the output of the lite parser.
type LiteBlock struct {
	Block []LitePipeline
}

// LiteParser splits a token stream into lite pipelines/commands. It does
// no name lookup and no signature awareness; it is the skeleton every
// downstream stage of the parser builds on.
type LiteParser struct {
	toks []Token
	pos  int

	Errors []*LexError
}

// NewLiteParser constructs a LiteParser over a token stream.
func NewLiteParser(toks []Token) *LiteParser {
	return &LiteParser{toks: toks}
}

func (lp *LiteParser) peek() (Token, bool) {
	if lp.pos >= len(lp.toks) {
		return Token{}, false
	}
	return lp.toks[lp.pos], true
}

func (lp *LiteParser) advance() Token {
	t := lp.toks[lp.pos]
	lp.pos++
	return t
}

// Parse consumes the whole token stream, producing one LiteBlock.
func (lp *LiteParser) Parse() *LiteBlock {
	blk := &LiteBlock{}
	for {
		lp.skipSeparators()
		if _, ok := lp.peek(); !ok {
			break
		}
		pipeline := lp.parsePipeline()
		if len(pipeline.Commands) > 0 {
			blk.Block = append(blk.Block, pipeline)
		}
	}
	return blk
}

// skipSeparators consumes semicolons and newlines that separate
// pipelines (but not pipes, which stay inside parsePipeline).
func (lp *LiteParser) skipSeparators() {
	for {
		t, ok := lp.peek()
		if !ok {
			return
		}
		if t.Contents == Semicolon || t.Contents == Eol {
			lp.advance()
			continue
		}
		return
	}
}

func (lp *LiteParser) parsePipeline() LitePipeline {
	var pipe LitePipeline
	leadingComments := lp.collectComments()
	for {
		cmd := lp.parseCommand()
		if len(leadingComments) > 0 {
			cmd.Comments = append(leadingComments, cmd.Comments...)
			leadingComments = nil
		}
		pipe.Commands = append(pipe.Commands, cmd)
		t, ok := lp.peek()
		if !ok {
			break
		}
		if t.Contents == Pipe || t.Contents == PipePipe {
			sp := t.Span
			pipe.Commands[len(pipe.Commands)-1].Pipe = &sp
			lp.advance()
			continue
		}
		break
	}
	return pipe
}

func (lp *LiteParser) collectComments() []source.Span {
	var out []source.Span
	for {
		t, ok := lp.peek()
		if !ok || t.Contents != Comment {
			return out
		}
		out = append(out, t.Span)
		lp.advance()
		// A comment is always followed by its own newline in well-formed
		// input; skip it so it doesn't end the pipeline being built.
		if nt, ok := lp.peek(); ok && nt.Contents == Eol {
			lp.advance()
		}
	}
}

func (lp *LiteParser) parseCommand() LiteCommand {
	var cmd LiteCommand
	cmd.Comments = lp.collectComments()
	for {
		t, ok := lp.peek()
		if !ok {
			break
		}
		switch t.Contents {
		case Item:
			cmd.Parts = append(cmd.Parts, t.Span)
			lp.advance()
		case Comment:
			// A comment appearing mid-command (rare) is just attached.
			cmd.Comments = append(cmd.Comments, t.Span)
			lp.advance()
		case Pipe, PipePipe, Semicolon, Eol:
			return lp.foldRedirections(cmd)
		default:
			if t.Contents.IsRedirection() {
				lp.foldOneRedirection(&cmd, t.Contents)
				continue
			}
			lp.advance()
		}
	}
	return lp.foldRedirections(cmd)
}

// foldRedirections is a no-op pass-through point kept for symmetry with
// foldOneRedirection; redirections are folded as they are encountered
// rather than after the fact, so a trailing separator needs no further
// work here.
func (lp *LiteParser) foldRedirections(cmd LiteCommand) LiteCommand { return cmd }

// foldOneRedirection consumes one redirection operator and its target
// (a file path Item, or nothing when piping to the next command's
// stdin), merging it onto cmd. Two redirections on one command — one
// out>, one err> — combine into Separate.
func (lp *LiteParser) foldOneRedirection(cmd *LiteCommand, kind TokenContents) {
	opTok := lp.advance()
	target := LiteRedirectionTarget{Connector: opTok.Span}
	if kind == ErrGreaterPipe || kind == OutErrGreaterPipe {
		target.IsPipe = true
	} else if t, ok := lp.peek(); ok && t.Contents == Item {
		target.File = t.Span
		lp.advance()
	}
	target.Append = kind == OutGreaterGreaterThan || kind == ErrGreaterGreaterThan || kind == OutErrGreaterGreaterThan

	var src RedirectionSource
	switch kind {
	case OutGreaterThan, OutGreaterGreaterThan:
		src = Stdout
	case ErrGreaterThan, ErrGreaterGreaterThan, ErrGreaterPipe:
		src = Stderr
	case OutErrGreaterThan, OutErrGreaterGreaterThan, OutErrGreaterPipe:
		src = StdoutAndStderr
	}

	switch {
	case cmd.Redirection == nil:
		cmd.Redirection = &LiteRedirection{Source: src, Target: target}
	case !cmd.Redirection.Separate && cmd.Redirection.Source != src:
		// A second, distinct-stream redirection folds into Separate.
		first := *cmd.Redirection
		sep := &LiteRedirection{Separate: true}
		if first.Source == Stdout {
			sep.Out, sep.Err = first.Target, target
		} else {
			sep.Out, sep.Err = target, first.Target
		}
		cmd.Redirection = sep
	case cmd.Redirection.Separate:
		if src == Stdout {
			cmd.Redirection.Out = target
		} else {
			cmd.Redirection.Err = target
		}
	default:
		// Same stream redirected twice: last one wins.
		cmd.Redirection.Target = target
	}
}
