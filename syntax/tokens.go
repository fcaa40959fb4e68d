// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import "github.com/nuflow/nuparse/source"

// TokenContents is the closed set of token kinds the lexer can produce.
// Item covers words, quoted strings, numbers, flags and variables alike;
// the lexer does not further classify them; that is left to the
// shape-directed parser, which knows what shape each span must take.
type TokenContents int

const (
	Item TokenContents = iota
	Comment
	Pipe               // |
	PipePipe           // ||
	Semicolon          // ;
	Eol                // \n
	OutGreaterThan     // o>
	OutGreaterGreaterThan
	ErrGreaterThan // e>
	ErrGreaterGreaterThan
	OutErrGreaterThan // o+e>
	OutErrGreaterGreaterThan
	ErrGreaterPipe    // e>|
	OutErrGreaterPipe // o+e>|
)

var contentNames = map[TokenContents]string{
	Item:                     "item",
	Comment:                  "comment",
	Pipe:                     "|",
	PipePipe:                 "||",
	Semicolon:                ";",
	Eol:                      "\\n",
	OutGreaterThan:           "o>",
	OutGreaterGreaterThan:    "o>>",
	ErrGreaterThan:           "e>",
	ErrGreaterGreaterThan:    "e>>",
	OutErrGreaterThan:        "o+e>",
	OutErrGreaterGreaterThan: "o+e>>",
	ErrGreaterPipe:           "e>|",
	OutErrGreaterPipe:        "o+e>|",
}

func (c TokenContents) String() string { return contentNames[c] }

// IsRedirection reports whether c is one of the eight redirection-operator
// token kinds.
func (c TokenContents) IsRedirection() bool {
	switch c {
	case OutGreaterThan, OutGreaterGreaterThan, ErrGreaterThan,
		ErrGreaterGreaterThan, OutErrGreaterThan, OutErrGreaterGreaterThan,
		ErrGreaterPipe, OutErrGreaterPipe:
		return true
	}
	return false
}

// Token is one lexical unit: its kind and the span of source it covers.
// For Item and Comment, the literal bytes are recovered from the source
// map via Span; the lexer never copies them out.
type Token struct {
	Contents TokenContents
	Span     source.Span
}

func (t Token) String() string { return t.Contents.String() }
