// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"testing"

	"github.com/nuflow/nuparse/source"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	m := source.NewMap()
	sp := m.AddFileSpan("t.nu", []byte(src))
	toks, errs := LexSpan(m, sp)
	for _, e := range errs {
		t.Fatalf("unexpected lex error: %v", e)
	}
	return toks
}

func tokenContents(toks []Token) []TokenContents {
	out := make([]TokenContents, len(toks))
	for i, t := range toks {
		out[i] = t.Contents
	}
	return out
}

func TestLexerSplitsOnWhitespace(t *testing.T) {
	toks := lexAll(t, "ls -la\n")
	got := tokenContents(toks)
	want := []TokenContents{Item, Item, Eol}
	if len(got) != len(want) {
		t.Fatalf("got %v tokens, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexerBalancesDelimiters(t *testing.T) {
	toks := lexAll(t, "echo (1 | 2)\n")
	got := tokenContents(toks)
	// "echo" "(1 | 2)" Eol -- the inner pipe must not split the item.
	want := []TokenContents{Item, Item, Eol}
	if len(got) != len(want) {
		t.Fatalf("got %v tokens, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexerRecognizesRedirections(t *testing.T) {
	toks := lexAll(t, "cmd o+e>> out.log\n")
	var found bool
	for _, tok := range toks {
		if tok.Contents == OutErrGreaterGreaterThan {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an o+e>> redirection token, got %v", tokenContents(toks))
	}
}

func TestLexerRawString(t *testing.T) {
	toks := lexAll(t, `r#"a "b" c"#` + "\n")
	if len(toks) != 2 || toks[0].Contents != Item || toks[1].Contents != Eol {
		t.Fatalf("expected a single Item token for the raw string, got %v", tokenContents(toks))
	}
}
