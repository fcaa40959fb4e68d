package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/nuflow/nuparse/builtins"
	"github.com/nuflow/nuparse/engine"
	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/source"
	"github.com/nuflow/nuparse/syntax"
)

// readInput reads args[0] as a file path, or stdin when no path is
// given, returning its contents and a display name for the source map.
func readInput(args []string) (name string, contents []byte, err error) {
	if len(args) == 0 {
		b, err := io.ReadAll(os.Stdin)
		return "<stdin>", b, err
	}
	b, err := os.ReadFile(args[0])
	return args[0], b, err
}

type tokensCommand struct{}

func (c *tokensCommand) Help() string     { return "usage: nuparse tokens [file]\n\nLex a file and print each token's kind and span." }
func (c *tokensCommand) Synopsis() string { return "lex a file and print its tokens" }

func (c *tokensCommand) Run(args []string) int {
	_, contents, err := readInput(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	m := source.NewMap()
	sp := m.AddFileSpan("input", contents)
	toks, errs := syntax.LexSpan(m, sp)
	for _, tok := range toks {
		fmt.Printf("%-28s %q\n", tok.Contents, string(m.SpanContents(tok.Span)))
	}
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}
	if len(errs) > 0 {
		return 1
	}
	return 0
}

type liteCommand struct{}

func (c *liteCommand) Help() string     { return "usage: nuparse lite [file]\n\nLex and lite-parse a file, printing pipeline/command structure." }
func (c *liteCommand) Synopsis() string { return "print the lite-parsed pipeline skeleton" }

func (c *liteCommand) Run(args []string) int {
	_, contents, err := readInput(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	m := source.NewMap()
	sp := m.AddFileSpan("input", contents)
	toks, errs := syntax.LexSpan(m, sp)
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}
	lite := syntax.NewLiteParser(toks).Parse()
	for i, pipe := range lite.Block {
		fmt.Printf("pipeline %d:\n", i)
		for j, cmd := range pipe.Commands {
			var parts []string
			for _, p := range cmd.Parts {
				parts = append(parts, string(m.SpanContents(p)))
			}
			fmt.Printf("  command %d: %v\n", j, parts)
		}
	}
	return 0
}

type parseCommand struct{}

func (c *parseCommand) Help() string {
	return "usage: nuparse parse [file]\n\nFully parse a file against the bootstrap builtin table and print the tree."
}
func (c *parseCommand) Synopsis() string { return "fully parse a file and print its tree" }

func (c *parseCommand) Run(args []string) int {
	_, contents, err := readInput(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	level := hclog.Info
	if s := os.Getenv("NUPARSE_LOG_LEVEL"); s != "" {
		level = hclog.LevelFromString(s)
	}
	log := hclog.New(&hclog.LoggerOptions{Name: "nuparse", Level: level})
	state := engine.NewWithLogger(log)
	builtins.Register(state)

	m := source.NewMap()
	sp := m.AddFileSpan("input", contents)
	blk, parseErr := state.ParseAndMerge(m, sp)

	syntax.Walk(&printVisitor{m: m}, blk)
	if len(blk.Captures) > 0 {
		fmt.Printf("captures: %v\n", blk.Captures)
	}

	if parseErr != nil {
		fmt.Fprintln(os.Stderr, parseErr)
		return 1
	}
	return 0
}

type declsCommand struct{}

func (c *declsCommand) Help() string     { return "usage: nuparse decls\n\nList the bootstrap builtin declarations." }
func (c *declsCommand) Synopsis() string { return "list the bootstrap builtin declarations" }

func (c *declsCommand) Run(args []string) int {
	state := engine.New()
	builtins.Register(state)
	for i := 1; i <= state.NumDecls(); i++ {
		fmt.Println(state.DeclName(ids.DeclId(i)))
	}
	return 0
}
