// nuparse is a small inspection CLI over the syntax front-end: it lexes,
// lite-parses or fully parses one file and prints the resulting tree,
// with no evaluation of any kind.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	c := cli.NewCLI("nuparse", "0.1.0")
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"tokens": func() (cli.Command, error) { return &tokensCommand{}, nil },
		"lite":   func() (cli.Command, error) { return &liteCommand{}, nil },
		"parse":  func() (cli.Command, error) { return &parseCommand{}, nil },
		"decls":  func() (cli.Command, error) { return &declsCommand{}, nil },
	}

	status, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return status
}
