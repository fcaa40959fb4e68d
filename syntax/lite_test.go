// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import "testing"

func liteParse(t *testing.T, src string) *LiteBlock {
	t.Helper()
	toks := lexAll(t, src)
	return NewLiteParser(toks).Parse()
}

func TestLiteParserSplitsPipelines(t *testing.T) {
	lite := liteParse(t, "ls | sort\ncat file\n")
	if len(lite.Block) != 2 {
		t.Fatalf("got %d pipelines, want 2", len(lite.Block))
	}
	if len(lite.Block[0].Commands) != 2 {
		t.Fatalf("got %d commands in first pipeline, want 2", len(lite.Block[0].Commands))
	}
	if lite.Block[0].Commands[0].Pipe == nil {
		t.Fatalf("expected first command's Pipe to be set")
	}
}

func TestLiteParserFoldsRedirection(t *testing.T) {
	lite := liteParse(t, "cmd o> out.log\n")
	cmd := lite.Block[0].Commands[0]
	if cmd.Redirection == nil {
		t.Fatalf("expected a redirection on the command")
	}
	if cmd.Redirection.Source != Stdout {
		t.Errorf("got source %v, want Stdout", cmd.Redirection.Source)
	}
}

func TestLiteParserFoldsSeparateRedirection(t *testing.T) {
	lite := liteParse(t, "cmd o> out.log e> err.log\n")
	cmd := lite.Block[0].Commands[0]
	if cmd.Redirection == nil || !cmd.Redirection.Separate {
		t.Fatalf("expected a separate out/err redirection, got %+v", cmd.Redirection)
	}
}

func TestLiteParserCollectsLeadingComments(t *testing.T) {
	lite := liteParse(t, "# doc\ncmd\n")
	cmd := lite.Block[0].Commands[0]
	if len(cmd.Comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(cmd.Comments))
	}
}
