package engine

import (
	"github.com/nuflow/nuparse/source"
	"github.com/nuflow/nuparse/syntax"
)

// ParseAndMerge is the host-facing entry point: lex, lite-
// parse and shape-parse one chunk of source against s, then fold
// whatever the parse registered back into s before returning. This is
// the step a REPL runs once per line, and a script runner once per
// sourced file.
func (s *PermanentState) ParseAndMerge(m *source.Map, span source.Span) (*syntax.Block, error) {
	ws := syntax.NewWorkingSet(s, m)
	p := syntax.NewParser(ws)
	blk := p.ParseSource(span)
	newBlocks := ws.NewBlocks()
	s.Merge(ws)

	// Capture analysis runs after merge so a nested closure's body (itself
	// one of newBlocks, registered via AddBlock during parsing) is already
	// resolvable through s.GetBlock. Analysing the top-level block walks
	// into every closure/block it references; any block registered but not
	// reached that way (a def body no pipeline calls, say) is analysed
	// directly so no block is left with a nil Captures.
	_, captureErrs := s.captures.Analyse(blk)
	for _, b := range newBlocks {
		if b.Captures == nil {
			_, errs := s.captures.Analyse(b)
			captureErrs = append(captureErrs, errs...)
		}
	}
	for _, e := range captureErrs {
		ws.Error(e)
	}

	if err := ws.ErrorOrNil(); err != nil {
		s.log.Warn("parse completed with errors", "error", err)
		return blk, err
	}
	s.log.Debug("parsed and merged", "pipelines", len(blk.Pipelines))
	return blk, nil
}
