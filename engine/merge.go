package engine

import (
	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/syntax"
)

// Merge folds a working set's newly registered decls, vars and parsed
// blocks into the permanent state. It must
// be called with the same PermanentState the working set was opened
// over, and exactly once per working set — merging twice would double
// the ids.DeclId/ids.VarId offsets already baked into the parsed tree.
func (s *PermanentState) Merge(ws *syntax.WorkingSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	declTree := s.declNames
	for _, d := range ws.NewDecls() {
		id := ids.DeclId(len(s.decls) + 1)
		s.decls = append(s.decls, declRecord{Name: d.Name, Sig: d.Signature})
		tree, _, _ := declTree.Insert([]byte(d.Name), id)
		declTree = tree
	}
	s.declNames = declTree

	varTree := s.varNames
	for _, v := range ws.NewVars() {
		id := ids.VarId(int(ids.FirstUserVariableID) + len(s.vars))
		s.vars = append(s.vars, varRecord{Name: v.Name, Type: v.Type, Mutable: v.Mutable})
		tree, _, _ := varTree.Insert([]byte(v.Name), id)
		varTree = tree
	}
	s.varNames = varTree

	s.blocks = append(s.blocks, ws.NewBlocks()...)
}

// Block returns a previously merged block by id, or nil if none was
// ever merged at that index.
func (s *PermanentState) Block(id ids.BlockId) *syntax.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := int(id) - 1
	if idx < 0 || idx >= len(s.blocks) {
		return nil
	}
	return s.blocks[idx]
}

// GetBlock is Block under the name package capture's BlockLookup
// interface expects, so *PermanentState satisfies it the same way
// *syntax.WorkingSet does.
func (s *PermanentState) GetBlock(id ids.BlockId) *syntax.Block { return s.Block(id) }
