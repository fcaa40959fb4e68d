// Package engine owns the permanent state a host (a REPL, a script
// runner) accumulates across parses: every declaration, variable,
// module and overlay a working set has ever registered, plus the block
// bodies parsed so far. It depends on syntax, never the other way
// round: syntax.WorkingSet only ever sees engine's state through the
// syntax.PermanentLookup interface, so a fresh parse's mutable delta
// can be merged back in without the two packages needing to know about
// each other directly.
package engine

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/nuflow/nuparse/capture"
	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/syntax"
)

type declRecord struct {
	Name string
	Sig  syntax.Signature
}

type varRecord struct {
	Name    string
	Type    syntax.Type
	Mutable bool
}

// PermanentState implements syntax.PermanentLookup over append-only
// slices, with name -> id lookups served by an immutable radix tree.
type PermanentState struct {
	mu sync.RWMutex

	decls     []declRecord
	declNames *iradix.Tree[ids.DeclId]

	vars     []varRecord
	varNames *iradix.Tree[ids.VarId]

	modules     []string
	moduleNames *iradix.Tree[uint32]

	overlays     []string
	overlayNames *iradix.Tree[uint32]

	blocks []*syntax.Block

	log hclog.Logger

	captures *capture.Analyser
}

// New returns an empty permanent state that logs nowhere. Bootstrap
// registers the builtin command table into it before any host parses
// user input.
func New() *PermanentState {
	return NewWithLogger(hclog.NewNullLogger())
}

// NewWithLogger is New with an explicit logger, for a host (cmd/nuparse
// with NUPARSE_LOG_LEVEL set, say) that wants merge/parse activity on
// stderr.
func NewWithLogger(log hclog.Logger) *PermanentState {
	s := &PermanentState{
		declNames:    iradix.New[ids.DeclId](),
		varNames:     iradix.New[ids.VarId](),
		moduleNames:  iradix.New[uint32](),
		overlayNames: iradix.New[uint32](),
		log:          log,
	}
	s.captures = capture.New(s, 256)
	return s
}

func (s *PermanentState) FindDecl(name string) (ids.DeclId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.declNames.Get([]byte(name))
}

func (s *PermanentState) DeclSignature(id ids.DeclId) *syntax.Signature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := int(id) - 1
	if idx < 0 || idx >= len(s.decls) {
		return nil
	}
	return &s.decls[idx].Sig
}

func (s *PermanentState) DeclName(id ids.DeclId) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := int(id) - 1
	if idx < 0 || idx >= len(s.decls) {
		return ""
	}
	return s.decls[idx].Name
}

func (s *PermanentState) FindVar(name string) (ids.VarId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.varNames.Get([]byte(name))
}

func (s *PermanentState) VarType(id ids.VarId) syntax.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := int(id) - int(ids.FirstUserVariableID)
	if idx < 0 || idx >= len(s.vars) {
		return syntax.Type{Kind: syntax.TAny}
	}
	return s.vars[idx].Type
}

func (s *PermanentState) VarMutable(id ids.VarId) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := int(id) - int(ids.FirstUserVariableID)
	if idx < 0 || idx >= len(s.vars) {
		return false
	}
	return s.vars[idx].Mutable
}

func (s *PermanentState) FindModule(name string) (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.moduleNames.Get([]byte(name))
}

func (s *PermanentState) FindOverlay(name string) (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlayNames.Get([]byte(name))
}

func (s *PermanentState) NumDecls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decls)
}

func (s *PermanentState) NumVars() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}

// RegisterDecl adds a builtin or host-provided declaration directly to
// the permanent state, bypassing a working set merge. builtins uses
// this at bootstrap so FindDecl resolves "where", "str length" and the
// rest before any user source has been parsed.
func (s *PermanentState) RegisterDecl(name string, sig syntax.Signature) ids.DeclId {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := ids.DeclId(len(s.decls) + 1)
	s.decls = append(s.decls, declRecord{Name: name, Sig: sig})
	tree, _, _ := s.declNames.Insert([]byte(name), id)
	s.declNames = tree
	s.log.Trace("registered decl", "name", name, "id", id)
	return id
}
