package syntax

import (
	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/source"
)

// PermanentLookup is the read-only view a WorkingSet has onto whatever
// was merged from previous parses. It is an interface (rather than a
// concrete struct) so package engine can own the actual permanent-state
// storage without syntax importing engine back.
type PermanentLookup interface {
	FindDecl(name string) (ids.DeclId, bool)
	DeclSignature(id ids.DeclId) *Signature
	DeclName(id ids.DeclId) string
	FindVar(name string) (ids.VarId, bool)
	VarType(id ids.VarId) Type
	VarMutable(id ids.VarId) bool
	FindModule(name string) (id uint32, ok bool)
	FindOverlay(name string) (id uint32, ok bool)
	NumDecls() int
	NumVars() int
}

// nullPermanent is used when a Parser is built standalone (e.g. in
// tests) with nothing previously merged.
type nullPermanent struct{}

func (nullPermanent) FindDecl(string) (ids.DeclId, bool)    { return ids.NoDecl, false }
func (nullPermanent) DeclSignature(ids.DeclId) *Signature   { return nil }
func (nullPermanent) DeclName(ids.DeclId) string            { return "" }
func (nullPermanent) FindVar(string) (ids.VarId, bool)      { return ids.NoVar, false }
func (nullPermanent) VarType(ids.VarId) Type                { return Type{Kind: TAny} }
func (nullPermanent) VarMutable(ids.VarId) bool             { return false }
func (nullPermanent) FindModule(string) (uint32, bool)      { return 0, false }
func (nullPermanent) FindOverlay(string) (uint32, bool)     { return 0, false }
func (nullPermanent) NumDecls() int                         { return 0 }
func (nullPermanent) NumVars() int                          { return 0 }

// varEntry/declEntry are the working set's own append-only records for
// anything registered during this parse, not yet merged into the
// permanent state.
type varEntry struct {
	Name    string
	Type    Type
	Mutable bool
}

type declEntry struct {
	Name      string
	Signature Signature
}

// scopeFrame is one lexical frame: a name -> id map for each of the four
// namespaces a nushell-style block can introduce. Lookups
// walk frames innermost-first, then fall through to Permanent.
type scopeFrame struct {
	vars     map[string]ids.VarId
	decls    map[string]ids.DeclId
	modules  map[string]uint32
	overlays map[string]uint32
}

func newScopeFrame() *scopeFrame {
	return &scopeFrame{
		vars:     map[string]ids.VarId{},
		decls:    map[string]ids.DeclId{},
		modules:  map[string]uint32{},
		overlays: map[string]uint32{},
	}
}

// WorkingSet is the mutable delta a single parse accumulates: newly
// registered vars/decls/blocks, the lexical scope stack, and the parse's
// accumulated errors. It never mutates Permanent.
type WorkingSet struct {
	Permanent PermanentLookup
	Map       *source.Map

	vars  []varEntry
	decls []declEntry
	blocks []*Block

	frames []*scopeFrame

	Errors []error
}

// NewWorkingSet opens a working set over whatever was previously merged.
// perm may be nil, in which case lookups simply never find anything
// pre-existing (useful for tests parsing a block in isolation).
func NewWorkingSet(perm PermanentLookup, m *source.Map) *WorkingSet {
	if perm == nil {
		perm = nullPermanent{}
	}
	ws := &WorkingSet{Permanent: perm, Map: m}
	ws.frames = []*scopeFrame{newScopeFrame()}
	ws.frames[0].vars["in"] = ids.InVariableID
	ws.frames[0].vars["env"] = ids.EnvVariableID
	return ws
}

func (ws *WorkingSet) EnterScope() { ws.frames = append(ws.frames, newScopeFrame()) }

func (ws *WorkingSet) ExitScope() {
	if len(ws.frames) > 1 {
		ws.frames = ws.frames[:len(ws.frames)-1]
	}
}

func (ws *WorkingSet) top() *scopeFrame { return ws.frames[len(ws.frames)-1] }

// AddVariable registers a brand new VarId in the innermost scope,
// shadowing any outer binding of the same name.
func (ws *WorkingSet) AddVariable(name string, typ Type, mutable bool) ids.VarId {
	id := ids.VarId(int(ids.FirstUserVariableID) + len(ws.vars) + ws.Permanent.NumVars())
	ws.vars = append(ws.vars, varEntry{Name: name, Type: typ, Mutable: mutable})
	ws.top().vars[name] = id
	return id
}

// FindVariable walks the scope stack innermost-first, then falls
// through to the permanent state.
func (ws *WorkingSet) FindVariable(name string) (ids.VarId, bool) {
	for i := len(ws.frames) - 1; i >= 0; i-- {
		if id, ok := ws.frames[i].vars[name]; ok {
			return id, true
		}
	}
	return ws.Permanent.FindVar(name)
}

func (ws *WorkingSet) VarType(id ids.VarId) Type {
	base := int(ws.Permanent.NumVars())
	idx := int(id) - int(ids.FirstUserVariableID) - base
	if idx >= 0 && idx < len(ws.vars) {
		return ws.vars[idx].Type
	}
	return ws.Permanent.VarType(id)
}

// VarMutable reports whether id was declared with `mut` rather than
// `let`/`const`; the capture analyser uses this to reject closures that
// would capture a mutable variable by reference.
func (ws *WorkingSet) VarMutable(id ids.VarId) bool {
	base := int(ws.Permanent.NumVars())
	idx := int(id) - int(ids.FirstUserVariableID) - base
	if idx >= 0 && idx < len(ws.vars) {
		return ws.vars[idx].Mutable
	}
	return ws.Permanent.VarMutable(id)
}

// AddDecl registers a new declaration (def/alias/extern) visible from
// this point in the innermost scope onward.
func (ws *WorkingSet) AddDecl(name string, sig Signature) ids.DeclId {
	id := ids.DeclId(len(ws.decls) + ws.Permanent.NumDecls() + 1)
	ws.decls = append(ws.decls, declEntry{Name: name, Signature: sig})
	ws.top().decls[name] = id
	return id
}

func (ws *WorkingSet) FindDecl(name string) (ids.DeclId, bool) {
	for i := len(ws.frames) - 1; i >= 0; i-- {
		if id, ok := ws.frames[i].decls[name]; ok {
			return id, true
		}
	}
	return ws.Permanent.FindDecl(name)
}

func (ws *WorkingSet) DeclSignature(id ids.DeclId) *Signature {
	base := ws.Permanent.NumDecls()
	idx := int(id) - base - 1
	if idx >= 0 && idx < len(ws.decls) {
		return &ws.decls[idx].Signature
	}
	return ws.Permanent.DeclSignature(id)
}

func (ws *WorkingSet) DeclName(id ids.DeclId) string {
	base := ws.Permanent.NumDecls()
	idx := int(id) - base - 1
	if idx >= 0 && idx < len(ws.decls) {
		return ws.decls[idx].Name
	}
	return ws.Permanent.DeclName(id)
}

// AddBlock hands out a fresh BlockId for a freshly parsed block body.
func (ws *WorkingSet) AddBlock(b *Block) ids.BlockId {
	ws.blocks = append(ws.blocks, b)
	return ids.BlockId(len(ws.blocks))
}

func (ws *WorkingSet) GetBlock(id ids.BlockId) *Block {
	idx := int(id) - 1
	if idx < 0 || idx >= len(ws.blocks) {
		return nil
	}
	return ws.blocks[idx]
}

// SpanContents returns the raw source bytes a span covers.
func (ws *WorkingSet) SpanContents(sp source.Span) []byte {
	return ws.Map.SpanContents(sp)
}

// AllVariableNames/AllDeclNames support DidYouMean suggestions: every
// name visible at the current scope depth, innermost-first so the
// closest-scoped match is checked first.
func (ws *WorkingSet) AllDeclNames() []string {
	var out []string
	for i := len(ws.frames) - 1; i >= 0; i-- {
		for n := range ws.frames[i].decls {
			out = append(out, n)
		}
	}
	return out
}

func (ws *WorkingSet) Error(err error) {
	ws.Errors = append(ws.Errors, err)
}

// DeclDelta/VarDelta are one merge-ready record apiece; NewDecls/NewVars
// expose everything this working set registered so package engine can
// fold it into the permanent state without reaching into unexported
// fields.
type DeclDelta struct {
	Name      string
	Signature Signature
}

type VarDelta struct {
	Name    string
	Type    Type
	Mutable bool
}

// NewDecls/NewVars/NewBlocks return this working set's append-only
// registrations in the order they were added, so the merge offsets
// (len(ws.decls) given the permanent base) line up with the
// ids.DeclId/ids.VarId/ids.BlockId values already baked into the
// parsed Block.
func (ws *WorkingSet) NewDecls() []DeclDelta {
	out := make([]DeclDelta, len(ws.decls))
	for i, d := range ws.decls {
		out[i] = DeclDelta{Name: d.Name, Signature: d.Signature}
	}
	return out
}

func (ws *WorkingSet) NewVars() []VarDelta {
	out := make([]VarDelta, len(ws.vars))
	for i, v := range ws.vars {
		out[i] = VarDelta{Name: v.Name, Type: v.Type, Mutable: v.Mutable}
	}
	return out
}

func (ws *WorkingSet) NewBlocks() []*Block {
	return ws.blocks
}
