package syntax

import (
	"testing"

	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/source"
)

func TestWorkingSetScopeShadowing(t *testing.T) {
	ws := NewWorkingSet(nil, source.NewMap())
	outer := ws.AddVariable("x", Type{Kind: TInt}, false)

	ws.EnterScope()
	inner := ws.AddVariable("x", Type{Kind: TString}, false)
	if got, _ := ws.FindVariable("x"); got != inner {
		t.Fatalf("got %v, want the inner-scope shadowing var %v", got, inner)
	}
	ws.ExitScope()

	if got, _ := ws.FindVariable("x"); got != outer {
		t.Fatalf("got %v, want the outer var %v after ExitScope", got, outer)
	}
}

func TestWorkingSetDeclLookupFallsThroughToPermanent(t *testing.T) {
	perm := &fakePermanent{decls: map[string]int{"ls": 1}}
	ws := NewWorkingSet(perm, source.NewMap())
	if _, ok := ws.FindDecl("ls"); !ok {
		t.Fatalf("expected ls to resolve via the permanent lookup")
	}
	if _, ok := ws.FindDecl("nope"); ok {
		t.Fatalf("did not expect nope to resolve")
	}
}

type fakePermanent struct {
	decls map[string]int
}

func (f *fakePermanent) FindDecl(name string) (ids.DeclId, bool) {
	if _, ok := f.decls[name]; ok {
		return 1, true
	}
	return 0, false
}
func (f *fakePermanent) DeclSignature(ids.DeclId) *Signature { return nil }
func (f *fakePermanent) DeclName(ids.DeclId) string          { return "" }
func (f *fakePermanent) FindVar(string) (ids.VarId, bool)    { return 0, false }
func (f *fakePermanent) VarType(ids.VarId) Type              { return Type{Kind: TAny} }
func (f *fakePermanent) VarMutable(ids.VarId) bool           { return false }
func (f *fakePermanent) FindModule(string) (uint32, bool)    { return 0, false }
func (f *fakePermanent) FindOverlay(string) (uint32, bool)   { return 0, false }
func (f *fakePermanent) NumDecls() int                       { return len(f.decls) }
func (f *fakePermanent) NumVars() int                        { return 0 }
