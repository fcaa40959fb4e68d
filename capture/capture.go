// Package capture computes the free variables a block or closure
// reaches outside its own bindings: every VarExpr
// reference not bound by the block's signature, a let/mut/const inside
// it, a for-loop variable, or a match-arm pattern binding. The result
// is stored on Block.Captures so a later evaluator knows exactly what
// to snapshot when a closure outlives the scope it was written in,
// mirroring how elvish's compiler threads a scopes/enclosed pair
// through compilation to the same end.
package capture

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/go-set/v3"

	"github.com/nuflow/nuparse/ids"
	"github.com/nuflow/nuparse/syntax"
)

// BlockLookup resolves a BlockId to the block it names and reports
// whether a VarId was declared mutable. Both *syntax.WorkingSet
// (mid-parse) and *engine.PermanentState (after merge) implement it.
type BlockLookup interface {
	GetBlock(id ids.BlockId) *syntax.Block
	VarMutable(id ids.VarId) bool
}

// Analyser memoizes per-block capture sets across a run, since the
// same closure literal can be referenced (and so walked) many times
// once it is merged into permanent state.
type Analyser struct {
	lookup BlockLookup
	cache  *lru.Cache[ids.BlockId, []ids.VarId]
}

// New builds an Analyser backed by lookup, memoizing up to size
// distinct blocks' capture results.
func New(lookup BlockLookup, size int) *Analyser {
	cache, _ := lru.New[ids.BlockId, []ids.VarId](size)
	return &Analyser{lookup: lookup, cache: cache}
}

// Analyse computes blk's free variables, stores them on blk.Captures
// and returns them alongside any capture-of-mutable errors found along
// the way. A mutable variable referenced from inside a closure is never
// added to free: it is reported as an error instead, since a closure
// that outlives its enclosing scope cannot safely capture a binding
// that scope is still allowed to reassign.
func (a *Analyser) Analyse(blk *syntax.Block) ([]ids.VarId, []error) {
	bound := set.New[ids.VarId](8)
	bindSignature(blk.Signature, bound)
	free := set.New[ids.VarId](8)
	var errs []error
	a.walkBlock(blk, bound, free, &errs)
	blk.Captures = free.Slice()
	return blk.Captures, errs
}

func bindSignature(sig syntax.Signature, bound *set.Set[ids.VarId]) {
	for _, p := range sig.RequiredPositional {
		if p.HasVarId {
			bound.Insert(p.VarId)
		}
	}
	for _, p := range sig.OptionalPositional {
		if p.HasVarId {
			bound.Insert(p.VarId)
		}
	}
	if sig.RestPositional != nil && sig.RestPositional.HasVarId {
		bound.Insert(sig.RestPositional.VarId)
	}
	for _, f := range sig.Named {
		if f.HasVarId {
			bound.Insert(f.VarId)
		}
	}
}

func (a *Analyser) walkBlock(blk *syntax.Block, bound, free *set.Set[ids.VarId], errs *[]error) {
	local := bound.Copy()
	for _, pipe := range blk.Pipelines {
		for _, elem := range pipe.Elements {
			if elem.Expr != nil {
				a.walkExpr(elem.Expr.Expr, local, free, errs)
			}
			if r := elem.Redirection; r != nil {
				a.walkExprPtr(r.Target, local, free, errs)
				a.walkExprPtr(r.Out, local, free, errs)
				a.walkExprPtr(r.Err, local, free, errs)
			}
		}
	}
}

func (a *Analyser) walkExprPtr(e *syntax.Expression, bound, free *set.Set[ids.VarId], errs *[]error) {
	if e == nil {
		return
	}
	a.walkExpr(e.Expr, bound, free, errs)
}

func (a *Analyser) walkExprs(es []*syntax.Expression, bound, free *set.Set[ids.VarId], errs *[]error) {
	for _, e := range es {
		a.walkExprPtr(e, bound, free, errs)
	}
}

// walkExpr descends e, recording every VarExpr not present in bound
// into free (or, if the variable is mutable, into errs instead), and
// adding any variable e itself binds (VarDeclExpr) to bound so later
// references in the same block resolve locally.
func (a *Analyser) walkExpr(e syntax.Expr, bound, free *set.Set[ids.VarId], errs *[]error) {
	switch v := e.(type) {
	case syntax.VarExpr:
		if v.Var != ids.InVariableID && v.Var <= ids.EnvVariableID {
			return
		}
		if bound.Contains(v.Var) {
			return
		}
		if a.lookup.VarMutable(v.Var) {
			*errs = append(*errs, &syntax.ParseError{
				Kind:    syntax.ErrCaptureOfMutableVar,
				Message: "captured variable is mutable and cannot be shared across scopes",
			})
			return
		}
		free.Insert(v.Var)
	case syntax.VarDeclExpr:
		bound.Insert(v.Var)
	case syntax.BinaryExpr:
		a.walkExprPtr(v.Lhs, bound, free, errs)
		a.walkExprPtr(v.Rhs, bound, free, errs)
	case syntax.BinaryOpExpr:
		a.walkExprPtr(v.Lhs, bound, free, errs)
		a.walkExprPtr(v.Rhs, bound, free, errs)
	case syntax.UnaryNotExpr:
		a.walkExprPtr(v.Expr, bound, free, errs)
	case syntax.RangeExpr:
		a.walkExprPtr(v.From, bound, free, errs)
		a.walkExprPtr(v.NextAfterFrom, bound, free, errs)
		a.walkExprPtr(v.To, bound, free, errs)
	case syntax.CallExpr:
		a.walkCall(v.Call, bound, free, errs)
	case syntax.ExternalCallExpr:
		a.walkExprPtr(v.Name, bound, free, errs)
		a.walkExprs(v.Args, bound, free, errs)
	case syntax.ListExpr:
		a.walkExprs(v.Items, bound, free, errs)
	case syntax.TableExpr:
		a.walkExprs(v.Columns, bound, free, errs)
		for _, row := range v.Rows {
			a.walkExprs(row, bound, free, errs)
		}
	case syntax.RecordExpr:
		a.walkExprs(v.Keys, bound, free, errs)
		a.walkExprs(v.Values, bound, free, errs)
	case syntax.StringInterpolationExpr:
		a.walkExprs(v.Parts, bound, free, errs)
	case syntax.FullCellPathExpr:
		a.walkExprPtr(v.Head, bound, free, errs)
	case syntax.ValueWithUnitExpr:
		a.walkExprPtr(v.Value, bound, free, errs)
	case syntax.KeywordExpr:
		if v.Keyword == "for" && v.Inner != nil {
			if ce, ok := v.Inner.Expr.(syntax.CallExpr); ok && ce.Call != nil {
				if ve := ce.Call.ParserInfo["var"]; ve != nil {
					if lv, ok := ve.Expr.(syntax.VarExpr); ok {
						bound.Insert(lv.Var)
					}
				}
			}
		}
		a.walkExprPtr(v.Inner, bound, free, errs)
	case syntax.MatchBlockExpr:
		a.walkExprPtr(v.Subject, bound, free, errs)
		for _, arm := range v.Arms {
			armBound := bound.Copy()
			for _, pat := range arm.Patterns {
				bindPattern(pat, armBound)
			}
			a.walkExprPtr(arm.Guard, armBound, free, errs)
			a.walkExprPtr(arm.Body, armBound, free, errs)
		}
	case syntax.RowConditionExpr:
		a.descendBlockRef(v.Block, bound, free, errs)
	case syntax.SubexpressionExpr:
		a.descendBlockRef(v.Block, bound, free, errs)
	case syntax.BlockExpr:
		a.descendBlockRef(v.Block, bound, free, errs)
	case syntax.ClosureExpr:
		a.descendBlockRef(v.Block, bound, free, errs)
	case syntax.SignatureExpr:
		if v.Signature != nil {
			bindSignature(*v.Signature, bound)
		}
	}
	// BoolExpr, IntExpr, FloatExpr, OperatorExpr, DateTimeExpr,
	// FilepathExpr, DirectoryExpr, GlobPatternExpr, StringExpr,
	// RawStringExpr, CellPathExpr, ImportPatternExpr, OverlayExpr,
	// NothingExpr and GarbageExpr bind and reference nothing.
}

func (a *Analyser) walkCall(c *syntax.Call, bound, free *set.Set[ids.VarId], errs *[]error) {
	if c == nil {
		return
	}
	for _, arg := range c.Arguments {
		switch av := arg.(type) {
		case syntax.PositionalArgument:
			a.walkExprPtr(av.Expr, bound, free, errs)
		case syntax.NamedArgument:
			a.walkExprPtr(av.Value, bound, free, errs)
		case syntax.UnknownArgument:
			a.walkExprPtr(av.Expr, bound, free, errs)
		case syntax.SpreadArgument:
			a.walkExprPtr(av.Expr, bound, free, errs)
		}
	}
	for _, e := range c.ParserInfo {
		a.walkExprPtr(e, bound, free, errs)
	}
}

// bindPattern adds every variable a match pattern binds (a plain
// PatternVariable, a rest-collector, or any nested list/record
// pattern's bindings) to bound.
func bindPattern(p syntax.Pattern, bound *set.Set[ids.VarId]) {
	switch p.Kind {
	case syntax.PatternVariable:
		bound.Insert(p.Var)
	case syntax.PatternRest:
		bound.Insert(p.RestVar)
	case syntax.PatternList:
		for _, elem := range p.List {
			bindPattern(elem, bound)
		}
	case syntax.PatternRecord:
		for _, val := range p.RecordVals {
			bindPattern(val, bound)
		}
	case syntax.PatternOr:
		for _, alt := range p.List {
			bindPattern(alt, bound)
		}
	}
}

// descendBlockRef analyses (or recalls from cache) the block id names,
// then folds whatever it captures that isn't already bound in the
// enclosing scope into free -- a nested closure's own captures bubble
// up exactly when the enclosing block doesn't already provide them. A
// cache hit never re-appends errors: they were already reported the
// first time this block id was analysed.
func (a *Analyser) descendBlockRef(id ids.BlockId, bound, free *set.Set[ids.VarId], errs *[]error) {
	if cached, ok := a.cache.Get(id); ok {
		addUnbound(cached, bound, free)
		return
	}
	nested := a.lookup.GetBlock(id)
	if nested == nil {
		return
	}
	nestedFree := set.New[ids.VarId](8)
	nestedBound := set.New[ids.VarId](8)
	bindSignature(nested.Signature, nestedBound)
	a.walkBlock(nested, nestedBound, nestedFree, errs)
	nested.Captures = nestedFree.Slice()
	a.cache.Add(id, nested.Captures)
	addUnbound(nested.Captures, bound, free)
}

func addUnbound(vars []ids.VarId, bound, free *set.Set[ids.VarId]) {
	for _, v := range vars {
		if !bound.Contains(v) {
			free.Insert(v)
		}
	}
}
