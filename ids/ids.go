// Package ids holds the dense-index ID types shared by the AST, the
// working set, and the capture analyser. They live in their own package
// so neither side needs to import the other to talk about "a VarId".
package ids

// VarId, DeclId and BlockId are dense indices into a working set's (or,
// after merge, the permanent state's) vectors of variables, declarations
// and blocks respectively. Assignment is monotone within a working set;
// merging appends and preserves the mapping.
type VarId uint32
type DeclId uint32
type BlockId uint32

// NoVar/NoDecl/NoBlock are sentinel "absent" values. 0 is never assigned
// to a real entry (index 0 in every arena is a reserved placeholder),
// mirroring the reserved FileID 0 in package source.
const (
	NoVar   VarId   = 0
	NoDecl  DeclId  = 0
	NoBlock BlockId = 0
)

// Reserved low VarIds, fixed across every permanent state so the capture
// analyser can recognise them without a name lookup.
const (
	// InVariableID is the implicit "$in" pipeline-input variable.
	InVariableID VarId = 1
	// EnvVariableID is the implicit "$env" record variable. Any VarId
	// greater than this is an ordinary user/parameter variable eligible
	// for capture. The capture analyser never records $env or NoVar;
	// $in goes through the same bound/free check as a user variable, so
	// it is captured unless the block's signature binds it.
	EnvVariableID VarId = 2
	// FirstUserVariableID is the first VarId add_variable ever hands out.
	FirstUserVariableID VarId = 3
)
