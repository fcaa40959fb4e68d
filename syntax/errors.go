package syntax

import (
	"fmt"

	"github.com/agext/levenshtein"
	"github.com/hashicorp/go-multierror"

	"github.com/nuflow/nuparse/source"
)

// ParseErrorKind is the closed taxonomy of non-fatal parse errors.
// Every ParseError carries exactly one kind, and the working set
// accumulates every error it sees rather than stopping at the first.
type ParseErrorKind int

const (
	ErrUnknownCommand ParseErrorKind = iota
	ErrVariableNotFound
	ErrTypeMismatch
	ErrMissingPositional
	ErrMissingFlagArg
	ErrUnknownFlag
	ErrInvalidLiteral
	ErrDuplicateFlag
	ErrExtraPositional
	ErrUnexpectedKeyword
	ErrBlockMustHaveSingleInput
	ErrModuleNotFound
	ErrCircularImport
	ErrMissingRequiredFlag
	ErrCaptureOfMutableVar
)

var parseErrorKindNames = map[ParseErrorKind]string{
	ErrUnknownCommand:           "unknown command",
	ErrVariableNotFound:         "variable not found",
	ErrTypeMismatch:             "type mismatch",
	ErrMissingPositional:        "missing required positional",
	ErrMissingFlagArg:           "missing flag argument",
	ErrUnknownFlag:              "unknown flag",
	ErrInvalidLiteral:           "invalid literal",
	ErrDuplicateFlag:            "duplicate flag",
	ErrExtraPositional:          "extra positional argument",
	ErrUnexpectedKeyword:        "unexpected keyword",
	ErrBlockMustHaveSingleInput: "block must take a single input",
	ErrModuleNotFound:           "module not found",
	ErrCircularImport:           "circular import",
	ErrMissingRequiredFlag:      "missing required flag",
	ErrCaptureOfMutableVar:      "capture of mutable variable",
}

func (k ParseErrorKind) String() string { return parseErrorKindNames[k] }

// ParseError is one accumulated parse-time diagnostic. Rendering spans
// to line/column is explicitly out of scope here; callers resolve Span via a
// source.Locator themselves.
type ParseError struct {
	Kind       ParseErrorKind
	Span       source.Span
	Message    string
	Suggestion string // non-empty when a DidYouMean candidate was found
}

func (e *ParseError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (did you mean %q?)", e.Kind, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// LexError already satisfies the error interface (see lexer.go); both
// error kinds land in WorkingSet.Errors and are collapsed into a single
// *multierror.Error when a caller wants one aggregate error value.
func (ws *WorkingSet) ErrorOrNil() error {
	if len(ws.Errors) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, e := range ws.Errors {
		merr = multierror.Append(merr, e)
	}
	return merr.ErrorOrNil()
}

const didYouMeanMaxDistance = 3

// closestMatch returns the candidate in names closest to want by
// Levenshtein distance, provided it's within didYouMeanMaxDistance;
// otherwise it returns "".
func closestMatch(want string, names []string) string {
	best, bestDist := "", didYouMeanMaxDistance+1
	for _, n := range names {
		d := levenshtein.Distance(want, n, nil)
		if d < bestDist {
			best, bestDist = n, d
		}
	}
	if bestDist > didYouMeanMaxDistance {
		return ""
	}
	return best
}

func (p *Parser) suggestVariable(name string) string {
	return closestMatch(name, p.Working.allVariableNames())
}

func (p *Parser) suggestDecl(name string) string {
	return closestMatch(name, p.Working.AllDeclNames())
}

// allVariableNames mirrors AllDeclNames for the variable namespace.
func (ws *WorkingSet) allVariableNames() []string {
	var out []string
	for i := len(ws.frames) - 1; i >= 0; i-- {
		for n := range ws.frames[i].vars {
			out = append(out, n)
		}
	}
	return out
}
