package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestClosestMatchSuggestsNearMiss(t *testing.T) {
	c := qt.New(t)
	got := closestMatch("ehco", []string{"echo", "each", "str"})
	c.Assert(got, qt.Equals, "echo")
}

func TestClosestMatchGivesUpBeyondMaxDistance(t *testing.T) {
	c := qt.New(t)
	got := closestMatch("zzzzzzzzzz", []string{"echo", "each", "str"})
	c.Assert(got, qt.Equals, "")
}

func TestWorkingSetErrorOrNilAccumulates(t *testing.T) {
	c := qt.New(t)
	ws := NewWorkingSet(nil, nil)
	c.Assert(ws.ErrorOrNil(), qt.IsNil)

	ws.Error(&ParseError{Kind: ErrUnknownCommand, Message: "boom"})
	ws.Error(&ParseError{Kind: ErrVariableNotFound, Message: "bust"})
	c.Assert(ws.ErrorOrNil(), qt.ErrorMatches, "(?s).*boom.*bust.*")
}
