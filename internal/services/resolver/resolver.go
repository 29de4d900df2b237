package resolver

import (
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/protocol"
)

// Resolve decides a match between the first and second mover.
// It has no side effects.
func Resolve(a, b model.Move) model.Outcome {
	switch {
	case a == b:
		return model.OutcomeDraw
	case a.Beats(b):
		return model.OutcomeFirstWins
	default:
		return model.OutcomeSecondWins
	}
}

// Describe resolves a match and renders the result line sent to both players
func Describe(nameA string, moveA model.Move, nameB string, moveB model.Move) (model.Outcome, string) {
	outcome := Resolve(moveA, moveB)
	switch outcome {
	case model.OutcomeFirstWins:
		return outcome, protocol.WinResult(nameA, nameA, moveA, nameB, moveB)
	case model.OutcomeSecondWins:
		return outcome, protocol.WinResult(nameB, nameA, moveA, nameB, moveB)
	default:
		return outcome, protocol.DrawResult(nameA, moveA, nameB, moveB)
	}
}
