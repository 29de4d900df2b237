package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/rpschat/internal/model"
)

func TestResolveRules(t *testing.T) {
	tests := []struct {
		a, b     model.Move
		expected model.Outcome
	}{
		{model.MoveRock, model.MoveScissors, model.OutcomeFirstWins},
		{model.MoveScissors, model.MovePaper, model.OutcomeFirstWins},
		{model.MovePaper, model.MoveRock, model.OutcomeFirstWins},
		{model.MoveScissors, model.MoveRock, model.OutcomeSecondWins},
		{model.MovePaper, model.MoveScissors, model.OutcomeSecondWins},
		{model.MoveRock, model.MovePaper, model.OutcomeSecondWins},
	}

	for _, tt := range tests {
		t.Run(string(tt.a)+"_vs_"+string(tt.b), func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.a, tt.b))
		})
	}
}

func TestResolveSameMoveDraws(t *testing.T) {
	for _, m := range model.Moves() {
		assert.Equal(t, model.OutcomeDraw, Resolve(m, m), "move %s", m)
	}
}

func TestResolveIsMirroredUnderSwap(t *testing.T) {
	for _, a := range model.Moves() {
		for _, b := range model.Moves() {
			assert.Equal(t, Resolve(a, b).Mirror(), Resolve(b, a), "%s vs %s", a, b)
			assert.Equal(t,
				Resolve(a, b) == model.OutcomeFirstWins,
				Resolve(b, a) == model.OutcomeSecondWins,
				"%s vs %s", a, b)
		}
	}
}

func TestDescribe(t *testing.T) {
	outcome, text := Describe("A", model.MoveRock, "B", model.MoveScissors)
	assert.Equal(t, model.OutcomeFirstWins, outcome)
	assert.Equal(t, "Game Result: A wins! A chose rock, B chose scissors.", text)

	outcome, text = Describe("A", model.MoveRock, "B", model.MovePaper)
	assert.Equal(t, model.OutcomeSecondWins, outcome)
	assert.Equal(t, "Game Result: B wins! A chose rock, B chose paper.", text)

	outcome, text = Describe("A", model.MoveRock, "B", model.MoveRock)
	assert.Equal(t, model.OutcomeDraw, outcome)
	assert.Equal(t, "Game Result: It's a draw! A chose rock, B chose rock.", text)
}
