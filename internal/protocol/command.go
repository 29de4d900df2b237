package protocol

import (
	"fmt"
	"strings"

	"github.com/mcoot/rpschat/internal/model"
)

// Command keywords recognized at the start of an inbound line
const (
	KeywordChallenge = "challenge"
	KeywordChoice    = "choice"
	KeywordLoss      = "loss"
)

// Command is one parsed inbound line. The concrete types are closed:
// Challenge, Choice, Loss and Chat.
type Command interface {
	command()
}

// Challenge opens a match against the named player with a pre-committed move
type Challenge struct {
	Target string
	Move   model.Move
}

// Choice submits the responding move for the current match
type Choice struct {
	Move model.Move
}

// Loss forfeits the current match
type Loss struct{}

// Chat is free text for the other players
type Chat struct {
	Text string
}

func (Challenge) command() {}
func (Choice) command()    {}
func (Loss) command()      {}
func (Chat) command()      {}

// Parse turns a trimmed inbound line into a Command.
// Lines whose first word is a command keyword must be well formed or
// ErrMalformedCommand is returned; any other text is Chat.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Chat{Text: ""}, nil
	}

	switch fields[0] {
	case KeywordChallenge:
		// challenge <target name...> <move>
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: usage: challenge <player> <rock|paper|scissors>", model.ErrMalformedCommand)
		}
		move, err := model.ParseMove(fields[len(fields)-1])
		if err != nil {
			return nil, err
		}
		return Challenge{
			Target: strings.Join(fields[1:len(fields)-1], " "),
			Move:   move,
		}, nil

	case KeywordChoice:
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: usage: choice <rock|paper|scissors>", model.ErrMalformedCommand)
		}
		move, err := model.ParseMove(fields[1])
		if err != nil {
			return nil, err
		}
		return Choice{Move: move}, nil

	case KeywordLoss:
		if len(fields) != 1 {
			// "loss" followed by more words is ordinary chat
			return Chat{Text: line}, nil
		}
		return Loss{}, nil
	}

	return Chat{Text: line}, nil
}

// NormalizeName trims a nickname and collapses internal runs of whitespace
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
