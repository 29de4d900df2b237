package match

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/rpschat/internal/dependencies/clock"
	"github.com/mcoot/rpschat/internal/dependencies/random"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/protocol"
	"github.com/mcoot/rpschat/internal/services/resolver"
	"github.com/mcoot/rpschat/internal/services/stats"
)

// MatchIDLength is the length of generated match IDs
const MatchIDLength = 12

// Directory resolves connections to players
type Directory interface {
	Lookup(conn model.ConnID) (*model.Player, bool)
	FindByName(name string, exclude model.ConnID) (model.ConnID, bool, bool)
}

// Notifier delivers match messages to players
type Notifier interface {
	Send(conn model.ConnID, text string)
	BroadcastRoster()
}

// Recorder receives every completed match
type Recorder interface {
	MatchCompleted(record *model.MatchRecord)
}

// Coordinator runs the challenge/choice/forfeit state machine.
// It is not safe for concurrent use; the session server serializes access.
type Coordinator struct {
	directory Directory
	notifier  Notifier
	recorder  Recorder
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	busy       map[model.ConnID]struct{}
	challenges map[model.ConnID]model.ConnID // both directions
	challenger map[model.ConnID]model.ConnID // participant -> who opened the match
	choices    map[model.ConnID]model.Move
}

// NewCoordinator creates a Coordinator with no active matches
func NewCoordinator(
	directory Directory,
	notifier Notifier,
	recorder Recorder,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		directory:  directory,
		notifier:   notifier,
		recorder:   recorder,
		clock:      clock,
		random:     random,
		logger:     logger.With(slog.String("component", "match")),
		busy:       make(map[model.ConnID]struct{}),
		challenges: make(map[model.ConnID]model.ConnID),
		challenger: make(map[model.ConnID]model.ConnID),
		choices:    make(map[model.ConnID]model.Move),
	}
}

// Challenge opens a match from one connection against the named player,
// pre-committing the challenger's move. On error nothing changes.
func (c *Coordinator) Challenge(from model.ConnID, targetName string, move model.Move) error {
	sender, ok := c.directory.Lookup(from)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnknownConnection, from)
	}
	if c.IsBusy(from) {
		return model.ErrSenderBusy
	}

	target, found, self := c.directory.FindByName(targetName, from)
	if !found {
		if self {
			return model.ErrSelfChallenge
		}
		return fmt.Errorf("%w: %s", model.ErrUnknownTarget, targetName)
	}
	if c.IsBusy(target) {
		return fmt.Errorf("%w: %s", model.ErrTargetBusy, targetName)
	}

	c.busy[from] = struct{}{}
	c.busy[target] = struct{}{}
	c.challenges[from] = target
	c.challenges[target] = from
	c.challenger[from] = from
	c.challenger[target] = from
	c.choices[from] = move

	c.logger.Info("challenge opened",
		slog.String("challenger", string(from)),
		slog.String("target", string(target)),
	)
	c.notifier.Send(target, protocol.ChallengeReceivedMessage(sender.Name))
	return nil
}

// Choice commits a move for a paired connection, overwriting any earlier one.
// The match resolves as soon as both sides have a move.
func (c *Coordinator) Choice(from model.ConnID, move model.Move) error {
	opponent, ok := c.challenges[from]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrNotInMatch, from)
	}
	c.choices[from] = move

	if _, ready := c.choices[opponent]; !ready {
		return nil
	}
	c.resolve(from)
	return nil
}

// Forfeit concedes the sender's current match
func (c *Coordinator) Forfeit(from model.ConnID) error {
	if _, ok := c.challenges[from]; !ok {
		return fmt.Errorf("%w: %s", model.ErrNotInMatch, from)
	}
	c.forfeit(from, model.ForfeitReasonTimeout)
	return nil
}

// Disconnect cleans up after a departing connection.
// A paired connection forfeits to its opponent; it reports whether that happened.
func (c *Coordinator) Disconnect(conn model.ConnID) bool {
	if _, ok := c.challenges[conn]; !ok {
		delete(c.busy, conn)
		delete(c.choices, conn)
		return false
	}
	c.forfeit(conn, model.ForfeitReasonDisconnect)
	return true
}

// IsBusy reports whether a connection is in a pending or active match
func (c *Coordinator) IsBusy(conn model.ConnID) bool {
	_, ok := c.busy[conn]
	return ok
}

// Opponent returns the connection paired with conn
func (c *Coordinator) Opponent(conn model.ConnID) (model.ConnID, bool) {
	opponent, ok := c.challenges[conn]
	return opponent, ok
}

// ActiveMatches returns the number of open pairings
func (c *Coordinator) ActiveMatches() int {
	return len(c.challenges) / 2
}

// Invariant checks the consistency of the match state
func (c *Coordinator) Invariant() error {
	if len(c.busy) != len(c.challenges) {
		return fmt.Errorf("busy has %d entries, challenges has %d", len(c.busy), len(c.challenges))
	}
	for conn, opponent := range c.challenges {
		if _, ok := c.busy[conn]; !ok {
			return fmt.Errorf("%s is paired but not busy", conn)
		}
		if back, ok := c.challenges[opponent]; !ok || back != conn {
			return fmt.Errorf("pairing %s -> %s is not symmetric", conn, opponent)
		}
		if conn == opponent {
			return fmt.Errorf("%s is paired with itself", conn)
		}
		if c.challenger[conn] != c.challenger[opponent] {
			return fmt.Errorf("pairing %s/%s disagrees on challenger", conn, opponent)
		}
	}
	for conn := range c.choices {
		if _, ok := c.busy[conn]; !ok {
			return fmt.Errorf("%s has a choice but is not busy", conn)
		}
	}
	if len(c.challenger) != len(c.challenges) {
		return fmt.Errorf("challenger has %d entries, challenges has %d", len(c.challenger), len(c.challenges))
	}
	return nil
}

// participants returns a pairing as (challenger, target)
func (c *Coordinator) participants(conn model.ConnID) (model.ConnID, model.ConnID) {
	a := c.challenger[conn]
	return a, c.challenges[a]
}

func (c *Coordinator) teardown(conns ...model.ConnID) {
	for _, conn := range conns {
		delete(c.busy, conn)
		delete(c.challenges, conn)
		delete(c.challenger, conn)
		delete(c.choices, conn)
	}
}

func (c *Coordinator) resolve(conn model.ConnID) {
	a, b := c.participants(conn)
	moveA, moveB := c.choices[a], c.choices[b]
	playerA, okA := c.directory.Lookup(a)
	playerB, okB := c.directory.Lookup(b)
	if !okA || !okB {
		c.logger.Error("resolving match with unregistered participant",
			slog.String("challenger", string(a)),
			slog.String("target", string(b)),
		)
		c.teardown(a, b)
		return
	}

	outcome, text := resolver.Describe(playerA.Name, moveA, playerB.Name, moveB)

	record := c.newRecord(playerA, playerB)
	record.ChallengerMove = moveA
	record.TargetMove = moveB
	switch outcome {
	case model.OutcomeFirstWins:
		record.Result = model.MatchResultChallengerWin
		record.Winner = playerA.Name
	case model.OutcomeSecondWins:
		record.Result = model.MatchResultTargetWin
		record.Winner = playerB.Name
	default:
		record.Result = model.MatchResultDraw
	}

	// A draw counts as a game played for both, a win for neither
	stats.RecordResult(playerA, outcome == model.OutcomeFirstWins)
	stats.RecordResult(playerB, outcome == model.OutcomeSecondWins)
	c.teardown(a, b)

	c.logger.Info("match resolved",
		slog.String("match_id", string(record.ID)),
		slog.String("result", string(record.Result)),
	)
	c.notifier.Send(a, text)
	c.notifier.Send(b, text)
	c.notifier.BroadcastRoster()
	c.recorder.MatchCompleted(record)
}

func (c *Coordinator) forfeit(loserConn model.ConnID, reason string) {
	a, b := c.participants(loserConn)
	winnerConn := c.challenges[loserConn]
	playerA, okA := c.directory.Lookup(a)
	playerB, okB := c.directory.Lookup(b)
	if !okA || !okB {
		c.logger.Error("forfeiting match with unregistered participant",
			slog.String("challenger", string(a)),
			slog.String("target", string(b)),
		)
		c.teardown(a, b)
		return
	}
	loser, winner := playerA, playerB
	if loserConn == b {
		loser, winner = playerB, playerA
	}

	record := c.newRecord(playerA, playerB)
	record.Result = model.MatchResultForfeit
	record.Winner = winner.Name
	record.Reason = reason

	stats.RecordResult(winner, true)
	stats.RecordResult(loser, false)
	c.teardown(a, b)

	c.logger.Info("match forfeited",
		slog.String("match_id", string(record.ID)),
		slog.String("loser", string(loserConn)),
		slog.String("reason", reason),
	)

	if reason == model.ForfeitReasonDisconnect {
		// The departing side cannot receive anything; the roster follows its removal
		c.notifier.Send(winnerConn, protocol.DisconnectForfeitResult(winner.Name, loser.Name))
	} else {
		text := protocol.TimeoutForfeitResult(winner.Name, loser.Name)
		c.notifier.Send(a, text)
		c.notifier.Send(b, text)
		c.notifier.BroadcastRoster()
	}
	c.recorder.MatchCompleted(record)
}

func (c *Coordinator) newRecord(challenger, target *model.Player) *model.MatchRecord {
	return &model.MatchRecord{
		ID:          model.MatchID(c.random.String(MatchIDLength, random.MatchIDAlphabet)),
		Challenger:  challenger.Name,
		Target:      target.Name,
		CompletedAt: c.clock.Now(),
	}
}
