package protocol

import (
	"fmt"
	"strings"

	"github.com/mcoot/rpschat/internal/model"
)

// Reserved prefixes for outbound control messages. Every other line is chat.
const (
	PrefixRoster            = "Players:"
	PrefixChallengeReceived = "Challenge Received: "
	PrefixGameResult        = "Game Result: "
)

// HasReservedPrefix reports whether a line would be read as a control message
func HasReservedPrefix(line string) bool {
	return strings.HasPrefix(line, PrefixRoster) ||
		strings.HasPrefix(line, PrefixChallengeReceived) ||
		strings.HasPrefix(line, PrefixGameResult)
}

// ReservedName reports whether chat or roster lines starting with name could pose as control messages
func ReservedName(name string) bool {
	return HasReservedPrefix(name + ": ")
}

// RecordSeparator terminates every outbound message
const RecordSeparator = "\n"

// RosterMessage renders the roster control message from formatted player lines
func RosterMessage(lines []string) string {
	if len(lines) == 0 {
		return PrefixRoster
	}
	return PrefixRoster + "\n" + strings.Join(lines, "\n")
}

// ChallengeReceivedMessage tells a target who challenged them
func ChallengeReceivedMessage(challenger string) string {
	return PrefixChallengeReceived + challenger
}

// ChatMessage prefixes text with the sender's name unless the client already did
func ChatMessage(sender, text string) string {
	prefix := sender + ": "
	if strings.HasPrefix(text, prefix) {
		return text
	}
	return prefix + text
}

// DrawResult renders a drawn match, challenger first
func DrawResult(nameA string, moveA model.Move, nameB string, moveB model.Move) string {
	return fmt.Sprintf("%sIt's a draw! %s chose %s, %s chose %s.", PrefixGameResult, nameA, moveA, nameB, moveB)
}

// WinResult renders a decided match, challenger first
func WinResult(winner, nameA string, moveA model.Move, nameB string, moveB model.Move) string {
	return fmt.Sprintf("%s%s wins! %s chose %s, %s chose %s.", PrefixGameResult, winner, nameA, moveA, nameB, moveB)
}

// TimeoutForfeitResult renders a match lost by a client-side response timeout
func TimeoutForfeitResult(winner, loser string) string {
	return fmt.Sprintf("%s%s wins by forfeit! %s did not respond in time.", PrefixGameResult, winner, loser)
}

// DisconnectForfeitResult renders a match lost by a participant leaving
func DisconnectForfeitResult(winner, loser string) string {
	return fmt.Sprintf("%s%s wins by forfeit! %s disconnected.", PrefixGameResult, winner, loser)
}
