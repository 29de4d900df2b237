package stats

import (
	"fmt"
	"slices"

	"github.com/mcoot/rpschat/internal/model"
)

// RecordResult counts one finished match for a player.
// Call it once per side of each resolved match.
func RecordResult(p *model.Player, won bool) {
	p.GamesPlayed++
	if won {
		p.GamesWon++
	}
}

// Format renders a player's roster line
func Format(p *model.Player) string {
	return fmt.Sprintf("%s - Games: %d, Wins: %d, Win%%: %.2f", p.Name, p.GamesPlayed, p.GamesWon, p.WinRatio())
}

// FormatRoster renders roster lines sorted lexicographically with duplicates removed
func FormatRoster(players []*model.Player) []string {
	lines := make([]string, 0, len(players))
	for _, p := range players {
		lines = append(lines, Format(p))
	}
	slices.Sort(lines)
	return slices.Compact(lines)
}
