package redis

import (
	"fmt"

	"github.com/mcoot/rpschat/internal/model"
)

// Key prefix for all server data
const keyPrefix = "rpschat"

// matchKey returns the Redis key for a MatchRecord
func matchKey(instance string, id model.MatchID) string {
	return fmt.Sprintf("%s:%s:match:%s", keyPrefix, instance, id)
}

// recentMatchesIndexKey returns the Redis key for the LIST of match IDs, newest first
func recentMatchesIndexKey(instance string) string {
	return fmt.Sprintf("%s:%s:idx:recent_matches", keyPrefix, instance)
}
