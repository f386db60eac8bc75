// Package strategy holds the move proposers consulted by the arbiter.
//
// A Strategy either proposes one direction or abstains. Proposals are always
// drawn from, or checked against, the safety map handed in; the arbiter
// applies the space thresholds on top.
package strategy

import (
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/safety"
	"github.com/brensch/snekhunt/space"
)

// Strategy proposes a move for the you snake.
type Strategy interface {
	Name() string
	Propose(state *game.GameState, safe safety.Map, counts space.Counts) (game.Direction, bool)
}

// Gated is implemented by strategies with a cheap precondition. The arbiter
// skips the strategy when Ready is false.
type Gated interface {
	Ready(state *game.GameState) bool
}

// Strategy names accepted by the arbiter configuration.
const (
	NameAstarHunt = "hunt-astar"
	NameHunt      = "hunt"
	NameFood      = "food"
)

// firstSafe returns the safe direction with the lowest score. Ties keep the
// earlier direction in game.Directions order.
func firstSafe(safe safety.Map, score func(game.Direction) int) (game.Direction, bool) {
	best, bestScore, found := game.Up, 0, false
	for _, d := range game.Directions {
		if !safe.Safe(d) {
			continue
		}
		s := score(d)
		if !found || s < bestScore {
			best, bestScore, found = d, s, true
		}
	}
	return best, found
}
