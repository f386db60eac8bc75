package strategy

import (
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/pathfind"
	"github.com/brensch/snekhunt/safety"
	"github.com/brensch/snekhunt/space"
)

// HuntConfig controls when and whom the hunting strategies chase.
type HuntConfig struct {
	// Margin is how much longer you must be than a target.
	Margin int
	// MinHealth and MinLength gate hunting while fragile.
	MinHealth int
	MinLength int
	// InterceptRange is the head distance at or below which Hunt aims at the
	// target's next cells instead of its head.
	InterceptRange int
}

func DefaultHuntConfig() HuntConfig {
	return HuntConfig{Margin: 2, MinHealth: 30, MinLength: 3, InterceptRange: 2}
}

// Huntable reports whether other is strictly shorter than hunter by at least
// margin.
func Huntable(hunter, other *game.Snake, margin int) bool {
	if hunter == nil || other == nil || hunter.Id == other.Id || len(other.Body) == 0 {
		return false
	}
	return other.Len() < hunter.Len() && hunter.Len()-other.Len() >= margin
}

// HuntableSnakes returns the snakes the you snake may hunt, in board order.
func HuntableSnakes(state *game.GameState, margin int) []*game.Snake {
	you := state.You()
	var out []*game.Snake
	for i := range state.Snakes {
		if Huntable(you, &state.Snakes[i], margin) {
			out = append(out, &state.Snakes[i])
		}
	}
	return out
}

// ClosestTarget returns the huntable snake whose head is nearest the you
// head, and that distance. The first snake wins ties.
func ClosestTarget(state *game.GameState, margin int) (*game.Snake, int, bool) {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return nil, 0, false
	}
	head := you.Head()
	var (
		best     *game.Snake
		bestDist int
	)
	for _, s := range HuntableSnakes(state, margin) {
		d := game.Manhattan(head, s.Head())
		if best == nil || d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist, best != nil
}

// ready applies the health and length gates.
func (c HuntConfig) ready(you *game.Snake) bool {
	return you != nil && len(you.Body) > 0 && int(you.Health) >= c.MinHealth && you.Len() >= c.MinLength
}

// Hunt closes on the nearest huntable snake by Manhattan distance and tries
// to cut it off when close.
type Hunt struct {
	Config HuntConfig
}

func (Hunt) Name() string { return NameHunt }

func (h Hunt) Propose(state *game.GameState, safe safety.Map, _ space.Counts) (game.Direction, bool) {
	you := state.You()
	if !h.Config.ready(you) {
		return game.Up, false
	}
	target, dist, ok := ClosestTarget(state, h.Config.Margin)
	if !ok {
		return game.Up, false
	}
	head, targetHead := you.Head(), target.Head()

	if dist <= h.Config.InterceptRange {
		escapes := pathfind.NewFinder(state).OpenNeighbors(targetHead)
		if len(escapes) > 0 {
			// Minimising the sum is the same as minimising the average over a
			// fixed set of escapes.
			return firstSafe(safe, func(d game.Direction) int {
				next := head.Move(d)
				total := 0
				for _, e := range escapes {
					total += game.Manhattan(next, e)
				}
				return total
			})
		}
	}

	return firstSafe(safe, func(d game.Direction) int {
		return game.Manhattan(head.Move(d), targetHead)
	})
}

// AstarHunt follows the shortest path to a free cell next to the nearest
// huntable snake's head.
type AstarHunt struct {
	Config HuntConfig
}

func (AstarHunt) Name() string { return NameAstarHunt }

func (h AstarHunt) Propose(state *game.GameState, safe safety.Map, _ space.Counts) (game.Direction, bool) {
	you := state.You()
	if !h.Config.ready(you) {
		return game.Up, false
	}
	target, _, ok := ClosestTarget(state, h.Config.Margin)
	if !ok {
		return game.Up, false
	}
	finder := pathfind.NewFinder(state)
	goals := finder.OpenNeighbors(target.Head())
	if len(goals) == 0 {
		return game.Up, false
	}
	path := finder.PathToAny(you.Head(), goals)
	d, ok := pathfind.NextMove(path, you.Head())
	if !ok || !safe.Safe(d) {
		return game.Up, false
	}
	return d, true
}
