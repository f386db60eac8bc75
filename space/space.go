// Package space measures how much room each move leaves the you snake.
//
// The count for a direction is the size of the region reachable from the
// cell that move lands on, not counting that cell, with every snake segment
// except the you head treated as a wall. A move that is safe for one turn
// but leads into a region smaller than the snake is usually fatal a few turns
// later, so callers gate strategy proposals on a minimum count.
package space

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/safety"
)

// Counts holds the reachable-cell count per direction.
type Counts [4]int

// Count evaluates every direction. Directions that are unsafe or leave the
// board score 0.
func Count(state *game.GameState, safe safety.Map) Counts {
	var out Counts
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return out
	}
	obstacles := game.SpaceObstacles(state)
	head := you.Head()
	for _, d := range game.Directions {
		if !safe.Safe(d) {
			continue
		}
		next := head.Move(d)
		if !state.InBounds(next) {
			continue
		}
		out[d] = Reachable(state, next, obstacles)
	}
	return out
}

// Reachable counts the cells reachable from `from` by 4-connected steps,
// excluding `from` itself. A blocked or off-board start reaches nothing.
func Reachable(state *game.GameState, from game.Point, obstacles mapset.Set[int]) int {
	if !state.InBounds(from) || obstacles.Has(state.Key(from)) {
		return 0
	}

	visited := mapset.New[int]()
	visited.Put(state.Key(from))
	// The frontier never exceeds the board, so a slice with a read cursor
	// is enough.
	queue := make([]game.Point, 0, int(state.Width*state.Height))
	queue = append(queue, from)

	for i := 0; i < len(queue); i++ {
		for _, n := range queue[i].Neighbors() {
			if !state.InBounds(n) {
				continue
			}
			k := state.Key(n)
			if visited.Has(k) || obstacles.Has(k) {
				continue
			}
			visited.Put(k)
			queue = append(queue, n)
		}
	}

	return visited.Size() - 1
}

// Max returns the largest count among safe directions, or -1 if none is safe.
func (c Counts) Max(safe safety.Map) int {
	best := -1
	for _, d := range game.Directions {
		if safe.Safe(d) && c[d] > best {
			best = c[d]
		}
	}
	return best
}

// Best returns the safe directions sharing the maximum count, in
// game.Directions order.
func (c Counts) Best(safe safety.Map) []game.Direction {
	best := c.Max(safe)
	if best < 0 {
		return nil
	}
	var out []game.Direction
	for _, d := range game.Directions {
		if safe.Safe(d) && c[d] == best {
			out = append(out, d)
		}
	}
	return out
}

// Allows reports whether d is safe and leaves at least min cells.
func (c Counts) Allows(safe safety.Map, d game.Direction, min int) bool {
	return safe.Safe(d) && c[d] >= min
}
