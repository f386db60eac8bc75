// Package pathfind implements A* search over the board.
//
// Every snake segment in the current snapshot is an obstacle; moves by other
// snakes are not predicted. Edges cost 1 and the heuristic is Manhattan
// distance, which is admissible and consistent on a 4-connected grid, so the
// returned paths are shortest paths.
package pathfind

import (
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"

	"github.com/brensch/snekhunt/game"
)

type node struct {
	p        game.Point
	priority int
	// seq breaks priority ties in insertion order.
	seq int
}

// Finder runs repeated searches against one snapshot, sharing the obstacle set.
type Finder struct {
	state     *game.GameState
	obstacles mapset.Set[int]
}

// NewFinder builds a Finder for state.
func NewFinder(state *game.GameState) *Finder {
	return &Finder{state: state, obstacles: game.AllBodies(state)}
}

// FindPath returns a shortest path from start to goal, both inclusive, or nil
// if the goal cannot be reached.
func FindPath(state *game.GameState, start, goal game.Point) []game.Point {
	return NewFinder(state).Path(start, goal)
}

// Path returns a shortest path from start to goal, or nil.
// The start cell itself is never checked against obstacles.
func (f *Finder) Path(start, goal game.Point) []game.Point {
	s := f.state
	if !s.InBounds(start) || !s.InBounds(goal) {
		return nil
	}
	if start == goal {
		return []game.Point{start}
	}

	frontier := heap.New(func(a, b node) bool {
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.seq < b.seq
	})
	seq := 0
	frontier.Push(node{p: start, priority: game.Manhattan(start, goal), seq: seq})

	startKey, goalKey := s.Key(start), s.Key(goal)
	cameFrom := map[int]int{startKey: -1}
	costSoFar := map[int]int{startKey: 0}

	for frontier.Size() > 0 {
		current, _ := frontier.Pop()
		currentKey := s.Key(current.p)
		if currentKey == goalKey {
			return reconstruct(s, cameFrom, goalKey)
		}
		// Stale entry: a cheaper route to this cell was queued after it.
		if current.priority > costSoFar[currentKey]+game.Manhattan(current.p, goal) {
			continue
		}

		for _, n := range current.p.Neighbors() {
			if !s.InBounds(n) {
				continue
			}
			k := s.Key(n)
			if f.obstacles.Has(k) {
				continue
			}
			cost := costSoFar[currentKey] + 1
			if old, seen := costSoFar[k]; seen && cost >= old {
				continue
			}
			costSoFar[k] = cost
			cameFrom[k] = currentKey
			seq++
			frontier.Push(node{p: n, priority: cost + game.Manhattan(n, goal), seq: seq})
		}
	}

	return nil
}

func reconstruct(s *game.GameState, cameFrom map[int]int, goalKey int) []game.Point {
	var rev []game.Point
	for k := goalKey; k != -1; k = cameFrom[k] {
		rev = append(rev, s.PointOf(k))
	}
	path := make([]game.Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// PathToAny returns the shortest path from start to any of goals. Among
// equal lengths the earlier goal wins. It returns nil if none is reachable.
func (f *Finder) PathToAny(start game.Point, goals []game.Point) []game.Point {
	var best []game.Point
	for _, g := range goals {
		p := f.Path(start, g)
		if p != nil && (best == nil || len(p) < len(best)) {
			best = p
		}
	}
	return best
}

// FindPathToAny is PathToAny on a fresh Finder.
func FindPathToAny(state *game.GameState, start game.Point, goals []game.Point) []game.Point {
	return NewFinder(state).PathToAny(start, goals)
}

// OpenNeighbors returns the on-board neighbors of p not occupied by any snake,
// in game.Directions order.
func (f *Finder) OpenNeighbors(p game.Point) []game.Point {
	out := make([]game.Point, 0, 4)
	for _, n := range p.Neighbors() {
		if f.state.InBounds(n) && !f.obstacles.Has(f.state.Key(n)) {
			out = append(out, n)
		}
	}
	return out
}

// NextMove returns the first step of path. path[0] must be head.
func NextMove(path []game.Point, head game.Point) (game.Direction, bool) {
	if len(path) < 2 || path[0] != head {
		return game.Up, false
	}
	return head.DirectionTo(path[1])
}
