// Package rules advances a game by one turn under the standard Battlesnake
// ruleset. The arena uses it to run local games and the replay evaluator
// uses it to ask whether a different move would have survived.
package rules

import (
	"math/rand"

	"github.com/brensch/snekhunt/game"
)

// LegalMoves returns the moves for state.YouId that stay on the board and do
// not enter any snake segment. Tails are treated as occupied.
func LegalMoves(state *game.GameState) []game.Direction {
	you := state.You()
	if you == nil || you.Health <= 0 || len(you.Body) == 0 {
		return nil
	}
	occupied := game.AllBodies(state)
	head := you.Head()
	moves := make([]game.Direction, 0, 4)
	for _, d := range game.Directions {
		next := head.Move(d)
		if state.InBounds(next) && !occupied.Has(state.Key(next)) {
			moves = append(moves, d)
		}
	}
	return moves
}

// NextStateSimultaneous applies one move per snake and returns the new
// state. The input is not modified. Snakes without an entry in moves are
// eliminated. Order of resolution: move, health, feeding, food spawn,
// elimination. rng may be nil for a deterministic spawn.
func NextStateSimultaneous(state *game.GameState, moves map[string]game.Direction, rng *rand.Rand, food FoodSettings) *game.GameState {
	next := state.Clone()
	next.Turn++

	missing := make(map[string]bool)
	for i := range next.Snakes {
		s := &next.Snakes[i]
		move, ok := moves[s.Id]
		if !ok || !move.Valid() || len(s.Body) == 0 {
			missing[s.Id] = true
			continue
		}
		body := make([]game.Point, 0, len(s.Body)+1)
		body = append(body, s.Head().Move(move))
		body = append(body, s.Body[:len(s.Body)-1]...)
		s.Body = body
		s.Health--
	}

	eaten := make(map[game.Point]bool)
	for i := range next.Snakes {
		s := &next.Snakes[i]
		if missing[s.Id] {
			continue
		}
		if next.HasFood(s.Head()) {
			eaten[s.Head()] = true
			s.Health = 100
			s.Body = append(s.Body, s.Tail())
		}
		s.Length = int32(len(s.Body))
	}
	if len(eaten) > 0 {
		remaining := next.Food[:0]
		for _, f := range next.Food {
			if !eaten[f] {
				remaining = append(remaining, f)
			}
		}
		next.Food = remaining
	}

	dead := eliminations(next, missing)
	alive := make([]game.Snake, 0, len(next.Snakes))
	for _, s := range next.Snakes {
		if !dead[s.Id] {
			alive = append(alive, s)
		}
	}
	next.Snakes = alive

	// Cells freed by eliminated snakes are open to new food.
	applyFoodRules(next, rng, food, 0x5455524e) // "TURN"
	return next
}

// eliminations decides deaths against the post-move bodies so that every
// snake is judged on the same board.
func eliminations(state *game.GameState, missing map[string]bool) map[string]bool {
	dead := make(map[string]bool, len(missing))
	for id := range missing {
		dead[id] = true
	}

	for _, s := range state.Snakes {
		if dead[s.Id] {
			continue
		}
		if s.Health <= 0 || !state.InBounds(s.Head()) {
			dead[s.Id] = true
		}
	}

	// Body collisions consider every snake that survived the checks above,
	// including ones that die this turn in a later check.
	bodies := make(map[game.Point]bool)
	for _, s := range state.Snakes {
		if dead[s.Id] {
			continue
		}
		for _, p := range s.Body[1:] {
			bodies[p] = true
		}
	}
	headOn := make(map[string]bool)
	for _, s := range state.Snakes {
		if dead[s.Id] {
			continue
		}
		if bodies[s.Head()] {
			headOn[s.Id] = true
		}
	}

	for i, a := range state.Snakes {
		if dead[a.Id] {
			continue
		}
		for j, b := range state.Snakes {
			if i == j || dead[b.Id] || a.Head() != b.Head() {
				continue
			}
			if len(a.Body) <= len(b.Body) {
				headOn[a.Id] = true
			}
		}
	}

	for id := range headOn {
		dead[id] = true
	}
	return dead
}

// IsGameOver reports whether at most one snake is left.
func IsGameOver(state *game.GameState) bool {
	living := 0
	for _, s := range state.Snakes {
		if s.Health > 0 {
			living++
		}
	}
	return living <= 1
}

// Alive reports whether the snake with id is still on the board.
func Alive(state *game.GameState, id string) bool {
	s := state.SnakeByID(id)
	return s != nil && s.Health > 0
}
