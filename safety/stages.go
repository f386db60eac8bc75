package safety

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/brensch/snekhunt/game"
)

// AvoidBackwards disables the move from the head into the neck.
// A snake without a neck (first turn) or with a stacked neck is left alone.
func AvoidBackwards(state *game.GameState, m Map) Map {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return m
	}
	neck, ok := you.Neck()
	if !ok {
		return m
	}
	if d, ok := you.Head().DirectionTo(neck); ok {
		return m.Disable(d)
	}
	return m
}

// AvoidWalls disables moves that leave the board.
func AvoidWalls(state *game.GameState, m Map) Map {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return m
	}
	head := you.Head()
	if head.X == 0 {
		m = m.Disable(game.Left)
	}
	if head.X == state.Width-1 {
		m = m.Disable(game.Right)
	}
	if head.Y == 0 {
		m = m.Disable(game.Down)
	}
	if head.Y == state.Height-1 {
		m = m.Disable(game.Up)
	}
	return m
}

// AvoidSelf disables moves into the you snake's own body.
func AvoidSelf(state *game.GameState, m Map) Map {
	return avoidSet(state, m, game.OwnBody(state))
}

// AvoidOthers disables moves into any segment of another snake, heads
// included. An enemy head cell is avoided whatever the relative lengths.
func AvoidOthers(state *game.GameState, m Map) Map {
	return avoidSet(state, m, game.OtherSnakes(state))
}

func avoidSet(state *game.GameState, m Map, blocked mapset.Set[int]) Map {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return m
	}
	head := you.Head()
	for _, d := range game.Directions {
		next := head.Move(d)
		if state.InBounds(next) && blocked.Has(state.Key(next)) {
			m = m.Disable(d)
		}
	}
	return m
}

// AllowTails re-enables moves into the tail cell of another snake that will
// move off it this turn. It must run after AvoidOthers.
func AllowTails(state *game.GameState, m Map) Map {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return m
	}
	tails := VacatingTails(state)
	if tails.Size() == 0 {
		return m
	}
	head := you.Head()
	for _, d := range game.Directions {
		next := head.Move(d)
		if state.InBounds(next) && tails.Has(state.Key(next)) {
			m = m.enable(d)
		}
	}
	return m
}

// VacatingTails returns the tails of other snakes that are guaranteed to move
// this turn: the owner is not on food and the tail is not stacked.
func VacatingTails(state *game.GameState) mapset.Set[int] {
	tails := mapset.New[int]()
	for i := range state.Snakes {
		s := &state.Snakes[i]
		if s.Id == state.YouId || len(s.Body) < 2 {
			continue
		}
		tail := s.Tail()
		if tail == s.Body[len(s.Body)-2] || tail == s.Head() {
			continue
		}
		if state.HasFood(s.Head()) {
			continue
		}
		if state.InBounds(tail) {
			tails.Put(state.Key(tail))
		}
	}
	return tails
}
