package space

import (
	"testing"

	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/safety"
)

func state(w, h int32, you []game.Point, others ...[]game.Point) *game.GameState {
	s := &game.GameState{
		Width:  w,
		Height: h,
		YouId:  "me",
		Snakes: []game.Snake{{Id: "me", Health: 100, Body: you}},
	}
	for i, body := range others {
		s.Snakes = append(s.Snakes, game.Snake{Id: string(rune('a' + i)), Health: 100, Body: body})
	}
	return s
}

func TestCount_EmptyBoardCenter(t *testing.T) {
	s := state(3, 3, []game.Point{{X: 1, Y: 1}})
	got := Count(s, safety.AllSafe())
	for _, d := range game.Directions {
		if got[d] != 8 {
			t.Fatalf("%s=%d want=8", d, got[d])
		}
	}
}

func TestCount_LargeBoard(t *testing.T) {
	s := state(19, 19, []game.Point{{X: 9, Y: 9}})
	got := Count(s, safety.AllSafe())
	if got[game.Up] != 360 {
		t.Fatalf("up=%d want=360", got[game.Up])
	}
}

func TestCount_Deterministic(t *testing.T) {
	s := state(7, 7,
		[]game.Point{{X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1}},
		[]game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}, {X: 5, Y: 2}},
	)
	safe := safety.Filter(s, safety.DefaultOptions())
	first := Count(s, safe)
	for i := 0; i < 5; i++ {
		if again := Count(s, safe); again != first {
			t.Fatalf("run %d: %v != %v", i, again, first)
		}
	}
}

func TestCount_WallsAndUnsafeScoreZero(t *testing.T) {
	s := state(3, 3, []game.Point{{X: 0, Y: 0}})
	safe := safety.Filter(s, safety.DefaultOptions())
	got := Count(s, safe)
	if got[game.Down] != 0 || got[game.Left] != 0 {
		t.Fatalf("wall moves must be 0, got %v", got)
	}
	if got[game.Up] == 0 || got[game.Right] == 0 {
		t.Fatalf("open moves must be positive, got %v", got)
	}
}

func TestCount_SelfEncircledIsZero(t *testing.T) {
	s := state(5, 5, []game.Point{
		{X: 2, Y: 2},
		{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3},
		{X: 2, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 2}, {X: 3, Y: 1},
	})
	// Even with an all-true map the blocked starts reach nothing.
	got := Count(s, safety.AllSafe())
	if got != (Counts{}) {
		t.Fatalf("encircled head should score 0 everywhere, got %v", got)
	}
}

func TestCount_PrefersOpenSide(t *testing.T) {
	// A wall of enemy body splits the 7x7 board at x=2.
	wall := []game.Point{{X: 2, Y: 6}, {X: 2, Y: 5}, {X: 2, Y: 4}, {X: 2, Y: 3}, {X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0}}
	s := state(7, 7, []game.Point{{X: 3, Y: 3}, {X: 4, Y: 3}}, wall)
	safe := safety.Filter(s, safety.DefaultOptions())
	got := Count(s, safe)
	t.Logf("counts=%v safe=%v", got, safe)
	if got[game.Left] != 0 {
		t.Fatalf("left runs into the wall, got %d", got[game.Left])
	}
	best := got.Best(safe)
	if len(best) != 2 || best[0] != game.Up || best[1] != game.Down {
		t.Fatalf("best=%v want [up down]", best)
	}
}

func TestCount_FoodIsPassable(t *testing.T) {
	s := state(5, 5, []game.Point{{X: 1, Y: 2}})
	s.Food = []game.Point{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2}}
	got := Count(s, safety.AllSafe())
	if got[game.Right] != 24 {
		t.Fatalf("right=%d want=24", got[game.Right])
	}
}

func TestCounts_MaxWithNothingSafe(t *testing.T) {
	c := Counts{5, 6, 7, 8}
	if got := c.Max(safety.Map{}); got != -1 {
		t.Fatalf("Max with no safe moves=%d want=-1", got)
	}
	if got := c.Best(safety.Map{}); got != nil {
		t.Fatalf("Best with no safe moves=%v want nil", got)
	}
	if !c.Allows(safety.AllSafe(), game.Right, 8) || c.Allows(safety.AllSafe(), game.Right, 9) {
		t.Fatalf("Allows threshold mismatch")
	}
}
