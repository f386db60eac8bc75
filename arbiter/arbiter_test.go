package arbiter

import (
	"strings"
	"sync"
	"testing"

	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/strategy"
)

func dumpState(t *testing.T, s *game.GameState) {
	t.Helper()
	grid := make([][]byte, s.Height)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", int(s.Width)))
	}
	for _, f := range s.Food {
		grid[f.Y][f.X] = 'F'
	}
	for i, sn := range s.Snakes {
		mark := byte('a' + i)
		if sn.Id == s.YouId {
			mark = 'y'
		}
		for j, p := range sn.Body {
			if !s.InBounds(p) {
				continue
			}
			if j == 0 {
				grid[p.Y][p.X] = mark - 32
			} else {
				grid[p.Y][p.X] = mark
			}
		}
	}
	var b strings.Builder
	for y := len(grid) - 1; y >= 0; y-- {
		b.Write(grid[y])
		b.WriteByte('\n')
	}
	t.Logf("turn %d\n%s", s.Turn, b.String())
}

func mustNew(t *testing.T, cfg Config, opts ...Option) *Arbiter {
	t.Helper()
	a, err := New(cfg, nil, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func first(int) int { return 0 }

func TestDecide_NeverReversesIntoNeck(t *testing.T) {
	s := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 100, Body: []game.Point{{X: 5, Y: 5}, {X: 5, Y: 6}}}},
	}
	dumpState(t, s)
	a := mustNew(t, DefaultConfig())
	for i := 0; i < 100; i++ {
		d := a.Decide(s)
		if d.Move == game.Up {
			t.Fatalf("iteration %d: moved up into own neck (%+v)", i, d)
		}
		if !d.Move.Valid() {
			t.Fatalf("invalid move %d", d.Move)
		}
	}
}

func TestDecide_AllUnsafeFallsBack(t *testing.T) {
	s := &game.GameState{
		Width: 3, Height: 3, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 100, Body: []game.Point{
			{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2},
			{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0},
		}}},
	}
	d := mustNew(t, DefaultConfig()).Decide(s)
	if d.Move != game.Down || d.Reason != ReasonFallback {
		t.Fatalf("got %s/%s want down/fallback", d.Move, d.Reason)
	}

	cfg := DefaultConfig()
	cfg.Fallback = game.Left
	if got := mustNew(t, cfg).Move(s); got != game.Left {
		t.Fatalf("configured fallback ignored, got %s", got)
	}
}

func TestDecide_MissingYou(t *testing.T) {
	s := &game.GameState{Width: 11, Height: 11, YouId: "ghost"}
	d := mustNew(t, DefaultConfig()).Decide(s)
	if d.Move != game.Down || d.Reason != ReasonFallback {
		t.Fatalf("got %s/%s want down/fallback", d.Move, d.Reason)
	}
}

func TestDecide_AlwaysValidOnEdges(t *testing.T) {
	a := mustNew(t, DefaultConfig())
	for _, head := range []game.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 5, Y: 0}} {
		s := &game.GameState{
			Width: 11, Height: 11, YouId: "me",
			Snakes: []game.Snake{{Id: "me", Health: 100, Body: []game.Point{head}}},
			Food:   []game.Point{{X: 5, Y: 5}},
		}
		d := a.Decide(s)
		if !s.InBounds(head.Move(d.Move)) {
			t.Fatalf("head %v: %s leaves the board", head, d.Move)
		}
	}
}

func TestDecide_FoodStrategyAccepted(t *testing.T) {
	s := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}}}},
		Food:   []game.Point{{X: 5, Y: 8}},
	}
	d := mustNew(t, DefaultConfig()).Decide(s)
	if d.Move != game.Up || d.Reason != ReasonStrategy || d.Strategy != strategy.NameFood {
		t.Fatalf("got %+v want up via food", d)
	}
}

func TestDecide_SpaceGateRejectsProposal(t *testing.T) {
	s := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 50, Body: []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}}}},
		Food:   []game.Point{{X: 10, Y: 5}},
	}
	cfg := DefaultConfig()
	cfg.FoodMinSpace = 1000
	d := mustNew(t, cfg, WithRand(first)).Decide(s)
	if d.Reason == ReasonStrategy || d.Strategy != "" {
		t.Fatalf("proposal should have been rejected, got %+v", d)
	}
	if d.Reason != ReasonRandom || d.Move != game.Up {
		t.Fatalf("got %s/%s want up/random", d.Move, d.Reason)
	}
}

func TestDecide_AstarHuntPreferred(t *testing.T) {
	wall := make([]game.Point, 0, 9)
	for y := int32(8); y >= 0; y-- {
		wall = append(wall, game.Point{X: 4, Y: y})
	}
	s := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 100, Body: []game.Point{{X: 3, Y: 5}, {X: 2, Y: 5}, {X: 1, Y: 5}, {X: 0, Y: 5}, {X: 0, Y: 4}}},
			{Id: "wall", Health: 100, Body: wall},
			{Id: "prey", Health: 100, Body: []game.Point{{X: 6, Y: 3}, {X: 7, Y: 3}, {X: 8, Y: 3}}},
		},
	}
	dumpState(t, s)
	d := mustNew(t, DefaultConfig()).Decide(s)
	if d.Move != game.Up || d.Strategy != strategy.NameAstarHunt {
		t.Fatalf("got %+v want up via hunt-astar", d)
	}

	cfg := DefaultConfig()
	cfg.Strategies = []string{strategy.NameHunt}
	d = mustNew(t, cfg).Decide(s)
	if d.Move != game.Down || d.Strategy != strategy.NameHunt {
		t.Fatalf("got %+v want down via hunt", d)
	}
}

func TestDecide_SpaceRejectsTailMove(t *testing.T) {
	// Right is an enemy tail: safe, but the flood fill starts on a segment.
	s := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 100, Body: []game.Point{{X: 0, Y: 5}, {X: 0, Y: 4}, {X: 0, Y: 3}}},
			{Id: "them", Health: 100, Body: []game.Point{{X: 2, Y: 6}, {X: 2, Y: 5}, {X: 1, Y: 5}}},
		},
	}
	cfg := DefaultConfig()
	cfg.Strategies = nil
	d := mustNew(t, cfg).Decide(s)
	if !d.Safe[game.Right] {
		t.Fatalf("tail move should be safe: %v", d.Safe)
	}
	if d.Move != game.Up || d.Reason != ReasonSpace {
		t.Fatalf("got %s/%s want up/space (space=%v)", d.Move, d.Reason, d.Space)
	}
}

func TestDecide_TieBreakTowardFood(t *testing.T) {
	s := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 40, Body: []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}}}},
		Food:   []game.Point{{X: 0, Y: 5}},
	}
	cfg := DefaultConfig()
	cfg.Strategies = nil
	d := mustNew(t, cfg, WithRand(first)).Decide(s)
	if d.Move != game.Left || d.Reason != ReasonTiebreakFood {
		t.Fatalf("got %s/%s want left/tiebreak-food", d.Move, d.Reason)
	}

	// Well fed: random among the tied moves.
	s.Snakes[0].Health = 60
	last := func(n int) int { return n - 1 }
	d = mustNew(t, cfg, WithRand(last)).Decide(s)
	if d.Move != game.Right || d.Reason != ReasonRandom {
		t.Fatalf("got %s/%s want right/random", d.Move, d.Reason)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategies = []string{"hunt", "teleport"}
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("unknown strategy should fail")
	}
	cfg = DefaultConfig()
	cfg.Fallback = game.Direction(9)
	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("invalid fallback should fail")
	}
}

func TestDecide_ConcurrentUse(t *testing.T) {
	a := mustNew(t, DefaultConfig())
	base := &game.GameState{
		Width: 11, Height: 11, YouId: "me",
		Snakes: []game.Snake{
			{Id: "me", Health: 45, Body: []game.Point{{X: 5, Y: 5}, {X: 5, Y: 4}, {X: 5, Y: 3}, {X: 5, Y: 2}}},
			{Id: "them", Health: 90, Body: []game.Point{{X: 8, Y: 8}, {X: 8, Y: 7}}},
		},
		Food: []game.Point{{X: 1, Y: 1}, {X: 9, Y: 2}},
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := base.Clone()
			for j := 0; j < 50; j++ {
				if d := a.Decide(s); !d.Move.Valid() {
					t.Errorf("invalid move %d", d.Move)
					return
				}
			}
		}()
	}
	wg.Wait()
}
