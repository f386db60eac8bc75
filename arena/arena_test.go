package arena

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/rules"
)

func newArbiter(t *testing.T) *arbiter.Arbiter {
	t.Helper()
	a, err := arbiter.New(arbiter.DefaultConfig(), nil, arbiter.WithRand(func(int) int { return 0 }))
	if err != nil {
		t.Fatalf("arbiter: %v", err)
	}
	return a
}

func TestInitialState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Snakes = 4
	s := InitialState(cfg, rand.New(rand.NewSource(1)))

	want := []game.Point{{X: 1, Y: 1}, {X: 9, Y: 9}, {X: 1, Y: 9}, {X: 9, Y: 1}}
	if len(s.Snakes) != 4 {
		t.Fatalf("snakes=%d", len(s.Snakes))
	}
	for i, sn := range s.Snakes {
		if len(sn.Body) != 3 || sn.Health != 100 {
			t.Fatalf("snake %d = %+v", i, sn)
		}
		for _, p := range sn.Body {
			if p != want[i] {
				t.Fatalf("snake %d not stacked at %v: %v", i, want[i], sn.Body)
			}
		}
	}
	if len(s.Food) != 1 {
		t.Fatalf("food=%v want one", s.Food)
	}
	for _, p := range want {
		if s.Food[0] == p {
			t.Fatalf("food spawned on a snake at %v", p)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	a := newArbiter(t)
	for name, mut := range map[string]func(*Config){
		"tiny board":  func(c *Config) { c.Width = 3 },
		"no snakes":   func(c *Config) { c.Snakes = 0 },
		"five snakes": func(c *Config) { c.Snakes = 5 },
		"neg turns":   func(c *Config) { c.MaxTurns = -1 },
	} {
		cfg := DefaultConfig()
		mut(&cfg)
		if _, err := Play(context.Background(), cfg, a); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPlay_SoloStarves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Snakes = 1
	cfg.Food = rules.NoFood
	cfg.Seed = 7
	turns := 0
	cfg.OnTurn = func(int32) { turns++ }

	res, err := Play(context.Background(), cfg, newArbiter(t))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Turns != 100 || turns != 100 {
		t.Fatalf("turns=%d callbacks=%d want 100 (starvation)", res.Turns, turns)
	}
	if len(res.Rows) != 100 || res.Winner != "" {
		t.Fatalf("rows=%d winner=%q", len(res.Rows), res.Winner)
	}
	for i, r := range res.Rows {
		if int(r.Turn) != i || r.Health != int32(100-i) || r.Actual != r.Move || r.Source != "arena" {
			t.Fatalf("row %d = %+v", i, r)
		}
	}
}

func TestPlay_Duel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.MaxTurns = 200

	res, err := Play(context.Background(), cfg, newArbiter(t))
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if _, err := uuid.Parse(res.GameID); err != nil {
		t.Fatalf("game id %q: %v", res.GameID, err)
	}
	if res.Turns < 1 || res.Turns > cfg.MaxTurns {
		t.Fatalf("turns=%d", res.Turns)
	}
	if res.Winner != "" && res.Winner != "snake1" && res.Winner != "snake2" {
		t.Fatalf("winner=%q", res.Winner)
	}

	perTurn := map[int32]int{}
	for _, r := range res.Rows {
		perTurn[r.Turn]++
		if r.GameID != res.GameID || r.Width != 11 {
			t.Fatalf("row=%+v", r)
		}
	}
	if perTurn[0] != 2 {
		t.Fatalf("turn 0 rows=%d want 2", perTurn[0])
	}
	if len(perTurn) != res.Turns {
		t.Fatalf("turns with rows=%d want %d", len(perTurn), res.Turns)
	}
	t.Logf("duel: %d turns, winner %q", res.Turns, res.Winner)
}

func TestPlay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Play(ctx, DefaultConfig(), newArbiter(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	if res.Turns != 0 || len(res.Rows) != 0 {
		t.Fatalf("cancelled game played turns: %+v", res)
	}
}

func TestRenderBoard(t *testing.T) {
	s := &game.GameState{
		Width: 3, Height: 3, Turn: 5, YouId: "me",
		Food: []game.Point{{X: 0, Y: 2}},
		Snakes: []game.Snake{
			{Id: "me", Health: 90, Body: []game.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}},
			{Id: "it", Health: 90, Body: []game.Point{{X: 2, Y: 2}, {X: 2, Y: 1}}},
		},
	}
	d := arbiter.Decision{Move: game.Up, Reason: arbiter.ReasonSpace, Safe: [4]bool{true, false, false, false}, Space: [4]int{4, 0, 0, 0}}
	got := RenderBoard(s, &d)
	t.Log("\n" + got)

	want := "=== Turn 5 (you=me) ===\n" +
		"F . S \n" +
		". . s \n" +
		"O o . \n" +
		"up    ok space=4\n" +
		"down  x  space=0\n" +
		"left  x  space=0\n" +
		"right x  space=0\n" +
		"-> up (space)\n"
	if got != want {
		t.Fatalf("render mismatch:\n%s\nwant:\n%s", got, want)
	}
	if plain := RenderBoard(s, nil); plain != want[:len("=== Turn 5 (you=me) ===\n")+3*7] {
		t.Fatalf("plain render:\n%s", plain)
	}
}

func TestPlay_Trace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Snakes = 1
	cfg.Food = rules.NoFood
	cfg.Seed = 1
	cfg.MaxTurns = 3
	var boards []string
	cfg.Trace = func(b string) { boards = append(boards, b) }

	if _, err := Play(context.Background(), cfg, newArbiter(t)); err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(boards) != 3 {
		t.Fatalf("traced %d turns want 3", len(boards))
	}
}
