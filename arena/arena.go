// Package arena plays local games between arbiter-driven snakes.
package arena

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/rules"
	"github.com/brensch/snekhunt/store"
)

// MaxSnakes is the number of spawn corners.
const MaxSnakes = 4

type Config struct {
	Width    int32
	Height   int32
	Snakes   int
	MaxTurns int // 0 = until one snake is left
	Food     rules.FoodSettings
	Seed     int64 // 0 = time based

	// OnTurn, if set, is called after every resolved turn.
	OnTurn func(turn int32)
	// Trace, if set, receives the rendered board and decision of the first
	// living snake every turn.
	Trace func(board string)
}

// DefaultConfig is a standard 11x11 duel.
func DefaultConfig() Config {
	return Config{
		Width:    11,
		Height:   11,
		Snakes:   2,
		MaxTurns: 500,
		Food:     rules.DefaultFoodSettings,
	}
}

func (c Config) validate() error {
	if c.Width < 5 || c.Height < 5 {
		return fmt.Errorf("board %dx%d too small, need at least 5x5", c.Width, c.Height)
	}
	if c.Snakes < 1 || c.Snakes > MaxSnakes {
		return fmt.Errorf("snakes=%d, need 1..%d", c.Snakes, MaxSnakes)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("negative max turns")
	}
	return nil
}

type Result struct {
	GameID string
	Winner string // empty on a draw or when the turn limit was hit with several snakes alive
	Turns  int
	Rows   []store.DecisionRow
}

// Play runs one game to completion. On cancellation it returns the partial
// result together with ctx.Err().
func Play(ctx context.Context, cfg Config, a *arbiter.Arbiter) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	state := InitialState(cfg, rng)
	res := Result{GameID: uuid.NewString()}
	res.Rows = make([]store.DecisionRow, 0, 256)

	for !finished(state, cfg.Snakes) {
		if cfg.MaxTurns > 0 && int(state.Turn) >= cfg.MaxTurns {
			break
		}
		if err := ctx.Err(); err != nil {
			res.Turns = int(state.Turn)
			return res, err
		}

		decisions := decideAll(state, a)
		if cfg.Trace != nil && len(state.Snakes) > 0 {
			cfg.Trace(RenderBoard(state.Perspective(state.Snakes[0].Id), &decisions[0]))
		}
		moves := make(map[string]game.Direction, len(decisions))
		for i, d := range decisions {
			id := state.Snakes[i].Id
			moves[id] = d.Move
			res.Rows = append(res.Rows, store.NewDecisionRow(res.GameID, state.Perspective(id), d, int32(d.Move), store.SourceArena))
		}

		state = rules.NextStateSimultaneous(state, moves, rng, cfg.Food)
		if cfg.OnTurn != nil {
			cfg.OnTurn(state.Turn)
		}
	}

	res.Turns = int(state.Turn)
	if len(state.Snakes) == 1 && cfg.Snakes > 1 {
		res.Winner = state.Snakes[0].Id
	}
	return res, nil
}

// finished reports game over. A solo game runs until its snake dies.
func finished(state *game.GameState, snakes int) bool {
	if snakes == 1 {
		return len(state.Snakes) == 0
	}
	return rules.IsGameOver(state)
}

// decideAll asks the arbiter for every living snake in parallel. Results are
// indexed like state.Snakes.
func decideAll(state *game.GameState, a *arbiter.Arbiter) []arbiter.Decision {
	out := make([]arbiter.Decision, len(state.Snakes))
	var wg sync.WaitGroup
	for i := range state.Snakes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = a.Decide(state.Perspective(state.Snakes[i].Id))
		}(i)
	}
	wg.Wait()
	return out
}

// InitialState places up to four stacked length-3 snakes one cell in from
// each corner and tops up the minimum food.
func InitialState(cfg Config, rng *rand.Rand) *game.GameState {
	w, h := cfg.Width, cfg.Height
	corners := [MaxSnakes]game.Point{
		{X: 1, Y: 1},
		{X: w - 2, Y: h - 2},
		{X: 1, Y: h - 2},
		{X: w - 2, Y: 1},
	}
	state := &game.GameState{Width: w, Height: h}
	for i := 0; i < cfg.Snakes && i < MaxSnakes; i++ {
		p := corners[i]
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     fmt.Sprintf("snake%d", i+1),
			Health: 100,
			Body:   []game.Point{p, p, p},
			Length: 3,
		})
	}
	state.YouId = state.Snakes[0].Id
	rules.ApplyFoodSettings(state, rng, rules.FoodSettings{MinimumFood: cfg.Food.MinimumFood})
	return state
}
