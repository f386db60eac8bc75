// Package arbiter turns one snapshot into one move.
//
// Each turn runs the safety filter, counts reachable space for every
// direction, asks the configured strategies in order and accepts the first
// proposal that is safe and leaves enough room. Without an accepted proposal
// the most spacious safe move wins, with ties broken toward food when hungry
// or at random otherwise. If nothing is safe the configured fallback is
// returned.
package arbiter

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/safety"
	"github.com/brensch/snekhunt/space"
	"github.com/brensch/snekhunt/strategy"
)

// Reason records which stage produced a Decision.
type Reason string

const (
	ReasonFallback     Reason = "fallback"
	ReasonStrategy     Reason = "strategy"
	ReasonSpace        Reason = "space"
	ReasonTiebreakFood Reason = "tiebreak-food"
	ReasonRandom       Reason = "random"
)

type Config struct {
	// Fallback is returned when no move is safe.
	Fallback game.Direction

	// Minimum reachable cells a proposal must leave to be accepted.
	HuntMinSpace int
	FoodMinSpace int

	// Space ties are broken toward food below TieBreakHealth, provided the
	// best move leaves at least TieBreakMinSpace cells.
	TieBreakHealth   int
	TieBreakMinSpace int

	AllowTails bool

	Hunt strategy.HuntConfig
	Food strategy.FoodConfig

	// Strategies are consulted in this order.
	Strategies []string
}

func DefaultConfig() Config {
	return Config{
		Fallback:         game.Down,
		HuntMinSpace:     25,
		FoodMinSpace:     15,
		TieBreakHealth:   50,
		TieBreakMinSpace: 20,
		AllowTails:       true,
		Hunt:             strategy.DefaultHuntConfig(),
		Food:             strategy.DefaultFoodConfig(),
		Strategies:       []string{strategy.NameAstarHunt, strategy.NameHunt, strategy.NameFood},
	}
}

// Decision is the move plus the trace that produced it.
type Decision struct {
	Move     game.Direction
	Reason   Reason
	Strategy string
	Safe     safety.Map
	Space    space.Counts
}

type entry struct {
	strategy strategy.Strategy
	minSpace int
}

// Arbiter is immutable after New and safe for concurrent use.
type Arbiter struct {
	cfg        Config
	strategies []entry
	logger     *slog.Logger
	intn       func(int) int
}

// Option customises an Arbiter.
type Option func(*Arbiter)

// WithRand replaces the source used for random tie-breaks. fn must return a
// value in [0, n) and be safe for concurrent use if the arbiter is shared.
func WithRand(fn func(n int) int) Option {
	return func(a *Arbiter) {
		a.intn = fn
	}
}

// New builds an arbiter. A nil logger discards output.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Arbiter, error) {
	if !cfg.Fallback.Valid() {
		return nil, fmt.Errorf("invalid fallback direction %d", int(cfg.Fallback))
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Arbiter{
		cfg:    cfg,
		logger: logger,
		intn:   rand.Intn,
	}
	for _, name := range cfg.Strategies {
		e, err := cfg.build(name)
		if err != nil {
			return nil, err
		}
		a.strategies = append(a.strategies, e)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (c Config) build(name string) (entry, error) {
	switch name {
	case strategy.NameAstarHunt:
		return entry{strategy.AstarHunt{Config: c.Hunt}, c.HuntMinSpace}, nil
	case strategy.NameHunt:
		return entry{strategy.Hunt{Config: c.Hunt}, c.HuntMinSpace}, nil
	case strategy.NameFood:
		return entry{strategy.Food{Config: c.Food}, c.FoodMinSpace}, nil
	}
	return entry{}, fmt.Errorf("unknown strategy %q", name)
}

// Config returns the configuration the arbiter was built with.
func (a *Arbiter) Config() Config {
	return a.cfg
}

// Move returns only the chosen direction.
func (a *Arbiter) Move(state *game.GameState) game.Direction {
	return a.Decide(state).Move
}

// Decide picks a move for state.YouId. It always returns a valid direction.
func (a *Arbiter) Decide(state *game.GameState) Decision {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		a.logger.Warn("you snake missing from board", "you", state.YouId, "turn", state.Turn)
		return Decision{Move: a.cfg.Fallback, Reason: ReasonFallback}
	}

	safe := safety.Filter(state, safety.Options{AllowTails: a.cfg.AllowTails})
	if !safe.Any() {
		a.logger.Info("no safe moves", "turn", state.Turn, "fallback", a.cfg.Fallback.String())
		return Decision{Move: a.cfg.Fallback, Reason: ReasonFallback, Safe: safe}
	}

	counts := space.Count(state, safe)
	d := Decision{Safe: safe, Space: counts}

	for _, e := range a.strategies {
		name := e.strategy.Name()
		if g, ok := e.strategy.(strategy.Gated); ok && !g.Ready(state) {
			a.logger.Debug("strategy skipped", "strategy", name, "turn", state.Turn)
			continue
		}
		move, ok := e.strategy.Propose(state, safe, counts)
		if !ok {
			a.logger.Debug("strategy abstained", "strategy", name, "turn", state.Turn)
			continue
		}
		if !counts.Allows(safe, move, e.minSpace) {
			a.logger.Debug("strategy proposal rejected",
				"strategy", name,
				"move", move.String(),
				"safe", safe.Safe(move),
				"space", counts[move],
				"min_space", e.minSpace,
			)
			continue
		}
		d.Move, d.Reason, d.Strategy = move, ReasonStrategy, name
		return a.finish(state, d)
	}

	d.Move, d.Reason = a.bySpace(state, you, safe, counts)
	return a.finish(state, d)
}

// bySpace picks among the safe moves with the most reachable cells.
func (a *Arbiter) bySpace(state *game.GameState, you *game.Snake, safe safety.Map, counts space.Counts) (game.Direction, Reason) {
	best := counts.Best(safe)
	if len(best) == 1 {
		return best[0], ReasonSpace
	}

	if int(you.Health) < a.cfg.TieBreakHealth && counts.Max(safe) >= a.cfg.TieBreakMinSpace {
		if move, ok := towardFood(state, you.Head(), best); ok {
			return move, ReasonTiebreakFood
		}
	}

	return best[a.intn(len(best))], ReasonRandom
}

// towardFood returns the candidate that gets closest to the nearest food,
// provided it actually reduces the distance.
func towardFood(state *game.GameState, head game.Point, candidates []game.Direction) (game.Direction, bool) {
	food, dist, ok := state.NearestFood(head)
	if !ok {
		return game.Up, false
	}
	best, bestDist := game.Up, dist
	for _, d := range candidates {
		if nd := game.Manhattan(head.Move(d), food); nd < bestDist {
			best, bestDist = d, nd
		}
	}
	return best, bestDist < dist
}

// finish re-checks that the move stays on the board and logs the decision.
func (a *Arbiter) finish(state *game.GameState, d Decision) Decision {
	head := state.You().Head()
	if !state.InBounds(head.Move(d.Move)) {
		a.logger.Warn("move leaves the board", "move", d.Move.String(), "reason", string(d.Reason), "turn", state.Turn)
		d.Move, d.Reason, d.Strategy = a.cfg.Fallback, ReasonFallback, ""
		for _, alt := range d.Safe.Directions() {
			if state.InBounds(head.Move(alt)) {
				d.Move = alt
				break
			}
		}
	}
	a.logger.Debug("decision",
		"turn", state.Turn,
		"move", d.Move.String(),
		"reason", string(d.Reason),
		"strategy", d.Strategy,
		"space", d.Space[:],
	)
	return d
}
