package strategy

import (
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/pathfind"
	"github.com/brensch/snekhunt/safety"
	"github.com/brensch/snekhunt/space"
)

// FoodConfig holds the health bands that drive food seeking.
type FoodConfig struct {
	// Prioritize is the well-fed cutoff. Smart abstains at or above it, Seek
	// only above it.
	Prioritize int
	// Critical: below this only the nearest food is considered.
	Critical int
	// ChainBelow: below this, with several foods, chaining is tried first.
	ChainBelow int
	// ChainMin and ChainMax bound the health band in which Chain runs.
	ChainMin int
	ChainMax int
	// ChainFood is how many foods a chain may visit.
	ChainFood int
}

func DefaultFoodConfig() FoodConfig {
	return FoodConfig{
		Prioritize: 80,
		Critical:   30,
		ChainBelow: 70,
		ChainMin:   50,
		ChainMax:   90,
		ChainFood:  3,
	}
}

// Food seeks food according to the you snake's health.
type Food struct {
	Config FoodConfig
}

func (Food) Name() string { return NameFood }

// Ready is the cheap pre-check: hungry enough and there is food.
func (f Food) Ready(state *game.GameState) bool {
	return f.ShouldPrioritize(state)
}

// ShouldPrioritize reports whether health is below Prioritize and any food exists.
func (f Food) ShouldPrioritize(state *game.GameState) bool {
	you := state.You()
	return you != nil && int(you.Health) < f.Config.Prioritize && len(state.Food) > 0
}

func (f Food) Propose(state *game.GameState, safe safety.Map, _ space.Counts) (game.Direction, bool) {
	return f.Smart(state, safe)
}

// Smart picks between single-target seeking and chaining by health.
func (f Food) Smart(state *game.GameState, safe safety.Map) (game.Direction, bool) {
	you := state.You()
	if you == nil || len(you.Body) == 0 || len(state.Food) == 0 {
		return game.Up, false
	}
	health := int(you.Health)
	switch {
	case health < f.Config.Critical:
		return f.Seek(state, safe)
	case health < f.Config.ChainBelow && len(state.Food) > 1:
		if d, ok := f.Chain(state, safe); ok {
			return d, true
		}
		return f.Seek(state, safe)
	case health < f.Config.Prioritize:
		return f.Seek(state, safe)
	}
	return game.Up, false
}

// Seek steps along the shortest path to the nearest reachable food.
func (f Food) Seek(state *game.GameState, safe safety.Map) (game.Direction, bool) {
	you := state.You()
	if you == nil || len(you.Body) == 0 || len(state.Food) == 0 {
		return game.Up, false
	}
	if int(you.Health) > f.Config.Prioritize {
		return game.Up, false
	}
	head := you.Head()
	path := pathfind.FindPathToAny(state, head, state.Food)
	d, ok := pathfind.NextMove(path, head)
	if !ok || !safe.Safe(d) {
		return game.Up, false
	}
	return d, true
}

// Chain steps along the best multi-food route, falling back to Seek when no
// route is feasible.
func (f Food) Chain(state *game.GameState, safe safety.Map) (game.Direction, bool) {
	you := state.You()
	if you == nil || len(you.Body) == 0 {
		return game.Up, false
	}
	health := int(you.Health)
	if health < f.Config.ChainMin || health > f.Config.ChainMax {
		return game.Up, false
	}
	route, ok := pathfind.MultiFood(state, f.Config.ChainFood)
	if !ok {
		return f.Seek(state, safe)
	}
	d, ok := pathfind.NextMove(route.Path, you.Head())
	if !ok || !safe.Safe(d) {
		return f.Seek(state, safe)
	}
	return d, true
}
