// Package safety computes which of the four moves avoid immediate death.
//
// A Map starts all-true and each stage returns a new Map with some
// directions disabled. Stages never mutate their input, and only AllowTails
// may turn a false back to true.
package safety

import (
	"github.com/brensch/snekhunt/game"
)

// Map holds per-direction safety, indexed by game.Direction.
type Map [4]bool

// Stage is one step of the filter pipeline.
type Stage func(state *game.GameState, m Map) Map

// AllSafe is the pipeline's starting point.
func AllSafe() Map {
	return Map{true, true, true, true}
}

func (m Map) Safe(d game.Direction) bool {
	return d.Valid() && m[d]
}

// Disable returns a copy with d set to false.
func (m Map) Disable(d game.Direction) Map {
	if d.Valid() {
		m[d] = false
	}
	return m
}

func (m Map) enable(d game.Direction) Map {
	if d.Valid() {
		m[d] = true
	}
	return m
}

// Directions returns the safe moves in game.Directions order.
func (m Map) Directions() []game.Direction {
	out := make([]game.Direction, 0, 4)
	for _, d := range game.Directions {
		if m[d] {
			out = append(out, d)
		}
	}
	return out
}

// Any reports whether at least one move is safe.
func (m Map) Any() bool {
	return m[0] || m[1] || m[2] || m[3]
}

// And returns the directions safe in both maps.
func (m Map) And(o Map) Map {
	for i := range m {
		m[i] = m[i] && o[i]
	}
	return m
}

// Options toggles the optional refinements.
type Options struct {
	// AllowTails re-enables moves into tails that will vacate this turn.
	AllowTails bool
}

// DefaultOptions enables the tail refinement.
func DefaultOptions() Options {
	return Options{AllowTails: true}
}

// Stages returns the pipeline in application order. AllowTails, when
// enabled, always runs last.
func Stages(opts Options) []Stage {
	stages := []Stage{AvoidBackwards, AvoidWalls, AvoidSelf, AvoidOthers}
	if opts.AllowTails {
		stages = append(stages, AllowTails)
	}
	return stages
}

// Apply runs stages over m in order.
func Apply(state *game.GameState, m Map, stages ...Stage) Map {
	for _, stage := range stages {
		m = stage(state, m)
	}
	return m
}

// Filter returns the safety map for the you snake.
func Filter(state *game.GameState, opts Options) Map {
	return Apply(state, AllSafe(), Stages(opts)...)
}
