package pathfind

import (
	"github.com/brensch/snekhunt/game"
)

// MaxChainFood bounds the multi-food search. Orderings are enumerated
// exhaustively, so the cost is MaxChainFood! leg combinations.
const MaxChainFood = 4

// FoodRoute is the best ordering found by MultiFood.
type FoodRoute struct {
	// Path runs from the head through every food in Order.
	Path []game.Point
	// Order is the sequence the foods are visited in.
	Order []game.Point
	// Distance is the total number of moves.
	Distance int
}

// MultiFood finds the shortest route from the you head through up to maxFood
// of the nearest foods. It reports false when there is no food or no ordering
// has a path for every leg.
func MultiFood(state *game.GameState, maxFood int) (FoodRoute, bool) {
	you := state.You()
	if you == nil || len(you.Body) == 0 || len(state.Food) == 0 {
		return FoodRoute{}, false
	}
	maxFood = max(1, min(maxFood, MaxChainFood))

	head := you.Head()
	foods := state.FoodByDistance(head)
	if len(foods) > maxFood {
		foods = foods[:maxFood]
	}

	legs := newLegCache(NewFinder(state))

	if len(foods) == 1 {
		p := legs.path(head, foods[0])
		if p == nil {
			return FoodRoute{}, false
		}
		return FoodRoute{Path: p, Order: foods, Distance: len(p) - 1}, true
	}

	var (
		best      FoodRoute
		found     bool
		bestOrder []int
	)
	permute(len(foods), func(order []int) {
		total := 0
		from := head
		for _, idx := range order {
			p := legs.path(from, foods[idx])
			if p == nil {
				return
			}
			total += len(p) - 1
			if found && total >= best.Distance {
				return
			}
			from = foods[idx]
		}
		found = true
		best.Distance = total
		bestOrder = append(bestOrder[:0], order...)
	})
	if !found {
		return FoodRoute{}, false
	}

	from := head
	best.Order = make([]game.Point, 0, len(bestOrder))
	for i, idx := range bestOrder {
		p := legs.path(from, foods[idx])
		if i > 0 {
			// The first cell of each later leg repeats the previous goal.
			p = p[1:]
		}
		best.Path = append(best.Path, p...)
		best.Order = append(best.Order, foods[idx])
		from = foods[idx]
	}
	return best, true
}

type legKey struct {
	from, to game.Point
}

type legCache struct {
	finder *Finder
	paths  map[legKey][]game.Point
}

func newLegCache(f *Finder) *legCache {
	return &legCache{finder: f, paths: make(map[legKey][]game.Point)}
}

// path memoizes Finder.Path, including misses.
func (c *legCache) path(from, to game.Point) []game.Point {
	k := legKey{from, to}
	if p, ok := c.paths[k]; ok {
		return p
	}
	p := c.finder.Path(from, to)
	c.paths[k] = p
	return p
}

// permute calls fn with every permutation of 0..n-1 in lexicographic order.
// fn must not retain the slice.
func permute(n int, fn func([]int)) {
	order := make([]int, n)
	used := make([]bool, n)
	var rec func(depth int)
	rec = func(depth int) {
		if depth == n {
			fn(order)
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			order[depth] = i
			rec(depth + 1)
			used[i] = false
		}
	}
	rec(0)
}
