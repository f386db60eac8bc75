// food.go holds read-only food queries used by the strategies.

package game

import "sort"

// HasFood reports whether p holds food.
func (s *GameState) HasFood(p Point) bool {
	for _, f := range s.Food {
		if f == p {
			return true
		}
	}
	return false
}

// NearestFood returns the food closest to from by Manhattan distance.
// Ties keep the earlier food in s.Food.
func (s *GameState) NearestFood(from Point) (Point, int, bool) {
	best, bestDist := Point{}, -1
	for _, f := range s.Food {
		d := Manhattan(from, f)
		if bestDist < 0 || d < bestDist {
			best, bestDist = f, d
		}
	}
	return best, bestDist, bestDist >= 0
}

// FoodByDistance returns a copy of s.Food sorted by Manhattan distance from
// `from`, stable on input order.
func (s *GameState) FoodByDistance(from Point) []Point {
	out := make([]Point, len(s.Food))
	copy(out, s.Food)
	sort.SliceStable(out, func(i, j int) bool {
		return Manhattan(from, out[i]) < Manhattan(from, out[j])
	})
	return out
}
