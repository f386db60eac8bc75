package game

import "github.com/zyedidia/generic/mapset"

// Occupancy sets hold packed keys (see GameState.Key). Off-board segments are
// dropped so every member satisfies 0 <= x < Width, 0 <= y < Height.

// OwnBody returns the cells of the you snake excluding its head.
func OwnBody(s *GameState) mapset.Set[int] {
	set := mapset.New[int]()
	you := s.You()
	if you == nil {
		return set
	}
	for _, p := range you.Body[min(1, len(you.Body)):] {
		if s.InBounds(p) {
			set.Put(s.Key(p))
		}
	}
	return set
}

// OtherSnakes returns every segment, heads included, of snakes other than you.
func OtherSnakes(s *GameState) mapset.Set[int] {
	set := mapset.New[int]()
	for i := range s.Snakes {
		if s.Snakes[i].Id == s.YouId {
			continue
		}
		for _, p := range s.Snakes[i].Body {
			if s.InBounds(p) {
				set.Put(s.Key(p))
			}
		}
	}
	return set
}

// AllBodies returns every segment of every snake on the board.
func AllBodies(s *GameState) mapset.Set[int] {
	set := mapset.New[int]()
	for i := range s.Snakes {
		for _, p := range s.Snakes[i].Body {
			if s.InBounds(p) {
				set.Put(s.Key(p))
			}
		}
	}
	return set
}

// SpaceObstacles is OtherSnakes plus OwnBody: every segment except the you
// head, which is vacated by whichever move is taken.
func SpaceObstacles(s *GameState) mapset.Set[int] {
	set := OtherSnakes(s)
	OwnBody(s).Each(func(k int) {
		set.Put(k)
	})
	return set
}
