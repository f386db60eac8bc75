// Package game defines the core game state types for Battlesnake.
//
// A GameState is one turn's snapshot as received from the engine. Everything
// the decision pipeline derives from it (occupancy sets, safety maps, flood
// fill counts, paths) is rebuilt per turn; nothing here is retained across
// turns.
package game

// Point is a board coordinate.
// Coordinates follow Battlesnake conventions: (0,0) is bottom-left.
type Point struct {
	X int32
	Y int32
}

type Snake struct {
	Id     string
	Health int32
	Body   []Point
	// Length as reported by the engine. Zero means "derive from Body".
	Length int32
}

// Len returns the snake length, preferring the engine-reported value.
func (s *Snake) Len() int {
	if s.Length > 0 {
		return int(s.Length)
	}
	return len(s.Body)
}

func (s *Snake) Head() Point {
	return s.Body[0]
}

func (s *Snake) Tail() Point {
	return s.Body[len(s.Body)-1]
}

// Neck returns body[1]. A snake on its very first turn has no neck.
func (s *Snake) Neck() (Point, bool) {
	if len(s.Body) < 2 {
		return Point{}, false
	}
	return s.Body[1], true
}

// GameState is the complete per-turn snapshot.
// YouId selects the snake the engine is deciding for.
type GameState struct {
	Width  int32
	Height int32
	Snakes []Snake
	Food   []Point
	YouId  string
	Turn   int32
}

// You returns the snake identified by YouId, or nil if it is not on the board.
func (s *GameState) You() *Snake {
	for i := range s.Snakes {
		if s.Snakes[i].Id == s.YouId {
			return &s.Snakes[i]
		}
	}
	return nil
}

// SnakeByID returns the snake with the given id, or nil.
func (s *GameState) SnakeByID(id string) *Snake {
	for i := range s.Snakes {
		if s.Snakes[i].Id == id {
			return &s.Snakes[i]
		}
	}
	return nil
}

func (s *GameState) InBounds(p Point) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// Key packs an on-board point into y*Width+x.
func (s *GameState) Key(p Point) int {
	return int(p.Y)*int(s.Width) + int(p.X)
}

// PointOf is the inverse of Key.
func (s *GameState) PointOf(key int) Point {
	w := int(s.Width)
	return Point{X: int32(key % w), Y: int32(key / w)}
}

// Perspective returns a shallow copy of the state seen from another snake.
// Slices are shared with the receiver and must not be mutated.
func (s *GameState) Perspective(youID string) *GameState {
	out := *s
	out.YouId = youID
	return &out
}

// Clone performs a deep copy of the game state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		Width:  s.Width,
		Height: s.Height,
		YouId:  s.YouId,
		Turn:   s.Turn,
	}

	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}

	if len(s.Snakes) > 0 {
		out.Snakes = make([]Snake, len(s.Snakes))
		for i := range s.Snakes {
			out.Snakes[i] = Snake{Id: s.Snakes[i].Id, Health: s.Snakes[i].Health, Length: s.Snakes[i].Length}
			if len(s.Snakes[i].Body) > 0 {
				out.Snakes[i].Body = make([]Point, len(s.Snakes[i].Body))
				copy(out.Snakes[i].Body, s.Snakes[i].Body)
			}
		}
	}

	return out
}
