package game

import "fmt"

// Direction is one of the four cardinal moves. The numeric values match the
// policy encoding used by the archive (0=Up, 1=Down, 2=Left, 3=Right).
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every move in encoding order.
var Directions = [4]Direction{Up, Down, Left, Right}

var directionNames = [4]string{"up", "down", "left", "right"}

// String returns the lowercase name the engine expects on the wire.
func (d Direction) String() string {
	if d < Up || d > Right {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d is one of the four moves.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// ParseDirection accepts the wire names ("up", "down", "left", "right").
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if s == name {
			return Direction(i), nil
		}
	}
	return Up, fmt.Errorf("unknown direction %q", s)
}

// Delta returns the unit step for d. Up increases Y.
func (d Direction) Delta() (dx, dy int32) {
	switch d {
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse move.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Move returns the point one step from p in direction d.
func (p Point) Move(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Neighbors returns the four adjacent points in Directions order. Points may be off-board.
func (p Point) Neighbors() [4]Point {
	return [4]Point{p.Move(Up), p.Move(Down), p.Move(Left), p.Move(Right)}
}

// DirectionTo returns the direction of a unit step from p to q.
func (p Point) DirectionTo(q Point) (Direction, bool) {
	switch {
	case q.X == p.X+1 && q.Y == p.Y:
		return Right, true
	case q.X == p.X-1 && q.Y == p.Y:
		return Left, true
	case q.Y == p.Y+1 && q.X == p.X:
		return Up, true
	case q.Y == p.Y-1 && q.X == p.X:
		return Down, true
	}
	return Up, false
}

// Manhattan is the grid distance between two points.
func Manhattan(a, b Point) int {
	return abs(int(a.X-b.X)) + abs(int(a.Y-b.Y))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
