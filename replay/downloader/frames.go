package downloader

import (
	"encoding/json"
	"fmt"

	"github.com/brensch/snekhunt/game"
)

// GameEvent is one message of the engine event stream.
type GameEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameInfo is the payload of a "game_info" event.
type GameInfo struct {
	Game    GameDetails `json:"game"`
	Ruleset RulesetInfo `json:"ruleset"`
}

type GameDetails struct {
	ID      string `json:"id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Timeout int    `json:"timeout"`
}

type RulesetInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FrameData is the payload of a "frame" event.
type FrameData struct {
	Turn   int         `json:"turn"`
	Snakes []SnakeData `json:"snakes"`
	Food   []Coord     `json:"food"`
	Board  BoardData   `json:"board,omitempty"`
}

type SnakeData struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int     `json:"health"`
	Body   []Coord `json:"body"`
	Author string  `json:"author,omitempty"`
	Death  *Death  `json:"death,omitempty"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type BoardData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Death struct {
	Cause string `json:"cause"`
	Turn  int    `json:"turn"`
}

// ParseFrame decodes a cached frame.
func ParseFrame(raw string) (FrameData, error) {
	var f FrameData
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return FrameData{}, fmt.Errorf("parse frame: %w", err)
	}
	return f, nil
}

// Alive reports whether the snake is still on the board in this frame.
func (s *SnakeData) Alive() bool {
	return s.Death == nil && s.Health > 0 && len(s.Body) > 0
}

// SnakeByName returns the first snake with the given display name.
func (f *FrameData) SnakeByName(name string) *SnakeData {
	for i := range f.Snakes {
		if f.Snakes[i].Name == name {
			return &f.Snakes[i]
		}
	}
	return nil
}

// SnakeByID returns the snake with the given id.
func (f *FrameData) SnakeByID(id string) *SnakeData {
	for i := range f.Snakes {
		if f.Snakes[i].ID == id {
			return &f.Snakes[i]
		}
	}
	return nil
}

// State converts the frame into the engine's view for youID. Dead snakes are
// dropped and the remaining snakes keep the frame's order. The board size
// comes from the frame when present, else from width/height.
func (f *FrameData) State(width, height int, youID string) *game.GameState {
	if f.Board.Width > 0 {
		width = f.Board.Width
	}
	if f.Board.Height > 0 {
		height = f.Board.Height
	}
	state := &game.GameState{
		Width:  int32(width),
		Height: int32(height),
		YouId:  youID,
		Turn:   int32(f.Turn),
	}
	for _, c := range f.Food {
		state.Food = append(state.Food, c.point())
	}
	for i := range f.Snakes {
		s := &f.Snakes[i]
		if !s.Alive() {
			continue
		}
		body := make([]game.Point, len(s.Body))
		for j, c := range s.Body {
			body[j] = c.point()
		}
		state.Snakes = append(state.Snakes, game.Snake{
			Id:     s.ID,
			Health: int32(s.Health),
			Body:   body,
			Length: int32(len(body)),
		})
	}
	return state
}

// Moves derives the move each snake alive in current made to reach next.
// Snakes without a head in next, or whose head did not move one step, are
// left out.
func Moves(current, next *FrameData) map[string]game.Direction {
	heads := make(map[string]game.Point, len(next.Snakes))
	for _, s := range next.Snakes {
		if len(s.Body) > 0 {
			heads[s.ID] = s.Body[0].point()
		}
	}
	moves := make(map[string]game.Direction, len(current.Snakes))
	for _, s := range current.Snakes {
		if !s.Alive() {
			continue
		}
		to, ok := heads[s.ID]
		if !ok {
			continue
		}
		if d, ok := s.Body[0].point().DirectionTo(to); ok {
			moves[s.ID] = d
		}
	}
	return moves
}

// determineWinner names the only snake alive in the last frame, or "draw".
func determineWinner(frame *FrameData) string {
	if frame == nil {
		return "unknown"
	}
	var alive []SnakeData
	for _, s := range frame.Snakes {
		if s.Alive() {
			alive = append(alive, s)
		}
	}
	if len(alive) == 1 {
		return alive[0].Name
	}
	return "draw"
}

func (c Coord) point() game.Point {
	return game.Point{X: int32(c.X), Y: int32(c.Y)}
}
