package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
)

// Battlesnake API request/response types

type BattlesnakeInfoResponse struct {
	APIVersion string `json:"apiversion"`
	Author     string `json:"author"`
	Color      string `json:"color"`
	Head       string `json:"head"`
	Tail       string `json:"tail"`
	Version    string `json:"version"`
}

type GameRequest struct {
	Game  Game        `json:"game"`
	Turn  int         `json:"turn"`
	Board Board       `json:"board"`
	You   Battlesnake `json:"you"`
}

type Game struct {
	ID      string  `json:"id"`
	Ruleset Ruleset `json:"ruleset"`
	Map     string  `json:"map"`
	Timeout int     `json:"timeout"`
	Source  string  `json:"source"`
}

type Ruleset struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Board struct {
	Height  int           `json:"height"`
	Width   int           `json:"width"`
	Food    []Coord       `json:"food"`
	Hazards []Coord       `json:"hazards"`
	Snakes  []Battlesnake `json:"snakes"`
}

type Battlesnake struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Health  int     `json:"health"`
	Body    []Coord `json:"body"`
	Latency string  `json:"latency"`
	Head    Coord   `json:"head"`
	Length  int     `json:"length"`
	Shout   string  `json:"shout"`
	Squad   string  `json:"squad"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type MoveResponse struct {
	Move  string `json:"move"`
	Shout string `json:"shout,omitempty"`
}

// Server answers the Battlesnake webhooks with arbiter decisions.
type Server struct {
	arbiter *arbiter.Arbiter
	info    BattlesnakeInfoResponse
	logger  *slog.Logger
}

func NewServer(a *arbiter.Arbiter, info BattlesnakeInfoResponse, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	info.APIVersion = "1"
	return &Server{arbiter: a, info: info, logger: logger}
}

// Handler routes the four Battlesnake endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/move", s.handleMove)
	mux.HandleFunc("/end", s.handleEnd)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, s.info)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Info("game started",
		"game", req.Game.ID,
		"ruleset", req.Game.Ruleset.Name,
		"board", [2]int{req.Board.Width, req.Board.Height},
		"you", req.You.Name,
	)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d := s.arbiter.Decide(convertToGameState(&req))

	s.logger.Info("move",
		"game", req.Game.ID,
		"turn", req.Turn,
		"move", d.Move.String(),
		"reason", string(d.Reason),
		"strategy", d.Strategy,
		"elapsed", time.Since(start),
	)

	writeJSON(w, MoveResponse{Move: d.Move.String(), Shout: shout(d)})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	youAlive := false
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			youAlive = true
			break
		}
	}
	result := "lost"
	if youAlive {
		result = "won"
	} else if len(req.Board.Snakes) == 0 {
		result = "draw"
	}

	s.logger.Info("game ended", "game", req.Game.ID, "turn", req.Turn, "result", result)
	w.WriteHeader(http.StatusOK)
}

func shout(d arbiter.Decision) string {
	if d.Strategy != "" {
		return string(d.Reason) + ":" + d.Strategy
	}
	return string(d.Reason)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// convertToGameState keeps the request's snake order and reported lengths.
func convertToGameState(req *GameRequest) *game.GameState {
	state := &game.GameState{
		Width:  int32(req.Board.Width),
		Height: int32(req.Board.Height),
		YouId:  req.You.ID,
		Turn:   int32(req.Turn),
	}

	state.Food = make([]game.Point, len(req.Board.Food))
	for i, f := range req.Board.Food {
		state.Food[i] = game.Point{X: int32(f.X), Y: int32(f.Y)}
	}

	state.Snakes = make([]game.Snake, len(req.Board.Snakes))
	for i, s := range req.Board.Snakes {
		snake := game.Snake{
			Id:     s.ID,
			Health: int32(s.Health),
			Body:   make([]game.Point, len(s.Body)),
			Length: int32(s.Length),
		}
		for j, b := range s.Body {
			snake.Body[j] = game.Point{X: int32(b.X), Y: int32(b.Y)}
		}
		state.Snakes[i] = snake
	}
	return state
}
