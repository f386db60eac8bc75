// Package replay scores the arbiter against games other snakes really played.
//
// For every turn where the chosen snake is alive, the arbiter decides a move
// from that turn's frame. The decision is compared with the move the snake
// made, read off the next frame. When the snake died on a turn, the turn is
// re-simulated with the arbiter's move in place of the real one to see
// whether the engine would have lived.
package replay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/replay/cache"
	"github.com/brensch/snekhunt/replay/downloader"
	"github.com/brensch/snekhunt/rules"
	"github.com/brensch/snekhunt/store"
)

// ErrSnakeNotInGame is returned when the named snake never appears.
var ErrSnakeNotInGame = errors.New("snake not in game")

// Report aggregates evaluation counters.
type Report struct {
	Games      int
	Turns      int // turns the snake was alive and a decision was made
	Agreements int // decision equals the recorded move
	NoSafe     int // no safe move, fallback used
	Deaths     int // turns after which the real snake was gone
	Saves      int // deaths where the arbiter's move survives the same turn
}

// Add accumulates o into r.
func (r *Report) Add(o Report) {
	r.Games += o.Games
	r.Turns += o.Turns
	r.Agreements += o.Agreements
	r.NoSafe += o.NoSafe
	r.Deaths += o.Deaths
	r.Saves += o.Saves
}

// AgreementRate is Agreements/Turns, 0 with no turns.
func (r Report) AgreementRate() float64 {
	if r.Turns == 0 {
		return 0
	}
	return float64(r.Agreements) / float64(r.Turns)
}

type Evaluator struct {
	arbiter *arbiter.Arbiter
	logger  *slog.Logger
}

// NewEvaluator wraps an arbiter. A nil logger discards output.
func NewEvaluator(a *arbiter.Arbiter, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{arbiter: a, logger: logger}
}

// EvaluateCached loads a game from the cache and evaluates it.
func (e *Evaluator) EvaluateCached(db *cache.DB, gameID, snakeName string) (Report, []store.DecisionRow, error) {
	g, err := db.Game(gameID)
	if err != nil {
		return Report{}, nil, err
	}
	raw, err := db.Frames(gameID)
	if err != nil {
		return Report{}, nil, fmt.Errorf("frames %s: %w", gameID, err)
	}
	frames := make([]downloader.FrameData, 0, len(raw))
	for _, f := range raw {
		fd, err := downloader.ParseFrame(f.RawJSON)
		if err != nil {
			e.logger.Warn("skipping frame", "game", gameID, "turn", f.Turn, "err", err)
			continue
		}
		frames = append(frames, fd)
	}
	return e.EvaluateGame(gameID, g.Width, g.Height, frames, snakeName)
}

// EvaluateGame walks frames in order for the snake called snakeName.
func (e *Evaluator) EvaluateGame(gameID string, width, height int, frames []downloader.FrameData, snakeName string) (Report, []store.DecisionRow, error) {
	var youID string
	for i := range frames {
		if s := frames[i].SnakeByName(snakeName); s != nil {
			youID = s.ID
			break
		}
	}
	if youID == "" {
		return Report{}, nil, fmt.Errorf("%s in %s: %w", snakeName, gameID, ErrSnakeNotInGame)
	}

	rep := Report{Games: 1}
	var rows []store.DecisionRow
	for i := range frames {
		cur := &frames[i]
		you := cur.SnakeByID(youID)
		if you == nil || !you.Alive() {
			continue
		}

		state := cur.State(width, height, youID)
		d := e.arbiter.Decide(state)
		rep.Turns++
		if !d.Safe.Any() {
			rep.NoSafe++
		}

		actual := store.NoMove
		if i+1 < len(frames) {
			next := &frames[i+1]
			moves := downloader.Moves(cur, next)
			if m, ok := moves[youID]; ok {
				actual = int32(m)
				if m == d.Move {
					rep.Agreements++
				}
			}
			if after := next.SnakeByID(youID); after == nil || !after.Alive() {
				rep.Deaths++
				if survives(state, moves, youID, d.Move) {
					rep.Saves++
					e.logger.Info("engine move survives recorded death",
						"game", gameID, "turn", cur.Turn, "engine", d.Move.String(), "reason", string(d.Reason))
				}
			}
		}
		rows = append(rows, store.NewDecisionRow(gameID, state, d, actual, store.SourceReplay))
	}

	e.logger.Debug("game evaluated", "game", gameID, "snake", snakeName,
		"turns", rep.Turns, "agreements", rep.Agreements, "saves", rep.Saves)
	return rep, rows, nil
}

// survives replays one turn with the other snakes' recorded moves and move
// in place of youID's own.
func survives(state *game.GameState, recorded map[string]game.Direction, youID string, move game.Direction) bool {
	moves := make(map[string]game.Direction, len(recorded)+1)
	for id, m := range recorded {
		moves[id] = m
	}
	moves[youID] = move
	next := rules.NextStateSimultaneous(state, moves, nil, rules.NoFood)
	return rules.Alive(next, youID)
}
