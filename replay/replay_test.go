package replay

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/replay/cache"
	"github.com/brensch/snekhunt/replay/downloader"
	"github.com/brensch/snekhunt/store"
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	a, err := arbiter.New(arbiter.DefaultConfig(), nil, arbiter.WithRand(func(int) int { return 0 }))
	if err != nil {
		t.Fatalf("arbiter: %v", err)
	}
	return NewEvaluator(a, nil)
}

func coords(pts ...[2]int) []downloader.Coord {
	out := make([]downloader.Coord, len(pts))
	for i, p := range pts {
		out[i] = downloader.Coord{X: p[0], Y: p[1]}
	}
	return out
}

func frame(turn int, snakes ...downloader.SnakeData) downloader.FrameData {
	return downloader.FrameData{Turn: turn, Snakes: snakes}
}

func snake(id, name string, health int, body []downloader.Coord) downloader.SnakeData {
	return downloader.SnakeData{ID: id, Name: name, Health: health, Body: body}
}

// me walks up then left; the arbiter breaks every tie upward.
func walkFrames() []downloader.FrameData {
	other := snake("s2", "other", 90, coords([2]int{6, 6}, [2]int{6, 5}))
	return []downloader.FrameData{
		frame(0, snake("s1", "me", 90, coords([2]int{3, 1}, [2]int{3, 0})), other),
		frame(1, snake("s1", "me", 89, coords([2]int{3, 2}, [2]int{3, 1})), other),
		frame(2, snake("s1", "me", 88, coords([2]int{2, 2}, [2]int{3, 2})), other),
	}
}

func TestEvaluateGame_Agreement(t *testing.T) {
	e := newEvaluator(t)
	rep, rows, err := e.EvaluateGame("g1", 7, 7, walkFrames(), "me")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if rep.Games != 1 || rep.Turns != 3 || rep.Agreements != 1 || rep.Deaths != 0 || rep.NoSafe != 0 {
		t.Fatalf("report=%+v", rep)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d want=3", len(rows))
	}
	if rows[0].Actual != int32(game.Up) || rows[1].Actual != int32(game.Left) || rows[2].Actual != store.NoMove {
		t.Fatalf("actual moves=%d,%d,%d", rows[0].Actual, rows[1].Actual, rows[2].Actual)
	}
	for _, r := range rows {
		if r.Source != store.SourceReplay || r.SnakeID != "s1" || r.GameID != "g1" {
			t.Fatalf("row=%+v", r)
		}
	}
	if got := rep.AgreementRate(); got < 0.33 || got > 0.34 {
		t.Fatalf("agreement rate=%f", got)
	}
}

func TestEvaluateGame_Save(t *testing.T) {
	// me drove into the left wall on turn 0; up or down would have lived.
	dead := snake("s1", "me", 89, coords([2]int{-1, 3}, [2]int{0, 3}, [2]int{1, 3}))
	dead.Death = &downloader.Death{Cause: "wall-collision", Turn: 1}
	frames := []downloader.FrameData{
		frame(0,
			snake("s1", "me", 90, coords([2]int{0, 3}, [2]int{1, 3}, [2]int{2, 3})),
			snake("s2", "other", 90, coords([2]int{6, 6}, [2]int{6, 5}, [2]int{6, 4}))),
		frame(1, dead,
			snake("s2", "other", 89, coords([2]int{5, 6}, [2]int{6, 6}, [2]int{6, 5}))),
	}

	e := newEvaluator(t)
	rep, rows, err := e.EvaluateGame("g2", 7, 7, frames, "me")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if rep.Turns != 1 || rep.Deaths != 1 || rep.Saves != 1 || rep.Agreements != 0 {
		t.Fatalf("report=%+v", rep)
	}
	if rows[0].Move != int32(game.Up) || rows[0].Actual != int32(game.Left) {
		t.Fatalf("row=%+v", rows[0])
	}
}

func TestEvaluateGame_UnknownSnake(t *testing.T) {
	e := newEvaluator(t)
	if _, _, err := e.EvaluateGame("g1", 7, 7, walkFrames(), "ghost"); !errors.Is(err, ErrSnakeNotInGame) {
		t.Fatalf("err=%v want ErrSnakeNotInGame", err)
	}
}

func TestEvaluateCached(t *testing.T) {
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var frames []cache.Frame
	for _, f := range walkFrames() {
		raw, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		frames = append(frames, cache.Frame{GameID: "g1", Turn: f.Turn, RawJSON: string(raw)})
	}
	if err := db.InsertGame(cache.Game{ID: "g1", Width: 7, Height: 7}, frames); err != nil {
		t.Fatalf("insert: %v", err)
	}

	e := newEvaluator(t)
	rep, rows, err := e.EvaluateCached(db, "g1", "me")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if rep.Turns != 3 || rep.Agreements != 1 || len(rows) != 3 || rows[0].Width != 7 {
		t.Fatalf("report=%+v rows=%d", rep, len(rows))
	}

	var total Report
	total.Add(rep)
	total.Add(rep)
	if total.Games != 2 || total.Turns != 6 {
		t.Fatalf("total=%+v", total)
	}
}
