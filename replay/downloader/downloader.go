// Package downloader pulls recorded games from the engine's websocket event
// stream and stores them in the replay cache.
package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/snekhunt/replay/cache"
)

// Config holds downloader configuration.
type Config struct {
	NumWorkers     int
	EngineURL      string // websocket URL template, %s is the game id
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		NumWorkers:     4,
		EngineURL:      "wss://engine.battlesnake.com/games/%s/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// Stats holds download counters.
type Stats struct {
	GamesDownloaded int64
	GamesSkipped    int64
	GamesFailed     int64
	FramesTotal     int64
}

// Worker is a pool of downloaders feeding the cache.
type Worker struct {
	config Config
	db     *cache.DB
	stats  Stats
}

func NewWorker(config Config, db *cache.DB) *Worker {
	if config.NumWorkers <= 0 {
		config.NumWorkers = 1
	}
	return &Worker{config: config, db: db}
}

// Run downloads every id received on gameIDs until the channel closes or ctx
// is done. Each successfully cached id is sent on done if it is non-nil.
func (w *Worker) Run(ctx context.Context, gameIDs <-chan string, done chan<- string) {
	var wg sync.WaitGroup
	for i := 0; i < w.config.NumWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.worker(ctx, id, gameIDs, done)
		}(i)
	}
	wg.Wait()
}

func (w *Worker) worker(ctx context.Context, id int, gameIDs <-chan string, done chan<- string) {
	for {
		var gameID string
		select {
		case <-ctx.Done():
			return
		case gid, ok := <-gameIDs:
			if !ok {
				return
			}
			gameID = gid
		}

		exists, err := w.db.GameExists(gameID)
		if err != nil {
			log.Printf("[Worker %d] Error checking game %s: %v", id, gameID, err)
			continue
		}
		if exists {
			atomic.AddInt64(&w.stats.GamesSkipped, 1)
		} else {
			g, frames, err := w.Download(ctx, gameID)
			if err != nil {
				log.Printf("[Worker %d] Failed to download %s: %v", id, gameID, err)
				atomic.AddInt64(&w.stats.GamesFailed, 1)
				continue
			}
			if err := w.db.InsertGame(g, frames); err != nil {
				log.Printf("[Worker %d] Failed to store %s: %v", id, gameID, err)
				atomic.AddInt64(&w.stats.GamesFailed, 1)
				continue
			}
			atomic.AddInt64(&w.stats.GamesDownloaded, 1)
			atomic.AddInt64(&w.stats.FramesTotal, int64(len(frames)))
			log.Printf("[Worker %d] Downloaded %s: %d turns, winner: %s", id, gameID, len(frames), g.Winner)
		}

		if done != nil {
			select {
			case done <- gameID:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Download reads the full event stream of one game.
func (w *Worker) Download(ctx context.Context, gameID string) (cache.Game, []cache.Frame, error) {
	url := fmt.Sprintf(w.config.EngineURL, gameID)
	dialer := websocket.Dialer{HandshakeTimeout: w.config.ConnectTimeout}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return cache.Game{}, nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var (
		frames    []cache.Frame
		info      GameInfo
		lastFrame *FrameData
	)

read:
	for {
		if w.config.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			if ctx.Err() != nil {
				return cache.Game{}, nil, ctx.Err()
			}
			// Keep a partial stream rather than nothing.
			if len(frames) > 0 {
				break
			}
			return cache.Game{}, nil, fmt.Errorf("read: %w", err)
		}

		var event GameEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("[Download %s] bad event: %v", gameID, err)
			continue
		}

		switch event.Type {
		case "game_info":
			if err := json.Unmarshal(event.Data, &info); err != nil {
				log.Printf("[Download %s] bad game_info: %v", gameID, err)
			}
		case "frame":
			var fd FrameData
			if err := json.Unmarshal(event.Data, &fd); err != nil {
				log.Printf("[Download %s] bad frame: %v", gameID, err)
				continue
			}
			frames = append(frames, cache.Frame{GameID: gameID, Turn: fd.Turn, RawJSON: string(event.Data)})
			lastFrame = &fd
		case "game_end":
			break read
		}
	}

	if len(frames) == 0 {
		return cache.Game{}, nil, fmt.Errorf("game %s: no frames", gameID)
	}

	g := cache.Game{
		ID:      gameID,
		Winner:  determineWinner(lastFrame),
		Ruleset: info.Ruleset.Name,
		Width:   info.Game.Width,
		Height:  info.Game.Height,
	}
	if g.Width == 0 {
		g.Width = lastFrame.Board.Width
	}
	if g.Height == 0 {
		g.Height = lastFrame.Board.Height
	}
	if g.Width == 0 || g.Height == 0 {
		g.Width, g.Height = 11, 11
	}
	return g, frames, nil
}

// GetStats returns a snapshot of the counters.
func (w *Worker) GetStats() Stats {
	return Stats{
		GamesDownloaded: atomic.LoadInt64(&w.stats.GamesDownloaded),
		GamesSkipped:    atomic.LoadInt64(&w.stats.GamesSkipped),
		GamesFailed:     atomic.LoadInt64(&w.stats.GamesFailed),
		FramesTotal:     atomic.LoadInt64(&w.stats.FramesTotal),
	}
}
