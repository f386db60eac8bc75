// Command replay downloads a snake's recent public games and reports how
// often the arbiter agrees with the moves it really made.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/logging"
	"github.com/brensch/snekhunt/replay"
	"github.com/brensch/snekhunt/replay/cache"
	"github.com/brensch/snekhunt/replay/discovery"
	"github.com/brensch/snekhunt/replay/downloader"
	"github.com/brensch/snekhunt/store"
)

type options struct {
	player     string
	snake      string
	arena      string
	top        int
	offline    bool
	maxGames   int
	workers    int
	delay      time.Duration
	baseURL    string
	engineURL  string
	dbPath     string
	outDir     string
	logLevel   string
	pendingMax int
}

func main() {
	var o options
	flag.StringVar(&o.player, "player", getEnvOrDefault("PLAYER", ""), "Leaderboard slug of the snake to evaluate")
	flag.StringVar(&o.snake, "snake", getEnvOrDefault("SNAKE", ""), "Snake name inside game frames (defaults to -player)")
	flag.StringVar(&o.arena, "arena", getEnvOrDefault("ARENA", "standard"), "Leaderboard arena")
	flag.IntVar(&o.top, "top", getEnvIntOrDefault("TOP", 0), "Without -player, evaluate the top N players of the arena")
	flag.BoolVar(&o.offline, "offline", getEnvBoolOrDefault("OFFLINE", false), "Only evaluate games already in the cache")
	flag.IntVar(&o.maxGames, "max-games", getEnvIntOrDefault("MAX_GAMES", 50), "Games per player")
	flag.IntVar(&o.workers, "workers", getEnvIntOrDefault("WORKERS", 4), "Concurrent downloads")
	flag.DurationVar(&o.delay, "delay", getEnvDurationOrDefault("DELAY", 500*time.Millisecond), "Delay between page fetches")
	flag.StringVar(&o.baseURL, "base-url", getEnvOrDefault("BASE_URL", discovery.DefaultConfig().BaseURL), "Battlesnake site")
	flag.StringVar(&o.engineURL, "engine-url", getEnvOrDefault("ENGINE_URL", downloader.DefaultConfig().EngineURL), "Engine websocket URL template")
	flag.StringVar(&o.dbPath, "db", getEnvOrDefault("DB_PATH", filepath.Join("replay-data", "frames.db")), "SQLite frame cache")
	flag.StringVar(&o.outDir, "out-dir", getEnvOrDefault("OUT_DIR", filepath.Join("data", "replay")), "Directory for decision parquet files")
	flag.StringVar(&o.logLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "info"), "Engine log level")
	flag.IntVar(&o.pendingMax, "pending", getEnvIntOrDefault("PENDING", 1000), "With -offline, how many unevaluated games to score")
	flag.Parse()

	if o.snake == "" {
		o.snake = o.player
	}
	if o.snake == "" && (o.offline || o.top <= 0) {
		log.Fatalf("need -player or -snake, or -top for leaderboard mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(o.dbPath), 0o755); err != nil {
		log.Fatalf("cache dir: %v", err)
	}
	db, err := cache.Open(o.dbPath)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer db.Close()

	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		log.Fatalf("log level: %v", err)
	}
	logger := logging.New(os.Stderr, level, false)
	a, err := arbiter.New(arbiter.DefaultConfig(), logger)
	if err != nil {
		log.Fatalf("arbiter: %v", err)
	}
	ev := replay.NewEvaluator(a, logger)

	bw, err := store.NewBatchWriter(o.outDir)
	if err != nil {
		log.Fatalf("parquet: %v", err)
	}

	var total replay.Report
	if o.offline {
		total, err = evaluatePending(db, ev, bw, o.snake, o.pendingMax)
	} else {
		total, err = crawl(ctx, o, db, ev, bw)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("replay stopped: %v", err)
	}

	path, rows, games, ferr := bw.Finalize()
	if ferr != nil {
		log.Printf("Parquet flush failed: %v", ferr)
	} else if path != "" {
		log.Printf("Parquet written: %s (games=%d rows=%d)", path, games, rows)
	}

	cached, evaluated, frames, _ := db.Stats()
	log.Printf("Cache: %d games (%d evaluated), %d frames", cached, evaluated, frames)
	fmt.Print(formatReport(total))
}

// crawl discovers, downloads and scores each player's games in turn.
func crawl(ctx context.Context, o options, db *cache.DB, ev *replay.Evaluator, bw *store.BatchWriter) (replay.Report, error) {
	dcfg := discovery.DefaultConfig()
	dcfg.BaseURL = o.baseURL
	dcfg.RequestDelay = o.delay
	dcfg.MaxGames = o.maxGames
	disc, err := discovery.NewWorker(dcfg)
	if err != nil {
		return replay.Report{}, err
	}

	dlcfg := downloader.DefaultConfig()
	dlcfg.NumWorkers = o.workers
	dlcfg.EngineURL = o.engineURL
	dl := downloader.NewWorker(dlcfg, db)

	var players []discovery.Player
	if o.player != "" {
		players = []discovery.Player{{Username: o.player, StatsURL: disc.StatsURL(o.arena, o.player)}}
	} else {
		if players, err = disc.LeaderboardPlayers(ctx, o.arena, o.top); err != nil {
			return replay.Report{}, err
		}
		log.Printf("Found %d players on %s leaderboard", len(players), o.arena)
	}

	var total replay.Report
	known := make(map[string]bool)
	for _, p := range players {
		name := p.Username
		if o.player != "" {
			name = o.snake
		}

		ids := make(chan string)
		done := make(chan string, o.workers)
		discErr := make(chan error, 1)
		go func() {
			defer close(ids)
			discErr <- disc.Discover(ctx, []discovery.Player{p}, known, ids)
		}()
		go func() {
			dl.Run(ctx, ids, done)
			close(done)
		}()

		for id := range done {
			rep, rows, err := ev.EvaluateCached(db, id, name)
			if err != nil {
				log.Printf("Skipping %s for %s: %v", id, name, err)
				continue
			}
			total.Add(rep)
			if err := bw.WriteGame(rows); err != nil {
				log.Printf("Parquet write %s: %v", id, err)
			}
			if err := db.MarkEvaluated(id); err != nil {
				log.Printf("Mark %s: %v", id, err)
			}
		}
		if err := <-discErr; err != nil {
			return total, err
		}
		st := dl.GetStats()
		log.Printf("[%s] downloaded=%d cached=%d failed=%d", name, st.GamesDownloaded, st.GamesSkipped, st.GamesFailed)
	}
	return total, nil
}

// evaluatePending scores cached games nobody has evaluated yet.
func evaluatePending(db *cache.DB, ev *replay.Evaluator, bw *store.BatchWriter, snake string, limit int) (replay.Report, error) {
	ids, err := db.PendingGames(limit)
	if err != nil {
		return replay.Report{}, err
	}
	var total replay.Report
	for _, id := range ids {
		rep, rows, err := ev.EvaluateCached(db, id, snake)
		if err != nil {
			if !errors.Is(err, replay.ErrSnakeNotInGame) {
				log.Printf("Skipping %s: %v", id, err)
			}
			continue
		}
		total.Add(rep)
		if err := bw.WriteGame(rows); err != nil {
			return total, err
		}
		if err := db.MarkEvaluated(id); err != nil {
			return total, err
		}
	}
	return total, nil
}

func formatReport(r replay.Report) string {
	return fmt.Sprintf(
		"games:       %d\nturns:       %d\nagreements:  %d (%.1f%%)\nno safe:     %d\ndeaths:      %d\nsaves:       %d\n",
		r.Games, r.Turns, r.Agreements, 100*r.AgreementRate(), r.NoSafe, r.Deaths, r.Saves,
	)
}
