// Command arena plays arbiter-vs-arbiter games locally and archives every
// decision to Parquet.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/arena"
	"github.com/brensch/snekhunt/logging"
	"github.com/brensch/snekhunt/rules"
	"github.com/brensch/snekhunt/store"
)

func main() {
	outDir := flag.String("out-dir", "data/arena", "Directory for decision parquet batches")
	games := flag.Int64("games", 100, "Games to play, 0 = until interrupted")
	workers := flag.Int("workers", 8, "Concurrent games")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Games per parquet file")
	snakes := flag.Int("snakes", 2, "Snakes per game (1-4)")
	size := flag.Int("size", 11, "Board width and height")
	maxTurns := flag.Int("max-turns", 500, "Turn limit per game")
	minFood := flag.Int("min-food", rules.DefaultFoodSettings.MinimumFood, "Minimum food on the board")
	foodChance := flag.Int("food-chance", rules.DefaultFoodSettings.FoodSpawnChance, "Percent chance of extra food per turn")
	useTUI := flag.Bool("tui", true, "Show the live dashboard")
	logPath := flag.String("log-file", "arena.log", "Log destination while the dashboard is shown")
	logLevel := flag.String("log-level", "warn", "Engine log level")
	trace := flag.Bool("trace", false, "Log worker 0's boards and decisions every turn")
	flag.Parse()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	logOut := os.Stderr
	if *useTUI {
		f, err := os.OpenFile(*logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
		logOut = f
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("log level: %v", err)
	}
	a, err := arbiter.New(arbiter.DefaultConfig(), logging.New(logOut, level, false))
	if err != nil {
		log.Fatalf("arbiter: %v", err)
	}

	cfg := arena.DefaultConfig()
	cfg.Width, cfg.Height = int32(*size), int32(*size)
	cfg.Snakes = *snakes
	cfg.MaxTurns = *maxTurns
	cfg.Food = rules.FoodSettings{MinimumFood: *minFood, FoodSpawnChance: *foodChance}
	cfg.OnTurn = func(int32) { totalTurns.Add(1) }

	updates := make(chan GameUpdate, *workers)
	writeReqs := make(chan []store.DecisionRow, (*workers)*4)

	writerDone := make(chan struct{})
	go func() {
		parquetWriterLoop(*outDir, *gamesPerFlush, writeReqs)
		close(writerDone)
	}()

	var started atomic.Int64
	var workerWG sync.WaitGroup
	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			wcfg := cfg
			if *trace && workerID == 0 {
				wcfg.Trace = func(board string) { log.Print(board) }
			}
			for ctx.Err() == nil {
				if *games > 0 && started.Add(1) > *games {
					return
				}
				res, err := arena.Play(ctx, wcfg, a)
				if err != nil {
					if ctx.Err() == nil {
						log.Printf("Worker %d: game failed: %v", workerID, err)
					}
					return
				}
				writeReqs <- res.Rows

				reasons := make(map[string]int)
				for _, r := range res.Rows {
					reasons[r.Reason]++
				}
				select {
				case updates <- GameUpdate{WorkerID: workerID, GameID: res.GameID, Winner: res.Winner, Turns: res.Turns, Reasons: reasons}:
				default:
				}
			}
		}(i)
	}

	workersDone := make(chan struct{})
	go func() {
		workerWG.Wait()
		close(writeReqs)
		close(workersDone)
	}()

	if *useTUI {
		p := tea.NewProgram(initialModel(updates, cancel), tea.WithContext(ctx))
		go func() {
			<-workersDone
			p.Quit()
		}()
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			log.Printf("dashboard: %v", err)
		}
		cancel()
	} else {
		runHeadless(ctx, updates, workersDone)
	}

	<-workersDone
	<-writerDone
	log.Printf("Shutdown complete: final parquet flush done (turns=%d)", totalTurns.Load())
}

// runHeadless logs game results and throughput until the workers finish.
func runHeadless(ctx context.Context, updates <-chan GameUpdate, done <-chan struct{}) {
	startTime := time.Now()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	played := 0
	for {
		select {
		case <-ctx.Done():
			log.Printf("Shutdown requested; waiting for workers to finish current games...")
			return
		case <-done:
			return
		case u := <-updates:
			played++
			log.Printf("Worker %d: game %s winner %q turns %d", u.WorkerID, u.GameID, u.Winner, u.Turns)
		case <-ticker.C:
			secs := time.Since(startTime).Seconds()
			log.Printf("Stats: games=%d turns/s=%.1f", played, float64(totalTurns.Load())/secs)
		}
	}
}
