// Package cache keeps downloaded replay frames in SQLite so a game is only
// fetched from the engine once.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a game is not in the cache.
var ErrNotFound = errors.New("game not cached")

// DB wraps the SQLite connection. SQLite has a single writer, so every
// statement runs under mu.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// Game is one cached game.
type Game struct {
	ID          string
	Winner      string
	Ruleset     string
	Width       int
	Height      int
	CrawledAt   time.Time
	IsEvaluated bool
}

// Frame is the raw engine JSON for one turn.
type Frame struct {
	GameID  string
	Turn    int
	RawJSON string
}

// Open opens (or creates) the cache at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		winner TEXT,
		ruleset TEXT,
		width INTEGER NOT NULL DEFAULT 11,
		height INTEGER NOT NULL DEFAULT 11,
		crawled_at INTEGER NOT NULL,      -- unix seconds
		is_evaluated INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS frames (
		game_id TEXT,
		turn INTEGER,
		raw_json TEXT,
		PRIMARY KEY (game_id, turn),
		FOREIGN KEY(game_id) REFERENCES games(id)
	);

	CREATE INDEX IF NOT EXISTS idx_games_is_evaluated ON games(is_evaluated);
	`

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// GameExists reports whether gameID is already cached.
func (db *DB) GameExists(gameID string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var one int
	err := db.conn.QueryRow("SELECT 1 FROM games WHERE id = ?", gameID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertGame stores a game and its frames in one transaction. Existing rows
// are left alone.
func (db *DB) InsertGame(game Game, frames []Frame) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	crawled := game.CrawledAt
	if crawled.IsZero() {
		crawled = time.Now()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR IGNORE INTO games (id, winner, ruleset, width, height, crawled_at) VALUES (?, ?, ?, ?, ?, ?)",
		game.ID, game.Winner, game.Ruleset, game.Width, game.Height, crawled.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", game.ID, err)
	}

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO frames (game_id, turn, raw_json) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range frames {
		if _, err := stmt.Exec(game.ID, f.Turn, f.RawJSON); err != nil {
			return fmt.Errorf("insert frame %d: %w", f.Turn, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Game loads one cached game record.
func (db *DB) Game(gameID string) (Game, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var (
		g       Game
		crawled int64
	)
	err := db.conn.QueryRow(
		"SELECT id, winner, ruleset, width, height, crawled_at, is_evaluated FROM games WHERE id = ?",
		gameID,
	).Scan(&g.ID, &g.Winner, &g.Ruleset, &g.Width, &g.Height, &crawled, &g.IsEvaluated)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("%s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return Game{}, err
	}
	g.CrawledAt = time.Unix(crawled, 0)
	return g, nil
}

// Frames returns every frame of a game in turn order.
func (db *DB) Frames(gameID string) ([]Frame, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(
		"SELECT game_id, turn, raw_json FROM frames WHERE game_id = ? ORDER BY turn",
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		if err := rows.Scan(&f.GameID, &f.Turn, &f.RawJSON); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// PendingGames lists games that have not been evaluated yet, oldest first.
func (db *DB) PendingGames(limit int) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(
		"SELECT id FROM games WHERE is_evaluated = 0 ORDER BY crawled_at, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkEvaluated flags a game as scored by the replay evaluator.
func (db *DB) MarkEvaluated(gameID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec("UPDATE games SET is_evaluated = 1 WHERE id = ?", gameID)
	return err
}

// Stats counts cached games, evaluated games and frames.
func (db *DB) Stats() (games, evaluated, frames int64, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err = db.conn.QueryRow("SELECT COUNT(*) FROM games").Scan(&games); err != nil {
		return
	}
	if err = db.conn.QueryRow("SELECT COUNT(*) FROM games WHERE is_evaluated = 1").Scan(&evaluated); err != nil {
		return
	}
	err = db.conn.QueryRow("SELECT COUNT(*) FROM frames").Scan(&frames)
	return
}

func (db *DB) Close() error {
	return db.conn.Close()
}
