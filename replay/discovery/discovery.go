// Package discovery finds recorded games on the public Battlesnake site.
package discovery

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Config holds discovery settings.
type Config struct {
	BaseURL      string        // site root, e.g. https://play.battlesnake.com
	RequestDelay time.Duration // pause between page fetches
	UserAgent    string
	MaxGames     int // per snake, 0 = unlimited
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://play.battlesnake.com",
		RequestDelay: 500 * time.Millisecond,
		UserAgent:    "snekhunt/1.0 (replay-evaluator)",
		MaxGames:     50,
	}
}

// Player is a snake listed on a leaderboard.
type Player struct {
	Username string
	StatsURL string
}

// Worker fetches and parses leaderboard and stats pages.
type Worker struct {
	config   Config
	base     *url.URL
	client   *http.Client
	gameIDRe *regexp.Regexp
	playerRe *regexp.Regexp
}

func NewWorker(config Config) (*Worker, error) {
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Worker{
		config:   config,
		base:     base,
		client:   &http.Client{Timeout: 30 * time.Second},
		gameIDRe: regexp.MustCompile(`/game/([a-f0-9-]+)`),
		// /leaderboard/{arena}/{username}/stats
		playerRe: regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`),
	}, nil
}

// StatsURL is the stats page of a snake in an arena.
func (w *Worker) StatsURL(arena, username string) string {
	return w.resolve("/leaderboard/" + url.PathEscape(arena) + "/" + url.PathEscape(username) + "/stats")
}

// LeaderboardPlayers lists the players on an arena leaderboard in rank
// order, at most limit of them (0 = all).
func (w *Worker) LeaderboardPlayers(ctx context.Context, arena string, limit int) ([]Player, error) {
	doc, err := w.fetch(ctx, w.resolve("/leaderboard/"+url.PathEscape(arena)))
	if err != nil {
		return nil, fmt.Errorf("leaderboard %s: %w", arena, err)
	}

	var players []Player
	seen := make(map[string]bool)
	doc.Find("a[href*='/leaderboard/']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		m := w.playerRe.FindStringSubmatch(href)
		if len(m) < 2 || seen[m[1]] {
			return true
		}
		seen[m[1]] = true
		players = append(players, Player{Username: m[1], StatsURL: w.resolve(href)})
		return limit <= 0 || len(players) < limit
	})
	return players, nil
}

// PlayerGames returns the game ids linked from a stats page, newest first as
// the page lists them, without duplicates.
func (w *Worker) PlayerGames(ctx context.Context, statsURL string) ([]string, error) {
	doc, err := w.fetch(ctx, statsURL)
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	doc.Find("a[href*='/game/']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		m := w.gameIDRe.FindStringSubmatch(href)
		if len(m) < 2 || seen[m[1]] {
			return true
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
		return w.config.MaxGames <= 0 || len(ids) < w.config.MaxGames
	})
	return ids, nil
}

// Discover sends the game ids of every player to out, skipping ids already
// in known. It returns when all players are crawled or ctx is done.
func (w *Worker) Discover(ctx context.Context, players []Player, known map[string]bool, out chan<- string) error {
	total := 0
	for i, p := range players {
		log.Printf("[Discovery] Checking player %d/%d: %s", i+1, len(players), p.Username)
		ids, err := w.PlayerGames(ctx, p.StatsURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Discovery] Error getting games for %s: %v", p.Username, err)
			continue
		}
		for _, id := range ids {
			if known[id] {
				continue
			}
			known[id] = true
			select {
			case out <- id:
				total++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if i < len(players)-1 {
			if err := w.pause(ctx); err != nil {
				return err
			}
		}
	}
	log.Printf("[Discovery] Done. %d new games", total)
	return nil
}

func (w *Worker) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	if w.config.UserAgent != "" {
		req.Header.Set("User-Agent", w.config.UserAgent)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", pageURL, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

func (w *Worker) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return w.base.ResolveReference(ref).String()
}

func (w *Worker) pause(ctx context.Context) error {
	if w.config.RequestDelay <= 0 {
		return nil
	}
	t := time.NewTimer(w.config.RequestDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
