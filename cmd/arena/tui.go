package main

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var totalTurns atomic.Int64

// GameUpdate is sent once per finished game.
type GameUpdate struct {
	WorkerID int
	GameID   string
	Winner   string
	Turns    int
	Reasons  map[string]int
}

type model struct {
	gamesPlayed int
	turns       int64
	totalTurns  int
	wins        map[string]int
	reasons     map[string]int
	startTime   time.Time
	recentGames []string
	updates     chan GameUpdate
	quit        func()
}

func initialModel(updates chan GameUpdate, quit func()) model {
	return model{
		wins:      make(map[string]int),
		reasons:   make(map[string]int),
		startTime: time.Now(),
		updates:   updates,
		quit:      quit,
	}
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func waitForUpdate(updates chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return u
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			if m.quit != nil {
				m.quit()
			}
			return m, tea.Quit
		}
	case TickMsg:
		m.turns = totalTurns.Load()
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.totalTurns += msg.Turns
		winner := msg.Winner
		if winner == "" {
			winner = "draw"
		}
		m.wins[winner]++
		for r, n := range msg.Reasons {
			m.reasons[r] += n
		}
		line := fmt.Sprintf("Worker %d: %s winner %s in %d turns", msg.WorkerID, msg.GameID[:min(8, len(msg.GameID))], winner, msg.Turns)
		m.recentGames = append([]string{line}, m.recentGames...)
		if len(m.recentGames) > 10 {
			m.recentGames = m.recentGames[:10]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	var gamesPerSec, turnsPerSec, avgTurns float64
	if duration.Seconds() >= 1 {
		gamesPerSec = float64(m.gamesPlayed) / duration.Seconds()
		turnsPerSec = float64(m.turns) / duration.Seconds()
	}
	if m.gamesPlayed > 0 {
		avgTurns = float64(m.totalTurns) / float64(m.gamesPlayed)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Games Played:   %d\n", m.gamesPlayed)
	fmt.Fprintf(&b, "Turns:          %d\n", m.turns)
	fmt.Fprintf(&b, "Avg Turns:      %.1f\n", avgTurns)
	fmt.Fprintf(&b, "Duration:       %s\n", duration.Round(time.Second))
	fmt.Fprintf(&b, "Games/Sec:      %.2f\n", gamesPerSec)
	fmt.Fprintf(&b, "Turns/Sec:      %.2f\n\n", turnsPerSec)

	b.WriteString("Results:\n")
	for _, k := range sortedKeys(m.wins) {
		fmt.Fprintf(&b, "  %-10s %d\n", k, m.wins[k])
	}
	b.WriteString("Decision reasons:\n")
	for _, k := range sortedKeys(m.reasons) {
		fmt.Fprintf(&b, "  %-24s %d\n", k, m.reasons[k])
	}

	b.WriteString("\nRecent Games:\n")
	for _, g := range m.recentGames {
		b.WriteString(g + "\n")
	}
	b.WriteString("\nPress q to quit.\n")
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
