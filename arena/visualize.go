package arena

import (
	"fmt"
	"strings"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
)

// RenderBoard draws the board from state.YouId's point of view, top row
// first. Own head/body are O/o, other snakes S/s, food F. When d is non-nil
// the decision's per-direction safety and space counts follow the grid.
func RenderBoard(state *game.GameState, d *arbiter.Decision) string {
	grid := make([][]byte, state.Height)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", int(state.Width)))
	}
	for _, f := range state.Food {
		if state.InBounds(f) {
			grid[f.Y][f.X] = 'F'
		}
	}
	for _, s := range state.Snakes {
		body, head := byte('s'), byte('S')
		if s.Id == state.YouId {
			body, head = 'o', 'O'
		}
		// Tail first so the head wins on stacked segments.
		for i := len(s.Body) - 1; i >= 0; i-- {
			p := s.Body[i]
			if !state.InBounds(p) {
				continue
			}
			if i == 0 {
				grid[p.Y][p.X] = head
			} else {
				grid[p.Y][p.X] = body
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Turn %d (you=%s) ===\n", state.Turn, state.YouId)
	for y := len(grid) - 1; y >= 0; y-- {
		for _, c := range grid[y] {
			sb.WriteByte(c)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	if d == nil {
		return sb.String()
	}

	for _, dir := range game.Directions {
		mark := "x"
		if d.Safe.Safe(dir) {
			mark = "ok"
		}
		fmt.Fprintf(&sb, "%-5s %-2s space=%d\n", dir, mark, d.Space[dir])
	}
	fmt.Fprintf(&sb, "-> %s (%s", d.Move, d.Reason)
	if d.Strategy != "" {
		fmt.Fprintf(&sb, " %s", d.Strategy)
	}
	sb.WriteString(")\n")
	return sb.String()
}
