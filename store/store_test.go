package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
	"github.com/brensch/snekhunt/safety"
)

func sampleRows(game string, n int) []DecisionRow {
	rows := make([]DecisionRow, n)
	for i := range rows {
		rows[i] = DecisionRow{
			GameID:   game,
			Turn:     int32(i),
			SnakeID:  "me",
			Width:    11,
			Height:   11,
			Health:   100 - int32(i),
			Length:   3,
			Move:     int32(i % 4),
			Actual:   -1,
			Reason:   "space",
			Strategy: "",
			Safe:     []bool{true, false, true, true},
			Space:    []int32{118, 0, 118, 118},
			Source:   SourceArena,
		}
	}
	return rows
}

func TestWriteDecisionsParquet_Atomic(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDecisionsParquet(dir, sampleRows("g1", 5))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("final file %s not in %s", path, dir)
	}
	leftovers, _ := os.ReadDir(filepath.Join(dir, "tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("tmp dir not empty: %v", leftovers)
	}

	rows, err := ReadDecisionsParquet(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows=%d want=5", len(rows))
	}
	if rows[3].Turn != 3 || rows[3].Move != 3 || rows[3].Health != 97 {
		t.Fatalf("row 3 mismatch: %+v", rows[3])
	}
	if len(rows[0].Safe) != 4 || rows[0].Safe[1] || rows[0].Space[0] != 118 {
		t.Fatalf("repeated columns mismatch: %+v", rows[0])
	}
}

func TestWriteDecisionsParquet_Empty(t *testing.T) {
	if _, err := WriteDecisionsParquet(t.TempDir(), nil); err == nil {
		t.Fatalf("empty write should fail")
	}
}

func TestBatchWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewBatchWriter(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := w.WriteGame(sampleRows("g1", 3)); err != nil {
		t.Fatalf("write g1: %v", err)
	}
	if err := w.WriteGame(sampleRows("g2", 4)); err != nil {
		t.Fatalf("write g2: %v", err)
	}
	if _, err := os.Stat(w.OutPath()); !os.IsNotExist(err) {
		t.Fatalf("final path must not exist before Finalize")
	}

	path, rows, games, err := w.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if rows != 7 || games != 2 || path != w.OutPath() {
		t.Fatalf("finalize=%s,%d,%d", path, rows, games)
	}
	got, err := ReadDecisionsParquet(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 7 || got[3].GameID != "g2" {
		t.Fatalf("unexpected rows: %d first-of-g2=%+v", len(got), got[3])
	}
	if err := w.WriteGame(sampleRows("g3", 1)); err == nil {
		t.Fatalf("write after finalize should fail")
	}
}

func TestBatchWriter_EmptyDiscarded(t *testing.T) {
	dir := t.TempDir()
	w, err := NewBatchWriter(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	path, rows, _, err := w.Finalize()
	if err != nil || path != "" || rows != 0 {
		t.Fatalf("empty finalize=%q,%d,%v", path, rows, err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "tmp"))
	if len(entries) != 0 {
		t.Fatalf("tmp file left behind")
	}
}

func TestNewDecisionRow(t *testing.T) {
	state := &game.GameState{
		Width: 11, Height: 9, Turn: 12, YouId: "me",
		Snakes: []game.Snake{{Id: "me", Health: 73, Body: []game.Point{{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}}},
	}
	d := arbiter.Decision{
		Move:     game.Right,
		Reason:   arbiter.ReasonStrategy,
		Strategy: "food",
		Safe:     safety.Map{true, false, true, true},
		Space:    [4]int{90, 0, 88, 91},
	}
	row := NewDecisionRow("g", state, d, int32(game.Up), SourceReplay)
	if row.Turn != 12 || row.Health != 73 || row.Length != 3 || row.Height != 9 {
		t.Fatalf("row=%+v", row)
	}
	if row.Move != 3 || row.Actual != 0 || row.Reason != "strategy" || row.Strategy != "food" {
		t.Fatalf("row=%+v", row)
	}
	if len(row.Safe) != 4 || row.Safe[1] || len(row.Space) != 4 || row.Space[3] != 91 {
		t.Fatalf("safe=%v space=%v", row.Safe, row.Space)
	}
}
