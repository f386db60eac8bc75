// Package store archives engine decisions as Parquet.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/snekhunt/arbiter"
	"github.com/brensch/snekhunt/game"
)

const schemaName = "decision_v1"

// Sources for DecisionRow.Source.
const (
	SourceArena  = "arena"
	SourceReplay = "replay"
)

// DecisionRow is one engine decision for one snake on one turn.
//
// Move and Actual are 0=Up, 1=Down, 2=Left, 3=Right. Actual is the move the
// snake really made, or NoMove when unknown (the last frame of a replay). In
// arena games it always equals Move. Safe and Space are indexed the same way.
type DecisionRow struct {
	GameID   string  `parquet:"game_id,dict"`
	Turn     int32   `parquet:"turn"`
	SnakeID  string  `parquet:"snake_id,dict"`
	Width    int32   `parquet:"width"`
	Height   int32   `parquet:"height"`
	Health   int32   `parquet:"health"`
	Length   int32   `parquet:"length"`
	Move     int32   `parquet:"move"`
	Actual   int32   `parquet:"actual"`
	Reason   string  `parquet:"reason,dict"`
	Strategy string  `parquet:"strategy,dict"`
	Safe     []bool  `parquet:"safe"`
	Space    []int32 `parquet:"space"`
	Source   string  `parquet:"source,dict"`
}

// NoMove marks DecisionRow.Actual when the real move is unknown.
const NoMove int32 = -1

// NewDecisionRow flattens a decision taken for state.YouId.
func NewDecisionRow(gameID string, state *game.GameState, d arbiter.Decision, actual int32, source string) DecisionRow {
	row := DecisionRow{
		GameID:   gameID,
		Turn:     state.Turn,
		SnakeID:  state.YouId,
		Width:    state.Width,
		Height:   state.Height,
		Move:     int32(d.Move),
		Actual:   actual,
		Reason:   string(d.Reason),
		Strategy: d.Strategy,
		Safe:     d.Safe[:],
		Space:    make([]int32, len(d.Space)),
		Source:   source,
	}
	if you := state.You(); you != nil {
		row.Health = you.Health
		row.Length = int32(you.Len())
	}
	for i, c := range d.Space {
		row.Space[i] = int32(c)
	}
	return row
}

var fileSeq atomic.Uint64

// batchName is unique within the process even for files created in the same
// nanosecond.
func batchName() string {
	return fmt.Sprintf("decisions_%d_%d.parquet", time.Now().UnixNano(), fileSeq.Add(1))
}

func writerOptions() []parquet.WriterOption {
	return []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaName),
	}
}

// WriteDecisionsParquet writes rows into outDir/tmp and renames the file into
// outDir once complete, so readers never see a partial file. It returns the
// final path.
func WriteDecisionsParquet(outDir string, rows []DecisionRow) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no rows to write")
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := batchName()
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")

	if err := parquet.WriteFile(tmpPath, rows, writerOptions()...); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadDecisionsParquet loads every row of a decisions file.
func ReadDecisionsParquet(path string) ([]DecisionRow, error) {
	rows, err := parquet.ReadFile[DecisionRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}
