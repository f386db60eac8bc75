package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// BatchWriter streams decisions from many games into one Parquet file.
// The file lives in outDir/tmp until Finalize moves it into outDir.
type BatchWriter struct {
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[DecisionRow]

	games int
	rows  int
}

func NewBatchWriter(outDir string) (*BatchWriter, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := batchName()
	tmpPath := filepath.Join(tmpDir, name)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	return &BatchWriter{
		tmpPath: tmpPath,
		outPath: filepath.Join(outDir, name),
		file:    f,
		writer:  parquet.NewGenericWriter[DecisionRow](f, writerOptions()...),
	}, nil
}

func (b *BatchWriter) OutPath() string { return b.outPath }
func (b *BatchWriter) Games() int      { return b.games }
func (b *BatchWriter) Rows() int       { return b.rows }

// WriteGame appends the rows of one finished game.
func (b *BatchWriter) WriteGame(rows []DecisionRow) error {
	if b.writer == nil {
		return fmt.Errorf("batch writer is closed")
	}
	if len(rows) > 0 {
		if _, err := b.writer.Write(rows); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
	}
	b.rows += len(rows)
	b.games++
	return nil
}

// Finalize closes the file and moves it into place. An empty batch is
// discarded and reported with an empty path.
func (b *BatchWriter) Finalize() (path string, rows, games int, err error) {
	if b.writer == nil {
		return "", 0, 0, nil
	}
	closeErr := b.writer.Close()
	b.writer = nil
	_ = b.file.Sync()
	fileErr := b.file.Close()
	b.file = nil

	if closeErr != nil {
		return "", 0, 0, fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", 0, 0, fmt.Errorf("close parquet file: %w", fileErr)
	}
	if b.rows == 0 {
		_ = os.Remove(b.tmpPath)
		return "", 0, 0, nil
	}
	if err := os.Rename(b.tmpPath, b.outPath); err != nil {
		return "", 0, 0, fmt.Errorf("rename parquet: %w", err)
	}
	return b.outPath, b.rows, b.games, nil
}
