package main

import (
	"log"

	"github.com/brensch/snekhunt/store"
)

// parquetWriterLoop streams finished games into batch files of gamesPerFlush
// games each and flushes whatever is left when in closes.
func parquetWriterLoop(outDir string, gamesPerFlush int, in <-chan []store.DecisionRow) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var w *store.BatchWriter
	flush := func(final bool) {
		if w == nil {
			return
		}
		path, rows, games, err := w.Finalize()
		w = nil
		switch {
		case err != nil:
			log.Printf("Parquet flush failed: %v", err)
		case path != "":
			log.Printf("Parquet flush ok: %s (games=%d rows=%d final=%v)", path, games, rows, final)
		}
	}

	for rows := range in {
		if len(rows) == 0 {
			continue
		}
		if w == nil {
			var err error
			if w, err = store.NewBatchWriter(outDir); err != nil {
				log.Printf("Parquet writer: %v", err)
				continue
			}
		}
		if err := w.WriteGame(rows); err != nil {
			log.Printf("Parquet write failed (game=%s): %v", rows[0].GameID, err)
			continue
		}
		if w.Games() >= gamesPerFlush {
			flush(false)
		}
	}
	flush(true)
}
