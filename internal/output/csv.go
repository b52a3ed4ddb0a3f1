/*
PURPOSE:
  Writes metric rows to a CSV file when export is requested.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Opt-in only: the default run writes no files.

  Implementation-discovered:
  - Overwrite semantics: each run produces a fresh file.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Consumes: internal/model.MetricRow

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (crash resilience).
  - Mutex-guarded in case a future runner writes concurrently.

USAGE:
  w, err := output.NewCSVWriter("results.csv")
  w.Write(row)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion together.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when MetricRow changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/daryltucker/tempo-runner/internal/model"
)

// CSVWriter handles writing metric rows to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := []string{
		"model",
		"prompt_eval_tps", "response_tps", "total_tps",
		"prompt_tokens", "response_tokens",
		"load_time_s", "prompt_eval_time_s", "response_time_s", "total_time_s",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single metric row to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.MetricRow) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		r.Model,
		fmt.Sprintf("%.4f", r.PromptEvalTPS),
		fmt.Sprintf("%.4f", r.ResponseTPS),
		fmt.Sprintf("%.4f", r.TotalTPS),
		fmt.Sprintf("%d", r.PromptTokenCount),
		fmt.Sprintf("%d", r.ResponseTokenCount),
		fmt.Sprintf("%.4f", r.LoadTimeSec),
		fmt.Sprintf("%.4f", r.PromptEvalTimeSec),
		fmt.Sprintf("%.4f", r.ResponseTimeSec),
		fmt.Sprintf("%.4f", r.TotalTimeSec),
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
