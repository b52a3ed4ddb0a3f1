/*
PURPOSE:
  High-level runner that orchestrates the measurement process.
  Loops through Models -> Repeats -> Prompts and collects metric rows.

REQUIREMENTS:
  User-specified:
  - Fixed lexicographic order: model outer, repeat middle, prompt inner.
    All repeats of all prompts for one model complete before the next
    model begins.
  - Each trial independent: no conversational context threaded forward.
  - Per-trial progress logging (repeat index + prompt).

  Implementation-discovered:
  - The loop is a pure function of (config, collaborator) so tests can
    substitute a stub Chatter.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine/client.go, internal/engine/metrics.go,
    internal/output

ERROR HANDLING:
  - Any trial failure aborts the run immediately. No partial-result
    salvage, no retries.

IMPLEMENTATION RULES:
  - Strictly sequential, single goroutine; the accumulation needs no locks.

USAGE:
  engine.Run(cfg)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/client.go
  - internal/output/report.go

MAINTENANCE:
  - Update iteration logic if parallelism is ever introduced.
*/

package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daryltucker/tempo-runner/internal/config"
	"github.com/daryltucker/tempo-runner/internal/model"
	"github.com/daryltucker/tempo-runner/internal/output"
)

// Chatter is the single collaborator capability the trial runner depends on.
type Chatter interface {
	Chat(req model.Request, stream bool) (model.Response, error)
}

// Accumulation holds every trial's metric row keyed by model, preserving
// the order models were first encountered. Owned by the runner for the
// lifetime of one run; never persisted unless export is requested.
type Accumulation struct {
	Order []string
	Rows  map[string][]model.MetricRow
}

func newAccumulation() *Accumulation {
	return &Accumulation{Rows: make(map[string][]model.MetricRow)}
}

func (a *Accumulation) append(modelName string, row model.MetricRow) {
	if _, ok := a.Rows[modelName]; !ok {
		a.Order = append(a.Order, modelName)
	}
	a.Rows[modelName] = append(a.Rows[modelName], row)
}

// Collect executes every (model, repeat, prompt) trial in order and returns
// the accumulated metric rows. The Response's context field is read but
// deliberately never fed into a subsequent request.
func Collect(cfg *config.Config, c Chatter) (*Accumulation, error) {
	acc := newAccumulation()

	for _, modelName := range cfg.Models {
		for index := 0; index < cfg.Repeats; index++ {
			for _, prompt := range cfg.Prompts {
				output.Logger.Info("Prompt", "repeat", index, "prompt", prompt)

				resp, err := c.Chat(model.Request{Model: modelName, Prompt: prompt}, cfg.Verbose)
				if err != nil {
					return acc, fmt.Errorf("trial failed (model=%s repeat=%d): %w", modelName, index, err)
				}

				row, err := Measure(resp)
				if err != nil {
					return acc, fmt.Errorf("trial failed (model=%s repeat=%d): %w", modelName, index, err)
				}

				acc.append(modelName, row)
			}
		}
	}

	return acc, nil
}

// Run executes the full measurement suite: collect, report, and optionally
// export the rows when an output directory is configured.
func Run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e := New(cfg)

	acc, err := Collect(cfg, e)
	if err != nil {
		return err
	}

	output.Report(acc.Order, acc.Rows)

	if cfg.OutputDir != "" {
		if err := export(cfg, acc); err != nil {
			return err
		}
	}

	return nil
}

// export writes the run's rows to CSV and JSON Lines under cfg.OutputDir.
func export(cfg *config.Config, acc *Accumulation) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	csvPath := filepath.Join(cfg.OutputDir, cfg.OutputFile)
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	jsonPath := filepath.Join(cfg.OutputDir, "tempo_results.jsonl")
	jsonWriter, err := output.NewJSONWriter(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
	}
	defer jsonWriter.Close()

	for _, modelName := range acc.Order {
		for _, row := range acc.Rows[modelName] {
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write result to CSV: %w", err)
			}
			if err := jsonWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write result to JSON: %w", err)
			}
		}
	}

	output.Logger.Info("Results exported", "csv", csvPath, "json", jsonPath)
	return nil
}
