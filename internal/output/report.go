/*
PURPOSE:
  Aggregates per-trial metric rows by model and renders the run summary:
  an indexed structured dump of every row plus a narrow two-column
  throughput view.

REQUIREMENTS:
  User-specified:
  - Per model, in the order models were first encountered.
  - Every numeric field rounded to one decimal place.
  - No filtering, sorting, or statistical summarization. Raw per-trial
    rows are the only output unit.

  Implementation-discovered:
  - Index keys must stay in trial order ("0", "1", ... "10"), which rules
    out marshaling a map (Go sorts map keys lexically).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Consumes: internal/model.MetricRow

ERROR HANDLING:
  - Rendering failures are impossible for fixed-shape rows; the writer's
    error is the caller's concern only in tests.

IMPLEMENTATION RULES:
  - encoding/json for the dump, text/tabwriter for column alignment.

USAGE:
  output.Report(acc.Order, acc.Rows)

SELF-HEALING INSTRUCTIONS:
  - If MetricRow gains fields, the dump picks them up automatically; the
    narrow view stays two columns on purpose.

RELATED FILES:
  - internal/model/types.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update the narrow view only if the headline metrics change.
*/

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/daryltucker/tempo-runner/internal/model"
	"github.com/fatih/color"
)

var modelHeader = color.New(color.FgGreen, color.Bold).SprintFunc()

// Report renders every model's summary to stdout in first-encounter order.
func Report(order []string, rows map[string][]model.MetricRow) {
	WriteReport(os.Stdout, order, rows)
}

// WriteReport renders the per-model summaries to w.
func WriteReport(w io.Writer, order []string, rows map[string][]model.MetricRow) {
	for _, modelName := range order {
		rounded := make([]model.MetricRow, 0, len(rows[modelName]))
		for _, row := range rows[modelName] {
			rounded = append(rounded, row.Rounded())
		}

		Logger.Info("Results", "model", modelName, "trials", len(rounded))
		fmt.Fprintf(w, "model: %s\n", modelHeader(modelName))
		fmt.Fprintln(w, indexedDump(rounded))
		writeNarrowView(w, rounded)
	}
}

// indexedDump renders rows as a JSON object keyed by trial index, keys in
// trial order.
func indexedDump(rows []model.MetricRow) string {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, row := range rows {
		b, err := json.MarshalIndent(row, "  ", "  ")
		if err != nil {
			// Fixed-shape struct; cannot fail.
			continue
		}
		fmt.Fprintf(&buf, "  %q: %s", strconv.Itoa(i), b)
		if i < len(rows)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.String()
}

// writeNarrowView renders only the two headline throughput columns.
func writeNarrowView(w io.Writer, rows []model.MetricRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPrompt eval tps\tResponse tps")
	for i, row := range rows {
		fmt.Fprintf(tw, "%d\t%.1f\t%.1f\n", i, row.PromptEvalTPS, row.ResponseTPS)
	}
	tw.Flush()
}
