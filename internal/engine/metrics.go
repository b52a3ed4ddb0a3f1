/*
PURPOSE:
  Converts one completed Response's raw nanosecond counters and token
  counts into rate metrics (tokens/second) and duration metrics (seconds).

REQUIREMENTS:
  User-specified:
  - prompt_tps  = prompt_eval_count / (prompt_eval_duration / 1e9)
  - response_tps = eval_count / (eval_duration / 1e9)
  - total_tps   = (prompt_eval_count + eval_count)
                  / (prompt_eval_duration + eval_duration) * 1e9
  - every duration also reported independently in seconds.

  Implementation-discovered:
  - A zero denominator must not produce NaN/Inf rows. Policy: named error,
    fatal for the run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Consumes: internal/model.Response
  - Produces: internal/model.MetricRow

ERROR HANDLING:
  - ErrZeroDuration when any rate denominator is zero.

IMPLEMENTATION RULES:
  - Pure function of its input. No retries, no state.

USAGE:
  row, err := engine.Measure(resp)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update when adding new derived metrics.
*/

package engine

import (
	"errors"
	"fmt"

	"github.com/daryltucker/tempo-runner/internal/model"
)

// secToNanosec converts between the server's nanosecond counters and the
// reported per-second rates.
const secToNanosec = 1_000_000_000

// ErrZeroDuration is returned when a rate denominator is zero. Treated as
// fatal for the run rather than reporting a sentinel value.
var ErrZeroDuration = errors.New("zero duration in rate computation")

// Measure derives a MetricRow from one completed Response.
func Measure(resp model.Response) (model.MetricRow, error) {
	if resp.PromptEvalDuration == 0 || resp.EvalDuration == 0 {
		return model.MetricRow{}, fmt.Errorf("model %s: %w", resp.Model, ErrZeroDuration)
	}

	promptTPS := float64(resp.PromptEvalCount) / (float64(resp.PromptEvalDuration) / secToNanosec)
	responseTPS := float64(resp.EvalCount) / (float64(resp.EvalDuration) / secToNanosec)
	totalTPS := float64(resp.PromptEvalCount+resp.EvalCount) /
		float64(resp.PromptEvalDuration+resp.EvalDuration) * secToNanosec

	return model.MetricRow{
		Model:              resp.Model,
		PromptEvalTPS:      promptTPS,
		ResponseTPS:        responseTPS,
		TotalTPS:           totalTPS,
		PromptTokenCount:   resp.PromptEvalCount,
		ResponseTokenCount: resp.EvalCount,
		LoadTimeSec:        float64(resp.LoadDuration) / secToNanosec,
		PromptEvalTimeSec:  float64(resp.PromptEvalDuration) / secToNanosec,
		ResponseTimeSec:    float64(resp.EvalDuration) / secToNanosec,
		TotalTimeSec:       float64(resp.TotalDuration) / secToNanosec,
	}, nil
}
