/*
PURPOSE:
  Defines the core data structures used throughout Tempo Runner.
  These models represent the Ollama chat wire format and the derived
  per-trial throughput metrics.

REQUIREMENTS:
  User-specified:
  - Record server-reported nanosecond counters and token counts.
  - Derive tokens-per-second and seconds views per trial.

  Implementation-discovered:
  - Need JSON tags matching the Ollama /api/chat payloads.
  - Need boundary validation so a partial response fails with a named
    error instead of producing undefined math downstream.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - Sentinel errors (ErrEmptyResponse, ErrIncompleteResponse, ErrMissingModel)
    for boundary failures. Validation is fail-fast; nothing is masked.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - A Response is constructed once per trial and never mutated.

USAGE:
  row, err := engine.Measure(resp)

SELF-HEALING INSTRUCTIONS:
  - If Ollama adds counters, add the field and extend MetricRow plus the
    output writers.

RELATED FILES:
  - internal/engine/metrics.go
  - internal/output/csv.go

MAINTENANCE:
  - Update when adding new metrics to capture.
*/

package model

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrEmptyResponse is returned when the server yields no response object
	// at all. Fatal for the run; never retried.
	ErrEmptyResponse = errors.New("ollama response is empty")

	// ErrIncompleteResponse is returned when a completed response is missing
	// the timing fields required for rate computation.
	ErrIncompleteResponse = errors.New("ollama response is incomplete")

	// ErrMissingModel is returned when a request carries no model name.
	ErrMissingModel = errors.New("request model must not be empty")
)

// Request describes one generation request.
type Request struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Suffix string   `json:"suffix,omitempty"`
	Images []string `json:"images,omitempty"` // base64-encoded, for multimodal models
}

// Validate checks the request invariants before dispatch.
func (r Request) Validate() error {
	if r.Model == "" {
		return ErrMissingModel
	}
	return nil
}

// ToolCall is a structured call descriptor attached to a server message.
type ToolCall struct {
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction names the requested function and its arguments.
type ToolCallFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Message is a single chat message. Server-produced messages are consumed
// read-only.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Images    []string   `json:"images,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Response is the completed generation record from Ollama. Durations are
// nanoseconds; the two *_count fields are token counts.
type Response struct {
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	Message            Message   `json:"message"`
	Done               bool      `json:"done"`
	Context            []int     `json:"context,omitempty"`
	TotalDuration      int64     `json:"total_duration"`
	LoadDuration       int64     `json:"load_duration"`
	PromptEvalCount    int       `json:"prompt_eval_count"`
	PromptEvalDuration int64     `json:"prompt_eval_duration"`
	EvalCount          int       `json:"eval_count"`
	EvalDuration       int64     `json:"eval_duration"`
}

// Validate enforces the completed-response invariants at the client boundary:
// the response must be terminal, and if any evaluation happened the matching
// duration must be present and positive.
func (r Response) Validate() error {
	if !r.Done {
		return ErrIncompleteResponse
	}
	if r.EvalCount > 0 && r.EvalDuration <= 0 {
		return ErrIncompleteResponse
	}
	if r.PromptEvalCount > 0 && r.PromptEvalDuration <= 0 {
		return ErrIncompleteResponse
	}
	return nil
}

// MetricRow is one trial's derived performance record. JSON keys reproduce
// the report labels verbatim.
type MetricRow struct {
	Model              string  `json:"model"`
	PromptEvalTPS      float64 `json:"Prompt eval tps"`
	ResponseTPS        float64 `json:"Response tps"`
	TotalTPS           float64 `json:"Total tps"`
	PromptTokenCount   int     `json:"Prompt token count"`
	ResponseTokenCount int     `json:"Response token count"`
	LoadTimeSec        float64 `json:"Model load time sec"`
	PromptEvalTimeSec  float64 `json:"Prompt eval time sec"`
	ResponseTimeSec    float64 `json:"Response time sec"`
	TotalTimeSec       float64 `json:"Total time sec"`
}

// Rounded returns a copy with every float field rounded to one decimal
// place. Rounding is idempotent.
func (m MetricRow) Rounded() MetricRow {
	m.PromptEvalTPS = round1(m.PromptEvalTPS)
	m.ResponseTPS = round1(m.ResponseTPS)
	m.TotalTPS = round1(m.TotalTPS)
	m.LoadTimeSec = round1(m.LoadTimeSec)
	m.PromptEvalTimeSec = round1(m.PromptEvalTimeSec)
	m.ResponseTimeSec = round1(m.ResponseTimeSec)
	m.TotalTimeSec = round1(m.TotalTimeSec)
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
