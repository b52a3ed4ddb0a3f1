// internal/engine/runner_test.go
package engine

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/daryltucker/tempo-runner/internal/config"
	"github.com/daryltucker/tempo-runner/internal/model"
	"github.com/daryltucker/tempo-runner/internal/output"
)

func init() {
	output.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// call records one Chat invocation observed by the stub collaborator.
type call struct {
	model  string
	prompt string
	stream bool
}

// stubChatter returns canned responses and records every invocation in
// order. failAt (1-based) makes that trial yield ErrEmptyResponse.
type stubChatter struct {
	calls  []call
	failAt int
}

func (s *stubChatter) Chat(req model.Request, stream bool) (model.Response, error) {
	s.calls = append(s.calls, call{model: req.Model, prompt: req.Prompt, stream: stream})
	if s.failAt > 0 && len(s.calls) == s.failAt {
		return model.Response{}, model.ErrEmptyResponse
	}
	return model.Response{
		Model:              req.Model,
		Done:               true,
		TotalDuration:      3_000_000_000,
		LoadDuration:       100_000_000,
		PromptEvalCount:    10,
		PromptEvalDuration: 1_000_000_000,
		EvalCount:          20,
		EvalDuration:       2_000_000_000,
		Context:            []int{1, 2, 3},
	}, nil
}

// TestCollectOrdering verifies the repeat-major/prompt-minor iteration order
// and the exact request count for one model.
func TestCollectOrdering(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models = []string{"m1"}
	cfg.Prompts = []string{"a", "b"}
	cfg.Repeats = 3

	stub := &stubChatter{}
	acc, err := Collect(cfg, stub)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	wantPrompts := []string{"a", "b", "a", "b", "a", "b"}
	if len(stub.calls) != len(wantPrompts) {
		t.Fatalf("issued %d requests, want %d", len(stub.calls), len(wantPrompts))
	}
	for i, want := range wantPrompts {
		if stub.calls[i].prompt != want {
			t.Errorf("call %d prompt = %q, want %q", i, stub.calls[i].prompt, want)
		}
		if stub.calls[i].model != "m1" {
			t.Errorf("call %d model = %q, want m1", i, stub.calls[i].model)
		}
	}

	if len(acc.Rows["m1"]) != 6 {
		t.Errorf("accumulated %d rows for m1, want 6", len(acc.Rows["m1"]))
	}
}

// TestCollectModelOrder verifies that all trials for one model complete
// before the next model begins, and that first-encounter order is preserved.
func TestCollectModelOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models = []string{"m1", "m2"}
	cfg.Prompts = []string{"p"}
	cfg.Repeats = 2

	stub := &stubChatter{}
	acc, err := Collect(cfg, stub)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	wantModels := []string{"m1", "m1", "m2", "m2"}
	for i, want := range wantModels {
		if stub.calls[i].model != want {
			t.Errorf("call %d model = %q, want %q", i, stub.calls[i].model, want)
		}
	}

	if len(acc.Order) != 2 || acc.Order[0] != "m1" || acc.Order[1] != "m2" {
		t.Errorf("Order = %v, want [m1 m2]", acc.Order)
	}
	if len(acc.Rows["m1"]) != 2 || len(acc.Rows["m2"]) != 2 {
		t.Errorf("rows = %d/%d, want 2/2", len(acc.Rows["m1"]), len(acc.Rows["m2"]))
	}
	for _, row := range acc.Rows["m2"] {
		if row.Model != "m2" {
			t.Errorf("m2 accumulation contains row for %q", row.Model)
		}
	}
}

// TestCollectAbortsOnFailure verifies that a failed trial terminates the run
// immediately with no partial-result salvage beyond the completed rows.
func TestCollectAbortsOnFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models = []string{"m1"}
	cfg.Prompts = []string{"p"}
	cfg.Repeats = 5

	stub := &stubChatter{failAt: 2}
	acc, err := Collect(cfg, stub)
	if !errors.Is(err, model.ErrEmptyResponse) {
		t.Fatalf("Collect error = %v, want ErrEmptyResponse", err)
	}

	if len(stub.calls) != 2 {
		t.Errorf("issued %d requests, want 2 (no trials after the failure)", len(stub.calls))
	}
	if len(acc.Rows["m1"]) != 1 {
		t.Errorf("accumulated %d rows, want exactly 1", len(acc.Rows["m1"]))
	}
}

// TestCollectStreamFlag verifies that verbosity selects the streaming
// strategy on every trial.
func TestCollectStreamFlag(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models = []string{"m1"}
	cfg.Prompts = []string{"p"}
	cfg.Verbose = true

	stub := &stubChatter{}
	if _, err := Collect(cfg, stub); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if !stub.calls[0].stream {
		t.Error("verbose run did not request streaming")
	}
}

// TestCollectZeroDurationFatal verifies the zero-duration policy surfaces
// through the runner as a fatal error.
func TestCollectZeroDurationFatal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Models = []string{"m1"}
	cfg.Prompts = []string{"p"}

	stub := &zeroDurationChatter{}
	_, err := Collect(cfg, stub)
	if !errors.Is(err, ErrZeroDuration) {
		t.Fatalf("Collect error = %v, want ErrZeroDuration", err)
	}
}

type zeroDurationChatter struct{}

func (z *zeroDurationChatter) Chat(req model.Request, stream bool) (model.Response, error) {
	return model.Response{
		Model:           req.Model,
		Done:            true,
		PromptEvalCount: 0,
		EvalCount:       0,
	}, nil
}
