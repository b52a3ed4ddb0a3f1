/*
PURPOSE:
  Core engine for interacting with Ollama APIs.
  Handles model discovery and chat inference in streaming and
  non-streaming modes.

REQUIREMENTS:
  User-specified:
  - Detect models (/api/tags).
  - Chat inference (/api/chat) returning the server's timing counters.
  - Streaming mode must surface content progressively and keep only the
    terminal chunk's cumulative counters.

  Implementation-discovered:
  - Resilience against "garbage" JSON (invalid chunks) while streaming.
  - No request timeout on chat: a hung server hangs the run. A client-side
    deadline would clip the very durations being measured.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go, internal/cli
  - Uses: internal/config, internal/model, internal/output

ERROR HANDLING:
  - No retries at any level; every failure propagates to the caller.
  - An empty body or a stream with no terminal chunk is model.ErrEmptyResponse.
  - Responses are validated at this boundary before release.

IMPLEMENTATION RULES:
  - Use net/http.
  - Parse streaming JSON line-by-line.
  - One capability, two strategies: chatStream and chatOnce behind Chat.

USAGE:
  e := engine.New(cfg)
  resp, err := e.Chat(model.Request{Model: "llama3.1", Prompt: "hi"}, true)

SELF-HEALING INSTRUCTIONS:
  - If Ollama API changes, update endpoints (/api/tags, /api/chat).

RELATED FILES:
  - internal/config/config.go
  - internal/model/types.go

MAINTENANCE:
  - Update for new Ollama API features.
*/

package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/daryltucker/tempo-runner/internal/config"
	"github.com/daryltucker/tempo-runner/internal/model"
	"github.com/daryltucker/tempo-runner/internal/output"
	"github.com/fatih/color"
)

var streamMarker = color.New(color.FgCyan).SprintFunc()

// Engine handles Ollama interactions.
type Engine struct {
	Config *config.Config
	Client *http.Client
	// Stream receives progressive message content in streaming mode.
	Stream io.Writer
}

// New creates a new Engine.
func New(cfg *config.Config) *Engine {
	return &Engine{
		Config: cfg,
		// No Timeout: the chat call must block until the full generation
		// arrives, however long the model takes.
		Client: &http.Client{},
		Stream: os.Stdout,
	}
}

// GetModels returns a list of available models from an Ollama host.
func (e *Engine) GetModels(baseURL string) ([]string, error) {
	resp, err := e.Client.Get(fmt.Sprintf("%s/api/tags", baseURL))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var payload struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	var names []string
	for _, m := range payload.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// chatPayload is the request body for /api/chat. The message list always
// contains exactly one user-role message carrying the prompt.
type chatPayload struct {
	Model    string          `json:"model"`
	Messages []model.Message `json:"messages"`
	Stream   bool            `json:"stream"`
}

// Chat runs one chat inference and returns the completed Response.
// With stream=false the server answers with a single completed record.
// With stream=true incremental content is written to e.Stream as it
// arrives and the terminal chunk's cumulative counters become the Response.
func (e *Engine) Chat(req model.Request, stream bool) (model.Response, error) {
	if err := req.Validate(); err != nil {
		return model.Response{}, err
	}

	payload := chatPayload{
		Model: req.Model,
		Messages: []model.Message{
			{Role: "user", Content: req.Prompt, Images: req.Images},
		},
		Stream: stream,
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return model.Response{}, err
	}

	httpReq, err := http.NewRequest("POST", fmt.Sprintf("%s/api/chat", e.Config.Host), bytes.NewBuffer(reqBody))
	if err != nil {
		return model.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(httpReq)
	if err != nil {
		return model.Response{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.Response{}, fmt.Errorf("ollama server error (%s): %s", resp.Status, string(body))
	}

	var final model.Response
	if stream {
		final, err = e.chatStream(resp.Body)
	} else {
		final, err = e.chatOnce(resp.Body)
	}
	if err != nil {
		return model.Response{}, err
	}

	if err := final.Validate(); err != nil {
		return model.Response{}, fmt.Errorf("model %s: %w", req.Model, err)
	}
	return final, nil
}

// chatOnce decodes a single completed response body.
func (e *Engine) chatOnce(body io.Reader) (model.Response, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return model.Response{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Response{}, model.ErrEmptyResponse
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		return model.Response{}, fmt.Errorf("ollama API error: %s", apiErr.Error)
	}

	var resp model.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return model.Response{}, fmt.Errorf("ollama returned invalid JSON: %w", err)
	}
	return resp, nil
}

// chatStream consumes every NDJSON chunk, echoing content to e.Stream, and
// retains the terminal chunk's cumulative counters. The accumulated content
// replaces the terminal chunk's (empty) message content.
func (e *Engine) chatStream(body io.Reader) (model.Response, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var final model.Response
	var content bytes.Buffer
	gotDone := false

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk model.Response
		// Garbage resilience: Ignore JSON errors
		if err := json.Unmarshal(line, &chunk); err != nil {
			output.Logger.Warn("Skipping invalid JSON chunk", "chunk", string(line))
			continue
		}

		if chunk.Message.Content != "" {
			fmt.Fprint(e.Stream, chunk.Message.Content)
			content.WriteString(chunk.Message.Content)
		}

		if chunk.Done {
			final = chunk
			gotDone = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return model.Response{}, fmt.Errorf("stream scanning error: %w", err)
	}
	if !gotDone {
		return model.Response{}, model.ErrEmptyResponse
	}

	fmt.Fprintln(e.Stream, streamMarker("∎"))
	final.Message.Content = content.String()
	return final, nil
}
