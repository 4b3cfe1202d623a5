package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ExecResult is the outcome of one execution call. A transport problem
// is reported as an error by Execute; everything the execution service
// itself said, including its own failures, lands here.
type ExecResult struct {
	Success bool
	Output  string
}

type ExecutionClient struct {
	baseURL string
	http    *http.Client
}

func NewExecutionClient(baseURL string, timeout time.Duration) *ExecutionClient {
	return &ExecutionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type executeRequest struct {
	Code      string `json:"code"`
	Language  string `json:"language"`
	Input     string `json:"input"`
	TimeLimit int    `json:"time_limit"`
}

type executeResponse struct {
	IsError bool `json:"is_error"`
	Resp    struct {
		Output string `json:"output"`
		Error  string `json:"error"`
	} `json:"resp"`
}

// Execute runs the given source against one input. The returned output
// has a single trailing newline stripped and is trimmed of surrounding
// whitespace; an output that is empty after trimming counts as a
// failure.
func (c *ExecutionClient) Execute(ctx context.Context, code, language, input string, timeLimit int) (ExecResult, error) {
	if code == "" || language == "" {
		return ExecResult{Output: "code and language are required"}, nil
	}

	payload, err := json.Marshal(executeRequest{
		Code:      code,
		Language:  language,
		Input:     input,
		TimeLimit: timeLimit,
	})
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to marshal execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(payload))
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to build execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ExecResult{}, fmt.Errorf("execution service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ExecResult{}, fmt.Errorf("failed to decode execute response: %w", err)
	}

	if out.IsError {
		msg := out.Resp.Error
		if msg == "" {
			msg = "Execution failed"
		}
		return ExecResult{Output: msg}, nil
	}

	output := strings.TrimSpace(strings.TrimSuffix(out.Resp.Output, "\n"))
	if output == "" {
		return ExecResult{Output: "Output is empty"}, nil
	}

	return ExecResult{Success: true, Output: output}, nil
}
