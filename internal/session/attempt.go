package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"contestsession/internal/clients"
	"contestsession/internal/models"
)

// Executor runs candidate code against one input on the remote
// execution service.
type Executor interface {
	Execute(ctx context.Context, code, language, input string, timeLimit int) (clients.ExecResult, error)
}

const transportFailureMessage = "Server error. Please try again later or contact support."

// attemptState tracks one question's attempt. Status moves away from
// unattempted only through the Submit protocol, and a re-submission
// overwrites whatever was recorded before.
type attemptState struct {
	mu       sync.Mutex
	status   models.AttemptStatus
	message  string
	inFlight bool
}

func newAttemptState() *attemptState {
	return &attemptState{status: models.AttemptStatusUnattempted}
}

// beginSubmit atomically claims the single submit slot for this
// question. It reports false when a submit is already in flight.
func (a *attemptState) beginSubmit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight {
		return false
	}
	a.inFlight = true
	return true
}

func (a *attemptState) endSubmit() {
	a.mu.Lock()
	a.inFlight = false
	a.mu.Unlock()
}

func (a *attemptState) record(status models.AttemptStatus, message string) {
	a.mu.Lock()
	a.status = status
	a.message = message
	a.mu.Unlock()
}

func (a *attemptState) snapshot() models.QuestionAttempt {
	a.mu.Lock()
	defer a.mu.Unlock()
	return models.QuestionAttempt{Status: a.status, Message: a.message}
}

// executeCase converts a transport failure into an unsuccessful result
// so that no error from the gateway propagates past this point.
func executeCase(ctx context.Context, exec Executor, code, language, input string, timeLimit int) clients.ExecResult {
	result, err := exec.Execute(ctx, code, language, input, timeLimit)
	if err != nil {
		return clients.ExecResult{Output: transportFailureMessage}
	}
	return result
}

func effectiveTimeLimit(q *models.Question, defaultLimit int) int {
	if q.TimeLimit > 0 {
		return q.TimeLimit
	}
	return defaultLimit
}

// runSampleTests executes every sample test strictly in order, one at a
// time, and returns one result per test. It never touches the attempt
// status.
func runSampleTests(ctx context.Context, exec Executor, q *models.Question, code, language string, defaultLimit int) []models.SampleRunResult {
	limit := effectiveTimeLimit(q, defaultLimit)
	results := make([]models.SampleRunResult, 0, len(q.SampleTests))

	for _, test := range q.SampleTests {
		res := executeCase(ctx, exec, code, language, test.Input, limit)
		results = append(results, models.SampleRunResult{
			Input:    test.Input,
			Expected: test.ExpectedOutput,
			Output:   res.Output,
			Success:  res.Success,
			Pass:     res.Success && strings.TrimSpace(res.Output) == strings.TrimSpace(test.ExpectedOutput),
		})
	}

	return results
}

// gradeHiddenTests runs the question's hidden test cases in order and
// stops at the first failure. A gateway-reported failure is a runtime
// error; a successful run with mismatched output is a wrong answer.
func gradeHiddenTests(ctx context.Context, exec Executor, q *models.Question, code, language string, defaultLimit int) (bool, string) {
	limit := effectiveTimeLimit(q, defaultLimit)

	for _, test := range q.TestCases {
		res := executeCase(ctx, exec, code, language, test.Input, limit)
		if !res.Success {
			return false, fmt.Sprintf("Runtime Error\n%s", res.Output)
		}
		if strings.TrimSpace(res.Output) != strings.TrimSpace(test.ExpectedOutput) {
			return false, fmt.Sprintf("Wrong Answer\nExpected: %s\nGot: %s", test.ExpectedOutput, res.Output)
		}
	}

	return true, "All test cases passed"
}
