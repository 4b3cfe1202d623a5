package session

import (
	"context"
	"testing"

	"contestsession/internal/clients"
	"contestsession/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestion() *models.Question {
	return &models.Question{
		ID:        "q1",
		Title:     "Add Two Numbers",
		TimeLimit: 2,
		SampleTests: []models.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "4 5", ExpectedOutput: "9"},
			{Input: "0 0", ExpectedOutput: "0"},
		},
		TestCases: []models.TestCase{
			{Input: "2 3", ExpectedOutput: "5"},
			{Input: "10 20", ExpectedOutput: "30"},
			{Input: "7 8", ExpectedOutput: "15"},
		},
	}
}

func TestRunSampleTestsOneResultPerTestInOrder(t *testing.T) {
	q := sampleQuestion()
	exec := &fakeExec{fn: func(input string) (clients.ExecResult, error) {
		if input == "4 5" {
			return clients.ExecResult{Success: true, Output: "8"}, nil
		}
		outputs := map[string]string{"1 2": "3", "0 0": "0"}
		return clients.ExecResult{Success: true, Output: outputs[input]}, nil
	}}

	results := runSampleTests(context.Background(), exec, q, "code", "cpp", 1)

	require.Len(t, results, len(q.SampleTests))
	assert.Equal(t, []string{"1 2", "4 5", "0 0"}, exec.calls())

	assert.True(t, results[0].Pass)
	assert.False(t, results[1].Pass)
	assert.Equal(t, "8", results[1].Output)
	assert.Equal(t, "9", results[1].Expected)
	assert.True(t, results[2].Pass)
}

func TestRunSampleTestsUsesQuestionTimeLimit(t *testing.T) {
	q := sampleQuestion()
	exec := passingExec()
	runSampleTests(context.Background(), exec, q, "code", "cpp", 1)
	assert.Equal(t, []int{2, 2, 2}, exec.limits)

	q.TimeLimit = 0
	exec = passingExec()
	runSampleTests(context.Background(), exec, q, "code", "cpp", 1)
	assert.Equal(t, []int{1, 1, 1}, exec.limits)
}

func TestGradeShortCircuitsAtFirstFailure(t *testing.T) {
	q := sampleQuestion()
	exec := &fakeExec{fn: func(input string) (clients.ExecResult, error) {
		if input == "10 20" {
			return clients.ExecResult{Success: true, Output: "31"}, nil
		}
		outputs := map[string]string{"2 3": "5", "7 8": "15"}
		return clients.ExecResult{Success: true, Output: outputs[input]}, nil
	}}

	accepted, message := gradeHiddenTests(context.Background(), exec, q, "code", "cpp", 1)

	assert.False(t, accepted)
	// The third hidden test is never executed.
	assert.Equal(t, []string{"2 3", "10 20"}, exec.calls())
	assert.Contains(t, message, "Wrong Answer")
	assert.Contains(t, message, "Expected: 30")
	assert.Contains(t, message, "Got: 31")
}

func TestGradeClassifiesRuntimeError(t *testing.T) {
	q := sampleQuestion()
	exec := &fakeExec{fn: func(input string) (clients.ExecResult, error) {
		if input == "2 3" {
			return clients.ExecResult{Output: "segmentation fault"}, nil
		}
		return clients.ExecResult{Success: true, Output: "30"}, nil
	}}

	accepted, message := gradeHiddenTests(context.Background(), exec, q, "code", "cpp", 1)

	assert.False(t, accepted)
	assert.Equal(t, "Runtime Error\nsegmentation fault", message)
	assert.Equal(t, []string{"2 3"}, exec.calls())
}

func TestGradeAcceptsTrimmedMatch(t *testing.T) {
	q := &models.Question{
		ID:        "q1",
		TestCases: []models.TestCase{{Input: "2 3", ExpectedOutput: "5"}},
	}
	exec := &fakeExec{fn: func(string) (clients.ExecResult, error) {
		return clients.ExecResult{Success: true, Output: "5\n"}, nil
	}}

	accepted, message := gradeHiddenTests(context.Background(), exec, q, "code", "cpp", 1)

	assert.True(t, accepted)
	assert.Equal(t, "All test cases passed", message)
}

func TestGradeTransportFailureBecomesRuntimeError(t *testing.T) {
	q := sampleQuestion()
	exec := &fakeExec{fn: func(string) (clients.ExecResult, error) {
		return clients.ExecResult{}, context.DeadlineExceeded
	}}

	accepted, message := gradeHiddenTests(context.Background(), exec, q, "code", "cpp", 1)

	assert.False(t, accepted)
	assert.Equal(t, "Runtime Error\n"+transportFailureMessage, message)
	assert.Equal(t, []string{"2 3"}, exec.calls())
}

func TestAttemptSingleFlightGuard(t *testing.T) {
	a := newAttemptState()
	require.True(t, a.beginSubmit())
	assert.False(t, a.beginSubmit())
	a.endSubmit()
	assert.True(t, a.beginSubmit())
}
