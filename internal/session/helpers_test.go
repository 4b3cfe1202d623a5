package session

import (
	"context"
	"sync"

	"contestsession/internal/clients"
	"contestsession/internal/models"
	"contestsession/internal/store"
)

// fakeExec scripts the execution gateway. It records every call in
// order so tests can assert sequencing and short-circuiting.
type fakeExec struct {
	mu     sync.Mutex
	inputs []string
	limits []int
	fn     func(input string) (clients.ExecResult, error)
}

func (f *fakeExec) Execute(_ context.Context, _, _, input string, timeLimit int) (clients.ExecResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.limits = append(f.limits, timeLimit)
	f.mu.Unlock()
	return f.fn(input)
}

func (f *fakeExec) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

func passingExec() *fakeExec {
	return &fakeExec{fn: func(input string) (clients.ExecResult, error) {
		return clients.ExecResult{Success: true, Output: "ok:" + input}, nil
	}}
}

// echoExec passes every test whose expected output is "echo:<input>".
func echoExec() *fakeExec {
	return &fakeExec{fn: func(input string) (clients.ExecResult, error) {
		return clients.ExecResult{Success: true, Output: "echo:" + input}, nil
	}}
}

// fakeSimilarity scripts the similarity gateway per sibling code.
type fakeSimilarity struct {
	mu      sync.Mutex
	checked []string
	fn      func(siblingCode string) (clients.SimilarityVerdict, error)
}

func (f *fakeSimilarity) Check(_ context.Context, _, _, codeB, _ string, _ float64, _ bool) (clients.SimilarityVerdict, error) {
	f.mu.Lock()
	f.checked = append(f.checked, codeB)
	f.mu.Unlock()
	return f.fn(codeB)
}

func noPlagSimilarity() *fakeSimilarity {
	return &fakeSimilarity{fn: func(string) (clients.SimilarityVerdict, error) {
		return clients.SimilarityVerdict{}, nil
	}}
}

// fakeStore is an in-memory stand-in for the submission store.
type fakeStore struct {
	mu            sync.Mutex
	siblings      map[string][]models.Submission
	fetchErr      error
	statusErr     error
	created       []store.CreateSubmissionRequest
	statusUpdates map[string]string
	detailUpdates map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		siblings:      map[string][]models.Submission{},
		statusUpdates: map[string]string{},
		detailUpdates: map[string]string{},
	}
}

func (f *fakeStore) CreateSubmission(_ context.Context, req store.CreateSubmissionRequest) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &models.Submission{ID: "created", Code: req.Code}, nil
}

func (f *fakeStore) UpdateSubmissionStatus(_ context.Context, submissionID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statusUpdates[submissionID] = status
	return nil
}

func (f *fakeStore) UpdatePlagiarismDetails(_ context.Context, submissionID, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailUpdates[submissionID] = details
	return nil
}

func (f *fakeStore) SubmissionsForQuestion(_ context.Context, _, _ string) (map[string][]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.siblings, nil
}

func (f *fakeStore) createdRequests() []store.CreateSubmissionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.CreateSubmissionRequest(nil), f.created...)
}

// fakeCompletion records completion marks so idempotence is observable.
type fakeCompletion struct {
	mu    sync.Mutex
	marks []string
}

func (f *fakeCompletion) MarkCompleted(_ context.Context, userEmail, contestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks = append(f.marks, userEmail+"/"+contestID)
	return nil
}

func (f *fakeCompletion) markCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.marks)
}
