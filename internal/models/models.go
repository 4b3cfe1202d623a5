package models

import "time"

type ContestStatus string

const (
	ContestStatusLive     ContestStatus = "LIVE"
	ContestStatusUpcoming ContestStatus = "UPCOMING"
	ContestStatusExpired  ContestStatus = "EXPIRED"
)

type AttemptStatus string

const (
	AttemptStatusUnattempted AttemptStatus = "unattempted"
	AttemptStatusAccepted    AttemptStatus = "accepted"
	AttemptStatusRejected    AttemptStatus = "rejected"
)

// SubmissionStatusPlag is the store-side status written to a sibling
// submission that was found too similar to the current code.
const SubmissionStatusPlag = "PLAG"

// Contest metadata is owned by the submission store; the session core
// only ever reads it.
type Contest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// StatusAt classifies the contest window relative to the given instant.
func (c Contest) StatusAt(now time.Time) ContestStatus {
	switch {
	case now.Before(c.StartTime):
		return ContestStatusUpcoming
	case now.After(c.EndTime):
		return ContestStatusExpired
	default:
		return ContestStatusLive
	}
}

// TestCase is a single input/expected-output pair. Sample tests are
// visible to the candidate; hidden test cases are used only for grading.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

type Question struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TimeLimit   int        `json:"timeLimit"` // seconds; 0 means use the default
	SampleTests []TestCase `json:"sampleTests"`
	TestCases   []TestCase `json:"testCases"`
}

// QuestionAttempt is the per-question status the candidate sees. It is
// mutated only by the Submit protocol and always reflects the grading
// outcome, regardless of what the plagiarism pass decided.
type QuestionAttempt struct {
	Status  AttemptStatus `json:"status"`
	Message string        `json:"message"`
}

// SampleRunResult is the outcome of one sample test during a Run. It is
// ephemeral: recomputed on every Run, discarded on question switch.
type SampleRunResult struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Output   string `json:"output"`
	Success  bool   `json:"success"`
	Pass     bool   `json:"pass"`
}

// Submission is owned by the submission store from creation onward.
type Submission struct {
	ID                string    `json:"id"`
	QuestionID        string    `json:"questionId"`
	ContestID         string    `json:"contestId"`
	UserEmail         string    `json:"userEmail"`
	Code              string    `json:"code"`
	Language          string    `json:"language"`
	IsAccepted        bool      `json:"isAccepted"`
	IsPlagChecked     bool      `json:"isPlagChecked"`
	IsPlag            bool      `json:"isPlag"`
	PlagiarismDetails string    `json:"plagiarismDetails"`
	Status            string    `json:"status"`
	SubmittedAt       time.Time `json:"submittedAt"`
}
