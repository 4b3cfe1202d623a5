// Package session implements the contest attempt orchestrator: a
// countdown timer that forces submission at the deadline, a
// per-question run/submit state machine driven against the execution
// service, and the plagiarism cross-check that can disqualify the
// candidate mid-contest.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"contestsession/internal/models"
	"contestsession/internal/store"

	"go.uber.org/zap"
)

var (
	ErrSessionEnded   = errors.New("contest session has ended")
	ErrSubmitInFlight = errors.New("a submit is already in flight for this question")
	ErrNoSuchQuestion = errors.New("question index out of range")
)

// EndReason records which of the three converging paths ended the
// session.
type EndReason string

const (
	EndReasonManual       EndReason = "manual"
	EndReasonExpired      EndReason = "expired"
	EndReasonDisqualified EndReason = "disqualified"
)

// CompletionRecorder persists the fact that the candidate finished a
// contest. Recording must be idempotent.
type CompletionRecorder interface {
	MarkCompleted(ctx context.Context, userEmail, contestID string) error
}

type Deps struct {
	Exec        Executor
	Submissions SubmissionStore
	CrossCheck  *CrossChecker
	Completion  CompletionRecorder
	Log         *zap.SugaredLogger
}

type Options struct {
	ClockSkew        time.Duration
	TickInterval     time.Duration // defaults to one second
	DefaultTimeLimit int           // seconds, for questions without one
	DisqualifyDelay  time.Duration // pause before a forced submit after disqualification
}

// Controller owns one candidate's contest session: the timer, the
// attempt table, and the single idempotent completion path that manual
// submission, timer expiry, and disqualification all converge on.
type Controller struct {
	contest   models.Contest
	userEmail string
	questions []models.Question
	attempts  []*attemptState

	exec        Executor
	submissions SubmissionStore
	crossCheck  *CrossChecker
	completion  CompletionRecorder
	log         *zap.SugaredLogger

	defaultTimeLimit int
	disqualifyDelay  time.Duration

	timer *Timer

	mu            sync.Mutex
	active        int
	sampleResults []models.SampleRunResult
	disqualified  bool
	endReason     EndReason

	endOnce sync.Once
	done    chan struct{}
}

func NewController(contest models.Contest, questions []models.Question, userEmail string, deps Deps, opts Options) *Controller {
	attempts := make([]*attemptState, len(questions))
	for i := range attempts {
		attempts[i] = newAttemptState()
	}

	c := &Controller{
		contest:          contest,
		userEmail:        userEmail,
		questions:        questions,
		attempts:         attempts,
		exec:             deps.Exec,
		submissions:      deps.Submissions,
		crossCheck:       deps.CrossCheck,
		completion:       deps.Completion,
		log:              deps.Log,
		defaultTimeLimit: opts.DefaultTimeLimit,
		disqualifyDelay:  opts.DisqualifyDelay,
		done:             make(chan struct{}),
	}

	c.timer = NewTimer(contest.EndTime, opts.ClockSkew, func() {
		c.log.Infow("contest time expired, forcing submission", "contest", contest.ID)
		c.complete(context.Background(), EndReasonExpired)
	})
	if opts.TickInterval > 0 {
		c.timer.interval = opts.TickInterval
	}

	return c
}

// Start begins the countdown.
func (c *Controller) Start() {
	c.timer.Start()
}

func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) Ended() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Controller) Remaining() int { return c.timer.Remaining() }

func (c *Controller) Contest() models.Contest { return c.contest }

func (c *Controller) Questions() []models.Question { return c.questions }

func (c *Controller) ActiveQuestion() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) Disqualified() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disqualified
}

func (c *Controller) EndReason() EndReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endReason
}

// Statuses returns the attempt table in question order.
func (c *Controller) Statuses() []models.QuestionAttempt {
	statuses := make([]models.QuestionAttempt, len(c.attempts))
	for i, a := range c.attempts {
		statuses[i] = a.snapshot()
	}
	return statuses
}

// SampleResults returns the results of the most recent Run on the
// active question.
func (c *Controller) SampleResults() []models.SampleRunResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]models.SampleRunResult, len(c.sampleResults))
	copy(results, c.sampleResults)
	return results
}

// SelectQuestion switches the active question and discards the previous
// question's ephemeral sample results.
func (c *Controller) SelectQuestion(index int) error {
	if c.Ended() {
		return ErrSessionEnded
	}
	if index < 0 || index >= len(c.questions) {
		return ErrNoSuchQuestion
	}
	c.mu.Lock()
	c.active = index
	c.sampleResults = nil
	c.mu.Unlock()
	return nil
}

// Run executes the active question's sample tests sequentially and
// returns one result per test. Run never mutates the attempt status.
func (c *Controller) Run(ctx context.Context, code, language string) ([]models.SampleRunResult, error) {
	if c.Ended() {
		return nil, ErrSessionEnded
	}

	c.mu.Lock()
	index := c.active
	c.mu.Unlock()
	question := &c.questions[index]

	results := runSampleTests(ctx, c.exec, question, code, language, c.defaultTimeLimit)

	c.mu.Lock()
	if c.active == index {
		c.sampleResults = results
	}
	c.mu.Unlock()

	return results, nil
}

// Submit grades the active question against its hidden test cases,
// runs the plagiarism cross-check, persists the submission, and
// schedules a forced contest submit when the candidate is implicated.
// Only one Submit may be in flight per question.
func (c *Controller) Submit(ctx context.Context, code, language string) (models.QuestionAttempt, error) {
	if c.Ended() {
		return models.QuestionAttempt{}, ErrSessionEnded
	}

	c.mu.Lock()
	index := c.active
	c.mu.Unlock()
	question := &c.questions[index]
	attempt := c.attempts[index]

	if !attempt.beginSubmit() {
		return models.QuestionAttempt{}, ErrSubmitInFlight
	}
	defer attempt.endSubmit()

	// Step 1: grading. The visible status reflects this outcome no
	// matter what the plagiarism pass does afterwards.
	accepted, message := gradeHiddenTests(ctx, c.exec, question, code, language, c.defaultTimeLimit)
	if accepted {
		attempt.record(models.AttemptStatusAccepted, message)
	} else {
		attempt.record(models.AttemptStatusRejected, message)
	}

	// Step 2: cross-check against stored siblings. A fetch failure
	// degrades the pass to "not checked" rather than failing the submit.
	implicated, details, checkErr := c.crossCheck.Run(ctx, c.contest.ID, question.ID, code, language)

	// Step 3: persist the current submission. The candidate's own
	// record keeps the grading outcome and is never flagged itself,
	// even when it implicated them; only siblings get marked.
	req := store.CreateSubmissionRequest{
		QuestionID:    question.ID,
		UserEmail:     c.userEmail,
		ContestID:     c.contest.ID,
		Code:          code,
		Language:      language,
		IsAccepted:    accepted,
		IsPlagChecked: checkErr == nil,
		IsPlag:        false,
	}
	if checkErr == nil {
		req.IsPlag = implicated
		req.PlagiarismDetails = details
	} else {
		c.log.Warnw("plagiarism pass degraded to unchecked",
			"question", question.ID, "error", checkErr)
	}
	if _, err := c.submissions.CreateSubmission(ctx, req); err != nil {
		c.log.Errorw("failed to persist submission", "question", question.ID, "error", err)
	}

	// Step 4: disqualification. The forced submit is delayed so the
	// candidate sees the notice first; it converges on the same
	// idempotent completion path as manual submission and expiry.
	if checkErr == nil && implicated {
		c.mu.Lock()
		c.disqualified = true
		c.mu.Unlock()
		c.log.Infow("candidate disqualified for plagiarism",
			"contest", c.contest.ID, "question", question.ID)
		time.AfterFunc(c.disqualifyDelay, func() {
			c.complete(context.Background(), EndReasonDisqualified)
		})
	}

	return attempt.snapshot(), nil
}

// SubmitContest ends the session on the candidate's explicit action.
// Safe to call any number of times, from any of the three triggers.
func (c *Controller) SubmitContest(ctx context.Context) error {
	return c.complete(ctx, EndReasonManual)
}

func (c *Controller) complete(ctx context.Context, reason EndReason) error {
	var err error
	c.endOnce.Do(func() {
		c.timer.Stop()

		c.mu.Lock()
		c.endReason = reason
		c.mu.Unlock()

		err = c.completion.MarkCompleted(ctx, c.userEmail, c.contest.ID)
		if err != nil {
			c.log.Errorw("failed to record contest completion",
				"contest", c.contest.ID, "error", err)
		}

		close(c.done)
		c.log.Infow("contest session ended", "contest", c.contest.ID, "reason", reason)
	})
	return err
}
