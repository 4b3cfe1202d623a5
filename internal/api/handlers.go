package api

import (
	"encoding/json"
	"net/http"
	"time"

	"contestsession/internal/models"
	"contestsession/internal/session"
)

type contestView struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	StartTime time.Time            `json:"startTime"`
	EndTime   time.Time            `json:"endTime"`
	Status    models.ContestStatus `json:"status"`
	Completed bool                 `json:"completed"`
}

// listContests returns the candidate's contests classified against the
// skew-corrected clock, with their completion state.
func (s *Server) listContests(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	ctx := r.Context()
	contests, err := s.contests.ContestsForUser(ctx, email)
	if err != nil {
		s.log.Errorw("contest listing failed", "email", email, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch contests")
		return
	}

	now := time.Now().Add(s.opts.ClockSkew)
	views := make([]contestView, len(contests))
	for i, contest := range contests {
		completed, err := s.completion.IsCompleted(ctx, email, contest.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check contest completion")
			return
		}
		views[i] = contestView{
			ID:        contest.ID,
			Name:      contest.Name,
			StartTime: contest.StartTime,
			EndTime:   contest.EndTime,
			Status:    contest.StatusAt(now),
			Completed: completed,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"contests": views})
}

type startSessionRequest struct {
	ContestID string `json:"contestId"`
	UserEmail string `json:"userEmail"`
}

// questionView is the candidate-facing shape of a question. Hidden test
// cases never leave the server.
type questionView struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TimeLimit   int               `json:"timeLimit"`
	SampleTests []models.TestCase `json:"sampleTests"`
}

type startSessionResponse struct {
	SessionID        string         `json:"sessionId"`
	ContestName      string         `json:"contestName"`
	RemainingSeconds int            `json:"remainingSeconds"`
	Questions        []questionView `json:"questions"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContestID == "" || req.UserEmail == "" {
		writeError(w, http.StatusBadRequest, "contestId and userEmail are required")
		return
	}

	ctx := r.Context()

	completed, err := s.completion.IsCompleted(ctx, req.UserEmail, req.ContestID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check contest completion")
		return
	}
	if completed {
		writeError(w, http.StatusConflict, "contest already submitted")
		return
	}

	contest, err := s.contests.GetContest(ctx, req.ContestID)
	if err != nil {
		s.log.Errorw("contest fetch failed", "contest", req.ContestID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch contest")
		return
	}

	switch contest.StatusAt(time.Now().Add(s.opts.ClockSkew)) {
	case models.ContestStatusUpcoming:
		writeError(w, http.StatusForbidden, "contest has not started yet")
		return
	case models.ContestStatusExpired:
		writeError(w, http.StatusForbidden, "contest has already ended")
		return
	}

	questions, err := s.contests.QuestionsForContest(ctx, req.ContestID)
	if err != nil {
		s.log.Errorw("question fetch failed", "contest", req.ContestID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch questions")
		return
	}
	if len(questions) == 0 {
		writeError(w, http.StatusNotFound, "no questions available")
		return
	}

	crossCheck := session.NewCrossChecker(s.similarity, s.contests, s.threshold, s.log)
	ctrl := session.NewController(*contest, questions, req.UserEmail, session.Deps{
		Exec:        s.exec,
		Submissions: s.contests,
		CrossCheck:  crossCheck,
		Completion:  s.completion,
		Log:         s.log,
	}, s.opts)
	ctrl.Start()

	id := s.register(ctrl)
	s.log.Infow("session started", "session", id, "contest", req.ContestID, "user", req.UserEmail)

	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{
			ID:          q.ID,
			Title:       q.Title,
			Description: q.Description,
			TimeLimit:   q.TimeLimit,
			SampleTests: q.SampleTests,
		}
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{
		SessionID:        id,
		ContestName:      contest.Name,
		RemainingSeconds: ctrl.Remaining(),
		Questions:        views,
	})
}

type sessionStateResponse struct {
	RemainingSeconds int                      `json:"remainingSeconds"`
	ActiveQuestion   int                      `json:"activeQuestion"`
	Statuses         []models.QuestionAttempt `json:"statuses"`
	SampleResults    []models.SampleRunResult `json:"sampleResults"`
	Disqualified     bool                     `json:"disqualified"`
	Ended            bool                     `json:"ended"`
	EndReason        session.EndReason        `json:"endReason,omitempty"`
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, sessionStateResponse{
		RemainingSeconds: ctrl.Remaining(),
		ActiveQuestion:   ctrl.ActiveQuestion(),
		Statuses:         ctrl.Statuses(),
		SampleResults:    ctrl.SampleResults(),
		Disqualified:     ctrl.Disqualified(),
		Ended:            ctrl.Ended(),
		EndReason:        ctrl.EndReason(),
	})
}

type selectQuestionRequest struct {
	Index int `json:"index"`
}

func (s *Server) selectQuestion(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req selectQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ctrl.SelectQuestion(req.Index); err != nil {
		mapSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"activeQuestion": req.Index})
}

type codeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (req codeRequest) validate() string {
	if req.Code == "" || req.Language == "" {
		return "code and language are required"
	}
	return ""
}

func (s *Server) runSamples(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	results, err := ctrl.Run(r.Context(), req.Code, req.Language)
	if err != nil {
		mapSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

type submitResponse struct {
	Status       models.AttemptStatus `json:"status"`
	Message      string               `json:"message"`
	Disqualified bool                 `json:"disqualified"`
}

func (s *Server) submitSolution(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	attempt, err := ctrl.Submit(r.Context(), req.Code, req.Language)
	if err != nil {
		mapSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Status:       attempt.Status,
		Message:      attempt.Message,
		Disqualified: ctrl.Disqualified(),
	})
}

func (s *Server) submitContest(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	if err := ctrl.SubmitContest(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record contest completion")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": true})
}
