// Package api exposes the session controller's intents over HTTP. The
// handlers are a thin translation layer; every decision lives in the
// session package.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"contestsession/internal/models"
	"contestsession/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// endedSessionRetention keeps an ended session readable long enough for
// the client to observe expiry or disqualification before eviction.
const endedSessionRetention = time.Minute

// ContestStore is the slice of the store client the API needs on top of
// what the session core uses.
type ContestStore interface {
	session.SubmissionStore
	GetContest(ctx context.Context, contestID string) (*models.Contest, error)
	QuestionsForContest(ctx context.Context, contestID string) ([]models.Question, error)
	ContestsForUser(ctx context.Context, email string) ([]models.Contest, error)
}

// CompletionStore extends the session core's recorder with the
// membership query the entry guard needs.
type CompletionStore interface {
	session.CompletionRecorder
	IsCompleted(ctx context.Context, userEmail, contestID string) (bool, error)
}

type Server struct {
	router *mux.Router

	exec       session.Executor
	similarity session.SimilarityChecker
	contests   ContestStore
	completion CompletionStore
	opts       session.Options
	threshold  float64
	log        *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*session.Controller
}

func NewServer(
	exec session.Executor,
	similarity session.SimilarityChecker,
	contests ContestStore,
	completion CompletionStore,
	opts session.Options,
	threshold float64,
	log *zap.SugaredLogger,
) *Server {
	s := &Server{
		exec:       exec,
		similarity: similarity,
		contests:   contests,
		completion: completion,
		opts:       opts,
		threshold:  threshold,
		log:        log,
		sessions:   make(map[string]*session.Controller),
	}

	r := mux.NewRouter()
	r.HandleFunc("/contests", s.listContests).Methods(http.MethodGet)
	r.HandleFunc("/sessions", s.startSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", s.getSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/select", s.selectQuestion).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/run", s.runSamples).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/submit", s.submitSolution).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/submit-contest", s.submitContest).Methods(http.MethodPost)
	s.router = r

	return s
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.log.Infow("session server listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) register(ctrl *session.Controller) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = ctrl
	s.mu.Unlock()

	go func() {
		<-ctrl.Done()
		time.Sleep(endedSessionRetention)
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}()

	return id
}

func (s *Server) lookup(r *http.Request) (*session.Controller, bool) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.sessions[id]
	return ctrl, ok
}

func mapSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionEnded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrSubmitInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNoSuchQuestion):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
