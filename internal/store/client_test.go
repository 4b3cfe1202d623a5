package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contestsession/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submission", r.URL.Path)

		var req CreateSubmissionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "q1", req.QuestionID)
		assert.Equal(t, "me@x.dev", req.UserEmail)
		assert.True(t, req.IsAccepted)
		assert.True(t, req.IsPlagChecked)
		assert.False(t, req.IsPlag)

		_ = json.NewEncoder(w).Encode(models.Submission{ID: "sub-9", QuestionID: req.QuestionID})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	created, err := client.CreateSubmission(context.Background(), CreateSubmissionRequest{
		QuestionID:    "q1",
		UserEmail:     "me@x.dev",
		ContestID:     "c1",
		Code:          "code",
		Language:      "go",
		IsAccepted:    true,
		IsPlagChecked: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "sub-9", created.ID)
}

func TestUpdateSubmissionStatus(t *testing.T) {
	var got statusUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/submissions/status", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.UpdateSubmissionStatus(context.Background(), "sub-1", models.SubmissionStatusPlag))

	assert.Equal(t, "sub-1", got.SubmissionID)
	assert.Equal(t, "PLAG", got.SubmissionStatus)
}

func TestUpdatePlagiarismDetails(t *testing.T) {
	var got plagiarismUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/submissions/plag", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.UpdatePlagiarismDetails(context.Background(), "sub-1", "matching structure"))

	assert.Equal(t, "sub-1", got.SubmissionID)
	assert.Equal(t, "matching structure", got.PlagiarismStatus)
}

func TestSubmissionsForQuestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/submissions", r.URL.Path)
		assert.Equal(t, "c1", r.URL.Query().Get("contestId"))
		assert.Equal(t, "q1", r.URL.Query().Get("questionId"))

		_ = json.NewEncoder(w).Encode(map[string][]models.Submission{
			"other@x.dev": {{ID: "sub-1", Code: "code"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	siblings, err := client.SubmissionsForQuestion(context.Background(), "c1", "q1")

	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, "sub-1", siblings["other@x.dev"][0].ID)
}

func TestSubmissionsForQuestionEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	siblings, err := client.SubmissionsForQuestion(context.Background(), "c1", "q1")

	require.NoError(t, err)
	assert.Empty(t, siblings)
}

func TestGetContestAndQuestions(t *testing.T) {
	end := time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/contest":
			assert.Equal(t, "c1", r.URL.Query().Get("id"))
			_ = json.NewEncoder(w).Encode(models.Contest{ID: "c1", Name: "Finals", EndTime: end})
		case "/questions/contest":
			assert.Equal(t, "c1", r.URL.Query().Get("contestId"))
			_ = json.NewEncoder(w).Encode([]models.Question{{ID: "q1", Title: "Sum"}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	contest, err := client.GetContest(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Finals", contest.Name)
	assert.True(t, contest.EndTime.Equal(end))

	questions, err := client.QuestionsForContest(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Sum", questions[0].Title)
}

func TestStoreErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.SubmissionsForQuestion(context.Background(), "c1", "q1")
	assert.Error(t, err)

	err = client.UpdateSubmissionStatus(context.Background(), "sub-1", "PLAG")
	assert.Error(t, err)
}
