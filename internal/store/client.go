// Package store wraps the external submission/contest persistence
// service. Contests and questions are read-only to the session core;
// submissions are owned by the store from creation onward.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contestsession/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateSubmissionRequest carries everything the store needs to persist
// one submission record.
type CreateSubmissionRequest struct {
	QuestionID        string `json:"questionId"`
	UserEmail         string `json:"userEmail"`
	ContestID         string `json:"contestId"`
	Code              string `json:"code"`
	Language          string `json:"language"`
	IsAccepted        bool   `json:"isAccepted"`
	IsPlagChecked     bool   `json:"isPlagChecked"`
	IsPlag            bool   `json:"isPlag"`
	PlagiarismDetails string `json:"plagiarismDetails"`
}

func (c *Client) CreateSubmission(ctx context.Context, req CreateSubmissionRequest) (*models.Submission, error) {
	var created models.Submission
	if err := c.send(ctx, http.MethodPost, "/submission", req, &created); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return &created, nil
}

type statusUpdate struct {
	SubmissionID     string `json:"submissionId"`
	SubmissionStatus string `json:"submissionStatus"`
}

func (c *Client) UpdateSubmissionStatus(ctx context.Context, submissionID, status string) error {
	if err := c.send(ctx, http.MethodPut, "/submissions/status", statusUpdate{submissionID, status}, nil); err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	return nil
}

type plagiarismUpdate struct {
	SubmissionID     string `json:"submissionId"`
	PlagiarismStatus string `json:"plagiarismStatus"`
}

func (c *Client) UpdatePlagiarismDetails(ctx context.Context, submissionID, details string) error {
	if err := c.send(ctx, http.MethodPut, "/submissions/plag", plagiarismUpdate{submissionID, details}, nil); err != nil {
		return fmt.Errorf("failed to update plagiarism details: %w", err)
	}
	return nil
}

// SubmissionsForQuestion returns every stored submission for the
// contest/question pair, grouped by candidate. A missing or empty
// result is returned as an empty map.
func (c *Client) SubmissionsForQuestion(ctx context.Context, contestID, questionID string) (map[string][]models.Submission, error) {
	q := url.Values{"contestId": {contestID}, "questionId": {questionID}}

	siblings := map[string][]models.Submission{}
	if err := c.get(ctx, "/submissions", q, &siblings); err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}
	return siblings, nil
}

func (c *Client) GetContest(ctx context.Context, contestID string) (*models.Contest, error) {
	var contest models.Contest
	if err := c.get(ctx, "/contest", url.Values{"id": {contestID}}, &contest); err != nil {
		return nil, fmt.Errorf("failed to fetch contest: %w", err)
	}
	return &contest, nil
}

func (c *Client) QuestionsForContest(ctx context.Context, contestID string) ([]models.Question, error) {
	var questions []models.Question
	if err := c.get(ctx, "/questions/contest", url.Values{"contestId": {contestID}}, &questions); err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	return questions, nil
}

// ContestsForUser lists the contests the candidate is registered for.
// Consulted by the contest-listing surface, not by the session core.
func (c *Client) ContestsForUser(ctx context.Context, email string) ([]models.Contest, error) {
	var contests []models.Contest
	if err := c.get(ctx, "/contests/user", url.Values{"email": {email}}, &contests); err != nil {
		return nil, fmt.Errorf("failed to fetch contests for user: %w", err)
	}
	return contests, nil
}

func (c *Client) send(ctx context.Context, method, path string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("store returned %s", resp.Status)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
