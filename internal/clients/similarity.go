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

// SimilarityVerdict is the similarity service's judgement of one pair
// of submissions.
type SimilarityVerdict struct {
	Plagiarized bool
	Similarity  float64
	Explanation string
}

type SimilarityClient struct {
	baseURL string
	http    *http.Client
}

func NewSimilarityClient(baseURL string, timeout time.Duration) *SimilarityClient {
	return &SimilarityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type checkRequest struct {
	Code1           string  `json:"code1"`
	Language1       string  `json:"language1"`
	Code2           string  `json:"code2"`
	Language2       string  `json:"language2"`
	Threshold       float64 `json:"threshold"`
	NeedExplanation bool    `json:"need_explanation"`
}

type checkResponse struct {
	IsError      bool   `json:"is_error"`
	ErrorMessage string `json:"error_message"`
	Verdict      struct {
		Plagiarism  bool    `json:"Plagiarism"`
		Similarity  float64 `json:"Similarity"`
		Explanation string  `json:"Explanation"`
	} `json:"verdict"`
}

// Check compares two submissions. Any failure, transport or reported by
// the service, surfaces as an error; a nil error means the verdict is
// usable.
func (c *SimilarityClient) Check(ctx context.Context, codeA, languageA, codeB, languageB string, threshold float64, needExplanation bool) (SimilarityVerdict, error) {
	payload, err := json.Marshal(checkRequest{
		Code1:           codeA,
		Language1:       languageA,
		Code2:           codeB,
		Language2:       languageB,
		Threshold:       threshold,
		NeedExplanation: needExplanation,
	})
	if err != nil {
		return SimilarityVerdict{}, fmt.Errorf("failed to marshal check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check", bytes.NewReader(payload))
	if err != nil {
		return SimilarityVerdict{}, fmt.Errorf("failed to build check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SimilarityVerdict{}, fmt.Errorf("similarity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SimilarityVerdict{}, fmt.Errorf("failed to decode check response: %w", err)
	}

	if out.IsError {
		msg := out.ErrorMessage
		if msg == "" {
			msg = "plagiarism check failed"
		}
		return SimilarityVerdict{}, fmt.Errorf("similarity service error: %s", msg)
	}

	return SimilarityVerdict{
		Plagiarized: out.Verdict.Plagiarism,
		Similarity:  out.Verdict.Similarity,
		Explanation: out.Verdict.Explanation,
	}, nil
}
