package session

import (
	"context"
	"sort"
	"strings"

	"contestsession/internal/clients"
	"contestsession/internal/models"
	"contestsession/internal/store"

	"go.uber.org/zap"
)

// SimilarityChecker compares two submissions on the remote similarity
// service.
type SimilarityChecker interface {
	Check(ctx context.Context, codeA, languageA, codeB, languageB string, threshold float64, needExplanation bool) (clients.SimilarityVerdict, error)
}

// SubmissionStore is the slice of the persistence boundary the session
// core reads and mutates.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, req store.CreateSubmissionRequest) (*models.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, submissionID, status string) error
	UpdatePlagiarismDetails(ctx context.Context, submissionID, details string) error
	SubmissionsForQuestion(ctx context.Context, contestID, questionID string) (map[string][]models.Submission, error)
}

// CrossChecker compares a freshly graded submission against every
// stored sibling submission for the same contest and question. Siblings
// found too similar are flagged in the store; the current submission is
// deliberately not flagged, only reported as implicated so the caller
// can disqualify the candidate.
type CrossChecker struct {
	similarity SimilarityChecker
	store      SubmissionStore
	threshold  float64
	log        *zap.SugaredLogger
}

func NewCrossChecker(similarity SimilarityChecker, submissions SubmissionStore, threshold float64, log *zap.SugaredLogger) *CrossChecker {
	return &CrossChecker{
		similarity: similarity,
		store:      submissions,
		threshold:  threshold,
		log:        log,
	}
}

// Run performs the pairwise pass. It returns whether the current code
// was implicated and the newline-joined explanations for every flagged
// sibling. A sibling-fetch error is returned to the caller, which
// degrades the whole pass to "not checked"; everything past the fetch
// is absorbed here.
func (cc *CrossChecker) Run(ctx context.Context, contestID, questionID, code, language string) (bool, string, error) {
	siblings, err := cc.store.SubmissionsForQuestion(ctx, contestID, questionID)
	if err != nil {
		return false, "", err
	}
	if len(siblings) == 0 {
		return false, "", nil
	}

	candidates := make([]string, 0, len(siblings))
	for email := range siblings {
		candidates = append(candidates, email)
	}
	sort.Strings(candidates)

	implicated := false
	var details []string

	for _, email := range candidates {
		for _, sibling := range siblings[email] {
			verdict, err := cc.similarity.Check(ctx, code, language, sibling.Code, sibling.Language, cc.threshold, true)
			if err != nil {
				cc.log.Warnw("similarity check failed, skipping pair",
					"submission", sibling.ID, "error", err)
				continue
			}
			if !verdict.Plagiarized {
				continue
			}

			if err := cc.store.UpdateSubmissionStatus(ctx, sibling.ID, models.SubmissionStatusPlag); err != nil {
				cc.log.Warnw("failed to flag sibling submission", "submission", sibling.ID, "error", err)
			}
			if err := cc.store.UpdatePlagiarismDetails(ctx, sibling.ID, verdict.Explanation); err != nil {
				cc.log.Warnw("failed to attach plagiarism details", "submission", sibling.ID, "error", err)
			}

			implicated = true
			details = append(details, verdict.Explanation)
			cc.log.Infow("plagiarism detected", "submission", sibling.ID, "similarity", verdict.Similarity)
		}
	}

	return implicated, strings.Join(details, "\n"), nil
}
