package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CompletionRecorder keeps the per-candidate set of completed contest
// ids. Membership is a set union, so recording the same completion
// twice is harmless; the contest-listing surface consults it to block
// re-entry.
type CompletionRecorder struct {
	client *redis.Client
}

func NewCompletionRecorder(client *redis.Client) *CompletionRecorder {
	return &CompletionRecorder{client: client}
}

func completionKey(userEmail string) string {
	return fmt.Sprintf("contests:completed:%s", userEmail)
}

func (r *CompletionRecorder) MarkCompleted(ctx context.Context, userEmail, contestID string) error {
	if err := r.client.SAdd(ctx, completionKey(userEmail), contestID).Err(); err != nil {
		return fmt.Errorf("failed to record contest completion: %w", err)
	}
	return nil
}

func (r *CompletionRecorder) IsCompleted(ctx context.Context, userEmail, contestID string) (bool, error) {
	done, err := r.client.SIsMember(ctx, completionKey(userEmail), contestID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check contest completion: %w", err)
	}
	return done, nil
}

func (r *CompletionRecorder) CompletedContests(ctx context.Context, userEmail string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, completionKey(userEmail)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list completed contests: %w", err)
	}
	return ids, nil
}
