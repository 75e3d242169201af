package filter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dyike/RedditLens/consts"
	"github.com/dyike/RedditLens/internal/sentiment"
	"github.com/dyike/RedditLens/models"
)

// PostFilter keeps posts whose classified sentiment matches a target.
type PostFilter struct {
	classifier sentiment.Classifier
}

func New(classifier sentiment.Classifier) *PostFilter {
	return &PostFilter{classifier: classifier}
}

// Filter walks req.Posts in order, tagging each with its sentiment, and
// stops as soon as MaxPosts posts are kept. Posts past the cutoff are never
// classified. An empty target sentiment keeps every post.
func (f *PostFilter) Filter(ctx context.Context, req models.FilterRequest) ([]models.Post, error) {
	maxPosts := req.MaxPosts
	if maxPosts <= 0 {
		maxPosts = consts.DefaultMaxPosts
	}
	target := strings.ToLower(strings.TrimSpace(req.Sentiment))

	kept := make([]models.Post, 0, min(maxPosts, len(req.Posts)))
	classified := 0
	for _, post := range req.Posts {
		if len(kept) >= maxPosts {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label, err := f.classifier.Classify(ctx, post.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to classify post %q: %w", post.Title, err)
		}
		classified++

		if target != "" && label != target {
			continue
		}
		post.Sentiment = label
		kept = append(kept, post)
	}

	slog.DebugContext(ctx, "filtered posts",
		"input", len(req.Posts),
		"classified", classified,
		"kept", len(kept),
		"sentiment", target,
		"max_posts", maxPosts)

	return kept, nil
}
