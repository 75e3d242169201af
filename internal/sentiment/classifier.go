package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/RedditLens/internal/utils"
)

// ErrEmptyLabel is returned when the model replies with nothing usable.
var ErrEmptyLabel = errors.New("sentiment classifier returned an empty label")

// Classifier labels a piece of text with a single lowercase emotion word.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// LLMClassifier asks a chat model for the dominant emotion of a text.
// Labels are free-form; whatever word the model picks is returned.
type LLMClassifier struct {
	chat   model.BaseChatModel
	prompt string
}

func NewLLMClassifier(chat model.BaseChatModel) *LLMClassifier {
	return &LLMClassifier{
		chat:   chat,
		prompt: utils.MustLoadPrompt("sentiment_classifier"),
	}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(c.prompt),
		schema.UserMessage(text),
	}

	resp, err := c.chat.Generate(ctx, msgs, model.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("failed to classify sentiment: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(resp.Content))
	if label == "" {
		return "", ErrEmptyLabel
	}

	slog.DebugContext(ctx, "classified sentiment", "text", text, "label", label)
	return label, nil
}
