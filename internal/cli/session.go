package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dyike/RedditLens/internal/agent"
	"github.com/dyike/RedditLens/internal/logger"
	"github.com/dyike/RedditLens/pkg/utils"
)

// Asker answers one prompt, batched or streamed.
type Asker interface {
	Run(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string, onDelta agent.DeltaFunc) (string, error)
}

// answer runs one prompt and prints the result to w.
func answer(ctx context.Context, w io.Writer, asker Asker, prompt string, stream bool) error {
	ctx, requestID := logger.WithRequestID(ctx)
	slog.DebugContext(ctx, "question received", "prompt", logger.Truncate(prompt, 120))

	if !stream {
		text, err := asker.Run(ctx, prompt)
		if err != nil {
			return err
		}
		renderAnswer(w, text)
		return nil
	}

	_, err := asker.Stream(ctx, prompt, func(delta string) error {
		_, err := io.WriteString(w, delta)
		return err
	})
	fmt.Fprintln(w)
	if err != nil {
		return fmt.Errorf("request %s: %w", requestID, err)
	}
	return nil
}

// runInteractive loops over questions until next returns errQuit. Request
// errors are printed and the loop continues.
func runInteractive(ctx context.Context, w io.Writer, asker Asker, next func() (string, error), stream bool) error {
	DisplayWelcomeBanner(w)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		question, err := next()
		if errors.Is(err, errQuit) {
			fmt.Fprintln(w, hintStyle.Render("Bye!"))
			return nil
		}
		if err != nil {
			return err
		}
		if question == "" {
			continue
		}

		if err := answer(ctx, w, asker, question, stream); err != nil {
			renderError(w, err)
		}
		fmt.Fprintln(w)
	}
}

// recordingAsker keeps the last answer so it can be saved after printing.
type recordingAsker struct {
	Asker
	last string
}

func (r *recordingAsker) Run(ctx context.Context, prompt string) (string, error) {
	text, err := r.Asker.Run(ctx, prompt)
	r.last = text
	return text, err
}

func (r *recordingAsker) Stream(ctx context.Context, prompt string, onDelta agent.DeltaFunc) (string, error) {
	text, err := r.Asker.Stream(ctx, prompt, onDelta)
	r.last = text
	return text, err
}

func saveAnswer(w io.Writer, dir, question, text string) error {
	path, err := utils.WriteMarkdown(dir, utils.AnswerFileName(question, time.Now()), utils.FormatAnswer(question, text))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, hintStyle.Render("Saved to "+path))
	return nil
}
