// Package cli provides the command-line interface for RedditLens
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyike/RedditLens/config"
	"github.com/dyike/RedditLens/pkg/dataflows"
)

// Run starts the CLI application
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd(config.DefaultConfig())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		renderError(os.Stderr, err)
		if errors.Is(err, dataflows.ErrAuthentication) {
			fmt.Fprintln(os.Stderr, hintStyle.Render("Check REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET."))
		}
		stop()
		os.Exit(1)
	}
}
