package debug

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/dyike/RedditLens/config"
)

// EinoDebugger starts the eino devops server. It must run before the answer
// graph is compiled so the graph is registered with the visual debugger.
type EinoDebugger struct {
	config *config.Config
	init   func(ctx context.Context) error
}

func NewEinoDebugger(cfg *config.Config) *EinoDebugger {
	return &EinoDebugger{
		config: cfg,
		init: func(ctx context.Context) error {
			return devops.Init(ctx, devops.WithDevServerPort(strconv.Itoa(cfg.EinoDebugPort)))
		},
	}
}

func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.IsEnabled() {
		return nil
	}

	slog.DebugContext(ctx, "initializing eino debug plugin", "port", d.config.EinoDebugPort)

	if err := d.init(ctx); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}

	slog.InfoContext(ctx, "eino debug server started", "url", d.GetDebugURL())
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled
}

func (d *EinoDebugger) GetDebugURL() string {
	if !d.IsEnabled() {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
