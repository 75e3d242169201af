package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyike/RedditLens/config"
	"github.com/dyike/RedditLens/internal/logger"
	"github.com/dyike/RedditLens/internal/web"
	"github.com/dyike/RedditLens/models"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "redditlens",
		Short: "RedditLens - ask questions about Reddit",
		Long: `RedditLens turns a natural-language question into a Reddit search,
optionally filters the posts by sentiment and summarizes them with a language model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			logger.Setup(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), cmd.OutOrStdout(), app.Orchestrator, PromptForQuestion, cfg.Streaming)
		},
	}

	rootCmd.AddCommand(newAskCmd(cfg))
	rootCmd.AddCommand(newSearchCmd(cfg))
	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().Bool("stream", cfg.Streaming, "Stream the answer as it is generated")
	rootCmd.PersistentFlags().Bool("sentiment", cfg.SentimentFilter, "Filter search results by sentiment before summarizing")
	rootCmd.PersistentFlags().Bool("debug", cfg.Debug, "Enable debug logging")
	rootCmd.PersistentFlags().String("model", cfg.Model, "Language model name (defaults to the provider's model)")

	return rootCmd
}

// applyFlags copies explicitly set global flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("stream") {
		v, err := flags.GetBool("stream")
		if err != nil {
			return err
		}
		cfg.Streaming = v
	}
	if flags.Changed("sentiment") {
		v, err := flags.GetBool("sentiment")
		if err != nil {
			return err
		}
		cfg.SentimentFilter = v
	}
	if flags.Changed("debug") {
		v, err := flags.GetBool("debug")
		if err != nil {
			return err
		}
		cfg.Debug = v
	}
	if flags.Changed("model") {
		v, err := flags.GetString("model")
		if err != nil {
			return err
		}
		cfg.Model = v
	}
	return nil
}

func newAskCmd(cfg *config.Config) *cobra.Command {
	var saveDir string

	cmd := &cobra.Command{
		Use:   "ask [QUESTION...]",
		Short: "Ask one question and print the answer",
		Long: `Ask one question about Reddit content.
Example: redditlens ask "What are people saying about Elon Musk this week?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")
			rec := &recordingAsker{Asker: app.Orchestrator}
			if err := answer(cmd.Context(), cmd.OutOrStdout(), rec, question, cfg.Streaming); err != nil {
				return err
			}
			if saveDir == "" {
				return nil
			}
			return saveAnswer(cmd.OutOrStdout(), saveDir, question, rec.last)
		},
	}

	cmd.Flags().StringVar(&saveDir, "save", "", "Also write the answer as markdown into this directory")
	return cmd
}

func newSearchCmd(cfg *config.Config) *cobra.Command {
	req := models.SearchRequest{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a Reddit search directly, without the language model",
		RunE: func(cmd *cobra.Command, args []string) error {
			reddit, err := NewRedditClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			posts, err := reddit.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			renderPosts(cmd.OutOrStdout(), posts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Query, "query", "q", "", "Search query")
	cmd.Flags().StringVar(&req.Sort, "sort", models.SortRelevance, "Sort order: "+strings.Join(models.SortModes, ", "))
	cmd.Flags().StringVar(&req.TimeFilter, "time", models.TimeAll, "Time filter: "+strings.Join(models.TimeFilters, ", "))
	cmd.Flags().IntVar(&req.Limit, "limit", 10, "Maximum number of posts (1-50)")
	cmd.Flags().StringVar(&req.Subreddit, "subreddit", "", "Restrict the search to one subreddit")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.ListenAddr = addr
			}
			app, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return web.NewServer(app.Orchestrator).ListenAndServe(cmd.Context(), cfg.ListenAddr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from LISTEN_ADDR)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "RedditLens %s\n", Version)
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout(), cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
			return nil
		},
	})

	return configCmd
}

// showConfig displays the current configuration with secrets masked.
func showConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, titleStyle.Render("RedditLens configuration"))
	fmt.Fprintf(w, "LLM Provider:       %s\n", cfg.LLMProvider)
	fmt.Fprintf(w, "Model:              %s\n", cfg.ModelName())
	fmt.Fprintf(w, "Backend URL:        %s\n", orDefault(cfg.BackendURL, "(provider default)"))
	fmt.Fprintf(w, "LLM API Key:        %s\n", configured(cfg.LLMAPIKey() != ""))
	fmt.Fprintf(w, "Max Tokens:         %d\n", cfg.MaxTokens)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Reddit API:         %s\n", configured(cfg.HasRedditCredentials()))
	fmt.Fprintf(w, "Reddit User Agent:  %s\n", cfg.RedditUserAgent)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Streaming:          %t\n", cfg.Streaming)
	fmt.Fprintf(w, "Sentiment Filter:   %t\n", cfg.SentimentFilter)
	fmt.Fprintf(w, "Listen Address:     %s\n", cfg.ListenAddr)
	fmt.Fprintf(w, "Log Level:          %s (%s)\n", cfg.LogLevel, cfg.LogFormat)
	fmt.Fprintf(w, "Debug Mode:         %t\n", cfg.Debug)
	fmt.Fprintf(w, "Eino Debug:         %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Fprintf(w, "Debug URL:          http://localhost:%d\n", cfg.EinoDebugPort)
	}
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
