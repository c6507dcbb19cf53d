package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcadecheck/arcadecheck/internal/checker"
	"github.com/arcadecheck/arcadecheck/internal/checklog"
	"github.com/arcadecheck/arcadecheck/internal/config"
	"github.com/arcadecheck/arcadecheck/internal/fetch"
	"github.com/arcadecheck/arcadecheck/internal/logging"
	"github.com/arcadecheck/arcadecheck/internal/notify"
	"github.com/arcadecheck/arcadecheck/internal/repo/filestore"
)

var (
	cfgPath string

	// RootCmd is the root command for arcadecheck
	RootCmd = &cobra.Command{
		Use:   "arcadecheck",
		Short: "Version monitor for arcade cabinet software",
		Long: `arcadecheck watches the release pages of the software an arcade
cabinet runs on (MAME, LaunchBox, RetroArch, LEDBlinky, ScummVM),
detects newly published versions and pushes a notification when one
appears.

Each source is fetched on its own schedule. The published version is
extracted from the page and compared against the locally recorded one;
a change is persisted to the data directory and announced via Pushover
(and optionally a Slack webhook). A small web dashboard shows the
current state of every source together with the recent check log.

Quick Start:
  1. arcadecheck doctor        # verify config, data dir and sources
  2. arcadecheck check --all   # one manual pass over every source
  3. arcadecheck serve         # run the checkers and the dashboard

Examples:
  # Run a single check without waiting for the schedule
  arcadecheck check mame

  # Run the service with a custom config
  arcadecheck serve --config /etc/arcadecheck/config.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("arcadecheck: version monitor for arcade cabinet software")
			fmt.Println()
			fmt.Println("Run 'arcadecheck serve' to start the checkers and the dashboard.")
			fmt.Println("Run 'arcadecheck --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default: $ARCADECHECK_CONFIG, else built-in defaults)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(doctorCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// buildLogger maps the config block onto the logging options.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(logging.Options{
		Dir:        cfg.Log.Dir,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Console:    cfg.Log.Console,
	})
}

func buildFetcher(cfg *config.Config) *fetch.Client {
	client := fetch.NewClient(time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second)
	if cfg.Fetch.UserAgent != "" {
		client.UserAgent = cfg.Fetch.UserAgent
	}
	if cfg.Fetch.MaxBodyMB > 0 {
		client.MaxBodySize = int64(cfg.Fetch.MaxBodyMB) << 20
	}
	return client
}

// buildNotifier returns nil when nothing is configured so callers can
// skip notification delivery entirely.
func buildNotifier(cfg *config.Config) notify.Notifier {
	var ns notify.Multi
	if cfg.Pushover.Enabled {
		if p := notify.NewPushover(cfg.Pushover.Token, cfg.Pushover.User, cfg.Pushover.Device, cfg.Pushover.Priority); p != nil {
			ns = append(ns, p)
		}
	}
	if s := notify.NewSlack(cfg.Slack.Webhook); s != nil {
		ns = append(ns, s)
	}
	if len(ns) == 0 {
		return nil
	}
	return ns
}

// buildCheckers returns one checker per configured source, in config
// order.
func buildCheckers(cfg *config.Config, f checker.Fetcher, store *filestore.Store, n notify.Notifier, logger *zap.Logger, events *checklog.Logger) []*checker.Checker {
	cs := make([]*checker.Checker, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		cs = append(cs, &checker.Checker{
			Source:   sc.Source(),
			Rule:     sc.Rule,
			Fetcher:  f,
			Versions: store,
			Runs:     store,
			Notifier: n,
			Logger:   logger,
			Events:   events,
		})
	}
	return cs
}
