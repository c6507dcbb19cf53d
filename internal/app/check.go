package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/arcadecheck/arcadecheck/internal/checklog"
	"github.com/arcadecheck/arcadecheck/internal/config"
	"github.com/arcadecheck/arcadecheck/internal/domain"
	"github.com/arcadecheck/arcadecheck/internal/repo/filestore"
)

var checkAll bool

var checkCmd = &cobra.Command{
	Use:   "check [source]",
	Short: "Run one check pass immediately",
	Long: `Run a single check for one source (by id), or for every configured
source with --all, without waiting for the schedule. The pass behaves
exactly like a scheduled one: the result is persisted and change
notifications are sent.`,
	Example: `  # Check a single source
  arcadecheck check mame

  # Check everything
  arcadecheck check --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "check every configured source")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if !checkAll && len(args) == 0 {
		return errors.New("name a source id or pass --all")
	}

	cfg, _, err := config.LoadOrDefault(config.Resolve(cfgPath))
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	events := checklog.New(cfg.CheckLog.Path)
	store := filestore.New(cfg.Storage.DataDir, cfg.Storage.LastCheckFile, cfg.VersionFiles())
	checkers := buildCheckers(cfg, buildFetcher(cfg), store, buildNotifier(cfg), logger, events)

	ctx := cmd.Context()

	if !checkAll {
		for _, c := range checkers {
			if string(c.Source.ID) != args[0] {
				continue
			}
			out, err := c.RunOnce(ctx)
			version := "unknown"
			if rec, _ := store.Get(ctx, c.Source.ID); rec != nil {
				version = rec.Version
			}
			switch {
			case err != nil:
				color.Red("✖ %s: check failed: %v", c.Source.Label, err)
				return err
			case out == domain.OutcomeUpdated:
				color.Green("✔ %s: new version %s recorded", c.Source.Label, version)
			default:
				fmt.Printf("✔ %s: version %s is current\n", c.Source.Label, version)
			}
			return nil
		}
		ids := make([]string, 0, len(checkers))
		for _, c := range checkers {
			ids = append(ids, string(c.Source.ID))
		}
		return fmt.Errorf("unknown source %q (configured: %s)", args[0], strings.Join(ids, ", "))
	}

	spin := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	spin.Suffix = " Checking release pages..."
	_ = spin.Color("yellow")
	spin.Start()

	type row struct {
		label   string
		version string
		outcome string
		failed  bool
	}
	rows := make([]row, 0, len(checkers))
	for _, c := range checkers {
		out, err := c.RunOnce(ctx)
		version := "unknown"
		if rec, _ := store.Get(ctx, c.Source.ID); rec != nil {
			version = rec.Version
		}
		r := row{label: c.Source.Label, version: version}
		switch {
		case err != nil:
			r.outcome = color.RedString("failed: %s", truncate(err.Error(), 60))
			r.failed = true
		case out == domain.OutcomeUpdated:
			r.outcome = color.GreenString("updated")
		default:
			r.outcome = "unchanged"
		}
		rows = append(rows, r)
	}
	spin.Stop()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Version", "Outcome"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.label, r.version, r.outcome})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	failures := 0
	for _, r := range rows {
		if r.failed {
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d checks failed", failures, len(rows))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
