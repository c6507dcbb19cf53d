package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcadecheck/arcadecheck/internal/config"
	"github.com/arcadecheck/arcadecheck/internal/fetch"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, data directory and source reachability",
	Long: `Verify the environment before running the service: config validity,
writable data and log directories, notifier configuration, and whether
every source page is reachable and its version can be extracted.
Unreachable pages produce warnings, not failures, so doctor can run
offline.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ok := func(msg string) { fmt.Println(color.GreenString("✔"), msg) }
	warn := func(msg string) { fmt.Println(color.YellowString("⚠"), msg) }
	bad := func(msg string) { fmt.Println(color.RedString("✖"), msg) }

	path := config.Resolve(cfgPath)
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		bad(fmt.Sprintf("config: %v", err))
		return fmt.Errorf("doctor found problems")
	}
	switch {
	case path == "":
		warn("no config file given; using built-in defaults")
	case !found:
		warn(fmt.Sprintf("config %s not found; using built-in defaults", path))
	default:
		ok(fmt.Sprintf("config %s loaded (%d sources)", path, len(cfg.Sources)))
	}

	failures := 0

	probe := filepath.Join(cfg.Storage.DataDir, ".doctor")
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		bad(fmt.Sprintf("data dir %s: %v", cfg.Storage.DataDir, err))
		failures++
	} else if err := os.WriteFile(probe, []byte("ok\n"), 0o644); err != nil {
		bad(fmt.Sprintf("data dir %s not writable: %v", cfg.Storage.DataDir, err))
		failures++
	} else {
		_ = os.Remove(probe)
		ok("data dir " + cfg.Storage.DataDir + " writable")
	}

	logDir := filepath.Dir(cfg.CheckLog.Path)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		bad(fmt.Sprintf("check log dir %s: %v", logDir, err))
		failures++
	} else {
		ok("check log dir " + logDir + " writable")
	}

	if buildNotifier(cfg) == nil {
		warn("no notifier configured; version changes will only be logged")
	} else {
		ok("notifier configured")
	}

	client := fetch.NewClient(10 * time.Second)
	for _, sc := range cfg.Sources {
		cctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		body, err := client.Get(cctx, sc.URL)
		cancel()
		if err != nil {
			warn(fmt.Sprintf("%s: fetch failed: %v", sc.ID, err))
			continue
		}
		if _, err := sc.Rule.Extract(body); err != nil {
			warn(fmt.Sprintf("%s: page fetched but version extraction failed: %v", sc.ID, err))
			continue
		}
		ok(fmt.Sprintf("%s: version extracted from %s", sc.ID, sc.URL))
	}

	if failures > 0 {
		return fmt.Errorf("doctor found %d problems", failures)
	}
	ok("doctor passed")
	return nil
}
