package app

import (
	"testing"

	"go.uber.org/zap"

	"github.com/arcadecheck/arcadecheck/internal/config"
	"github.com/arcadecheck/arcadecheck/internal/fetch"
	"github.com/arcadecheck/arcadecheck/internal/repo/filestore"
)

func TestCommandRegistration(t *testing.T) {
	for _, name := range []string{"serve", "check", "doctor"} {
		found := false
		for _, cmd := range RootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s command not registered with root command", name)
		}
	}
}

func TestCheckCommand_AllFlag(t *testing.T) {
	flag := checkCmd.Flags().Lookup("all")
	if flag == nil {
		t.Fatal("all flag not defined")
	}
	if flag.DefValue != "false" {
		t.Errorf("all flag default: got %s, want false", flag.DefValue)
	}
}

func TestBuildNotifier(t *testing.T) {
	cfg := config.NewDefault()
	if n := buildNotifier(cfg); n != nil {
		t.Fatalf("no credentials configured, want nil notifier, got %T", n)
	}

	cfg.Pushover.Token = "app-token"
	cfg.Pushover.User = "user-key"
	if n := buildNotifier(cfg); n == nil {
		t.Fatal("pushover configured, want notifier")
	}

	cfg.Pushover.Enabled = false
	if n := buildNotifier(cfg); n != nil {
		t.Fatalf("pushover disabled, want nil notifier, got %T", n)
	}

	cfg.Slack.Webhook = "https://hooks.slack.com/services/T/B/X"
	if n := buildNotifier(cfg); n == nil {
		t.Fatal("slack configured, want notifier")
	}
}

func TestBuildCheckers(t *testing.T) {
	cfg := config.NewDefault()
	store := filestore.New(t.TempDir(), "lastcheck", nil)
	cs := buildCheckers(cfg, fetch.NewClient(0), store, nil, zap.NewNop(), nil)

	if len(cs) != len(cfg.Sources) {
		t.Fatalf("want %d checkers, got %d", len(cfg.Sources), len(cs))
	}
	for i, c := range cs {
		if string(c.Source.ID) != cfg.Sources[i].ID {
			t.Fatalf("checker %d: want source %s, got %s", i, cfg.Sources[i].ID, c.Source.ID)
		}
		if c.Versions == nil || c.Runs == nil || c.Fetcher == nil {
			t.Fatalf("checker %d not fully wired: %+v", i, c)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 60); got != "short" {
		t.Fatalf("short strings pass through, got %q", got)
	}
	long := "this error message is much too long to fit inside a table cell without wrapping"
	got := truncate(long, 20)
	if len(got) != 20 || got[17:] != "..." {
		t.Fatalf("want 20 chars ending in ..., got %q (len %d)", got, len(got))
	}
}
