package checker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arcadecheck/arcadecheck/internal/checklog"
	"github.com/arcadecheck/arcadecheck/internal/domain"
	"github.com/arcadecheck/arcadecheck/internal/extract"
	"github.com/arcadecheck/arcadecheck/internal/notify"
	"github.com/arcadecheck/arcadecheck/internal/repo/memory"
)

const updateROMsPage = `<html><body><ul>
<li><a href="#">MAME - Update ROMs (v0.282 to v0.283)</a></li>
</ul></body></html>`

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

type sentMessage struct {
	title string
	text  string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, title, text string) error {
	f.sent = append(f.sent, sentMessage{title, text})
	return f.err
}

func newTestChecker(f Fetcher, n notify.Notifier, events *checklog.Logger) (*Checker, *memory.Store) {
	st := memory.New()
	return &Checker{
		Source: domain.Source{
			ID:             "mame",
			Label:          "MAME",
			URL:            "https://example.com/whatsnew",
			Descriptor:     "update ROMs",
			NotifyOnUpdate: true,
			NotifyOnError:  true,
		},
		Rule: extract.Rule{
			Kind:      extract.KindText,
			Pattern:   `(?i)MAME\s*-\s*Update ROMs\s*\(v([0-9.]+)\s+to\s+v([0-9.]+)\)`,
			Group:     2,
			FromGroup: 1,
		},
		Fetcher:  f,
		Versions: st,
		Runs:     st,
		Notifier: n,
		Logger:   zap.NewNop(),
		Events:   events,
	}, st
}

func TestChecker_UnchangedVersion(t *testing.T) {
	ctx := context.Background()
	n := &fakeNotifier{}
	c, st := newTestChecker(&fakeFetcher{body: []byte(updateROMsPage)}, n, nil)

	seeded := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	if err := st.Put(ctx, "mame", &domain.VersionRecord{Version: "0.283", RecordedAt: seeded}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := c.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if out != domain.OutcomeUnchanged {
		t.Fatalf("want unchanged, got %s", out)
	}
	if len(n.sent) != 0 {
		t.Fatalf("no notification expected, got %d", len(n.sent))
	}

	rec, _ := st.Get(ctx, "mame")
	if !rec.RecordedAt.Equal(seeded) {
		t.Fatalf("record must not be rewritten on unchanged, got %v", rec.RecordedAt)
	}
	lc, _ := st.GetLastCheck(ctx)
	if lc == nil || lc.Label != "MAME" {
		t.Fatalf("lastcheck should record the pass, got %+v", lc)
	}
}

func TestChecker_NewVersionDetected(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	n := &fakeNotifier{}
	c, st := newTestChecker(&fakeFetcher{body: []byte(updateROMsPage)}, n, checklog.NewWriter(&buf))

	if err := st.Put(ctx, "mame", &domain.VersionRecord{Version: "0.282", RecordedAt: time.Now()}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := c.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if out != domain.OutcomeUpdated {
		t.Fatalf("want updated, got %s", out)
	}

	rec, _ := st.Get(ctx, "mame")
	if rec == nil || rec.Version != "0.283" {
		t.Fatalf("new version not persisted, got %+v", rec)
	}
	if len(n.sent) != 1 {
		t.Fatalf("want exactly one notification, got %d", len(n.sent))
	}
	if n.sent[0].title != "New MAME Version" {
		t.Fatalf("unexpected title %q", n.sent[0].title)
	}
	want := "New MAME update ROMs version 0.283 is available (from 0.282)."
	if n.sent[0].text != want {
		t.Fatalf("unexpected message:\nwant %q\ngot  %q", want, n.sent[0].text)
	}
	if !strings.Contains(buf.String(), "new version detected. Local=0.282, published=0.283") {
		t.Fatalf("event log missing detection line:\n%s", buf.String())
	}
}

func TestChecker_FirstRunTreatsAsNew(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	n := &fakeNotifier{}
	c, st := newTestChecker(&fakeFetcher{body: []byte(updateROMsPage)}, n, checklog.NewWriter(&buf))

	out, err := c.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if out != domain.OutcomeUpdated {
		t.Fatalf("want updated on first run, got %s", out)
	}
	rec, _ := st.Get(ctx, "mame")
	if rec == nil || rec.Version != "0.283" {
		t.Fatalf("version not persisted on first run, got %+v", rec)
	}
	if len(n.sent) != 1 {
		t.Fatalf("want one notification on first run, got %d", len(n.sent))
	}
	if !strings.Contains(buf.String(), "no local version found; treating 0.283 as new.") {
		t.Fatalf("event log missing first-run line:\n%s", buf.String())
	}
}

func TestChecker_FetchFailure(t *testing.T) {
	ctx := context.Background()
	n := &fakeNotifier{}
	c, st := newTestChecker(&fakeFetcher{err: errors.New("connection refused")}, n, nil)

	out, err := c.RunOnce(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	if out != domain.OutcomeFailed {
		t.Fatalf("want failed, got %s", out)
	}

	// The cache stays untouched but the pass itself is still recorded.
	if rec, _ := st.Get(ctx, "mame"); rec != nil {
		t.Fatalf("cache must stay untouched on fetch failure, got %+v", rec)
	}
	lc, _ := st.GetLastCheck(ctx)
	if lc == nil {
		t.Fatal("lastcheck must be written before the fetch")
	}

	if len(n.sent) != 1 {
		t.Fatalf("want one error notification, got %d", len(n.sent))
	}
	if n.sent[0].title != "MAME Check Error" {
		t.Fatalf("unexpected title %q", n.sent[0].title)
	}
	if !strings.Contains(n.sent[0].text, "connection refused") {
		t.Fatalf("error message missing cause: %q", n.sent[0].text)
	}
}

func TestChecker_ExtractFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	c, st := newTestChecker(&fakeFetcher{body: []byte("<html><body>maintenance page</body></html>")}, &fakeNotifier{}, nil)

	if err := st.Put(ctx, "mame", &domain.VersionRecord{Version: "0.282", RecordedAt: time.Now()}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := c.RunOnce(ctx)
	if !errors.Is(err, extract.ErrNoMatch) {
		t.Fatalf("want ErrNoMatch, got %v", err)
	}
	if out != domain.OutcomeFailed {
		t.Fatalf("want failed, got %s", out)
	}
	rec, _ := st.Get(ctx, "mame")
	if rec == nil || rec.Version != "0.282" {
		t.Fatalf("cache must keep the old version, got %+v", rec)
	}
}

func TestChecker_NotifyOnUpdateDisabled(t *testing.T) {
	ctx := context.Background()
	n := &fakeNotifier{}
	c, st := newTestChecker(&fakeFetcher{body: []byte(updateROMsPage)}, n, nil)
	c.Source.NotifyOnUpdate = false

	out, err := c.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if out != domain.OutcomeUpdated {
		t.Fatalf("want updated, got %s", out)
	}
	if len(n.sent) != 0 {
		t.Fatalf("notifications disabled, got %d", len(n.sent))
	}
	if rec, _ := st.Get(ctx, "mame"); rec == nil {
		t.Fatal("version must still be persisted")
	}
}

func TestChecker_NotifierFailureDoesNotFailRun(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	n := &fakeNotifier{err: errors.New("pushover down")}
	c, _ := newTestChecker(&fakeFetcher{body: []byte(updateROMsPage)}, n, checklog.NewWriter(&buf))

	out, err := c.RunOnce(ctx)
	if err != nil {
		t.Fatalf("notify failure must not fail the run: %v", err)
	}
	if out != domain.OutcomeUpdated {
		t.Fatalf("want updated, got %s", out)
	}
	if !strings.Contains(buf.String(), "failed to send notification") {
		t.Fatalf("event log missing notify failure:\n%s", buf.String())
	}
}

func TestChecker_NilNotifier(t *testing.T) {
	ctx := context.Background()
	c, st := newTestChecker(&fakeFetcher{body: []byte(updateROMsPage)}, nil, nil)

	out, err := c.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if out != domain.OutcomeUpdated {
		t.Fatalf("want updated, got %s", out)
	}
	if rec, _ := st.Get(ctx, "mame"); rec == nil || rec.Version != "0.283" {
		t.Fatalf("version not persisted, got %+v", rec)
	}
}

func TestUpdateMessage(t *testing.T) {
	cases := []struct {
		name string
		src  domain.Source
		ex   extract.Extraction
		want string
	}{
		{
			name: "with descriptor and from",
			src:  domain.Source{Label: "MAME", Descriptor: "update ROMs"},
			ex:   extract.Extraction{Version: "0.283", From: "0.282"},
			want: "New MAME update ROMs version 0.283 is available (from 0.282).",
		},
		{
			name: "plain",
			src:  domain.Source{Label: "LEDBlinky"},
			ex:   extract.Extraction{Version: "7.3.0"},
			want: "New LEDBlinky version 7.3.0 is available.",
		},
		{
			name: "beta",
			src:  domain.Source{Label: "LaunchBox"},
			ex:   extract.Extraction{Version: "13.10", Beta: true},
			want: "New LaunchBox version 13.10 (beta) is available.",
		},
		{
			name: "stable descriptor",
			src:  domain.Source{Label: "RetroArch", Descriptor: "stable"},
			ex:   extract.Extraction{Version: "1.19.1"},
			want: "New RetroArch stable version 1.19.1 is available.",
		},
	}
	for _, tc := range cases {
		if got := updateMessage(tc.src, tc.ex); got != tc.want {
			t.Fatalf("%s:\nwant %q\ngot  %q", tc.name, tc.want, got)
		}
	}
}
