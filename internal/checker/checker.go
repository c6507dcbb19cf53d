// Package checker runs a single version check end to end: fetch the
// announcement page, extract the published version, compare it to the
// recorded one, then persist and notify on change.
package checker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arcadecheck/arcadecheck/internal/checklog"
	"github.com/arcadecheck/arcadecheck/internal/domain"
	"github.com/arcadecheck/arcadecheck/internal/extract"
	"github.com/arcadecheck/arcadecheck/internal/notify"
	"github.com/arcadecheck/arcadecheck/internal/repo"
)

type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Checker struct {
	Source   domain.Source
	Rule     extract.Rule
	Fetcher  Fetcher
	Versions repo.VersionStore
	Runs     repo.LastCheckStore
	Notifier notify.Notifier
	Logger   *zap.Logger
	Events   *checklog.Logger
}

// RunOnce performs one check pass. The lastcheck record is written
// before anything else so the dashboard reflects the attempt even when
// the check itself fails. Persist and notify errors are logged but do
// not change the outcome; fetch and extraction errors fail the run.
func (c *Checker) RunOnce(ctx context.Context) (domain.Outcome, error) {
	now := time.Now()
	if err := c.Runs.PutLastCheck(ctx, &domain.LastCheck{Timestamp: now, Label: c.Source.Label}); err != nil {
		c.Events.Logf(false, "%s: error writing lastcheck file: %v", c.Source.Label, err)
		c.Logger.Error("lastcheck_write_error", zap.String("source", string(c.Source.ID)), zap.Error(err))
	}

	body, err := c.Fetcher.Get(ctx, c.Source.URL)
	if err != nil {
		c.Events.Logf(false, "%s ERROR: failed to fetch source page: %v", c.Source.Label, err)
		return c.fail(ctx, err)
	}

	ex, err := c.Rule.Extract(body)
	if err != nil {
		c.Events.Logf(false, "%s ERROR: failed to extract version: %v", c.Source.Label, err)
		return c.fail(ctx, err)
	}

	prev, err := c.Versions.Get(ctx, c.Source.ID)
	if err != nil {
		c.Events.Logf(false, "%s: error reading local version file: %v", c.Source.Label, err)
		c.Logger.Error("version_read_error", zap.String("source", string(c.Source.ID)), zap.Error(err))
		prev = nil
	}

	if prev == nil {
		c.Events.Logf(false, "%s: no local version found; treating %s as new.", c.Source.Label, ex.Version)
	} else {
		c.Events.Logf(true, "%s: local version %s, published version %s", c.Source.Label, prev.Version, ex.Version)
		if prev.Version == ex.Version {
			c.Events.Logf(true, "%s: version %s is current", c.Source.Label, ex.Version)
			c.Logger.Debug("version_current",
				zap.String("source", string(c.Source.ID)),
				zap.String("version", ex.Version))
			return domain.OutcomeUnchanged, nil
		}
	}

	prevTxt := "none"
	if prev != nil {
		prevTxt = prev.Version
	}
	c.Events.Logf(true, "%s: new version detected. Local=%s, published=%s", c.Source.Label, prevTxt, ex.Version)
	c.Logger.Info("version_updated",
		zap.String("source", string(c.Source.ID)),
		zap.String("local", prevTxt),
		zap.String("published", ex.Version))

	if err := c.Versions.Put(ctx, c.Source.ID, &domain.VersionRecord{Version: ex.Version, RecordedAt: now}); err != nil {
		c.Events.Logf(false, "%s: error writing local version file: %v", c.Source.Label, err)
		c.Logger.Error("version_write_error", zap.String("source", string(c.Source.ID)), zap.Error(err))
	}

	if c.Source.NotifyOnUpdate && c.Notifier != nil {
		title := "New " + c.Source.Label + " Version"
		if err := c.Notifier.Send(ctx, title, updateMessage(c.Source, ex)); err != nil {
			c.Events.Logf(false, "%s: failed to send notification: %v", c.Source.Label, err)
			c.Logger.Error("notify_error", zap.String("source", string(c.Source.ID)), zap.Error(err))
		}
	}
	return domain.OutcomeUpdated, nil
}

func (c *Checker) fail(ctx context.Context, err error) (domain.Outcome, error) {
	c.Logger.Error("check_failed", zap.String("source", string(c.Source.ID)), zap.Error(err))
	if c.Source.NotifyOnError && c.Notifier != nil {
		title := c.Source.Label + " Check Error"
		if nerr := c.Notifier.Send(ctx, title, "Failed to check for new version: "+err.Error()); nerr != nil {
			c.Events.Logf(false, "%s: failed to send notification: %v", c.Source.Label, nerr)
			c.Logger.Error("notify_error", zap.String("source", string(c.Source.ID)), zap.Error(nerr))
		}
	}
	return domain.OutcomeFailed, err
}

// updateMessage builds the notification body, e.g.
// "New MAME update ROMs version 0.283 is available (from 0.282)."
func updateMessage(src domain.Source, ex extract.Extraction) string {
	msg := "New " + src.Label
	if src.Descriptor != "" {
		msg += " " + src.Descriptor
	}
	msg += " version " + ex.Version
	if ex.Beta {
		msg += " (beta)"
	}
	msg += " is available"
	if ex.From != "" {
		msg += " (from " + ex.From + ")"
	}
	return msg + "."
}
