// Package filestore persists state as small plain-text files: one
// two-line version file per source plus the shared lastcheck file. The
// files stay trivially greppable and editable by hand.
package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arcadecheck/arcadecheck/internal/domain"
)

type Store struct {
	mu            sync.Mutex
	dataDir       string
	lastCheckFile string
	files         map[domain.SourceID]string
}

// New returns a store rooted at dataDir. files maps source ids to
// version file names; unmapped sources fall back to "<id>.ver".
func New(dataDir, lastCheckFile string, files map[domain.SourceID]string) *Store {
	if lastCheckFile == "" {
		lastCheckFile = "lastcheck"
	}
	return &Store{
		dataDir:       dataDir,
		lastCheckFile: lastCheckFile,
		files:         files,
	}
}

func (s *Store) versionPath(id domain.SourceID) string {
	name := s.files[id]
	if name == "" {
		name = string(id) + ".ver"
	}
	return filepath.Join(s.dataDir, name)
}

// Get reads a version file:
//
//	line 0: version string
//	line 1: date in domain.DateLayout
//
// A missing file or an empty first line means no recorded version.
// A malformed date leaves RecordedAt zero rather than failing the read.
func (s *Store) Get(ctx context.Context, id domain.SourceID) (*domain.VersionRecord, error) {
	data, err := os.ReadFile(s.versionPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	version := strings.TrimSpace(lines[0])
	if version == "" {
		return nil, nil
	}

	rec := &domain.VersionRecord{Version: version}
	if len(lines) > 1 {
		if ts, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(lines[1]), time.Local); err == nil {
			rec.RecordedAt = ts
		}
	}
	return rec, nil
}

func (s *Store) Put(ctx context.Context, id domain.SourceID, rec *domain.VersionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	content := rec.Version + "\n" + rec.RecordedAt.Format(domain.DateLayout) + "\n"
	return os.WriteFile(s.versionPath(id), []byte(content), 0o644)
}

// GetLastCheck reads the shared lastcheck file:
//
//	line 0: timestamp in domain.TimestampLayout
//	line 1: label of the checker that ran
//
// Missing or incomplete files mean no recorded run.
func (s *Store) GetLastCheck(ctx context.Context) (*domain.LastCheck, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, s.lastCheckFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		return nil, nil
	}
	tsStr := strings.TrimSpace(lines[0])
	label := strings.TrimSpace(lines[1])
	if tsStr == "" || label == "" {
		return nil, nil
	}
	ts, err := time.ParseInLocation(domain.TimestampLayout, tsStr, time.Local)
	if err != nil {
		return nil, nil
	}
	return &domain.LastCheck{Timestamp: ts, Label: label}, nil
}

func (s *Store) PutLastCheck(ctx context.Context, lc *domain.LastCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	content := lc.Timestamp.Format(domain.TimestampLayout) + "\n" + lc.Label + "\n"
	return os.WriteFile(filepath.Join(s.dataDir, s.lastCheckFile), []byte(content), 0o644)
}
