package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxRunSuffix = 1000

// Store persists artifacts. Save returns the location Load accepts.
type Store interface {
	Save(ctx context.Context, a *Artifact) (string, error)
	Load(ctx context.Context, location string) (*Artifact, error)
}

// DirStore keeps each run in its own timestamped directory under Root.
type DirStore struct {
	Root string
}

// Save writes the run and returns its directory. An artifact without
// metadata is written without the metadata document.
func (s DirStore) Save(_ context.Context, a *Artifact) (string, error) {
	stamp := time.Now()
	if a.Metadata != nil {
		stamp = a.Metadata.BackupDate
	}
	dir, err := s.runDir(stamp)
	if err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, DataFile), a.Data); err != nil {
		return "", err
	}
	if a.Metadata == nil {
		return dir, nil
	}
	if err := writeJSON(filepath.Join(dir, MetadataFile), a.Metadata); err != nil {
		return "", err
	}
	return dir, nil
}

// runDir creates a fresh directory for one run. Runs never share a
// directory, so a name already taken gets a numeric suffix.
func (s DirStore) runDir(stamp time.Time) (string, error) {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return "", fmt.Errorf("backup: create %s: %w", s.Root, err)
	}
	base := filepath.Join(s.Root, "backup-"+strings.Replace(stamp.UTC().Format("20060102T150405.000Z"), ".", "", 1))
	dir := base
	for n := 2; ; n++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) || n > maxRunSuffix {
			return "", fmt.Errorf("backup: create %s: %w", dir, err)
		}
		dir = fmt.Sprintf("%s-%d", base, n)
	}
}

// Load reads a run directory. A missing data document is ErrDataMissing; a
// missing metadata document leaves Metadata nil.
func (s DirStore) Load(_ context.Context, dir string) (*Artifact, error) {
	a := &Artifact{}
	if err := readJSON(filepath.Join(dir, DataFile), &a.Data); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataMissing, dir)
		}
		return nil, err
	}

	var meta Metadata
	switch err := readJSON(filepath.Join(dir, MetadataFile), &meta); {
	case err == nil:
		a.Metadata = &meta
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}
	return a, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("backup: write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("backup: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
