// Package snapshot caches scenario reports on disk.
//
// Entries are msgpack files named after a digest of everything that can
// change a report: the scenario source, the rule source, the recursion
// budget and the tool version. A stale entry is never found because its
// key no longer matches; DropAll clears the directory.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"convres/internal/scenario"
)

// schemaVersion changes whenever the entry layout changes.
const schemaVersion uint16 = 1

// Store is a directory of cached reports. It is safe for concurrent use;
// a nil *Store caches nothing.
type Store struct {
	mu  sync.RWMutex
	dir string
}

type entry struct {
	Schema uint16
	Key    string
	Report *scenario.Report
}

// DefaultDir is $XDG_CACHE_HOME/app, falling back to ~/.cache/app.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Key derives the cache key of one scenario run.
func Key(scenarioSrc, rulesSrc []byte, maxDepth int, version string) Digest {
	return Combine(
		Sum(scenarioSrc),
		Sum(rulesSrc),
		Sum([]byte(strconv.Itoa(maxDepth))),
		Sum([]byte(version)),
	)
}

func (s *Store) pathFor(key Digest) string {
	return filepath.Join(s.dir, "reports", key.String()+".mp")
}

// Put writes rep under key, replacing any previous entry atomically.
func (s *Store) Put(key Digest, rep *scenario.Report) (err error) {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(entry{Schema: schemaVersion, Key: key.String(), Report: rep}); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get returns the report stored under key. Entries written by another
// schema version or for another key read as misses.
func (s *Store) Get(key Digest) (*scenario.Report, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	if e.Schema != schemaVersion || e.Key != key.String() || e.Report == nil {
		return nil, false, nil
	}
	return e.Report, true, nil
}

// DropAll removes every entry.
func (s *Store) DropAll() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(s.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
