// Package history keeps write-once JSON snapshots of outlines, one file per
// snapshot, with a sqlite index for listing and search.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alucardeht/outliner/internal/apperr"
	"github.com/alucardeht/outliner/internal/logger"
	"github.com/alucardeht/outliner/internal/outline"
)

var log = logger.ForComponent("history")

const (
	idLayout        = "20060102T150405.000000000Z"
	indexFile       = "index.db"
	snapshotExt     = ".json"
	defaultCacheLen = 64
	maxCollisions   = 1000
)

var idPattern = regexp.MustCompile(`^\d{8}T\d{6}\.\d{9}Z(?:-\d+)?$`)

// ValidID reports whether id has the snapshot id form.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

type Store struct {
	dir   string
	index *index
	cache *lru.Cache[string, *Snapshot]
	now   func() time.Time
	mu    sync.Mutex
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCacheSize sets how many decoded snapshots Show keeps in memory.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			cache, err := lru.New[string, *Snapshot](n)
			if err == nil {
				s.cache = cache
			}
		}
	}
}

// Open prepares dir and its index. An empty index over existing snapshot
// files is rebuilt from them.
func Open(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperr.IO(fmt.Sprintf("failed to create history directory %s", dir), err)
	}

	idx, err := openIndex(filepath.Join(dir, indexFile))
	if err != nil {
		return nil, apperr.IO("failed to open history index", err)
	}

	cache, err := lru.New[string, *Snapshot](defaultCacheLen)
	if err != nil {
		idx.close()
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}

	s := &Store{dir: dir, index: idx, cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	n, err := idx.count()
	if err != nil {
		idx.close()
		return nil, apperr.IO("failed to read history index", err)
	}
	if n == 0 {
		if _, err := s.reindex(); err != nil {
			idx.close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes a new snapshot of o. Existing files are never overwritten: a
// colliding id gets a "-<n>" suffix.
func (s *Store) Save(o *outline.Outline) (*Snapshot, error) {
	if o == nil {
		return nil, apperr.Validation("cannot save an empty outline")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	savedAt := s.now().UTC()
	snap := &Snapshot{SavedAt: savedAt, Outline: o.Clone()}

	base := savedAt.Format(idLayout)
	var path string
	for n := 0; ; n++ {
		if n >= maxCollisions {
			return nil, apperr.IO("too many snapshots share one timestamp", fmt.Errorf("id %s", base))
		}
		id := base
		if n > 0 {
			id = base + "-" + strconv.Itoa(n)
		}
		snap.ID = id
		path = s.path(id)

		err := writeExclusive(path, snap)
		if err == nil {
			break
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return nil, apperr.IO(fmt.Sprintf("failed to write snapshot %s", id), err)
	}

	if err := s.index.insert(snap); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			log.Warn("failed to remove unindexed snapshot", "path", path, "error", rmErr)
		}
		return nil, apperr.IO("failed to index snapshot", err)
	}

	s.cache.Add(snap.ID, snap)
	log.Info("snapshot saved", "id", snap.ID, "title", o.Title)
	return cloneSnapshot(snap), nil
}

func writeExclusive(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// List returns index entries newest first.
func (s *Store) List(f Filter) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.index.list(f)
	if err != nil {
		return nil, apperr.IO("failed to list snapshots", err)
	}
	return entries, nil
}

// Show returns a copy of the snapshot; callers may modify it freely.
func (s *Store) Show(id string) (*Snapshot, error) {
	if !ValidID(id) {
		return nil, apperr.NotFound("snapshot %q not found", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.cache.Get(id); ok {
		return cloneSnapshot(snap), nil
	}

	snap, err := readSnapshot(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound("snapshot %s not found", id)
		}
		return nil, err
	}

	s.cache.Add(id, snap)
	return cloneSnapshot(snap), nil
}

// Delete removes a snapshot. It reports false, without error, when no such
// snapshot exists.
func (s *Store) Delete(id string) (bool, error) {
	if !ValidID(id) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Remove(id)

	fileRemoved := true
	if err := os.Remove(s.path(id)); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return false, apperr.IO(fmt.Sprintf("failed to delete snapshot %s", id), err)
		}
		fileRemoved = false
	}

	indexed, err := s.index.remove(id)
	if err != nil {
		return fileRemoved, apperr.IO(fmt.Sprintf("failed to remove snapshot %s from index", id), err)
	}

	deleted := fileRemoved || indexed
	if deleted {
		log.Info("snapshot deleted", "id", id)
	}
	return deleted, nil
}

// Search matches query against titles and serialized outline text.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.index.search(query, limit)
	if err != nil {
		return nil, apperr.IO("failed to search snapshots", err)
	}
	return results, nil
}

// Reindex rebuilds the index from the snapshot files and returns how many
// were indexed. Unreadable files are logged and skipped.
func (s *Store) Reindex() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reindex()
}

func (s *Store) reindex() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+snapshotExt))
	if err != nil {
		return 0, apperr.IO("failed to scan history directory", err)
	}
	sort.Strings(matches)

	var snaps []*Snapshot
	for _, path := range matches {
		id := strings.TrimSuffix(filepath.Base(path), snapshotExt)
		if !ValidID(id) {
			continue
		}
		snap, err := readSnapshot(path)
		if err != nil {
			log.Warn("skipping unreadable snapshot", "path", path, "error", err)
			continue
		}
		if snap.ID != id {
			log.Warn("snapshot id does not match file name; using file name", "path", path, "id", snap.ID)
			snap.ID = id
		}
		snaps = append(snaps, snap)
	}

	if err := s.index.replaceAll(snaps); err != nil {
		return 0, apperr.IO("failed to rebuild history index", err)
	}
	s.cache.Purge()

	if len(snaps) > 0 {
		log.Info("history index rebuilt", "snapshots", len(snaps))
	}
	return len(snaps), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.close()
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+snapshotExt)
}

func readSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, apperr.IO(fmt.Sprintf("failed to read snapshot %s", filepath.Base(path)), err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperr.Malformed("snapshot %s is not valid JSON: %v", filepath.Base(path), err)
	}
	if snap.Outline == nil {
		return nil, apperr.Malformed("snapshot %s has no outline", filepath.Base(path))
	}
	snap.SavedAt = snap.SavedAt.UTC()
	return &snap, nil
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	return &Snapshot{ID: s.ID, SavedAt: s.SavedAt, Outline: s.Outline.Clone()}
}

// idSequence extracts the collision counter from an id, 0 when absent.
func idSequence(id string) int {
	_, suffix, ok := strings.Cut(id, "Z-")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0
	}
	return n
}
