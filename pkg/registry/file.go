package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
)

// FileStore keeps one JSON file per handle in a directory. An flock on
// the directory's lock file serializes access across processes, so
// separate CLI invocations see the same handles.
type FileStore struct {
	mu   sync.Mutex
	dir  string
	lock *flock.Flock
}

// NewFileStore opens (creating if needed) a file store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create chart dir")
	}
	return &FileStore{dir: dir, lock: flock.New(filepath.Join(dir, ".lock"))}, nil
}

// Dir returns the directory holding the handle files.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(id uint64) string {
	return filepath.Join(s.dir, strconv.FormatUint(id, 10)+".json")
}

// locked runs fn holding both the in-process mutex and the file lock.
func (s *FileStore) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "lock chart dir")
	}
	defer s.lock.Unlock()
	return fn()
}

func (s *FileStore) read(id uint64) (*record, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, ErrChartNotFound()
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read chart %d", id)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parse chart %d", id)
	}
	return &rec, nil
}

func (s *FileStore) write(rec *record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "marshal chart %d", rec.ID)
	}
	return s.writeFile(s.path(rec.ID), data)
}

func (s *FileStore) writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", filepath.Base(path))
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", filepath.Base(path))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", filepath.Base(path))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", filepath.Base(path))
	}
	return nil
}

// nextID bumps the id counter kept in the seq file.
func (s *FileStore) nextID() (uint64, error) {
	path := filepath.Join(s.dir, "seq")
	var last uint64
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		last, err = strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeStore, err, "parse id counter")
		}
	case !os.IsNotExist(err):
		return 0, errors.Wrap(errors.ErrCodeStore, err, "read id counter")
	}
	id := last + 1
	if err := s.writeFile(path, []byte(strconv.FormatUint(id, 10))); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *FileStore) ids() ([]uint64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read chart dir")
	}
	var ids []uint64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *FileStore) Create(ctx context.Context, c *chart.Chart, now time.Time) (uint64, error) {
	var id uint64
	err := s.locked(func() error {
		var err error
		if id, err = s.nextID(); err != nil {
			return err
		}
		return s.write(&record{ID: id, AccessTime: now, Chart: c})
	})
	return id, err
}

func (s *FileStore) Update(ctx context.Context, id uint64, now time.Time, fn func(*chart.Chart) error) error {
	return s.locked(func() error {
		rec, err := s.read(id)
		if err != nil {
			return err
		}
		rec.AccessTime = now
		ferr := fn(rec.Chart)
		if err := s.write(rec); err != nil {
			return err
		}
		return ferr
	})
}

func (s *FileStore) Delete(ctx context.Context, id uint64) error {
	return s.locked(func() error {
		err := os.Remove(s.path(id))
		if os.IsNotExist(err) {
			return ErrChartNotFound()
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "remove chart %d", id)
		}
		return nil
	})
}

func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := s.locked(func() error {
		ids, err := s.ids()
		if err != nil {
			return err
		}
		for _, id := range ids {
			rec, err := s.read(id)
			if err != nil {
				continue
			}
			out = append(out, Entry{ID: rec.ID, AccessTime: rec.AccessTime})
		}
		return nil
	})
	return out, err
}

func (s *FileStore) Sweep(ctx context.Context, cutoff time.Time) ([]uint64, error) {
	var reclaimed []uint64
	err := s.locked(func() error {
		ids, err := s.ids()
		if err != nil {
			return err
		}
		for _, id := range ids {
			rec, err := s.read(id)
			if err != nil || !rec.AccessTime.Before(cutoff) {
				continue
			}
			if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
				return errors.Wrap(errors.ErrCodeStore, err, "remove chart %d", id)
			}
			reclaimed = append(reclaimed, id)
		}
		return nil
	})
	return reclaimed, err
}

// Close releases the lock file handle.
func (s *FileStore) Close() error {
	return s.lock.Close()
}

var _ Store = (*FileStore)(nil)
