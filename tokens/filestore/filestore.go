// Package filestore persists session tokens in a JSON file so they survive
// between CLI invocations.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-course-portal/tokens"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ tokens.Store = (*Store)(nil)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// Store is a tokens.Store backed by a single JSON object on disk.
// The file is re-read on every Get so separate processes observe each other's writes.
type Store struct {
	path string
	lock sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the backing file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(name string) (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		log.Err(err).Str("path", s.path).Msg("Error reading token file")
		return "", false
	}
	v, ok := values[name]
	return v, ok
}

func (s *Store) Set(name, value string) {
	s.update(func(values map[string]string) {
		values[name] = value
	})
}

func (s *Store) Clear(name string) {
	s.update(func(values map[string]string) {
		delete(values, name)
	})
}

func (s *Store) update(fn func(map[string]string)) {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		log.Err(err).Str("path", s.path).Msg("Discarding unreadable token file")
		values = map[string]string{}
	}
	fn(values)
	if err := s.save(values); err != nil {
		log.Err(err).Str("path", s.path).Msg("Error writing token file")
	}
}

func (s *Store) load() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	return values, nil
}

// save writes to a temporary file in the same directory and renames it over
// the original so a crash never leaves a half written file behind.
func (s *Store) save(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Wrap(err, "create token directory")
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode")
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "chmod temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "rename temp file")
}
