// Package pointer persists the name of the active set.
package pointer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/OpenGG/modswap/internal/logging"
	"github.com/OpenGG/modswap/internal/modswap/domain"
	"github.com/OpenGG/modswap/internal/modswap/storage"
	"github.com/OpenGG/modswap/internal/modswap/validator"
)

// record is the on-disk shape of the pointer file.
type record struct {
	Active *string `json:"active"`
}

// Store reads and writes the active pointer file.
type Store struct {
	storage   *storage.Storage
	validator *validator.Validator
	path      string
	logger    *slog.Logger
}

// New creates a Store backed by the file at path.
func New(storage *storage.Storage, path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		storage:   storage,
		validator: validator.New(),
		path:      path,
		logger:    logger,
	}
}

// Path returns the pointer file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted pointer. A missing file is created with the
// empty pointer. Content that is not a pointer record wraps
// domain.ErrStoreCorrupt; the value is never guessed.
func (s *Store) Load() (string, error) {
	data, err := s.storage.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("pointer file missing, creating empty pointer", "path", s.path)
			if err := s.Save(""); err != nil {
				return "", err
			}
			return "", nil
		}
		return "", domain.IOFailure(domain.PhaseLoad, s.path, fmt.Errorf("read pointer: %w", err))
	}
	return s.decode(data)
}

// Save durably replaces the pointer file content with pointer.
func (s *Store) Save(pointer string) error {
	if err := s.validator.ValidatePointer(pointer); err != nil {
		return fmt.Errorf("invalid pointer %q: %w", pointer, err)
	}
	data, err := json.Marshal(record{Active: &pointer})
	if err != nil {
		return fmt.Errorf("encode pointer: %w", err)
	}
	data = append(data, '\n')
	if err := s.storage.WriteFileAtomic(s.path, data); err != nil {
		return domain.IOFailure(domain.PhasePersist, s.path, fmt.Errorf("write pointer: %w", err))
	}
	s.logger.Debug("pointer saved", "path", s.path, "active", pointer)
	return nil
}

func (s *Store) decode(data []byte) (string, error) {
	// A zero-byte file is how older tools recorded "no set active".
	if len(bytes.TrimSpace(data)) == 0 {
		return "", nil
	}

	var rec record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return "", fmt.Errorf("%s: %w: %v", s.path, domain.ErrStoreCorrupt, err)
	}
	if dec.More() {
		return "", fmt.Errorf("%s: %w: trailing data", s.path, domain.ErrStoreCorrupt)
	}
	if rec.Active == nil {
		return "", fmt.Errorf("%s: %w: missing \"active\" field", s.path, domain.ErrStoreCorrupt)
	}
	if err := s.validator.ValidatePointer(*rec.Active); err != nil {
		return "", fmt.Errorf("%s: %w: %v", s.path, domain.ErrStoreCorrupt, err)
	}
	return *rec.Active, nil
}
