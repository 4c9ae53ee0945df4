// Package journal records an in-flight swap plan so an interrupted swap can
// be rolled back on the next run.
package journal

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OpenGG/modswap/internal/modswap/domain"
	"github.com/OpenGG/modswap/internal/modswap/storage"
)

const recordVersion = 1

// Move is a single planned relocation.
type Move struct {
	Phase       domain.Phase `yaml:"phase"`
	Source      string       `yaml:"source"`
	Destination string       `yaml:"destination"`
}

// Record is the persisted form of a swap plan.
type Record struct {
	Version   int       `yaml:"version"`
	From      string    `yaml:"from"`
	To        string    `yaml:"to"`
	Result    string    `yaml:"result"`
	StartedAt time.Time `yaml:"started_at"`
	Moves     []Move    `yaml:"moves"`
}

// Journal reads and writes the journal file.
type Journal struct {
	storage *storage.Storage
	path    string
}

// New creates a Journal at path.
func New(storage *storage.Storage, path string) *Journal {
	return &Journal{storage: storage, path: path}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Begin persists rec before any of its moves run.
func (j *Journal) Begin(rec Record) error {
	rec.Version = recordVersion
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	if err := j.storage.WriteFileAtomic(j.path, data); err != nil {
		return domain.IOFailure(domain.PhasePersist, j.path, fmt.Errorf("write journal: %w", err))
	}
	return nil
}

// Pending reports whether a journal is present.
func (j *Journal) Pending() (bool, error) {
	exists, err := j.storage.Exists(j.path)
	if err != nil {
		return false, domain.IOFailure(domain.PhaseLoad, j.path, err)
	}
	return exists, nil
}

// Read loads the pending record. ok is false when no journal exists.
func (j *Journal) Read() (rec Record, ok bool, err error) {
	data, err := j.storage.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, domain.IOFailure(domain.PhaseLoad, j.path, err)
	}
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("%s: %w: %v", j.path, domain.ErrStoreCorrupt, err)
	}
	if rec.Version != recordVersion {
		return Record{}, false, fmt.Errorf("%s: %w: unsupported journal version %d", j.path, domain.ErrStoreCorrupt, rec.Version)
	}
	return rec, true, nil
}

// Commit removes the journal once the plan has fully run or been undone.
func (j *Journal) Commit() error {
	if err := j.storage.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.IOFailure(domain.PhasePersist, j.path, fmt.Errorf("remove journal: %w", err))
	}
	return nil
}
