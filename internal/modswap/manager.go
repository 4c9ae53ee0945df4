// Package modswap wires the pointer store, catalog, inventory and swap engine
// for one managed root directory.
package modswap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/OpenGG/modswap/internal/logging"
	"github.com/OpenGG/modswap/internal/modswap/catalog"
	"github.com/OpenGG/modswap/internal/modswap/domain"
	"github.com/OpenGG/modswap/internal/modswap/engine"
	"github.com/OpenGG/modswap/internal/modswap/inventory"
	"github.com/OpenGG/modswap/internal/modswap/journal"
	"github.com/OpenGG/modswap/internal/modswap/paths"
	"github.com/OpenGG/modswap/internal/modswap/pointer"
	"github.com/OpenGG/modswap/internal/modswap/storage"
)

// Options selects the root and file naming for a Manager.
type Options struct {
	Root        string
	Extension   string
	PointerFile string
}

// Manager coordinates swaps for one root directory.
type Manager struct {
	fs        afero.Fs
	paths     *paths.PathBuilder
	storage   *storage.Storage
	store     *pointer.Store
	catalog   *catalog.Catalog
	inventory *inventory.Inventory
	journal   *journal.Journal
	engine    *engine.Engine
	logger    *slog.Logger
}

// NewManager creates a Manager. A nil logger discards log output.
func NewManager(fs afero.Fs, opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	ext := opts.Extension
	if ext == "" {
		ext = paths.DefaultExtension
	}

	pb := paths.New(opts.Root, opts.PointerFile)
	st := storage.New(fs)
	inv := inventory.New(st, ext)
	cat := catalog.New(st, pb.Root())
	jr := journal.New(st, pb.JournalPath())
	store := pointer.New(st, pb.PointerPath(), logger.With("component", "pointer"))

	return &Manager{
		fs:        fs,
		paths:     pb,
		storage:   st,
		store:     store,
		catalog:   cat,
		inventory: inv,
		journal:   jr,
		engine:    engine.New(st, pb, inv, cat, jr, store, logger.With("component", "engine")),
		logger:    logger,
	}
}

// FileSystem returns the underlying filesystem.
func (m *Manager) FileSystem() afero.Fs {
	return m.fs
}

// Root returns the managed root directory.
func (m *Manager) Root() string {
	return m.paths.Root()
}

// PointerPath returns the path of the persisted pointer file.
func (m *Manager) PointerPath() string {
	return m.paths.PointerPath()
}

// JournalPath returns the path of the swap journal.
func (m *Manager) JournalPath() string {
	return m.paths.JournalPath()
}

// CheckRoot verifies that the root exists and is a directory.
func (m *Manager) CheckRoot() error {
	ok, err := m.storage.IsDir(m.Root())
	if err != nil {
		return domain.IOFailure(domain.PhasePlan, m.Root(), err)
	}
	if !ok {
		return fmt.Errorf("mods root %s is not a directory", m.Root())
	}
	return nil
}

// Load reads the persisted pointer, creating an empty one on first run.
func (m *Manager) Load() (string, error) {
	return m.store.Load()
}

// Save persists pointer.
func (m *Manager) Save(pointer string) error {
	return m.store.Save(pointer)
}

// Sets lists the available sets in menu order.
func (m *Manager) Sets() ([]string, error) {
	return m.catalog.List()
}

// Resolve turns a 1-based menu index or a set name into a set name.
func (m *Manager) Resolve(arg string) (string, error) {
	return m.catalog.Resolve(arg)
}

// Swap moves the files and saves the new pointer as one journaled step. On
// error current is returned and the pointer file still names it.
func (m *Manager) Swap(current, target string) (string, error) {
	return m.engine.Swap(current, target)
}

// Deactivate parks the active set. It is a no-op when nothing is active.
func (m *Manager) Deactivate(current string) (string, error) {
	if current == "" {
		return "", nil
	}
	return m.Swap(current, current)
}

// PendingSwap returns the journaled swap awaiting recovery, if any.
func (m *Manager) PendingSwap() (journal.Record, bool, error) {
	return m.journal.Read()
}

// Recover replays a pending journal; the engine saves the restored pointer.
// When no journal is pending, current is returned unchanged.
func (m *Manager) Recover(current string) (string, bool, error) {
	restored, ok, err := m.engine.Recover()
	if err != nil || !ok {
		return current, false, err
	}
	return restored, true, nil
}

// SetStatus describes one set in the catalog.
type SetStatus struct {
	Name     string
	Payloads int
	Active   bool
}

// Status is the state of the root as found on disk.
type Status struct {
	Pointer        string
	PointerValid   bool
	Loose          []string
	Sets           []SetStatus
	JournalPending bool
	Problems       []string
}

// Consistent reports whether the disk matches the pointer as far as can be
// told without knowing which set each loose file came from.
func (s Status) Consistent() bool {
	return len(s.Problems) == 0
}

// Status inspects the root for the given pointer.
func (m *Manager) Status(current string) (Status, error) {
	st := Status{Pointer: current, PointerValid: current == ""}

	pending, err := m.journal.Pending()
	if err != nil {
		return st, err
	}
	st.JournalPending = pending

	loose, err := m.engine.LoosePayloads()
	if err != nil {
		return st, err
	}
	st.Loose = loose

	names, err := m.catalog.List()
	if err != nil {
		return st, err
	}
	for _, name := range names {
		files, err := m.inventory.ListPayloads(m.paths.SetDir(name))
		if err != nil {
			return st, err
		}
		active := name == current
		if active {
			st.PointerValid = true
			if len(files) > 0 {
				st.Problems = append(st.Problems, fmt.Sprintf("active set %q still has %d parked payload file(s)", name, len(files)))
			}
		}
		st.Sets = append(st.Sets, SetStatus{Name: name, Payloads: len(files), Active: active})
	}

	if st.JournalPending {
		st.Problems = append(st.Problems, "an interrupted swap is pending; run 'modswap recover'")
	}
	if !st.PointerValid {
		st.Problems = append(st.Problems, fmt.Sprintf("active set %q does not exist", current))
	}
	if current == "" && len(loose) > 0 {
		st.Problems = append(st.Problems, fmt.Sprintf("%d payload file(s) are loose in the root but no set is active", len(loose)))
	}
	return st, nil
}

// IsCorrupt reports whether err came from an unreadable pointer or journal.
func IsCorrupt(err error) bool {
	return errors.Is(err, domain.ErrStoreCorrupt)
}
