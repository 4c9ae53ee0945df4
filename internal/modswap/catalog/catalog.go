// Package catalog enumerates the sets stored under the managed root.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenGG/modswap/internal/modswap/domain"
	"github.com/OpenGG/modswap/internal/modswap/storage"
)

// Catalog lists the immediate subdirectories of a root as set names.
type Catalog struct {
	storage *storage.Storage
	root    string
}

// New creates a Catalog for root.
func New(storage *storage.Storage, root string) *Catalog {
	return &Catalog{storage: storage, root: root}
}

// List returns every immediate subdirectory of the root, sorted by name.
//
// Only real directories are returned; files and symlinks are skipped. The
// order is lexicographic so a menu index keeps pointing at the same name for
// as long as the root is not changed from outside.
func (c *Catalog) List() ([]string, error) {
	entries, err := c.storage.ReadDir(c.root)
	if err != nil {
		return nil, domain.IOFailure(domain.PhasePlan, c.root, fmt.Errorf("list sets: %w", err))
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Contains reports whether name is a set in the current listing.
func (c *Catalog) Contains(name string) (bool, error) {
	names, err := c.List()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Resolve translates a 1-based menu index or an exact set name into a set
// name from a fresh listing. Unknown names and out-of-range indices wrap
// domain.ErrInvalidTarget.
func (c *Catalog) Resolve(arg string) (string, error) {
	names, err := c.List()
	if err != nil {
		return "", err
	}
	return ResolveIn(names, arg)
}

// ResolveIn is Resolve against a listing the caller already holds.
func ResolveIn(names []string, arg string) (string, error) {
	for _, n := range names {
		if n == arg {
			return n, nil
		}
	}
	trimmed := strings.TrimSpace(arg)
	if index, err := strconv.Atoi(trimmed); err == nil {
		if index < 1 || index > len(names) {
			return "", fmt.Errorf("index %d out of range 1..%d: %w", index, len(names), domain.ErrInvalidTarget)
		}
		return names[index-1], nil
	}
	return "", fmt.Errorf("%q: %w", arg, domain.ErrInvalidTarget)
}
