// Package inventory lists payload files directly inside a directory.
package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenGG/modswap/internal/modswap/domain"
	"github.com/OpenGG/modswap/internal/modswap/storage"
)

// Inventory matches payload files by their extension marker.
type Inventory struct {
	storage   *storage.Storage
	extension string
}

// New creates an Inventory for files ending in extension, e.g. ".jar".
// Matching is case-insensitive.
func New(storage *storage.Storage, extension string) *Inventory {
	return &Inventory{storage: storage, extension: strings.ToLower(extension)}
}

// ListPayloads returns the base names of the regular payload files directly
// inside dir, sorted. Subdirectories, symlinks and other files are skipped.
func (i *Inventory) ListPayloads(dir string) ([]string, error) {
	entries, err := i.storage.ReadDir(dir)
	if err != nil {
		return nil, domain.IOFailure(domain.PhasePlan, dir, fmt.Errorf("list payloads: %w", err))
	}
	var names []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if i.Matches(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Matches reports whether name carries the payload extension marker.
func (i *Inventory) Matches(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, i.extension) && len(lower) > len(i.extension)
}
