package validator

import (
	"strings"
	"unicode"

	"github.com/OpenGG/modswap/internal/modswap/domain"
)

// Validator checks that set names are usable as a single directory element
// directly under the root.
type Validator struct{}

// New creates a new Validator instance.
func New() *Validator {
	return &Validator{}
}

// ValidateName validates a set name.
//
// Set names are directory names on disk, so the name is checked as-is and is
// never trimmed. The function rejects:
//   - Empty or whitespace-only names
//   - Dot navigation (. or ..)
//   - Null bytes
//   - Control characters
//   - Path separators (/ or \)
//
// Returns (true, nil) if valid, or (false, error) with a descriptive error.
func (v *Validator) ValidateName(name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, domain.ErrSetNameEmpty
	}
	if name == "." || name == ".." {
		return false, domain.ErrSetNameDot
	}
	if strings.ContainsRune(name, 0) {
		return false, domain.ErrSetNameNullByte
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false, domain.ErrSetNameNonPrintable
		}
	}
	if strings.ContainsAny(name, `/\`) {
		return false, domain.ErrSetNameSeparator
	}
	return true, nil
}

// ValidatePointer accepts the empty pointer in addition to any valid set name.
func (v *Validator) ValidatePointer(pointer string) error {
	if pointer == "" {
		return nil
	}
	_, err := v.ValidateName(pointer)
	return err
}
