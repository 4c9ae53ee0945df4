package paths

import "path/filepath"

// File name constants for the managed root directory.
const (
	PointerFileName  = "configs.json"
	JournalFileName  = ".modswap-journal.yaml"
	DefaultExtension = ".jar"
)

// PathBuilder provides methods to construct paths relative to the managed root.
type PathBuilder struct {
	root        string
	pointerFile string
}

// New creates a new PathBuilder for the given root directory.
// An empty pointerFile selects PointerFileName.
func New(root, pointerFile string) *PathBuilder {
	if pointerFile == "" {
		pointerFile = PointerFileName
	}
	return &PathBuilder{root: filepath.Clean(root), pointerFile: pointerFile}
}

// Root returns the managed root directory.
func (p *PathBuilder) Root() string {
	return p.root
}

// PointerPath returns the path to the persisted active pointer.
func (p *PathBuilder) PointerPath() string {
	return filepath.Join(p.root, p.pointerFile)
}

// JournalPath returns the path of the in-flight swap journal.
func (p *PathBuilder) JournalPath() string {
	return filepath.Join(p.root, JournalFileName)
}

// SetDir returns the directory a named set is parked in.
func (p *PathBuilder) SetDir(name string) string {
	return filepath.Join(p.root, name)
}

// ActivePath returns the path of a payload file loose in the root.
func (p *PathBuilder) ActivePath(file string) string {
	return filepath.Join(p.root, file)
}

// ParkedPath returns the path of a payload file inside a set directory.
func (p *PathBuilder) ParkedPath(set, file string) string {
	return filepath.Join(p.root, set, file)
}

// Reserved reports whether a root entry belongs to modswap itself and must
// never be treated as a payload.
func (p *PathBuilder) Reserved(name string) bool {
	return name == p.pointerFile || name == JournalFileName
}
