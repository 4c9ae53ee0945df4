package pointer

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/OpenGG/modswap/internal/modswap/domain"
	"github.com/OpenGG/modswap/internal/modswap/storage"
)

const testPointerPath = "/mods/configs.json"

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/mods", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return New(storage.New(fs), testPointerPath, nil), fs
}

func TestLoadCreatesMissingFile(t *testing.T) {
	store, fs := newTestStore(t)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty pointer, got %q", got)
	}

	data, err := afero.ReadFile(fs, testPointerPath)
	if err != nil {
		t.Fatalf("pointer file should exist: %v", err)
	}
	if string(data) != "{\"active\":\"\"}\n" {
		t.Fatalf("unexpected pointer file content %q", string(data))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	values := []string{"", "vanilla", "1.20 modded", "ünïcödé", `quote"name`, ".hidden"}
	for _, value := range values {
		t.Run(value, func(t *testing.T) {
			store, fs := newTestStore(t)
			if err := store.Save(value); err != nil {
				t.Fatalf("Save(%q): %v", value, err)
			}

			// A fresh Store stands in for a fresh process.
			fresh := New(storage.New(fs), testPointerPath, nil)
			got, err := fresh.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != value {
				t.Fatalf("round trip = %q, want %q", got, value)
			}
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	for _, value := range []string{"vanilla", "hardcore", ""} {
		if err := store.Save(value); err != nil {
			t.Fatalf("Save(%q): %v", value, err)
		}
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "" {
		t.Fatalf("expected last saved value, got %q", got)
	}
}

func TestSaveRejectsPathLikePointer(t *testing.T) {
	store, fs := newTestStore(t)
	if err := store.Save("../escape"); !errors.Is(err, domain.ErrSetNameSeparator) {
		t.Fatalf("expected separator error, got %v", err)
	}
	if exists, _ := afero.Exists(fs, testPointerPath); exists {
		t.Fatal("rejected pointer must not be written")
	}
}

func TestLoadAcceptsZeroByteFile(t *testing.T) {
	store, fs := newTestStore(t)
	if err := afero.WriteFile(fs, testPointerPath, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty pointer, got %q", got)
	}
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"raw name", "vanilla"},
		{"truncated", `{"active":"van`},
		{"json string", `"vanilla"`},
		{"null", "null"},
		{"missing field", `{"current":"vanilla"}`},
		{"wrong type", `{"active":3}`},
		{"trailing record", `{"active":"a"}{"active":"b"}`},
		{"path value", `{"active":"a/b"}`},
		{"dot value", `{"active":".."}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, fs := newTestStore(t)
			if err := afero.WriteFile(fs, testPointerPath, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := store.Load()
			if !errors.Is(err, domain.ErrStoreCorrupt) {
				t.Fatalf("expected ErrStoreCorrupt, got %v", err)
			}
			data, _ := afero.ReadFile(fs, testPointerPath)
			if string(data) != tt.content {
				t.Fatalf("corrupt file must be left as-is, got %q", string(data))
			}
		})
	}
}

func TestSaveFailureIsTaggedPersist(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := base.MkdirAll("/mods", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	store := New(storage.New(afero.NewReadOnlyFs(base)), testPointerPath, nil)

	err := store.Save("vanilla")
	if !errors.Is(err, domain.ErrIOFailure) {
		t.Fatalf("expected ErrIOFailure, got %v", err)
	}
	var relErr *domain.RelocationError
	if !errors.As(err, &relErr) {
		t.Fatalf("expected RelocationError, got %T", err)
	}
	if relErr.Phase != domain.PhasePersist || relErr.Path != testPointerPath {
		t.Fatalf("unexpected phase/path %s %s", relErr.Phase, relErr.Path)
	}
}
