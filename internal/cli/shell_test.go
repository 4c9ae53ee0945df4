package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestShellSwapsAndPersistsOnExit(t *testing.T) {
	prompter := &stubPrompter{prompts: lines("", "swap 2", "swap 1", "exit")}
	a, buf := withSets(t, prompter)

	if err := newShell(a).run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Current configuration: none",
		"Commands:",
		"\t(1) hardcore\n",
		"\t(2) vanilla\n",
		"Current configuration: vanilla",
		"Current configuration: hardcore",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("missing %q in output: %s", want, output)
		}
	}
	assertExists(t, a, "h1.jar", true)
	assertExists(t, a, "vanilla/v1.jar", true)

	current, err := a.mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if current != "hardcore" {
		t.Fatalf("expected persisted hardcore, got %q", current)
	}
}

func TestShellArgumentErrors(t *testing.T) {
	prompter := &stubPrompter{prompts: lines("swap", "swap 1 2", "swap one", "swap 7", "dance", "exit")}
	a, buf := withSets(t, prompter)

	if err := newShell(a).run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	output := buf.String()
	if strings.Count(output, "There needs to be two arguments!") != 2 {
		t.Fatalf("expected two argument count errors: %s", output)
	}
	for _, want := range []string{
		"First argument: This is not a number",
		"There is no configuration (7)",
		"Unknown command: dance",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("missing %q in output: %s", want, output)
		}
	}
	assertExists(t, a, "v1.jar", false)
	assertExists(t, a, "h1.jar", false)
}

func TestShellSavesOnCancel(t *testing.T) {
	prompter := &stubPrompter{prompts: queue[string]{items: []answer[string]{
		{value: "swap 2"},
		{err: ErrPromptCancelled},
	}}}
	a, _ := withSets(t, prompter)

	if err := newShell(a).run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := afero.ReadFile(a.fs, a.mgr.PointerPath())
	if err != nil {
		t.Fatalf("read pointer: %v", err)
	}
	if strings.TrimSpace(string(data)) != `{"active":"vanilla"}` {
		t.Fatalf("unexpected pointer file %q", string(data))
	}
}

func TestShellStatusAndRecover(t *testing.T) {
	prompter := &stubPrompter{prompts: lines("recover", "status", "exit")}
	a, buf := withSets(t, prompter)
	interruptSwap(t, a)

	if err := newShell(a).run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	output := buf.String()
	if strings.Contains(output, "No interrupted swap to recover.") {
		t.Fatalf("journal should have been replayed: %s", output)
	}
	if !strings.Contains(output, "Loose payloads: 0") {
		t.Fatalf("unexpected status: %s", output)
	}
	assertExists(t, a, "vanilla/v1.jar", true)
}

func TestShellPropagatesPrompterFailure(t *testing.T) {
	a, _ := withSets(t, &stubPrompter{})
	err := newShell(a).run()
	if !errors.Is(err, errStubNoMore) {
		t.Fatalf("expected stub error, got %v", err)
	}
	if exists, _ := afero.Exists(a.fs, a.mgr.PointerPath()); !exists {
		t.Fatal("pointer should still be saved")
	}
}
