package cli

import "errors"

var (
	// ErrPromptCancelled indicates that the user aborted an interactive prompt.
	ErrPromptCancelled = errors.New("prompt cancelled")
	// ErrNoSets is returned when the root has no set directories to choose from.
	ErrNoSets = errors.New("no configurations found")
)
