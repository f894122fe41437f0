package dokd

import "errors"

var (
	// ErrNoWorkspace is returned when a command runs with no workspace open.
	// Commands treat it as a no-op.
	ErrNoWorkspace = errors.New("no workspace folder is open")

	// ErrPromptCancelled is returned when the user dismisses a prompt.
	ErrPromptCancelled = errors.New("prompt cancelled")
)
