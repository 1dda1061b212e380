package runner

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether r is a terminal. Pipes and files are not.
func IsInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
