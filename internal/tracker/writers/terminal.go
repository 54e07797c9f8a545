package writers

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// isTerminal checks if the writer is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// supportsColors checks if the terminal supports colors.
func supportsColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
