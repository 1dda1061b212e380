package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Sentinel ASCII banner and version to w.
// Colors degrade to plain text when w is not a color-capable terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	// Phosphor greens fading to cyan
	lines := []struct {
		text, color string
	}{
		{"  ____             _   _            _ ", "#22c55e"},
		{" / ___|  ___ _ __ | |_(_)_ __   ___| |", "#10b981"},
		{" \\___ \\ / _ \\ '_ \\| __| | '_ \\ / _ \\ |", "#14b8a6"},
		{"  ___) |  __/ | | | |_| | | | |  __/ |", "#06b6d4"},
		{" |____/ \\___|_| |_|\\__|_|_| |_|\\___|_|", "#0ea5e9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
