package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the startup banner centred for the current terminal.
// The last line of banner.txt is treated as the tagline and rendered in a
// muted style below the art.
func RenderBanner() string {
	lines := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")
	if len(lines) == 0 {
		return ""
	}

	art := lines
	tagline := ""
	if len(lines) > 1 {
		art = lines[:len(lines)-1]
		tagline = strings.TrimSpace(lines[len(lines)-1])
	}

	maxW := 0
	for _, l := range art {
		if len(l) > maxW {
			maxW = len(l)
		}
	}

	width := termWidth()
	indent := ""
	if width > maxW {
		indent = strings.Repeat(" ", (width-maxW)/2)
	}

	var b strings.Builder
	for _, l := range art {
		b.WriteString(indent)
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	if tagline != "" {
		pad := 0
		if width > len(tagline) {
			pad = (width - len(tagline)) / 2
		}
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(noteStyle.Render(tagline))
		b.WriteByte('\n')
	}
	return b.String()
}

func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
