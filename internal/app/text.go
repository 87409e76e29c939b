package app

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// truncateToWidth cuts styled text to width cells, marking the cut with an
// ellipsis.
func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if xansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return xansi.Cut(text, 0, width-1) + "…"
}

func padToWidth(text string, width int) string {
	w := xansi.StringWidth(text)
	if w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}

// fitCell flattens plain cell text onto one line and fits it to exactly
// width cells.
func fitCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	text = runewidth.Truncate(text, width, "…")
	return runewidth.FillRight(text, width)
}

func padLines(lines []string, width int) string {
	if width <= 0 {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = padToWidth(line, width)
	}
	return strings.Join(out, "\n")
}

func indentBlock(block string, spaces int) string {
	if spaces <= 0 {
		return block
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(block, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// wrapText wraps plain text on word boundaries, hard-breaking words longer
// than width.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return xansi.Hardwrap(xansi.Wordwrap(text, width, ""), width, true)
}
