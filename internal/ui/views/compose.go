package views

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Compose cuts a width x height viewport out of two consecutive pages.
// offset is how far into first the viewport starts, in columns when paging
// horizontally and in rows when paging vertically. A nil second page shows
// as blank space.
func Compose(vertical bool, first, second []string, offset, width, height int) []string {
	extent := width
	if vertical {
		extent = height
	}
	offset = min(max(offset, 0), extent)

	out := make([]string, height)
	if vertical {
		for row := range out {
			src, i := first, row+offset
			if i >= height {
				src, i = second, i-height
			}
			out[row] = lineAt(src, i, width)
		}
		return out
	}

	for row := range out {
		left := ansi.Cut(lineAt(first, row, width), offset, width)
		var right string
		if offset > 0 {
			right = ansi.Cut(lineAt(second, row, width), 0, offset)
		}
		out[row] = left + right
	}
	return out
}

func lineAt(page []string, row, width int) string {
	if row < 0 || row >= len(page) {
		return strings.Repeat(" ", width)
	}
	return page[row]
}
