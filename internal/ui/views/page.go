package views

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"lazypager/internal/domain"
)

// Renderer turns items into fixed-size pages
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer(styles *Styles) *Renderer {
	if styles == nil {
		styles = NewStyles()
	}
	return &Renderer{styles: styles}
}

// Styles returns the styles used by the renderer
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Page renders item as exactly height lines of exactly width cells. Zoom
// magnifies the body by whole cells.
func (r *Renderer) Page(item domain.Item, zoom float64, faded bool, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	header := fmt.Sprintf("%s  %s  %s", item.Name, HumanSize(item.Size), item.ModTime.Format("2006-01-02 15:04"))
	if zoom > 1 {
		header += fmt.Sprintf("  %.1fx", zoom)
	}
	lines := []string{r.styles.Header.Render(Truncate(header, width)), ""}

	switch {
	case item.Binary:
		lines = append(lines, r.styles.Binary.Render("binary file, press o to open it"))
	case len(item.Preview) == 0:
		lines = append(lines, r.styles.Empty.Render("empty file"))
	default:
		lines = append(lines, Magnify(item.Preview, zoom)...)
	}

	style := r.styles.Page
	if faded {
		style = r.styles.PageFaded
	}
	out := make([]string, height)
	for i := range out {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		out[i] = style.Render(Fit(line, width))
	}
	return out
}

// Blank renders an empty page
func (r *Renderer) Blank(width, height int) []string {
	out := make([]string, max(height, 0))
	for i := range out {
		out[i] = strings.Repeat(" ", max(width, 0))
	}
	return out
}

// Magnify repeats every cell and line by the whole part of zoom
func Magnify(lines []string, zoom float64) []string {
	factor := int(math.Floor(zoom))
	if factor <= 1 {
		return lines
	}
	out := make([]string, 0, len(lines)*factor)
	for _, line := range lines {
		var b strings.Builder
		for _, r := range line {
			for i := 0; i < factor; i++ {
				b.WriteRune(r)
			}
		}
		for i := 0; i < factor; i++ {
			out = append(out, b.String())
		}
	}
	return out
}

// Fit truncates or pads line to exactly width cells
func Fit(line string, width int) string {
	line = ansi.Truncate(line, width, "")
	if pad := width - ansi.StringWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

// HumanSize formats a byte count
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Truncate cuts line to width cells, marking the cut with an ellipsis
func Truncate(line string, width int) string {
	return ansi.Truncate(line, width, "…")
}
