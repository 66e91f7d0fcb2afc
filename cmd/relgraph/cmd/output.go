package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// maxCellWidth truncates long entity names in text tables.
const maxCellWidth = 40

var (
	headerStyle = color.New(color.FgCyan, color.OpBold)
	centerStyle = color.New(color.FgYellow, color.OpBold)
	okStyle     = color.New(color.FgGreen)
	failStyle   = color.New(color.FgRed)
)

func fprintf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// printHeader prints a formatted header
func printHeader(w io.Writer, format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := runewidth.StringWidth(title) + 4
	fprintf(w, "%s\n", strings.Repeat("=", width))
	fprintf(w, "  %s\n", headerStyle.Sprint(title))
	fprintf(w, "%s\n", strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(w io.Writer, title string) {
	fprintf(w, "[%s]\n", headerStyle.Sprint(title))
	fprintf(w, "%s\n", strings.Repeat("-", runewidth.StringWidth(title)+2))
}

func printCheck(w io.Writer, ok bool, format string, args ...interface{}) {
	mark := okStyle.Sprint("✅")
	if !ok {
		mark = failStyle.Sprint("❌")
	}
	fprintf(w, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

// table aligns columns by display width, so wide runes in entity names keep
// the columns straight.
type table struct {
	header []string
	rows   [][]string
	// highlight marks rows printed in the center style.
	highlight map[int]bool
}

func newTable(header ...string) *table {
	return &table{header: header, highlight: make(map[int]bool)}
}

func (t *table) add(cells ...string) {
	for i, c := range cells {
		cells[i] = runewidth.Truncate(c, maxCellWidth, "…")
	}
	t.rows = append(t.rows, cells)
}

func (t *table) addHighlighted(cells ...string) {
	t.highlight[len(t.rows)] = true
	t.add(cells...)
}

func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(c))
			}
		}
	}

	line := func(cells []string) string {
		padded := make([]string, len(cells))
		for i, c := range cells {
			if i == len(cells)-1 {
				padded[i] = c
				continue
			}
			padded[i] = runewidth.FillRight(c, widths[i])
		}
		return "  " + strings.Join(padded, "  ")
	}

	fprintf(w, "%s\n", headerStyle.Sprint(line(t.header)))
	for i, row := range t.rows {
		text := line(row)
		if t.highlight[i] {
			text = centerStyle.Sprint(text)
		}
		fprintf(w, "%s\n", text)
	}
}
