// Package formatter renders operator-facing tables.
package formatter

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// columnGap separates adjacent columns.
const columnGap = 2

// Colorizer picks the color for a cell value; nil leaves it plain.
type Colorizer func(value string) *color.Color

// Table buffers rows and writes them aligned on Render. Colors are applied
// after padding so escape sequences never skew column widths.
type Table struct {
	w        io.Writer
	headers  []string
	rows     [][]string
	maxWidth map[int]int       // column index -> max width (0 = unlimited)
	colors   map[int]Colorizer // column index -> colorizer
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		w:        w,
		headers:  headers,
		maxWidth: make(map[int]int),
		colors:   make(map[int]Colorizer),
	}
}

// SetMaxWidth sets the maximum display width for a column (0-indexed).
// Values exceeding the limit are truncated with "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// SetColor colors a column's data cells. Headers stay plain.
func (t *Table) SetColor(col int, fn Colorizer) *Table {
	t.colors[col] = fn
	return t
}

// AddRow appends a data row. Extra values beyond the header count are ignored;
// missing values are filled with empty strings.
func (t *Table) AddRow(values ...string) {
	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(values) {
			cells[i] = t.truncate(i, values[i])
		}
	}
	t.rows = append(t.rows, cells)
}

// Len returns the number of data rows added so far.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the header, a separator and every row. A table without rows
// writes nothing.
func (t *Table) Render() error {
	if len(t.rows) == 0 {
		return nil
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	separators := make([]string, len(t.headers))
	for i, h := range t.headers {
		separators[i] = strings.Repeat("-", utf8.RuneCountInString(h))
	}

	if err := t.writeLine(t.headers, widths, false); err != nil {
		return err
	}
	if err := t.writeLine(separators, widths, false); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := t.writeLine(row, widths, true); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) writeLine(cells []string, widths []int, colored bool) error {
	var b strings.Builder
	last := len(cells) - 1
	for i, cell := range cells {
		text := cell
		if colored {
			if fn := t.colors[i]; fn != nil {
				if c := fn(cell); c != nil {
					text = c.Sprint(cell)
				}
			}
		}
		b.WriteString(text)
		if i < last {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)+columnGap))
		}
	}
	_, err := fmt.Fprintln(t.w, strings.TrimRight(b.String(), " "))
	return err
}

func (t *Table) truncate(col int, s string) string {
	limit, ok := t.maxWidth[col]
	if !ok || limit <= 0 || len(s) <= limit {
		return s
	}
	if limit <= 3 {
		return s[:limit]
	}
	return s[:limit-3] + "..."
}
