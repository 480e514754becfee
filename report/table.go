// Package report renders fingerprints, catalog entries and history as text
// tables for the command line.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SimpleTable writes ASCII tables. Columns whose cells are all numbers are
// right-aligned.
type SimpleTable struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a new table writer
func NewTable(w io.Writer) *SimpleTable {
	return &SimpleTable{
		writer: w,
		rows:   make([][]string, 0),
	}
}

// Header sets the table headers
func (t *SimpleTable) Header(headers ...string) {
	t.headers = headers
}

// Row adds a single row
func (t *SimpleTable) Row(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Bulk adds multiple rows
func (t *SimpleTable) Bulk(rows [][]string) {
	t.rows = append(t.rows, rows...)
}

// Render outputs the formatted table
func (t *SimpleTable) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.widths()
	numeric := t.numericColumns(len(widths))
	separator := separatorLine(widths)

	fmt.Fprintln(t.writer, separator)

	if len(t.headers) > 0 {
		fmt.Fprintln(t.writer, formatRow(t.headers, widths, nil))
		fmt.Fprintln(t.writer, separator)
	}

	for _, row := range t.rows {
		fmt.Fprintln(t.writer, formatRow(row, widths, numeric))
	}

	fmt.Fprintln(t.writer, separator)
}

func (t *SimpleTable) widths() []int {
	numCols := len(t.headers)
	for _, row := range t.rows {
		numCols = max(numCols, len(row))
	}

	widths := make([]int, numCols)
	for i := range widths {
		widths[i] = 1
	}
	for i, h := range t.headers {
		widths[i] = max(widths[i], utf8.RuneCountInString(h))
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	return widths
}

func (t *SimpleTable) numericColumns(numCols int) []bool {
	numeric := make([]bool, numCols)
	if len(t.rows) == 0 {
		return numeric
	}
	for i := range numeric {
		numeric[i] = true
		for _, row := range t.rows {
			if i >= len(row) {
				continue
			}
			if _, err := strconv.ParseFloat(row[i], 64); err != nil {
				numeric[i] = false
				break
			}
		}
	}
	return numeric
}

func separatorLine(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func formatRow(row []string, widths []int, numeric []bool) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		pad := strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		if numeric != nil && numeric[i] {
			parts[i] = " " + pad + cell + " "
		} else {
			parts[i] = " " + cell + pad + " "
		}
	}
	return "|" + strings.Join(parts, "|") + "|"
}
