package model

import (
	"sort"
	"strconv"
)

// Table is a rectangular snapshot of a statistics query: column names plus
// text cells. It is the unit the refresh pipeline diffs, sorts and renders.
type Table struct {
	Columns []string
	Cells   [][]string
}

// FromRows materialises a Table from column names and a cell accessor.
func FromRows(rows, cols int, columns []string, cellAt func(r, c int) string) *Table {
	t := &Table{
		Columns: make([]string, cols),
		Cells:   make([][]string, rows),
	}
	copy(t.Columns, columns)
	for r := 0; r < rows; r++ {
		t.Cells[r] = make([]string, cols)
		for c := 0; c < cols; c++ {
			t.Cells[r][c] = cellAt(r, c)
		}
	}
	return t
}

// NRows returns the number of data rows.
func (t *Table) NRows() int {
	return len(t.Cells)
}

// NCols returns the number of columns.
func (t *Table) NCols() int {
	return len(t.Columns)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: make([]string, len(t.Columns)),
		Cells:   make([][]string, len(t.Cells)),
	}
	copy(c.Columns, t.Columns)
	for i, row := range t.Cells {
		c.Cells[i] = make([]string, len(row))
		copy(c.Cells[i], row)
	}
	return c
}

// cellInt parses a cell as a signed 64-bit integer. Unparseable cells count
// as zero so a stray NULL or text value never aborts a refresh.
func cellInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Diff builds a new table from two same-shape snapshots of one view.
// Columns inside [diffMin, diffMax] become curr-prev deltas; everything
// else is copied from curr. An empty range (diffMin > diffMax, or -1)
// yields a plain copy of curr.
func Diff(prev, curr *Table, diffMin, diffMax int) *Table {
	res := curr.Clone()
	if diffMin < 0 || diffMax < 0 || diffMin > diffMax {
		return res
	}
	for r := range res.Cells {
		for c := diffMin; c <= diffMax && c < len(res.Cells[r]); c++ {
			var base int64
			if r < len(prev.Cells) && c < len(prev.Cells[r]) {
				base = cellInt(prev.Cells[r][c])
			}
			res.Cells[r][c] = strconv.FormatInt(cellInt(curr.Cells[r][c])-base, 10)
		}
	}
	return res
}

// SortInPlace orders rows by a numeric parse of the cells in column
// orderKey. Rows move as a whole. Ties keep their original relative order.
// An orderKey of -1 marks an unsortable view and leaves the table as is.
func (t *Table) SortInPlace(orderKey int, desc bool) {
	if orderKey < 0 || orderKey >= t.NCols() {
		return
	}
	sort.SliceStable(t.Cells, func(i, j int) bool {
		a := cellInt(t.Cells[i][orderKey])
		b := cellInt(t.Cells[j][orderKey])
		if desc {
			return a > b
		}
		return a < b
	})
}

// ColumnWidths returns, per column, the max of the header length and the
// longest cell, plus two for padding.
func (t *Table) ColumnWidths() []int {
	widths := make([]int, len(t.Columns))
	for c, name := range t.Columns {
		w := len(name)
		for r := range t.Cells {
			if l := len(t.Cells[r][c]); l > w {
				w = l
			}
		}
		widths[c] = w + 2
	}
	return widths
}
