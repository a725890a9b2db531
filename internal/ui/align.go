package ui

import (
	"github.com/avlev/pgtop/internal/model"
	"github.com/avlev/pgtop/internal/query"
)

// align advances the console's snapshot pair with the freshly fetched
// table and returns the diffed, sorted table to render. A nil result
// marks a skip tick: the baseline was refreshed (first iteration after a
// view change, or the row set grew) and no render happens.
//
// When the row count shrinks a positional diff is still produced, same
// as the original behaviour; dropped objects may mis-pair for one tick.
func align(c *Console, curr *model.Table) *model.Table {
	if c.FirstIter {
		c.Prev = curr
		c.PrevRows = curr.NRows()
		c.FirstIter = false
		return nil
	}

	if curr.NRows() > c.PrevRows {
		c.Prev = curr
		c.PrevRows = curr.NRows()
		return nil
	}

	v := query.Get(c.CurrentView)
	res := model.Diff(c.Prev, curr, v.DiffMin, v.DiffMax)
	if v.Sortable() && !v.ServerSort {
		st := c.Sort[c.CurrentView]
		res.SortInPlace(st.OrderKey, st.OrderDesc)
	}

	c.Prev = curr
	c.PrevRows = curr.NRows()
	return res
}
