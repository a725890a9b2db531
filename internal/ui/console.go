package ui

import (
	"context"
	"fmt"

	"github.com/avlev/pgtop/internal/db"
	"github.com/avlev/pgtop/internal/model"
	"github.com/avlev/pgtop/internal/query"
)

// MaxConsoles is the fixed upper bound of simultaneous connections.
const MaxConsoles = 8

// DefaultMinAge is the initial long-activity threshold.
const DefaultMinAge = "00:00:00"

// DataSource is the slice of the database layer the refresh engine needs.
type DataSource interface {
	Query(ctx context.Context, sql string) (*model.Table, error)
	Activity(ctx context.Context) (model.ActivityCounters, error)
}

// SortState is the per-(console, view) sort selection.
type SortState struct {
	OrderKey  int
	OrderDesc bool
}

// Console is one connection's worth of state: active view, per-view sort
// settings, the long-activity threshold and the baseline snapshot the
// diff pipeline subtracts from.
type Console struct {
	ID       int
	ConnUsed bool
	Cfg      db.Config
	DB       DataSource

	CurrentView query.ViewID
	Sort        map[query.ViewID]*SortState
	MinAge      string

	Prev      *model.Table
	PrevRows  int
	FirstIter bool
}

// NewConsole builds a console with default view and sort state.
func NewConsole(id int) *Console {
	c := &Console{
		ID:          id,
		CurrentView: query.ViewDatabases,
		Sort:        make(map[query.ViewID]*SortState, len(query.Registry)),
		MinAge:      DefaultMinAge,
		FirstIter:   true,
	}
	for vid, v := range query.Registry {
		c.Sort[vid] = &SortState{OrderKey: v.SortMin, OrderDesc: true}
	}
	return c
}

// SetView switches the active view. The baseline belongs to the old view,
// so the next tick rebases.
func (c *Console) SetView(id query.ViewID) {
	c.CurrentView = id
	c.FirstIter = true
}

// StepSort moves the sort column one step right or left, wrapping inside
// the view's sortable range. Server-side sorted views need the query
// re-run and the baseline refreshed, so they also rebase.
func (c *Console) StepSort(right bool) {
	v := query.Get(c.CurrentView)
	if !v.Sortable() {
		return
	}
	st := c.Sort[c.CurrentView]
	if right {
		if st.OrderKey+1 > v.SortMax {
			st.OrderKey = v.SortMin
		} else {
			st.OrderKey++
		}
	} else {
		if st.OrderKey-1 < v.SortMin {
			st.OrderKey = v.SortMax
		} else {
			st.OrderKey--
		}
	}
	if v.ServerSort {
		c.FirstIter = true
	}
}

// SetMinAge validates and applies a new long-activity threshold. The old
// value is kept when the input does not parse.
func (c *Console) SetMinAge(age string) error {
	if err := ValidateMinAge(age); err != nil {
		return err
	}
	c.MinAge = age
	c.FirstIter = true
	return nil
}

// ValidateMinAge checks the HH:MM:SS[.NN] threshold format.
func ValidateMinAge(age string) error {
	var hour, min, sec int
	n, err := fmt.Sscanf(age, "%d:%d:%d", &hour, &min, &sec)
	if err != nil || n != 3 {
		return fmt.Errorf("invalid min age %q", age)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return fmt.Errorf("min age %q out of range", age)
	}
	return nil
}

// BuildQuery produces the active view's final query text.
func (c *Console) BuildQuery() string {
	return query.Build(c.CurrentView, c.MinAge, c.Sort[c.CurrentView].OrderKey)
}
