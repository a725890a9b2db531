package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the single-character command set.
type KeyMap struct {
	Databases     key.Binding
	Replication   key.Binding
	UserTables    key.Binding
	UserIndexes   key.Binding
	StatioTables  key.Binding
	TableSizes    key.Binding
	LongActivity  key.Binding
	UserFunctions key.Binding

	SortRight key.Binding
	SortLeft  key.Binding
	MinAge    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Databases:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "pg_stat_database")),
		Replication:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "pg_stat_replication")),
		UserTables:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "pg_stat_user_tables")),
		UserIndexes:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "pg_stat_user_indexes")),
		StatioTables:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "pg_statio_user_tables")),
		TableSizes:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "relations sizes")),
		LongActivity:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "long transactions")),
		UserFunctions: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "pg_stat_user_functions")),

		SortRight: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next sort column")),
		SortLeft:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous sort column")),
		MinAge:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "change min age")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
