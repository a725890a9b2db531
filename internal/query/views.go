package query

import "fmt"

// ViewID identifies one statistics view.
type ViewID int

const (
	ViewDatabases ViewID = iota
	ViewReplication
	ViewUserTables
	ViewUserIndexes
	ViewStatioUserTables
	ViewTableSizes
	ViewLongActivity
	ViewUserFunctions
)

// InvalidOrderKey marks views that cannot be sorted client-side.
const InvalidOrderKey = -1

// String returns the catalog name shown in status messages.
func (v ViewID) String() string {
	switch v {
	case ViewDatabases:
		return "pg_stat_database"
	case ViewReplication:
		return "pg_stat_replication"
	case ViewUserTables:
		return "pg_stat_user_tables"
	case ViewUserIndexes:
		return "pg_stat_user_indexes"
	case ViewStatioUserTables:
		return "pg_statio_user_tables"
	case ViewTableSizes:
		return "relations sizes"
	case ViewLongActivity:
		return "long transactions"
	case ViewUserFunctions:
		return "pg_stat_user_functions"
	default:
		return fmt.Sprintf("ViewID(%d)", int(v))
	}
}

// Slug returns a short stable identifier, used as a key in JSON output.
func (v ViewID) Slug() string {
	switch v {
	case ViewDatabases:
		return "databases"
	case ViewReplication:
		return "replication"
	case ViewUserTables:
		return "user_tables"
	case ViewUserIndexes:
		return "user_indexes"
	case ViewStatioUserTables:
		return "statio_user_tables"
	case ViewTableSizes:
		return "tables_size"
	case ViewLongActivity:
		return "activity"
	case ViewUserFunctions:
		return "functions"
	default:
		return "unknown"
	}
}

// View describes one entry of the catalog: the query template and the
// column ranges that drive sorting and delta computation.
type View struct {
	ID       ViewID
	Query    string
	SortMin  int // inclusive sortable column range; -1/-1 when unsortable
	SortMax  int
	DiffMin  int // inclusive range of columns rendered as deltas
	DiffMax  int
	ServerSort bool // sort column is injected into the query's ORDER BY
}

// Sortable reports whether the view can be sorted client-side.
func (v View) Sortable() bool {
	return v.SortMin != InvalidOrderKey && v.SortMax != InvalidOrderKey
}

const (
	databasesQuery = "SELECT datname, numbackends AS backends, " +
		"xact_commit AS commits, xact_rollback AS rollbacks, " +
		"blks_read AS reads, blks_hit AS hits, " +
		"tup_returned AS returned, tup_fetched AS fetched, " +
		"tup_inserted AS inserts, tup_updated AS updates, tup_deleted AS deletes, " +
		"conflicts FROM pg_stat_database ORDER BY datname"

	replicationQuery = "SELECT pid, client_addr AS client, usename AS \"user\", " +
		"application_name AS name, state, " +
		"(pg_current_wal_lsn() - sent_lsn)::bigint AS pending, " +
		"(sent_lsn - write_lsn)::bigint AS write, " +
		"(write_lsn - flush_lsn)::bigint AS flush, " +
		"(flush_lsn - replay_lsn)::bigint AS replay " +
		"FROM pg_stat_replication ORDER BY pid"

	userTablesQuery = "SELECT relname, seq_scan, seq_tup_read, " +
		"coalesce(idx_scan, 0) AS idx_scan, coalesce(idx_tup_fetch, 0) AS idx_tup_fetch, " +
		"n_tup_ins AS inserts, n_tup_upd AS updates, n_tup_del AS deletes, " +
		"n_tup_hot_upd AS hot_updates, n_live_tup AS live, n_dead_tup AS dead " +
		"FROM pg_stat_user_tables ORDER BY relname"

	userIndexesQuery = "SELECT s.relname AS table, s.indexrelname AS index, " +
		"s.idx_scan, s.idx_tup_read, s.idx_tup_fetch, " +
		"i.idx_blks_read, i.idx_blks_hit " +
		"FROM pg_stat_user_indexes s JOIN pg_statio_user_indexes i " +
		"USING (relid, indexrelid) ORDER BY s.relname, s.indexrelname"

	statioUserTablesQuery = "SELECT relname, heap_blks_read, heap_blks_hit, " +
		"coalesce(idx_blks_read, 0) AS idx_blks_read, coalesce(idx_blks_hit, 0) AS idx_blks_hit, " +
		"coalesce(toast_blks_read, 0) AS toast_blks_read, coalesce(toast_blks_hit, 0) AS toast_blks_hit, " +
		"coalesce(tidx_blks_read, 0) AS tidx_blks_read, coalesce(tidx_blks_hit, 0) AS tidx_blks_hit " +
		"FROM pg_statio_user_tables ORDER BY relname"

	// Size columns appear twice: the left copy stays absolute, the right
	// copy goes through the diff range and shows growth per tick.
	tableSizesQuery = "SELECT relname, " +
		"pg_total_relation_size(relid) / 1024 AS total_size, " +
		"pg_relation_size(relid) / 1024 AS rel_size, " +
		"(pg_total_relation_size(relid) - pg_relation_size(relid)) / 1024 AS idx_size, " +
		"pg_total_relation_size(relid) / 1024 AS total_change, " +
		"pg_relation_size(relid) / 1024 AS rel_change, " +
		"(pg_total_relation_size(relid) - pg_relation_size(relid)) / 1024 AS idx_change " +
		"FROM pg_stat_user_tables ORDER BY relname"

	// Two placeholders take the console's min_age threshold.
	longActivityQuery = "SELECT pid, client_addr AS cl_addr, datname, usename, " +
		"date_trunc('seconds', clock_timestamp() - xact_start)::text AS xact_age, " +
		"date_trunc('seconds', clock_timestamp() - query_start)::text AS query_age, " +
		"state, query FROM pg_stat_activity " +
		"WHERE (clock_timestamp() - xact_start) > '%s'::interval " +
		"OR (clock_timestamp() - query_start) > '%s'::interval " +
		"ORDER BY xact_start"

	// The placeholder takes a 1-based ORDER BY column index.
	userFunctionsQuery = "SELECT funcname AS function, calls, " +
		"calls AS calls_s, total_time, self_time " +
		"FROM pg_stat_user_functions ORDER BY %d DESC"
)

// UserFunctionsDiffCol is the single calls/s column diffed for the
// user-functions view.
const UserFunctionsDiffCol = 2

// Registry is the read-only view catalog, keyed by ViewID.
var Registry = map[ViewID]View{
	ViewDatabases: {
		ID: ViewDatabases, Query: databasesQuery,
		SortMin: 2, SortMax: 11, DiffMin: 2, DiffMax: 11,
	},
	ViewReplication: {
		ID: ViewReplication, Query: replicationQuery,
		SortMin: 5, SortMax: 8, DiffMin: 5, DiffMax: 8,
	},
	ViewUserTables: {
		ID: ViewUserTables, Query: userTablesQuery,
		SortMin: 1, SortMax: 10, DiffMin: 1, DiffMax: 10,
	},
	ViewUserIndexes: {
		ID: ViewUserIndexes, Query: userIndexesQuery,
		SortMin: 2, SortMax: 6, DiffMin: 2, DiffMax: 6,
	},
	ViewStatioUserTables: {
		ID: ViewStatioUserTables, Query: statioUserTablesQuery,
		SortMin: 1, SortMax: 8, DiffMin: 1, DiffMax: 8,
	},
	// Sortable over the absolute size columns too, but only the change
	// columns are diffed.
	ViewTableSizes: {
		ID: ViewTableSizes, Query: tableSizesQuery,
		SortMin: 1, SortMax: 6, DiffMin: 4, DiffMax: 6,
	},
	// Always shows current state: unsortable, nothing diffed.
	ViewLongActivity: {
		ID: ViewLongActivity, Query: longActivityQuery,
		SortMin: InvalidOrderKey, SortMax: InvalidOrderKey,
		DiffMin: InvalidOrderKey, DiffMax: InvalidOrderKey,
	},
	ViewUserFunctions: {
		ID: ViewUserFunctions, Query: userFunctionsQuery,
		SortMin: 1, SortMax: 4,
		DiffMin: UserFunctionsDiffCol, DiffMax: UserFunctionsDiffCol,
		ServerSort: true,
	},
}

// Get returns the catalog entry for id.
func Get(id ViewID) View {
	return Registry[id]
}

// Build produces the final query text for a view. minAge fills the
// long-activity threshold placeholders; orderKey (0-based) selects the
// server-side ORDER BY column for user-functions.
func Build(id ViewID, minAge string, orderKey int) string {
	v := Registry[id]
	switch id {
	case ViewLongActivity:
		return fmt.Sprintf(v.Query, minAge, minAge)
	case ViewUserFunctions:
		return fmt.Sprintf(v.Query, orderKey+1)
	default:
		return v.Query
	}
}
