package query

// Scalar queries behind the header's activity summary. Each returns a
// single count from pg_stat_activity.
const (
	ActivityCountTotal = "SELECT count(*) FROM pg_stat_activity"

	ActivityCountIdle = "SELECT count(*) FROM pg_stat_activity " +
		"WHERE state = 'idle'"

	ActivityCountIdleInTx = "SELECT count(*) FROM pg_stat_activity " +
		"WHERE state IN ('idle in transaction', 'idle in transaction (aborted)')"

	ActivityCountActive = "SELECT count(*) FROM pg_stat_activity " +
		"WHERE state = 'active'"

	ActivityCountWaiting = "SELECT count(*) FROM pg_stat_activity " +
		"WHERE wait_event IS NOT NULL AND state = 'active'"

	ActivityCountOthers = "SELECT count(*) FROM pg_stat_activity " +
		"WHERE state NOT IN ('idle', 'idle in transaction', " +
		"'idle in transaction (aborted)', 'active')"
)
