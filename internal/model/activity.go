package model

// ActivityCounters summarises pg_stat_activity for the header line.
type ActivityCounters struct {
	Total    int
	Idle     int
	IdleInTx int
	Active   int
	Waiting  int
	Others   int
}
