package ui

import (
	"time"

	"github.com/avlev/pgtop/internal/model"
	"github.com/avlev/pgtop/internal/stat"
)

// TickMsg fires when the refresh interval elapses.
type TickMsg time.Time

// RefreshMsg carries one tick's worth of samples: host statistics first,
// then the active console's query result.
type RefreshMsg struct {
	Console  int
	Load     stat.LoadAvg
	Cpu      stat.CpuPercent
	Uptime   time.Duration
	Activity model.ActivityCounters
	Table    *model.Table
	Err      error
}
