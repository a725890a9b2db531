package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avlev/pgtop/internal/model"
	"github.com/avlev/pgtop/internal/stat"
)

// Refresh timing. The short delay covers skip ticks (baseline refresh) so
// a table appears well within one interval.
const (
	DefaultRefreshInterval = time.Second
	SkipRetryDelay         = 10 * time.Millisecond
)

// Model drives the whole dashboard: eight consoles, the host sampler and
// the artifacts of the last completed tick.
type Model struct {
	consoles [MaxConsoles]*Console
	active   int

	sampler  *stat.Sampler
	interval time.Duration

	// last completed tick
	table     *model.Table
	activity  model.ActivityCounters
	load      stat.LoadAvg
	cpu       stat.CpuPercent
	uptime    time.Duration
	connState string

	status string
	editor *minAgeEditor

	keys     KeyMap
	width    int
	height   int
	quitting bool
}

// NewModel wires consoles and the host sampler into a fresh model. The
// consoles slice may hold fewer than MaxConsoles entries; the rest are
// created unconfigured.
func NewModel(consoles []*Console, active int, sampler *stat.Sampler) Model {
	m := Model{
		sampler:   sampler,
		interval:  DefaultRefreshInterval,
		active:    active,
		connState: "unknown",
		keys:      DefaultKeyMap(),
	}
	for i := 0; i < MaxConsoles; i++ {
		if i < len(consoles) && consoles[i] != nil {
			m.consoles[i] = consoles[i]
		} else {
			m.consoles[i] = NewConsole(i)
		}
	}
	return m
}

// ActiveConsole returns the console currently on screen.
func (m *Model) ActiveConsole() *Console {
	return m.consoles[m.active]
}

// Status returns the current status line.
func (m *Model) Status() string {
	return m.status
}

var _ tea.Model = Model{}
