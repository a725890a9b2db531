package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avlev/pgtop/internal/query"
)

// errNotConnected marks consoles whose startup connection failed; they
// stay usable, every tick just reports the failure.
var errNotConnected = errors.New("not connected")

const queryTimeout = 5 * time.Second

// Init starts the first refresh immediately.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		return m, m.refreshCmd()

	case RefreshMsg:
		return m.handleRefresh(msg)
	}

	return m, nil
}

// handleKey is the command dispatcher. Keystroke handling strictly
// precedes the next sample: nothing is fetched here, the pending tick
// picks up the mutated state.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The min_age editor intercepts every key while open.
	if m.editor != nil {
		return m.handleEditorKey(msg)
	}

	c := m.ActiveConsole()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Databases):
		return m.switchView(query.ViewDatabases, "Show pg_stat_database")
	case key.Matches(msg, m.keys.Replication):
		return m.switchView(query.ViewReplication, "Show pg_stat_replication")
	case key.Matches(msg, m.keys.UserTables):
		return m.switchView(query.ViewUserTables, "Show pg_stat_user_tables")
	case key.Matches(msg, m.keys.UserIndexes):
		return m.switchView(query.ViewUserIndexes, "Show pg_stat_user_indexes")
	case key.Matches(msg, m.keys.StatioTables):
		return m.switchView(query.ViewStatioUserTables, "Show pg_statio_user_tables")
	case key.Matches(msg, m.keys.TableSizes):
		return m.switchView(query.ViewTableSizes, "Show relations sizes")
	case key.Matches(msg, m.keys.LongActivity):
		return m.switchView(query.ViewLongActivity,
			fmt.Sprintf("Show long transactions (transactions and queries threshold: %s)", c.MinAge))
	case key.Matches(msg, m.keys.UserFunctions):
		return m.switchView(query.ViewUserFunctions, "Show pg_stat_user_functions")

	case key.Matches(msg, m.keys.SortRight):
		c.StepSort(true)
		return m, nil
	case key.Matches(msg, m.keys.SortLeft):
		c.StepSort(false)
		return m, nil

	case key.Matches(msg, m.keys.MinAge):
		if c.CurrentView != query.ViewLongActivity {
			m.status = "Not allowed here."
			return m, nil
		}
		m.editor = newMinAgeEditor()
		return m, nil
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '8' {
		return m.switchConsole(int(s[0] - '1'))
	}

	m.status = "Unknown command - try 'h' for help."
	return m, nil
}

func (m Model) switchView(id query.ViewID, status string) (tea.Model, tea.Cmd) {
	m.ActiveConsole().SetView(id)
	m.table = nil
	m.status = status
	return m, nil
}

// switchConsole activates console target (0-based). Consoles without a
// configured connection refuse the switch; baselines of inactive consoles
// survive until their next activation.
func (m Model) switchConsole(target int) (tea.Model, tea.Cmd) {
	if !m.consoles[target].ConnUsed {
		m.status = fmt.Sprintf(
			"Do not switch because no connection associated (stay on console %d)",
			m.active+1)
		return m, nil
	}
	m.active = target
	m.table = nil
	m.status = fmt.Sprintf("Switch to console %d (%s)",
		target+1, m.consoles[target].Cfg.Summary())
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.ActiveConsole()
	switch m.editor.Handle(msg) {
	case editorAbort:
		m.editor = nil
		m.status = "Do nothing. Operation canceled."
	case editorCommit:
		age := m.editor.Value()
		m.editor = nil
		if age == "" {
			m.status = fmt.Sprintf("Nothing to do. Leave min age %s", c.MinAge)
			break
		}
		if err := c.SetMinAge(age); err != nil {
			m.status = "Nothing to do. Failed read or invalid value."
			break
		}
		m.status = fmt.Sprintf("Set new min age %s", c.MinAge)
	}
	return m, nil
}

// handleRefresh runs the snapshot aligner on the fetched table and
// schedules the next tick: a short retry after a skip, the full interval
// otherwise.
func (m Model) handleRefresh(msg RefreshMsg) (tea.Model, tea.Cmd) {
	m.load = msg.Load
	m.cpu = msg.Cpu
	m.uptime = msg.Uptime

	if msg.Console != m.active {
		return m, m.tickAfter(SkipRetryDelay)
	}

	if msg.Err != nil {
		if errors.Is(msg.Err, errNotConnected) {
			m.status = fmt.Sprintf("Unable to connect to %s", m.ActiveConsole().Cfg.Summary())
		} else {
			m.status = "We didn't get any data."
		}
		m.connState = "failed"
		m.table = nil
		return m, m.tickAfter(m.interval)
	}

	m.connState = "ok"
	m.activity = msg.Activity

	res := align(m.ActiveConsole(), msg.Table)
	if res == nil {
		return m, m.tickAfter(SkipRetryDelay)
	}
	m.table = res
	return m, m.tickAfter(m.interval)
}

func (m Model) tickAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// refreshCmd performs one tick's sampling: host statistics first, so the
// CPU interval ends at the same wall time every tick, then the active
// console's query.
func (m Model) refreshCmd() tea.Cmd {
	c := m.ActiveConsole()
	sql := c.BuildQuery()
	active := m.active
	sampler := m.sampler

	return func() tea.Msg {
		msg := RefreshMsg{Console: active}
		if sampler != nil {
			_ = sampler.SampleCpu()
			msg.Load = sampler.SampleLoad()
			msg.Cpu = sampler.Percentages()
			msg.Uptime = sampler.Uptime()
		}

		if c.DB == nil {
			msg.Err = errNotConnected
			return msg
		}

		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		table, err := c.DB.Query(ctx, sql)
		if err != nil {
			msg.Err = err
			return msg
		}
		msg.Table = table

		if activity, err := c.DB.Activity(ctx); err == nil {
			msg.Activity = activity
		}
		return msg
	}
}
