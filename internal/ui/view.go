package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/avlev/pgtop/internal/query"
)

// Layout: 5-line system summary, 1-line command/status line, then the
// data region filling the remainder.
const summaryHeight = 5

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderSummary())
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	return b.String()
}

func (m Model) renderSummary() string {
	var b strings.Builder

	title := TitleStyle().Render("pgtop")
	now := time.Now().Format("2006-01-02 15:04:05")
	b.WriteString(fmt.Sprintf("%s: %s, up %s\n", title, now, formatUptime(m.uptime)))

	summary := SummaryStyle()
	b.WriteString(summary.Render(fmt.Sprintf("load average: %.2f, %.2f, %.2f",
		m.load.One, m.load.Five, m.load.Fifteen)))
	b.WriteString("\n")

	b.WriteString(summary.Render(fmt.Sprintf(
		"    %%cpu: %4.1f us, %4.1f sy, %4.1f ni, %4.1f id, %4.1f wa, %4.1f hi, %4.1f si, %4.1f st",
		m.cpu.User, m.cpu.Sys, m.cpu.Nice, m.cpu.Idle,
		m.cpu.Iowait, m.cpu.Hardirq, m.cpu.Softirq, m.cpu.Steal)))
	b.WriteString("\n")

	c := m.ActiveConsole()
	connLine := fmt.Sprintf("  conn %d: %s\t conn state: %s",
		m.active+1, c.Cfg.Summary(), m.connState)
	if m.connState == "failed" {
		b.WriteString(ErrorStyle().Render(connLine))
	} else {
		b.WriteString(summary.Render(connLine))
	}
	b.WriteString("\n")

	a := m.activity
	b.WriteString(summary.Render(fmt.Sprintf(
		"activity:%3d total,%3d idle,%3d idle_in_tnx,%3d active,%3d waiting,%3d others",
		a.Total, a.Idle, a.IdleInTx, a.Active, a.Waiting, a.Others)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderStatusLine() string {
	if m.editor != nil {
		return StatusStyle().Render(
			"Enter new min age, format: HH:MM:SS[.NN]: " + m.editor.Value())
	}
	if m.status == "We didn't get any data." ||
		strings.HasPrefix(m.status, "Unable to connect") {
		return ErrorStyle().Render(m.status)
	}
	return StatusStyle().Render(m.status)
}

// renderTable prints the data region: bold header row with the active
// sort column in reverse video, then left-padded cells.
func (m Model) renderTable() string {
	if m.table == nil {
		return ""
	}

	c := m.ActiveConsole()
	v := query.Get(c.CurrentView)
	orderKey := -1
	if v.Sortable() || v.ServerSort {
		orderKey = c.Sort[c.CurrentView].OrderKey
	}

	widths := m.table.ColumnWidths()

	var b strings.Builder
	for j, name := range m.table.Columns {
		cell := fmt.Sprintf("%-*s", widths[j], name)
		if j == orderKey {
			b.WriteString(SortHeaderStyle().Render(cell))
		} else {
			b.WriteString(HeaderRowStyle().Render(cell))
		}
	}
	b.WriteString("\n")

	maxRows := len(m.table.Cells)
	if m.height > 0 {
		if avail := m.height - summaryHeight - 2; avail < maxRows {
			maxRows = avail
		}
	}
	if maxRows < 0 {
		maxRows = 0
	}

	cellStyle := TableStyle()
	for i := 0; i < maxRows; i++ {
		var line strings.Builder
		for j, cell := range m.table.Cells[i] {
			line.WriteString(fmt.Sprintf("%-*s", widths[j], cell))
		}
		b.WriteString(cellStyle.Render(trimToWidth(line.String(), m.width)))
		b.WriteString("\n")
	}

	return b.String()
}

// formatUptime renders a duration as HH:MM:SS.
func formatUptime(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

// trimToWidth cuts a plain-text line to the terminal width.
func trimToWidth(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	return s[:width]
}
