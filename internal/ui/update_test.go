package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avlev/pgtop/internal/db"
	"github.com/avlev/pgtop/internal/model"
	"github.com/avlev/pgtop/internal/query"
)

// fakeDB is a canned DataSource for driving the refresh cycle in tests.
type fakeDB struct {
	table    *model.Table
	err      error
	activity model.ActivityCounters
}

func (f *fakeDB) Query(ctx context.Context, sql string) (*model.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func (f *fakeDB) Activity(ctx context.Context) (model.ActivityCounters, error) {
	return f.activity, nil
}

func testModel() Model {
	c := NewConsole(0)
	c.ConnUsed = true
	c.Cfg = db.Config{Host: "db1", Port: "5432", User: "bob", DBName: "appdb"}
	c.DB = &fakeDB{}
	return NewModel([]*Console{c}, 0, nil)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	res, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return res, cmd
}

func TestUpdate_ViewSwitchKeys(t *testing.T) {
	cases := []struct {
		key    rune
		view   query.ViewID
		status string
	}{
		{'d', query.ViewDatabases, "Show pg_stat_database"},
		{'r', query.ViewReplication, "Show pg_stat_replication"},
		{'t', query.ViewUserTables, "Show pg_stat_user_tables"},
		{'i', query.ViewUserIndexes, "Show pg_stat_user_indexes"},
		{'y', query.ViewStatioUserTables, "Show pg_statio_user_tables"},
		{'s', query.ViewTableSizes, "Show relations sizes"},
		{'f', query.ViewUserFunctions, "Show pg_stat_user_functions"},
	}

	for _, tc := range cases {
		m := testModel()
		m, _ = update(t, m, keyRune(tc.key))

		c := m.ActiveConsole()
		if c.CurrentView != tc.view {
			t.Errorf("key %q: view = %s, want %s", tc.key, c.CurrentView, tc.view)
		}
		if m.Status() != tc.status {
			t.Errorf("key %q: status = %q, want %q", tc.key, m.Status(), tc.status)
		}
		if !c.FirstIter {
			t.Errorf("key %q: view switch must rebase", tc.key)
		}
	}
}

func TestUpdate_LongActivityStatusCarriesThreshold(t *testing.T) {
	m := testModel()
	if err := m.ActiveConsole().SetMinAge("00:05:00"); err != nil {
		t.Fatal(err)
	}

	m, _ = update(t, m, keyRune('l'))

	want := "Show long transactions (transactions and queries threshold: 00:05:00)"
	if m.Status() != want {
		t.Errorf("status = %q, want %q", m.Status(), want)
	}
}

func TestUpdate_UnknownKey(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('z'))

	if m.Status() != "Unknown command - try 'h' for help." {
		t.Errorf("status = %q", m.Status())
	}
}

func TestUpdate_SortKeys(t *testing.T) {
	m := testModel()
	st := m.ActiveConsole().Sort[query.ViewDatabases]
	start := st.OrderKey

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if st.OrderKey != start+1 {
		t.Errorf("order key = %d after right, want %d", st.OrderKey, start+1)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if st.OrderKey != start {
		t.Errorf("order key = %d after left, want %d", st.OrderKey, start)
	}
}

func TestUpdate_ConsoleSwitchRefusedWithoutConnection(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('2'))

	if m.active != 0 {
		t.Fatalf("active console = %d, want 0", m.active)
	}
	want := "Do not switch because no connection associated (stay on console 1)"
	if m.Status() != want {
		t.Errorf("status = %q, want %q", m.Status(), want)
	}
}

func TestUpdate_ConsoleSwitch(t *testing.T) {
	first := NewConsole(0)
	first.ConnUsed = true
	first.Cfg = db.Config{Host: "db1", Port: "5432", User: "bob", DBName: "appdb"}
	second := NewConsole(1)
	second.ConnUsed = true
	second.Cfg = db.Config{Host: "db2", Port: "5433", User: "eve", DBName: "otherdb"}
	m := NewModel([]*Console{first, second}, 0, nil)

	// give console 2 a stale baseline, then switch away and back
	second.FirstIter = false
	second.PrevRows = 3

	m, _ = update(t, m, keyRune('2'))

	if m.active != 1 {
		t.Fatalf("active console = %d, want 1", m.active)
	}
	want := "Switch to console 2 (db2:5433 eve@otherdb)"
	if m.Status() != want {
		t.Errorf("status = %q, want %q", m.Status(), want)
	}
	if m.ActiveConsole().FirstIter || m.ActiveConsole().PrevRows != 3 {
		t.Error("switching must preserve the target console's baseline")
	}
}

func TestUpdate_MinAgeOutsideLongActivity(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('m'))

	if m.Status() != "Not allowed here." {
		t.Errorf("status = %q", m.Status())
	}
	if m.editor != nil {
		t.Error("editor must not open outside the long-activity view")
	}
}

func TestUpdate_MinAgeEditorCommit(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('l'))
	m, _ = update(t, m, keyRune('m'))

	if m.editor == nil {
		t.Fatal("editor did not open")
	}

	for _, r := range "00:00:10" {
		m, _ = update(t, m, keyRune(r))
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.editor != nil {
		t.Error("editor must close on commit")
	}
	if m.Status() != "Set new min age 00:00:10" {
		t.Errorf("status = %q", m.Status())
	}
	if m.ActiveConsole().MinAge != "00:00:10" {
		t.Errorf("min age = %q", m.ActiveConsole().MinAge)
	}
}

func TestUpdate_MinAgeEditorAbort(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('l'))
	m, _ = update(t, m, keyRune('m'))
	m, _ = update(t, m, keyRune('9'))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.editor != nil {
		t.Error("editor must close on abort")
	}
	if m.Status() != "Do nothing. Operation canceled." {
		t.Errorf("status = %q", m.Status())
	}
	if m.ActiveConsole().MinAge != DefaultMinAge {
		t.Errorf("min age = %q, want untouched default", m.ActiveConsole().MinAge)
	}
}

func TestUpdate_MinAgeEditorEmptyCommit(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('l'))
	m, _ = update(t, m, keyRune('m'))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Status() != "Nothing to do. Leave min age 00:00:00" {
		t.Errorf("status = %q", m.Status())
	}
}

func TestUpdate_MinAgeEditorInvalidCommit(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('l'))
	m, _ = update(t, m, keyRune('m'))
	for _, r := range "banana" {
		m, _ = update(t, m, keyRune(r))
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Status() != "Nothing to do. Failed read or invalid value." {
		t.Errorf("status = %q", m.Status())
	}
	if m.ActiveConsole().MinAge != DefaultMinAge {
		t.Errorf("min age = %q, want untouched default", m.ActiveConsole().MinAge)
	}
}

func TestUpdate_MinAgeEditorInterceptsCommands(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('l'))
	m, _ = update(t, m, keyRune('m'))

	// 'd' would switch views if the editor were not open
	m, _ = update(t, m, keyRune('d'))

	if m.ActiveConsole().CurrentView != query.ViewLongActivity {
		t.Error("editor must swallow view-switch keys")
	}
	if m.editor == nil || m.editor.Value() != "d" {
		t.Error("typed key must land in the editor buffer")
	}
}

func TestUpdate_QuitKey(t *testing.T) {
	m := testModel()
	m, cmd := update(t, m, keyRune('q'))

	if !m.quitting {
		t.Error("q must mark the model as quitting")
	}
	if cmd == nil {
		t.Error("q must return the quit command")
	}
}

func TestHandleRefresh_FirstTickSkipsRender(t *testing.T) {
	m := testModel()
	msg := RefreshMsg{Console: 0, Table: dbTable(dbRow("appdb", 100))}

	m, cmd := update(t, m, msg)

	if m.table != nil {
		t.Error("first refresh rebases, nothing to render")
	}
	if cmd == nil {
		t.Error("a skip tick must schedule the short retry")
	}
	if m.connState != "ok" {
		t.Errorf("conn state = %q, want ok", m.connState)
	}
}

func TestHandleRefresh_SecondTickRenders(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, RefreshMsg{Console: 0, Table: dbTable(dbRow("appdb", 100))})
	m, _ = update(t, m, RefreshMsg{Console: 0, Table: dbTable(dbRow("appdb", 160))})

	if m.table == nil {
		t.Fatal("second refresh must render")
	}
	if m.table.Cells[0][2] != "60" {
		t.Errorf("commits delta = %q, want 60", m.table.Cells[0][2])
	}
}

func TestHandleRefresh_StaleConsoleDropped(t *testing.T) {
	first := NewConsole(0)
	first.ConnUsed = true
	second := NewConsole(1)
	second.ConnUsed = true
	m := NewModel([]*Console{first, second}, 0, nil)

	m, _ = update(t, m, keyRune('2'))
	m, cmd := update(t, m, RefreshMsg{Console: 0, Table: dbTable(dbRow("appdb", 1))})

	if m.table != nil {
		t.Error("a stale console's table must not render")
	}
	if m.ActiveConsole().FirstIter != true {
		t.Error("a stale refresh must not touch the active console's baseline")
	}
	if cmd == nil {
		t.Error("a stale refresh must reschedule promptly")
	}
}

func TestHandleRefresh_NotConnected(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, RefreshMsg{Console: 0, Err: errNotConnected})

	if m.Status() != "Unable to connect to db1:5432 bob@appdb" {
		t.Errorf("status = %q", m.Status())
	}
	if m.connState != "failed" {
		t.Errorf("conn state = %q, want failed", m.connState)
	}
	if m.table != nil {
		t.Error("table region must blank out on a failed tick")
	}
}

func TestHandleRefresh_QueryErrorKeepsBaseline(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, RefreshMsg{Console: 0, Table: dbTable(dbRow("appdb", 100))})

	baseline := m.ActiveConsole().Prev
	m, _ = update(t, m, RefreshMsg{Console: 0, Err: errors.New("server closed the connection")})

	if m.Status() != "We didn't get any data." {
		t.Errorf("status = %q", m.Status())
	}
	if m.ActiveConsole().Prev != baseline {
		t.Error("a failed tick must not advance the baseline")
	}

	// recovery picks up against the preserved baseline
	m, _ = update(t, m, RefreshMsg{Console: 0, Table: dbTable(dbRow("appdb", 150))})
	if m.table == nil {
		t.Fatal("recovered tick must render")
	}
	if m.table.Cells[0][2] != "50" {
		t.Errorf("delta across the failure = %q, want 50", m.table.Cells[0][2])
	}
}

func TestRefreshCmd_NoConnection(t *testing.T) {
	c := NewConsole(0)
	c.ConnUsed = true
	m := NewModel([]*Console{c}, 0, nil)

	msg := m.refreshCmd()()
	refresh, ok := msg.(RefreshMsg)
	if !ok {
		t.Fatalf("refreshCmd returned %T", msg)
	}
	if !errors.Is(refresh.Err, errNotConnected) {
		t.Errorf("err = %v, want errNotConnected", refresh.Err)
	}
}

func TestRefreshCmd_FetchesTableAndActivity(t *testing.T) {
	m := testModel()
	fake := m.ActiveConsole().DB.(*fakeDB)
	fake.table = dbTable(dbRow("appdb", 7))
	fake.activity = model.ActivityCounters{Total: 12, Active: 3}

	msg := m.refreshCmd()()
	refresh, ok := msg.(RefreshMsg)
	if !ok {
		t.Fatalf("refreshCmd returned %T", msg)
	}
	if refresh.Err != nil {
		t.Fatalf("err = %v", refresh.Err)
	}
	if refresh.Table == nil || refresh.Table.Cells[0][0] != "appdb" {
		t.Error("table not carried in the refresh message")
	}
	if refresh.Activity.Total != 12 || refresh.Activity.Active != 3 {
		t.Errorf("activity = %+v", refresh.Activity)
	}
}

func TestView_RendersWithoutData(t *testing.T) {
	m := testModel()
	out := m.View()

	if !strings.Contains(out, "pgtop") {
		t.Error("summary must name the program")
	}
	if !strings.Contains(out, "load average:") {
		t.Error("summary must show the load average line")
	}
	if !strings.Contains(out, "conn 1: db1:5432 bob@appdb") {
		t.Errorf("summary must show the active connection, got\n%s", out)
	}
}

func TestView_RendersTable(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, RefreshMsg{Console: 0, Table: dbTable(dbRow("appdb", 100))})
	m, _ = update(t, m, RefreshMsg{Console: 0, Table: dbTable(dbRow("appdb", 130))})

	out := m.View()
	if !strings.Contains(out, "datname") {
		t.Error("header row missing")
	}
	if !strings.Contains(out, "appdb") {
		t.Error("data row missing")
	}
}

func TestView_EditorPrompt(t *testing.T) {
	m := testModel()
	m, _ = update(t, m, keyRune('l'))
	m, _ = update(t, m, keyRune('m'))
	m, _ = update(t, m, keyRune('1'))

	out := m.View()
	if !strings.Contains(out, "Enter new min age, format: HH:MM:SS[.NN]: 1") {
		t.Errorf("editor prompt missing, got\n%s", out)
	}
}
