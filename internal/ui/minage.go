package ui

import tea "github.com/charmbracelet/bubbletea"

// editorResult is the outcome of feeding one key to the min_age editor.
type editorResult int

const (
	editorContinue editorResult = iota
	editorCommit
	editorAbort
)

// minAgeEditor is the line editor behind the 'm' command: ESC aborts,
// Enter commits, Backspace/Delete erase the last rune, anything printable
// appends.
type minAgeEditor struct {
	buf []rune
}

func newMinAgeEditor() *minAgeEditor {
	return &minAgeEditor{}
}

// Handle consumes one keystroke and reports whether editing continues.
func (e *minAgeEditor) Handle(msg tea.KeyMsg) editorResult {
	switch msg.String() {
	case "esc":
		return editorAbort
	case "enter":
		return editorCommit
	case "backspace", "delete":
		if len(e.buf) > 0 {
			e.buf = e.buf[:len(e.buf)-1]
		}
		return editorContinue
	default:
		for _, r := range msg.Runes {
			if r >= 32 {
				e.buf = append(e.buf, r)
			}
		}
		return editorContinue
	}
}

// Value returns the text typed so far.
func (e *minAgeEditor) Value() string {
	return string(e.buf)
}
