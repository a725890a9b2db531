package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/avlev/pgtop/internal/model"
)

// JSONTable represents one view's query result in JSON output.
type JSONTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// JSONActivity represents the activity summary in JSON output.
type JSONActivity struct {
	Total    int `json:"total"`
	Idle     int `json:"idle"`
	IdleInTx int `json:"idle_in_transaction"`
	Active   int `json:"active"`
	Waiting  int `json:"waiting"`
	Others   int `json:"others"`
}

// JSONOutput is the root JSON output structure.
type JSONOutput struct {
	Timestamp time.Time            `json:"timestamp"`
	Activity  JSONActivity         `json:"activity"`
	Views     map[string]JSONTable `json:"views"`
}

// RenderJSON writes a one-shot collection of every view as JSON.
func RenderJSON(w io.Writer, views map[string]*model.Table, activity model.ActivityCounters) error {
	out := JSONOutput{
		Timestamp: time.Now(),
		Activity: JSONActivity{
			Total:    activity.Total,
			Idle:     activity.Idle,
			IdleInTx: activity.IdleInTx,
			Active:   activity.Active,
			Waiting:  activity.Waiting,
			Others:   activity.Others,
		},
		Views: make(map[string]JSONTable, len(views)),
	}

	for name, t := range views {
		rows := t.Cells
		if rows == nil {
			rows = [][]string{}
		}
		out.Views[name] = JSONTable{Columns: t.Columns, Rows: rows}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
