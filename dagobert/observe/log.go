package observe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
)

// LogObserver writes one structured log line per node record.
//
// Supports two output modes:
//   - Text mode (default): human-readable key=value pairs, with a
//     humanized relative timestamp for when the node started.
//   - JSON mode: one JSON object per line (JSONL).
//
// Example text output:
//
//	[done] runID=V1StGXR8_Z5jdHi6B-myT node=nodeB started=3 seconds ago waiting=3ms elapsed=12ms
//
// Example JSON output:
//
//	{"runID":"V1StGXR8_Z5jdHi6B-myT","node":"nodeB","status":"done","waitingMs":3,"elapsedExecutionMs":12,"elapsedTotalMs":15}
type LogObserver struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogObserver creates a LogObserver writing to w (os.Stdout if nil).
func NewLogObserver(w io.Writer, jsonMode bool) *LogObserver {
	if w == nil {
		w = os.Stdout
	}
	return &LogObserver{writer: w, jsonMode: jsonMode}
}

func (l *LogObserver) Observe(rec Record) {
	if l.jsonMode {
		l.observeJSON(rec)
	} else {
		l.observeText(rec)
	}
}

func (l *LogObserver) observeJSON(rec Record) {
	data, err := json.Marshal(struct {
		RunID              string `json:"runID"`
		Node               string `json:"node"`
		Status             Status `json:"status"`
		WaitingMs          int64  `json:"waitingMs"`
		ElapsedExecutionMs int64  `json:"elapsedExecutionMs"`
		ElapsedTotalMs     int64  `json:"elapsedTotalMs"`
	}{
		RunID:              rec.RunID,
		Node:               rec.Node,
		Status:             rec.Status,
		WaitingMs:          rec.WaitingMs,
		ElapsedExecutionMs: rec.ElapsedExecutionMs,
		ElapsedTotalMs:     rec.ElapsedTotalMs,
	})
	if err != nil {
		_, _ = fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal record: %v\"}\n", err)
		return
	}
	_, _ = fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogObserver) observeText(rec Record) {
	started := "n/a"
	if !rec.StartExecution.IsZero() {
		started = humanize.Time(rec.StartExecution)
	}
	_, _ = fmt.Fprintf(l.writer, "[%s] runID=%s node=%s started=%s waiting=%dms elapsed=%dms\n",
		rec.Status, rec.RunID, rec.Node, started, rec.WaitingMs, rec.ElapsedExecutionMs)
}
