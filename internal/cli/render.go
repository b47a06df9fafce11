package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/slimecats/internal/boxes"
	"github.com/roach88/slimecats/internal/pubsync"
	"github.com/roach88/slimecats/internal/todo"
)

// numberedTodo is a todo with its 1-based position in the full listing, the
// number "done" takes.
type numberedTodo struct {
	N int `json:"n"`
	todo.Todo
}

// syncReport is the printable form of a pubsync.Result.
type syncReport struct {
	Peer  string        `json:"peer"`
	Phase string        `json:"phase"`
	Stats pubsync.Stats `json:"stats"`
	Error string        `json:"error,omitempty"`
}

// boxesReport is the output of the boxes command.
type boxesReport struct {
	Boxes    int            `json:"boxes"`
	Filled   int            `json:"filled"`
	Contents map[string]int `json:"contents"`
}

func todoLine(t todo.Todo) string {
	if t.IsDone {
		return "~~" + t.Text + "~~"
	}
	return t.Text
}

func renderTodos(todos []numberedTodo) string {
	if len(todos) == 0 {
		return "Nothing to do.\n"
	}
	var b strings.Builder
	for _, t := range todos {
		fmt.Fprintf(&b, "%d. %s\n", t.N, todoLine(t.Todo))
	}
	return b.String()
}

func newSyncReports(results []pubsync.Result) []syncReport {
	reports := make([]syncReport, len(results))
	for i, r := range results {
		reports[i] = syncReport{Peer: r.Peer, Phase: r.Phase.String(), Stats: r.Stats}
		if r.Err != nil {
			reports[i].Error = r.Err.Error()
		}
	}
	return reports
}

func renderSync(reports []syncReport) string {
	if len(reports) == 0 {
		return "No peers configured.\n"
	}
	var b strings.Builder
	for _, r := range reports {
		if r.Error != "" {
			fmt.Fprintf(&b, "%s: failed: %s\n", r.Peer, r.Error)
			continue
		}
		fmt.Fprintf(&b, "%s: %s (pulled %d, ignored %d, rejected %d, pushed %d)\n",
			r.Peer, r.Phase, r.Stats.Pulled, r.Stats.Ignored, r.Stats.Rejected, r.Stats.Pushed)
	}
	return b.String()
}

func renderBoxes(r boxesReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d boxes, %d filled\n", r.Boxes, r.Filled)
	for _, label := range boxes.Labels(r.Contents) {
		fmt.Fprintf(&b, "  %s: %d\n", label, r.Contents[label])
	}
	return b.String()
}
