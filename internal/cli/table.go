package cli

import (
	"os"
	"time"

	"tasknest/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
)

// renderTasks prints a task table to stdout.
func renderTasks(tasks []model.Task) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Done", "Title", "Category", "Due", "Created"})

	for _, task := range tasks {
		done := " "
		if task.IsCompleted {
			done = "x"
		}
		t.AppendRow(table.Row{
			task.ID,
			done,
			task.Title,
			string(task.Category),
			formatDue(task.DueDate),
			time.UnixMilli(task.CreatedAt).Format("2006-01-02 15:04"),
		})
	}

	t.Render()
}

func formatDue(due *int64) string {
	if due == nil {
		return "-"
	}
	return time.UnixMilli(*due).Format("2006-01-02")
}
