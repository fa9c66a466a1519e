package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/memoria/internal/client/editor"
	"github.com/dmitrijs2005/memoria/internal/media"
	"github.com/dmitrijs2005/memoria/internal/wire"
)

func printContent(w io.Writer, c media.Content) {
	fmt.Fprintf(w, "Title:       %s\n", c.Title)
	fmt.Fprintf(w, "Description: %s\n", c.Description)
	fmt.Fprintf(w, "Color:       %s\n", c.PrimaryColor)
	if c.MusicURL != "" {
		fmt.Fprintf(w, "Music:       %s\n", c.MusicURL)
	}
	if len(c.Media) == 0 {
		fmt.Fprintln(w, "No media yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tID\tTYPE\tCAPTION\tURL")
	for _, e := range c.Media {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Position, e.ID, e.Kind, e.Caption, e.URL)
	}
	tw.Flush()
}

func printTasks(w io.Writer, tasks []media.UploadTask) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No uploads in progress.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(w, "%-30s %3d%%\n", t.FileName, t.Progress)
	}
}

func printMemories(w io.Writer, list []wire.Memory) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No memories.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tSTATUS\tCREATED\tTITLE\tMEDIA")
	for _, m := range list {
		created := time.UnixMilli(m.CreatedAt).Format(time.DateTime)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", m.ID, m.Slug, m.Status, created, m.Content.Title, len(m.Content.Media))
	}
	tw.Flush()
}

// eventPrinter reports terminal task events on w. Progress ticks are not
// printed; 'tasks' shows them on demand.
func eventPrinter(w io.Writer) func(editor.Event) {
	return func(ev editor.Event) {
		if !ev.Task.Terminal() {
			return
		}
		if ev.Task.Status == media.TaskError {
			fmt.Fprintf(w, "\n%s: %s\n", ev.Task.FileName, ev.Task.Error)
			return
		}
		fmt.Fprintf(w, "\n%s: uploaded\n", ev.Task.FileName)
	}
}
