package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/lepinkainen/ffpool/logging"
	"github.com/lepinkainen/ffpool/processor"
)

// SummaryLine is the one-line report printed after every run
func SummaryLine(s processor.Summary, logPath string) string {
	return fmt.Sprintf("%d out of %d files have been successful. A detailed log has been written to %s",
		s.Succeeded, s.Total, logPath)
}

// RenderSummary renders the run's accounting as a table
func RenderSummary(s processor.Summary, elapsed time.Duration) string {
	tw := newTable()
	tw.AppendHeader(table.Row{"Outcome", "Files"})
	tw.AppendRow(table.Row{"Succeeded", s.Succeeded})
	tw.AppendRow(table.Row{"Failed", s.Failed})
	tw.AppendRow(table.Row{"Skipped", s.Skipped})
	tw.AppendFooter(table.Row{"Total", s.Total})
	tw.SetCaption("Finished in %s", elapsed.Truncate(time.Millisecond))
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

// RenderFailures renders one row per failed job. Returns "" when there are none.
func RenderFailures(failures []processor.Failure) string {
	if len(failures) == 0 {
		return ""
	}

	tw := newTable()
	tw.AppendHeader(table.Row{"#", "Input", "Outcome", "Reason"})
	for i, f := range failures {
		tw.AppendRow(table.Row{i + 1, f.Input, f.Outcome, shorten(f.Reason, 60)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, WidthMax: 60},
	})
	return tw.Render()
}

// RenderRuns renders the log files of a log directory
func RenderRuns(runs []logging.RunLog) string {
	tw := newTable()
	tw.AppendHeader(table.Row{"Log", "Started", "Size", "State"})
	for _, r := range runs {
		state := "finished"
		if r.Active {
			state = "running"
		}
		tw.AppendRow(table.Row{r.Name, r.ModTime.Format("2006-01-02 15:04"), humanSize(r.Size), state})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// shorten keeps the first line of s and cuts it to limit runes
func shorten(s string, limit int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
