package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
)

// summaryTimeFormat is used for run start and finish times.
const summaryTimeFormat = "2006-01-02 15:04:05 MST"

// MarkdownWriter renders a run Summary as GitHub flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write renders the summary and returns the number of bytes produced.
func (w *MarkdownWriter) Write(s *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeAlert(md, s)
	w.writeUsers(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run properties table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("frenscrape run summary")
	md.PlainText("")

	snapshot := "disabled"
	if s.SnapshotDir != "" {
		snapshot = "`" + s.SnapshotDir + "`"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + s.BaseURL + "`"},
			{"Started", s.StartedAt.UTC().Format(summaryTimeFormat)},
			{"Duration", s.Duration().Round(time.Millisecond).String()},
			{"Snapshot", snapshot},
			{"Users", strconv.Itoa(len(s.Profiles))},
			{"Rows", strconv.Itoa(s.RowCount)},
			{"Assets mirrored", strconv.Itoa(s.AssetCount())},
			{"Status", statusText(s)},
		},
	})
	md.PlainText("")
}

func statusText(s *Summary) string {
	if s.Err != nil {
		return "❌ Failed - " + s.Err.Error()
	}
	return "✅ Complete"
}

// writeAlert writes one alert for the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *Summary) {
	mismatches := s.Mismatches()

	switch {
	case s.Err != nil:
		md.Cautionf("The run stopped early: %s", s.Err.Error())
	case len(mismatches) > 0:
		md.Warningf("%d profile heading(s) do not match the display name on the index page.", len(mismatches))
	case len(s.Profiles) == 0:
		md.Note("The index page listed no users.")
	default:
		md.Tip("Every profile heading matches its display name.")
	}
	md.PlainText("")

	if len(mismatches) == 0 {
		return
	}

	items := make([]string, 0, len(mismatches))
	for _, p := range mismatches {
		items = append(items, "`"+p.ScreenName+"`: expected "+quote(p.DisplayName)+", heading is "+quote(p.Heading))
	}
	md.H2("Heading mismatches")
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}

// writeUsers writes one table row per visited profile.
func (w *MarkdownWriter) writeUsers(md *markdown.Markdown, s *Summary) {
	md.H2("Users")
	md.PlainText("")

	if len(s.Profiles) == 0 {
		md.PlainText("No profiles were visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Profiles))
	for i, p := range s.Profiles {
		heading := "✅"
		switch {
		case !p.HasHeading:
			heading = "-"
		case !p.HeadingMatches():
			heading = "⚠️ " + p.Heading
		}

		dir := "-"
		if p.IsSnapshotted() {
			dir = "`" + p.SnapshotDir + "`"
		}

		rows[i] = []string{
			p.ScreenName,
			p.DisplayName,
			strconv.Itoa(p.LinkCount),
			heading,
			dir,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Screen name", "Display name", "Links", "Heading", "Snapshot"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by frenscrape*")
}

func quote(s string) string {
	return strconv.Quote(s)
}
