package ui

import (
	"strings"

	"github.com/juanzandev/CS487Project/internal/logtail"
)

func readLogTail(path string, maxLines int) ([]string, error) {
	return logtail.Read(path, maxLines)
}

func (m *Model) setDiagnostics(msg diagnosticsMsg) {
	var b strings.Builder

	b.WriteString(m.styles.Text.Bold(true).Render("Poller"))
	b.WriteString("\n")
	if len(msg.metrics) == 0 {
		b.WriteString(m.styles.FaintText.Render("  no cycles recorded yet"))
		b.WriteString("\n")
	}
	for _, line := range msg.metrics {
		b.WriteString("  " + m.styles.Text.Render(line) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Text.Bold(true).Render("Recent log"))
	if m.opts.LogPath != "" {
		b.WriteString(m.styles.FaintText.Render("  " + m.opts.LogPath))
	}
	b.WriteString("\n")
	if len(msg.logLines) == 0 {
		b.WriteString(m.styles.FaintText.Render("  log is empty"))
		b.WriteString("\n")
	}
	for _, line := range msg.logLines {
		b.WriteString("  " + m.logLineStyle(line) + "\n")
	}

	if msg.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.ErrorText.Render("diagnostics incomplete: " + msg.err.Error()))
	}

	m.diag.SetContent(b.String())
	m.diag.GotoBottom()
}

// logLineStyle colours a log line by level and shows it without the time and
// level fields.
func (m Model) logLineStyle(line string) string {
	short := compactLogLine(line)
	switch logtail.ParseLevel(line) {
	case logtail.LevelError:
		return m.styles.ErrorText.Render(short)
	case logtail.LevelWarn:
		return m.styles.GradeStyle(ptrScore(85)).UnsetBold().Render(short)
	case logtail.LevelDebug:
		return m.styles.FaintText.Render(short)
	default:
		return m.styles.Text.Render(short)
	}
}

// compactLogLine keeps the message and the attributes after it.
func compactLogLine(line string) string {
	i := strings.Index(line, "msg=")
	if i < 0 {
		return line
	}
	msg := logtail.Message(line)
	rest := strings.TrimPrefix(line[i+len("msg="):], `"`)
	rest = strings.TrimPrefix(rest, msg)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, `"`))
	if rest == "" {
		return msg
	}
	return msg + "  " + rest
}

func ptrScore(v float64) *float64 { return &v }
