package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/juanzandev/CS487Project/internal/canvas"
	"github.com/juanzandev/CS487Project/internal/config"
	"github.com/juanzandev/CS487Project/internal/state"
)

// MaxNameRunes is the longest course name shown before truncation.
const MaxNameRunes = 50

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// TruncateName shortens a course name to MaxNameRunes.
func TruncateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown course"
	}
	return truncate(name, MaxNameRunes)
}

// GradeText renders the enrollment the way the panel shows it: the current
// score, else the final score, else "No grade yet".
func GradeText(e canvas.Enrollment) string {
	switch {
	case e.CurrentScore != nil:
		return scoreText("Current", *e.CurrentScore, e.CurrentGrade)
	case e.FinalScore != nil:
		return scoreText("Final", *e.FinalScore, e.LetterGrade)
	default:
		return "No grade yet"
	}
}

func scoreText(label string, score float64, letter *string) string {
	text := fmt.Sprintf("%s: %.1f%%", label, score)
	if letter != nil && strings.TrimSpace(*letter) != "" {
		text += " (" + strings.TrimSpace(*letter) + ")"
	}
	return text
}

// displayScore is the score GradeText reports, or nil.
func displayScore(e canvas.Enrollment) *float64 {
	if e.CurrentScore != nil {
		return e.CurrentScore
	}
	return e.FinalScore
}

// gradeBand maps a score to 0..3 for >=90, >=80, >=70 and below.
func gradeBand(score float64) int {
	switch {
	case score >= 90:
		return 0
	case score >= 80:
		return 1
	case score >= 70:
		return 2
	default:
		return 3
	}
}

// StatusLine summarises a view for the footer and headless output.
func StatusLine(v state.View) string {
	snap := v.Snapshot
	var parts []string
	if !snap.Timestamp.IsZero() {
		parts = append(parts, "Last updated: "+snap.Timestamp.Format("15:04"))
	} else {
		parts = append(parts, "Waiting for first refresh")
	}

	switch snap.Status {
	case state.StatusPartial:
		parts = append(parts, fmt.Sprintf("%d of %d courses unavailable", snap.Failures(), len(snap.Entries)))
	case state.StatusFailed:
		parts = append(parts, "all courses unavailable")
	}

	if err := v.Health.LastError; err != nil && v.Health.ConsecutiveFailures > 0 {
		msg := "Error: " + describeError(err)
		if v.Health.IsOffline() {
			msg += fmt.Sprintf(" (%d failed attempts)", v.Health.ConsecutiveFailures)
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, " · ")
}

// describeError turns the error taxonomy into a short user-facing phrase.
func describeError(err error) string {
	switch {
	case errors.Is(err, canvas.ErrAuth):
		return "Canvas rejected the API token"
	case errors.Is(err, canvas.ErrNetwork):
		return "Canvas is unreachable"
	case errors.Is(err, config.ErrConfigMissing):
		return "no settings saved yet"
	default:
		return truncate(err.Error(), 80)
	}
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}
