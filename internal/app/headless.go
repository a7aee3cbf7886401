package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/juanzandev/CS487Project/internal/config"
	"github.com/juanzandev/CS487Project/internal/state"
	"github.com/juanzandev/CS487Project/internal/ui"
)

// ErrCycleFailed is returned by a headless run whose refresh produced no
// usable grades.
var ErrCycleFailed = errors.New("refresh cycle failed")

// CycleRunner performs a single refresh. *poller.Poller implements it.
type CycleRunner interface {
	RunOnce(ctx context.Context) (state.View, error)
}

// runHeadless loads the settings, runs one cycle and prints the snapshot.
func runHeadless(ctx context.Context, out io.Writer, store *config.Store, runner CycleRunner) error {
	if _, err := store.Load(); err != nil {
		if errors.Is(err, config.ErrConfigMissing) {
			tmpl, werr := store.WriteTemplate()
			if werr != nil {
				return fmt.Errorf("%w (writing template failed: %v)", err, werr)
			}
			return fmt.Errorf("%w: copy %s to %s and fill in your Canvas URL and token", err, tmpl, store.Path())
		}
		return fmt.Errorf("load config: %w", err)
	}

	view, err := runner.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCycleFailed, err)
	}
	if err := writeSnapshot(out, view); err != nil {
		return fmt.Errorf("print snapshot: %w", err)
	}
	if view.Snapshot.Status == state.StatusFailed {
		return fmt.Errorf("%w: all %d course requests failed", ErrCycleFailed, len(view.Snapshot.Entries))
	}
	return nil
}

func writeSnapshot(out io.Writer, view state.View) error {
	snap := view.Snapshot
	if len(snap.Entries) == 0 {
		_, err := fmt.Fprintln(out, "No active courses.")
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Course", "Code", "Term", "Grade")
	for _, e := range snap.Entries {
		grade := ui.GradeText(e.Enrollment)
		if e.Failed() {
			grade = "unavailable"
		}
		row := []string{ui.TruncateName(e.Course.Name), e.Course.CourseCode, e.Course.Term, grade}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, ui.StatusLine(view))
	return err
}
