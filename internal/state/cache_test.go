package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/juanzandev/CS487Project/internal/canvas"
)

func score(v float64) *float64 { return &v }

func entry(id int64, name string, current *float64) Entry {
	return Entry{
		Course:     canvas.Course{ID: id, Name: name},
		Enrollment: canvas.Enrollment{CourseID: id, CurrentScore: current},
	}
}

func failedEntry(id int64, name string) Entry {
	return Entry{Course: canvas.Course{ID: id, Name: name}, Err: "canvas unreachable"}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		total, failed int
		want          FetchStatus
	}{
		{0, 0, StatusComplete},
		{3, 0, StatusComplete},
		{3, 1, StatusPartial},
		{3, 2, StatusPartial},
		{3, 3, StatusFailed},
		{1, 1, StatusFailed},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.total, tt.failed); got != tt.want {
			t.Fatalf("StatusFor(%d, %d) = %q, want %q", tt.total, tt.failed, got, tt.want)
		}
	}
}

func TestNewSnapshot_SortsAndDerivesStatus(t *testing.T) {
	now := time.Now()
	bad := failedEntry(2, "Art")
	bad.Enrollment.CurrentScore = score(50)

	snap := NewSnapshot("c1", now, []Entry{bad, entry(1, "Math", score(92))})

	if snap.Status != StatusPartial {
		t.Fatalf("Status = %q, want partial", snap.Status)
	}
	if snap.Entries[0].Course.ID != 1 || snap.Entries[1].Course.ID != 2 {
		t.Fatalf("entries not ordered by id: %+v", snap.Entries)
	}
	if snap.Entries[1].Enrollment.HasGrade() {
		t.Fatalf("failed entry kept grade fields: %+v", snap.Entries[1].Enrollment)
	}
	if snap.Failures() != 1 {
		t.Fatalf("Failures = %d, want 1", snap.Failures())
	}
	if e, ok := snap.Entry(1); !ok || *e.Enrollment.CurrentScore != 92 {
		t.Fatalf("Entry(1) = %+v, %v", e, ok)
	}
}

func TestCache_EmptyBeforeFirstReplace(t *testing.T) {
	var c Cache
	if !c.Current().Empty() {
		t.Fatalf("Current on a new cache should be the empty sentinel")
	}
	if v := c.View(); v.Seq != 0 || v.Health.ConsecutiveFailures != 0 {
		t.Fatalf("View on a new cache = %+v", v)
	}
}

func TestCache_ReplaceAndCurrentClone(t *testing.T) {
	var c Cache
	snap := NewSnapshot("c1", time.Now(), []Entry{entry(1, "Math", score(92))})

	view := c.Replace(snap)
	if view.Seq != 1 || view.Snapshot.CycleID != "c1" {
		t.Fatalf("Replace view = %+v", view)
	}

	got := c.Current()
	got.Entries[0].Course.Name = "mutated"
	*got.Entries[0].Enrollment.CurrentScore = 0

	again := c.Current()
	if again.Entries[0].Course.Name != "Math" || *again.Entries[0].Enrollment.CurrentScore != 92 {
		t.Fatalf("Current should return deep copies; got %+v", again.Entries[0])
	}
}

func TestCache_RecordFailureKeepsSnapshot(t *testing.T) {
	var c Cache
	snap := NewSnapshot("c1", time.Now(), []Entry{entry(1, "Math", score(92))})
	c.Replace(snap)
	before := c.Current()

	boom := errors.New("boom")
	at := time.Now()
	view := c.RecordFailure(boom, at)

	after := c.Current()
	if after.CycleID != before.CycleID || len(after.Entries) != 1 || *after.Entries[0].Enrollment.CurrentScore != 92 {
		t.Fatalf("RecordFailure changed the snapshot: %+v", after)
	}
	if !errors.Is(view.Health.LastError, boom) || view.Health.ConsecutiveFailures != 1 || !view.Health.LastAttempt.Equal(at) {
		t.Fatalf("health = %+v", view.Health)
	}
	if view.Seq != 2 {
		t.Fatalf("Seq = %d, want 2", view.Seq)
	}

	c.RecordFailure(boom, at)
	if !c.View().Health.IsOffline() {
		t.Fatalf("two failures in a row should report offline")
	}

	c.Replace(NewSnapshot("c2", time.Now(), []Entry{entry(1, "Math", score(92))}))
	if h := c.View().Health; h.ConsecutiveFailures != 0 || h.LastError != nil {
		t.Fatalf("successful replace did not reset health: %+v", h)
	}
}

func TestCache_AllFailedSnapshotCountsAsFailure(t *testing.T) {
	var c Cache
	view := c.Replace(NewSnapshot("c1", time.Now(), []Entry{failedEntry(1, "Math")}))
	if view.Snapshot.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", view.Snapshot.Status)
	}
	if !errors.Is(view.Health.LastError, ErrAllCoursesFailed) || view.Health.ConsecutiveFailures != 1 {
		t.Fatalf("health = %+v", view.Health)
	}
}

func TestChanges_ExactlyTheChangedCourse(t *testing.T) {
	var c Cache
	c.Replace(NewSnapshot("c1", time.Now(), []Entry{
		entry(1, "Math", score(92)),
		entry(2, "Art", score(80)),
		entry(3, "History", nil),
	}))
	view := c.Replace(NewSnapshot("c2", time.Now(), []Entry{
		entry(1, "Math", score(92)),
		entry(2, "Art", score(81.5)),
		entry(3, "History", nil),
	}))

	if len(view.Changed) != 1 || view.Changed[0] != 2 {
		t.Fatalf("Changed = %v, want [2]", view.Changed)
	}
	if !view.HasChanged(2) || view.HasChanged(1) {
		t.Fatalf("HasChanged disagrees with Changed = %v", view.Changed)
	}
	if c.Previous().CycleID != "c1" {
		t.Fatalf("Previous = %q, want c1", c.Previous().CycleID)
	}
}

func TestCache_RecordFailureClearsChangeSet(t *testing.T) {
	var c Cache
	c.Replace(NewSnapshot("c1", time.Now(), []Entry{entry(1, "Math", score(92))}))
	view := c.Replace(NewSnapshot("c2", time.Now(), []Entry{entry(1, "Math", score(95))}))
	if !view.HasChanged(1) {
		t.Fatalf("Changed = %v, want [1]", view.Changed)
	}

	view = c.RecordFailure(errors.New("boom"), time.Now())
	if len(view.Changed) != 0 || view.HasChanged(1) {
		t.Fatalf("failure kept the previous change-set %v", view.Changed)
	}
	if c.Current().CycleID != "c2" {
		t.Fatalf("Current = %q, want c2", c.Current().CycleID)
	}
}

func TestChanges_SkipsFailedAndNewCourses(t *testing.T) {
	prev := NewSnapshot("c1", time.Now(), []Entry{
		entry(1, "Math", score(92)),
		entry(2, "Art", score(80)),
	})
	cur := NewSnapshot("c2", time.Now(), []Entry{
		failedEntry(1, "Math"),
		entry(2, "Art", score(80)),
		entry(4, "New", score(70)),
	})
	if got := Changes(prev, cur); len(got) != 0 {
		t.Fatalf("Changes = %v, want none", got)
	}
	if got := Changes(Snapshot{}, cur); got != nil {
		t.Fatalf("Changes against empty = %v, want nil", got)
	}
}

func TestCache_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	var c Cache
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			n := int64(i%5 + 1)
			entries := make([]Entry, n)
			for j := range entries {
				entries[j] = entry(int64(j+1), "c", score(float64(i)))
			}
			c.Replace(NewSnapshot("x", time.Now(), entries))
		}
		close(done)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				v := c.View()
				if v.Snapshot.Empty() {
					continue
				}
				first := *v.Snapshot.Entries[0].Enrollment.CurrentScore
				for _, e := range v.Snapshot.Entries {
					if *e.Enrollment.CurrentScore != first {
						t.Errorf("torn snapshot: %v vs %v", *e.Enrollment.CurrentScore, first)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
