package state

// Changes returns the ids of courses present in both snapshots whose grade
// fields differ. Failed entries on either side are skipped, and so are courses
// that appeared or disappeared. The result is advisory.
func Changes(prev, cur Snapshot) []int64 {
	if prev.Empty() || cur.Empty() {
		return nil
	}
	before := make(map[int64]Entry, len(prev.Entries))
	for _, e := range prev.Entries {
		before[e.Course.ID] = e
	}
	var changed []int64
	for _, e := range cur.Entries {
		old, ok := before[e.Course.ID]
		if !ok || old.Failed() || e.Failed() {
			continue
		}
		if !old.Enrollment.SameGrades(e.Enrollment) {
			changed = append(changed, e.Course.ID)
		}
	}
	return changed
}
