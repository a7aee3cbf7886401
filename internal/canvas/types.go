package canvas

// Course is one active course of the authenticated user.
type Course struct {
	ID              int64
	Name            string
	CourseCode      string
	Term            string
	EnrollmentState string
}

// courseWire mirrors the subset of /api/v1/courses we read.
type courseWire struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CourseCode  string `json:"course_code"`
	Enrollments []struct {
		EnrollmentState string `json:"enrollment_state"`
	} `json:"enrollments"`
	Term *struct {
		Name string `json:"name"`
	} `json:"term"`
	AccessRestricted bool `json:"access_restricted_by_date"`
}

func (w courseWire) course() Course {
	c := Course{
		ID:              w.ID,
		Name:            w.Name,
		CourseCode:      w.CourseCode,
		EnrollmentState: "active",
	}
	if w.Term != nil {
		c.Term = w.Term.Name
	}
	if len(w.Enrollments) > 0 && w.Enrollments[0].EnrollmentState != "" {
		c.EnrollmentState = w.Enrollments[0].EnrollmentState
	}
	return c
}

// Enrollment holds the grade fields for one course. Any field may be nil when
// Canvas has nothing to report or the fetch failed.
type Enrollment struct {
	CourseID     int64
	CurrentScore *float64
	FinalScore   *float64
	CurrentGrade *string
	LetterGrade  *string
}

// HasGrade reports whether any grade field is present.
func (e Enrollment) HasGrade() bool {
	return e.CurrentScore != nil || e.FinalScore != nil || e.CurrentGrade != nil || e.LetterGrade != nil
}

// SameGrades compares the grade fields, ignoring CourseID.
func (e Enrollment) SameGrades(other Enrollment) bool {
	return eqFloat(e.CurrentScore, other.CurrentScore) &&
		eqFloat(e.FinalScore, other.FinalScore) &&
		eqString(e.CurrentGrade, other.CurrentGrade) &&
		eqString(e.LetterGrade, other.LetterGrade)
}

// Clone returns a deep copy so callers cannot alias cached pointers.
func (e Enrollment) Clone() Enrollment {
	out := Enrollment{CourseID: e.CourseID}
	if e.CurrentScore != nil {
		v := *e.CurrentScore
		out.CurrentScore = &v
	}
	if e.FinalScore != nil {
		v := *e.FinalScore
		out.FinalScore = &v
	}
	if e.CurrentGrade != nil {
		v := *e.CurrentGrade
		out.CurrentGrade = &v
	}
	if e.LetterGrade != nil {
		v := *e.LetterGrade
		out.LetterGrade = &v
	}
	return out
}

func eqFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
