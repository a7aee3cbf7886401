package canvas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/juanzandev/CS487Project/internal/config"
)

func TestParseBaseURL_Normalizes(t *testing.T) {
	u, err := parseBaseURL("x.instructure.com/courses?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "https://x.instructure.com" {
		t.Fatalf("parseBaseURL = %q, want https://x.instructure.com", u.String())
	}
	if _, err := parseBaseURL("   "); err == nil {
		t.Fatalf("parseBaseURL accepted an empty url")
	}
}

func TestClient_FetchesCoursesAndEnrollment(t *testing.T) {
	t.Parallel()

	var gotAuth, gotUserAgent string
	var gotCoursesQuery, gotEnrollQuery url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/v1/courses":
			gotCoursesQuery = r.URL.Query()
			_, _ = fmt.Fprint(w, `[
				{"id": 2, "name": "Art", "course_code": "ART-1", "term": {"name": "Fall"}},
				{"id": 9, "access_restricted_by_date": true},
				{"id": 1, "name": "Math", "course_code": "MATH-1", "term": null,
				 "enrollments": [{"enrollment_state": "invited"}]}
			]`)
		case "/api/v1/courses/1/enrollments":
			gotEnrollQuery = r.URL.Query()
			_, _ = fmt.Fprint(w, `[{"grades": {"current_score": 92.0, "final_score": null, "current_grade": "A", "final_grade": null}}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "abc")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	courses, err := c.FetchCourses(ctx)
	if err != nil {
		t.Fatalf("FetchCourses returned error: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("FetchCourses returned %d courses, want 2 (restricted skipped)", len(courses))
	}
	if courses[0].Name != "Art" || courses[0].Term != "Fall" || courses[0].EnrollmentState != "active" {
		t.Fatalf("courses[0] = %+v", courses[0])
	}
	if courses[1].EnrollmentState != "invited" || courses[1].Term != "" {
		t.Fatalf("courses[1] = %+v", courses[1])
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotUserAgent != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUserAgent, defaultUserAgent)
	}
	if gotCoursesQuery.Get("enrollment_state") != "active" || gotCoursesQuery.Get("include[]") != "term" || gotCoursesQuery.Get("per_page") != "100" {
		t.Fatalf("courses query = %v", gotCoursesQuery)
	}

	enr, err := c.FetchEnrollment(ctx, 1)
	if err != nil {
		t.Fatalf("FetchEnrollment returned error: %v", err)
	}
	if enr.CourseID != 1 || enr.CurrentScore == nil || *enr.CurrentScore != 92.0 {
		t.Fatalf("FetchEnrollment = %+v, want current score 92", enr)
	}
	if enr.FinalScore != nil || enr.LetterGrade != nil {
		t.Fatalf("null fields were not preserved as nil: %+v", enr)
	}
	if enr.CurrentGrade == nil || *enr.CurrentGrade != "A" {
		t.Fatalf("CurrentGrade = %v, want A", enr.CurrentGrade)
	}
	if gotEnrollQuery.Get("type[]") != "StudentEnrollment" || gotEnrollQuery.Get("include[]") != "grades" || gotEnrollQuery.Get("user_id") != "self" {
		t.Fatalf("enrollment query = %v", gotEnrollQuery)
	}
}

func TestClient_FollowsNextLink(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_, _ = fmt.Fprint(w, `[{"id": 3, "name": "History"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2>; rel="next", <%s/api/v1/courses?page=2>; rel="last"`, server.URL, server.URL))
		_, _ = fmt.Fprint(w, `[{"id": 1, "name": "Math"}]`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "abc")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	courses, err := c.FetchCourses(context.Background())
	if err != nil {
		t.Fatalf("FetchCourses returned error: %v", err)
	}
	if len(courses) != 2 || courses[1].ID != 3 {
		t.Fatalf("FetchCourses = %+v, want both pages", courses)
	}
}

func TestClient_EmptyEnrollmentHasNilFields(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, "abc")
	enr, err := c.FetchEnrollment(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchEnrollment returned error: %v", err)
	}
	if enr.CourseID != 7 || enr.HasGrade() {
		t.Fatalf("FetchEnrollment = %+v, want empty enrollment for course 7", enr)
	}
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  int
		auth    bool
		network bool
	}{
		{http.StatusUnauthorized, true, false},
		{http.StatusForbidden, true, false},
		{http.StatusInternalServerError, false, true},
		{http.StatusBadGateway, false, true},
		{http.StatusTooManyRequests, false, true},
		{http.StatusNotFound, false, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			t.Cleanup(server.Close)

			c, _ := NewClient(server.URL, "abc")
			_, err := c.FetchCourses(context.Background())
			if err == nil {
				t.Fatalf("FetchCourses returned nil error for status %d", tt.status)
			}
			var herr *HTTPError
			if !errors.As(err, &herr) || herr.StatusCode != tt.status || herr.Path != "/api/v1/courses" {
				t.Fatalf("error = %v, want HTTPError %d", err, tt.status)
			}
			if errors.Is(err, ErrAuth) != tt.auth {
				t.Fatalf("errors.Is(ErrAuth) = %v, want %v", !tt.auth, tt.auth)
			}
			if Retryable(err) != tt.network {
				t.Fatalf("Retryable = %v, want %v", !tt.network, tt.network)
			}
		})
	}
}

func TestClient_UnreachableIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, _ := NewClient(addr, "abc")
	_, err := c.FetchEnrollment(context.Background(), 1)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
}

func TestProber_UsesCandidateCredentials(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/self" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		if !strings.HasSuffix(r.Header.Get("Authorization"), " good") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = fmt.Fprint(w, `{"id": 5}`)
	}))
	t.Cleanup(server.Close)

	p := NewProber()
	good := config.Config{BaseURL: server.URL, APIToken: "good"}
	if err := p.Probe(context.Background(), good); err != nil {
		t.Fatalf("Probe(good) returned error: %v", err)
	}
	bad := config.Config{BaseURL: server.URL, APIToken: "bad"}
	if err := p.Probe(context.Background(), bad); !errors.Is(err, ErrAuth) {
		t.Fatalf("Probe(bad) error = %v, want ErrAuth", err)
	}
}

func TestEnrollment_SameGradesAndClone(t *testing.T) {
	score := 88.5
	a := Enrollment{CourseID: 1, CurrentScore: &score}
	b := a.Clone()
	if !a.SameGrades(b) {
		t.Fatalf("clone differs from original")
	}
	*b.CurrentScore = 90
	if *a.CurrentScore != 88.5 {
		t.Fatalf("Clone aliased the score pointer")
	}
	if a.SameGrades(b) {
		t.Fatalf("SameGrades ignored a changed score")
	}
	if a.SameGrades(Enrollment{CourseID: 1}) {
		t.Fatalf("SameGrades treated nil and 88.5 as equal")
	}
}
