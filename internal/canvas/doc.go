// Package canvas provides the HTTP client for the Canvas LMS REST API.
//
// Only two read endpoints feed the widget:
//
//   - GET /api/v1/courses?enrollment_state=active&include[]=term&per_page=100
//   - GET /api/v1/courses/{id}/enrollments?type[]=StudentEnrollment&include[]=grades&user_id=self
//
// plus GET /api/v1/users/self as a side-effect-free credential probe.
//
// Requests carry the API token as a bearer header through an oauth2 static
// token transport. Course pages follow the Link rel="next" header. Grade
// fields are read with gjson so that JSON null stays nil instead of becoming
// a zero score.
//
// Failures map onto two sentinels: ErrAuth for 401/403 and ErrNetwork for
// timeouts, unreachable hosts, 429 and 5xx. Use errors.Is to classify.
package canvas
