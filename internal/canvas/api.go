package canvas

import "context"

//go:generate mockgen -destination=mocks/mock_api.go -package=mocks -source=api.go API

// API is the capability the poller consumes. *Client implements it.
type API interface {
	FetchCourses(ctx context.Context) ([]Course, error)
	FetchEnrollment(ctx context.Context, courseID int64) (Enrollment, error)
}

var _ API = (*Client)(nil)
