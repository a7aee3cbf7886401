package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/juanzandev/CS487Project/internal/config"
)

const (
	defaultUserAgent  = "gradewidget/0.1"
	coursesTimeout    = 10 * time.Second
	enrollmentTimeout = 5 * time.Second
	probeTimeout      = 10 * time.Second
	coursesPerPage    = 100
	maxCoursePages    = 10
	maxBodyBytes      = 4 << 20
)

// Client talks to the Canvas REST API with a bearer token.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// Option customises a Client.
type Option func(*Client)

// WithBaseTransport sets the transport underneath the bearer-token layer.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if t, ok := c.http.Transport.(*oauth2.Transport); ok && rt != nil {
			t.Base = rt
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for baseURL authenticated with token.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("api token is empty")
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(token), TokenType: "Bearer"})
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Transport: &oauth2.Transport{Source: src, Base: http.DefaultTransport},
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchCourses lists the user's active courses, following pagination.
func (c *Client) FetchCourses(ctx context.Context) ([]Course, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, coursesTimeout)
	defer cancel()

	values := url.Values{}
	values.Set("enrollment_state", "active")
	values.Add("include[]", "term")
	values.Set("per_page", strconv.Itoa(coursesPerPage))
	next := c.baseURL.ResolveReference(&url.URL{Path: "/api/v1/courses", RawQuery: values.Encode()})

	var courses []Course
	for page := 0; next != nil && page < maxCoursePages; page++ {
		body, header, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		var wire []courseWire
		if err := json.Unmarshal(body, &wire); err != nil {
			return nil, fmt.Errorf("decode courses: %w", err)
		}
		for _, w := range wire {
			// Courses outside their access dates come back without a name.
			if w.AccessRestricted || strings.TrimSpace(w.Name) == "" {
				continue
			}
			courses = append(courses, w.course())
		}
		next = c.nextPage(header.Get("Link"))
	}
	return courses, nil
}

// FetchEnrollment returns the user's grades in one course. A course without a
// student enrollment yields an Enrollment with nil fields.
func (c *Client) FetchEnrollment(ctx context.Context, courseID int64) (Enrollment, error) {
	if c == nil {
		return Enrollment{}, fmt.Errorf("client is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, enrollmentTimeout)
	defer cancel()

	values := url.Values{}
	values.Add("type[]", "StudentEnrollment")
	values.Add("include[]", "grades")
	values.Set("user_id", "self")
	rel := &url.URL{
		Path:     "/api/v1/courses/" + strconv.FormatInt(courseID, 10) + "/enrollments",
		RawQuery: values.Encode(),
	}
	body, _, err := c.get(ctx, c.baseURL.ResolveReference(rel))
	if err != nil {
		return Enrollment{}, err
	}
	return parseEnrollment(courseID, body)
}

// Probe performs a read-only request that succeeds only with valid credentials.
func (c *Client) Probe(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	_, _, err := c.get(ctx, c.baseURL.ResolveReference(&url.URL{Path: "/api/v1/users/self"}))
	return err
}

// NewProber returns a config.Prober that checks candidate credentials with a
// throwaway Client.
func NewProber(opts ...Option) config.Prober {
	return config.ProberFunc(func(ctx context.Context, cfg config.Config) error {
		c, err := NewClient(cfg.BaseURL, cfg.APIToken, opts...)
		if err != nil {
			return err
		}
		return c.Probe(ctx)
	})
}

func (c *Client) get(ctx context.Context, reqURL *url.URL) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrNetwork, reqURL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, Path: reqURL.Path}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %w", ErrNetwork, reqURL.Path, err)
	}
	return body, resp.Header, nil
}

// nextPage extracts rel="next" from a Link header, staying on the same host.
func (c *Client) nextPage(link string) *url.URL {
	for _, part := range strings.Split(link, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		isNext := false
		for _, p := range segs[1:] {
			if strings.TrimSpace(p) == `rel="next"` {
				isNext = true
			}
		}
		if !isNext {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(segs[0]), "<>")
		u, err := url.Parse(raw)
		if err != nil || (u.Host != "" && u.Host != c.baseURL.Host) {
			return nil
		}
		return c.baseURL.ResolveReference(u)
	}
	return nil
}

func parseEnrollment(courseID int64, body []byte) (Enrollment, error) {
	if !gjson.ValidBytes(body) {
		return Enrollment{}, fmt.Errorf("decode enrollment for course %d: invalid json", courseID)
	}
	out := Enrollment{CourseID: courseID}
	grades := gjson.GetBytes(body, "0.grades")
	if !grades.Exists() {
		return out, nil
	}
	out.CurrentScore = floatField(grades, "current_score")
	out.FinalScore = floatField(grades, "final_score")
	out.CurrentGrade = stringField(grades, "current_grade")
	out.LetterGrade = stringField(grades, "final_grade")
	return out, nil
}

func floatField(obj gjson.Result, key string) *float64 {
	r := obj.Get(key)
	if r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}

func stringField(obj gjson.Result, key string) *string {
	r := obj.Get(key)
	if r.Type != gjson.String || strings.TrimSpace(r.Str) == "" {
		return nil
	}
	v := r.Str
	return &v
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
