package canvas

import (
	"context"
	"fmt"
	"sync"

	"github.com/juanzandev/CS487Project/internal/config"
)

// ConfigSource supplies the current connection settings.
type ConfigSource interface {
	Current() (config.Config, bool)
}

// Reloader is an API that rebuilds its Client whenever the base URL or token
// in the config source changes, so saved credentials apply on the next cycle
// without a restart.
type Reloader struct {
	src  ConfigSource
	opts []Option

	mu     sync.Mutex
	client *Client
	url    string
	token  string
}

var _ API = (*Reloader)(nil)

// NewReloader returns a Reloader reading from src.
func NewReloader(src ConfigSource, opts ...Option) *Reloader {
	return &Reloader{src: src, opts: opts}
}

// FetchCourses implements API.
func (r *Reloader) FetchCourses(ctx context.Context) ([]Course, error) {
	c, err := r.current()
	if err != nil {
		return nil, err
	}
	return c.FetchCourses(ctx)
}

// FetchEnrollment implements API.
func (r *Reloader) FetchEnrollment(ctx context.Context, courseID int64) (Enrollment, error) {
	c, err := r.current()
	if err != nil {
		return Enrollment{}, err
	}
	return c.FetchEnrollment(ctx, courseID)
}

func (r *Reloader) current() (*Client, error) {
	cfg, ok := r.src.Current()
	if !ok {
		return nil, fmt.Errorf("%w: no settings loaded", config.ErrConfigMissing)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil && r.url == cfg.BaseURL && r.token == cfg.APIToken {
		return r.client, nil
	}
	c, err := NewClient(cfg.BaseURL, cfg.APIToken, r.opts...)
	if err != nil {
		return nil, err
	}
	r.client, r.url, r.token = c, cfg.BaseURL, cfg.APIToken
	return c, nil
}
