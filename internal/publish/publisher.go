// Package publish fans cache updates out to subscribers without letting a slow
// reader hold up the poller.
//
// Each subscription is a one-slot mailbox. Publishing overwrites whatever the
// reader has not picked up yet, so a busy reader wakes to the newest View
// instead of a backlog. Views are ordered by state.View.Seq; anything not
// newer than the last published View is dropped.
package publish

import (
	"sync"

	"github.com/juanzandev/CS487Project/internal/state"
)

// Publisher delivers state.View values to zero or more subscribers.
type Publisher struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	latest state.View
	has    bool
	closed bool
}

// New returns an empty Publisher.
func New() *Publisher {
	return &Publisher{subs: make(map[*Subscription]struct{})}
}

// Subscription is one reader's mailbox.
type Subscription struct {
	p  *Publisher
	ch chan state.View
}

// C returns the channel to receive from. It is closed by Close or
// Publisher.Close.
func (s *Subscription) C() <-chan state.View {
	return s.ch
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	if _, ok := s.p.subs[s]; ok {
		delete(s.p.subs, s)
		close(s.ch)
	}
}

// Subscribe registers a reader. When a View has already been published the
// mailbox starts with it.
func (p *Publisher) Subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &Subscription{p: p, ch: make(chan state.View, 1)}
	if p.closed {
		close(sub.ch)
		return sub
	}
	if p.has {
		sub.ch <- p.latest
	}
	p.subs[sub] = struct{}{}
	return sub
}

// Publish hands v to every subscriber, replacing any undelivered View. It
// never blocks on a reader. It reports whether v was accepted.
func (p *Publisher) Publish(v state.View) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || (p.has && v.Seq <= p.latest.Seq) {
		return false
	}
	p.latest = v
	p.has = true
	for sub := range p.subs {
		// Only Publish sends, and it holds p.mu, so after the drain the
		// send cannot block.
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- v
	}
	return true
}

// Latest returns the last published View.
func (p *Publisher) Latest() (state.View, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.has
}

// Subscribers returns the number of attached subscriptions.
func (p *Publisher) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Close detaches and closes every subscription. Later Publish calls are no-ops.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for sub := range p.subs {
		delete(p.subs, sub)
		close(sub.ch)
	}
}
