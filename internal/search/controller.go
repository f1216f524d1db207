// Package search owns the visitor-facing state of a scheme search: the query,
// the ranked results and whether a request is in flight.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"schemebot/internal/metrics"
	"schemebot/pkg/types"

	"github.com/sirupsen/logrus"
)

type Searcher interface {
	Search(ctx context.Context, query string) (types.SearchOutcome, error)
}

// State is a snapshot; callers may keep it after the controller moves on.
type State struct {
	Query      string
	Results    []types.SchemeSummary
	Loading    bool
	Failed     bool
	Generation uint64
}

// Searched reports whether a search has completed for the current query.
func (s State) Searched() bool {
	return s.Query != "" && !s.Loading
}

// Lookup finds a result by scheme name.
func (s State) Lookup(name string) (types.SchemeSummary, bool) {
	for _, r := range s.Results {
		if r.Name == name {
			return r, true
		}
	}
	return types.SchemeSummary{}, false
}

type Controller struct {
	searcher Searcher
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	inflight context.CancelFunc
	closed   bool
}

func NewController(searcher Searcher, logger logrus.FieldLogger, m *metrics.Metrics, timeout time.Duration) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		searcher: searcher,
		logger:   logger.WithField("component", "search"),
		metrics:  m,
		timeout:  timeout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Search issues a request for query and returns a channel closed once its
// outcome has been applied or discarded. Blank queries are ignored: nothing
// is sent and the current state is left as it was.
func (c *Controller) Search(query string) (<-chan struct{}, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, false
	}

	if c.inflight != nil {
		c.inflight()
	}

	c.state.Generation++
	generation := c.state.Generation
	c.state.Query = query
	c.state.Loading = true
	c.state.Failed = false

	ctx, cancel := c.requestContext()
	c.inflight = cancel
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		outcome, err := c.searcher.Search(ctx, query)
		c.apply(generation, query, outcome, err)
	}()

	return done, true
}

func (c *Controller) requestContext() (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(c.ctx, c.timeout)
	}
	return context.WithCancel(c.ctx)
}

func (c *Controller) apply(generation uint64, query string, outcome types.SearchOutcome, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.metrics.IncrementSearchDiscarded()
		c.logger.WithField("generation", generation).Debug("discarding search response after close")
		return
	}

	if generation != c.state.Generation {
		c.metrics.IncrementSearchSuperseded()
		c.logger.WithFields(logrus.Fields{
			"generation": generation,
			"latest":     c.state.Generation,
		}).Debug("discarding stale search response")
		return
	}

	c.state.Loading = false
	c.inflight = nil

	switch {
	case err != nil:
		c.logger.WithError(err).WithField("query", query).Warn("search request failed")
		c.state.Results = nil
		c.state.Failed = true
	case !outcome.Matched():
		c.logger.WithFields(logrus.Fields{
			"query":  query,
			"status": outcome.Status,
		}).Info("search returned no matches")
		c.state.Results = nil
	default:
		c.state.Results = outcome.Results
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Results = append([]types.SchemeSummary(nil), c.state.Results...)
	return s
}

// Close cancels any request in flight. Responses arriving afterwards are
// dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.inflight = nil
	c.state.Loading = false
	c.mu.Unlock()

	c.cancel()
}
