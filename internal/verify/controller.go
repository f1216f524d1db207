// Package verify runs the eligibility check for one selected scheme: collect
// a profile, send it, show the verdict.
package verify

import (
	"context"
	"errors"
	"sync"
	"time"

	"schemebot/internal/metrics"
	"schemebot/pkg/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const AlertVerifyFailed = "Error verifying eligibility"

var (
	ErrNotAccepting = errors.New("verification is not accepting input")
	ErrClosed       = errors.New("verification is closed")
)

type Verifier interface {
	Verify(ctx context.Context, schemeName string, profile types.UserProfile) (*types.VerificationResult, error)
}

type Step string

const (
	StepInput   Step = "input"
	StepLoading Step = "loading"
	StepResult  Step = "result"
	StepClosed  Step = "closed"
)

type View struct {
	ID     string
	Scheme types.SchemeSummary
	Step   Step
	Form   types.UserProfileForm
	Error  string
	Result *types.VerificationResult
}

// Controller is one verification workflow. It is discarded on Close; opening
// the same scheme again means building a new Controller.
type Controller struct {
	id       string
	scheme   types.SchemeSummary
	verifier Verifier
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	step     Step
	form     types.UserProfileForm
	formErr  string
	alert    string
	result   *types.VerificationResult
	attempts int
}

func NewController(scheme types.SchemeSummary, verifier Verifier, logger logrus.FieldLogger, m *metrics.Metrics, timeout time.Duration) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Controller{
		id:       id,
		scheme:   scheme,
		verifier: verifier,
		logger: logger.WithFields(logrus.Fields{
			"component":       "verify",
			"verification_id": id,
			"scheme":          scheme.Name,
		}),
		metrics: m,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
		step:    StepInput,
		form:    types.DefaultUserProfileForm(),
	}
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Scheme() types.SchemeSummary {
	return c.scheme
}

// Submit validates form and starts the request. The returned channel closes
// once the response has been applied or discarded.
func (c *Controller) Submit(form types.UserProfileForm) (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.step {
	case StepClosed:
		return nil, ErrClosed
	case StepInput:
	default:
		return nil, ErrNotAccepting
	}

	c.form = form
	profile, err := types.ParseUserProfile(form)
	if err != nil {
		c.formErr = err.Error()
		return nil, err
	}

	c.formErr = ""
	c.step = StepLoading
	c.attempts++
	attempt := c.attempts

	ctx, cancel := c.requestContext()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer cancel()

		result, err := c.verifier.Verify(ctx, c.scheme.Name, profile)
		c.apply(attempt, result, err)
	}()

	return done, nil
}

func (c *Controller) requestContext() (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(c.ctx, c.timeout)
	}
	return context.WithCancel(c.ctx)
}

func (c *Controller) apply(attempt int, result *types.VerificationResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepLoading || attempt != c.attempts {
		c.metrics.IncrementVerificationDiscarded()
		c.logger.WithField("step", c.step).Debug("discarding verification response")
		return
	}

	if err != nil {
		c.logger.WithError(err).Warn("verification request failed")
		c.step = StepInput
		c.alert = AlertVerifyFailed
		return
	}

	c.logger.WithFields(logrus.Fields{
		"verdict": result.Verdict,
		"reasons": len(result.Reasons),
	}).Info("verification completed")

	c.result = result
	c.step = StepResult
}

// TakeAlert returns the pending alert, if any, and clears it.
func (c *Controller) TakeAlert() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	alert := c.alert
	c.alert = ""
	return alert
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return View{
		ID:     c.id,
		Scheme: c.scheme,
		Step:   c.step,
		Form:   c.form,
		Error:  c.formErr,
		Result: c.result,
	}
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Close ends the workflow from any step. A request still in flight is
// cancelled and whatever it returns is ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.step = StepClosed
	c.mu.Unlock()

	c.cancel()
}
