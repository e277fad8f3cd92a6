package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/readiness"
)

// State is a step of the render state machine.
type State string

const (
	StateIdle              State = "Idle"
	StateLaunching         State = "Launching"
	StatePageReady         State = "PageReady"
	StateContentInjected   State = "ContentInjected"
	StateAwaitingReadiness State = "AwaitingReadiness"
	StateRendering         State = "Rendering"
	StateDone              State = "Done"
	StateFailed            State = "Failed"
)

// Tunables.
const (
	DefaultReadyTimeout  = 30 * time.Second
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultSettleDelay   = 300 * time.Millisecond
	DefaultLaunchTimeout = 20 * time.Second
	// DefaultImageTimeout bounds the wait for pending images. Expiry is
	// logged and the capture proceeds.
	DefaultImageTimeout = 10 * time.Second
	// DefaultCaptureTimeout bounds the print call itself.
	DefaultCaptureTimeout = 30 * time.Second
)

// errMountFailed marks a document that reported it could not mount its
// content.
var errMountFailed = errors.New("document reported a mount error")

// VerifyFunc checks captured bytes and returns the page count.
type VerifyFunc func(pdf []byte) (int, error)

// Result is a successful capture.
type Result struct {
	PDF         []byte
	Pages       int
	FailedImage string
	Elapsed     time.Duration
}

// Controller runs one capture per call. Concurrent calls use independent
// sessions and share nothing but configuration.
type Controller struct {
	launcher       Launcher
	readyTimeout   time.Duration
	pollInterval   time.Duration
	settleDelay    time.Duration
	launchTimeout  time.Duration
	imageTimeout   time.Duration
	captureTimeout time.Duration
	viewport       Viewport
	verify         VerifyFunc
	observe        func(jobID string, s State)
	logger         *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

func WithReadyTimeout(d time.Duration) Option  { return func(c *Controller) { c.readyTimeout = d } }
func WithPollInterval(d time.Duration) Option  { return func(c *Controller) { c.pollInterval = d } }
func WithSettleDelay(d time.Duration) Option   { return func(c *Controller) { c.settleDelay = d } }
func WithLaunchTimeout(d time.Duration) Option { return func(c *Controller) { c.launchTimeout = d } }
func WithImageTimeout(d time.Duration) Option  { return func(c *Controller) { c.imageTimeout = d } }
func WithCaptureTimeout(d time.Duration) Option {
	return func(c *Controller) { c.captureTimeout = d }
}
func WithViewport(vp Viewport) Option   { return func(c *Controller) { c.viewport = vp } }
func WithVerifier(fn VerifyFunc) Option { return func(c *Controller) { c.verify = fn } }
func WithLogger(l *slog.Logger) Option  { return func(c *Controller) { c.logger = l } }

// WithObserver registers a hook that sees every state transition.
func WithObserver(fn func(jobID string, s State)) Option {
	return func(c *Controller) { c.observe = fn }
}

func NewController(l Launcher, opts ...Option) *Controller {
	c := &Controller{
		launcher:       l,
		readyTimeout:   DefaultReadyTimeout,
		pollInterval:   DefaultPollInterval,
		settleDelay:    DefaultSettleDelay,
		launchTimeout:  DefaultLaunchTimeout,
		imageTimeout:   DefaultImageTimeout,
		captureTimeout: DefaultCaptureTimeout,
		viewport:       A4Viewport,
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

type run struct {
	c      *Controller
	jobID  string
	state  State
	logger *slog.Logger
}

func (r *run) enter(s State) {
	r.state = s
	r.logger.Debug("capture: state", "state", string(s))
	if r.c.observe != nil {
		r.c.observe(r.jobID, s)
	}
}

// fail records the failure against the state it happened in.
func (r *run) fail(kind domain.ErrorKind, cause error) error {
	err := &domain.PipelineError{Kind: kind, State: string(r.state), Cause: cause}
	r.enter(StateFailed)
	r.logger.Error("capture: failed", "kind", string(kind), "error", err)
	return err
}

// Capture takes content through every state and returns the PDF. The
// session is closed exactly once on every path after a successful launch.
func (c *Controller) Capture(ctx context.Context, content Content) (Result, error) {
	start := time.Now()
	r := &run{c: c, jobID: content.JobID, logger: c.logger.With("job_id", content.JobID)}
	r.enter(StateIdle)

	r.enter(StateLaunching)
	sess, err := c.launch(ctx)
	if err != nil {
		return Result{}, r.fail(domain.KindLaunch, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			r.logger.Warn("capture: close session", "error", cerr)
		}
	}()

	if err := sess.OpenPage(ctx, c.viewport); err != nil {
		return Result{}, r.fail(domain.KindLaunch, fmt.Errorf("open page: %w", err))
	}
	r.enter(StatePageReady)

	switch content.Strategy {
	case domain.InjectRoute:
		err = sess.Navigate(ctx, content.URL, content.Storage)
	default:
		err = sess.SetContent(ctx, string(content.HTML))
	}
	if err != nil {
		return Result{}, r.fail(domain.KindNavigation, err)
	}
	r.enter(StateContentInjected)

	r.enter(StateAwaitingReadiness)
	if err := c.awaitReady(ctx, sess); err != nil {
		if errors.Is(err, errMountFailed) {
			return Result{}, r.fail(domain.KindNavigation, err)
		}
		return Result{}, r.fail(domain.KindReadinessTimeout, err)
	}

	r.enter(StateRendering)
	failed := c.waitImages(ctx, sess, r.logger)
	if err := sleep(ctx, c.settleDelay); err != nil {
		return Result{}, r.fail(domain.KindCapture, err)
	}
	pdf, err := c.print(ctx, sess)
	if err != nil {
		return Result{}, r.fail(domain.KindCapture, err)
	}
	pages := 0
	if c.verify != nil {
		if pages, err = c.verify(pdf); err != nil {
			return Result{}, r.fail(domain.KindCapture, fmt.Errorf("verify pdf: %w", err))
		}
		if pages == 0 {
			return Result{}, r.fail(domain.KindCapture, errors.New("verify pdf: document has no pages"))
		}
	} else if len(pdf) == 0 {
		return Result{}, r.fail(domain.KindCapture, errors.New("empty pdf"))
	}

	r.enter(StateDone)
	res := Result{PDF: pdf, Pages: pages, FailedImage: failed, Elapsed: time.Since(start)}
	r.logger.Info("capture: done", "bytes", len(pdf), "pages", pages, "elapsed", res.Elapsed)
	return res, nil
}

// launch bounds Launch by the launch timeout. A session that arrives after
// the deadline is closed in the background.
func (c *Controller) launch(ctx context.Context) (Session, error) {
	type launched struct {
		s   Session
		err error
	}
	ch := make(chan launched, 1)
	go func() {
		s, err := c.launcher.Launch(ctx)
		ch <- launched{s, err}
	}()

	timer := time.NewTimer(c.launchTimeout)
	defer timer.Stop()

	var cause error
	select {
	case l := <-ch:
		if l.err != nil {
			return nil, l.err
		}
		return l.s, nil
	case <-timer.C:
		cause = fmt.Errorf("browser did not start within %s", c.launchTimeout)
	case <-ctx.Done():
		cause = ctx.Err()
	}
	go func() {
		if l := <-ch; l.s != nil {
			_ = l.s.Close()
		}
	}()
	return nil, cause
}

// waitImages gives pending images up to the image timeout. Neither a
// broken image nor an expired wait stops the capture.
func (c *Controller) waitImages(ctx context.Context, sess Session, logger *slog.Logger) string {
	ictx, cancel := context.WithTimeout(ctx, c.imageTimeout)
	defer cancel()

	failed, err := sess.WaitImages(ictx)
	switch {
	case err != nil && ctx.Err() == nil && ictx.Err() != nil:
		logger.Warn("capture: images still loading, printing anyway", "timeout", c.imageTimeout)
	case err != nil:
		logger.Warn("capture: image wait", "error", err)
	case failed != "":
		logger.Warn("capture: image failed to load", "src", truncate(failed, 120))
	}
	return failed
}

func (c *Controller) print(ctx context.Context, sess Session) ([]byte, error) {
	pctx, cancel := context.WithTimeout(ctx, c.captureTimeout)
	defer cancel()

	pdf, err := sess.PrintPDF(pctx)
	if err != nil && ctx.Err() == nil && pctx.Err() != nil {
		return nil, fmt.Errorf("pdf capture did not finish within %s: %w", c.captureTimeout, err)
	}
	return pdf, err
}

// awaitReady polls the readiness flag until it reads ready or the bound
// expires. Poll errors are treated as transient.
func (c *Controller) awaitReady(ctx context.Context, sess Session) error {
	rctx, cancel := context.WithTimeout(ctx, c.readyTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	last, polls := "", 0
	var lastErr error
	for {
		polls++
		st, err := sess.ReadyState(rctx)
		switch {
		case err != nil:
			lastErr = err
		case st == readiness.StateReady:
			return nil
		case st == readiness.StateError:
			return fmt.Errorf("%w after %d polls", errMountFailed, polls)
		default:
			last = st
		}

		select {
		case <-rctx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			msg := fmt.Sprintf("readiness flag not raised within %s after %d polls", c.readyTimeout, polls)
			if last == readiness.StateAbsent {
				msg += "; mount point #" + readiness.RootID + " absent"
			}
			if lastErr != nil {
				return fmt.Errorf("%s: %w", msg, lastErr)
			}
			return errors.New(msg)
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
