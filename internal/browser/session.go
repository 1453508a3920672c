package browser

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"shopharness/internal/contract"
	"shopharness/pkg/logging"
)

// Default timeouts for the different wait classes. Every external wait in
// the harness carries one of these unless the configuration overrides it.
const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultElementTimeout    = 5 * time.Second
	DefaultShortWait         = 2 * time.Second
	DefaultFinishTimeout     = 30 * time.Second
)

// Options configure the browser fleet.
type Options struct {
	// Headless disables the visible browser window.
	Headless bool
	// SlowMo inserts a pause after every action, for watching a run.
	SlowMo time.Duration
	// UserAgent overrides the browser's user agent when non-empty.
	UserAgent string
	// Locale is the browser language, de-AT unless configured otherwise.
	Locale string
	// ViewportWidth and ViewportHeight fix the window size.
	ViewportWidth  int
	ViewportHeight int
	// BasicAuthUser and BasicAuthPassword protect staging storefronts; when
	// set, the Authorization header is carried on every request.
	BasicAuthUser     string
	BasicAuthPassword string
	// NavigationTimeout bounds full page loads.
	NavigationTimeout time.Duration
	// ElementTimeout bounds element-visibility waits.
	ElementTimeout time.Duration
	// FinishTimeout bounds the wait for the order-finish page.
	FinishTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Locale == "" {
		o.Locale = "de-AT"
	}
	if o.ViewportWidth == 0 {
		o.ViewportWidth = 1920
	}
	if o.ViewportHeight == 0 {
		o.ViewportHeight = 1080
	}
	if o.NavigationTimeout == 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.ElementTimeout == 0 {
		o.ElementTimeout = DefaultElementTimeout
	}
	if o.FinishTimeout == 0 {
		o.FinishTimeout = DefaultFinishTimeout
	}
	return o
}

// Browser is the process-wide allocator from which isolated sessions are
// derived.
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	opts     Options
}

// New creates the browser allocator. No Chrome process is started until the
// first session runs an action.
func New(ctx context.Context, opts Options) *Browser {
	opts = opts.withDefaults()

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("lang", opts.Locale),
		chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	return &Browser{allocCtx: allocCtx, cancel: cancel, opts: opts}
}

// Options returns the effective options after defaulting.
func (b *Browser) Options() Options { return b.opts }

// Close tears down the allocator and every remaining session.
func (b *Browser) Close() {
	b.cancel()
}

// Session is one isolated browsing context driving a single flow. Sessions
// are not safe for concurrent use; the mass runner gives each worker its
// own.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
}

// NewSession derives an isolated browsing context. Each session owns a
// separate browser instance, so storage, cookies and carts never leak
// between concurrent runs.
func (b *Browser) NewSession(ctx context.Context) (*Session, error) {
	sessCtx, cancel := chromedp.NewContext(b.allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		logging.Debug("browser", format, args...)
	}))

	s := &Session{ctx: sessCtx, cancel: cancel, opts: b.opts}

	if b.opts.BasicAuthUser != "" {
		auth := base64.StdEncoding.EncodeToString(
			[]byte(b.opts.BasicAuthUser + ":" + b.opts.BasicAuthPassword))
		err := chromedp.Run(sessCtx,
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers{
				"Authorization": "Basic " + auth,
			}),
		)
		if err != nil {
			cancel()
			return nil, &contract.EnvironmentError{Op: "enable basic auth", Err: err}
		}
	}

	// Respect cancellation of the caller's context, not only the
	// allocator's.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-sessCtx.Done():
		}
	}()

	return s, nil
}

// Ctx exposes the session's chromedp context for page actions.
func (s *Session) Ctx() context.Context { return s.ctx }

// Opts exposes the effective browser options.
func (s *Session) Opts() Options { return s.opts }

// Close releases the browsing context. Safe to call more than once.
func (s *Session) Close() {
	s.cancel()
}

// Run executes chromedp actions under the given deadline, inserting the
// configured slow-motion pause afterwards.
func (s *Session) Run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx, actions...); err != nil {
		return err
	}
	if s.opts.SlowMo > 0 {
		time.Sleep(s.opts.SlowMo)
	}
	return nil
}
