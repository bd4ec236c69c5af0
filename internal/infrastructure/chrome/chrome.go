// Package chrome drives a local Chrome through the DevTools protocol with chromedp.
package chrome

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/logging"
)

const (
	viewportWidth  = 1080
	viewportHeight = 1024

	// quiet period that counts as network idle
	idleWindow = 500 * time.Millisecond
	pollEvery  = 100 * time.Millisecond
)

var _ booking.Page = (*Page)(nil)

type Options struct {
	Headless bool
	// ExecPath overrides the Chrome binary chromedp looks up.
	ExecPath string
	// IdleTimeout bounds WaitNetworkIdle.
	IdleTimeout time.Duration
	Logger      *logging.Logger
}

// Page is one Chrome tab.
type Page struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	idleTimeout time.Duration
	log         *logging.Logger

	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
}

// Launch starts Chrome and opens a tab. The browser lives until Close, not until ctx ends.
func Launch(ctx context.Context, opts Options) (*Page, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tab, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
	}))

	p := &Page{
		tab:          tab,
		cancelTab:    cancelTab,
		cancelAlloc:  cancelAlloc,
		idleTimeout:  opts.IdleTimeout,
		log:          log,
		inflight:     map[network.RequestID]struct{}{},
		lastActivity: time.Now(),
	}
	if p.idleTimeout <= 0 {
		p.idleTimeout = 30 * time.Second
	}
	chromedp.ListenTarget(tab, p.onEvent)

	// The first Run allocates the browser and must use the tab context itself.
	if err := chromedp.Run(tab, network.Enable()); err != nil {
		p.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return p, nil
}

func (p *Page) onEvent(ev any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		p.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(p.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(p.inflight, e.RequestID)
	default:
		return
	}
	p.lastActivity = time.Now()
}

func (p *Page) idle(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight) == 0 && now.Sub(p.lastActivity) >= idleWindow
}

// run executes actions on the tab, bounded by ctx's deadline and cancellation.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(p.tab)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *Page) Type(ctx context.Context, selector, text string) error {
	if err := p.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("type into %s: %w", selector, err)
	}
	return nil
}

// Select sets the value of a <select> and fires input and change like a user would.
func (p *Page) Select(ctx context.Context, selector, value string) error {
	script, err := selectScript(selector, value)
	if err != nil {
		return err
	}
	var ok bool
	if err := p.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("select %s in %s: %w", value, selector, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return nil
}

func (p *Page) Find(ctx context.Context, selector string) (booking.Element, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return &element{page: p, node: nodes[0]}, nil
}

func (p *Page) FindAll(ctx context.Context, selector string) ([]booking.Element, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("find all %s: %w", selector, err)
	}
	out := make([]booking.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{page: p, node: n})
	}
	return out, nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (booking.Element, error) {
	return p.waitVisible(ctx, selector, timeout)
}

func (p *Page) waitVisible(ctx context.Context, selector string, timeout time.Duration, opts ...chromedp.QueryOption) (booking.Element, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	opts = append([]chromedp.QueryOption{chromedp.ByQuery, chromedp.NodeVisible}, opts...)
	err := p.run(waitCtx, chromedp.Nodes(selector, &nodes, opts...))
	if err != nil {
		if ctx.Err() == nil && waitCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %s not visible within %s", booking.ErrTimeout, selector, timeout)
		}
		return nil, fmt.Errorf("wait for %s: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return &element{page: p, node: nodes[0]}, nil
}

// WaitHidden returns once selector matches nothing or only an element that is not rendered.
func (p *Page) WaitHidden(ctx context.Context, selector string, timeout time.Duration) error {
	script, err := hiddenScript(selector)
	if err != nil {
		return err
	}
	return p.poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		var hidden bool
		err := p.run(ctx, chromedp.Evaluate(script, &hidden))
		return hidden, err
	}, func() error {
		return fmt.Errorf("%w: %s still visible after %s", booking.ErrTimeout, selector, timeout)
	})
}

// WaitNetworkIdle waits until no request has been in flight for half a second.
func (p *Page) WaitNetworkIdle(ctx context.Context) error {
	return p.poll(ctx, p.idleTimeout, func(context.Context) (bool, error) {
		return p.idle(time.Now()), nil
	}, func() error {
		return fmt.Errorf("%w: network still busy after %s", booking.ErrTimeout, p.idleTimeout)
	})
}

func (p *Page) poll(ctx context.Context, timeout time.Duration, done func(context.Context) (bool, error), timedOut func() error) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	for {
		ok, err := done(waitCtx)
		if err == nil && ok {
			return nil
		}
		if err != nil && waitCtx.Err() == nil {
			p.log.Debug("poll failed", "err", err)
		}
		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return timedOut()
		}
	}
}

func (p *Page) Close() error {
	p.cancelTab()
	p.cancelAlloc()
	return nil
}

type element struct {
	page *Page
	node *cdp.Node
}

func (e *element) Text(ctx context.Context) (string, error) {
	var s string
	if err := e.page.run(ctx, chromedp.TextContent([]cdp.NodeID{e.node.NodeID}, &s, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return s, nil
}

func (e *element) Click(ctx context.Context) error {
	if err := e.page.run(ctx, chromedp.MouseClickNode(e.node)); err != nil {
		return fmt.Errorf("click %s: %w", e.node.LocalName, err)
	}
	return nil
}

func (e *element) Find(ctx context.Context, selector string) (booking.Element, error) {
	var nodes []*cdp.Node
	err := e.page.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return &element{page: e.page, node: nodes[0]}, nil
}

func (e *element) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (booking.Element, error) {
	return e.page.waitVisible(ctx, selector, timeout, chromedp.FromNode(e.node))
}
