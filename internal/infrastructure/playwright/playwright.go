// Package playwright implements booking.Page with playwright-go and its bundled Chromium.
package playwright

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/gymbook/internal/domain/booking"
	"github.com/playwright-community/playwright-go"
)

var _ booking.Page = (*Page)(nil)

type Options struct {
	Headless bool
	// ExecPath runs this Chromium instead of the bundled one.
	ExecPath string
	// IdleTimeout bounds WaitNetworkIdle.
	IdleTimeout time.Duration
	// Install downloads the driver and Chromium when they are missing.
	Install bool
}

type Page struct {
	pw          *playwright.Playwright
	browser     playwright.Browser
	page        playwright.Page
	idleTimeout time.Duration
}

func Launch(ctx context.Context, opts Options) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	launch := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(opts.Headless)}
	if opts.ExecPath != "" {
		launch.ExecutablePath = playwright.String(opts.ExecPath)
	}
	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: 1080, Height: 1024},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("open page: %w", err)
	}
	p := &Page{pw: pw, browser: browser, page: page, idleTimeout: opts.IdleTimeout}
	if p.idleTimeout <= 0 {
		p.idleTimeout = 30 * time.Second
	}
	return p, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	timeout, err := budget(ctx, 0)
	if err != nil {
		return err
	}
	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad}
	if timeout > 0 {
		opts.Timeout = millis(timeout)
	}
	if _, err := p.page.Goto(url, opts); err != nil {
		return fmt.Errorf("navigate %s: %w", url, translate(err))
	}
	return nil
}

func (p *Page) Type(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Locator(selector).First().Fill(text); err != nil {
		return fmt.Errorf("type into %s: %w", selector, translate(err))
	}
	return nil
}

func (p *Page) Select(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	})
	if err != nil {
		return fmt.Errorf("select %s in %s: %w", value, selector, translate(err))
	}
	return nil
}

func (p *Page) Find(ctx context.Context, selector string) (booking.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return element{h}, nil
}

func (p *Page) FindAll(ctx context.Context, selector string) ([]booking.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hs, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", selector, err)
	}
	out := make([]booking.Element, 0, len(hs))
	for _, h := range hs {
		out = append(out, element{h})
	}
	return out, nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (booking.Element, error) {
	timeout, err := budget(ctx, timeout)
	if err != nil {
		return nil, err
	}
	h, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", selector, translate(err))
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return element{h}, nil
}

func (p *Page) WaitHidden(ctx context.Context, selector string, timeout time.Duration) error {
	timeout, err := budget(ctx, timeout)
	if err != nil {
		return err
	}
	_, err = p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: millis(timeout),
	})
	if err != nil {
		return fmt.Errorf("wait for %s to hide: %w", selector, translate(err))
	}
	return nil
}

func (p *Page) WaitNetworkIdle(ctx context.Context) error {
	timeout, err := budget(ctx, p.idleTimeout)
	if err != nil {
		return err
	}
	err = p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: millis(timeout),
	})
	if err != nil {
		return fmt.Errorf("wait for network idle: %w", translate(err))
	}
	return nil
}

func (p *Page) Close() error {
	return errors.Join(p.browser.Close(), p.pw.Stop())
}

type element struct {
	h playwright.ElementHandle
}

func (e element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s, err := e.h.TextContent()
	if err != nil {
		return "", fmt.Errorf("read text: %w", translate(err))
	}
	return s, nil
}

func (e element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.h.Click(); err != nil {
		return fmt.Errorf("click: %w", translate(err))
	}
	return nil
}

func (e element) Find(ctx context.Context, selector string) (booking.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := e.h.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return element{h}, nil
}

// budget shortens timeout to what is left before ctx's deadline. Zero means no limit.
func budget(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// translate maps playwright timeouts onto booking.ErrTimeout.
func translate(err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", booking.ErrTimeout, err)
	}
	return err
}

func (e element) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (booking.Element, error) {
	timeout, err := budget(ctx, timeout)
	if err != nil {
		return nil, err
	}
	h, err := e.h.WaitForSelector(selector, playwright.ElementHandleWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", selector, translate(err))
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return element{h}, nil
}
