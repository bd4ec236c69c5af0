// Package snapshot implements booking.Page over static HTML using goquery.
//
// Nothing is rendered: visibility is decided from the hidden attribute and inline
// display/visibility styles, waits resolve immediately, and clicks only run the hooks
// registered with OnClick. It backs the offline inspect command and the flow tests.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/example/gymbook/internal/domain/booking"
)

var _ booking.Page = (*Page)(nil)

// ClickHook runs when an element matching its selector is clicked.
type ClickHook func(clicked *goquery.Selection) error

type hook struct {
	selector string
	fn       ClickHook
}

type Page struct {
	doc    *goquery.Document
	routes map[string]string
	hooks  []hook

	clicks      []string
	navigations []string
	typed       map[string]string
	selected    map[string]string
	closed      bool
}

func New(doc *goquery.Document) *Page {
	return &Page{
		doc:      doc,
		routes:   map[string]string{},
		typed:    map[string]string{},
		selected: map[string]string{},
	}
}

func FromReader(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse html: %w", err)
	}
	return New(doc), nil
}

func FromHTML(html string) (*Page, error) {
	return FromReader(strings.NewReader(html))
}

// Open parses a saved page from disk.
func Open(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return FromReader(f)
}

// Route makes Navigate(url) load html as the current document.
func (p *Page) Route(url, html string) {
	p.routes[url] = html
}

// OnClick registers fn for clicks on elements matching selector. Hooks run in registration order.
func (p *Page) OnClick(selector string, fn ClickHook) {
	p.hooks = append(p.hooks, hook{selector: selector, fn: fn})
}

func (p *Page) Document() *goquery.Document { return p.doc }

// Clicks lists clicked elements as "#id" or `tag:"text"`, in order.
func (p *Page) Clicks() []string { return append([]string(nil), p.clicks...) }

func (p *Page) Navigations() []string { return append([]string(nil), p.navigations...) }

func (p *Page) Typed(selector string) string { return p.typed[selector] }

func (p *Page) Selected(selector string) string { return p.selected[selector] }

func (p *Page) Closed() bool { return p.closed }

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.navigations = append(p.navigations, url)
	html, ok := p.routes[url]
	if !ok {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("snapshot: parse %s: %w", url, err)
	}
	p.doc = doc
	return nil
}

func (p *Page) Type(ctx context.Context, selector, text string) error {
	s, err := p.first(ctx, selector)
	if err != nil {
		return err
	}
	s.SetAttr("value", s.AttrOr("value", "")+text)
	p.typed[selector] += text
	return nil
}

func (p *Page) Select(ctx context.Context, selector, value string) error {
	s, err := p.first(ctx, selector)
	if err != nil {
		return err
	}
	s.Find("option").Each(func(_ int, opt *goquery.Selection) {
		if opt.AttrOr("value", "") == value {
			opt.SetAttr("selected", "selected")
		} else {
			opt.RemoveAttr("selected")
		}
	})
	p.selected[selector] = value
	return nil
}

func (p *Page) Find(ctx context.Context, selector string) (booking.Element, error) {
	s, err := p.first(ctx, selector)
	if err != nil {
		return nil, err
	}
	return &element{page: p, sel: s}, nil
}

func (p *Page) FindAll(ctx context.Context, selector string) ([]booking.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []booking.Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &element{page: p, sel: s})
	})
	return out, nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (booking.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := p.doc.Find(selector).First()
	if s.Length() == 0 || !Visible(s) {
		return nil, fmt.Errorf("%w: %s not visible within %s", booking.ErrTimeout, selector, timeout)
	}
	return &element{page: p, sel: s}, nil
}

func (p *Page) WaitHidden(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := p.doc.Find(selector).First()
	if s.Length() > 0 && Visible(s) {
		return fmt.Errorf("%w: %s still visible after %s", booking.ErrTimeout, selector, timeout)
	}
	return nil
}

func (p *Page) WaitNetworkIdle(ctx context.Context) error {
	return ctx.Err()
}

func (p *Page) Close() error {
	p.closed = true
	return nil
}

func (p *Page) first(ctx context.Context, selector string) (*goquery.Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := p.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return s, nil
}

func (p *Page) click(s *goquery.Selection) error {
	p.clicks = append(p.clicks, describe(s))
	for _, h := range p.hooks {
		if !s.Is(h.selector) {
			continue
		}
		if err := h.fn(s); err != nil {
			return fmt.Errorf("snapshot: click hook %s: %w", h.selector, err)
		}
	}
	return nil
}

// Visible reports whether neither s nor an ancestor is hidden by attribute or inline style.
func Visible(s *goquery.Selection) bool {
	for n := s.First(); n.Length() > 0; n = n.Parent() {
		if _, ok := n.Attr("hidden"); ok {
			return false
		}
		style := strings.ToLower(strings.Join(strings.Fields(n.AttrOr("style", "")), ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func describe(s *goquery.Selection) string {
	if id, ok := s.Attr("id"); ok && id != "" {
		return "#" + id
	}
	return fmt.Sprintf("%s:%q", goquery.NodeName(s), strings.TrimSpace(s.Text()))
}

type element struct {
	page *Page
	sel  *goquery.Selection
}

func (e *element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.sel.Text(), nil
}

func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.page.click(e.sel)
}

func (e *element) Find(ctx context.Context, selector string) (booking.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := e.sel.Find(selector).First()
	if s.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", booking.ErrNotFound, selector)
	}
	return &element{page: e.page, sel: s}, nil
}

func (e *element) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (booking.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := e.sel.Find(selector).First()
	if s.Length() == 0 || !Visible(s) {
		return nil, fmt.Errorf("%w: %s not visible within %s", booking.ErrTimeout, selector, timeout)
	}
	return &element{page: e.page, sel: s}, nil
}
