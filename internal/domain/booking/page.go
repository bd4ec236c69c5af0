package booking

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("element not found")
	ErrTimeout  = errors.New("timed out waiting for element")
)

// Element is a handle to one node of the remote page.
type Element interface {
	Text(ctx context.Context) (string, error)
	Click(ctx context.Context) error
	// Find returns the first descendant matching selector, or ErrNotFound.
	Find(ctx context.Context, selector string) (Element, error)
	// WaitVisible waits for a visible descendant matching selector, or returns ErrTimeout.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (Element, error)
}

// Page is the remote scheduling interface as seen by the booking flow.
// Implementations wrap a single serial browser session and are not safe for concurrent use.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Type(ctx context.Context, selector, text string) error
	Select(ctx context.Context, selector, value string) error

	Find(ctx context.Context, selector string) (Element, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)

	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (Element, error)
	WaitHidden(ctx context.Context, selector string, timeout time.Duration) error
	WaitNetworkIdle(ctx context.Context) error

	Close() error
}
