package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/alx5409/Automatizacion/internal/browser"
	"github.com/go-rod/rod"
)

// detailPanelSelectors are tried in order when capturing the case detail
// panel; the portal wraps the solicitudes table in #contenido, body is the
// fallback.
var detailPanelSelectors = []string{"#contenido", "#main", "body"}

// Client is a portal session over one browser instance and one page. It is
// the concrete implementation of the download session's portal dependency.
type Client struct {
	browser *browser.Browser
	page    *rod.Page
	auth    *Authenticator

	pageLoadTimeout time.Duration
	elementTimeout  time.Duration
}

// NewClient opens a page on b and returns a client bound to it. The caller
// owns b only through the returned client: Close tears both down.
func NewClient(b *browser.Browser, auth *Authenticator, pageLoadTimeout, elementTimeout time.Duration) (*Client, error) {
	page, err := b.NewPage()
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &Client{
		browser:         b,
		page:            page,
		auth:            auth,
		pageLoadTimeout: pageLoadTimeout,
		elementTimeout:  elementTimeout,
	}, nil
}

// Open navigates the client's page to url and waits for the load event.
func (c *Client) Open(ctx context.Context, url string) error {
	page := c.page.Context(ctx).Timeout(c.pageLoadTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// Authenticate runs the certificate login sequence on the current page.
func (c *Client) Authenticate(ctx context.Context) error {
	return c.auth.Authenticate(ctx, c.page.Context(ctx))
}

// SetDownloadDir routes subsequent downloads of this session into dir.
func (c *Client) SetDownloadDir(dir string) error {
	return c.browser.SetDownloadDir(dir)
}

// TriggerPDFDownloads clicks every link on the current page whose target is a
// PDF and returns how many were clicked.
func (c *Client) TriggerPDFDownloads(ctx context.Context) (int, error) {
	return clickLinksWithSuffix(c.page.Context(ctx), ".pdf", c.elementTimeout)
}

// CaseDetailHTML returns the HTML of the case detail panel on the current
// page, used for the expediente summary written next to the downloads.
func (c *Client) CaseDetailHTML(ctx context.Context) (string, error) {
	return elementHTML(c.page.Context(ctx), c.elementTimeout, detailPanelSelectors...)
}

// Close releases the page and the underlying browser.
func (c *Client) Close() error {
	if c.page != nil {
		_ = c.page.Close()
	}
	return c.browser.Close()
}
