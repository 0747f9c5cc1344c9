package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config holds browser launch options.
type Config struct {
	// Headless disables the browser UI. The MITECO certificate dialog is a
	// native window, so runs that go through the picker need Headless=false.
	Headless bool
	// Bin is an optional path to the Chrome/Chromium binary.
	Bin string
	// DownloadDir is the initial download directory. It can be changed per
	// record with SetDownloadDir.
	DownloadDir string
	// ProxyURL routes traffic through a proxy when non-empty.
	ProxyURL string
}

// Browser wraps a rod.Browser instance together with its launcher so both can
// be torn down in one call.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// New launches a browser with the given config and connects to it.
func New(cfg Config) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	wrapped := &Browser{browser: b, launcher: l}

	if cfg.DownloadDir != "" {
		if err := wrapped.SetDownloadDir(cfg.DownloadDir); err != nil {
			wrapped.Close()
			return nil, err
		}
	}

	return wrapped, nil
}

// NewPage creates a new browser page.
func (b *Browser) NewPage() (*rod.Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// SetDownloadDir points all subsequent downloads at dir.
func (b *Browser) SetDownloadDir(dir string) error {
	err := proto.BrowserSetDownloadBehavior{
		Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath: dir,
	}.Call(b.browser)
	if err != nil {
		return fmt.Errorf("failed to set download directory: %w", err)
	}
	return nil
}

// Close closes the browser and cleans up the launcher process.
func (b *Browser) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			b.launcher.Kill()
			return err
		}
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return nil
}
