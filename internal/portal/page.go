package portal

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// ErrNotLanded reports that the landing marker element never appeared, i.e.
// the target page did not render within the wait timeout.
var ErrNotLanded = errors.New("page landing marker not found")

// waitForElementID blocks until the element with the given id exists.
func waitForElementID(page *rod.Page, id string, timeout time.Duration) error {
	if _, err := page.Timeout(timeout).Element("#" + id); err != nil {
		return fmt.Errorf("%w: #%s: %w", ErrNotLanded, id, err)
	}
	return nil
}

// clickByValue clicks the first element whose value attribute equals value.
func clickByValue(page *rod.Page, value string, timeout time.Duration) error {
	el, err := page.Timeout(timeout).Element(fmt.Sprintf(`[value=%q]`, value))
	if err != nil {
		return fmt.Errorf("element with value %q not found: %w", value, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click element with value %q: %w", value, err)
	}
	return nil
}

// clickByText clicks the first link or button whose visible text matches text.
func clickByText(page *rod.Page, text string, timeout time.Duration) error {
	el, err := page.Timeout(timeout).ElementR("a, button", regexp.QuoteMeta(text))
	if err != nil {
		return fmt.Errorf("element with text %q not found: %w", text, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click element with text %q: %w", text, err)
	}
	return nil
}

// clickLinksWithSuffix clicks every link whose href path ends in suffix and
// returns how many were clicked.
func clickLinksWithSuffix(page *rod.Page, suffix string, timeout time.Duration) (int, error) {
	els, err := page.Timeout(timeout).Elements("a[href]")
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate links: %w", err)
	}

	clicked := 0
	for _, el := range els {
		href, err := el.Attribute("href")
		if err != nil || href == nil {
			continue
		}
		if !hrefHasSuffix(*href, suffix) {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return clicked, fmt.Errorf("failed to click link %s: %w", *href, err)
		}
		clicked++
	}
	return clicked, nil
}

// hrefHasSuffix reports whether the path part of href ends in suffix,
// ignoring query string, fragment and case.
func hrefHasSuffix(href, suffix string) bool {
	path := href
	if u, err := url.Parse(href); err == nil && u.Path != "" {
		path = u.Path
	}
	return strings.HasSuffix(strings.ToLower(path), strings.ToLower(suffix))
}

// elementHTML returns the outer HTML of the first selector that matches, or
// an error when none of them do.
func elementHTML(page *rod.Page, timeout time.Duration, selectors ...string) (string, error) {
	var lastErr error
	for _, sel := range selectors {
		el, err := page.Timeout(timeout).Element(sel)
		if err != nil {
			lastErr = err
			continue
		}
		html, err := el.HTML()
		if err != nil {
			lastErr = err
			continue
		}
		return html, nil
	}
	return "", fmt.Errorf("no matching element for %v: %w", selectors, lastErr)
}
