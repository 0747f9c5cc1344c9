package portal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alx5409/Automatizacion/internal/cert"
	"github.com/go-rod/rod"
)

// Selectors and texts of the sede MITECO login flow. The flow is fixed: this
// tool targets exactly one portal.
const (
	landingMarkerID = "breadcrumb"
	accessValue     = "acceder"
	certAccessText  = "Acceso DNIe / Certificado electrónico"
)

// Authenticator drives the portal's certificate login sequence on a page.
// The four steps are strictly sequential; any failure aborts the sequence and
// the caller's retry policy restarts it from the landing check.
type Authenticator struct {
	selector       cert.Selector
	certName       string
	elementTimeout time.Duration
	log            *slog.Logger
}

// NewAuthenticator returns an Authenticator that picks the certificate with
// the given display name through selector.
func NewAuthenticator(selector cert.Selector, certName string, elementTimeout time.Duration, log *slog.Logger) *Authenticator {
	return &Authenticator{
		selector:       selector,
		certName:       certName,
		elementTimeout: elementTimeout,
		log:            log,
	}
}

// Authenticate runs the login sequence on page:
// landing marker → access button → certificate login link → native picker.
func (a *Authenticator) Authenticate(ctx context.Context, page *rod.Page) error {
	if err := waitForElementID(page, landingMarkerID, a.elementTimeout); err != nil {
		return err
	}

	if err := clickByValue(page, accessValue, a.elementTimeout); err != nil {
		return fmt.Errorf("access button: %w", err)
	}
	a.log.DebugContext(ctx, "access button clicked", "tag", "INFO-02", "value", accessValue)

	if err := clickByText(page, certAccessText, a.elementTimeout); err != nil {
		return fmt.Errorf("certificate login link: %w", err)
	}
	a.log.DebugContext(ctx, "certificate login link clicked", "tag", "INFO-03", "text", certAccessText)

	if err := a.selector.Select(ctx, a.certName); err != nil {
		return fmt.Errorf("certificate selection: %w", err)
	}
	a.log.InfoContext(ctx, "certificate selected", "tag", "INFO-04", "cert", a.certName)

	return nil
}
