// Package session orchestrates the download of one regage case: open the
// detail link, authenticate with the client certificate, reopen the link,
// trigger the PDF downloads and wait for them to land on disk. One browser
// per record, torn down on every exit path.
package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/alx5409/Automatizacion/internal/config"
	"github.com/alx5409/Automatizacion/internal/download"
	"github.com/alx5409/Automatizacion/internal/portal"
	"github.com/alx5409/Automatizacion/internal/records"
	"github.com/alx5409/Automatizacion/internal/retry"
)

// summaryFileName is the markdown capture of the case detail panel written
// next to the downloaded PDFs.
const summaryFileName = "expediente.md"

// Portal is the authenticated browser session the download session drives.
// *portal.Client is the production implementation.
type Portal interface {
	Open(ctx context.Context, url string) error
	Authenticate(ctx context.Context) error
	SetDownloadDir(dir string) error
	TriggerPDFDownloads(ctx context.Context) (int, error)
	CaseDetailHTML(ctx context.Context) (string, error)
	Close() error
}

// Factory acquires a fresh browser session. Acquisition failure is fatal for
// the current record and is never retried.
type Factory func(ctx context.Context) (Portal, error)

// Result is the outcome for one record. Files is nil when the record failed
// before any download, and may hold fewer names than expected on a partial
// download.
type Result struct {
	DownloadDir string
	Files       []string
}

// Session downloads the documents of one record at a time.
type Session struct {
	factory Factory
	cfg     config.Config
	log     *slog.Logger

	nav  retry.Policy
	auth retry.Policy
}

// New builds a Session with the retry policies taken from cfg.
func New(factory Factory, cfg config.Config, log *slog.Logger) *Session {
	return &Session{
		factory: factory,
		cfg:     cfg,
		log:     log,
		nav:     retry.Policy{MaxAttempts: cfg.NavAttempts, Delay: cfg.NavDelay},
		auth:    retry.Policy{MaxAttempts: cfg.AuthAttempts, Delay: cfg.AuthDelay},
	}
}

// Process handles one record end to end. Every failure is contained here:
// it is classified, logged with the record's identity, and turned into an
// empty Result. The browser, once acquired, is released exactly once no
// matter which path exits.
func (s *Session) Process(ctx context.Context, rec records.Record) Result {
	log := s.log.With(
		"regage", rec.Regage,
		"producer_nif", rec.ProducerNIF,
		"representative_nif", rec.RepresentativeNIF,
	)

	link := portal.DetailURL(rec.Regage, rec.ProducerNIF, rec.RepresentativeNIF)
	log.InfoContext(ctx, "detail link built", "tag", "INFO-01", "url", link)
	log.InfoContext(ctx, "processing record", "tag", "INFO-07",
		"producer", rec.ProducerFolder(), "waste", rec.WasteFolder())

	p, err := s.factory(ctx)
	if err != nil {
		log.ErrorContext(ctx, "failed to start browser", "tag", "ERR-04", "err", err)
		return Result{}
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close browser", "tag", "ERR-03", "err", err)
			return
		}
		log.InfoContext(ctx, "browser closed", "tag", "INFO-16")
	}()

	if err := s.nav.Do(ctx, log, "open detail page", func() error {
		return p.Open(ctx, link)
	}); err != nil {
		s.logFailure(ctx, log, "ERR-05", "could not open detail page", err)
		return Result{}
	}

	if err := s.auth.Do(ctx, log, "authenticate", func() error {
		return p.Authenticate(ctx)
	}); err != nil {
		s.logFailure(ctx, log, "ERR-06", "could not authenticate", err)
		return Result{}
	}
	log.InfoContext(ctx, "authentication completed", "tag", "INFO-11")

	// The session cookie is now set; the same link renders the document
	// list instead of the login page.
	if err := s.nav.Do(ctx, log, "reopen detail page", func() error {
		return p.Open(ctx, link)
	}); err != nil {
		s.logFailure(ctx, log, "ERR-07", "could not reopen detail page", err)
		return Result{}
	}
	log.InfoContext(ctx, "detail page reopened authenticated", "tag", "INFO-12")

	dir, err := download.UniqueDir(s.cfg.DownloadsDir, rec.ProducerFolder()+"_"+rec.WasteFolder())
	if err != nil {
		s.logFailure(ctx, log, "ERR-10", "could not prepare download directory", err)
		return Result{}
	}
	log.InfoContext(ctx, "download directory ready", "tag", "INFO-13", "dir", dir)

	if err := p.SetDownloadDir(dir); err != nil {
		s.logFailure(ctx, log, "ERR-10", "could not route downloads", err)
		return Result{DownloadDir: dir}
	}

	// Written before the snapshot so the watcher never counts it as a
	// downloaded document.
	s.writeSummary(ctx, log, p, dir)

	files := s.collectDownloads(ctx, log, p, dir)
	s.validatePDFs(ctx, log, dir, files)

	log.InfoContext(ctx, "record finished", "tag", "INFO-14", "files", files)
	return Result{DownloadDir: dir, Files: files}
}

// collectDownloads snapshots the directory, clicks the PDF links and waits
// for the new files. A timeout is a soft failure: whatever arrived is
// returned.
func (s *Session) collectDownloads(ctx context.Context, log *slog.Logger, p Portal, dir string) []string {
	old, err := download.Snapshot(dir)
	if err != nil {
		s.logFailure(ctx, log, "ERR-02", "could not snapshot download directory", err)
		return nil
	}

	clicked, err := p.TriggerPDFDownloads(ctx)
	if err != nil {
		s.logFailure(ctx, log, "ERR-02", "could not trigger downloads", err)
		return nil
	}
	log.InfoContext(ctx, "pdf links clicked", "tag", "INFO-03", "count", clicked)

	want := s.cfg.ExpectedDownloads
	log.InfoContext(ctx, "waiting for downloads", "tag", "INFO-04", "want", want, "dir", dir)

	files, err := download.WaitForNew(ctx, dir, old, want, s.cfg.DownloadTimeout, s.cfg.DownloadPoll)
	if err != nil {
		if errors.Is(err, download.ErrIncomplete) {
			log.WarnContext(ctx, "downloads incomplete", "tag", "WARN-05",
				"got", len(files), "want", want, "err", err)
			return files
		}
		s.logFailure(ctx, log, "ERR-02", "download wait failed", err)
		return files
	}

	log.InfoContext(ctx, "downloads finished", "tag", "INFO-05", "files", files)
	return files
}

// writeSummary captures the case detail panel as markdown. Failures only
// cost the summary, never the record.
func (s *Session) writeSummary(ctx context.Context, log *slog.Logger, p Portal, dir string) {
	html, err := p.CaseDetailHTML(ctx)
	if err != nil {
		log.WarnContext(ctx, "could not capture case detail panel", "tag", "WARN-06", "err", err)
		return
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		log.WarnContext(ctx, "could not convert case detail to markdown", "tag", "WARN-06", "err", err)
		return
	}

	path := filepath.Join(dir, summaryFileName)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		log.WarnContext(ctx, "could not write case summary", "tag", "WARN-06", "err", err)
		return
	}
	log.InfoContext(ctx, "case summary written", "tag", "INFO-15", "path", path)
}

// validatePDFs runs a structural check over the downloaded PDFs. A corrupt
// file is reported but kept; partial portals sometimes serve documents that
// still open fine in a viewer.
func (s *Session) validatePDFs(ctx context.Context, log *slog.Logger, dir string, files []string) {
	for _, name := range files {
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		path := filepath.Join(dir, name)
		if err := api.ValidateFile(path, nil); err != nil {
			log.WarnContext(ctx, "downloaded pdf failed validation", "tag", "WARN-07",
				"file", name, "err", err)
			continue
		}
		log.DebugContext(ctx, "pdf validated", "file", name)
	}
}

// logFailure classifies err (timeout, exhausted retries, cancelled, browser)
// and logs it with the given tag. Nothing propagates past the session.
func (s *Session) logFailure(ctx context.Context, log *slog.Logger, tag, msg string, err error) {
	kind := "browser"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = "timeout"
	case errors.Is(err, context.Canceled):
		kind = "cancelled"
	case errors.Is(err, retry.ErrExhausted):
		kind = "retries_exhausted"
	case errors.Is(err, portal.ErrNotLanded):
		kind = "not_landed"
	}
	log.ErrorContext(ctx, msg, "tag", tag, "kind", kind, "err", err)
}
