// Package batch walks the output tree and feeds the records to the download
// session, one at a time, archiving each file after its attempt.
package batch

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alx5409/Automatizacion/internal/config"
	"github.com/alx5409/Automatizacion/internal/records"
	"github.com/alx5409/Automatizacion/internal/session"
)

// Runner processes one parsed record. *session.Session is the production
// implementation.
type Runner interface {
	Process(ctx context.Context, rec records.Record) session.Result
}

// Processor iterates the discovered record files strictly sequentially.
type Processor struct {
	runner Runner
	cfg    config.Config
	log    *slog.Logger
}

// New builds a Processor.
func New(runner Runner, cfg config.Config, log *slog.Logger) *Processor {
	return &Processor{runner: runner, cfg: cfg, log: log}
}

// Run discovers the record files and processes up to cfg.MaxRecords of them.
// A file that fails to parse is logged and skipped without counting toward
// the limit. Every parsed record, whatever its outcome, is archived into the
// trash partition of its producer. Only environment errors (unreadable
// output root, no producer directories) abort the run.
func (p *Processor) Run(ctx context.Context) error {
	producers, err := records.Producers(p.cfg.OutputDir)
	if err != nil {
		p.log.ErrorContext(ctx, "nothing to process", "tag", "ERR-12", "root", p.cfg.OutputDir, "err", err)
		return err
	}

	processed := 0
	for _, dir := range producers {
		files, err := records.RecordFiles(dir)
		if err != nil {
			p.log.ErrorContext(ctx, "could not list record files", "tag", "ERR-13", "dir", dir, "err", err)
			continue
		}

		for _, path := range files {
			if processed >= p.cfg.MaxRecords {
				p.log.InfoContext(ctx, "record limit reached", "tag", "INFO-17", "max_records", p.cfg.MaxRecords)
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			p.log.InfoContext(ctx, "record file picked up", "tag", "INFO-18",
				"file", path, "position", processed+1, "max_records", p.cfg.MaxRecords)

			data, err := os.ReadFile(path)
			if err != nil {
				p.log.ErrorContext(ctx, "could not read record file", "tag", "ERR-14", "file", path, "err", err)
				continue
			}
			rec, err := records.Parse(data)
			if err != nil {
				p.log.ErrorContext(ctx, "could not parse record file", "tag", "ERR-14", "file", path, "err", err)
				continue
			}

			result := p.runner.Process(ctx, rec)
			processed++

			dest, err := records.Archive(path, p.cfg.TrashDir, rec.ProducerFolder())
			if err != nil {
				// The file stays where it was; the next run will pick it
				// up again.
				p.log.ErrorContext(ctx, "could not archive record file", "tag", "ERR-15", "file", path, "err", err)
			} else {
				p.log.InfoContext(ctx, "record file archived", "tag", "INFO-19",
					"file", path, "dest", dest, "downloaded", len(result.Files))
			}

			p.log.InfoContext(ctx, "pausing before next record", "tag", "INFO-20", "pause", p.cfg.RecordPause)
			select {
			case <-time.After(p.cfg.RecordPause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	p.log.InfoContext(ctx, "processing completed", "tag", "INFO-21", "processed", processed)
	return nil
}
