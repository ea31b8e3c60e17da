// Package worker processes staged statement-import jobs delivered over AMQP.
package worker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/importer"
	"financas/internal/storage"
)

// JobStore is the slice of storage the worker needs: job lifecycle plus the
// transaction sink the import pipeline writes into.
type JobStore interface {
	importer.TransactionSink
	GetImportJob(ctx context.Context, id string) (*storage.ImportJob, error)
	MarkImportJobDone(ctx context.Context, id string, imported int) error
	MarkImportJobFailed(ctx context.Context, id string, jobErr error) error
}

// ImportWorker parses staged statements, categorizes their entries and
// stores the resulting transactions.
type ImportWorker struct {
	store    JobStore
	registry *importer.Registry
	mirror   export.LedgerWriter // optional
}

func NewImportWorker(store JobStore, registry *importer.Registry, mirror export.LedgerWriter) *ImportWorker {
	return &ImportWorker{
		store:    store,
		registry: registry,
		mirror:   mirror,
	}
}

// recordingSink stores transactions and keeps them for spreadsheet mirroring.
type recordingSink struct {
	inner importer.TransactionSink
	saved []core.Transaction
}

func (s *recordingSink) SaveTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.inner.SaveTransaction(ctx, t)
	if err == nil {
		t.ID = id
		s.saved = append(s.saved, t)
	}
	return id, err
}

// HandleImportJob processes a single import-job message. Malformed jobs are
// marked failed and acknowledged; re-running them would fail the same way.
// Only storage-level errors propagate, which requeues the message.
func (w *ImportWorker) HandleImportJob(ctx context.Context, msg *amqp.ImportJobMessage) error {
	slog.InfoContext(ctx, "Processing import job", "job_id", msg.JobID)

	job, err := w.store.GetImportJob(ctx, msg.JobID)
	if err != nil {
		return fmt.Errorf("get import job: %w", err)
	}

	if job.Status != "pending" {
		// Redelivered after a previous run finished; nothing to do.
		slog.WarnContext(ctx, "Import job already processed",
			"job_id", job.ID, "status", job.Status)
		return nil
	}

	parser := w.registry.Get(job.Format)
	if parser == nil {
		return w.fail(ctx, job.ID, fmt.Errorf("unknown statement format %q", job.Format))
	}

	entries, err := parser.Parse(bytes.NewReader(job.Payload))
	if err != nil {
		return w.fail(ctx, job.ID, fmt.Errorf("parse statement: %w", err))
	}

	sink := &recordingSink{inner: w.store}
	res, err := importer.Import(ctx, sink, job.UserID, entries)
	if err != nil {
		return fmt.Errorf("import entries: %w", err)
	}

	if err := w.store.MarkImportJobDone(ctx, job.ID, res.Imported); err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}

	slog.InfoContext(ctx, "Import job finished",
		"job_id", job.ID,
		"imported", res.Imported,
		"skipped", res.Skipped)

	w.mirrorTransactions(ctx, job.ID, sink.saved)
	return nil
}

func (w *ImportWorker) fail(ctx context.Context, jobID string, cause error) error {
	slog.WarnContext(ctx, "Import job rejected", "job_id", jobID, "error", cause)
	if err := w.store.MarkImportJobFailed(ctx, jobID, cause); err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

// mirrorTransactions best-effort copies imported rows to the spreadsheet.
// A mirror failure never fails the job; the ledger is the source of truth.
func (w *ImportWorker) mirrorTransactions(ctx context.Context, jobID string, txs []core.Transaction) {
	if w.mirror == nil || len(txs) == 0 {
		return
	}
	if err := w.mirror.AppendTransactions(ctx, txs); err != nil {
		slog.ErrorContext(ctx, "Failed to mirror imported transactions",
			"job_id", jobID, "error", err)
	}
}
