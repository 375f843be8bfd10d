package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// TransactionReader resolves an event id to the stored transaction.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, bool, error)
	ListTransactionsByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error)
}

// ExportWorker copies transactions from the record store to a spreadsheet
// as record-change events arrive.
type ExportWorker struct {
	store    TransactionReader
	exporter sheets.TransactionExporter
	logger   *log.Logger
}

// NewExportWorker accepts a nil exporter; events are then only logged.
func NewExportWorker(store TransactionReader, exporter sheets.TransactionExporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent processes one record-change event. A returned error makes
// the consumer requeue the message.
//
// Sheet rows are append-only. A transaction already present in the sheet is
// never appended again, so updates and redelivered events add no rows. When
// the exporter cannot list rows, only created events are exported.
func (w *ExportWorker) HandleRecordEvent(ctx context.Context, e *amqp.RecordEvent) error {
	fields := log.NewFields().WithRecord(string(e.Kind), e.ID, e.UserID)
	w.logger.InfoContext(ctx, "Processing record event", append(fields.ToSlice(), "action", e.Action)...)

	if e.Kind != amqp.KindTransaction || e.Action == amqp.ActionDeleted {
		return nil
	}
	if w.exporter == nil {
		w.logger.DebugContext(ctx, "No exporter configured, skipping transaction export", fields.ToSlice()...)
		return nil
	}
	lister, canList := w.exporter.(sheets.TransactionLister)
	if e.Action != amqp.ActionCreated && !canList {
		return nil
	}

	t, found, err := w.store.GetTransaction(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", e.ID, err)
	}
	if !found {
		// Deleted before the event was handled; nothing left to export.
		w.logger.WarnContext(ctx, "Transaction no longer exists, skipping export", fields.ToSlice()...)
		return nil
	}
	if canList {
		exported, err := w.exported(ctx, lister, t)
		if err != nil {
			return err
		}
		if exported {
			w.logger.DebugContext(ctx, "Transaction already in sheet, skipping export", fields.ToSlice()...)
			return nil
		}
	}
	return w.export(ctx, t)
}

// exported reports whether the sheet for t's month already lists t.
func (w *ExportWorker) exported(ctx context.Context, lister sheets.TransactionLister, t core.Transaction) (bool, error) {
	rows, err := lister.ListTransactions(ctx, t.Date.Year(), int(t.Date.Month()))
	if err != nil {
		return false, fmt.Errorf("list exported transactions: %w", err)
	}
	for _, row := range rows {
		if row.ID == t.ID {
			return true, nil
		}
	}
	return false, nil
}

// Reconcile appends every transaction of userID in the month of at that the
// sheet does not list yet. It recovers from events lost while the worker was
// down.
func (w *ExportWorker) Reconcile(ctx context.Context, lister sheets.TransactionLister, userID string, at time.Time) (int, error) {
	if w.exporter == nil {
		return 0, nil
	}
	start, end := core.MonthRange(at)
	stored, err := w.store.ListTransactionsByRange(ctx, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("list stored transactions: %w", err)
	}
	exported, err := lister.ListTransactions(ctx, start.Year(), int(start.Month()))
	if err != nil {
		return 0, fmt.Errorf("list exported transactions: %w", err)
	}

	seen := make(map[string]struct{}, len(exported))
	for _, t := range exported {
		if t.ID != "" {
			seen[t.ID] = struct{}{}
		}
	}

	// stored is newest first; export oldest first so the sheet stays chronological.
	appended := 0
	for i := len(stored) - 1; i >= 0; i-- {
		t := stored[i]
		if _, ok := seen[t.ID]; ok {
			continue
		}
		if err := w.export(ctx, t); err != nil {
			return appended, err
		}
		appended++
	}

	w.logger.InfoContext(ctx, "Reconciliation completed",
		log.FieldUserID, userID,
		log.FieldYear, start.Year(),
		log.FieldMonth, int(start.Month()),
		"stored", len(stored),
		"appended", appended)
	return appended, nil
}

func (w *ExportWorker) export(ctx context.Context, t core.Transaction) error {
	ref, err := w.exporter.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", t.ID, err)
	}
	fields := log.NewFields().
		WithRecord(string(amqp.KindTransaction), t.ID, t.UserID).
		WithTransaction(string(t.Type), t.Amount.String(), t.Category)
	fields[log.FieldSheetsRef] = ref
	w.logger.InfoContext(ctx, "Exported transaction", fields.ToSlice()...)
	return nil
}
