package worker

import (
	"context"
	"fmt"
	"strings"

	"spentify/internal/amqp"
	"spentify/internal/export"
	"spentify/internal/log"
)

// SyncWorker mirrors record events into an export target.
type SyncWorker struct {
	target export.Target
	logger *log.Logger
}

func NewSyncWorker(target export.Target, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{target: target, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleRecordEvent applies one event. A returned error makes the consumer requeue it.
func (w *SyncWorker) HandleRecordEvent(ctx context.Context, e *amqp.RecordEvent) error {
	w.logger.InfoContext(ctx, "Processing record event",
		log.FieldEventType, string(e.Type),
		log.FieldRecordID, e.RecordID,
		log.FieldUserID, e.UserID)

	var err error
	switch e.Type {
	case amqp.RecordCreated:
		err = w.target.AppendRecord(ctx, rowFromEvent(e))
	case amqp.RecordDeleted:
		err = w.target.RemoveRecord(ctx, e.RecordID)
	default:
		// Unknown types cannot succeed on retry.
		w.logger.WarnContext(ctx, "Skipping unknown event type", log.FieldEventType, string(e.Type))
		return nil
	}
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror record event",
			log.FieldEventType, string(e.Type),
			log.FieldRecordID, e.RecordID,
			log.FieldError, err)
		return fmt.Errorf("mirror %s %s: %w", e.Type, e.RecordID, err)
	}
	return nil
}

// rowFromEvent keeps only the calendar day of the event date.
func rowFromEvent(e *amqp.RecordEvent) export.Row {
	date := e.Date
	if i := strings.IndexByte(date, 'T'); i > 0 {
		date = date[:i]
	}
	return export.Row{
		RecordID:    e.RecordID,
		Date:        date,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		UserEmail:   e.UserEmail,
	}
}
