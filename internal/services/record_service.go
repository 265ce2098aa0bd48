package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"spentify/internal/core"
	"spentify/internal/log"
	"spentify/internal/ports"
)

// RecordService orchestrates record operations across the store and the event publisher
type RecordService struct {
	store     ports.RecordStore
	publisher ports.EventPublisher
	logger    *log.Logger
	events    *log.StructuredLogger
	now       func() time.Time
}

// NewRecordService wires a store with an optional publisher. A nil publisher disables events.
func NewRecordService(store ports.RecordStore, publisher ports.EventPublisher, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentRecords)
	return &RecordService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AddRecord validates raw input and stores a new record owned by user.
// Validation failures return *core.ValidationError and store nothing.
func (s *RecordService) AddRecord(ctx context.Context, user core.User, in core.RecordInput) (core.Record, error) {
	rec, err := in.Validate()
	if err != nil {
		return core.Record{}, err
	}

	rec.ID = uuid.NewString()
	rec.UserID = user.ID
	rec.CreatedAt = s.now()

	if err := s.store.CreateRecord(ctx, rec); err != nil {
		s.events.LogError(ctx, "Failed to store record", err, log.OpCreate, log.NewFields().WithUser(user.ID))
		return core.Record{}, core.StoreError("add record", err)
	}
	s.events.LogRecordCreated(ctx, user.ID, rec.ID, string(rec.Category), rec.Amount)

	if s.publisher != nil {
		if err := s.publisher.PublishRecordCreated(ctx, user, rec); err != nil {
			// Don't fail the request, the record is stored
			s.logger.WarnContext(ctx, "Failed to publish record event",
				log.FieldRecordID, rec.ID, log.FieldError, err)
		}
	}

	return rec, nil
}

// DeleteRecord removes a record owned by userID. A missing record and a record
// owned by someone else produce the same core.ErrStore error.
func (s *RecordService) DeleteRecord(ctx context.Context, userID, recordID string) error {
	err := s.store.DeleteRecord(ctx, userID, recordID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.logger.WarnContext(ctx, "Delete matched no owned record",
				log.FieldUserID, userID, log.FieldRecordID, recordID)
			return fmt.Errorf("delete record: %w", core.ErrStore)
		}
		s.events.LogError(ctx, "Failed to delete record", err, log.OpDelete, log.NewFields().WithUser(userID))
		return core.StoreError("delete record", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRecordDeleted(ctx, userID, recordID); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish record event",
				log.FieldRecordID, recordID, log.FieldError, err)
		}
	}
	return nil
}

// ListRecords returns the most recent records, newest first.
func (s *RecordService) ListRecords(ctx context.Context, userID string) ([]core.Record, error) {
	records, err := s.store.ListRecords(ctx, userID, core.RecentRecordsLimit)
	if err != nil {
		return nil, core.StoreError("list records", err)
	}
	if records == nil {
		records = []core.Record{}
	}
	return records, nil
}

// AllRecords returns every record of the user, newest first.
func (s *RecordService) AllRecords(ctx context.Context, userID string) ([]core.Record, error) {
	records, err := s.store.AllRecords(ctx, userID)
	if err != nil {
		return nil, core.StoreError("load records", err)
	}
	return records, nil
}

// SumAndCount returns the amount total and the count of positive records.
func (s *RecordService) SumAndCount(ctx context.Context, userID string) (float64, int, error) {
	total, count, err := s.store.SumAndCount(ctx, userID)
	if err != nil {
		return 0, 0, core.StoreError("sum records", err)
	}
	return total, count, nil
}

// MinMax returns the smallest and largest amount, or 0, 0 without records.
func (s *RecordService) MinMax(ctx context.Context, userID string) (float64, float64, error) {
	min, max, err := s.store.MinMax(ctx, userID)
	if err != nil {
		return 0, 0, core.StoreError("min max records", err)
	}
	return min, max, nil
}

// Stats fetches both aggregates concurrently and combines them.
// Either failure fails the whole result.
func (s *RecordService) Stats(ctx context.Context, userID string) (core.Stats, error) {
	var (
		total    float64
		count    int
		min, max float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, count, err = s.SumAndCount(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		min, max, err = s.MinMax(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.events.LogError(ctx, "Failed to compute stats", err, log.OpStats, log.NewFields().WithUser(userID))
		return core.Stats{}, err
	}

	return core.NewStats(total, count, min, max), nil
}
