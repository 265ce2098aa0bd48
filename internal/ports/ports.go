package ports

import (
	"context"

	"spentify/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordWriter persists and removes records. Every call is scoped to one owner.
	RecordWriter interface {
		CreateRecord(ctx context.Context, r core.Record) error
		// DeleteRecord returns core.ErrNotFound when no record with that id belongs to userID.
		DeleteRecord(ctx context.Context, userID, recordID string) error
	}

	// RecordReader reads the records and aggregates of one owner.
	RecordReader interface {
		// ListRecords returns up to limit records ordered by date, newest first.
		ListRecords(ctx context.Context, userID string, limit int) ([]core.Record, error)
		AllRecords(ctx context.Context, userID string) ([]core.Record, error)
		// SumAndCount returns the amount total and the number of positive-amount records.
		SumAndCount(ctx context.Context, userID string) (total float64, count int, err error)
		// MinMax returns 0, 0 when the owner has no records.
		MinMax(ctx context.Context, userID string) (min, max float64, err error)
	}

	RecordStore interface {
		RecordWriter
		RecordReader
	}

	// UserStore looks users up by identity-provider subject or by email.
	// Lookups return core.ErrNotFound when nothing matches.
	UserStore interface {
		UserBySubject(ctx context.Context, subjectID string) (core.User, error)
		UserByEmail(ctx context.Context, email string) (core.User, error)
		// AttachSubject links an existing email account to a subject and refreshes its profile.
		AttachSubject(ctx context.Context, email string, p core.Principal) (core.User, error)
		CreateUser(ctx context.Context, u core.User) (core.User, error)
	}

	// HealthChecker reports whether the backing store is reachable.
	HealthChecker interface {
		Ping(ctx context.Context) error
	}

	// EventPublisher announces committed record changes to other processes.
	EventPublisher interface {
		PublishRecordCreated(ctx context.Context, user core.User, r core.Record) error
		PublishRecordDeleted(ctx context.Context, userID, recordID string) error
	}
)
