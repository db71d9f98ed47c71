package services

import (
	"context"

	"github.com/trove/backend/internal/models"
)

// ReportStore is the report collaborator boundary. Implementations return
// ErrReportNotFound for missing ids and wrap I/O failures in ErrPersistence.
type ReportStore interface {
	GetByID(ctx context.Context, id string) (*models.Report, error)
	Create(ctx context.Context, report *models.Report) error
	ListPending(ctx context.Context, limit int) ([]models.Report, error)
	ListPendingForUser(ctx context.Context, userID string) ([]models.Report, error)
	// SetStatusIfPending transitions pending → status and returns
	// ErrAlreadyProcessed if the report already left pending.
	SetStatusIfPending(ctx context.Context, id, status string) error
}

// StrikeLedger is the append-only violation history. Totals are derived from
// the entries, never stored where they could drift.
type StrikeLedger interface {
	TotalForUser(ctx context.Context, userID string) (int, error)
	TotalsForUsers(ctx context.Context, userIDs []string) (map[string]int, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Strike, error)
	Append(ctx context.Context, strike *models.Strike) error
}

// AccountStore reads and writes the enforcement-owned restriction state. The
// executor is the only writer.
type AccountStore interface {
	GetRestriction(ctx context.Context, userID string) (*models.AccountRestriction, error)
	SetRestriction(ctx context.Context, state *models.AccountRestriction) error
}

// ListingStore resolves listing ownership and takes reported listings down.
type ListingStore interface {
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	// TakeDown removes the listing and returns its image URLs for storage
	// cleanup. Idempotent: a missing listing is not an error.
	TakeDown(ctx context.Context, id string) ([]string, error)
}

// NotificationSink delivers one-way user messages. Fire and forget from the
// engine's perspective: callers log failures and move on.
type NotificationSink interface {
	Send(ctx context.Context, userID, typ, title, body string) error
}

// AuthorizationChecker answers whether an actor holds the admin capability.
type AuthorizationChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RepairStore queues and works off partial-failure repair documents.
type RepairStore interface {
	Queue(ctx context.Context, repair *models.Repair) error
	ListOutstanding(ctx context.Context, limit int) ([]models.Repair, error)
	MarkRepaired(ctx context.Context, id string) error
	RecordAttempt(ctx context.Context, id, lastError string) error
}

// ContentCleaner deletes removed content's stored images, best effort.
type ContentCleaner interface {
	DeleteImages(ctx context.Context, urls []string)
}
