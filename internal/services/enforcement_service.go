package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trove/backend/internal/metrics"
	"github.com/trove/backend/internal/models"
	"github.com/trove/backend/internal/moderation"
)

const accountWriteAttempts = 3

// EnforcementOptions carries the admin-supplied parts of a decision.
type EnforcementOptions struct {
	AdminID        string
	SuspensionDays int // 0 means the configured default
	Notes          string
}

// EnforcementResult describes what one enforced decision did.
type EnforcementResult struct {
	ReportID         string          `json:"report_id"`
	UserID           string          `json:"user_id"`
	Action           models.Action   `json:"action"`
	Severity         models.Severity `json:"severity"`
	Weight           int             `json:"weight"`
	NewTotal         int             `json:"new_total"`
	SuspensionExpiry *time.Time      `json:"suspension_expiry,omitempty"`
	ContentRemoved   bool            `json:"content_removed"`
	RemovedImageURLs []string        `json:"-"`
}

// EnforcementService applies a resolved action as one logical unit: ledger
// append, account mutation, content takedown, report status transition. All
// writes for a given user are serialized behind a per-user mutex so
// projected-total reads stay causally ordered with the appends they drive.
//
// The ledger append is the source of truth. Writes after it that fail are
// retried, then queued as repair documents and surfaced as a
// PartialFailureError — the stores are separate and not transactional across
// each other.
type EnforcementService struct {
	reports  ReportStore
	ledger   StrikeLedger
	accounts AccountStore
	listings ListingStore
	repairs  RepairStore
	cleaner  ContentCleaner // optional

	defaultSuspensionDays int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEnforcementService(reports ReportStore, ledger StrikeLedger, accounts AccountStore, listings ListingStore, repairs RepairStore, cleaner ContentCleaner, defaultSuspensionDays int) *EnforcementService {
	if defaultSuspensionDays <= 0 {
		defaultSuspensionDays = 7
	}
	return &EnforcementService{
		reports:               reports,
		ledger:                ledger,
		accounts:              accounts,
		listings:              listings,
		repairs:               repairs,
		cleaner:               cleaner,
		defaultSuspensionDays: defaultSuspensionDays,
		locks:                 make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing enforcement writes for one user.
// Lock granularity is the reported user, the same domain the ledger and the
// account state share.
func (s *EnforcementService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Enforce applies action to the report's target. The caller has already
// authorized the admin and validated the input. Once the mutation sequence
// starts it runs to completion or explicit repair queueing; it is never
// abandoned mid-way on context cancellation.
func (s *EnforcementService) Enforce(ctx context.Context, report *models.Report, severity models.Severity, action models.Action, opts EnforcementOptions) (*EnforcementResult, error) {
	if report.ReportedUserID == "" {
		return nil, ErrUserNotFound
	}

	lock := s.userLock(report.ReportedUserID)
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the lock: a racing decision on the same report may have
	// won while we waited.
	fresh, err := s.reports.GetByID(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	if fresh.Status != models.ReportPending {
		return nil, ErrAlreadyProcessed
	}

	result := &EnforcementResult{
		ReportID: report.ID,
		UserID:   report.ReportedUserID,
		Action:   action,
		Severity: severity,
	}

	if action == models.ActionDismiss {
		if err := s.reports.SetStatusIfPending(ctx, report.ID, models.ReportDismissed); err != nil {
			return nil, err
		}
		metrics.DecisionsTotal.WithLabelValues(string(action)).Inc()
		return result, nil
	}

	// Read-before-write: the projected total is the pre-append total plus
	// this strike's weight, computed under the same lock as the append.
	total, err := s.ledger.TotalForUser(ctx, report.ReportedUserID)
	if err != nil {
		metrics.EnforcementFailures.WithLabelValues("ledger").Inc()
		return nil, err
	}

	weight := moderation.Weight(severity)
	strike := &models.Strike{
		ID:        uuid.NewString(),
		UserID:    report.ReportedUserID,
		ReportID:  report.ID,
		Severity:  severity,
		Weight:    weight,
		Action:    action,
		AdminID:   opts.AdminID,
		Note:      opts.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledger.Append(ctx, strike); err != nil {
		// Nothing else has been written: a clean, total failure.
		metrics.EnforcementFailures.WithLabelValues("ledger").Inc()
		return nil, err
	}
	result.Weight = weight
	result.NewTotal = total + weight

	// The strike is committed. From here on, failures become repairs.
	if err := s.applyAccountState(ctx, report, action, opts, result); err != nil {
		return result, err
	}
	if err := s.removeContent(ctx, report, result); err != nil {
		return result, err
	}
	if err := s.reports.SetStatusIfPending(ctx, report.ID, models.ReportResolved); err != nil {
		metrics.EnforcementFailures.WithLabelValues("status").Inc()
		if errors.Is(err, ErrAlreadyProcessed) {
			// Shouldn't happen under the lock; keep the ledger honest anyway.
			log.Printf("[Enforce] report=%s resolved underneath us after strike append", report.ID)
			return result, nil
		}
		return result, s.queueRepair(ctx, report, action, models.RepairStageStatus, nil, err)
	}

	metrics.DecisionsTotal.WithLabelValues(string(action)).Inc()
	return result, nil
}

// applyAccountState mutates the account restriction for suspend/ban. Warn
// touches no account flags.
func (s *EnforcementService) applyAccountState(ctx context.Context, report *models.Report, action models.Action, opts EnforcementOptions, result *EnforcementResult) error {
	if action == models.ActionWarn {
		return nil
	}

	now := time.Now().UTC()
	next := &models.AccountRestriction{UserID: report.ReportedUserID, UpdatedAt: now}

	switch action {
	case models.ActionTempSuspend:
		days := opts.SuspensionDays
		if days <= 0 {
			days = s.defaultSuspensionDays
		}
		expiry := now.Add(time.Duration(days) * 24 * time.Hour)
		next.Suspended = true
		next.SuspensionExpiry = &expiry
		result.SuspensionExpiry = &expiry

		current, err := s.accounts.GetRestriction(ctx, report.ReportedUserID)
		if err != nil {
			metrics.EnforcementFailures.WithLabelValues("account").Inc()
			return s.queueRepair(ctx, report, action, models.RepairStageAccount, next, err)
		}
		if current.Banned {
			// A ban is the more severe terminal state; never downgrade it to
			// a suspension, even for a concurrent report.
			log.Printf("[Enforce] user=%s already banned, suspension from report=%s not applied", report.ReportedUserID, report.ID)
			result.SuspensionExpiry = nil
			return nil
		}
	case models.ActionBan:
		// A ban supersedes and clears any suspension.
		next.Banned = true
	default:
		return nil
	}

	err := withRetry(ctx, accountWriteAttempts, func() error {
		return s.accounts.SetRestriction(ctx, next)
	})
	if err != nil {
		metrics.EnforcementFailures.WithLabelValues("account").Inc()
		return s.queueRepair(ctx, report, action, models.RepairStageAccount, next, err)
	}
	return nil
}

// removeContent takes the reported listing down. User reports carry no
// content action.
func (s *EnforcementService) removeContent(ctx context.Context, report *models.Report, result *EnforcementResult) error {
	if report.TargetType != models.TargetListing {
		return nil
	}

	urls, err := s.listings.TakeDown(ctx, report.TargetID)
	if err != nil {
		metrics.EnforcementFailures.WithLabelValues("content").Inc()
		return s.queueRepair(ctx, report, result.Action, models.RepairStageContent, nil, err)
	}
	result.ContentRemoved = true
	result.RemovedImageURLs = urls

	if s.cleaner != nil && len(urls) > 0 {
		s.cleaner.DeleteImages(ctx, urls)
	}
	return nil
}

// queueRepair records the divergence and wraps the cause in a
// PartialFailureError. If even the repair queue write fails, the error is
// still surfaced — only the reconciliation breadcrumb is lost.
func (s *EnforcementService) queueRepair(ctx context.Context, report *models.Report, action models.Action, stage string, restriction *models.AccountRestriction, cause error) error {
	// The repair carries everything the failed stage and all later stages
	// need, so the reconciler can finish the sequence on its own.
	listingID := ""
	if report.TargetType == models.TargetListing {
		listingID = report.TargetID
	}
	now := time.Now().UTC()
	repair := &models.Repair{
		ID:          uuid.NewString(),
		ReportID:    report.ID,
		UserID:      report.ReportedUserID,
		Action:      action,
		Stage:       stage,
		Restriction: restriction,
		ListingID:   listingID,
		LastError:   cause.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repairs.Queue(ctx, repair); err != nil {
		log.Printf("[Enforce] report=%s failed to queue %s repair: %v (original: %v)", report.ID, stage, err, cause)
		return &PartialFailureError{Stage: stage, Err: cause}
	}
	metrics.RepairsQueued.Inc()
	log.Printf("[Enforce] report=%s queued %s repair %s: %v", report.ID, stage, repair.ID, cause)
	return &PartialFailureError{Stage: stage, RepairID: repair.ID, Err: cause}
}

// withRetry runs fn up to attempts times with a short linear backoff.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt < attempts-1 {
			backoff := time.Duration(attempt+1) * 200 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return err
			}
		}
	}
	return err
}
