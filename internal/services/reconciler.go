package services

import (
	"context"
	"errors"
	"log"

	"github.com/trove/backend/internal/models"
)

// Reconciler works off repair documents left behind by partial enforcement
// failures. Every re-applied write is idempotent (full-state account writes,
// idempotent takedowns, conditional status transitions), so repairs are safe
// to retry until they land. Strikes are never re-appended here — the ledger
// committed before the repair existed.
type Reconciler struct {
	repairs  RepairStore
	reports  ReportStore
	accounts AccountStore
	listings ListingStore
	cleaner  ContentCleaner // optional
}

func NewReconciler(repairs RepairStore, reports ReportStore, accounts AccountStore, listings ListingStore, cleaner ContentCleaner) *Reconciler {
	return &Reconciler{
		repairs:  repairs,
		reports:  reports,
		accounts: accounts,
		listings: listings,
		cleaner:  cleaner,
	}
}

// Run processes one batch of outstanding repairs. Returns how many were
// repaired this pass.
func (r *Reconciler) Run(ctx context.Context, limit int) (int, error) {
	outstanding, err := r.repairs.ListOutstanding(ctx, limit)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range outstanding {
		repair := &outstanding[i]
		if err := r.apply(ctx, repair); err != nil {
			log.Printf("[Reconcile] repair=%s stage=%s attempt failed: %v", repair.ID, repair.Stage, err)
			if recErr := r.repairs.RecordAttempt(ctx, repair.ID, err.Error()); recErr != nil {
				log.Printf("[Reconcile] repair=%s failed to record attempt: %v", repair.ID, recErr)
			}
			continue
		}
		if err := r.repairs.MarkRepaired(ctx, repair.ID); err != nil {
			log.Printf("[Reconcile] repair=%s applied but not marked: %v", repair.ID, err)
			continue
		}
		log.Printf("[Reconcile] repair=%s stage=%s report=%s repaired", repair.ID, repair.Stage, repair.ReportID)
		repaired++
	}
	return repaired, nil
}

// apply re-runs the failed stage and every stage after it; the earlier stages
// already committed before the repair was queued.
func (r *Reconciler) apply(ctx context.Context, repair *models.Repair) error {
	switch repair.Stage {
	case models.RepairStageAccount:
		if repair.Restriction != nil {
			apply := true
			if repair.Restriction.Suspended {
				// A ban may have landed since this repair was queued; never
				// downgrade it to a suspension.
				current, err := r.accounts.GetRestriction(ctx, repair.UserID)
				if err != nil {
					return err
				}
				apply = !current.Banned
			}
			if apply {
				if err := r.accounts.SetRestriction(ctx, repair.Restriction); err != nil {
					return err
				}
			}
		}
		fallthrough
	case models.RepairStageContent:
		if repair.ListingID != "" {
			urls, err := r.listings.TakeDown(ctx, repair.ListingID)
			if err != nil {
				return err
			}
			if r.cleaner != nil && len(urls) > 0 {
				r.cleaner.DeleteImages(ctx, urls)
			}
		}
		fallthrough
	case models.RepairStageStatus:
		err := r.reports.SetStatusIfPending(ctx, repair.ReportID, models.ReportResolved)
		if err != nil && !errors.Is(err, ErrAlreadyProcessed) && !errors.Is(err, ErrReportNotFound) {
			return err
		}
		return nil
	default:
		log.Printf("[Reconcile] repair=%s has unknown stage %q, marking repaired", repair.ID, repair.Stage)
		return nil
	}
}
