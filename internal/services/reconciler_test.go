package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trove/backend/internal/models"
)

func TestReconcilerFinishesAccountStage(t *testing.T) {
	report := pendingReport("r1", "u1")
	reports := newFakeReportStore(report)
	accounts := newFakeAccountStore()
	listings := newFakeListingStore()
	repairs := &fakeRepairStore{}

	require.NoError(t, repairs.Queue(context.Background(), &models.Repair{
		ID:       "rep1",
		ReportID: "r1",
		UserID:   "u1",
		Action:   models.ActionBan,
		Stage:    models.RepairStageAccount,
		Restriction: &models.AccountRestriction{
			UserID:    "u1",
			Banned:    true,
			UpdatedAt: time.Now().UTC(),
		},
	}))

	r := NewReconciler(repairs, reports, accounts, listings, nil)
	repaired, err := r.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	restriction, err := accounts.GetRestriction(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, restriction.Banned)

	// The reconciler also finishes the later stages.
	assert.Equal(t, models.ReportResolved, reports.status("r1"))
	assert.True(t, repairs.repairs[0].Repaired)
}

func TestReconcilerContentStageTakesListingDown(t *testing.T) {
	report := pendingReport("r1", "u1")
	reports := newFakeReportStore(report)
	listings := newFakeListingStore(&models.Listing{ID: "l1", UserID: "u1", CoverPhoto: "cover.jpg"})
	repairs := &fakeRepairStore{}
	cleaner := &fakeCleaner{}

	require.NoError(t, repairs.Queue(context.Background(), &models.Repair{
		ID:        "rep1",
		ReportID:  "r1",
		UserID:    "u1",
		Action:    models.ActionWarn,
		Stage:     models.RepairStageContent,
		ListingID: "l1",
	}))

	r := NewReconciler(repairs, reports, newFakeAccountStore(), listings, cleaner)
	repaired, err := r.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	_, err = listings.GetByID(context.Background(), "l1")
	assert.ErrorIs(t, err, ErrListingNotFound)
	assert.Equal(t, []string{"cover.jpg"}, cleaner.deleted)
	assert.Equal(t, models.ReportResolved, reports.status("r1"))
}

func TestReconcilerNeverDowngradesBan(t *testing.T) {
	report := pendingReport("r1", "u1")
	reports := newFakeReportStore(report)
	accounts := newFakeAccountStore()
	repairs := &fakeRepairStore{}

	// The user got banned after this suspension repair was queued.
	require.NoError(t, accounts.SetRestriction(context.Background(), &models.AccountRestriction{
		UserID: "u1",
		Banned: true,
	}))

	expiry := time.Now().UTC().Add(7 * 24 * time.Hour)
	require.NoError(t, repairs.Queue(context.Background(), &models.Repair{
		ID:       "rep1",
		ReportID: "r1",
		UserID:   "u1",
		Action:   models.ActionTempSuspend,
		Stage:    models.RepairStageAccount,
		Restriction: &models.AccountRestriction{
			UserID:           "u1",
			Suspended:        true,
			SuspensionExpiry: &expiry,
		},
	}))

	r := NewReconciler(repairs, reports, accounts, newFakeListingStore(), nil)
	repaired, err := r.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	restriction, err := accounts.GetRestriction(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, restriction.Banned)
	assert.False(t, restriction.Suspended)
}

func TestReconcilerToleratesAlreadyResolvedReport(t *testing.T) {
	report := pendingReport("r1", "u1")
	report.Status = models.ReportResolved
	reports := newFakeReportStore(report)
	repairs := &fakeRepairStore{}

	require.NoError(t, repairs.Queue(context.Background(), &models.Repair{
		ID:       "rep1",
		ReportID: "r1",
		UserID:   "u1",
		Action:   models.ActionWarn,
		Stage:    models.RepairStageStatus,
	}))

	r := NewReconciler(repairs, reports, newFakeAccountStore(), newFakeListingStore(), nil)
	repaired, err := r.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	assert.True(t, repairs.repairs[0].Repaired)
}

func TestReconcilerRecordsFailedAttempts(t *testing.T) {
	report := pendingReport("r1", "u1")
	reports := newFakeReportStore(report)
	listings := newFakeListingStore()
	listings.takenErr = assert.AnError
	repairs := &fakeRepairStore{}

	require.NoError(t, repairs.Queue(context.Background(), &models.Repair{
		ID:        "rep1",
		ReportID:  "r1",
		UserID:    "u1",
		Action:    models.ActionWarn,
		Stage:     models.RepairStageContent,
		ListingID: "l1",
	}))

	r := NewReconciler(repairs, reports, newFakeAccountStore(), listings, nil)
	repaired, err := r.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)

	assert.False(t, repairs.repairs[0].Repaired)
	assert.Equal(t, 1, repairs.repairs[0].Attempts)
	assert.NotEmpty(t, repairs.repairs[0].LastError)
}
