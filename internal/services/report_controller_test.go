package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trove/backend/internal/models"
	"github.com/trove/backend/internal/moderation"
)

type controllerFixture struct {
	enforcementFixture
	authz      *fakeAuthz
	sink       *fakeNotificationSink
	controller *ReportController
}

func newControllerFixture(reports ...*models.Report) *controllerFixture {
	f := &controllerFixture{
		enforcementFixture: *newEnforcementFixture(reports...),
		authz:              &fakeAuthz{admins: map[string]bool{"admin-1": true}},
		sink:               &fakeNotificationSink{},
	}
	dispatcher := NewNotificationDispatcher(f.sink, nil)
	f.controller = NewReportController(f.authz, f.reports, f.ledger, f.listings, moderation.NewClassifier(), f.svc, dispatcher)
	return f
}

func TestSubmitClassifiesAndAcknowledges(t *testing.T) {
	f := newControllerFixture()

	report, err := f.controller.Submit(context.Background(), "reporter-1", &models.CreateReportRequest{
		TargetType: models.TargetUser,
		TargetID:   "u1",
		Reason:     "Harassment",
	})
	require.NoError(t, err)

	assert.Equal(t, models.SeverityHigh, report.Severity)
	assert.Equal(t, models.ReportPending, report.Status)
	assert.Equal(t, "u1", report.ReportedUserID)
	assert.Equal(t, "harassment", report.Reason)

	acks := f.sink.byType(models.NotificationReportReceived)
	require.Len(t, acks, 1)
	assert.Equal(t, "reporter-1", acks[0].UserID)
}

func TestSubmitListingReportResolvesOwner(t *testing.T) {
	f := newControllerFixture()
	f.listings = newFakeListingStore(&models.Listing{ID: "l1", UserID: "owner-1"})
	dispatcher := NewNotificationDispatcher(f.sink, nil)
	f.controller = NewReportController(f.authz, f.reports, f.ledger, f.listings, moderation.NewClassifier(), f.svc, dispatcher)

	report, err := f.controller.Submit(context.Background(), "reporter-1", &models.CreateReportRequest{
		TargetType: models.TargetListing,
		TargetID:   "l1",
		Reason:     "counterfeit",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", report.ReportedUserID)
}

func TestSubmitUnknownListing(t *testing.T) {
	f := newControllerFixture()

	_, err := f.controller.Submit(context.Background(), "reporter-1", &models.CreateReportRequest{
		TargetType: models.TargetListing,
		TargetID:   "nope",
		Reason:     "spam",
	})
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	f := newControllerFixture()

	_, err := f.controller.Submit(context.Background(), "reporter-1", &models.CreateReportRequest{
		TargetType: "organization",
		TargetID:   "u1",
		Reason:     "spam",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.controller.Submit(context.Background(), "", &models.CreateReportRequest{
		TargetType: models.TargetUser,
		TargetID:   "u1",
		Reason:     "spam",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPreviewRequiresAdmin(t *testing.T) {
	report := pendingReport("r1", "u1")
	f := newControllerFixture(report)

	_, err := f.controller.Preview(context.Background(), "regular-user", "r1")
	assert.ErrorIs(t, err, ErrNotAdmin)

	_, err = f.controller.Preview(context.Background(), "", "r1")
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestPreviewProjectsTotals(t *testing.T) {
	report := pendingReport("r1", "u1")
	report.Reason = "scam"
	report.Severity = models.SeverityHigh
	f := newControllerFixture(report)

	// Two existing low strikes.
	require.NoError(t, f.ledger.Append(context.Background(), &models.Strike{ID: "s1", UserID: "u1", Weight: 1}))
	require.NoError(t, f.ledger.Append(context.Background(), &models.Strike{ID: "s2", UserID: "u1", Weight: 2}))

	preview, err := f.controller.Preview(context.Background(), "admin-1", "r1")
	require.NoError(t, err)

	assert.Equal(t, models.SeverityHigh, preview.Severity)
	assert.Equal(t, 3, preview.Weight)
	assert.Equal(t, 3, preview.CurrentTotal)
	assert.Equal(t, 6, preview.ProjectedTotal)
	assert.Equal(t, models.ActionBan, preview.RecommendedAction)
}

func TestPreviewRejectsProcessedReport(t *testing.T) {
	report := pendingReport("r1", "u1")
	report.Status = models.ReportResolved
	f := newControllerFixture(report)

	_, err := f.controller.Preview(context.Background(), "admin-1", "r1")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestDecideEnforcesAndNotifies(t *testing.T) {
	report := pendingReport("r1", "u1")
	f := newControllerFixture(report)

	result, err := f.controller.Decide(context.Background(), "admin-1", "r1", &models.AdminDecisionRequest{
		Action: models.ActionWarn,
		Notes:  "first offense",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ActionWarn, result.Action)
	assert.Equal(t, models.ReportResolved, f.reports.status("r1"))

	require.Len(t, f.sink.byType(models.NotificationActionTaken), 1)
	warnings := f.sink.byType(models.NotificationWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "u1", warnings[0].UserID)
}

func TestDecideDismissSendsNothing(t *testing.T) {
	report := pendingReport("r1", "u1")
	f := newControllerFixture(report)

	_, err := f.controller.Decide(context.Background(), "admin-1", "r1", &models.AdminDecisionRequest{
		Action: models.ActionDismiss,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReportDismissed, f.reports.status("r1"))
	assert.Empty(t, f.sink.sent)
}

func intPtr(v int) *int { return &v }

func TestDecideRejectsInvalidAction(t *testing.T) {
	report := pendingReport("r1", "u1")
	f := newControllerFixture(report)

	_, err := f.controller.Decide(context.Background(), "admin-1", "r1", &models.AdminDecisionRequest{
		Action: models.Action("obliterate"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.controller.Decide(context.Background(), "admin-1", "r1", &models.AdminDecisionRequest{
		Action:         models.ActionTempSuspend,
		SuspensionDays: intPtr(-2),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// An explicit zero is rejected; only an omitted value means "use the
	// configured default".
	_, err = f.controller.Decide(context.Background(), "admin-1", "r1", &models.AdminDecisionRequest{
		Action:         models.ActionTempSuspend,
		SuspensionDays: intPtr(0),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecideChecksAuthorizationBeforeValidation(t *testing.T) {
	report := pendingReport("r1", "u1")
	f := newControllerFixture(report)

	// A non-admin with a garbage payload is rejected for authorization, not
	// for the payload.
	_, err := f.controller.Decide(context.Background(), "viewer", "r1", &models.AdminDecisionRequest{
		Action: models.Action("obliterate"),
	})
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestDecideSucceedsWhenNotificationsFail(t *testing.T) {
	report := pendingReport("r1", "u1")
	f := newControllerFixture(report)
	f.sink.sendErr = assert.AnError

	result, err := f.controller.Decide(context.Background(), "admin-1", "r1", &models.AdminDecisionRequest{
		Action: models.ActionWarn,
	})
	require.NoError(t, err)

	// Dropped notifications never undo or fail the enforcement behind them.
	assert.Equal(t, models.ActionWarn, result.Action)
	assert.Equal(t, models.ReportResolved, f.reports.status("r1"))
	assert.Equal(t, 1, f.ledger.count("u1"))
	assert.Empty(t, f.sink.sent)
}

func TestDecideUnknownReport(t *testing.T) {
	f := newControllerFixture()

	_, err := f.controller.Decide(context.Background(), "admin-1", "missing", &models.AdminDecisionRequest{
		Action: models.ActionWarn,
	})
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestStrikeTotals(t *testing.T) {
	f := newControllerFixture()
	require.NoError(t, f.ledger.Append(context.Background(), &models.Strike{ID: "s1", UserID: "u1", Weight: 3}))

	totals, err := f.controller.StrikeTotals(context.Background(), "admin-1", []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 3, "u2": 0}, totals)

	totals, err = f.controller.StrikeTotals(context.Background(), "admin-1", nil)
	require.NoError(t, err)
	assert.Empty(t, totals)

	_, err = f.controller.StrikeTotals(context.Background(), "viewer", []string{"u1"})
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestStrikeHistory(t *testing.T) {
	f := newControllerFixture()
	require.NoError(t, f.ledger.Append(context.Background(), &models.Strike{ID: "s1", UserID: "u1", Weight: 1, Severity: models.SeverityLow}))
	require.NoError(t, f.ledger.Append(context.Background(), &models.Strike{ID: "s2", UserID: "u1", Weight: 3, Severity: models.SeverityHigh}))
	require.NoError(t, f.ledger.Append(context.Background(), &models.Strike{ID: "s3", UserID: "u2", Weight: 2, Severity: models.SeverityMedium}))

	strikes, err := f.controller.StrikeHistory(context.Background(), "admin-1", "u1", 0)
	require.NoError(t, err)
	require.Len(t, strikes, 2)
	assert.Equal(t, "s2", strikes[0].ID)
	assert.Equal(t, "s1", strikes[1].ID)

	_, err = f.controller.StrikeHistory(context.Background(), "viewer", "u1", 0)
	assert.ErrorIs(t, err, ErrNotAdmin)

	_, err = f.controller.StrikeHistory(context.Background(), "admin-1", "", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStrikeTotalsBatchBound(t *testing.T) {
	f := newControllerFixture()

	ids := make([]string, maxStrikeBatchSize+1)
	for i := range ids {
		ids[i] = "u"
	}
	_, err := f.controller.StrikeTotals(context.Background(), "admin-1", ids)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
