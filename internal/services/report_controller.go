package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trove/backend/internal/metrics"
	"github.com/trove/backend/internal/models"
	"github.com/trove/backend/internal/moderation"
)

// Bounds on queue listing and bulk total lookups.
const (
	maxPendingReports  = 200
	maxStrikeBatchSize = 100
)

// ReportController orchestrates the lifecycle of a single report: intake,
// preview, and the pending → resolved/dismissed transition driven by an
// admin decision. Authorization and validation failures reject before any
// mutation; enforcement failures leave the report pending and retryable,
// guarded against double application by the executor's idempotence check.
type ReportController struct {
	authz      AuthorizationChecker
	reports    ReportStore
	ledger     StrikeLedger
	listings   ListingStore
	classifier *moderation.Classifier
	enforcer   *EnforcementService
	dispatcher *NotificationDispatcher
}

func NewReportController(authz AuthorizationChecker, reports ReportStore, ledger StrikeLedger, listings ListingStore, classifier *moderation.Classifier, enforcer *EnforcementService, dispatcher *NotificationDispatcher) *ReportController {
	return &ReportController{
		authz:      authz,
		reports:    reports,
		ledger:     ledger,
		listings:   listings,
		classifier: classifier,
		enforcer:   enforcer,
		dispatcher: dispatcher,
	}
}

// Submit files a new report. Severity is classified and cached here, once;
// listing reports resolve the listing owner as the reported user.
func (c *ReportController) Submit(ctx context.Context, reporterID string, req *models.CreateReportRequest) (*models.Report, error) {
	if reporterID == "" {
		return nil, fmt.Errorf("%w: reporter is required", ErrInvalidInput)
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, errs)
	}

	reportedUserID := strings.TrimSpace(req.TargetID)
	if req.TargetType == models.TargetListing {
		listing, err := c.listings.GetByID(ctx, req.TargetID)
		if err != nil {
			return nil, err
		}
		reportedUserID = listing.UserID
	}

	report := &models.Report{
		ID:             uuid.NewString(),
		TargetType:     req.TargetType,
		TargetID:       strings.TrimSpace(req.TargetID),
		ReportedUserID: reportedUserID,
		ReporterID:     reporterID,
		Reason:         strings.ToLower(strings.TrimSpace(req.Reason)),
		Description:    strings.TrimSpace(req.Description),
		Severity:       c.classifier.Classify(req.Reason),
		Status:         models.ReportPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := c.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	metrics.ReportsSubmitted.WithLabelValues(string(report.Severity)).Inc()
	c.dispatcher.ReportReceived(ctx, report)
	return report, nil
}

// Preview computes what the resolver would recommend for a pending report,
// with the same functions Decide enforces with.
func (c *ReportController) Preview(ctx context.Context, adminID, reportID string) (*models.DecisionPreview, error) {
	if err := c.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	report, err := c.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportPending {
		return nil, ErrAlreadyProcessed
	}

	severity := c.severityOf(report)
	weight := moderation.Weight(severity)

	total, err := c.ledger.TotalForUser(ctx, report.ReportedUserID)
	if err != nil {
		return nil, err
	}

	return &models.DecisionPreview{
		ReportID:          report.ID,
		ReportedUserID:    report.ReportedUserID,
		Severity:          severity,
		Weight:            weight,
		CurrentTotal:      total,
		ProjectedTotal:    total + weight,
		RecommendedAction: moderation.Resolve(total+weight, severity),
	}, nil
}

// Decide enforces an admin decision. The admin may override the recommended
// action; the high-severity floor is advisory and surfaced via Preview, not
// enforced here.
func (c *ReportController) Decide(ctx context.Context, adminID, reportID string, req *models.AdminDecisionRequest) (*EnforcementResult, error) {
	if err := c.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, errs)
	}

	report, err := c.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportPending {
		return nil, ErrAlreadyProcessed
	}

	days := 0
	if req.SuspensionDays != nil {
		days = *req.SuspensionDays
	}
	result, err := c.enforcer.Enforce(ctx, report, c.severityOf(report), req.Action, EnforcementOptions{
		AdminID:        adminID,
		SuspensionDays: days,
		Notes:          req.Notes,
	})
	if err != nil {
		return result, err
	}

	c.dispatcher.Notify(ctx, report, result)
	return result, nil
}

// PendingReports lists the moderation queue, newest first, bounded.
func (c *ReportController) PendingReports(ctx context.Context, adminID string, limit int) ([]models.Report, error) {
	if err := c.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxPendingReports {
		limit = maxPendingReports
	}
	return c.reports.ListPending(ctx, limit)
}

// PendingReportsForUser lists open reports against one user.
func (c *ReportController) PendingReportsForUser(ctx context.Context, adminID, userID string) ([]models.Report, error) {
	if err := c.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return c.reports.ListPendingForUser(ctx, userID)
}

// StrikeTotals resolves totals for a bounded batch of users. Unknown users
// report zero rather than erroring.
func (c *ReportController) StrikeTotals(ctx context.Context, adminID string, userIDs []string) (map[string]int, error) {
	if err := c.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return map[string]int{}, nil
	}
	if len(userIDs) > maxStrikeBatchSize {
		return nil, fmt.Errorf("%w: at most %d user ids per lookup", ErrInvalidInput, maxStrikeBatchSize)
	}
	return c.ledger.TotalsForUsers(ctx, userIDs)
}

// StrikeHistory returns one user's ledger entries for the console's
// violation-history view, newest first.
func (c *ReportController) StrikeHistory(ctx context.Context, adminID, userID string, limit int) ([]models.Strike, error) {
	if err := c.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return c.ledger.ListForUser(ctx, userID, limit)
}

func (c *ReportController) requireAdmin(ctx context.Context, adminID string) error {
	if adminID == "" {
		return ErrNotAdmin
	}
	ok, err := c.authz.IsAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAdmin
	}
	return nil
}

// severityOf returns the severity cached at intake, falling back to a fresh
// classification for reports created before severities were stored.
func (c *ReportController) severityOf(report *models.Report) models.Severity {
	if report.Severity != "" {
		return report.Severity
	}
	return c.classifier.Classify(report.Reason)
}
