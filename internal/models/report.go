package models

import (
	"strings"
	"time"
)

// Report target kinds.
const (
	TargetListing = "listing"
	TargetUser    = "user"
)

// Report statuses. Status is monotonic: once resolved or dismissed a report
// is never reopened.
const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// Report is a single complaint filed against a listing or a user. Severity is
// classified once at intake and cached on the document; reclassifying later
// would corrupt historical strike totals.
type Report struct {
	ID             string    `json:"id" bson:"_id"`
	TargetType     string    `json:"target_type" bson:"target_type"`
	TargetID       string    `json:"target_id" bson:"target_id"`
	ReportedUserID string    `json:"reported_user_id" bson:"reported_user_id"`
	ReporterID     string    `json:"reporter_id" bson:"reporter_id"`
	Reason         string    `json:"reason" bson:"reason"`
	Description    string    `json:"description,omitempty" bson:"description,omitempty"`
	Severity       Severity  `json:"severity" bson:"severity"`
	Status         string    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

type CreateReportRequest struct {
	TargetType     string `json:"target_type"`
	TargetID       string `json:"target_id"`
	Reason         string `json:"reason"`
	Description    string `json:"description"`
	RecaptchaToken string `json:"recaptchaToken"`
}

func (r *CreateReportRequest) Validate() map[string]string {
	errors := make(map[string]string)

	switch strings.TrimSpace(r.TargetType) {
	case TargetListing, TargetUser:
	case "":
		errors["target_type"] = "Target type is required"
	default:
		errors["target_type"] = "Target type must be 'listing' or 'user'"
	}

	if strings.TrimSpace(r.TargetID) == "" {
		errors["target_id"] = "Target ID is required"
	}
	if strings.TrimSpace(r.Reason) == "" {
		errors["reason"] = "Reason is required"
	}
	if len(r.Description) > 2000 {
		errors["description"] = "Description is too long"
	}

	return errors
}

// AdminDecisionRequest is a staff decision on a pending report. An omitted
// SuspensionDays means "use the configured default" when the action is
// temp_suspend; explicit non-positive values are rejected.
type AdminDecisionRequest struct {
	Action         Action `json:"action"`
	SuspensionDays *int   `json:"suspension_days,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func (r *AdminDecisionRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Action == "" {
		errors["action"] = "Action is required"
	} else if !ValidAction(r.Action) {
		errors["action"] = "Action must be one of dismiss, warn, temp_suspend, ban"
	}

	if r.SuspensionDays != nil && *r.SuspensionDays <= 0 {
		errors["suspension_days"] = "Suspension days must be a positive integer"
	}
	if len(r.Notes) > 2000 {
		errors["notes"] = "Notes are too long"
	}

	return errors
}

// DecisionPreview mirrors what the decision endpoint would enforce, computed
// with the same classifier and resolver the executor uses.
type DecisionPreview struct {
	ReportID          string   `json:"report_id"`
	ReportedUserID    string   `json:"reported_user_id"`
	Severity          Severity `json:"severity"`
	Weight            int      `json:"weight"`
	CurrentTotal      int      `json:"current_total"`
	ProjectedTotal    int      `json:"projected_total"`
	RecommendedAction Action   `json:"recommended_action"`
}

// StrikeTotalsRequest is the bulk total lookup for the moderation queue view.
type StrikeTotalsRequest struct {
	UserIDs []string `json:"user_ids"`
}
