package models

import "time"

// Severity classifies how serious a report reason is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Action is the enforcement outcome of a moderation decision.
type Action string

const (
	ActionDismiss     Action = "dismiss"
	ActionWarn        Action = "warn"
	ActionTempSuspend Action = "temp_suspend"
	ActionBan         Action = "ban"
)

// ValidAction reports whether a is one of the four enforcement actions.
func ValidAction(a Action) bool {
	switch a {
	case ActionDismiss, ActionWarn, ActionTempSuspend, ActionBan:
		return true
	}
	return false
}

// Strike is one immutable ledger entry recording an enforced violation.
// Weight is fixed by severity at creation time and never edited; a user's
// strike total is always the sum of weights over their entries.
type Strike struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	ReportID  string    `json:"report_id,omitempty" bson:"report_id,omitempty"`
	Severity  Severity  `json:"severity" bson:"severity"`
	Weight    int       `json:"weight" bson:"weight"`
	Action    Action    `json:"action" bson:"action"`
	AdminID   string    `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
