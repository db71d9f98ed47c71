package models

import "time"

// Repair stages — which write in the enforcement sequence diverged after the
// strike ledger committed.
const (
	RepairStageAccount = "account"
	RepairStageContent = "content"
	RepairStageStatus  = "status"
)

// Repair records a partial enforcement failure for later reconciliation. The
// strike is already committed when a repair is queued; the worker re-applies
// the remaining writes idempotently.
type Repair struct {
	ID          string              `json:"id" bson:"_id"`
	ReportID    string              `json:"report_id" bson:"report_id"`
	UserID      string              `json:"user_id" bson:"user_id"`
	Action      Action              `json:"action" bson:"action"`
	Stage       string              `json:"stage" bson:"stage"`
	Restriction *AccountRestriction `json:"restriction,omitempty" bson:"restriction,omitempty"`
	ListingID   string              `json:"listing_id,omitempty" bson:"listing_id,omitempty"`
	Attempts    int                 `json:"attempts" bson:"attempts"`
	Repaired    bool                `json:"repaired" bson:"repaired"`
	LastError   string              `json:"last_error,omitempty" bson:"last_error,omitempty"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}
