package models

import "time"

// AccountRestriction is the enforcement-owned slice of a user account. The
// Enforcement Executor is the sole writer: banned and suspended are mutually
// exclusive in the state it produces (a ban clears any suspension), and a
// suspension always carries an expiry.
type AccountRestriction struct {
	UserID           string     `json:"user_id" bson:"user_id"`
	Banned           bool       `json:"banned" bson:"banned"`
	Suspended        bool       `json:"suspended" bson:"suspended"`
	SuspensionExpiry *time.Time `json:"suspension_expiry,omitempty" bson:"suspension_expiry,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at"`
}

// SuspendedAt reports whether the suspension is still in effect at the given
// instant. Expiry is enforced by readers; there is no background sweep.
func (a *AccountRestriction) SuspendedAt(now time.Time) bool {
	if !a.Suspended || a.SuspensionExpiry == nil {
		return false
	}
	return now.Before(*a.SuspensionExpiry)
}
