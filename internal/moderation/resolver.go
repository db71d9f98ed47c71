package moderation

import "github.com/trove/backend/internal/models"

// Escalation thresholds on the projected strike total.
const (
	banThreshold     = 6
	suspendThreshold = 3
	warnThreshold    = 1
)

// Resolve maps a projected strike total (current total plus the incoming
// strike's weight) and the severity of the incoming violation to the required
// enforcement action. High-severity violations never resolve below a
// temporary suspension, regardless of total. Pure and deterministic.
func Resolve(projectedTotal int, severity models.Severity) models.Action {
	if severity == models.SeverityHigh {
		if projectedTotal >= banThreshold {
			return models.ActionBan
		}
		return models.ActionTempSuspend
	}

	switch {
	case projectedTotal >= banThreshold:
		return models.ActionBan
	case projectedTotal >= suspendThreshold:
		return models.ActionTempSuspend
	case projectedTotal >= warnThreshold:
		return models.ActionWarn
	default:
		return models.ActionDismiss
	}
}
