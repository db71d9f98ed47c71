// Package moderation holds the pure decision core of the trust & safety
// engine: reason classification and enforcement resolution. Nothing here does
// I/O, so the admin console preview and the backend enforcement path share
// the exact same logic.
package moderation

import (
	"strings"

	"github.com/trove/backend/internal/models"
)

// defaultSeverities is the closed reason vocabulary. Codes not in the table
// classify as low — bad input degrades silently instead of blocking the
// moderation queue.
var defaultSeverities = map[string]models.Severity{
	"spam":           models.SeverityLow,
	"miscategorized": models.SeverityLow,
	"duplicate":      models.SeverityLow,
	"misleading":     models.SeverityMedium,
	"inappropriate":  models.SeverityMedium,
	"counterfeit":    models.SeverityMedium,
	"scam":           models.SeverityHigh,
	"harassment":     models.SeverityHigh,
	"prohibited":     models.SeverityHigh,
}

// strikeWeights is fixed by design: low=1, medium=2, high=3. Not configurable
// at runtime.
var strikeWeights = map[models.Severity]int{
	models.SeverityLow:    1,
	models.SeverityMedium: 2,
	models.SeverityHigh:   3,
}

// Classifier maps report reason codes to severities. The table is set at
// construction and never mutated.
type Classifier struct {
	severities map[string]models.Severity
}

func NewClassifier() *Classifier {
	return &Classifier{severities: defaultSeverities}
}

func (c *Classifier) Classify(reason string) models.Severity {
	if s, ok := c.severities[strings.ToLower(strings.TrimSpace(reason))]; ok {
		return s
	}
	return models.SeverityLow
}

// Weight returns the strike weight for a severity. Unknown severities weigh
// as low, matching the classifier's fallback.
func Weight(severity models.Severity) int {
	if w, ok := strikeWeights[severity]; ok {
		return w
	}
	return strikeWeights[models.SeverityLow]
}
