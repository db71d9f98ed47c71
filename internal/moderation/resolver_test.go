package moderation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trove/backend/internal/models"
)

func TestResolveThresholds(t *testing.T) {
	tests := []struct {
		total    int
		severity models.Severity
		want     models.Action
	}{
		{0, models.SeverityLow, models.ActionDismiss},
		{1, models.SeverityLow, models.ActionWarn},
		{2, models.SeverityLow, models.ActionWarn},
		{2, models.SeverityMedium, models.ActionWarn},
		{3, models.SeverityLow, models.ActionTempSuspend},
		{3, models.SeverityMedium, models.ActionTempSuspend},
		{5, models.SeverityMedium, models.ActionTempSuspend},
		{6, models.SeverityLow, models.ActionBan},
		{6, models.SeverityMedium, models.ActionBan},
		{9, models.SeverityLow, models.ActionBan},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.severity, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.total, tt.severity))
		})
	}
}

func TestResolveHighSeverityFloor(t *testing.T) {
	// A high-severity violation never resolves below a temporary suspension,
	// even on a first offense.
	assert.Equal(t, models.ActionTempSuspend, Resolve(3, models.SeverityHigh))
	assert.Equal(t, models.ActionTempSuspend, Resolve(4, models.SeverityHigh))
	assert.Equal(t, models.ActionTempSuspend, Resolve(5, models.SeverityHigh))
	assert.Equal(t, models.ActionBan, Resolve(6, models.SeverityHigh))
	assert.Equal(t, models.ActionBan, Resolve(12, models.SeverityHigh))
}

func TestResolveIsDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Equal(t, Resolve(4, models.SeverityMedium), Resolve(4, models.SeverityMedium))
	}
}

func TestResolveSeverityStrictlyEscalates(t *testing.T) {
	// At any total, a higher severity never resolves to a weaker action.
	rank := map[models.Action]int{
		models.ActionDismiss:     0,
		models.ActionWarn:        1,
		models.ActionTempSuspend: 2,
		models.ActionBan:         3,
	}
	for total := 0; total <= 10; total++ {
		low := rank[Resolve(total, models.SeverityLow)]
		medium := rank[Resolve(total, models.SeverityMedium)]
		high := rank[Resolve(total, models.SeverityHigh)]
		assert.GreaterOrEqual(t, medium, low, "total=%d", total)
		assert.GreaterOrEqual(t, high, medium, "total=%d", total)
	}
}
