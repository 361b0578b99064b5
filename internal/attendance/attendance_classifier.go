package attendance

import (
	"time"

	"github.com/Tabintel/attendance/internal/directory"
)

// Classify compares a clock-in against the shift start plus grace on the
// clock-in's own calendar day. clockIn must already be in the service zone.
func Classify(clockIn time.Time, policy directory.ShiftPolicy) string {
	deadline := policy.StartOn(clockIn).Add(policy.Grace)
	if clockIn.After(deadline) {
		return StatusLate
	}
	return StatusOnTime
}
