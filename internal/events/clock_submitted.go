package events

import "time"

// ClockSubmittedTopic carries clock assertions from kiosk gateways that
// buffer events while the API is unreachable.
const ClockSubmittedTopic = "attendance.clock.submitted.v1"

type ClockSubmittedEvent struct {
	IdentityToken string    `json:"identity_token"`
	Instant       time.Time `json:"instant"`
	Direction     string    `json:"direction,omitempty"`
	DeviceID      string    `json:"device_id,omitempty"`
	Location      string    `json:"location,omitempty"`
}
