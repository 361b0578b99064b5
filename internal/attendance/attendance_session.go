package attendance

import (
	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"
)

type SessionState int

const (
	StateNoRecord SessionState = iota
	StateOpen
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "no_record"
	}
}

type Transition int

const (
	TransitionOpen Transition = iota + 1
	TransitionClose
	TransitionReopen
)

// StateOf maps a stored record to its session state. Absent records
// count as closed.
func StateOf(rec *AttendanceRecord) SessionState {
	switch {
	case rec == nil:
		return StateNoRecord
	case rec.OpenSince != nil:
		return StateOpen
	default:
		return StateClosed
	}
}

// InferDirection picks the action for an event submitted without one.
func InferDirection(state SessionState) string {
	if state == StateOpen {
		return ActionOut
	}
	return ActionIn
}

// Decide returns the transition for action in the given state. Reopening
// a closed day requires multiSession and a record that was clocked in.
func Decide(rec *AttendanceRecord, action string, multiSession bool) (Transition, error) {
	state := StateOf(rec)
	switch action {
	case ActionIn:
		switch state {
		case StateNoRecord:
			return TransitionOpen, nil
		case StateOpen:
			return 0, attendanceerrors.ErrSessionAlreadyOpen
		default:
			if multiSession && rec.IsPresent() {
				return TransitionReopen, nil
			}
			return 0, attendanceerrors.ErrSessionAlreadyClosed
		}
	case ActionOut:
		if state == StateOpen {
			return TransitionClose, nil
		}
		return 0, attendanceerrors.ErrNoOpenSession
	default:
		return 0, attendanceerrors.ErrInvalidDirection
	}
}
