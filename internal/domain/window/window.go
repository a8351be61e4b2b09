// Package window decides whether attendance can be marked for a service
// instance at a given moment. Evaluation is a pure function of its inputs;
// callers that need a live countdown re-evaluate on their own schedule.
package window

import (
	"math"
	"time"

	"shepherd/internal/domain/service"
)

// State is the eligibility state of an attendance window.
type State string

// Window states
const (
	StateNoService  State = "no_service"
	StateNotYetOpen State = "not_yet_open"
	StateOpen       State = "open"
	StateClosed     State = "closed"
)

// Evaluation is the result of evaluating a window at one instant.
type Evaluation struct {
	State            State     `json:"state"`
	SecondsUntilOpen int64     `json:"secondsUntilOpen"` // > 0 only in StateNotYetOpen
	OpensAt          time.Time `json:"opensAt"`          // zero when no instance or unparseable start
	ClosesAt         time.Time `json:"closesAt"`
}

// CanMark reports whether attendance may be recorded now.
func (e Evaluation) CanMark() bool {
	return e.State == StateOpen
}

// Evaluate computes the window state of inst at now.
// PRE: now comes from the caller's clock
// POST: Returns StateNoService for a nil instance; ambiguous time data
// (unparseable start, now on a different civil date) yields StateClosed
func Evaluate(inst *service.Instance, now time.Time) Evaluation {
	if inst == nil {
		return Evaluation{State: StateNoService}
	}

	opens, err := inst.OpensAt()
	if err != nil {
		return Evaluation{State: StateClosed}
	}
	closes, err := inst.ClosesAt()
	if err != nil {
		return Evaluation{State: StateClosed}
	}
	ev := Evaluation{OpensAt: opens, ClosesAt: closes}

	local := now.In(inst.Date.Location())
	if !service.SameDay(local, inst.Date) {
		ev.State = StateClosed
		return ev
	}

	switch {
	case local.Before(opens):
		ev.State = StateNotYetOpen
		ev.SecondsUntilOpen = int64(math.Ceil(opens.Sub(local).Seconds()))
	case local.Before(closes):
		ev.State = StateOpen
	default:
		ev.State = StateClosed
	}
	return ev
}
