package models

import (
	"errors"
	"time"
)

// AppointmentStatus represents the lifecycle status of an appointment.
// Pending is the sole initial state; Completed, Declined, Cancelled and
// "No Show" are terminal for the normal workflow.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusApproved  AppointmentStatus = "Approved" // shown to users as "On Queue"
	StatusCompleted AppointmentStatus = "Completed"
	StatusDeclined  AppointmentStatus = "Declined"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusNoShow    AppointmentStatus = "No Show"
)

// AllStatuses lists every known status, in workflow order.
var AllStatuses = []AppointmentStatus{
	StatusPending,
	StatusApproved,
	StatusCompleted,
	StatusDeclined,
	StatusCancelled,
	StatusNoShow,
}

// IsKnown reports whether s is one of the defined statuses. Unknown
// values coming back from older records are tolerated for display but
// never accepted as a transition source or target.
func (s AppointmentStatus) IsKnown() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted, StatusDeclined, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether s ends the normal workflow. Only terminal
// appointments may be archived.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusDeclined, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// DisplayLabel returns the user-facing label for a status. Every known
// status has an explicit arm; an unknown value renders its literal
// string rather than failing.
func (s AppointmentStatus) DisplayLabel() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "On Queue"
	case StatusCompleted:
		return "Completed"
	case StatusDeclined:
		return "Declined"
	case StatusCancelled:
		return "Cancelled"
	case StatusNoShow:
		return "No Show"
	default:
		return string(s)
	}
}

// DisplayColor returns the badge color for a status, falling back to
// gray for anything unrecognized.
func (s AppointmentStatus) DisplayColor() string {
	switch s {
	case StatusPending:
		return "amber"
	case StatusApproved:
		return "blue"
	case StatusCompleted:
		return "green"
	case StatusDeclined:
		return "red"
	case StatusCancelled:
		return "red"
	case StatusNoShow:
		return "zinc"
	default:
		return "gray"
	}
}

// Action names a lifecycle operation on an appointment. The PATCH
// endpoints use the same strings as path suffixes.
type Action string

const (
	ActionApprove      Action = "approve"
	ActionDecline      Action = "decline"
	ActionComplete     Action = "completed"
	ActionNoShow       Action = "noshow"
	ActionCancel       Action = "cancelled"
	ActionEdit         Action = "edit"       // patient edit of schedule/services while Pending
	ActionReschedule   Action = "reschedule" // admin schedule change while Approved
	ActionAssignDoctor Action = "doctor"     // admin doctor assignment while Approved
)

var (
	// ErrIllegalTransition is returned when the action is not defined
	// for the appointment's current status.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrRoleDenied is returned when the action exists for the status
	// but the acting role (or non-owner) may not invoke it.
	ErrRoleDenied = errors.New("role not allowed to perform this action")
	// ErrNotToday is returned when completing an appointment whose
	// schedule is not on the current calendar day.
	ErrNotToday = errors.New("appointment can only be completed on its scheduled date")
	// ErrNotArchivable is returned when archiving a non-terminal appointment.
	ErrNotArchivable = errors.New("only a finished appointment can be archived")
)

// transitionRule describes one row of the lifecycle table.
type transitionRule struct {
	To         AppointmentStatus
	AdminOnly  bool // invoked by admins
	OwnerOnly  bool // invoked by the booking patient
	SelfLoop   bool // mutates fields without changing status
	SameDayReq bool // legal only when the schedule is today
}

// transitions is the full lifecycle table. Anything absent here is an
// illegal transition regardless of role.
var transitions = map[AppointmentStatus]map[Action]transitionRule{
	StatusPending: {
		ActionApprove: {To: StatusApproved, AdminOnly: true},
		ActionDecline: {To: StatusDeclined, AdminOnly: true},
		ActionEdit:    {To: StatusPending, OwnerOnly: true, SelfLoop: true},
		ActionCancel:  {To: StatusCancelled, OwnerOnly: true},
	},
	StatusApproved: {
		ActionCancel:       {To: StatusCancelled, OwnerOnly: true},
		ActionComplete:     {To: StatusCompleted, AdminOnly: true, SameDayReq: true},
		ActionNoShow:       {To: StatusNoShow, AdminOnly: true},
		ActionReschedule:   {To: StatusApproved, AdminOnly: true, SelfLoop: true},
		ActionAssignDoctor: {To: StatusApproved, AdminOnly: true, SelfLoop: true},
	},
}

// Transition resolves the next status for an action invoked by the
// given role. isOwner must be true when the acting user is the booking
// patient. Same-day gating for ActionComplete is checked against now.
func Transition(from AppointmentStatus, action Action, role Role, isOwner bool, schedule, now time.Time) (AppointmentStatus, error) {
	rules, ok := transitions[from]
	if !ok {
		return from, ErrIllegalTransition
	}
	rule, ok := rules[action]
	if !ok {
		return from, ErrIllegalTransition
	}
	if rule.AdminOnly && role != RoleAdmin {
		return from, ErrRoleDenied
	}
	if rule.OwnerOnly && !(role == RolePatient && isOwner) {
		return from, ErrRoleDenied
	}
	if rule.SameDayReq && !SameCalendarDay(schedule, now) {
		return from, ErrNotToday
	}
	return rule.To, nil
}

// AllowedActions returns the exact set of actions a user with the given
// role may currently invoke, in a fixed order. This is what decides
// which controls a client should render for an appointment.
func AllowedActions(status AppointmentStatus, role Role, isOwner bool) []Action {
	order := []Action{
		ActionApprove, ActionDecline, ActionEdit, ActionCancel,
		ActionComplete, ActionNoShow, ActionReschedule, ActionAssignDoctor,
	}
	rules, ok := transitions[status]
	if !ok {
		return nil
	}
	var allowed []Action
	for _, action := range order {
		rule, ok := rules[action]
		if !ok {
			continue
		}
		if rule.AdminOnly && role != RoleAdmin {
			continue
		}
		if rule.OwnerOnly && !(role == RolePatient && isOwner) {
			continue
		}
		allowed = append(allowed, action)
	}
	return allowed
}

// CanComplete reports whether the completed action is enabled for the
// given schedule, regardless of time of day.
func CanComplete(schedule, now time.Time) bool {
	return SameCalendarDay(schedule, now)
}

// SameCalendarDay compares two instants by local calendar date.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
