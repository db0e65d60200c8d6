package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus is the linear appointment state: Pending → Confirmed → Done.
// There is no cancel or decline state and no backward transition.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusDone      AppointmentStatus = "Done"
)

// DateLayout is the calendar-day format appointments carry.
const DateLayout = "2006-01-02"

// TimeLayout is the local clock-time format appointments carry.
const TimeLayout = "15:04"

// Appointment is a visit request or booking for a pet.
//
// Invariant: AssignedTo is empty exactly while Status is Pending; it is
// set in the same write that moves the status to Confirmed.
type Appointment struct {
	ID         string            `json:"id"`
	PetID      string            `json:"pet_id"`
	OwnerID    string            `json:"owner_id"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Reason     string            `json:"reason"`
	Status     AppointmentStatus `json:"status"`
	AssignedTo string            `json:"assigned_to,omitempty"`
	CreatedBy  string            `json:"created_by,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Assigned reports whether a staff member holds this appointment.
func (a *Appointment) Assigned() bool {
	return a.AssignedTo != ""
}

// CanTransition reports whether the state machine allows from → to.
// Only forward single steps exist.
func CanTransition(from, to AppointmentStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed
	case StatusConfirmed:
		return to == StatusDone
	default:
		return false
	}
}

// ValidateSchedule checks the date and time formats of a new appointment.
func ValidateSchedule(date, clock string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("date %q: want %s", date, DateLayout)
	}
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return fmt.Errorf("time %q: want %s", clock, TimeLayout)
	}
	return nil
}

// BeforeDay reports whether date falls strictly before day (both calendar
// days, in day's location). Malformed dates count as before so validation
// rejects them.
func BeforeDay(date string, day time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, date, day.Location())
	if err != nil {
		return true
	}
	y, m, dd := day.Date()
	return d.Before(time.Date(y, m, dd, 0, 0, 0, 0, day.Location()))
}
