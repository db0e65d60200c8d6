// Package service implements the clinic's read-side rules: who sees
// which appointments and records, and decrypting record notes for
// authorized readers.
package service

import (
	"context"
	"errors"

	apperrors "securevet.io/securevet/internal/pkg/errors"

	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/store"
)

// CanSee is the single access rule for appointments.
//
// Clients see appointments for their own pets. Staff see the shared
// pending queue plus their own assignments. Admins see everything.
func CanSee(actor domain.Actor, a *domain.Appointment) bool {
	switch actor.Role {
	case domain.RoleClient:
		return a.OwnerID == actor.ID
	case domain.RoleStaff:
		return !a.Assigned() || a.AssignedTo == actor.ID
	case domain.RoleAdmin:
		return true
	default:
		return false
	}
}

// AppointmentView is an appointment enriched with display names for the
// pet, its owner, and the assigned staff member.
type AppointmentView struct {
	domain.Appointment
	PetName   string `json:"pet_name,omitempty"`
	OwnerName string `json:"owner_name,omitempty"`
	StaffName string `json:"staff_name,omitempty"`
}

// Appointments serves role-filtered appointment reads.
type Appointments struct {
	appts store.Appointments
	pets  store.Pets
	users store.Users
}

// NewAppointments creates the appointment read service.
func NewAppointments(appts store.Appointments, pets store.Pets, users store.Users) *Appointments {
	return &Appointments{appts: appts, pets: pets, users: users}
}

// Visible lists every appointment the actor may see, enriched with
// display names. The result is never nil.
func (s *Appointments) Visible(ctx context.Context, actor domain.Actor) ([]AppointmentView, error) {
	all, err := s.appts.List(ctx)
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	out := make([]AppointmentView, 0, len(all))
	for i := range all {
		if !CanSee(actor, &all[i]) {
			continue
		}
		out = append(out, s.enrich(ctx, all[i]))
	}
	return out, nil
}

// Get returns one appointment if the actor may see it. A hidden
// appointment reads as not found so its existence does not leak.
func (s *Appointments) Get(ctx context.Context, actor domain.Actor, id string) (*AppointmentView, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrAppointmentNotFoundf(id)
		}
		return nil, apperrors.ErrStoreUnavailable(err)
	}
	if !CanSee(actor, a) {
		return nil, apperrors.ErrAppointmentNotFoundf(id)
	}
	v := s.enrich(ctx, *a)
	return &v, nil
}

// enrich fills in display names. A missing referent leaves its name
// blank rather than failing the read.
func (s *Appointments) enrich(ctx context.Context, a domain.Appointment) AppointmentView {
	v := AppointmentView{Appointment: a}
	if pet, err := s.pets.GetByID(ctx, a.PetID); err == nil {
		v.PetName = pet.Name
	}
	if owner, err := s.users.GetByID(ctx, a.OwnerID); err == nil {
		v.OwnerName = owner.Name
	}
	if a.Assigned() {
		if staff, err := s.users.GetByID(ctx, a.AssignedTo); err == nil {
			v.StaffName = staff.Name
		}
	}
	return v
}
