package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/store/memory"
)

func seedAppointments(t *testing.T, db *memory.DB) (client, staff1, staff2, admin domain.Actor) {
	t.Helper()
	ctx := context.Background()

	users := []domain.User{
		{ID: "c1", Name: "Carla Ortiz", Email: "carla@vet.example", Role: domain.RoleClient},
		{ID: "c2", Name: "Other Client", Email: "other@vet.example", Role: domain.RoleClient},
		{ID: "s1", Name: "Dr. Soto", Email: "soto@vet.example", Role: domain.RoleStaff},
		{ID: "s2", Name: "Dr. Lema", Email: "lema@vet.example", Role: domain.RoleStaff},
		{ID: "a1", Name: "Root Admin", Email: "admin@vet.example", Role: domain.RoleAdmin},
	}
	for i := range users {
		require.NoError(t, db.Users().Create(ctx, &users[i]))
	}
	require.NoError(t, db.Pets().Create(ctx, &domain.Pet{ID: "p1", OwnerID: "c1", Name: "Rocky"}))
	require.NoError(t, db.Pets().Create(ctx, &domain.Pet{ID: "p2", OwnerID: "c2", Name: "Misha"}))

	appts := []domain.Appointment{
		{ID: "a-pending", PetID: "p1", OwnerID: "c1", Date: "2025-03-10", Time: "09:00", Reason: "Vaccination", Status: domain.StatusPending},
		{ID: "a-s1", PetID: "p1", OwnerID: "c1", Date: "2025-03-11", Time: "10:00", Reason: "Checkup", Status: domain.StatusConfirmed, AssignedTo: "s1"},
		{ID: "a-s2", PetID: "p2", OwnerID: "c2", Date: "2025-03-12", Time: "11:00", Reason: "Dental", Status: domain.StatusConfirmed, AssignedTo: "s2"},
	}
	for i := range appts {
		require.NoError(t, db.Appointments().Create(ctx, &appts[i]))
	}

	return domain.Actor{ID: "c1", Role: domain.RoleClient},
		domain.Actor{ID: "s1", Role: domain.RoleStaff},
		domain.Actor{ID: "s2", Role: domain.RoleStaff},
		domain.Actor{ID: "a1", Role: domain.RoleAdmin}
}

func TestVisible_ClientSeesOnlyOwnPets(t *testing.T) {
	db := memory.New()
	client, _, _, _ := seedAppointments(t, db)
	svc := NewAppointments(db.Appointments(), db.Pets(), db.Users())

	got, err := svc.Visible(context.Background(), client)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, v := range got {
		assert.Equal(t, "c1", v.OwnerID)
	}
}

func TestVisible_StaffSeesQueueAndOwnAssignments(t *testing.T) {
	db := memory.New()
	_, staff1, staff2, _ := seedAppointments(t, db)
	svc := NewAppointments(db.Appointments(), db.Pets(), db.Users())

	got, err := svc.Visible(context.Background(), staff1)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.ElementsMatch(t, []string{"a-pending", "a-s1"}, ids)

	got, err = svc.Visible(context.Background(), staff2)
	require.NoError(t, err)
	ids = ids[:0]
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.ElementsMatch(t, []string{"a-pending", "a-s2"}, ids)
}

func TestVisible_AdminSeesAll(t *testing.T) {
	db := memory.New()
	_, _, _, admin := seedAppointments(t, db)
	svc := NewAppointments(db.Appointments(), db.Pets(), db.Users())

	got, err := svc.Visible(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestVisible_Enrichment(t *testing.T) {
	db := memory.New()
	_, _, _, admin := seedAppointments(t, db)
	svc := NewAppointments(db.Appointments(), db.Pets(), db.Users())

	got, err := svc.Visible(context.Background(), admin)
	require.NoError(t, err)

	byID := make(map[string]AppointmentView, len(got))
	for _, v := range got {
		byID[v.ID] = v
	}

	assert.Equal(t, "Rocky", byID["a-s1"].PetName)
	assert.Equal(t, "Carla Ortiz", byID["a-s1"].OwnerName)
	assert.Equal(t, "Dr. Soto", byID["a-s1"].StaffName)
	assert.Empty(t, byID["a-pending"].StaffName)
}

func TestGet_HiddenAppointmentReadsAsNotFound(t *testing.T) {
	db := memory.New()
	client, _, _, _ := seedAppointments(t, db)
	svc := NewAppointments(db.Appointments(), db.Pets(), db.Users())

	// a-s2 belongs to the other client.
	_, err := svc.Get(context.Background(), client, "a-s2")
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAppointmentNotFound, appErr.Code)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestGet_VisibleAppointment(t *testing.T) {
	db := memory.New()
	_, staff1, _, _ := seedAppointments(t, db)
	svc := NewAppointments(db.Appointments(), db.Pets(), db.Users())

	got, err := svc.Get(context.Background(), staff1, "a-s1")
	require.NoError(t, err)
	assert.Equal(t, "a-s1", got.ID)
	assert.Equal(t, "Rocky", got.PetName)
}

func TestCanSee_UnknownRoleDenied(t *testing.T) {
	a := domain.Appointment{OwnerID: "c1"}
	assert.False(t, CanSee(domain.Actor{ID: "c1", Role: domain.Role("ghost")}, &a))
}
