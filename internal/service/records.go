package service

import (
	"context"

	apperrors "securevet.io/securevet/internal/pkg/errors"

	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/pkg/fieldcrypt"
	"securevet.io/securevet/internal/store"
)

// RecordView is a medical record with its notes decrypted for an
// authorized reader.
type RecordView struct {
	ID        string `json:"id"`
	PetID     string `json:"pet_id"`
	PetName   string `json:"pet_name,omitempty"`
	Date      string `json:"date"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	Notes     string `json:"notes"`
	CreatedBy string `json:"created_by,omitempty"`
}

// Records serves role-filtered medical record reads and manual creation.
type Records struct {
	records store.Records
	pets    store.Pets
	keyring *fieldcrypt.Keyring
}

// NewRecords creates the record service.
func NewRecords(records store.Records, pets store.Pets, keyring *fieldcrypt.Keyring) *Records {
	return &Records{records: records, pets: pets, keyring: keyring}
}

// Visible lists the records the actor may read: staff and admins see
// all, clients only records of their own pets. Notes come back
// decrypted; a record whose key is gone keeps an empty notes field
// rather than hiding the whole row.
func (s *Records) Visible(ctx context.Context, actor domain.Actor) ([]RecordView, error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	var owned map[string]domain.Pet
	if !actor.Role.Can(domain.CapViewAllRecords) {
		pets, err := s.pets.ListByOwner(ctx, actor.ID)
		if err != nil {
			return nil, apperrors.ErrStoreUnavailable(err)
		}
		owned = make(map[string]domain.Pet, len(pets))
		for _, p := range pets {
			owned[p.ID] = p
		}
	}

	out := make([]RecordView, 0, len(all))
	for _, r := range all {
		if owned != nil {
			if _, ok := owned[r.PetID]; !ok {
				continue
			}
		}
		out = append(out, s.view(ctx, r))
	}
	return out, nil
}

// Create stores a manually authored record with encrypted notes.
func (s *Records) Create(ctx context.Context, actor domain.Actor, r *domain.MedicalRecord, notes string) error {
	if !actor.Role.Can(domain.CapCreateRecord) {
		return apperrors.Forbidden(apperrors.CodeForbiddenRole, "role may not create records")
	}
	if _, err := s.pets.GetByID(ctx, r.PetID); err != nil {
		return apperrors.NotFound(apperrors.CodePetNotFound, "pet not found").
			WithParams(map[string]interface{}{"pet_id": r.PetID})
	}

	env, err := s.keyring.Encrypt(notes)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "encrypt record notes", 500)
	}
	r.Notes = env
	r.CreatedBy = actor.ID

	if err := s.records.Create(ctx, r); err != nil {
		return apperrors.ErrStoreUnavailable(err)
	}
	return nil
}

// EncryptNotes seals plaintext notes under the active key. Used by the
// completion flow, which writes the record through the appointment store.
func (s *Records) EncryptNotes(notes string) (fieldcrypt.Envelope, error) {
	return s.keyring.Encrypt(notes)
}

func (s *Records) view(ctx context.Context, r domain.MedicalRecord) RecordView {
	v := RecordView{
		ID:        r.ID,
		PetID:     r.PetID,
		Date:      r.Date,
		Diagnosis: r.Diagnosis,
		Treatment: r.Treatment,
		CreatedBy: r.CreatedBy,
	}
	if pet, err := s.pets.GetByID(ctx, r.PetID); err == nil {
		v.PetName = pet.Name
	}
	if plain, err := s.keyring.Decrypt(r.Notes); err == nil {
		v.Notes = plain
	}
	return v
}
