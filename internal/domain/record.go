package domain

import (
	"time"

	"securevet.io/securevet/internal/pkg/fieldcrypt"
)

// MedicalRecord is append-only: created when an appointment completes or
// manually by staff, never updated or deleted.
//
// Notes are stored encrypted; the envelope keeps the key id alongside the
// nonce and ciphertext so keys can be added without rewriting records.
type MedicalRecord struct {
	ID        string              `json:"id"`
	PetID     string              `json:"pet_id"`
	Date      string              `json:"date"`
	Diagnosis string              `json:"diagnosis"`
	Treatment string              `json:"treatment"`
	Notes     fieldcrypt.Envelope `json:"notes"`
	CreatedBy string              `json:"created_by,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// AutoRecordDiagnosis is the placeholder diagnosis for records synthesized
// when an appointment is marked done.
const AutoRecordDiagnosis = "Routine Visit"

// AutoRecordNotes renders the templated notes for a synthesized record.
func AutoRecordNotes(reason string) string {
	return "Completed appointment for " + reason + "."
}
