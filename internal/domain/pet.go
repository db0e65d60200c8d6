package domain

import "time"

// Pet belongs to exactly one client. The owner reference is immutable
// after creation; no reassignment operation exists.
type Pet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Breed     string    `json:"breed"`
	Age       int       `json:"age"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}
