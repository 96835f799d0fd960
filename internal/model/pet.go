package model

import "time"

// OwnerRef is the denormalized owner snapshot embedded in a pet. It is
// copied from the users row when the pet is created and never synced
// afterwards: renaming yourself does not rewrite the pets you posted.
type OwnerRef struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Phone  string `json:"phone"`
}

// AdopterRef is the snapshot of the user who scheduled a visit. Unlike the
// owner snapshot it carries no phone: contact flows owner-to-adopter only.
type AdopterRef struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Lifecycle states derived from the available flag and adopter presence.
const (
	StateAvailable = "AVAILABLE" // no adopter yet, open for scheduling
	StateScheduled = "SCHEDULED" // adopter assigned, adoption not finalized
	StateConcluded = "CONCLUDED" // adoption finalized, available=false
)

// Pet is a pet registered for adoption. Images is the ordered sequence of
// image references and is required to be non-empty at creation and on
// every update. Available starts true and only flips to false when the
// owner concludes the adoption.
type Pet struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Species     string      `json:"species"`
	Description string      `json:"description,omitempty"`
	Age         int         `json:"age"`
	Weight      float64     `json:"weight"`
	Images      []string    `json:"images"`
	Available   bool        `json:"available"`
	Owner       OwnerRef    `json:"owner"`
	Adopter     *AdopterRef `json:"adopter,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// State reports the lifecycle state. Concluded wins over Scheduled: a pet
// can still carry an adopter snapshot after the adoption is finalized.
func (p Pet) State() string {
	switch {
	case !p.Available:
		return StateConcluded
	case p.Adopter != nil:
		return StateScheduled
	default:
		return StateAvailable
	}
}
