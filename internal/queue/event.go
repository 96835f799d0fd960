package queue

// VisitScheduledEvent is published after an adopter successfully schedules
// a visit. Consumers get the snapshot values, not live references.
type VisitScheduledEvent struct {
	PetID       uint64 `json:"pet_id"`
	PetName     string `json:"pet_name"`
	OwnerID     uint64 `json:"owner_id"`
	OwnerName   string `json:"owner_name"`
	AdopterID   uint64 `json:"adopter_id"`
	AdopterName string `json:"adopter_name"`
	ScheduledAt string `json:"scheduled_at"` // RFC3339 UTC
}

// AdoptionConcludedEvent is published after an owner finalizes an
// adoption. AdopterID/AdopterName are zero-valued when the owner
// concluded without any visit ever scheduled.
type AdoptionConcludedEvent struct {
	PetID       uint64 `json:"pet_id"`
	PetName     string `json:"pet_name"`
	OwnerID     uint64 `json:"owner_id"`
	OwnerName   string `json:"owner_name"`
	AdopterID   uint64 `json:"adopter_id,omitempty"`
	AdopterName string `json:"adopter_name,omitempty"`
	ConcludedAt string `json:"concluded_at"` // RFC3339 UTC
}
