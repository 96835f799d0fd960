package repository

import (
	"context"

	"github.com/getapet/adoption-api/internal/model"
)

// UserStore is the persistence contract for users. The MySQL
// implementation lives in this package; an in-memory implementation used
// by tests lives in repository/memory.
type UserStore interface {
	// Create inserts the user and fills in ID/CreatedAt/UpdatedAt.
	// Returns ErrEmailExists when the email is already taken.
	Create(ctx context.Context, u *model.User) error
	// GetByEmail fetches a user by exact email match.
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// GetByID fetches a user by id.
	GetByID(ctx context.Context, id uint64) (model.User, error)
	// Update replaces the stored row for u.ID with u. Returns
	// ErrEmailExists when the new email collides with another user.
	Update(ctx context.Context, u model.User) error
}

// PetStore is the persistence contract for pets. Update is a full
// replacement including images; there are no partial patches. SetAdopter
// and Conclude are the two lifecycle transitions and are kept separate
// from Update so that field edits can never touch lifecycle state.
type PetStore interface {
	// Create inserts the pet and its images, filling in ID and timestamps.
	Create(ctx context.Context, p *model.Pet) error
	// GetByID fetches a pet with its ordered images.
	GetByID(ctx context.Context, id uint64) (model.Pet, error)
	// ListAll returns every pet, most recently created first.
	ListAll(ctx context.Context) ([]model.Pet, error)
	// ListByOwner returns the pets whose owner snapshot carries ownerID.
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Pet, error)
	// ListByAdopter returns the pets whose adopter snapshot carries adopterID.
	ListByAdopter(ctx context.Context, adopterID uint64) ([]model.Pet, error)
	// Update replaces the pet's editable fields and images. Owner and
	// adopter snapshots and the available flag are left untouched.
	Update(ctx context.Context, p model.Pet) error
	// Delete removes the pet and its images.
	Delete(ctx context.Context, id uint64) error
	// SetAdopter records adopter on the pet, but only if the currently
	// stored adopter id still equals prev (nil meaning none). When the
	// stored value moved on, ErrAdopterConflict is returned and nothing
	// is written. This is what serializes concurrent schedule calls.
	SetAdopter(ctx context.Context, petID uint64, prev *uint64, adopter model.AdopterRef) error
	// Conclude marks the pet unavailable. Calling it again is a no-op.
	Conclude(ctx context.Context, petID uint64) error
}
