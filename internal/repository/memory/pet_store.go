package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/getapet/adoption-api/internal/model"
	"github.com/getapet/adoption-api/internal/repository"
)

type PetStore struct {
	mu     sync.RWMutex
	nextID uint64
	byID   map[uint64]model.Pet
}

func NewPetStore() *PetStore {
	return &PetStore{nextID: 1, byID: make(map[uint64]model.Pet)}
}

func (s *PetStore) Create(ctx context.Context, p *model.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.byID[p.ID] = clonePet(*p)
	return nil
}

func (s *PetStore) GetByID(ctx context.Context, id uint64) (model.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return model.Pet{}, repository.ErrPetNotFound
	}
	return clonePet(p), nil
}

func (s *PetStore) ListAll(ctx context.Context) ([]model.Pet, error) {
	return s.listWhere(func(model.Pet) bool { return true })
}

func (s *PetStore) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Pet, error) {
	return s.listWhere(func(p model.Pet) bool { return p.Owner.ID == ownerID })
}

func (s *PetStore) ListByAdopter(ctx context.Context, adopterID uint64) ([]model.Pet, error) {
	return s.listWhere(func(p model.Pet) bool { return p.Adopter != nil && p.Adopter.ID == adopterID })
}

func (s *PetStore) Update(ctx context.Context, p model.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[p.ID]
	if !ok {
		return repository.ErrPetNotFound
	}
	// Editable fields and images only; lifecycle state stays as stored.
	cur.Name = p.Name
	cur.Species = p.Species
	cur.Description = p.Description
	cur.Age = p.Age
	cur.Weight = p.Weight
	cur.Images = append([]string(nil), p.Images...)
	cur.UpdatedAt = time.Now().UTC()
	s.byID[p.ID] = cur
	return nil
}

func (s *PetStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return repository.ErrPetNotFound
	}
	delete(s.byID, id)
	return nil
}

// SetAdopter applies the same compare-and-set the SQL store does: the
// write only lands when the stored adopter still matches prev.
func (s *PetStore) SetAdopter(ctx context.Context, petID uint64, prev *uint64, adopter model.AdopterRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[petID]
	if !ok {
		return repository.ErrPetNotFound
	}
	switch {
	case prev == nil && p.Adopter != nil:
		return repository.ErrAdopterConflict
	case prev != nil && (p.Adopter == nil || p.Adopter.ID != *prev):
		return repository.ErrAdopterConflict
	}
	a := adopter
	p.Adopter = &a
	p.UpdatedAt = time.Now().UTC()
	s.byID[petID] = p
	return nil
}

func (s *PetStore) Conclude(ctx context.Context, petID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[petID]
	if !ok {
		return repository.ErrPetNotFound
	}
	p.Available = false
	p.UpdatedAt = time.Now().UTC()
	s.byID[petID] = p
	return nil
}

func (s *PetStore) listWhere(keep func(model.Pet) bool) ([]model.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Pet, 0)
	for _, p := range s.byID {
		if keep(p) {
			out = append(out, clonePet(p))
		}
	}
	// Most recently created first; id breaks ties for stable output.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func clonePet(p model.Pet) model.Pet {
	p.Images = append([]string(nil), p.Images...)
	if p.Adopter != nil {
		a := *p.Adopter
		p.Adopter = &a
	}
	return p
}
