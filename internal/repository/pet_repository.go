package repository

import (
	"context"
	"database/sql"

	"github.com/getapet/adoption-api/internal/model"
)

// PetRepo implements PetStore on MySQL. Writes that touch both the pets
// row and pet_images run inside a transaction so a failed image replace
// never leaves a pet with half its pictures.
type PetRepo struct{ DB *sql.DB }

func NewPetRepo(db *sql.DB) *PetRepo { return &PetRepo{DB: db} }

const petCols = `id,name,species,description,age,weight,available,
owner_id,owner_name,owner_avatar,owner_phone,
adopter_id,adopter_name,adopter_avatar,created_at,updated_at`

// Create inserts the pet and its images and sets p.ID.
func (r *PetRepo) Create(ctx context.Context, p *model.Pet) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO pets (name, species, description, age, weight, available,
		   owner_id, owner_name, owner_avatar, owner_phone)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.Name, p.Species, nullStr(p.Description), p.Age, p.Weight, p.Available,
		p.Owner.ID, p.Owner.Name, p.Owner.Avatar, p.Owner.Phone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if err := insertImagesTx(ctx, tx, p.ID, p.Images); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a pet with its ordered images.
func (r *PetRepo) GetByID(ctx context.Context, id uint64) (model.Pet, error) {
	p, err := scanPet(r.DB.QueryRowContext(ctx,
		"SELECT "+petCols+" FROM pets WHERE id=? LIMIT 1", id))
	if err != nil {
		return model.Pet{}, err
	}
	p.Images, err = r.loadImages(ctx, p.ID)
	if err != nil {
		return model.Pet{}, err
	}
	return p, nil
}

// ListAll returns every pet, most recently created first.
func (r *PetRepo) ListAll(ctx context.Context) ([]model.Pet, error) {
	return r.list(ctx, "SELECT "+petCols+" FROM pets ORDER BY created_at DESC, id DESC")
}

// ListByOwner returns pets registered by ownerID, newest first.
func (r *PetRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Pet, error) {
	return r.list(ctx,
		"SELECT "+petCols+" FROM pets WHERE owner_id=? ORDER BY created_at DESC, id DESC", ownerID)
}

// ListByAdopter returns pets whose adopter snapshot carries adopterID, newest first.
func (r *PetRepo) ListByAdopter(ctx context.Context, adopterID uint64) ([]model.Pet, error) {
	return r.list(ctx,
		"SELECT "+petCols+" FROM pets WHERE adopter_id=? ORDER BY created_at DESC, id DESC", adopterID)
}

// Update replaces the editable fields and the full image sequence. The
// owner/adopter snapshots and the available flag are deliberately not in
// the statement: field edits can never move lifecycle state.
func (r *PetRepo) Update(ctx context.Context, p model.Pet) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		"UPDATE pets SET name=?, species=?, description=?, age=?, weight=? WHERE id=?",
		p.Name, p.Species, nullStr(p.Description), p.Age, p.Weight, p.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM pet_images WHERE pet_id=?", p.ID); err != nil {
		return err
	}
	if err := insertImagesTx(ctx, tx, p.ID, p.Images); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes the pet; pet_images cascade.
func (r *PetRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM pets WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPetNotFound
	}
	return nil
}

// SetAdopter records the adopter snapshot with a conditional update: the
// write only lands if the stored adopter_id still equals prev (NULL-safe
// via <=>). Two concurrent schedulers both read "no adopter"; exactly one
// of them matches the condition, the other gets ErrAdopterConflict.
func (r *PetRepo) SetAdopter(ctx context.Context, petID uint64, prev *uint64, adopter model.AdopterRef) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE pets SET adopter_id=?, adopter_name=?, adopter_avatar=?
		 WHERE id=? AND adopter_id <=> ?`,
		adopter.ID, adopter.Name, adopter.Avatar, petID, prevArg(prev))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Row exists (callers check first), so the condition failed.
		return ErrAdopterConflict
	}
	return nil
}

// Conclude flips available off. A second call changes nothing and is fine.
func (r *PetRepo) Conclude(ctx context.Context, petID uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE pets SET available=0 WHERE id=?", petID)
	return err
}

// ----- helpers -----

func (r *PetRepo) list(ctx context.Context, query string, args ...any) ([]model.Pet, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pets := make([]model.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range pets {
		if pets[i].Images, err = r.loadImages(ctx, pets[i].ID); err != nil {
			return nil, err
		}
	}
	return pets, nil
}

func (r *PetRepo) loadImages(ctx context.Context, petID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT ref FROM pet_images WHERE pet_id=? ORDER BY position", petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	refs := make([]string, 0, 4)
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func insertImagesTx(ctx context.Context, tx *sql.Tx, petID uint64, refs []string) error {
	for i, ref := range refs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO pet_images (pet_id, position, ref) VALUES (?,?,?)",
			petID, i, ref); err != nil {
			return err
		}
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanPet(s scanner) (model.Pet, error) {
	var (
		p        model.Pet
		desc     sql.NullString
		adID     sql.NullInt64
		adName   sql.NullString
		adAvatar sql.NullString
	)
	err := s.Scan(&p.ID, &p.Name, &p.Species, &desc, &p.Age, &p.Weight, &p.Available,
		&p.Owner.ID, &p.Owner.Name, &p.Owner.Avatar, &p.Owner.Phone,
		&adID, &adName, &adAvatar, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Pet{}, ErrPetNotFound
	}
	if err != nil {
		return model.Pet{}, err
	}
	p.Description = desc.String
	if adID.Valid {
		p.Adopter = &model.AdopterRef{
			ID:     uint64(adID.Int64),
			Name:   adName.String,
			Avatar: adAvatar.String,
		}
	}
	return p, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func prevArg(prev *uint64) any {
	if prev == nil {
		return nil
	}
	return *prev
}
