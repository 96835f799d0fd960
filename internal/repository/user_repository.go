package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/getapet/adoption-api/internal/model"
)

// UserRepo implements UserStore on MySQL.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,phone,password_hash,avatar,created_at,updated_at"

// Create inserts the user and sets its ID. Email is stored exactly as
// given: uniqueness is case-sensitive (the column uses a binary
// collation), so no normalization happens here.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, password_hash, avatar) VALUES (?,?,?,?,?)",
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Avatar)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by exact email match.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// Update replaces the stored row for u.ID. The whole row is written in one
// statement: validation happens before this call, so there is no
// field-at-a-time drift between validation and persistence.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, phone=?, password_hash=?, avatar=? WHERE id=?",
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Avatar, u.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	// RowsAffected is 0 both for a missing row and for a no-change write,
	// so confirm existence separately before reporting not found.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// isDuplicateKey reports whether err is a MySQL 1062 duplicate-key error.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
