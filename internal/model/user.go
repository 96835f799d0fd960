package model

import "time"

// User represents an application user record as stored in the `users`
// table. The password hash never leaves the process: handlers build
// separate response types and omit it. Avatar holds an opaque image
// reference produced by the file store, empty when none was uploaded.
//
// Fields:
//
//	ID           - primary key identifier of the user.
//	Name         - display name, required.
//	Email        - unique email address (exact-match, case-sensitive).
//	Phone        - contact phone, required; disclosed to adopters only
//	               through the schedule confirmation message.
//	PasswordHash - bcrypt hashed password.
//	Avatar       - optional image reference.
//	CreatedAt    - timestamp of creation.
//	UpdatedAt    - timestamp of last update.
type User struct {
	ID           uint64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
