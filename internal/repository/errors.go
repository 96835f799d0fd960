// Package repository defines the persistence interfaces for users and pets
// together with sentinel errors shared by all implementations. Handlers
// branch on these sentinels to pick the right status code; any other error
// is a storage failure and is surfaced as a 500, never retried here.
package repository

import "errors"

// ErrEmailExists is returned by UserStore.Create and Update when the email
// is already taken by another user. Handlers translate it into a
// validation failure, not a conflict on the user resource itself.
var ErrEmailExists = errors.New("email already in use")

// ErrUserNotFound is returned when a user id or email resolves to nothing.
var ErrUserNotFound = errors.New("user not found")

// ErrPetNotFound is returned when a pet id resolves to nothing.
var ErrPetNotFound = errors.New("pet not found")

// ErrAdopterConflict is returned by PetStore.SetAdopter when the adopter
// recorded in storage no longer matches the one the caller observed, i.e.
// a concurrent schedule won the race. Handlers translate it into a 409.
var ErrAdopterConflict = errors.New("adopter changed concurrently")
