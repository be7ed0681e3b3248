package domain

import "errors"

var (
	// ErrNotFound indicates that a requested entity was not found. It is also
	// returned on ownership mismatches so that probing for other users'
	// resources does not reveal their existence.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates that the user's role is not permitted to perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
)
