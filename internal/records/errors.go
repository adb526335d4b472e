package records

import "errors"

var (
	// ErrValidation indicates a required field is missing from the request.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateUser indicates an account with the same name already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials covers both an unknown name and a failed secret
	// verification; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)
