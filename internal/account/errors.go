package account

import "github.com/pkg/errors"

// Domain errors returned by the account service. Handlers translate these to
// HTTP statuses at the boundary; storage failures pass through untyped and
// become a 500 with the detail kept in the logs.
var (
	// ErrValidation means a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password, so a caller cannot probe which emails have accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken means an insert lost the race against a concurrent
	// registration for the same email.
	ErrEmailTaken = errors.New("email already exists")
)
