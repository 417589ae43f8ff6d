package session

import (
	"errors"

	"github.com/dmitrijs2005/pricegate/internal/common"
)

// UserMessage turns an error from the gate into the inline text shown at
// the prompt. Authentication failures collapse into one message so that
// the prompt does not reveal which usernames exist.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrWrongPassword):
		return "Invalid credentials"
	case errors.Is(err, common.ErrNotLoggedIn):
		return "Please log in first"
	case errors.Is(err, common.ErrForbidden):
		return "Only administrators can manage users"
	case errors.Is(err, common.ErrDuplicateUser):
		return "User already exists"
	case errors.Is(err, common.ErrProtectedUser):
		return "This user cannot be deleted"
	case errors.Is(err, common.ErrPasswordTooLong):
		return "Password is too long for the configured digest (at most 72 bytes)"
	case errors.Is(err, common.ErrValidation):
		return "Username and password are required; role must be user or admin"
	case errors.Is(err, common.ErrTransportUnavailable):
		return "Connection error: the user directory is unavailable"
	default:
		return "Unexpected error"
	}
}
