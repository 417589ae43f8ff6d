package session

import (
	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/directory"
)

type Outcome int

const (
	UserNotFound Outcome = iota
	WrongPassword
	Authenticated
	BypassAdmin
)

func (o Outcome) String() string {
	switch o {
	case BypassAdmin:
		return "bypass_admin"
	case Authenticated:
		return "authenticated"
	case WrongPassword:
		return "wrong_password"
	default:
		return "user_not_found"
	}
}

// OK reports whether the outcome grants a session.
func (o Outcome) OK() bool {
	return o == Authenticated || o == BypassAdmin
}

// Err returns the internal error for a failed outcome, nil otherwise.
// Both failures must reach the user as common.ErrInvalidCredentials.
func (o Outcome) Err() error {
	switch o {
	case WrongPassword:
		return common.ErrWrongPassword
	case UserNotFound:
		return common.ErrUserNotFound
	default:
		return nil
	}
}

// Result of one authentication attempt. User is set for Authenticated and
// BypassAdmin.
type Result struct {
	Outcome Outcome
	User    *directory.UserRecord
}
