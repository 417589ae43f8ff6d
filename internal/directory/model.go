package directory

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pricegate/internal/common"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts "user" or "admin" (any case, surrounding spaces
// ignored). An empty string means RoleUser.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(RoleUser):
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", common.ErrValidation, s)
	}
}

// UserRecord is one registered identity. PasswordHash is never the raw
// secret.
type UserRecord struct {
	Username     string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	Role         Role
}

func (u UserRecord) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName is what the REPL greets the user with.
func (u UserRecord) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	return u.Username
}

// NewUser is the input of Store.Create. Password is the raw secret.
type NewUser struct {
	Username string
	Password string
	Name     string
	Surname  string
	Email    string
	Role     string
}

// Row is one line of the backing table, in column order
// username, nombre, apellido, email, password, rol.
type Row struct {
	Username string
	Name     string
	Surname  string
	Email    string
	Password string
	Role     string
}

// Values returns the row as an ordered slice matching common.Header.
func (r Row) Values() []string {
	return []string{r.Username, r.Name, r.Surname, r.Email, r.Password, r.Role}
}

// RowFromValues is the inverse of Values. Short rows are padded with empty
// cells, which is what spreadsheets produce for trailing blanks; extra
// cells are ignored.
func RowFromValues(v []string) Row {
	cell := func(i int) string {
		if i < len(v) {
			return v[i]
		}
		return ""
	}
	return Row{
		Username: cell(0),
		Name:     cell(1),
		Surname:  cell(2),
		Email:    cell(3),
		Password: cell(4),
		Role:     cell(5),
	}
}

func recordFromRow(r Row) UserRecord {
	return UserRecord{
		Username:     common.Normalize(r.Username),
		Name:         r.Name,
		Surname:      r.Surname,
		Email:        r.Email,
		PasswordHash: strings.TrimSpace(r.Password),
		Role:         Role(strings.ToLower(strings.TrimSpace(r.Role))),
	}
}

func (u UserRecord) row() Row {
	return Row{
		Username: u.Username,
		Name:     u.Name,
		Surname:  u.Surname,
		Email:    u.Email,
		Password: u.PasswordHash,
		Role:     string(u.Role),
	}
}
