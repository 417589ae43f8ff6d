// Package directory implements the credential store: the durable
// username -> UserRecord table and its access operations.
//
// Every operation re-reads the table from the transport before acting. No
// lock is held across calls and writes are not versioned, so two admins
// creating the same username at the same moment can both succeed.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/cryptox"
	"github.com/dmitrijs2005/pricegate/internal/logging"
)

// DefaultTimeout bounds a single transport call when none is configured.
const DefaultTimeout = 10 * time.Second

type Store struct {
	transport Transport
	hasher    cryptox.Hasher
	logger    logging.Logger
	timeout   time.Duration
}

func NewStore(t Transport, h cryptox.Hasher, logger logging.Logger, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{transport: t, hasher: h, logger: logger, timeout: timeout}
}

// LoadAll returns every known user keyed by trimmed username. It never
// fails: when the transport cannot be read the error is logged and an
// empty map is returned, which leaves only the bypass identity able to log in.
func (s *Store) LoadAll(ctx context.Context) map[string]UserRecord {
	users, err := s.load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "loading users failed, continuing with an empty directory", "err", err)
		return map[string]UserRecord{}
	}
	return users
}

// Records is the strict variant of LoadAll used by the directory view:
// transport failures are returned so they can be shown to the admin.
// The result is sorted by username.
func (s *Store) Records(ctx context.Context) ([]UserRecord, error) {
	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserRecord, 0, len(users))
	for _, u := range users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) load(ctx context.Context) (map[string]UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.transport.ReadAllRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", common.ErrTransportUnavailable, err)
	}

	users := make(map[string]UserRecord, len(rows))
	for _, r := range rows {
		u := recordFromRow(r)
		if u.Username == "" {
			continue
		}
		if _, dup := users[u.Username]; dup {
			s.logger.Warn(ctx, "duplicate username in table, keeping first row", "username", u.Username)
			continue
		}
		users[u.Username] = u
	}
	return users, nil
}

// Create appends a new user. The username and password are trimmed before
// use; the password is stored only as its digest.
func (s *Store) Create(ctx context.Context, nu NewUser) error {
	username := common.Normalize(nu.Username)
	password := common.Normalize(nu.Password)

	if username == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	role, err := ParseRole(nu.Role)
	if err != nil {
		return err
	}

	existing, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := existing[username]; ok {
		return fmt.Errorf("%w: %s", common.ErrDuplicateUser, username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	rec := UserRecord{
		Username:     username,
		Name:         common.Normalize(nu.Name),
		Surname:      common.Normalize(nu.Surname),
		Email:        common.Normalize(nu.Email),
		PasswordHash: hash,
		Role:         role,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.transport.AppendRow(ctx, rec.row()); err != nil {
		return fmt.Errorf("%w: append row: %v", common.ErrTransportUnavailable, err)
	}

	s.logger.Info(ctx, "user created", "username", username, "role", role)
	return nil
}

// Delete removes the first row stored under username. A missing user is
// reported as false with a nil error.
func (s *Store) Delete(ctx context.Context, username string) (bool, error) {
	username = common.Normalize(username)
	if username == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	h, found, err := s.transport.FindRow(ctx, username)
	if err != nil {
		return false, fmt.Errorf("%w: find row: %v", common.ErrTransportUnavailable, err)
	}
	if !found {
		return false, nil
	}

	if err := s.transport.DeleteRow(ctx, h); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: delete row: %v", common.ErrTransportUnavailable, err)
	}

	s.logger.Info(ctx, "user deleted", "username", username)
	return true, nil
}

// Verify reports whether password (already trimmed) matches rec.
func (s *Store) Verify(rec UserRecord, password string) bool {
	return s.hasher.Verify(rec.PasswordHash, password)
}

// Close releases the underlying transport.
func (s *Store) Close() error {
	return s.transport.Close()
}
