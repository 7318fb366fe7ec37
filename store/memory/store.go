// Package memory provides an in-memory implementation of the repository
// interfaces. It backs tests and local development; the production store
// lives in store/postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/medcore/medcore-server/organizations"
	"github.com/medcore/medcore-server/sessions"
	"github.com/medcore/medcore-server/users"
)

// Store holds all records behind a single lock so CreateWithOwner and Rotate
// behave atomically, the same way the Postgres store uses transactions.
type Store struct {
	mu       sync.RWMutex
	orgs     map[string]*organizations.Organization
	users    map[string]*users.User
	sessions map[string]*sessions.RefreshSession
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		orgs:     make(map[string]*organizations.Organization),
		users:    make(map[string]*users.User),
		sessions: make(map[string]*sessions.RefreshSession),
	}
}

// Users returns the users.Repo view of the store.
func (s *Store) Users() users.Repo {
	return &userRepo{store: s}
}

// Organizations returns the organizations.Repo view of the store.
func (s *Store) Organizations() organizations.Repo {
	return &organizationRepo{store: s}
}

// Sessions returns the sessions.Repo view of the store.
func (s *Store) Sessions() sessions.Repo {
	return &sessionRepo{store: s}
}

// SetOrganizationActive flips an organization's active flag. Test helper.
func (s *Store) SetOrganizationActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org, ok := s.orgs[id]; ok {
		org.IsActive = active
	}
}

// SetUserActive flips a user's active flag. Test helper.
func (s *Store) SetUserActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.IsActive = active
	}
}

// ActiveSessionCount returns the number of non-revoked sessions for a user.
// Test helper.
func (s *Store) ActiveSessionCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.UserID == userID && !sess.Revoked() {
			n++
		}
	}
	return n
}

type userRepo struct {
	store *Store
}

var _ users.Repo = (*userRepo)(nil)

func (r *userRepo) GetActiveByEmail(_ context.Context, organizationID, email string) (*users.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	// Oldest account wins when the email spans organizations, same rule as
	// the SQL store.
	var match *users.User
	for _, u := range r.store.users {
		if u.Email != email || !u.IsActive {
			continue
		}
		if organizationID != "" && u.OrganizationID != organizationID {
			continue
		}
		if match == nil ||
			u.CreatedAt.Before(match.CreatedAt) ||
			(u.CreatedAt.Equal(match.CreatedAt) && u.ID < match.ID) {
			match = u
		}
	}
	if match == nil {
		return nil, users.ErrNotFound
	}
	clone := *match
	return &clone, nil
}

func (r *userRepo) GetActiveByID(_ context.Context, id, organizationID string) (*users.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok || !u.IsActive || u.OrganizationID != organizationID {
		return nil, users.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

type organizationRepo struct {
	store *Store
}

var _ organizations.Repo = (*organizationRepo)(nil)

func (r *organizationRepo) GetActive(_ context.Context, id string) (*organizations.Organization, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	org, ok := r.store.orgs[id]
	if !ok || !org.IsActive {
		return nil, organizations.ErrNotFound
	}
	clone := *org
	return &clone, nil
}

func (r *organizationRepo) CreateWithOwner(_ context.Context, org *organizations.Organization, owner *users.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orgs[org.ID]; ok {
		return organizations.ErrConflict
	}
	for _, u := range r.store.users {
		if u.OrganizationID == owner.OrganizationID && u.Email == owner.Email {
			return organizations.ErrConflict
		}
	}

	orgClone := *org
	ownerClone := *owner
	r.store.orgs[org.ID] = &orgClone
	r.store.users[owner.ID] = &ownerClone
	return nil
}

type sessionRepo struct {
	store *Store
}

var _ sessions.Repo = (*sessionRepo)(nil)

func (r *sessionRepo) Store(_ context.Context, session *sessions.RefreshSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *session
	r.store.sessions[session.ID] = &clone
	return nil
}

func (r *sessionRepo) Get(_ context.Context, id string) (*sessions.RefreshSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sess, ok := r.store.sessions[id]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

func (r *sessionRepo) Revoke(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.revokeLocked(id)
	return nil
}

func (r *sessionRepo) Rotate(_ context.Context, oldID string, next *sessions.RefreshSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	old, ok := r.store.sessions[oldID]
	if !ok {
		return sessions.ErrNotFound
	}
	if old.Revoked() {
		return sessions.ErrRevoked
	}

	r.revokeLocked(oldID)
	clone := *next
	r.store.sessions[next.ID] = &clone
	return nil
}

func (r *sessionRepo) RevokeAllForUser(_ context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, sess := range r.store.sessions {
		if sess.UserID == userID {
			r.revokeLocked(id)
		}
	}
	return nil
}

// revokeLocked marks a session revoked. Caller must hold the write lock.
func (r *sessionRepo) revokeLocked(id string) {
	sess, ok := r.store.sessions[id]
	if !ok || sess.Revoked() {
		return
	}
	now := time.Now().UTC()
	sess.RevokedAt = &now
}
