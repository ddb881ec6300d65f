package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dmitrijs2005/filehub/internal/common"
	"github.com/dmitrijs2005/filehub/internal/logging"
	"github.com/dmitrijs2005/filehub/internal/server/store"
)

// groupsKey is the record key of the serialized group registry in the core
// table.
const groupsKey = "usergroups"

// Options configures a Manager.
type Options struct {
	// AdminCredential is the plaintext credential for the kernel superuser,
	// read once from configuration. Empty leaves the kernel account without
	// a password (only an empty candidate will match).
	AdminCredential string

	// Tokens defaults to a RandomTokenSource.
	Tokens TokenSource

	// Verifier defaults to PlainVerifier.
	Verifier Verifier

	// Logger defaults to a slog-backed logger.
	Logger logging.Logger
}

// Manager owns the full set of users and the session index and is the sole
// writer of identity data to the record store.
//
// All mutating operations serialize behind a single write lock and hold it
// across the store write; in-memory state is committed only after the write
// succeeds. Lookups take the read lock, run concurrently, and return copies,
// so callers never observe a partially-updated user.
type Manager struct {
	mu       sync.RWMutex
	store    store.Store
	tokens   TokenSource
	verifier Verifier
	logger   logging.Logger

	users    map[string]*User  // handle -> user
	sessions map[string]string // session token -> handle
	groups   map[string]string // group id -> display name
}

// NewManager loads the group registry and all user records from the store,
// then self-heals the bootstrap identities: a missing guest is created and
// persisted, and the kernel superuser is constructed in memory only.
func NewManager(ctx context.Context, st store.Store, opts Options) (*Manager, error) {
	tokens := opts.Tokens
	if tokens == nil {
		tokens = &RandomTokenSource{}
	}
	verifier := opts.Verifier
	if verifier == nil {
		verifier = PlainVerifier{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewSlogLogger(slog.Default())
	}

	m := &Manager{
		store:    st,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger.With("module", "identity"),
		users:    make(map[string]*User),
		sessions: make(map[string]string),
		groups:   make(map[string]string),
	}

	// Construction runs before the manager is shared; no locking needed yet.
	if err := m.loadGroups(ctx); err != nil {
		return nil, err
	}
	if err := m.loadUsers(ctx); err != nil {
		return nil, err
	}
	if err := m.ensureGuest(ctx); err != nil {
		return nil, err
	}
	if err := m.ensureKernel(ctx, opts.AdminCredential); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) loadGroups(ctx context.Context) error {
	data, err := m.store.Get(ctx, store.TableCore, groupsKey)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return m.addGroupLocked(ctx, PublicGroup, "Public")
	case err != nil:
		return fmt.Errorf("load group registry: %w", err)
	}

	var groups map[string]string
	if err := json.Unmarshal(data, &groups); err != nil {
		m.logger.Warn(ctx, "group registry is corrupt, resetting to default", "error", err)
		return m.addGroupLocked(ctx, PublicGroup, "Public")
	}

	m.groups = groups
	if _, ok := m.groups[PublicGroup]; !ok {
		return m.addGroupLocked(ctx, PublicGroup, "Public")
	}
	return nil
}

func (m *Manager) loadUsers(ctx context.Context) error {
	records, err := m.store.Scan(ctx, store.TableUsers)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	for _, rec := range records {
		var u User
		if err := json.Unmarshal(rec.Data, &u); err != nil {
			// One bad record must not block startup.
			m.logger.Error(ctx, "skipping corrupt user record", "key", rec.Key, "error", err)
			continue
		}
		if u.Handle == "" {
			u.Handle = rec.Key
		}
		u.normalize()
		m.addUserLocked(&u)
	}

	return nil
}

func (m *Manager) ensureGuest(ctx context.Context) error {
	if _, ok := m.users[GuestHandle]; ok {
		return nil
	}

	u := NewGuest()
	if err := m.persistUserLocked(ctx, u); err != nil {
		return err
	}
	m.addUserLocked(u)
	m.logger.Info(ctx, "created missing guest user")
	return nil
}

func (m *Manager) ensureKernel(ctx context.Context, adminCredential string) error {
	if _, ok := m.groups[AdminGroup]; !ok {
		if err := m.addGroupLocked(ctx, AdminGroup, "Administrators"); err != nil {
			return err
		}
	}

	if _, ok := m.users[KernelHandle]; ok {
		return nil
	}

	credential := ""
	if adminCredential != "" {
		var err error
		if credential, err = m.verifier.Hash(adminCredential); err != nil {
			return fmt.Errorf("hash admin credential: %w", err)
		}
	}

	u := NewUser(KernelHandle)
	u.Credential = credential
	u.Groups = []string{PublicGroup, AdminGroup}
	u.DisplayName = "Kernel"
	u.Description = "The core manager of filehub."

	// The superuser lives in memory only; persistUserLocked would refuse to
	// write it anyway.
	m.addUserLocked(u)
	m.logger.Info(ctx, "created kernel superuser", "persisted", false)
	return nil
}

// addUserLocked publishes u in the user index and, if it carries a session
// token, in the session index. Overwriting a user with a different live
// token drops the stale session entry.
func (m *Manager) addUserLocked(u *User) {
	if old, ok := m.users[u.Handle]; ok {
		if old.SessionToken != "" && old.SessionToken != u.SessionToken {
			delete(m.sessions, old.SessionToken)
		}
	}

	m.users[u.Handle] = u
	if u.SessionToken != "" {
		m.sessions[u.SessionToken] = u.Handle
	}
}

// persistUserLocked writes the serialized user record to the store. The
// kernel superuser is deliberately skipped: it must never reach the store.
func (m *Manager) persistUserLocked(ctx context.Context, u *User) error {
	if u.Handle == KernelHandle {
		return nil
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("serialize user %q: %w", u.Handle, err)
	}
	if err := m.store.Put(ctx, store.TableUsers, u.Handle, data); err != nil {
		return fmt.Errorf("persist user %q: %w", u.Handle, err)
	}
	return nil
}

// addGroupLocked upserts a registry entry and persists the whole registry as
// one unit. The in-memory registry is swapped only after the write succeeds.
func (m *Manager) addGroupLocked(ctx context.Context, id, displayName string) error {
	next := make(map[string]string, len(m.groups)+1)
	for k, v := range m.groups {
		next[k] = v
	}
	next[id] = displayName

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("serialize group registry: %w", err)
	}
	if err := m.store.Put(ctx, store.TableCore, groupsKey, data); err != nil {
		return fmt.Errorf("persist group registry: %w", err)
	}

	m.groups = next
	return nil
}

// AddUser inserts (or overwrites) the index entry for u and registers its
// session token, if any. It does not persist; callers constructing users
// outside CreateUser are responsible for saving them.
func (m *Manager) AddUser(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addUserLocked(u)
}

// CreateUser validates, persists, and indexes a new user. The plaintext
// credential is transformed by the configured Verifier before storage.
// Reserved and malformed handles are rejected with ErrorInvalidHandle;
// handles already present in the index or the store with ErrorAlreadyExists.
func (m *Manager) CreateUser(ctx context.Context, u *User, credential string) error {
	if !ValidHandle(u.Handle) {
		return fmt.Errorf("%w: %q", common.ErrorInvalidHandle, u.Handle)
	}
	if u.Handle == GuestHandle || u.Handle == KernelHandle {
		return fmt.Errorf("%w: %q is reserved", common.ErrorInvalidHandle, u.Handle)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Handle]; ok {
		return fmt.Errorf("%w: %q", common.ErrorAlreadyExists, u.Handle)
	}
	exists, err := m.store.Exists(ctx, store.TableUsers, u.Handle)
	if err != nil {
		return fmt.Errorf("check user %q: %w", u.Handle, err)
	}
	if exists {
		return fmt.Errorf("%w: %q", common.ErrorAlreadyExists, u.Handle)
	}

	hashed, err := m.verifier.Hash(credential)
	if err != nil {
		return fmt.Errorf("hash credential: %w", err)
	}

	nu := u.Clone()
	nu.Credential = hashed
	nu.SessionToken = ""
	nu.normalize()

	if err := m.persistUserLocked(ctx, nu); err != nil {
		return err
	}
	m.addUserLocked(nu)
	m.logger.Info(ctx, "created user", "handle", nu.Handle)
	return nil
}

// AddGroup upserts a group registry entry and persists the registry.
func (m *Manager) AddGroup(ctx context.Context, id, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addGroupLocked(ctx, id, displayName)
}

// Login authenticates handle with the given credential and returns the
// session token. The anonymous guest handle and unknown handles are always
// denied, as are credential mismatches; all three return ErrorUnauthorized
// so callers cannot distinguish them. Logging in an already-logged-in user
// returns the existing token unchanged.
func (m *Manager) Login(ctx context.Context, handle, credential string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[handle]
	if !ok || handle == GuestHandle {
		return "", common.ErrorUnauthorized
	}
	if !m.verifier.Verify(u.Credential, credential) {
		return "", common.ErrorUnauthorized
	}

	if u.SessionToken != "" {
		return u.SessionToken, nil
	}

	token, err := m.tokens.NewToken(func(t string) bool {
		_, used := m.sessions[t]
		return used
	})
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}

	next := u.Clone()
	next.SessionToken = token
	if err := m.persistUserLocked(ctx, next); err != nil {
		// Not committed: the user stays logged out and the token is unused.
		return "", err
	}

	m.users[handle] = next
	m.sessions[token] = handle
	return token, nil
}

// Logout invalidates the user's session, if any. A no-op for guest, for
// unknown handles, and for users that are not logged in.
func (m *Manager) Logout(ctx context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[handle]
	if !ok || handle == GuestHandle {
		return nil
	}
	if u.SessionToken == "" {
		return nil
	}

	token := u.SessionToken
	next := u.Clone()
	next.SessionToken = ""
	if err := m.persistUserLocked(ctx, next); err != nil {
		return err
	}

	delete(m.sessions, token)
	m.users[handle] = next
	return nil
}

// RecordAddress prepends addr to the user's address history and persists the
// record. Unknown handles are ignored.
func (m *Manager) RecordAddress(ctx context.Context, handle, addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[handle]
	if !ok {
		return nil
	}

	next := u.Clone()
	next.RecordAddress(addr)
	if err := m.persistUserLocked(ctx, next); err != nil {
		return err
	}

	m.users[handle] = next
	return nil
}

// lookupLocked resolves a handle to a copy of the user, falling back to
// guest, and to a transient default identity if even guest is missing.
// It never fails: every caller gets a usable identity.
func (m *Manager) lookupLocked(name string) *User {
	if u, ok := m.users[name]; ok {
		return u.Clone()
	}
	if u, ok := m.users[GuestHandle]; ok {
		return u.Clone()
	}
	return NewGuest()
}

// LookupByHandle returns the user for the exact handle, or the anonymous
// guest identity when the handle is unknown.
func (m *Manager) LookupByHandle(name string) *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookupLocked(name)
}

// LookupBySession resolves a session token to its user. Unknown, expired,
// and empty tokens resolve to the anonymous guest identity.
func (m *Manager) LookupBySession(token string) *User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if handle, ok := m.sessions[token]; ok {
		return m.lookupLocked(handle)
	}
	return m.lookupLocked(GuestHandle)
}

// ResolveDisplayName returns the display name for id. Group ids take
// precedence; anything else is treated as a handle and resolved through
// LookupByHandle, so an unknown id yields the guest display name.
func (m *Manager) ResolveDisplayName(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name, ok := m.groups[id]; ok {
		return name
	}
	return m.lookupLocked(id).DisplayName
}

// GroupName returns the display name of a registered group.
func (m *Manager) GroupName(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.groups[id]
	return name, ok
}

// Handles returns all known handles in lexical order, the in-memory kernel
// included.
func (m *Manager) Handles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	handles := make([]string, 0, len(m.users))
	for h := range m.users {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles
}
