package authrail

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/authrail/authrail/permission"
	"github.com/authrail/authrail/route"
)

// testNow is the pinned reference instant used across the engine tests.
var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// memoryStore is an in-memory ManagementStore with optional failure
// injection. It mirrors the store contract: reads return the full per-user
// record sets with no filtering.
type memoryStore struct {
	mu          sync.Mutex
	roles       map[string]*Role
	assignments map[string][]RoleAssignment
	grants      map[string][]PermissionGrant

	failErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		roles:       make(map[string]*Role),
		assignments: make(map[string][]RoleAssignment),
		grants:      make(map[string][]PermissionGrant),
	}
}

func (s *memoryStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *memoryStore) ListAssignments(_ context.Context, userID string) ([]RoleAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	return append([]RoleAssignment(nil), s.assignments[userID]...), nil
}

func (s *memoryStore) GetRole(_ context.Context, roleID string) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	role, ok := s.roles[roleID]
	if !ok {
		return nil, ErrRoleNotFound
	}
	copied := *role
	return &copied, nil
}

func (s *memoryStore) ListGrants(_ context.Context, userID string) ([]PermissionGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	return append([]PermissionGrant(nil), s.grants[userID]...), nil
}

func (s *memoryStore) CreateRole(_ context.Context, role *Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	for _, existing := range s.roles {
		if existing.Name == role.Name && existing.OrganizationID == role.OrganizationID {
			return ErrRoleExists
		}
	}
	copied := *role
	s.roles[role.ID] = &copied
	return nil
}

func (s *memoryStore) GetRoleByName(_ context.Context, organizationID, name string) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	for _, role := range s.roles {
		if role.Name == name && role.OrganizationID == organizationID {
			copied := *role
			return &copied, nil
		}
	}
	return nil, ErrRoleNotFound
}

func (s *memoryStore) UpdateRole(_ context.Context, role *Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[role.ID]; !ok {
		return ErrRoleNotFound
	}
	copied := *role
	s.roles[role.ID] = &copied
	return nil
}

func (s *memoryStore) DeleteRole(_ context.Context, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[roleID]; !ok {
		return ErrRoleNotFound
	}
	delete(s.roles, roleID)
	return nil
}

func (s *memoryStore) CreateAssignment(_ context.Context, a *RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.UserID] = append(s.assignments[a.UserID], *a)
	return nil
}

func (s *memoryStore) DeleteAssignment(_ context.Context, userID, assignmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.assignments[userID]
	for i, a := range list {
		if a.ID == assignmentID {
			s.assignments[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrAssignmentNotFound
}

func (s *memoryStore) CreateGrant(_ context.Context, g *PermissionGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[g.UserID] = append(s.grants[g.UserID], *g)
	return nil
}

func (s *memoryStore) DeleteGrant(_ context.Context, userID, grantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.grants[userID]
	for i, g := range list {
		if g.ID == grantID {
			s.grants[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrGrantNotFound
}

// staticUsers is a fixed user directory.
type staticUsers map[string]UserRecord

func (u staticUsers) GetUserByID(_ context.Context, userID string) (UserRecord, error) {
	user, ok := u[userID]
	if !ok {
		return UserRecord{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return user, nil
}

func testRegistry(t *testing.T) *route.Registry {
	t.Helper()

	registry, err := route.NewRegistry(
		route.Entry{Method: "GET", Pattern: "/health", Requirement: permission.Public()},
		route.Entry{Method: "GET", Pattern: "/me", Requirement: permission.Authenticated()},
		route.Entry{Method: "GET", Pattern: "/projects", Requirement: permission.Require("projects:read:all")},
		route.Entry{Method: "POST", Pattern: "/projects", Requirement: permission.Require("projects:create:all")},
		route.Entry{Method: "DELETE", Pattern: "/projects/:id", Requirement: permission.RequireAll("projects:delete:all", "audit:write:all")},
		route.Entry{Method: "GET", Pattern: "/reports/*", Requirement: permission.RequireAny("reports:read:all", "reports:read:own")},
	)
	if err != nil {
		t.Fatalf("registry construction failed: %v", err)
	}
	return registry
}

type engineFixture struct {
	engine *Engine
	store  *memoryStore
	users  staticUsers
}

func newTestEngine(t *testing.T) *engineFixture {
	t.Helper()

	store := newMemoryStore()
	users := staticUsers{
		"u1": {UserID: "u1", Email: "u1@example.com"},
		"u2": {UserID: "u2", Email: "u2@example.com", Disabled: true},
	}

	cfg := defaultConfig()
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Token.Issuer = "authrail-test"
	cfg.Metrics.Enabled = true

	engine, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithUserProvider(users).
		WithRegistry(testRegistry(t)).
		WithClock(func() time.Time { return testNow }).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &engineFixture{engine: engine, store: store, users: users}
}

// sessionFor issues a session token for the given user.
func (f *engineFixture) sessionFor(t *testing.T, userID string) string {
	t.Helper()

	user := f.users[userID]
	token, err := f.engine.IssueSessionToken(context.Background(), userID, user.Email)
	if err != nil {
		t.Fatalf("session issue failed: %v", err)
	}
	return token
}

// seedEditor creates a global Editor role and assigns it to the user.
func (f *engineFixture) seedEditor(t *testing.T, userID string) *Role {
	t.Helper()
	ctx := context.Background()

	role, err := f.engine.CreateRole(ctx, CreateRoleInput{
		Name:        "Editor",
		Permissions: []string{"projects:read:all", "projects:create:all"},
	})
	if err != nil {
		t.Fatalf("role create failed: %v", err)
	}
	if _, err := f.engine.AssignRole(ctx, AssignRoleInput{
		UserID: userID,
		RoleID: role.ID,
	}); err != nil {
		t.Fatalf("role assign failed: %v", err)
	}
	return role
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
