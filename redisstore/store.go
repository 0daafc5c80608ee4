package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authrail/authrail"
)

// createRoleLua claims the name index and writes the role record only if the
// name is free within its scope.
// KEYS[1] = name index key, KEYS[2] = role key
// ARGV[1] = role id, ARGV[2] = role record
var createRoleLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
return 1
`)

// deleteRoleLua removes the role record and its name index together.
// KEYS[1] = role key, KEYS[2] = name index key
var deleteRoleLua = redis.NewScript(`
local existed = redis.call('EXISTS', KEYS[1])
redis.call('DEL', KEYS[1])
redis.call('DEL', KEYS[2])
return existed
`)

// Store implements authrail.ManagementStore on Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New returns a store using the given client and key prefix.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "ar"
	}
	return &Store{client: client, prefix: prefix}
}

type roleRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Permissions    []string  `json:"permissions"`
	OrganizationID string    `json:"organization_id,omitempty"`
	IsSystem       bool      `json:"is_system"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type assignmentRecord struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	RoleID         string     `json:"role_id"`
	OrganizationID string     `json:"organization_id,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	GrantedBy      string     `json:"granted_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type grantRecord struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Permissions    []string   `json:"permissions"`
	OrganizationID string     `json:"organization_id,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	GrantedBy      string     `json:"granted_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (s *Store) roleKey(roleID string) string {
	return s.prefix + ":role:" + roleID
}

func (s *Store) roleNameKey(organizationID, name string) string {
	return s.prefix + ":rolename:" + organizationID + ":" + name
}

func (s *Store) assignmentsKey(userID string) string {
	return s.prefix + ":user:" + userID + ":assignments"
}

func (s *Store) grantsKey(userID string) string {
	return s.prefix + ":user:" + userID + ":grants"
}

func (s *Store) CreateRole(ctx context.Context, role *authrail.Role) error {
	data, err := json.Marshal(roleRecord{
		ID:             role.ID,
		Name:           role.Name,
		Description:    role.Description,
		Permissions:    role.Permissions,
		OrganizationID: role.OrganizationID,
		IsSystem:       role.IsSystem,
		CreatedAt:      role.CreatedAt,
		UpdatedAt:      role.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode role: %w", err)
	}

	created, err := createRoleLua.Run(ctx, s.client,
		[]string{s.roleNameKey(role.OrganizationID, role.Name), s.roleKey(role.ID)},
		role.ID, data).Int64()
	if err != nil {
		return unavailable("create role", err)
	}
	if created == 0 {
		return authrail.ErrRoleExists
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID string) (*authrail.Role, error) {
	data, err := s.client.Get(ctx, s.roleKey(roleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, authrail.ErrRoleNotFound
	}
	if err != nil {
		return nil, unavailable("get role", err)
	}
	return decodeRole(data)
}

func (s *Store) GetRoleByName(ctx context.Context, organizationID, name string) (*authrail.Role, error) {
	roleID, err := s.client.Get(ctx, s.roleNameKey(organizationID, name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authrail.ErrRoleNotFound
	}
	if err != nil {
		return nil, unavailable("get role by name", err)
	}
	return s.GetRole(ctx, roleID)
}

// UpdateRole rewrites an existing role record. Name and scope are immutable
// at this layer; the name index is not touched.
func (s *Store) UpdateRole(ctx context.Context, role *authrail.Role) error {
	data, err := json.Marshal(roleRecord{
		ID:             role.ID,
		Name:           role.Name,
		Description:    role.Description,
		Permissions:    role.Permissions,
		OrganizationID: role.OrganizationID,
		IsSystem:       role.IsSystem,
		CreatedAt:      role.CreatedAt,
		UpdatedAt:      role.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode role: %w", err)
	}

	set, err := s.client.SetXX(ctx, s.roleKey(role.ID), data, 0).Result()
	if err != nil {
		return unavailable("update role", err)
	}
	if !set {
		return authrail.ErrRoleNotFound
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID string) error {
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return err
	}

	existed, err := deleteRoleLua.Run(ctx, s.client,
		[]string{s.roleKey(roleID), s.roleNameKey(role.OrganizationID, role.Name)}).Int64()
	if err != nil {
		return unavailable("delete role", err)
	}
	if existed == 0 {
		return authrail.ErrRoleNotFound
	}
	return nil
}

func (s *Store) CreateAssignment(ctx context.Context, a *authrail.RoleAssignment) error {
	data, err := json.Marshal(assignmentRecord{
		ID:             a.ID,
		UserID:         a.UserID,
		RoleID:         a.RoleID,
		OrganizationID: a.OrganizationID,
		ExpiresAt:      a.ExpiresAt,
		GrantedBy:      a.GrantedBy,
		CreatedAt:      a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode assignment: %w", err)
	}

	if err := s.client.HSet(ctx, s.assignmentsKey(a.UserID), a.ID, data).Err(); err != nil {
		return unavailable("create assignment", err)
	}
	return nil
}

func (s *Store) DeleteAssignment(ctx context.Context, userID, assignmentID string) error {
	removed, err := s.client.HDel(ctx, s.assignmentsKey(userID), assignmentID).Result()
	if err != nil {
		return unavailable("delete assignment", err)
	}
	if removed == 0 {
		return authrail.ErrAssignmentNotFound
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, userID string) ([]authrail.RoleAssignment, error) {
	raw, err := s.client.HGetAll(ctx, s.assignmentsKey(userID)).Result()
	if err != nil {
		return nil, unavailable("list assignments", err)
	}

	out := make([]authrail.RoleAssignment, 0, len(raw))
	for id, data := range raw {
		var rec assignmentRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode assignment %s: %w", id, err)
		}
		out = append(out, authrail.RoleAssignment{
			ID:             rec.ID,
			UserID:         rec.UserID,
			RoleID:         rec.RoleID,
			OrganizationID: rec.OrganizationID,
			ExpiresAt:      rec.ExpiresAt,
			GrantedBy:      rec.GrantedBy,
			CreatedAt:      rec.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) CreateGrant(ctx context.Context, g *authrail.PermissionGrant) error {
	data, err := json.Marshal(grantRecord{
		ID:             g.ID,
		UserID:         g.UserID,
		Permissions:    g.Permissions,
		OrganizationID: g.OrganizationID,
		ExpiresAt:      g.ExpiresAt,
		GrantedBy:      g.GrantedBy,
		CreatedAt:      g.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode grant: %w", err)
	}

	if err := s.client.HSet(ctx, s.grantsKey(g.UserID), g.ID, data).Err(); err != nil {
		return unavailable("create grant", err)
	}
	return nil
}

func (s *Store) DeleteGrant(ctx context.Context, userID, grantID string) error {
	removed, err := s.client.HDel(ctx, s.grantsKey(userID), grantID).Result()
	if err != nil {
		return unavailable("delete grant", err)
	}
	if removed == 0 {
		return authrail.ErrGrantNotFound
	}
	return nil
}

func (s *Store) ListGrants(ctx context.Context, userID string) ([]authrail.PermissionGrant, error) {
	raw, err := s.client.HGetAll(ctx, s.grantsKey(userID)).Result()
	if err != nil {
		return nil, unavailable("list grants", err)
	}

	out := make([]authrail.PermissionGrant, 0, len(raw))
	for id, data := range raw {
		var rec grantRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode grant %s: %w", id, err)
		}
		out = append(out, authrail.PermissionGrant{
			ID:             rec.ID,
			UserID:         rec.UserID,
			Permissions:    rec.Permissions,
			OrganizationID: rec.OrganizationID,
			ExpiresAt:      rec.ExpiresAt,
			GrantedBy:      rec.GrantedBy,
			CreatedAt:      rec.CreatedAt,
		})
	}
	return out, nil
}

func decodeRole(data []byte) (*authrail.Role, error) {
	var rec roleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode role: %w", err)
	}
	return &authrail.Role{
		ID:             rec.ID,
		Name:           rec.Name,
		Description:    rec.Description,
		Permissions:    rec.Permissions,
		OrganizationID: rec.OrganizationID,
		IsSystem:       rec.IsSystem,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", authrail.ErrStoreUnavailable, op, err)
}
