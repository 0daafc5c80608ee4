package authrail

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// CreateRoleInput describes a new role. An empty OrganizationID creates a
// global role.
type CreateRoleInput struct {
	Name           string
	Description    string
	Permissions    []string
	OrganizationID string
	IsSystem       bool
}

// CreateRole creates a role. Role names are unique within their scope;
// creating a duplicate returns [ErrRoleExists].
func (e *Engine) CreateRole(ctx context.Context, input CreateRoleInput) (*Role, error) {
	mgmt, err := e.management()
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, errors.New("role name must not be empty")
	}
	for _, p := range input.Permissions {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("role permissions must not contain empty strings")
		}
	}

	now := e.now()
	role := &Role{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Description:    input.Description,
		Permissions:    append([]string(nil), input.Permissions...),
		OrganizationID: input.OrganizationID,
		IsSystem:       input.IsSystem,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := mgmt.CreateRole(ctx, role); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:      "role.created",
		OrganizationID: role.OrganizationID,
		Allowed:        true,
		Metadata:       map[string]string{"role_id": role.ID, "role_name": role.Name},
	})

	return role, nil
}

// GetRole returns the role with the given id.
func (e *Engine) GetRole(ctx context.Context, roleID string) (*Role, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	return e.store.GetRole(ctx, roleID)
}

// GetRoleByName returns the role with the given name within a scope.
func (e *Engine) GetRoleByName(ctx context.Context, organizationID, name string) (*Role, error) {
	mgmt, err := e.management()
	if err != nil {
		return nil, err
	}
	return mgmt.GetRoleByName(ctx, organizationID, name)
}

// UpdateRolePermissions replaces a role's permission set and description.
// The role name and scope are immutable; system roles can be updated but
// not deleted.
func (e *Engine) UpdateRolePermissions(ctx context.Context, roleID string, permissions []string, description string) (*Role, error) {
	mgmt, err := e.management()
	if err != nil {
		return nil, err
	}

	role, err := mgmt.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	for _, p := range permissions {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("role permissions must not contain empty strings")
		}
	}

	role.Permissions = append([]string(nil), permissions...)
	role.Description = description
	role.UpdatedAt = e.now()

	if err := mgmt.UpdateRole(ctx, role); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:      "role.updated",
		OrganizationID: role.OrganizationID,
		Allowed:        true,
		Metadata:       map[string]string{"role_id": role.ID, "role_name": role.Name},
	})

	return role, nil
}

// DeleteRole removes a custom role. System roles return
// [ErrSystemRoleImmutable]. Assignments referencing a deleted role are left
// in place and simply stop contributing at resolution time.
func (e *Engine) DeleteRole(ctx context.Context, roleID string) error {
	mgmt, err := e.management()
	if err != nil {
		return err
	}

	role, err := mgmt.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRoleImmutable
	}

	if err := mgmt.DeleteRole(ctx, roleID); err != nil {
		return err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:      "role.deleted",
		OrganizationID: role.OrganizationID,
		Allowed:        true,
		Metadata:       map[string]string{"role_id": role.ID, "role_name": role.Name},
	})

	return nil
}
