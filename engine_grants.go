package authrail

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssignRoleInput links a user to a role. An empty OrganizationID makes the
// assignment global; a nil ExpiresAt makes it permanent.
type AssignRoleInput struct {
	UserID         string
	RoleID         string
	OrganizationID string
	ExpiresAt      *time.Time
	GrantedBy      string
}

// AssignRole creates a role assignment. The role must exist, and an
// organization-scoped role can only be assigned under its own organization.
func (e *Engine) AssignRole(ctx context.Context, input AssignRoleInput) (*RoleAssignment, error) {
	mgmt, err := e.management()
	if err != nil {
		return nil, err
	}
	if input.UserID == "" {
		return nil, errors.New("assignment user id must not be empty")
	}

	role, err := mgmt.GetRole(ctx, input.RoleID)
	if err != nil {
		return nil, err
	}
	if role.OrganizationID != "" && role.OrganizationID != input.OrganizationID {
		return nil, ErrRoleScopeMismatch
	}

	assignment := &RoleAssignment{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		RoleID:         input.RoleID,
		OrganizationID: input.OrganizationID,
		ExpiresAt:      input.ExpiresAt,
		GrantedBy:      input.GrantedBy,
		CreatedAt:      e.now(),
	}

	if err := mgmt.CreateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:      "assignment.created",
		UserID:         input.UserID,
		OrganizationID: input.OrganizationID,
		Allowed:        true,
		Metadata: map[string]string{
			"assignment_id": assignment.ID,
			"role_id":       role.ID,
			"role_name":     role.Name,
			"granted_by":    input.GrantedBy,
		},
	})

	return assignment, nil
}

// RevokeAssignment removes a role assignment. The revocation is effective on
// the next authorization decision.
func (e *Engine) RevokeAssignment(ctx context.Context, userID, assignmentID string) error {
	mgmt, err := e.management()
	if err != nil {
		return err
	}

	if err := mgmt.DeleteAssignment(ctx, userID, assignmentID); err != nil {
		return err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType: "assignment.revoked",
		UserID:    userID,
		Allowed:   true,
		Metadata:  map[string]string{"assignment_id": assignmentID},
	})

	return nil
}

// GrantPermissionsInput attaches permission strings directly to a user,
// bypassing roles.
type GrantPermissionsInput struct {
	UserID         string
	Permissions    []string
	OrganizationID string
	ExpiresAt      *time.Time
	GrantedBy      string
}

// GrantPermissions creates a direct permission grant.
func (e *Engine) GrantPermissions(ctx context.Context, input GrantPermissionsInput) (*PermissionGrant, error) {
	mgmt, err := e.management()
	if err != nil {
		return nil, err
	}
	if input.UserID == "" {
		return nil, errors.New("grant user id must not be empty")
	}
	if len(input.Permissions) == 0 {
		return nil, errors.New("grant must carry at least one permission")
	}
	for _, p := range input.Permissions {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("grant permissions must not contain empty strings")
		}
	}

	grant := &PermissionGrant{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		Permissions:    append([]string(nil), input.Permissions...),
		OrganizationID: input.OrganizationID,
		ExpiresAt:      input.ExpiresAt,
		GrantedBy:      input.GrantedBy,
		CreatedAt:      e.now(),
	}

	if err := mgmt.CreateGrant(ctx, grant); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType:      "grant.created",
		UserID:         input.UserID,
		OrganizationID: input.OrganizationID,
		Allowed:        true,
		Metadata: map[string]string{
			"grant_id":   grant.ID,
			"granted_by": input.GrantedBy,
		},
	})

	return grant, nil
}

// RevokeGrant removes a direct permission grant.
func (e *Engine) RevokeGrant(ctx context.Context, userID, grantID string) error {
	mgmt, err := e.management()
	if err != nil {
		return err
	}

	if err := mgmt.DeleteGrant(ctx, userID, grantID); err != nil {
		return err
	}

	e.emitAudit(ctx, AuditEvent{
		EventType: "grant.revoked",
		UserID:    userID,
		Allowed:   true,
		Metadata:  map[string]string{"grant_id": grantID},
	})

	return nil
}
