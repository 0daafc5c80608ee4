package authrail

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// ResolvePermissions computes the resolved permission set for one user under
// an optional organization scope. The two store reads (assignments, grants)
// are independent and run concurrently; the role lookups follow once the
// assignment list is known. Scope and expiry filtering happen in
// resolveRecords against a single reference instant, so two calls with no
// intervening mutation return identical sets.
//
// Any store failure is reported by wrapping [ErrStoreUnavailable]; callers
// must treat it as a deny, never as an empty-but-valid set.
func (e *Engine) ResolvePermissions(ctx context.Context, userID, organizationID string) (*ResolvedPermissions, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	now := e.now()

	var (
		assignments []RoleAssignment
		grants      []PermissionGrant
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assignments, err = e.store.ListAssignments(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		grants, err = e.store.ListGrants(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("list records", err)
	}

	roles := make(map[string]*Role, len(assignments))
	for _, a := range assignments {
		if !scopedTo(a.OrganizationID, organizationID) || !active(a.ExpiresAt, now) {
			continue
		}
		if _, seen := roles[a.RoleID]; seen {
			continue
		}

		role, err := e.store.GetRole(ctx, a.RoleID)
		if err != nil {
			// A deleted role leaves its assignments dangling; they simply
			// stop contributing. Anything else fails the resolution closed.
			if errors.Is(err, ErrRoleNotFound) {
				e.metricInc(MetricResolveDanglingRole)
				continue
			}
			return nil, storeError("get role", err)
		}
		roles[a.RoleID] = role
	}

	resolved := resolveRecords(userID, organizationID, assignments, roles, grants, now)

	e.metricInc(MetricResolveSuccess)
	e.metricObserve(MetricResolveLatency, time.Since(start))

	return resolved, nil
}

// resolveRecords is the pure core of resolution: given already-fetched
// records and a reference instant, it produces the deduplicated, sorted
// views. No I/O, no clock reads.
func resolveRecords(
	userID string,
	organizationID string,
	assignments []RoleAssignment,
	roles map[string]*Role,
	grants []PermissionGrant,
	now time.Time,
) *ResolvedPermissions {
	roleNames := make(map[string]struct{})
	rolePerms := make(map[string]struct{})
	directPerms := make(map[string]struct{})

	for _, a := range assignments {
		if !scopedTo(a.OrganizationID, organizationID) || !active(a.ExpiresAt, now) {
			continue
		}
		role := roles[a.RoleID]
		if role == nil {
			continue
		}
		// The role's own scope is checked even though the lookup was driven
		// by an already-filtered assignment: a global assignment may point
		// at an organization-scoped role.
		if !role.ScopedTo(organizationID) {
			continue
		}

		roleNames[role.Name] = struct{}{}
		for _, p := range role.Permissions {
			rolePerms[p] = struct{}{}
		}
	}

	for _, g := range grants {
		if !scopedTo(g.OrganizationID, organizationID) || !active(g.ExpiresAt, now) {
			continue
		}
		for _, p := range g.Permissions {
			directPerms[p] = struct{}{}
		}
	}

	union := make(map[string]struct{}, len(rolePerms)+len(directPerms))
	for p := range rolePerms {
		union[p] = struct{}{}
	}
	for p := range directPerms {
		union[p] = struct{}{}
	}

	return &ResolvedPermissions{
		UserID:            userID,
		OrganizationID:    organizationID,
		Roles:             sortedKeys(roleNames),
		Permissions:       sortedKeys(union),
		RolePermissions:   sortedKeys(rolePerms),
		DirectPermissions: sortedKeys(directPerms),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func storeError(op string, err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
