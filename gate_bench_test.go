package authrail

import (
	"context"
	"testing"

	"github.com/authrail/authrail/permission"
	"github.com/authrail/authrail/route"
)

func newBenchmarkEngine(b *testing.B) (*Engine, string) {
	b.Helper()

	registry, err := route.NewRegistry(
		route.Entry{Method: "GET", Pattern: "/health", Requirement: permission.Public()},
		route.Entry{Method: "GET", Pattern: "/projects/:id", Requirement: permission.Require("projects:read:all")},
	)
	if err != nil {
		b.Fatalf("registry failed: %v", err)
	}

	store := newMemoryStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithStore(store).
		WithUserProvider(staticUsers{"u1": {UserID: "u1"}}).
		WithRegistry(registry).
		Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	b.Cleanup(engine.Close)

	ctx := context.Background()
	role, err := engine.CreateRole(ctx, CreateRoleInput{
		Name:        "Reader",
		Permissions: []string{"projects:read:all"},
	})
	if err != nil {
		b.Fatalf("role create failed: %v", err)
	}
	if _, err := engine.AssignRole(ctx, AssignRoleInput{UserID: "u1", RoleID: role.ID}); err != nil {
		b.Fatalf("assign failed: %v", err)
	}

	token, err := engine.IssueSessionToken(ctx, "u1", "")
	if err != nil {
		b.Fatalf("issue failed: %v", err)
	}

	return engine, token
}

func BenchmarkAuthorizePublic(b *testing.B) {
	engine, _ := newBenchmarkEngine(b)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if dec := engine.Authorize(ctx, "GET", "/health", "", ""); !dec.Allowed {
			b.Fatalf("denied: %+v", dec)
		}
	}
}

func BenchmarkAuthorizeGranted(b *testing.B) {
	engine, token := newBenchmarkEngine(b)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if dec := engine.Authorize(ctx, "GET", "/projects/42", token, ""); !dec.Allowed {
			b.Fatalf("denied: %+v", dec)
		}
	}
}

func BenchmarkResolveRecords(b *testing.B) {
	roles := map[string]*Role{
		"r1": {ID: "r1", Name: "Editor", Permissions: []string{"projects:read:all", "projects:create:all", "projects:update:own"}},
		"r2": {ID: "r2", Name: "Viewer", Permissions: []string{"projects:read:all"}},
	}
	assignments := []RoleAssignment{
		{UserID: "u1", RoleID: "r1"},
		{UserID: "u1", RoleID: "r2"},
	}
	grants := []PermissionGrant{
		{UserID: "u1", Permissions: []string{"billing:read:all"}},
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resolveRecords("u1", "", assignments, roles, grants, testNow)
	}
}
