package authrail

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthorizeUnregisteredRouteDenied(t *testing.T) {
	f := newTestEngine(t)

	dec := f.engine.Authorize(context.Background(), "GET", "/unknown", "", "")
	if dec.Allowed {
		t.Fatal("unregistered route must deny")
	}
	if dec.Status != http.StatusNotFound || dec.Reason != ReasonRouteNotRegistered {
		t.Fatalf("got %d %q", dec.Status, dec.Reason)
	}
	if got := f.engine.metrics.Value(MetricRouteNotRegistered); got != 1 {
		t.Errorf("route not registered counter = %d", got)
	}
}

func TestAuthorizePublicRoute(t *testing.T) {
	f := newTestEngine(t)

	// Public routes allow with no credential at all.
	dec := f.engine.Authorize(context.Background(), "GET", "/health", "", "")
	if !dec.Allowed || dec.Reason != ReasonPublic || dec.Status != http.StatusOK {
		t.Fatalf("got %+v", dec)
	}
	if dec.Context != nil {
		t.Fatal("public decisions carry no auth context")
	}
}

func TestAuthorizeMissingCredential(t *testing.T) {
	f := newTestEngine(t)

	dec := f.engine.Authorize(context.Background(), "GET", "/projects", "", "")
	if dec.Allowed || dec.Status != http.StatusUnauthorized || dec.Reason != ReasonUnauthenticated {
		t.Fatalf("got %+v", dec)
	}
}

func TestAuthorizeInvalidToken(t *testing.T) {
	f := newTestEngine(t)

	dec := f.engine.Authorize(context.Background(), "GET", "/projects", "not-a-jwt", "")
	if dec.Allowed || dec.Status != http.StatusUnauthorized || dec.Reason != ReasonUnauthenticated {
		t.Fatalf("got %+v", dec)
	}
}

func TestAuthorizeDisabledUser(t *testing.T) {
	f := newTestEngine(t)
	token := f.sessionFor(t, "u2")

	dec := f.engine.Authorize(context.Background(), "GET", "/me", token, "")
	if dec.Allowed || dec.Status != http.StatusUnauthorized || dec.Reason != ReasonUnauthenticated {
		t.Fatalf("disabled principal must be unauthorized, got %+v", dec)
	}
}

func TestAuthorizeUnknownSubject(t *testing.T) {
	f := newTestEngine(t)

	// Valid signature, but the subject is missing from the user directory.
	token, err := f.engine.IssueSessionToken(context.Background(), "deleted-user", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	dec := f.engine.Authorize(context.Background(), "GET", "/me", token, "")
	if dec.Allowed || dec.Status != http.StatusUnauthorized {
		t.Fatalf("got %+v", dec)
	}
}

func TestAuthorizeAuthenticatedSkipsResolution(t *testing.T) {
	f := newTestEngine(t)
	token := f.sessionFor(t, "u1")

	// Break the store: authenticated-only routes never touch it.
	f.store.fail(errors.New("down"))

	dec := f.engine.Authorize(context.Background(), "GET", "/me", token, "org-1")
	if !dec.Allowed || dec.Reason != ReasonAuthenticated {
		t.Fatalf("got %+v", dec)
	}
	if dec.Context == nil {
		t.Fatal("authenticated allow must carry context")
	}
	if dec.Context.UserID != "u1" || dec.Context.OrganizationID != "org-1" {
		t.Fatalf("context = %+v", dec.Context)
	}
	if dec.Context.Roles == nil || len(dec.Context.Roles) != 0 {
		t.Fatalf("roles must be an empty slice, got %#v", dec.Context.Roles)
	}
	if dec.Context.Permissions == nil || len(dec.Context.Permissions) != 0 {
		t.Fatalf("permissions must be an empty slice, got %#v", dec.Context.Permissions)
	}
}

func TestAuthorizeGranted(t *testing.T) {
	f := newTestEngine(t)
	f.seedEditor(t, "u1")
	token := f.sessionFor(t, "u1")

	dec := f.engine.Authorize(context.Background(), "GET", "/projects", token, "")
	if !dec.Allowed || dec.Reason != ReasonGranted {
		t.Fatalf("got %+v", dec)
	}
	if dec.Context == nil || !equalStrings(dec.Context.Roles, []string{"Editor"}) {
		t.Fatalf("context = %+v", dec.Context)
	}
}

func TestAuthorizePermissionDeniedCarriesRequirement(t *testing.T) {
	f := newTestEngine(t)
	f.seedEditor(t, "u1")
	token := f.sessionFor(t, "u1")

	// Editor lacks both delete permissions on the RequireAll route.
	dec := f.engine.Authorize(context.Background(), "DELETE", "/projects/42", token, "")
	if dec.Allowed || dec.Status != http.StatusForbidden || dec.Reason != ReasonPermissionDenied {
		t.Fatalf("got %+v", dec)
	}
	if dec.Required == nil {
		t.Fatal("forbidden decision must carry the unmet requirement")
	}
	if got := dec.Required.String(); got != "all_of(projects:delete:all, audit:write:all)" {
		t.Errorf("required = %q", got)
	}
	if !equalStrings(dec.Roles, []string{"Editor"}) {
		t.Errorf("roles = %v", dec.Roles)
	}

	// Granting both required permissions flips the same request to allow.
	if _, err := f.engine.GrantPermissions(context.Background(), GrantPermissionsInput{
		UserID:      "u1",
		Permissions: []string{"projects:delete:all", "audit:write:all"},
	}); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	dec = f.engine.Authorize(context.Background(), "DELETE", "/projects/42", token, "")
	if !dec.Allowed || dec.Reason != ReasonGranted {
		t.Fatalf("got %+v", dec)
	}
}

func TestAuthorizeRevocationIsImmediate(t *testing.T) {
	f := newTestEngine(t)
	f.seedEditor(t, "u1")
	token := f.sessionFor(t, "u1")
	ctx := context.Background()

	dec := f.engine.Authorize(ctx, "GET", "/projects", token, "")
	if !dec.Allowed {
		t.Fatalf("precondition failed: %+v", dec)
	}

	// Revoke the only assignment; the very next decision must flip to deny
	// even though the session token is still valid.
	assignments, err := f.store.ListAssignments(ctx, "u1")
	if err != nil || len(assignments) != 1 {
		t.Fatalf("assignment listing: %v %v", assignments, err)
	}
	if err := f.engine.RevokeAssignment(ctx, "u1", assignments[0].ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	dec = f.engine.Authorize(ctx, "GET", "/projects", token, "")
	if dec.Allowed || dec.Status != http.StatusForbidden {
		t.Fatalf("revocation not effective: %+v", dec)
	}
}

func TestAuthorizeStoreDownFailsClosed(t *testing.T) {
	f := newTestEngine(t)
	f.seedEditor(t, "u1")
	token := f.sessionFor(t, "u1")

	f.store.fail(errors.New("connection refused"))

	dec := f.engine.Authorize(context.Background(), "GET", "/projects", token, "")
	if dec.Allowed || dec.Status != http.StatusServiceUnavailable || dec.Reason != ReasonStoreUnavailable {
		t.Fatalf("store failure must fail closed, got %+v", dec)
	}
	if got := f.engine.metrics.Value(MetricStoreUnavailable); got != 1 {
		t.Errorf("store unavailable counter = %d", got)
	}
}

func TestAuthorizeWildcardPermissionSatisfies(t *testing.T) {
	f := newTestEngine(t)
	ctx := context.Background()

	role, err := f.engine.CreateRole(ctx, CreateRoleInput{
		Name:        "Admin",
		Permissions: []string{"*"},
	})
	if err != nil {
		t.Fatalf("role create failed: %v", err)
	}
	if _, err := f.engine.AssignRole(ctx, AssignRoleInput{UserID: "u1", RoleID: role.ID}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	token := f.sessionFor(t, "u1")

	for _, probe := range []struct{ method, path string }{
		{"GET", "/projects"},
		{"DELETE", "/projects/42"},
		{"GET", "/reports/q3/summary"},
	} {
		dec := f.engine.Authorize(ctx, probe.method, probe.path, token, "")
		if !dec.Allowed {
			t.Errorf("%s %s: superuser denied: %+v", probe.method, probe.path, dec)
		}
	}
}

func TestAuthorizeHTTPCredentialSources(t *testing.T) {
	f := newTestEngine(t)
	token := f.sessionFor(t, "u1")

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		if dec := f.engine.AuthorizeHTTP(r); !dec.Allowed {
			t.Fatalf("got %+v", dec)
		}
	})

	t.Run("session cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me", nil)
		r.AddCookie(&http.Cookie{Name: "session_token", Value: token})
		if dec := f.engine.AuthorizeHTTP(r); !dec.Allowed {
			t.Fatalf("got %+v", dec)
		}
	})

	t.Run("header outranks cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me", nil)
		r.Header.Set("Authorization", "Bearer garbage")
		r.AddCookie(&http.Cookie{Name: "session_token", Value: token})
		if dec := f.engine.AuthorizeHTTP(r); dec.Allowed {
			t.Fatal("invalid header credential must not fall back to cookie")
		}
	})

	t.Run("no credential", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me", nil)
		if dec := f.engine.AuthorizeHTTP(r); dec.Allowed || dec.Status != http.StatusUnauthorized {
			t.Fatalf("got %+v", dec)
		}
	})

	t.Run("query string ignored for matching", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me?tab=profile", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		if dec := f.engine.AuthorizeHTTP(r); !dec.Allowed {
			t.Fatalf("got %+v", dec)
		}
	})
}

func TestAuthorizeHTTPOrganizationPrecedence(t *testing.T) {
	f := newTestEngine(t)
	token := f.sessionFor(t, "u1")

	build := func(header, query, cookie string) *http.Request {
		target := "/me"
		if query != "" {
			target += "?organizationId=" + query
		}
		r := httptest.NewRequest("GET", target, nil)
		r.Header.Set("Authorization", "Bearer "+token)
		if header != "" {
			r.Header.Set("X-Organization-ID", header)
		}
		if cookie != "" {
			r.AddCookie(&http.Cookie{Name: "organization_id", Value: cookie})
		}
		return r
	}

	tests := []struct {
		name                  string
		header, query, cookie string
		want                  string
	}{
		{"header wins", "org-h", "org-q", "org-c", "org-h"},
		{"query beats cookie", "", "org-q", "org-c", "org-q"},
		{"cookie as fallback", "", "", "org-c", "org-c"},
		{"none set", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := f.engine.AuthorizeHTTP(build(tt.header, tt.query, tt.cookie))
			if !dec.Allowed || dec.Context == nil {
				t.Fatalf("got %+v", dec)
			}
			if dec.Context.OrganizationID != tt.want {
				t.Errorf("organization = %q, want %q", dec.Context.OrganizationID, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"bearer abc", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := bearerToken(tt.in)
		if got != tt.want || ok != tt.valid {
			t.Errorf("bearerToken(%q) = %q, %v", tt.in, got, ok)
		}
	}
}
