package authrail

import (
	"context"
	"net/http"
	"strings"

	"github.com/authrail/authrail/permission"
)

// DecisionReason names the terminal state of the gate's decision chain.
type DecisionReason string

const (
	// ReasonPublic allows: the matched entry requires nothing.
	ReasonPublic DecisionReason = "public"
	// ReasonAuthenticated allows: the entry requires only a valid principal.
	ReasonAuthenticated DecisionReason = "authenticated"
	// ReasonGranted allows: the caller's resolved permissions satisfy the
	// entry's requirement.
	ReasonGranted DecisionReason = "granted"
	// ReasonRouteNotRegistered denies: no registry entry matched. The
	// registry is an allowlist, so absence is a deny, not a pass-through.
	ReasonRouteNotRegistered DecisionReason = "route_not_registered"
	// ReasonUnauthenticated denies: missing or invalid credential, or the
	// token subject no longer exists.
	ReasonUnauthenticated DecisionReason = "unauthenticated"
	// ReasonPermissionDenied denies: authenticated but unsatisfied.
	ReasonPermissionDenied DecisionReason = "permission_denied"
	// ReasonStoreUnavailable denies: resolution failed, failing closed.
	ReasonStoreUnavailable DecisionReason = "store_unavailable"
)

// Decision is the structured outcome of one gate evaluation. The gate always
// returns a Decision, never an error: every failure mode is a deny with a
// reason and an HTTP status.
//
// On permission denials Required carries the unmet requirement and Roles the
// caller's actual roles — the caller already knows its own roles, so echoing
// them is a debugging aid, not a leak.
type Decision struct {
	Allowed bool
	Status  int
	Reason  DecisionReason

	Required *permission.Requirement
	Roles    []string

	// Context is set on every allowed, authenticated decision.
	Context *AuthContext
}

func allowDecision(reason DecisionReason, ac *AuthContext) Decision {
	return Decision{Allowed: true, Status: http.StatusOK, Reason: reason, Context: ac}
}

func denyDecision(status int, reason DecisionReason) Decision {
	return Decision{Allowed: false, Status: status, Reason: reason}
}

// Authorize runs the gate's decision chain for one request: registry lookup,
// credential verification, principal load, and requirement evaluation
// against freshly resolved permissions. credential is the raw session token
// (already extracted from transport); organizationID may be empty for
// global-only resolution.
func (e *Engine) Authorize(ctx context.Context, method, path, credential, organizationID string) Decision {
	if e == nil || e.registry == nil {
		return e.record(ctx, method, path, "", organizationID,
			denyDecision(http.StatusServiceUnavailable, ReasonStoreUnavailable))
	}

	entry, ok := e.registry.Find(method, path)
	if !ok {
		e.metricInc(MetricRouteNotRegistered)
		return e.record(ctx, method, path, "", organizationID,
			denyDecision(http.StatusNotFound, ReasonRouteNotRegistered))
	}

	if entry.Requirement.Kind == permission.KindPublic {
		return e.record(ctx, method, path, "", organizationID, allowDecision(ReasonPublic, nil))
	}

	if credential == "" {
		e.metricInc(MetricUnauthenticated)
		return e.record(ctx, method, path, "", organizationID,
			denyDecision(http.StatusUnauthorized, ReasonUnauthenticated))
	}

	claims, err := e.tokens.VerifySession(credential)
	if err != nil {
		e.metricInc(MetricUnauthenticated)
		return e.record(ctx, method, path, "", organizationID,
			denyDecision(http.StatusUnauthorized, ReasonUnauthenticated))
	}

	user, err := e.users.GetUserByID(ctx, claims.Subject)
	if err != nil || user.Disabled {
		// A valid token whose principal is gone or disabled is treated the
		// same as an invalid token.
		e.metricInc(MetricUnauthenticated)
		return e.record(ctx, method, path, claims.Subject, organizationID,
			denyDecision(http.StatusUnauthorized, ReasonUnauthenticated))
	}

	if entry.Requirement.Kind == permission.KindAuthenticated {
		ac := &AuthContext{
			UserID:         user.UserID,
			Email:          user.Email,
			OrganizationID: organizationID,
			Roles:          []string{},
			Permissions:    []string{},
		}
		return e.record(ctx, method, path, user.UserID, organizationID,
			allowDecision(ReasonAuthenticated, ac))
	}

	resolved, err := e.ResolvePermissions(ctx, user.UserID, organizationID)
	if err != nil {
		e.metricInc(MetricStoreUnavailable)
		return e.record(ctx, method, path, user.UserID, organizationID,
			denyDecision(http.StatusServiceUnavailable, ReasonStoreUnavailable))
	}

	if !entry.Requirement.SatisfiedBy(resolved.Permissions, true) {
		e.metricInc(MetricForbidden)
		required := entry.Requirement
		dec := denyDecision(http.StatusForbidden, ReasonPermissionDenied)
		dec.Required = &required
		dec.Roles = resolved.Roles
		return e.record(ctx, method, path, user.UserID, organizationID, dec)
	}

	ac := &AuthContext{
		UserID:         user.UserID,
		Email:          user.Email,
		OrganizationID: organizationID,
		Roles:          resolved.Roles,
		Permissions:    resolved.Permissions,
	}
	return e.record(ctx, method, path, user.UserID, organizationID,
		allowDecision(ReasonGranted, ac))
}

// AuthorizeHTTP extracts the credential and organization scope from an HTTP
// request and runs [Engine.Authorize]. The credential comes from the
// Authorization header first, then the session cookie; the organization from
// the configured header, then query parameter, then cookie.
func (e *Engine) AuthorizeHTTP(r *http.Request) Decision {
	if e == nil {
		return denyDecision(http.StatusServiceUnavailable, ReasonStoreUnavailable)
	}
	return e.Authorize(r.Context(), r.Method, r.URL.RequestURI(),
		e.credentialFromRequest(r), e.organizationFromRequest(r))
}

func (e *Engine) credentialFromRequest(r *http.Request) string {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token
	}
	if cookie, err := r.Cookie(e.config.Session.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (e *Engine) organizationFromRequest(r *http.Request) string {
	if v := r.Header.Get(e.config.Organization.Header); v != "" {
		return v
	}
	if v := r.URL.Query().Get(e.config.Organization.Query); v != "" {
		return v
	}
	if cookie, err := r.Cookie(e.config.Organization.Cookie); err == nil {
		return cookie.Value
	}
	return ""
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

// record finalizes a decision: bumps the aggregate counters and emits the
// audit event, then returns the decision unchanged.
func (e *Engine) record(ctx context.Context, method, path, userID, organizationID string, dec Decision) Decision {
	if dec.Allowed {
		e.metricInc(MetricDecisionAllowed)
	} else {
		e.metricInc(MetricDecisionDenied)
	}

	event := AuditEvent{
		EventType:      "authz.decision",
		UserID:         userID,
		OrganizationID: organizationID,
		Method:         method,
		Path:           path,
		Allowed:        dec.Allowed,
		Reason:         string(dec.Reason),
	}
	if dec.Required != nil {
		event.Metadata = map[string]string{"required": dec.Required.String()}
	}
	e.emitAudit(ctx, event)

	return dec
}
