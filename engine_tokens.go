package authrail

import (
	"context"
	"fmt"

	"github.com/authrail/authrail/jwt"
)

// IssueSessionToken signs a session token for an already-authenticated
// principal. Credential verification is the integrator's login flow; this
// engine only certifies the outcome.
func (e *Engine) IssueSessionToken(ctx context.Context, userID, email string) (string, error) {
	if e == nil || e.tokens == nil {
		return "", ErrEngineNotReady
	}

	token, err := e.tokens.IssueSession(userID, email, e.now())
	if err != nil {
		return "", err
	}

	e.metricInc(MetricSessionIssued)
	e.emitAudit(ctx, AuditEvent{
		EventType: "session.issued",
		UserID:    userID,
		Allowed:   true,
	})

	return token, nil
}

// VerifySessionToken validates a session token and returns its claims.
// All verification failures are reported as [ErrTokenInvalid].
func (e *Engine) VerifySessionToken(token string) (*jwt.SessionClaims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.VerifySession(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

// IssueSnapshot resolves the user's permissions under the given organization
// scope and signs them into a client snapshot token. The snapshot is
// advisory: clients gate UI with it locally until it expires, while the
// backend gate keeps deciding from fresh resolutions.
func (e *Engine) IssueSnapshot(ctx context.Context, userID, organizationID string) (string, *ResolvedPermissions, error) {
	if e == nil || e.tokens == nil {
		return "", nil, ErrEngineNotReady
	}

	resolved, err := e.ResolvePermissions(ctx, userID, organizationID)
	if err != nil {
		return "", nil, err
	}

	token, err := e.tokens.IssueSnapshot(userID, organizationID,
		resolved.Roles, resolved.Permissions, e.now())
	if err != nil {
		return "", nil, err
	}

	e.metricInc(MetricSnapshotIssued)
	e.emitAudit(ctx, AuditEvent{
		EventType:      "snapshot.issued",
		UserID:         userID,
		OrganizationID: organizationID,
		Allowed:        true,
	})

	return token, resolved, nil
}
