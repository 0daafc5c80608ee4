package authrail

import "context"

type authContextKey struct{}

// WithAuthContext attaches an allowed decision's auth context to ctx. The
// middleware does this for every allowed, authenticated request.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// AuthContextFrom returns the auth context attached by the gate, if any.
// Public routes carry none.
func AuthContextFrom(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey{}).(*AuthContext)
	return ac, ok
}
