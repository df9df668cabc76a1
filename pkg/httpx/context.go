package httpx

import (
	"context"

	"github.com/recipic-shop/recipic/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyMemberID ctxKey = "member_id"
	CtxKeyRole     ctxKey = "role"
	CtxKeyClaims   ctxKey = "claims" // full jwtx.Claims when needed
)

// contextWithAuth populates the per-request authentication context from
// validated access-token claims. The context lives and dies with the
// request; nothing is kept server-side.
func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyMemberID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// MemberIDFromContext returns the authenticated member id, or "" when the
// request carries no valid authentication.
func MemberIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyMemberID).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the authenticated member's authority, or "".
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}

// IsAuthenticated reports whether the request context carries a validated
// principal.
func IsAuthenticated(ctx context.Context) bool {
	return MemberIDFromContext(ctx) != ""
}
