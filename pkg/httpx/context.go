package httpx

import (
	"context"

	"github.com/sidelinehq/sideline/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

// ClaimsFromContext returns the verified access-token claims attached by the
// authn middleware, or nil when the request carried no valid bearer token.
func ClaimsFromContext(ctx context.Context) *jwtx.Claims {
	if c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims); ok {
		return &c
	}
	return nil
}

// UserIDFromContext returns the authenticated caller's user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	return id, ok && id != ""
}
