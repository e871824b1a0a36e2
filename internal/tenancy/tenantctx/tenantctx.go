// Package tenantctx holds the request-scoped "which team is active" state.
// One Context is allocated per inbound request by the resolver middleware and
// carried in the request's context.Context; it must never be shared across
// requests.
package tenantctx

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyResolved reports a second SetTeam call within one request.
// Resolution must run at most once; hitting this is a programming error.
var ErrAlreadyResolved = errors.New("tenantctx: team already resolved for this request")

// Context is the per-request tenant holder. The zero value is usable and
// unset. Clear is idempotent and safe in any state.
type Context struct {
	mu        sync.Mutex
	set       bool
	teamID    string
	subdomain string
}

// New returns an empty, unset Context.
func New() *Context {
	return &Context{}
}

// SetTeam records the active team. subdomain is empty when resolution came
// from token claims rather than the host name.
func (c *Context) SetTeam(teamID, subdomain string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set {
		return ErrAlreadyResolved
	}
	c.set = true
	c.teamID = teamID
	c.subdomain = subdomain
	return nil
}

// TeamID returns the resolved team id, if any.
func (c *Context) TeamID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.teamID, c.set
}

// Subdomain returns the host label the team was resolved from. ok is false
// when unset or when resolution came from claims.
func (c *Context) Subdomain() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subdomain, c.set && c.subdomain != ""
}

// IsSet reports whether a team has been resolved.
func (c *Context) IsSet() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set
}

// Clear resets the holder. Always safe to call, including when never set or
// already cleared.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = false
	c.teamID = ""
	c.subdomain = ""
}

type ctxKey struct{}

// Inject attaches tc to ctx for downstream handlers.
func Inject(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// From returns the request's tenant holder, or nil if none was attached.
func From(ctx context.Context) *Context {
	tc, _ := ctx.Value(ctxKey{}).(*Context)
	return tc
}

// CurrentTeamID is a convenience for handlers that only need the id.
func CurrentTeamID(ctx context.Context) (string, bool) {
	tc := From(ctx)
	if tc == nil {
		return "", false
	}
	return tc.TeamID()
}
