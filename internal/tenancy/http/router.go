package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sidelinehq/sideline/internal/tenancy/service"
	"github.com/sidelinehq/sideline/internal/tenancy/store"
	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/sidelinehq/sideline/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	TokenService     *service.TokenService
	UserService      *service.UserService
	TeamService      *service.TeamService
	TransferService  *service.TransferService
	BootstrapService *service.BootstrapService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
	production bool,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	resolver := &TenantResolver{Store: st, Production: production}

	// Order matters here: authentication must run before tenant
	// resolution because the resolver reads claims from the request
	// context to fall back on the caller's memberships.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.OptionalAuthn(r.verifier),
		resolver.Middleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTeams()
	r.registerTransfers()
	r.registerSystem()
	r.registerBootstrap()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Sideline Tenancy Service API
//	@version		0.1.0
//	@description	Multi-tenant team platform: registration, team membership, tenant context
//	@description	resolution and ownership transfer. Access tokens are Ed25519-signed JWTs
//	@description	verifiable against the JWKS endpoint.
//
//	@contact.name				Sideline Team
//	@contact.url				https://github.com/sidelinehq/sideline
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		UserService:  r.UserService,
		TokenService: r.TokenService,
	}

	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/refresh-context - re-mints claims after membership changes
	r.Mux.Handle("POST /v1/auth/refresh-context",
		httpx.Chain(http.HandlerFunc(h.HandleRefreshContext),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /userinfo - authenticated, lenient rate limit by user
	userInfo := &UserInfoHandler{}
	r.Mux.Handle("GET /v1/userinfo",
		httpx.Chain(http.HandlerFunc(userInfo.HandleUserInfo),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerTeams() {
	h := &TeamsHandler{TeamService: r.TeamService}

	// POST /teams - moderate rate limit by user (creates a tenant)
	r.Mux.Handle("POST /v1/teams",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /teams/current - the team the tenant context resolved to
	r.Mux.Handle("GET /v1/teams/current",
		httpx.Chain(http.HandlerFunc(h.HandleCurrent),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// GET /teams/{id} - lenient rate limit by user (read operation)
	r.Mux.Handle("GET /v1/teams/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Membership management - moderate rate limits on mutations
	r.Mux.Handle("GET /v1/teams/{id}/members",
		httpx.Chain(http.HandlerFunc(h.HandleListMembers),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/teams/{id}/members",
		httpx.Chain(http.HandlerFunc(h.HandleAddMember),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/teams/{id}/members/{userID}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateMemberRole),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/teams/{id}/members/{userID}",
		httpx.Chain(http.HandlerFunc(h.HandleRemoveMember),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTransfers() {
	h := &TransfersHandler{TransferService: r.TransferService}

	// POST /teams/{id}/transfers - moderate rate limit by user (owner operation)
	r.Mux.Handle("POST /v1/teams/{id}/transfers",
		httpx.Chain(http.HandlerFunc(h.HandleInitiate),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/teams/{id}/transfers",
		httpx.Chain(http.HandlerFunc(h.HandleListForTeam),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/transfers/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/transfers/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleCancel),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /transfers/complete - strict rate limit by user (token redemption,
	// prevent brute force of transfer tokens)
	r.Mux.Handle("POST /v1/transfers/complete",
		httpx.Chain(http.HandlerFunc(h.HandleComplete),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(http.HandlerFunc(bootstrapHandler.HandleBootstrap),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
