package tenantsdk

import (
	"time"

	"github.com/sidelinehq/sideline/pkg/jwtx"
)

// ErrorResponse is the wire shape of every non-2xx response.
// This is used internally for parsing HTTP error responses; client code
// should branch on the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the stable machine-readable code (e.g., "team_not_found")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest creates the first platform administrator on an empty
// system. The token must match the service's pre-configured bootstrap token.
type BootstrapRequest struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// BootstrapResponse contains the id of the created platform administrator.
type BootstrapResponse struct {
	AdminUserID string `json:"admin_user_id"`
}

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest creates a new account. Registration grants no team access.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest exchanges credentials for an access token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned from register and login. The access token embeds
// the user's identity and full membership list; clients hit refresh-context
// (or log in again) after membership changes to refresh the claims.
type AuthResponse struct {
	// AccessToken is the JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	User UserInfoResponse `json:"user"`
}

// ============================================================================
// User Types
// ============================================================================

// MembershipInfo summarises one team membership.
type MembershipInfo struct {
	TeamID     string `json:"team_id"`
	Role       string `json:"role"`
	MemberType string `json:"member_type,omitempty"`
}

// TeamContext describes the tenant a request resolved to.
type TeamContext struct {
	TeamID string `json:"team_id"`

	// Subdomain is empty when the tenant came from token claims rather
	// than the request host.
	Subdomain string `json:"subdomain,omitempty"`
}

// UserInfoResponse is returned from GET /v1/userinfo.
type UserInfoResponse struct {
	UserID        string           `json:"user_id"`
	Email         string           `json:"email"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	PlatformAdmin bool             `json:"platform_admin,omitempty"`
	Memberships   []MembershipInfo `json:"memberships"`

	// CurrentTeam is the tenant this request resolved to, if any.
	CurrentTeam *TeamContext `json:"current_team,omitempty"`
}

// ============================================================================
// Team Types
// ============================================================================

// CreateTeamRequest provisions a team. The caller becomes its owner.
type CreateTeamRequest struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

// TeamResponse is the wire shape of a team.
type TeamResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	OwnerID   string    `json:"owner_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberResponse is the wire shape of an active membership.
type MemberResponse struct {
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	MemberType string    `json:"member_type"`
	Since      time.Time `json:"since"`
}

// AddMemberRequest adds an existing user to a team. The owner role cannot be
// granted here; it moves only through an ownership transfer.
type AddMemberRequest struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	MemberType string `json:"member_type,omitempty"`
}

// UpdateMemberRoleRequest changes a member's role between member and admin.
type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

// ============================================================================
// Health and JWKS Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Signer indicates the JWT signing capability status
	Signer string `json:"signer"`
}

// JWKSResponse contains the JSON Web Key Set returned from
// GET /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS

// ============================================================================
// Transfer Types
// ============================================================================

// InitiateTransferRequest opens an ownership transfer. The target need not
// have an account yet.
type InitiateTransferRequest struct {
	TargetEmail     string `json:"target_email"`
	TargetFirstName string `json:"target_first_name,omitempty"`
	TargetLastName  string `json:"target_last_name,omitempty"`
	Message         string `json:"message,omitempty"`
}

// TransferResponse is the wire shape of an ownership transfer. The raw
// redemption token never appears here; it is returned exactly once at
// initiation.
type TransferResponse struct {
	ID              string     `json:"id"`
	TeamID          string     `json:"team_id"`
	InitiatedBy     string     `json:"initiated_by"`
	TargetUserID    string     `json:"target_user_id,omitempty"`
	TargetEmail     string     `json:"target_email"`
	TargetFirstName string     `json:"target_first_name,omitempty"`
	TargetLastName  string     `json:"target_last_name,omitempty"`
	Message         string     `json:"message,omitempty"`
	Status          string     `json:"status"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CompletedBy     string     `json:"completed_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// InitiateTransferResponse carries the new transfer and the one-time raw
// redemption token.
type InitiateTransferResponse struct {
	Transfer TransferResponse `json:"transfer"`

	// Token is shown exactly once; only its fingerprint is stored.
	Token string `json:"token"`
}

// CompleteTransferRequest redeems a transfer token. The caller must be
// authenticated as the user the transfer is addressed to.
type CompleteTransferRequest struct {
	Token string `json:"token"`
}
