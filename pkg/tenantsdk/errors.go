package tenantsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sidelinehq/sideline/pkg/httpx"
)

// Stable machine-readable error codes. Clients branch on these, never on the
// description text.
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeUnauthenticated  = "unauthenticated"
	ErrorCodeAccessDenied     = "access_denied"
	ErrorCodeServerError      = "server_error"
	ErrorCodeEmailTaken       = "email_taken"
	ErrorCodeTeamNotFound     = "team_not_found"
	ErrorCodeSubdomainTaken   = "subdomain_taken"
	ErrorCodeInvalidSubdomain = "invalid_subdomain"
	ErrorCodeMemberNotFound   = "member_not_found"
	ErrorCodeMemberExists     = "member_exists"
	ErrorCodeOwnerImmutable   = "owner_role_immutable"

	ErrorCodeTransferNotFound            = "transfer_not_found"
	ErrorCodeTransferNotPending          = "transfer_not_pending"
	ErrorCodeTransferExpired             = "transfer_expired"
	ErrorCodeTransferAlreadyPending      = "transfer_already_pending"
	ErrorCodeTransferTargetNotRegistered = "transfer_target_not_registered"

	ErrorCodeBootstrapDone         = "already_bootstrapped"
	ErrorCodeBootstrapUnauthorized = "bootstrap_unauthorized"
)

// APIError is the wire shape of every non-2xx response. It implements the
// error interface so the SDK can surface server errors directly.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the stable machine-readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrUnauthenticated = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthenticated,
		Description: "authentication required",
	}

	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "insufficient role for this operation",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	ErrEmailTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeEmailTaken,
		Description: "email address is already registered",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthenticated,
		Description: "invalid email or password",
	}

	// ErrTeamNotFound covers both an unknown team id and an unknown
	// subdomain. Resolution failures are terminal: no fallback runs.
	ErrTeamNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeTeamNotFound,
		Description: "team not found",
	}

	ErrSubdomainTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeSubdomainTaken,
		Description: "subdomain is already taken",
	}

	ErrInvalidSubdomain = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidSubdomain,
		Description: "subdomain is malformed or reserved",
	}

	ErrMemberNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeMemberNotFound,
		Description: "no active membership for this user",
	}

	ErrMemberExists = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeMemberExists,
		Description: "user is already an active member",
	}

	ErrOwnerImmutable = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeOwnerImmutable,
		Description: "the owner role changes only through an ownership transfer",
	}

	ErrTransferNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeTransferNotFound,
		Description: "transfer not found",
	}

	ErrTransferNotPending = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeTransferNotPending,
		Description: "transfer has already been settled",
	}

	ErrTransferExpired = &APIError{
		StatusCode:  http.StatusGone,
		Code:        ErrorCodeTransferExpired,
		Description: "transfer has expired",
	}

	ErrTransferAlreadyPending = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeTransferAlreadyPending,
		Description: "team already has a pending transfer",
	}

	ErrTransferTargetNotRegistered = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeTransferTargetNotRegistered,
		Description: "transfer target must register an account first",
	}

	ErrBootstrapDone = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeBootstrapDone,
		Description: "system is already bootstrapped",
	}

	ErrBootstrapUnauthorized = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeBootstrapUnauthorized,
		Description: "invalid bootstrap token",
	}
)
