package http

import (
	"errors"
	"net/http"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/service"
	"github.com/sidelinehq/sideline/pkg/slogx"
	"github.com/sidelinehq/sideline/pkg/tenantsdk"
)

// writeServiceError maps service sentinels onto the wire error vocabulary.
// Anything unmapped is a 500 and gets logged; mapped errors are the caller's
// fault and stay quiet.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		tenantsdk.ErrUnauthenticated.WriteError(w)
	case errors.Is(err, service.ErrAccessDenied):
		tenantsdk.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		tenantsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		tenantsdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidUserRequest),
		errors.Is(err, service.ErrInvalidTeamRequest),
		errors.Is(err, service.ErrInvalidTransferRequest),
		errors.Is(err, service.ErrTransferTargetIsOwner),
		errors.Is(err, domain.ErrUnknownRole):
		tenantsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrInvalidSubdomain):
		tenantsdk.ErrInvalidSubdomain.WriteError(w)
	case errors.Is(err, service.ErrSubdomainTaken):
		tenantsdk.ErrSubdomainTaken.WriteError(w)
	case errors.Is(err, service.ErrTeamNotFound):
		tenantsdk.ErrTeamNotFound.WriteError(w)
	case errors.Is(err, service.ErrMemberNotFound):
		tenantsdk.ErrMemberNotFound.WriteError(w)
	case errors.Is(err, service.ErrMemberAlreadyExists):
		tenantsdk.ErrMemberExists.WriteError(w)
	case errors.Is(err, service.ErrOwnerRoleImmutable):
		tenantsdk.ErrOwnerImmutable.WriteError(w)
	case errors.Is(err, service.ErrTransferNotFound):
		tenantsdk.ErrTransferNotFound.WriteError(w)
	case errors.Is(err, service.ErrTransferNotPending):
		tenantsdk.ErrTransferNotPending.WriteError(w)
	case errors.Is(err, service.ErrTransferExpired):
		tenantsdk.ErrTransferExpired.WriteError(w)
	case errors.Is(err, service.ErrTransferAlreadyPending):
		tenantsdk.ErrTransferAlreadyPending.WriteError(w)
	case errors.Is(err, service.ErrTransferTargetNotRegistered):
		tenantsdk.ErrTransferTargetNotRegistered.WriteError(w)
	case errors.Is(err, service.ErrTransferWrongUser):
		tenantsdk.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrBootstrapAlready):
		tenantsdk.ErrBootstrapDone.WriteError(w)
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		tenantsdk.ErrBootstrapUnauthorized.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		tenantsdk.ErrServerError.WriteError(w)
	}
}
