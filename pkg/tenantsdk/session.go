package tenantsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Session is an authenticated client bound to one access token. Sessions do
// not auto-refresh; mint a new one via Login when the token expires or after
// membership changes.
type Session struct {
	client      *SDKClient
	accessToken string

	// User is the identity the session was minted for.
	User UserInfoResponse
}

func newSession(c *SDKClient, auth AuthResponse) *Session {
	return &Session{
		client:      c,
		accessToken: auth.AccessToken,
		User:        auth.User,
	}
}

// AccessToken exposes the raw bearer token, e.g. for manual requests.
func (s *Session) AccessToken() string { return s.accessToken }

// RequestOption mutates an outgoing request before it is sent.
type RequestOption func(*http.Request)

// WithHost overrides the request's Host header. Use it to address a team by
// subdomain (e.g. "eagles.sideline.app") without DNS.
func WithHost(host string) RequestOption {
	return func(r *http.Request) { r.Host = host }
}

// WithTeamID sets the X-Team-ID hint used by the claims-based tenant
// fallback for callers belonging to several teams.
func WithTeamID(teamID string) RequestOption {
	return func(r *http.Request) { r.Header.Set("X-Team-ID", teamID) }
}

// WithTeamSubdomain sets the X-Team-Subdomain override. The server honours
// it outside production only, and only when neither the request host nor the
// caller's token claims resolve a team.
func WithTeamSubdomain(subdomain string) RequestOption {
	return func(r *http.Request) { r.Header.Set("X-Team-Subdomain", subdomain) }
}

func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	opts ...RequestOption,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// UserInfo returns the caller's identity and the tenant the request resolved
// to, if any.
func (s *Session) UserInfo(ctx context.Context, opts ...RequestOption) (*UserInfoResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/userinfo", nil, opts...)
	if err != nil {
		return nil, err
	}

	var out UserInfoResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshContext re-mints the session's token from current membership state
// and returns a fresh session. Call it after roles or teams change.
func (s *Session) RefreshContext(ctx context.Context) (*Session, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/refresh-context", nil)
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := decodeJSON(resp, &auth, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(s.client, auth), nil
}

// ============================================================================
// Teams
// ============================================================================

// CreateTeam provisions a team; the session user becomes its owner.
func (s *Session) CreateTeam(ctx context.Context, req CreateTeamRequest) (*TeamResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/teams", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out TeamResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTeam fetches a team by id.
func (s *Session) GetTeam(ctx context.Context, teamID string, opts ...RequestOption) (*TeamResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/teams/"+url.PathEscape(teamID), nil, opts...)
	if err != nil {
		return nil, err
	}

	var out TeamResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentTeam fetches the team the request resolves to, addressed by host
// subdomain or the claims fallback rather than an explicit id.
func (s *Session) CurrentTeam(ctx context.Context, opts ...RequestOption) (*TeamResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/teams/current", nil, opts...)
	if err != nil {
		return nil, err
	}

	var out TeamResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMembers returns the active members of a team.
func (s *Session) ListMembers(ctx context.Context, teamID string, opts ...RequestOption) ([]MemberResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/teams/"+url.PathEscape(teamID)+"/members", nil, opts...)
	if err != nil {
		return nil, err
	}

	var out []MemberResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember adds an existing user to the team.
func (s *Session) AddMember(ctx context.Context, teamID string, req AddMemberRequest) (*MemberResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/teams/"+url.PathEscape(teamID)+"/members", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out MemberResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMemberRole changes a member's role between member and admin.
func (s *Session) UpdateMemberRole(ctx context.Context, teamID, userID, role string) (*MemberResponse, error) {
	body, err := json.Marshal(UpdateMemberRoleRequest{Role: role})
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPatch,
		"/v1/teams/"+url.PathEscape(teamID)+"/members/"+url.PathEscape(userID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out MemberResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveMember deactivates a membership.
func (s *Session) RemoveMember(ctx context.Context, teamID, userID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete,
		"/v1/teams/"+url.PathEscape(teamID)+"/members/"+url.PathEscape(userID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ============================================================================
// Ownership Transfers
// ============================================================================

// InitiateTransfer opens an ownership transfer and returns the one-time raw
// redemption token alongside the transfer record.
func (s *Session) InitiateTransfer(ctx context.Context, teamID string, req InitiateTransferRequest) (*InitiateTransferResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost,
		"/v1/teams/"+url.PathEscape(teamID)+"/transfers", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out InitiateTransferResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransfers returns every transfer of a team, newest first.
func (s *Session) ListTransfers(ctx context.Context, teamID string) ([]TransferResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet,
		"/v1/teams/"+url.PathEscape(teamID)+"/transfers", nil)
	if err != nil {
		return nil, err
	}

	var out []TransferResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransfer fetches a transfer by id.
func (s *Session) GetTransfer(ctx context.Context, transferID string) (*TransferResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/transfers/"+url.PathEscape(transferID), nil)
	if err != nil {
		return nil, err
	}

	var out TransferResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelTransfer settles a pending transfer as cancelled.
func (s *Session) CancelTransfer(ctx context.Context, transferID string) (*TransferResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/transfers/"+url.PathEscape(transferID), nil)
	if err != nil {
		return nil, err
	}

	var out TransferResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteTransfer redeems a transfer token. The session user must be the
// addressed target.
func (s *Session) CompleteTransfer(ctx context.Context, token string) (*TransferResponse, error) {
	body, err := json.Marshal(CompleteTransferRequest{Token: token})
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/transfers/complete", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out TransferResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
