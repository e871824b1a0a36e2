package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/store"
	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/sidelinehq/sideline/pkg/slogx"
)

var ErrSigningUnavailable = errors.New("no signing key available")

type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
}

func (s *TokenService) ttl() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

// IssueForUser mints an access token carrying the user's identity and the
// complete list of active memberships. Stale membership claims age out with
// the token; clients re-mint after role or team changes.
func (s *TokenService) IssueForUser(ctx context.Context, user domain.User) (string, jwtx.Claims, error) {
	log := slogx.FromContext(ctx)

	memberships, err := s.Store.Memberships().ListUserMemberships(ctx, user.ID)
	if err != nil {
		log.Error("failed to list memberships", slog.Any("error", err))
		return "", jwtx.Claims{}, err
	}

	membershipClaims := make([]jwtx.MembershipClaim, 0, len(memberships))
	for _, m := range memberships {
		membershipClaims = append(membershipClaims, jwtx.MembershipClaim{
			TeamID:     m.TeamID,
			Role:       string(m.Role),
			MemberType: string(m.MemberType),
		})
	}

	claims := jwtx.NewIdentityClaims(
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PlatformAdmin,
		membershipClaims,
		s.ttl(),
		s.Issuer,
		s.Audience,
		time.Now(),
	)

	signer := s.KeyManager.GetSigner()
	if signer == nil {
		return "", jwtx.Claims{}, ErrSigningUnavailable
	}

	token, err := signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return "", jwtx.Claims{}, err
	}
	return token, claims, nil
}
