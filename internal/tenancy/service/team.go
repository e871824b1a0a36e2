package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/store"
	"github.com/sidelinehq/sideline/pkg/idx"
	"github.com/sidelinehq/sideline/pkg/slogx"
)

var (
	ErrInvalidTeamRequest  = errors.New("invalid team request")
	ErrInvalidSubdomain    = errors.New("invalid or reserved subdomain")
	ErrSubdomainTaken      = errors.New("subdomain already taken")
	ErrTeamNotFound        = errors.New("team not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member")
	ErrOwnerRoleImmutable  = errors.New("owner role can only change via ownership transfer")
)

// subdomainPattern matches lowercase DNS labels: alphanumeric with interior
// hyphens, 3 to 63 characters.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61}[a-z0-9])$`)

// reservedSubdomains are labels routed to the platform itself and never
// resolvable to a team.
var reservedSubdomains = []string{"api", "www", "app", "admin"}

type TeamService struct {
	Store store.Store
}

// CreateTeam provisions a team addressed by a unique subdomain. The creator
// becomes the owner: the team row and its owner membership are written in one
// transaction so no team ever exists without exactly one owner.
func (s *TeamService) CreateTeam(
	ctx context.Context,
	name, subdomain, creatorID string,
) (domain.Team, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	name = strings.TrimSpace(name)
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if name == "" || creatorID == "" {
		return domain.Team{}, ErrInvalidTeamRequest
	}
	if err := ValidateSubdomain(subdomain); err != nil {
		return domain.Team{}, err
	}

	// 2. Verify the creator exists
	creator, err := s.Store.Users().GetUserByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Team{}, ErrInvalidTeamRequest
		}
		return domain.Team{}, err
	}

	// 3. Create team and owner membership atomically
	team := domain.Team{
		ID:        idx.New().String(),
		Name:      name,
		Subdomain: subdomain,
		OwnerID:   creator.ID,
		Status:    domain.TeamStatusActive,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Teams().CreateTeam(ctx, team); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSubdomainTaken
			}
			return err
		}
		return tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:         idx.New().String(),
			TeamID:     team.ID,
			UserID:     creator.ID,
			Role:       domain.RoleOwner,
			MemberType: domain.MemberTypeStaff,
			Active:     true,
		})
	})
	if err != nil {
		if !errors.Is(err, ErrSubdomainTaken) {
			log.Error("failed to create team", slog.Any("error", err))
		}
		return domain.Team{}, err
	}

	log.Info("team created",
		slog.String("team_id", team.ID),
		slog.String("subdomain", team.Subdomain),
		slog.String("owner_id", creator.ID),
	)
	return team, nil
}

// GetTeam fetches a team by id.
func (s *TeamService) GetTeam(ctx context.Context, teamID string) (domain.Team, error) {
	team, err := s.Store.Teams().GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Team{}, ErrTeamNotFound
		}
		return domain.Team{}, err
	}
	return team, nil
}

// ListMembers returns the active memberships of a team.
func (s *TeamService) ListMembers(ctx context.Context, teamID string) ([]domain.Membership, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.Store.Memberships().ListTeamMemberships(ctx, teamID)
}

// AddMember creates an active membership for an existing user. Deactivated
// rows for the pair stay untouched; a fresh row records the rejoin.
func (s *TeamService) AddMember(
	ctx context.Context,
	teamID, userID string,
	role domain.Role,
	memberType domain.MemberType,
) (domain.Membership, error) {
	log := slogx.FromContext(ctx)

	// Owners are made by CreateTeam or an ownership transfer, never directly.
	if role == domain.RoleOwner || !role.Valid() {
		return domain.Membership{}, ErrInvalidTeamRequest
	}

	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return domain.Membership{}, err
	}
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Membership{}, ErrMemberNotFound
		}
		return domain.Membership{}, err
	}

	m := domain.Membership{
		ID:         idx.New().String(),
		TeamID:     teamID,
		UserID:     userID,
		Role:       role,
		MemberType: memberType,
		Active:     true,
	}
	err := s.Store.Memberships().CreateMembership(ctx, m)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Membership{}, ErrMemberAlreadyExists
	}
	if err != nil {
		log.Error("failed to add member", slog.Any("error", err))
		return domain.Membership{}, err
	}

	log.Info("member added",
		slog.String("team_id", teamID),
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)
	return m, nil
}

// UpdateMemberRole changes a member's role between member and admin. The
// owner role never enters or leaves through this path; ownership moves only
// through a completed transfer.
func (s *TeamService) UpdateMemberRole(
	ctx context.Context,
	teamID, userID string,
	role domain.Role,
) (domain.Membership, error) {
	log := slogx.FromContext(ctx)

	if !role.Valid() {
		return domain.Membership{}, domain.ErrUnknownRole
	}
	if role == domain.RoleOwner {
		return domain.Membership{}, ErrOwnerRoleImmutable
	}

	current, err := s.Store.Memberships().GetMembership(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Membership{}, ErrMemberNotFound
		}
		return domain.Membership{}, err
	}
	if current.Role == domain.RoleOwner {
		return domain.Membership{}, ErrOwnerRoleImmutable
	}

	if err := s.Store.Memberships().UpdateMembershipRole(ctx, teamID, userID, role); err != nil {
		return domain.Membership{}, err
	}

	log.Info("member role changed",
		slog.String("team_id", teamID),
		slog.String("user_id", userID),
		slog.String("from", string(current.Role)),
		slog.String("to", string(role)),
	)
	current.Role = role
	return current, nil
}

// RemoveMember deactivates a membership. The owner cannot be removed; the
// team must always retain its owner.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	m, err := s.Store.Memberships().GetMembership(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	if m.Role == domain.RoleOwner {
		return ErrOwnerRoleImmutable
	}
	return s.Store.Memberships().DeactivateMembership(ctx, teamID, userID)
}

// ValidateSubdomain rejects malformed and reserved host labels.
func ValidateSubdomain(subdomain string) error {
	if !subdomainPattern.MatchString(subdomain) {
		return ErrInvalidSubdomain
	}
	if slices.Contains(reservedSubdomains, subdomain) {
		return ErrInvalidSubdomain
	}
	return nil
}
