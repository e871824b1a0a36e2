package domain

import "time"

// TeamStatus tracks a team's lifecycle. Only active teams resolve by subdomain.
type TeamStatus string

const (
	TeamStatusActive  TeamStatus = "active"
	TeamStatusDeleted TeamStatus = "deleted"
)

type Team struct {
	ID        string
	Name      string
	Subdomain string // Unique host label the team is addressed by
	OwnerID   string // Owner-of-record; mirrors the single owner membership
	Status    TeamStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
