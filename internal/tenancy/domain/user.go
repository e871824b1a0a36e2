package domain

import "time"

type User struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	PasswordHash  string
	PlatformAdmin bool // Orthogonal to team roles; bypasses all team-scoped checks
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
