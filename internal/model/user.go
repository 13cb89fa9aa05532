package model

import "time"

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef is the display-friendly summary used when resolving organiser
// and attendee ids on reads.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
