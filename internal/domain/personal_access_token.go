package domain

import "time"

// PersonalAccessToken is a long-lived API credential bound to a user.
type PersonalAccessToken struct {
	ID        int64
	TokenHash string
	UserUID   string
	Name      string
	ExpiresAt *time.Time
}
