package domain

import "time"

// User is a phone-number-keyed identity, created on first contact.
type User struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	ProfileName string    `json:"profile_name,omitempty"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at"`
}
