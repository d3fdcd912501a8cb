package auth

import "time"

// User is a registered account. Favourites lists belong to exactly one User.
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never serialized
	CreatedAt      time.Time `json:"created_at"`
}
