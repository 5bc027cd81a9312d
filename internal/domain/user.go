package domain

import "time"

// User is the domain entity for a registered account.
// PasswordHash is the bcrypt verifier, never the plaintext.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
