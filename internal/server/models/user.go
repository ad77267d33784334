// Package models holds the server-side records shared by repositories and
// services.
package models

import "time"

// User is a registered account. PasswordHash is always a PasswordHasher
// output. ResetToken and ResetTokenExpiry are either both set or both nil.
type User struct {
	ID               string
	UserName         string
	Email            string
	PasswordHash     string
	Mobile           string
	ResetToken       *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
}

// HasPendingReset reports whether a reset token is currently attached.
func (u *User) HasPendingReset() bool {
	return u.ResetToken != nil && u.ResetTokenExpiry != nil
}
