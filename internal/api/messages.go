package api

import "time"

type RegisterRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile,omitempty"`
}

type LoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the bearer token issued by Register and Login.
type AuthResponse struct {
	Token    string `json:"token"`
	UserName string `json:"username"`
	Email    string `json:"email"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
