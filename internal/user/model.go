package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Pending is a registration waiting for its OTP.
type Pending struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	OTP          string
	IssuedAt     time.Time
}

// RegisterRequest is the sign-up form.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name"     form:"name"     example:"Asha"`
	Email    string `json:"email"    form:"email"    example:"asha@example.com"`
	Password string `json:"password" form:"password" example:"s3cret-pass"`
}

// VerifyRequest confirms a registration.
// swagger:model VerifyRequest
type VerifyRequest struct {
	PendingID string `json:"pending_id" form:"pending_id"`
	OTP       string `json:"otp"        form:"otp"        example:"123456"`
}

// LoginRequest is the email and password form.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}
