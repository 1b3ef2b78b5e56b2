package model

// Token API error codes (used in HTTP responses)
const (
	CodeTokenMissing = "TOKEN_MISSING"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeTokenReused  = "TOKEN_REUSED"
)

// Cookie names shared by the auth handlers and middleware.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// TokenPair represents both tokens returned after login/refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshRequest is the request body for POST /users/refresh-token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

var (
	ErrUnauthorized        = Unauthorized(CodeUnauthorized, "Unauthorized request")
	ErrRefreshTokenMissing = Unauthorized(CodeTokenMissing, "Refresh token is required")
	ErrRefreshTokenInvalid = Unauthorized(CodeTokenInvalid, "Invalid or expired refresh token")
	ErrRefreshTokenReused  = Unauthorized(CodeTokenReused, "Refresh token is expired or used")
	ErrRefreshUserGone     = Unauthorized(CodeTokenInvalid, "Invalid refresh token")
)
