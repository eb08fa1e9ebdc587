package auth

import (
	"time"

	pkgauth "github.com/akeren/landing-api/pkg/auth"
	"github.com/akeren/landing-api/pkg/constants"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=1024"`
}

type UserResponse struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type LoginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   string       `json:"expires_at"`

	expiresAt time.Time
}

func ToUserResponse(p *pkgauth.Principal) UserResponse {
	if p == nil {
		return UserResponse{}
	}

	resp := UserResponse{Email: p.Email, Role: p.Role}
	if p.ExpiresAt > 0 {
		resp.ExpiresAt = time.Unix(p.ExpiresAt, 0).UTC().Format(constants.RFC3339DateTimeFormat)
	}
	return resp
}
