package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"shiksha/internal/rbac"
)

type Authenticator interface {
	GenerateTokens(accountID int64, role rbac.Role) (string, string, error)
	ValidateAccessToken(token string) (*jwt.Token, error)
	ValidateRefreshToken(token string) (*jwt.Token, error)
}
