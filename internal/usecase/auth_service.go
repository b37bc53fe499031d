package usecase

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

// AuthService issues and verifies the tokens that carry an authenticated
// customer or staff reference into every operation. Credential checking
// itself lives with an external identity collaborator.
type AuthService struct {
	JWTSecret string
	TokenTTL  time.Duration
}

func (s *AuthService) Issue(userID, role string) (string, error) {
	if userID == "" {
		return "", ValidationError("user id required")
	}
	if role != RoleCustomer && role != RoleStaff {
		return "", ValidationError("unknown role " + role)
	}
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.JWTSecret))
}

func (s *AuthService) Verify(token string) (string, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(s.JWTSecret), nil
	})
	if err != nil {
		return "", "", err
	}
	if !parsed.Valid {
		return "", "", ValidationError("invalid token")
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ValidationError("invalid claims")
	}
	uid, _ := m["sub"].(string)
	role, _ := m["role"].(string)
	if uid == "" {
		return "", "", ValidationError("token missing subject")
	}
	return uid, role, nil
}
