package service

import (
	"context"
	"crypto/subtle"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

const roleManager = "manager"

// LoginResult is returned on a successful manager login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type authService struct {
	tokens            security.TokenManager
	adminUsername     string
	adminPasswordHash []byte
	qaPassword        string
}

// NewAuthService hashes the configured admin password at startup so the
// plaintext is not kept around for comparisons.
func NewAuthService(tokens security.TokenManager, adminUsername, adminPassword, qaPassword string) (AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &authService{
		tokens:            tokens,
		adminUsername:     adminUsername,
		adminPasswordHash: hash,
		qaPassword:        qaPassword,
	}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username != s.adminUsername {
		return nil, &domain.ValidationError{Field: "credentials", Detail: "invalid username or password"}
	}
	if err := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)); err != nil {
		return nil, &domain.ValidationError{Field: "credentials", Detail: "invalid username or password"}
	}

	token, err := s.tokens.GenerateToken(username, roleManager)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken: token,
		Username:    username,
		Role:        roleManager,
		ExpiresIn:   int64(s.tokens.Expiry().Seconds()),
	}, nil
}

// VerifyQAPassword checks the shared password required on return endpoints.
func (s *authService) VerifyQAPassword(password string) error {
	if password == "" {
		return &domain.ValidationError{Field: "password", Detail: "QA password is required"}
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.qaPassword)) != 1 {
		return &domain.ValidationError{Field: "password", Detail: "invalid QA password"}
	}
	return nil
}
