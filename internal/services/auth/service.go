package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service verifies the bearer tokens presented on HTTP and websocket requests.
// Sessions are issued elsewhere; IssueAccessToken exists for development
// tooling and tests.
type Service struct {
	jwt *JWTManager
}

func NewService(jwtManager *JWTManager) *Service {
	return &Service{jwt: jwtManager}
}

func (s *Service) IssueAccessToken(userID string) (IssuedToken, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return IssuedToken{}, ErrInvalidInput
	}
	if s.jwt == nil {
		return IssuedToken{}, fmt.Errorf("jwt manager is nil")
	}

	sid := uuid.NewString()
	token, expiresAt, err := s.jwt.GenerateAccessToken(userID, sid)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("generate access token: %w", err)
	}

	return IssuedToken{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		SID:         sid,
	}, nil
}

func (s *Service) ValidateAccessToken(_ context.Context, accessToken string) (AccessClaims, error) {
	if s.jwt == nil {
		return AccessClaims{}, fmt.Errorf("jwt manager is nil")
	}
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}
	return claims, nil
}
