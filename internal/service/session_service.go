package service

import (
	"fmt"
	"time"

	"geo2max-server/internal/domain"
	"geo2max-server/pkg/jwt"
)

// SessionService exchanges a resolved user key plus remote bearer token
// for a signed session token. The credential travels inside the token
// claims, so the server keeps no per-user credential state.
type SessionService struct {
	jwtSecret  string
	expiration time.Duration
}

func NewSessionService(jwtSecret string, expiration time.Duration) *SessionService {
	return &SessionService{
		jwtSecret:  jwtSecret,
		expiration: expiration,
	}
}

func (s *SessionService) Issue(req *domain.IssueSessionRequest) (*domain.SessionResponse, error) {
	token, err := jwt.GenerateToken(req.UserKey, req.AccessToken, s.expiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &domain.SessionResponse{
		Token:     token,
		ExpiresIn: int64(s.expiration.Seconds()),
	}, nil
}
