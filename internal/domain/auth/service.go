package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

// Service issues and validates bearer tokens for API and agent clients.
type Service interface {
	IssueToken(ctx context.Context, req IssueRequest) (TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	maxSubjectLength = 128
)

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "auth.service"),
		now:    time.Now,
	}
}

func (s *service) IssueToken(ctx context.Context, req IssueRequest) (TokenResponse, error) {
	subject, err := normalizeSubject(req.Subject)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	resp, err := s.buildTokenResponse(subject, strings.TrimSpace(req.Fleet))
	if err != nil {
		return TokenResponse{}, err
	}
	s.logger.Info("token issued", "subject", subject, "fleet", req.Fleet, "expiresAt", resp.ExpiresAt)
	return resp, nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeAccess {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	return claims, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return TokenResponse{}, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	return s.buildTokenResponse(claims.Subject, claims.Fleet)
}

func (s *service) buildTokenResponse(subject, fleet string) (TokenResponse, error) {
	now := s.now()
	access, err := s.generateToken(subject, fleet, tokenTypeAccess, now, s.cfg.TokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	refresh, err := s.generateToken(subject, fleet, tokenTypeRefresh, now, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		Token:        access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.cfg.TokenTTL).UTC(),
	}, nil
}

func (s *service) generateToken(subject, fleet, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		Fleet:     fleet,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	return signed, nil
}

func (s *service) parseToken(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	return Claims{
		Subject:   claims.Subject,
		Fleet:     claims.Fleet,
		TokenType: claims.TokenType,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func normalizeSubject(raw string) (string, error) {
	subject := strings.TrimSpace(raw)
	if subject == "" {
		return "", fmt.Errorf("subject cannot be empty")
	}
	if len(subject) > maxSubjectLength {
		return "", fmt.Errorf("subject cannot exceed %d characters", maxSubjectLength)
	}
	if strings.ContainsAny(subject, " \t\r\n") {
		return "", fmt.Errorf("subject cannot contain whitespace")
	}
	return subject, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Fleet     string `json:"fleet,omitempty"`
	TokenType string `json:"type"`
}
