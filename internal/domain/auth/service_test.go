package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

func TestService_IssueValidateAndRefresh(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.IssueToken(context.Background(), IssueRequest{Subject: " dispatch-7 ", Fleet: "acme-freight"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, "dispatch-7", claims.Subject)
	require.Equal(t, "acme-freight", claims.Fleet)
	require.Equal(t, tokenTypeAccess, claims.TokenType)
	require.NotEmpty(t, claims.TokenID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)

	again, err := svc.ValidateToken(context.Background(), refreshed.Token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, again.Subject)
	require.Equal(t, claims.Fleet, again.Fleet)
	require.NotEqual(t, claims.TokenID, again.TokenID)
}

func TestService_TokenTypeMismatch(t *testing.T) {
	svc := newTestService(t)
	resp, err := svc.IssueToken(context.Background(), IssueRequest{Subject: "driver-app"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = svc.Refresh(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_RejectsBadTokens(t *testing.T) {
	svc := newTestService(t)
	resp, err := svc.IssueToken(context.Background(), IssueRequest{Subject: "agent-host"})
	require.NoError(t, err)

	other := NewService(Config{Secret: "other-secret", Issuer: "safetravels", TokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, newTestLogger())
	_, err = other.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	wrongIssuer := NewService(Config{Secret: "test-secret", Issuer: "someone-else", TokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, newTestLogger())
	_, err = wrongIssuer.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = svc.ValidateToken(context.Background(), "  ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = svc.ValidateToken(context.Background(), "not-a-jwt")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newTestService(t).(*service)
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	resp, err := svc.IssueToken(context.Background(), IssueRequest{Subject: "dispatch-7"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
}

func TestService_InvalidSubject(t *testing.T) {
	svc := newTestService(t)
	for _, subject := range []string{"", "   ", "two words"} {
		_, err := svc.IssueToken(context.Background(), IssueRequest{Subject: subject})
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), subject)
	}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	return NewService(Config{
		Secret:          "test-secret",
		Issuer:          "safetravels",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, newTestLogger())
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}
