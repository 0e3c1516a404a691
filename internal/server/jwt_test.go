package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/resume-reader/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 2})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, sessionID, expiresAt, err := svc.GenerateToken("admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, sessionID)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.GetUsername())
	assert.Equal(t, sessionID, claims.GetSessionID())
}

func TestJWTService_FreshSessionPerToken(t *testing.T) {
	svc := newTestJWTService()

	_, first, _, err := svc.GenerateToken("admin")
	require.NoError(t, err)
	_, second, _, err := svc.GenerateToken("admin")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	token, _, _, err := svc.GenerateToken("admin")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, _, _, err := newTestJWTService().GenerateToken("admin")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "other-secret", ExpirationHours: 2})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsInvalid(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateToken("")
	assert.Error(t, err)

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestJWTService_RejectsMissingSession(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()
	claims := &Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{Username: "admin", SessionID: "s"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestAsTokenValidator(t *testing.T) {
	svc := newTestJWTService()
	token, sessionID, _, err := svc.GenerateToken("admin")
	require.NoError(t, err)

	claims, err := svc.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.GetUsername())
	assert.Equal(t, sessionID, claims.GetSessionID())

	_, err = svc.AsTokenValidator().ValidateToken("garbage")
	assert.Error(t, err)
}
