package security_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"toko/internal/security"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := security.NewTokenCodec(testSecret)

	token, err := codec.Issue("user-123", time.Hour)
	require.NoError(t, err)

	userID, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenCodec_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec := security.NewTokenCodec(testSecret).WithClock(clock.Now)

	token, err := codec.Issue("user-123", security.DefaultSessionTTL)
	require.NoError(t, err)

	clock.now = clock.now.Add(security.DefaultSessionTTL - time.Minute)
	_, err = codec.Verify(token)
	assert.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Minute)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenCodec_RejectsTamperedToken(t *testing.T) {
	codec := security.NewTokenCodec(testSecret)
	token, err := codec.Issue("user-123", time.Hour)
	require.NoError(t, err)

	// Flip one character inside the payload segment.
	i := strings.Index(token, ".") + 2
	replacement := byte('A')
	if token[i] == 'A' {
		replacement = 'B'
	}
	tampered := token[:i] + string(replacement) + token[i+1:]

	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenCodec_RejectsInvalidInput(t *testing.T) {
	codec := security.NewTokenCodec(testSecret)
	other := security.NewTokenCodec("another_secret")

	foreign, err := other.Issue("user-123", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "user-123"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": "user-123",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"malformed":      "invalid.token.string",
		"wrong secret":   foreign,
		"missing expiry": noExpiry,
		"none algorithm": noneAlg,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(token)
			assert.True(t, errors.Is(err, security.ErrInvalidToken), "got %v", err)
		})
	}
}

func TestTokenCodec_MissingSecret(t *testing.T) {
	codec := security.NewTokenCodec("")

	_, err := codec.Issue("user-123", time.Hour)
	assert.Error(t, err)

	token, err := security.NewTokenCodec(testSecret).Issue("user-123", time.Hour)
	require.NoError(t, err)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}
