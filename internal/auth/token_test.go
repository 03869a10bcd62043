package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

func TestIssueAndParse(t *testing.T) {
	token, err := Issue(secret, "ops@academy", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := Parse(secret, token)

	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "ops@academy", claims.Subject)
}

func TestParse_Rejects(t *testing.T) {
	expired, err := Issue(secret, "ops", "admin", -time.Minute)
	require.NoError(t, err)

	otherSecret, err := Issue("another-secret-value", "ops", "admin", time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"unsigned", none},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(secret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
