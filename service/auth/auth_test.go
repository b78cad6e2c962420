package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndVerify(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)

	token, expires, err := issuer.CreateToken("abc")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	id, err := issuer.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestVerifyRejects(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	other := NewIssuer("other", time.Minute)

	foreign, _, err := other.CreateToken("abc")
	require.NoError(t, err)

	expired := NewIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.CreateToken("abc")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{SessionID: "abc"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong key", foreign},
		{"expired", old},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.VerifyToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "Bearer ", "Basic xyz", "bearer xyz"} {
		_, ok := BearerToken(header)
		assert.False(t, ok, header)
	}
}
