package identity

import (
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseBlob(t *testing.T) {
	requester := ParseBlob(`{"name":"Ana López","email":"ana@example.com","username":"alopez"}`, zap.NewNop())
	require.NotNil(t, requester)
	assert.Equal(t, "Ana López", requester.Name)
	assert.Equal(t, "ana@example.com", requester.Email)
	assert.Equal(t, "alopez", requester.Username)
	assert.True(t, requester.Valid())
}

func TestParseBlobMalformedIsTolerated(t *testing.T) {
	assert.Nil(t, ParseBlob(`{not json`, zap.NewNop()))
}

func TestParseBlobEmpty(t *testing.T) {
	assert.Nil(t, ParseBlob("", zap.NewNop()))
	assert.Nil(t, ParseBlob(`{}`, zap.NewNop()))
}

func TestParseToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                "user-42",
		"name":               "Ana López",
		"email":              "ana@example.com",
		"preferred_username": "alopez",
	})
	// Signed with a key this service never sees; claims are still extracted
	// because the upstream gateway is the trust boundary.
	signed, err := token.SignedString([]byte("gateway-only-secret"))
	require.NoError(t, err)

	requester := ParseToken(signed, zap.NewNop())
	require.NotNil(t, requester)
	assert.Equal(t, "Ana López", requester.Name)
	assert.Equal(t, "ana@example.com", requester.Email)
	assert.Equal(t, "alopez", requester.Username)
	assert.Equal(t, "user-42", requester.SubjectID)
}

func TestParseTokenMalformedIsTolerated(t *testing.T) {
	assert.Nil(t, ParseToken("not.a.jwt", zap.NewNop()))
	assert.Nil(t, ParseToken("", zap.NewNop()))
}
