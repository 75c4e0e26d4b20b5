package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	pwd := "S3cr3t-password"
	hash, err := HashPassword(pwd)
	require.NoError(t, err)
	assert.NotEqual(t, pwd, hash)

	assert.NoError(t, CheckPassword(hash, pwd))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)

	token, issued, err := m.GenerateToken("12345678-5", "apoderado", "Ana Pérez")
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "12345678-5", claims.UserID)
	assert.Equal(t, "apoderado", claims.Role)
	assert.Equal(t, "Ana Pérez", claims.Name)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestJWTManager_UniqueTokenIDs(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)

	_, a, err := m.GenerateToken("1-9", "conductor", "")
	require.NoError(t, err)
	_, b, err := m.GenerateToken("1-9", "conductor", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)
	other := NewJWTManager("other-secret", 5*time.Minute)
	expired := NewJWTManager("test-secret", -time.Minute)

	foreign, _, err := other.GenerateToken("1-9", "conductor", "")
	require.NoError(t, err)
	old, _, err := expired.GenerateToken("1-9", "conductor", "")
	require.NoError(t, err)

	// alg "none" must never verify
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "1-9"})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "not-a-token",
		"wrong key":   foreign,
		"expired":     old,
		"none alg":    none,
		"empty token": "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.VerifyToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTManager_Rotation(t *testing.T) {
	keys := map[string]string{"k1": "secret-one", "k2": "secret-two"}
	m := NewJWTManagerFromKeys(keys, "k2", 5*time.Minute)

	tkn2, _, err := m.GenerateToken("1-9", "conductor", "")
	require.NoError(t, err)
	_, err = m.VerifyToken(tkn2)
	require.NoError(t, err)

	// a token issued while k1 was active keeps verifying after rotation
	mOld := NewJWTManagerFromKeys(keys, "k1", 5*time.Minute)
	tkn1, _, err := mOld.GenerateToken("1-9", "conductor", "")
	require.NoError(t, err)
	_, err = m.VerifyToken(tkn1)
	require.NoError(t, err)

	// once k1 is retired it stops verifying
	retired := NewJWTManagerFromKeys(map[string]string{"k2": "secret-two"}, "k2", 5*time.Minute)
	_, err = retired.VerifyToken(tkn1)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_MissingActiveKey(t *testing.T) {
	m := NewJWTManagerFromKeys(map[string]string{"k1": "s"}, "k9", time.Minute)
	_, _, err := m.GenerateToken("1-9", "conductor", "")
	assert.Error(t, err)
}
