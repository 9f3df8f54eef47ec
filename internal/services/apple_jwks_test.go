package services

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSAKeyFromJWK_RoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	n := base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes())

	pub, err := rsaKeyFromJWK(n, e)
	require.NoError(t, err)

	assert.Equal(t, key.PublicKey.N, pub.N)
	assert.Equal(t, key.PublicKey.E, pub.E)
}

func TestRSAKeyFromJWK_RejectsBadEncoding(t *testing.T) {
	_, err := rsaKeyFromJWK("not base64url!!", "AQAB")
	assert.Error(t, err)
}

func TestVerifyIdentityToken_RejectsGarbage(t *testing.T) {
	ks := NewAppleKeySet()

	_, err := ks.VerifyIdentityToken("not.a.jwt", "com.gatofit.app")
	assert.Error(t, err)
}
