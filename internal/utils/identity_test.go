package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"

func TestEncryptDecryptIdentity(t *testing.T) {
	encrypted, err := EncryptIdentity("1098765432", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, "1098765432", encrypted)

	decrypted, err := DecryptIdentity(encrypted, testKey)
	require.NoError(t, err)
	assert.Equal(t, "1098765432", decrypted)
}

func TestEncryptIdentityRandomIV(t *testing.T) {
	a, err := EncryptIdentity("1098765432", testKey)
	require.NoError(t, err)
	b, err := EncryptIdentity("1098765432", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "same plaintext must not produce the same ciphertext")
}

func TestEncryptIdentityBadKey(t *testing.T) {
	_, err := EncryptIdentity("1098765432", "deadbeef")
	assert.Error(t, err)

	_, err = EncryptIdentity("1098765432", "not-hex")
	assert.Error(t, err)

	_, err = EncryptIdentity("", testKey)
	assert.Error(t, err)
}

func TestDecryptIdentityGarbage(t *testing.T) {
	_, err := DecryptIdentity("00", testKey)
	assert.Error(t, err)

	_, err = DecryptIdentity("", testKey)
	assert.Error(t, err)
}

func TestDigestIdentity(t *testing.T) {
	a := DigestIdentity("1098765432", "secret")
	b := DigestIdentity("1098765432", "secret")
	assert.Equal(t, a, b, "digest must be deterministic")
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, DigestIdentity("1098765433", "secret"))
	assert.NotEqual(t, a, DigestIdentity("1098765432", "other-secret"))
}

func TestGenerateReferenceNumber(t *testing.T) {
	ref := GenerateReferenceNumber("TXN")
	assert.True(t, strings.HasPrefix(ref, "TXN-"))
	assert.NotEqual(t, ref, GenerateReferenceNumber("TXN"))
}
