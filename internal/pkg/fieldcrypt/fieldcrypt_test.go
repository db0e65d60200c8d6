package fieldcrypt

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyA = "0000000000000000000000000000000000000000000000000000000000000001"
	testKeyB = "0000000000000000000000000000000000000000000000000000000000000002"
)

func newTestRing(t *testing.T) *Keyring {
	t.Helper()
	ring, err := NewKeyring("k1", map[string]string{"k1": testKeyA})
	require.NoError(t, err)
	return ring
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	ring := newTestRing(t)

	env, err := ring.Encrypt("Completed appointment for annual checkup.")
	require.NoError(t, err)
	assert.Equal(t, "k1", env.KeyID)
	assert.NotEmpty(t, env.Nonce)
	assert.NotContains(t, env.Ciphertext, "checkup")

	plain, err := ring.Decrypt(env)
	require.NoError(t, err)
	assert.Equal(t, "Completed appointment for annual checkup.", plain)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	ring := newTestRing(t)

	a, err := ring.Encrypt("same notes")
	require.NoError(t, err)
	b, err := ring.Encrypt("same notes")
	require.NoError(t, err)

	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDecrypt_UnknownKeyID(t *testing.T) {
	ring := newTestRing(t)

	env, err := ring.Encrypt("notes")
	require.NoError(t, err)

	env.KeyID = "retired"
	_, err = ring.Decrypt(env)
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestDecrypt_TamperDetected(t *testing.T) {
	ring := newTestRing(t)

	env, err := ring.Encrypt("notes")
	require.NoError(t, err)

	raw, err := hex.DecodeString(env.Ciphertext)
	require.NoError(t, err)
	raw[0] ^= 0xff
	env.Ciphertext = hex.EncodeToString(raw)

	_, err = ring.Decrypt(env)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecrypt_OldKeyStillOpens(t *testing.T) {
	old, err := NewKeyring("k1", map[string]string{"k1": testKeyA})
	require.NoError(t, err)
	env, err := old.Encrypt("sealed under k1")
	require.NoError(t, err)

	// A ring that moved on to k2 but kept k1 can still open the envelope.
	ring, err := NewKeyring("k2", map[string]string{"k1": testKeyA, "k2": testKeyB})
	require.NoError(t, err)
	require.Equal(t, "k2", ring.ActiveKeyID())

	plain, err := ring.Decrypt(env)
	require.NoError(t, err)
	assert.Equal(t, "sealed under k1", plain)
}

func TestNewKeyring_Validation(t *testing.T) {
	cases := []struct {
		name   string
		active string
		keys   map[string]string
		want   string
	}{
		{"no keys", "k1", nil, "no keys"},
		{"bad hex", "k1", map[string]string{"k1": "zz"}, "k1"},
		{"short key", "k1", map[string]string{"k1": "abcd"}, "want 32"},
		{"active missing", "k2", map[string]string{"k1": testKeyA}, "not in ring"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewKeyring(tc.active, tc.keys)
			require.Error(t, err)
			if !strings.Contains(err.Error(), tc.want) && !errors.Is(err, ErrUnknownKey) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
