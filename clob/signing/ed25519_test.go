package signing

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 8032 section 7.1, TEST 1
const (
	rfcSeedHex      = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	rfcPublicHex    = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
	rfcSignatureHex = "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestSignEd25519_RFC8032Vector(t *testing.T) {
	sig, err := SignEd25519(nil, mustHex(t, rfcSeedHex))
	require.NoError(t, err)
	assert.Equal(t, rfcSignatureHex, hex.EncodeToString(sig))
	assert.Len(t, sig, ed25519.SignatureSize)
	assert.True(t, VerifyEd25519(nil, sig, mustHex(t, rfcPublicHex)))
}

func TestSignEd25519_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	msg := []byte("1700000000000POST/v1/order{\"symbol\":\"X\"}")

	a, err := SignEd25519(msg, seed)
	require.NoError(t, err)
	b, err := SignEd25519(msg, seed)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := SignEd25519(append(msg, ' '), seed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSignEd25519_InvalidKeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		_, err := SignEd25519([]byte("m"), make([]byte, n))
		assert.ErrorIs(t, err, ErrInvalidPrivateKey, "len=%d", n)
	}
}

func TestPublicKeyTagRoundTrip(t *testing.T) {
	tagged, err := PublicKeyFromSeed(mustHex(t, rfcSeedHex))
	require.NoError(t, err)
	assert.Equal(t, KeyPrefixEd25519+base58.Encode(mustHex(t, rfcPublicHex)), tagged)

	raw, err := ParsePublicKey(tagged)
	require.NoError(t, err)
	assert.Equal(t, rfcPublicHex, hex.EncodeToString(raw))

	_, err = ParsePublicKey("secp256k1:abc")
	assert.Error(t, err)
}

func TestParsePrivateKey(t *testing.T) {
	seed := mustHex(t, rfcSeedHex)
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"tagged base58", KeyPrefixEd25519 + base58.Encode(seed), true},
		{"bare base58", base58.Encode(seed), true},
		{"hex", "0x" + rfcSeedHex, true},
		{"short hex", "0x" + rfcSeedHex[:10], false},
		{"empty", "  ", false},
		{"bad base58", "ed25519:0OIl", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrivateKey(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidPrivateKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, seed, got)
		})
	}
}

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair(nil)
	require.NoError(t, err)
	assert.Len(t, kp.PrivateKey, ed25519.SeedSize)

	derived, err := PublicKeyFromSeed(kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, derived)

	seed, err := ParsePrivateKey(kp.Secret())
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey, seed)
}
