package keys_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/keys"
	"github/qdoge/go-wallet/internal/wallet/seed"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const (
	seedA     = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	identityA = "BZBQFLLBNCXEMGLOBHUVFTLUPLVCPQUASSILFABOFFBCADQSSUPNWLZBQEXK"
	identityB = "DJZMUACQMTYFSEJEYLDBWIGELSFCBMBLPCMBBYFXJHLTGWKHTRRJXTDEHTFL"
)

func keyPair(t *testing.T, letters string) *keys.KeyPair {
	t.Helper()

	s, err := seed.Parse(letters)
	require.NoError(t, err)

	kp, err := keys.FromSeed(s)
	require.NoError(t, err)

	return kp
}

func countingDigest() [identity.DigestSize]byte {
	var digest [identity.DigestSize]byte
	for i := range digest {
		digest[i] = byte(i)
	}
	return digest
}

func TestFromSeedKnownIdentities(t *testing.T) {
	assert.Equal(t, identityA, keyPair(t, seedA).Identity().String())
	assert.Equal(t, identityB, keyPair(t, strings.Repeat("b", seed.Length)).Identity().String())
}

func TestFromSeedCleared(t *testing.T) {
	s, err := seed.Parse(seedA)
	require.NoError(t, err)
	s.Clear()

	_, err = keys.FromSeed(s)
	require.ErrorIs(t, err, walleterrors.ErrMissingSecret)
}

func TestSignKnownAnswer(t *testing.T) {
	kp := keyPair(t, seedA)

	sig := kp.Sign(countingDigest())
	assert.Equal(t,
		"4d34948ab58c20f3580c0d881980ad20532d0d5aa306735444e90c47bc7ceed5"+
			"67d64a10df9e67eeb071b4f7afde342b30aeaaa411fc508f89522393ff9b0000",
		hex.EncodeToString(sig[:]))
}

func TestSignVerify(t *testing.T) {
	kp := keyPair(t, seedA)
	digest := identity.Digest([]byte("transfer 1000000 QU"))

	sig := kp.Sign(digest)
	assert.Equal(t, sig, kp.Sign(digest), "signatures are deterministic")
	assert.True(t, keys.Verify(kp.Identity(), digest, sig))

	other := digest
	other[0] ^= 0x01
	assert.False(t, keys.Verify(kp.Identity(), other, sig))

	tampered := sig
	tampered[40] ^= 0x01
	assert.False(t, keys.Verify(kp.Identity(), digest, tampered))

	stranger := keyPair(t, strings.Repeat("b", seed.Length))
	assert.False(t, keys.Verify(stranger.Identity(), digest, sig))
}

func TestVerifyRejectsNonCanonicalScalar(t *testing.T) {
	kp := keyPair(t, seedA)
	digest := countingDigest()

	sig := kp.Sign(digest)
	sig[63] = 0x01
	assert.False(t, keys.Verify(kp.Identity(), digest, sig))
}

func TestClear(t *testing.T) {
	kp := keyPair(t, seedA)
	before := kp.Sign(countingDigest())

	kp.Clear()

	assert.NotEqual(t, before, kp.Sign(countingDigest()))
	assert.Equal(t, identityA, kp.Identity().String())
}
