// Package keys derives FourQ key pairs from seeds and produces SchnorrQ signatures.
package keys

import (
	"crypto/subtle"
	"math/big"

	"github.com/cloudflare/circl/ecc/fourq"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/seed"
)

// SignatureSize is the size of a SchnorrQ signature: encoded R followed by s.
const SignatureSize = 64

const scalarSize = fourq.Size

var (
	order = fourq.Params().N
	// ScalarMult clears the cofactor before multiplying, so verification
	// pre-multiplies by its inverse.
	cofactorInverse = new(big.Int).ModInverse(big.NewInt(392), order)
)

// KeyPair is the signing material derived from a subseed.
type KeyPair struct {
	private  [scalarSize]byte
	nonceKey [scalarSize]byte
	public   identity.Identity
}

// FromSeed derives the key pair of a seed.
func FromSeed(s *seed.Seed) (*KeyPair, error) {
	subseed, err := s.Subseed()
	if err != nil {
		return nil, err
	}
	defer clear(subseed[:])

	return FromSubseed(subseed), nil
}

// FromSubseed derives k = K12(subseed, 64); the private scalar is k[0:32] mod N
// and k[32:64] keys the deterministic nonce.
func FromSubseed(subseed [seed.SubseedSize]byte) *KeyPair {
	var k [2 * scalarSize]byte
	identity.Sum(k[:], subseed[:])
	defer clear(k[:])

	kp := &KeyPair{}
	kp.private = scalarBytes(reduce(k[:scalarSize]))
	copy(kp.nonceKey[:], k[scalarSize:])

	var point fourq.Point
	point.ScalarBaseMult(&kp.private)
	var encoded [scalarSize]byte
	point.Marshal(&encoded)
	kp.public = identity.Identity(encoded)

	return kp
}

// Identity returns the public key.
func (kp *KeyPair) Identity() identity.Identity {
	return kp.public
}

// Sign signs a 32 byte message digest.
func (kp *KeyPair) Sign(digest [identity.DigestSize]byte) [SignatureSize]byte {
	var sig [SignatureSize]byte

	var nonce [2 * scalarSize]byte
	identity.Sum(nonce[:], kp.nonceKey[:], digest[:])
	r := reduce(nonce[:scalarSize])
	clear(nonce[:])

	rBytes := scalarBytes(r)
	var point fourq.Point
	point.ScalarBaseMult(&rBytes)
	clear(rBytes[:])

	var encodedR [scalarSize]byte
	point.Marshal(&encodedR)
	copy(sig[:scalarSize], encodedR[:])

	h := challenge(encodedR, kp.public, digest)

	// s = r - h*a mod N
	a := reduce(kp.private[:])
	s := new(big.Int).Mul(h, a)
	s.Sub(r, s)
	s.Mod(s, order)

	sBytes := scalarBytes(s)
	copy(sig[scalarSize:], sBytes[:])

	return sig
}

// Clear zeroes the private material.
func (kp *KeyPair) Clear() {
	clear(kp.private[:])
	clear(kp.nonceKey[:])
}

// Verify checks a SchnorrQ signature over digest by the holder of public.
func Verify(public identity.Identity, digest [identity.DigestSize]byte, sig [SignatureSize]byte) bool {
	// Non-canonical encodings: the top bit of R's first coordinate, or s >= 2^246.
	if sig[15]&0x80 != 0 || sig[62]&0xC0 != 0 || sig[63] != 0 {
		return false
	}

	pubBytes := [scalarSize]byte(public)
	var pubPoint fourq.Point
	if !pubPoint.Unmarshal(&pubBytes) {
		return false
	}

	var encodedR [scalarSize]byte
	copy(encodedR[:], sig[:scalarSize])

	h := challenge(encodedR, public, digest)
	hPrime := scalarBytes(new(big.Int).Mod(new(big.Int).Mul(h, cofactorInverse), order))

	var sBytes [scalarSize]byte
	copy(sBytes[:], sig[scalarSize:])

	var sG, hA, sum fourq.Point
	sG.ScalarBaseMult(&sBytes)
	hA.ScalarMult(&hPrime, &pubPoint)
	sum.Add(&sG, &hA)

	var encoded [scalarSize]byte
	sum.Marshal(&encoded)

	return subtle.ConstantTimeCompare(encoded[:], encodedR[:]) == 1
}

func challenge(encodedR [scalarSize]byte, public identity.Identity, digest [identity.DigestSize]byte) *big.Int {
	var h [2 * scalarSize]byte
	identity.Sum(h[:], encodedR[:], public[:], digest[:])
	return reduce(h[:scalarSize])
}

// reduce interprets b as a little-endian integer modulo the group order.
func reduce(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	defer clear(be)

	x := new(big.Int).SetBytes(be)
	return x.Mod(x, order)
}

func scalarBytes(x *big.Int) [scalarSize]byte {
	var be, le [scalarSize]byte
	x.FillBytes(be[:])
	for i := range be {
		le[scalarSize-1-i] = be[i]
	}
	return le
}
