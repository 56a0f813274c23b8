package identity

import (
	"github.com/cloudflare/circl/xof/k12"
)

// DigestSize is the size of the transaction digest that gets signed.
const DigestSize = 32

// Sum writes KangarooTwelve(parts...) into out, filling it completely.
func Sum(out []byte, parts ...[]byte) {
	h := k12.NewDraft10(nil)
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	_, _ = h.Read(out)
}

// Digest returns the 32 byte KangarooTwelve digest of b.
func Digest(b []byte) [DigestSize]byte {
	var out [DigestSize]byte
	Sum(out[:], b)
	return out
}
