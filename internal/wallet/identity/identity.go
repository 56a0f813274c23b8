package identity

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const (
	// Size is the length of a public key in bytes.
	Size = 32
	// Length is the length of the human readable form.
	Length = 60

	fragmentCount  = 4
	fragmentLength = 14
	checksumLength = 4
	checksumMask   = 0x3FFFF
	radix          = 26
)

// Identity is a raw public key. The zero value is the all-zero key.
type Identity [Size]byte

// FromBytes copies a 32 byte public key into an Identity.
func FromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != Size {
		return id, walleterrors.Wrap(errors.Errorf("got %d bytes", len(b)), walleterrors.CodeInvalidIdentity, "public key must be 32 bytes")
	}

	copy(id[:], b)
	return id, nil
}

// FromContractIndex returns the identity of the smart contract with the given index.
func FromContractIndex(index uint32) Identity {
	var id Identity
	binary.LittleEndian.PutUint32(id[:4], index)
	return id
}

// Parse decodes a 60 letter identity. Input is case-insensitive; the checksum is verified.
func Parse(s string) (Identity, error) {
	var id Identity

	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != Length {
		return id, walleterrors.Wrap(errors.Errorf("got %d characters", len(s)), walleterrors.CodeInvalidIdentity, "identity must be 60 letters")
	}

	for i := 0; i < Length; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return id, walleterrors.Wrap(errors.Errorf("character %q at position %d", s[i], i), walleterrors.CodeInvalidIdentity, "identity must contain only letters")
		}
	}

	for i := 0; i < fragmentCount; i++ {
		var fragment uint64
		for j := fragmentLength - 1; j >= 0; j-- {
			digit := uint64(s[i*fragmentLength+j] - 'A')
			next := fragment*radix + digit
			// 26^14 exceeds 2^64, so the top digits can overflow a fragment.
			if (next-digit)/radix != fragment {
				return Identity{}, walleterrors.Wrap(errors.Errorf("fragment %d overflows", i), walleterrors.CodeInvalidIdentity, "identity is out of range")
			}
			fragment = next
		}
		binary.LittleEndian.PutUint64(id[i*8:], fragment)
	}

	if want := id.encode(false); want != s {
		return Identity{}, walleterrors.Wrap(errors.New("checksum mismatch"), walleterrors.CodeInvalidIdentity, "identity checksum is invalid")
	}

	return id, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Identity {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the uppercase human readable form.
func (id Identity) String() string {
	return id.encode(false)
}

// Bytes returns a copy of the raw public key.
func (id Identity) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, id[:])
	return b
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) Equal(other Identity) bool {
	return id == other
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// EqualString compares two identities in their human readable form, ignoring case.
func EqualString(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// TransactionID returns the lowercase identifier of a signed transaction.
func TransactionID(signed []byte) string {
	digest := Digest(signed)
	return Identity(digest).encode(true)
}

func (id Identity) encode(lower bool) string {
	base := byte('A')
	if lower {
		base = 'a'
	}

	out := make([]byte, Length)
	for i := 0; i < fragmentCount; i++ {
		fragment := binary.LittleEndian.Uint64(id[i*8:])
		for j := 0; j < fragmentLength; j++ {
			out[i*fragmentLength+j] = base + byte(fragment%radix)
			fragment /= radix
		}
	}

	var sum [4]byte
	Sum(sum[:3], id[:])
	checksum := binary.LittleEndian.Uint32(sum[:]) & checksumMask
	for i := 0; i < checksumLength; i++ {
		out[fragmentCount*fragmentLength+i] = base + byte(checksum%radix)
		checksum /= radix
	}

	return string(out)
}
