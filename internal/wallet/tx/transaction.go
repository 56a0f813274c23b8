// Package tx encodes ledger transactions.
//
// Layout, little-endian:
//
//	source[32] | destination[32] | amount uint64 | tick uint32 |
//	inputType uint16 | inputSize uint16 | payload[inputSize] | signature[64]
package tx

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/keys"
)

var (
	ErrPayloadTooLarge = errors.New("payload exceeds 65535 bytes")
	ErrTruncated       = errors.New("transaction bytes are truncated")
)

// SignatureOffset is where the signature region starts.
func (t *Transaction) SignatureOffset() int {
	return HeaderSize + len(t.Payload)
}

// Encode serializes t with a zeroed trailing signature region.
func (t *Transaction) Encode() ([]byte, error) {
	if len(t.Payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, t.SignatureOffset()+SignatureSize)

	copy(buf[0:32], t.Source[:])
	copy(buf[32:64], t.Destination[:])
	binary.LittleEndian.PutUint64(buf[64:72], t.Amount)
	binary.LittleEndian.PutUint32(buf[72:76], t.Tick)
	binary.LittleEndian.PutUint16(buf[76:78], uint16(t.InputType))
	binary.LittleEndian.PutUint16(buf[78:80], uint16(len(t.Payload))) //nolint:gosec // bounded above
	copy(buf[HeaderSize:], t.Payload)

	return buf, nil
}

// Build encodes t and pairs it with its bytes.
func (t *Transaction) Build() (*Unsigned, error) {
	b, err := t.Encode()
	if err != nil {
		return nil, err
	}

	return &Unsigned{Tx: t, Bytes: b}, nil
}

// Decode reconstructs the fields of encoded transaction bytes. The signature
// region is optional so both signed and unsigned bytes can be decoded.
func Decode(b []byte) (*Transaction, error) {
	if len(b) < HeaderSize {
		return nil, ErrTruncated
	}

	size := int(binary.LittleEndian.Uint16(b[78:80]))
	end := HeaderSize + size
	if len(b) != end && len(b) != end+SignatureSize {
		return nil, errors.Wrapf(ErrTruncated, "expected %d or %d bytes, got %d", end, end+SignatureSize, len(b))
	}

	t := &Transaction{
		Amount:    binary.LittleEndian.Uint64(b[64:72]),
		Tick:      binary.LittleEndian.Uint32(b[72:76]),
		InputType: InputType(binary.LittleEndian.Uint16(b[76:78])),
	}
	copy(t.Source[:], b[0:32])
	copy(t.Destination[:], b[32:64])

	if size > 0 {
		t.Payload = make([]byte, size)
		copy(t.Payload, b[HeaderSize:end])
	}

	return t, nil
}

// SignatureOffset returns the start of the signature region in encoded bytes.
func SignatureOffset(b []byte) (int, error) {
	if len(b) < HeaderSize {
		return 0, ErrTruncated
	}

	offset := HeaderSize + int(binary.LittleEndian.Uint16(b[78:80]))
	if len(b) < offset+SignatureSize {
		return 0, errors.Wrap(ErrTruncated, "missing signature region")
	}

	return offset, nil
}

// UnsignedDigest is the digest that gets signed: K12 over everything before
// the signature region.
func UnsignedDigest(b []byte) ([identity.DigestSize]byte, error) {
	offset, err := SignatureOffset(b)
	if err != nil {
		return [identity.DigestSize]byte{}, err
	}

	return identity.Digest(b[:offset]), nil
}

// Verify checks the signature of signed bytes against their source identity.
func Verify(b []byte) (bool, error) {
	t, err := Decode(b)
	if err != nil {
		return false, err
	}

	digest, err := UnsignedDigest(b)
	if err != nil {
		return false, err
	}

	var sig [SignatureSize]byte
	copy(sig[:], b[len(b)-SignatureSize:])

	return keys.Verify(t.Source, digest, sig), nil
}
