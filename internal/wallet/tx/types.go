package tx

import (
	"encoding/base64"

	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/keys"
)

const (
	// HeaderSize covers source, destination, amount, tick, input type and input size.
	HeaderSize = 2*identity.Size + 8 + 4 + 2 + 2
	// SignatureSize is the trailing signature region.
	SignatureSize = keys.SignatureSize
	// MaxPayloadSize is bounded by the 16 bit input size field.
	MaxPayloadSize = 1<<16 - 1
)

// InputType discriminates how the destination interprets the payload.
type InputType uint16

const (
	InputTypeTransfer InputType = 0
)

// Transaction holds the fields of an unsigned transaction.
type Transaction struct {
	Source      identity.Identity
	Destination identity.Identity
	Amount      uint64
	Tick        uint32
	InputType   InputType
	Payload     []byte
}

// Unsigned is an encoded transaction whose signature region is still zero.
type Unsigned struct {
	Tx    *Transaction
	Bytes []byte
}

// Signed is an encoded transaction with its signature populated.
type Signed struct {
	bytes []byte
}

// NewSigned wraps signed bytes. The slice is copied.
func NewSigned(b []byte) (*Signed, error) {
	if _, err := Decode(b); err != nil {
		return nil, err
	}

	cp := make([]byte, len(b))
	copy(cp, b)
	return &Signed{bytes: cp}, nil
}

// Bytes returns a copy of the signed bytes.
func (s *Signed) Bytes() []byte {
	cp := make([]byte, len(s.bytes))
	copy(cp, s.bytes)
	return cp
}

// ID is the lowercase transaction identifier.
func (s *Signed) ID() string {
	return identity.TransactionID(s.bytes)
}

// Signature returns the trailing signature region.
func (s *Signed) Signature() [SignatureSize]byte {
	var sig [SignatureSize]byte
	copy(sig[:], s.bytes[len(s.bytes)-SignatureSize:])
	return sig
}

// Base64 is the encoding the ledger broadcast endpoint expects.
func (s *Signed) Base64() string {
	return base64.StdEncoding.EncodeToString(s.bytes)
}
