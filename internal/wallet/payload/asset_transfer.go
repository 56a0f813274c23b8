// Package payload builds the input bytes carried by contract transactions.
package payload

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/tx"
)

const (
	// AssetNameSize is the fixed width of an asset name.
	AssetNameSize = 8
	// AssetTransferSize is the encoded size of an AssetTransfer.
	AssetTransferSize = 2*identity.Size + AssetNameSize + 8

	// InputTypeAssetTransfer is the QX procedure that moves share ownership and possession.
	InputTypeAssetTransfer tx.InputType = 2
)

var (
	ErrInvalidAssetName = errors.New("asset name must be 1 to 8 ASCII letters or digits")
	ErrInvalidSize      = errors.New("asset transfer payload has the wrong size")
)

// AssetTransfer moves units of an issued asset to a new owner.
type AssetTransfer struct {
	Issuer    identity.Identity
	NewOwner  identity.Identity
	AssetName string
	Units     uint64
}

// NormalizeAssetName upper-cases name and checks it fits the fixed width.
func NormalizeAssetName(name string) (string, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || len(name) > AssetNameSize {
		return "", ErrInvalidAssetName
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", ErrInvalidAssetName
		}
	}

	return name, nil
}

// AssetNameValue returns the name as the little-endian integer the contract stores.
func AssetNameValue(name string) (uint64, error) {
	field, err := assetNameField(name)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(field[:]), nil
}

func assetNameField(name string) ([AssetNameSize]byte, error) {
	var field [AssetNameSize]byte

	normalized, err := NormalizeAssetName(name)
	if err != nil {
		return field, err
	}

	copy(field[:], normalized)
	return field, nil
}

// Encode returns the AssetTransferSize bytes of the payload.
func (a *AssetTransfer) Encode() ([]byte, error) {
	name, err := assetNameField(a.AssetName)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, AssetTransferSize)
	copy(buf[0:32], a.Issuer[:])
	copy(buf[32:64], a.NewOwner[:])
	copy(buf[64:72], name[:])
	binary.LittleEndian.PutUint64(buf[72:80], a.Units)

	return buf, nil
}

// DecodeAssetTransfer parses an encoded asset transfer payload.
func DecodeAssetTransfer(b []byte) (*AssetTransfer, error) {
	if len(b) != AssetTransferSize {
		return nil, errors.Wrapf(ErrInvalidSize, "got %d bytes", len(b))
	}

	a := &AssetTransfer{
		AssetName: string(bytes.TrimRight(b[64:72], "\x00")),
		Units:     binary.LittleEndian.Uint64(b[72:80]),
	}
	copy(a.Issuer[:], b[0:32])
	copy(a.NewOwner[:], b[32:64])

	return a, nil
}
