package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/wallet/tx"
)

// Client is the ledger surface the wallet consumes.
type Client interface {
	CurrentTick(ctx context.Context) (uint32, error)
	Balance(ctx context.Context, id identity.Identity) (uint64, error)
	OwnedAssets(ctx context.Context, id identity.Identity) ([]OwnedAsset, error)
	Broadcast(ctx context.Context, signed *tx.Signed) (*BroadcastResult, error)
	FindTransfer(ctx context.Context, id identity.Identity, txID string, startTick uint32, endTick uint32) (*Transfer, error)
}

// OwnedAsset is a holding of an issued asset.
type OwnedAsset struct {
	Name   string `json:"asset"`
	Issuer string `json:"issuer"`
	Units  uint64 `json:"amount"`
}

type BroadcastResult struct {
	TransactionID    string `json:"transactionId"`
	PeersBroadcasted int    `json:"peersBroadcasted"`
}

// Transfer is a transaction as recorded in an identity's transfer history.
type Transfer struct {
	ID          string `json:"txId"`
	Source      string `json:"sourceId"`
	Destination string `json:"destId"`
	Amount      uint64 `json:"amount"`
	Tick        uint32 `json:"tickNumber"`
	InputType   uint16 `json:"inputType"`
	InputSize   uint16 `json:"inputSize"`
	InputHex    string `json:"inputHex"`
	MoneyFlew   bool   `json:"moneyFlew"`
}

// number decodes JSON numbers that some nodes send as strings.
type number uint64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}

	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid number %s", b)
	}

	*n = number(v)
	return nil
}

type tickInfoResponse struct {
	TickInfo *struct {
		Tick        number `json:"tick"`
		Epoch       number `json:"epoch"`
		InitialTick number `json:"initialTick"`
	} `json:"tickInfo"`
}

type balanceResponse struct {
	Balance *struct {
		ID      string `json:"id"`
		Balance number `json:"balance"`
	} `json:"balance"`
}

type ownedAssetEntry struct {
	Data struct {
		NumberOfUnits number `json:"numberOfUnits"`
		IssuedAsset   struct {
			Name           string `json:"name"`
			IssuerIdentity string `json:"issuerIdentity"`
		} `json:"issuedAsset"`
	} `json:"data"`
}

type ownedAssetsResponse struct {
	OwnedAssets []ownedAssetEntry `json:"ownedAssets"`
	Data        *struct {
		OwnedAssets []ownedAssetEntry `json:"ownedAssets"`
	} `json:"data"`
}

type broadcastRequest struct {
	EncodedTransaction string `json:"encodedTransaction"`
}

type broadcastResponse struct {
	PeersBroadcasted   int    `json:"peersBroadcasted"`
	EncodedTransaction string `json:"encodedTransaction"`
	TransactionID      string `json:"transactionId"`
}

type transferEntry struct {
	Transaction struct {
		TxID       string `json:"txId"`
		SourceID   string `json:"sourceId"`
		DestID     string `json:"destId"`
		Amount     number `json:"amount"`
		TickNumber number `json:"tickNumber"`
		InputType  number `json:"inputType"`
		InputSize  number `json:"inputSize"`
		InputHex   string `json:"inputHex"`
	} `json:"transaction"`
	MoneyFlew bool `json:"moneyFlew"`
}

type transferGroup struct {
	TickNumber   number          `json:"tickNumber"`
	Transactions []transferEntry `json:"transactions"`
}

type transfersResponse struct {
	Transactions []transferGroup `json:"transactions"`
	Data         *struct {
		Transactions []transferGroup `json:"transactions"`
	} `json:"data"`
}

func (r *transfersResponse) groups() []transferGroup {
	if len(r.Transactions) == 0 && r.Data != nil {
		return r.Data.Transactions
	}
	return r.Transactions
}

var _ json.Unmarshaler = (*number)(nil)
