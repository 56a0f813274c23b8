package bridge

import "encoding/json"

const (
	// InvokeSnapMethod is the JSON-RPC method the bridge exposes for snap calls.
	InvokeSnapMethod = "wallet_invokeSnap"

	MethodGetPublicID       = "getPublicId"
	MethodSignTransaction   = "signTransaction"
	userRejectedRequestCode = 4001
)

// InvokeSnapParams is the single positional parameter of wallet_invokeSnap.
type InvokeSnapParams struct {
	SnapID  string      `json:"snapId"`
	Request SnapRequest `json:"request"`
}

// SnapRequest names a snap method and carries its parameters.
type SnapRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// GetPublicIDParams asks the snap for the identity at an account index.
type GetPublicIDParams struct {
	AccountIdx int  `json:"accountIdx"`
	Confirm    bool `json:"confirm"`
}

// SignTransactionParams carries the unsigned bytes up to the signature offset.
type SignTransactionParams struct {
	Base64Tx   string `json:"base64Tx"`
	AccountIdx int    `json:"accountIdx"`
	Offset     int    `json:"offset"`
}

// SignTransactionResult holds the signature produced by the snap.
type SignTransactionResult struct {
	SignedTx string `json:"signedTx"`
}
