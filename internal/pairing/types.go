package pairing

import "time"

// MethodSignTransaction is the request method the paired wallet approves.
const MethodSignTransaction = "qubic_signTransaction"

// Status is the lifecycle state the relay reports for pairings and requests.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Pairing is the relay's view of a pairing.
type Pairing struct {
	Topic     string    `json:"topic"`
	URI       string    `json:"uri,omitempty"`
	Status    Status    `json:"status"`
	Identity  string    `json:"identity,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// SignTransactionParams carries the transaction fields the remote device shows for approval.
type SignTransactionParams struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    uint64  `json:"amount"`
	Tick      uint32  `json:"tick"`
	InputType uint16  `json:"inputType"`
	Payload   *string `json:"payload"`
}

// SignTransactionResult holds the complete signed transaction in base64.
type SignTransactionResult struct {
	SignedTransaction string `json:"signedTransaction"`
}

type proposeRequest struct {
	Methods []string `json:"methods"`
	Label   string   `json:"label,omitempty"`
}

type relayRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params"`
}

type relayResponse struct {
	ID      string                 `json:"id"`
	Status  Status                 `json:"status"`
	Result  *SignTransactionResult `json:"result,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// topicRecord is the locally persisted pairing.
type topicRecord struct {
	Topic    string `json:"topic"`
	Identity string `json:"identity,omitempty"`
}
