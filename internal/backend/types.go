package backend

import "fmt"

// TransactionType tags a logged transaction.
type TransactionType string

const (
	TransactionTypeQubic TransactionType = "qubic"
	TransactionTypeQXMR  TransactionType = "qxmr"
	TransactionTypeQDOGE TransactionType = "qdoge"
)

// ConfirmRequest reports a broadcast transaction for bookkeeping.
type ConfirmRequest struct {
	WalletID string `json:"walletId"`
	TxID     string `json:"txId"`
}

type ConfirmResponse struct {
	Success bool `json:"success"`
}

type TradeInResponse struct {
	Success     bool   `json:"success"`
	QXMRAmount  uint64 `json:"qxmr_amount"`
	QDOGEAmount uint64 `json:"qdoge_amount"`
}

// TransactionLog is an admin transaction log entry.
type TransactionLog struct {
	WalletID string          `json:"wallet_id"`
	From     string          `json:"from_id"`
	To       string          `json:"to_id"`
	TxID     string          `json:"txId"`
	Type     TransactionType `json:"type"`
	Amount   uint64          `json:"amount"`
}

// RemoteConfig is the subset of the backend's public configuration the wallet uses.
type RemoteConfig struct {
	Rules struct {
		RegistrationFeeQU uint64 `json:"registration_fee_qu"`
	} `json:"rules"`
	Addresses struct {
		Registration string `json:"registration"`
		Burn         string `json:"burn"`
	} `json:"addresses"`
	TradeIn struct {
		QXContractID             string `json:"qx_contract_id"`
		QXMRIssuerID             string `json:"qxmr_issuer_id"`
		TradeInRatioQDOGEPerQXMR uint64 `json:"tradein_ratio_qdoge_per_qxmr"`
	} `json:"tradein"`
}

// Error is a non-2xx backend response.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Detail)
}

type errorBody struct {
	Detail string `json:"detail"`
}
