package types

type PostTransferPayload struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type PostAssetTransferPayload struct {
	To    string `json:"to"`
	Asset string `json:"asset"`
	Units uint64 `json:"units"`
}

type PostFundPayload struct {
	Amount uint64 `json:"amount"`
}

type PostTradeInPayload struct {
	Units uint64 `json:"units"`
}

type BalanceResponse struct {
	Identity string `json:"identity"`
	Balance  uint64 `json:"balance"`
}

type OwnedAssetResponse struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Units  uint64 `json:"units"`
}

type AssetsResponse struct {
	Identity string               `json:"identity"`
	Owned    []OwnedAssetResponse `json:"owned"`
	Known    []KnownAssetResponse `json:"known"`
}

type KnownAssetResponse struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
}

type TickResponse struct {
	Tick uint32 `json:"tick"`
}
