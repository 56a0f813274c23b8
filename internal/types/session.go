package types

// PostSessionPayload connects a session. Seed is used by local-secret,
// AccountIndex by extension-bridge. remote-pairing waits for the pending
// pairing created by POST /api/v1/session/pairing.
type PostSessionPayload struct {
	Backend      string `json:"backend"`
	Seed         string `json:"seed,omitempty"`
	Alias        string `json:"alias,omitempty"`
	Passphrase   string `json:"passphrase,omitempty"`
	AccountIndex *int   `json:"accountIndex,omitempty"`
}

type PostUnlockPayload struct {
	Passphrase string `json:"passphrase"`
}

type SessionResponse struct {
	Connected bool   `json:"connected"`
	Backend   string `json:"backend,omitempty"`
	Identity  string `json:"identity,omitempty"`
	Alias     string `json:"alias,omitempty"`
	Locked    bool   `json:"locked"`

	AccountIndex int `json:"accountIndex,omitempty"`
}

type PairingResponse struct {
	Topic string `json:"topic"`
	URI   string `json:"uri"`
}
