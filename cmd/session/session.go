package session

import (
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("session",
		newConnect(),
		newDisconnect(),
		newStatus(),
		newUnlock(),
	)
}

type status struct {
	Connected bool   `json:"connected"`
	Backend   string `json:"backend,omitempty"`
	Identity  string `json:"identity,omitempty"`
	Alias     string `json:"alias,omitempty"`
	Locked    bool   `json:"locked"`

	AccountIndex int `json:"accountIndex,omitempty"`
}
