package session

import (
	"github/qdoge/go-wallet/internal/types"
	"github/qdoge/go-wallet/internal/wallet/session"
)

func sessionResponse(sess *session.Session) *types.SessionResponse {
	if sess == nil {
		return &types.SessionResponse{Connected: false}
	}

	return &types.SessionResponse{
		Connected: true,
		Backend:   sess.Backend.String(),
		Identity:  sess.Identity.String(),
		Alias:     sess.Alias,
		Locked:    sess.Locked(),

		AccountIndex: sess.AccountIndex,
	}
}
