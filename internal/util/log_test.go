package util_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github/qdoge/go-wallet/internal/util"
)

func TestLogFromContextFallsBackToGlobal(t *testing.T) {
	assert.Equal(t, &log.Logger, util.LogFromContext(context.Background()))
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	ctx = util.WithComponent(ctx, "session")
	util.LogFromContext(ctx).Info().Msg("connected")

	assert.Contains(t, buf.String(), `"component":"session"`)
	assert.Contains(t, buf.String(), `"message":"connected"`)
}
