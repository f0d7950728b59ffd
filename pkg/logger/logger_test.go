package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		logger, err := New(Config{})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New(Config{Level: "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	ctx := WithJobID(context.Background(), "job-1")
	ctx = context.WithValue(ctx, SObjectKey, "Account")

	FromContext(ctx, zap.New(core)).Info("page fetched")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "job-1", fields["job_id"])
	assert.Equal(t, "Account", fields["sobject"])
	assert.NotContains(t, fields, "connector")
}

func TestSetAndGet(t *testing.T) {
	previous := Get()
	t.Cleanup(func() { Set(previous) })

	nop := zap.NewNop()
	Set(nop)
	assert.Same(t, nop, Get())
}
