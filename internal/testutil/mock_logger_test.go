package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
	assert.Equal(t, 1, logger.CountLevel("error"))
}

func TestMockLogger_ChildrenShareRecord(t *testing.T) {
	logger := testutil.NewMockLogger()
	child := logger.Named("scan").Named("service").With(logging.String("owner_id", "u1"))

	child.Warn("publish failed", logging.Int("attempt", 2))

	msg, ok := logger.Find("warn", "publish failed")
	require.True(t, ok)
	assert.Equal(t, "scan.service", msg.Logger)
	v, ok := msg.Field("owner_id")
	require.True(t, ok)
	assert.Equal(t, "u1", v)
	v, ok = msg.Field("attempt")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = msg.Field("missing")
	assert.False(t, ok)
}

//Personal.AI order the ending
