package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jshufro/storagepos/log"
)

func TestLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := log.NewWithWriter(&buf, "WARN")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Sync())

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestBadLevel(t *testing.T) {
	_, err := log.NewWithWriter(&bytes.Buffer{}, "loud")
	require.Error(t, err)
}
