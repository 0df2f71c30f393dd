package swaplog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewReturnsUsableLogger(t *testing.T) {
	logger := New("TEST")
	require.NotNil(t, logger)

	// Should not panic when used before Init is called.
	logger.Info("hello from test")
}

func TestInitRotatesAndSetsLevels(t *testing.T) {
	logPath := t.TempDir() + "/swap.log"

	err := Init(logPath, "info")
	require.NoError(t, err)
}
