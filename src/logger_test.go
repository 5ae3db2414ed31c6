package keyer

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	var old = Logger()
	defer SetLogger(old)

	var buf bytes.Buffer
	SetLogger(log.New(&buf))
	SetLogger(nil)

	require.NoError(t, SetLogLevel("warn"))
	Logger().Info("quiet")
	Logger().Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")

	require.Error(t, SetLogLevel("chatty"))
	assert.Equal(t, log.WarnLevel, Logger().GetLevel())
}
