package keyer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestModemBits(t *testing.T) {
	var cases = map[string]int{
		"rts": unix.TIOCM_RTS,
		"RTS": unix.TIOCM_RTS,
		"dtr": unix.TIOCM_DTR,
		"dsr": unix.TIOCM_DSR,
		"cts": unix.TIOCM_CTS,
		"dcd": unix.TIOCM_CD,
		"cd":  unix.TIOCM_CD,
		"ri":  unix.TIOCM_RI,
	}

	for name, want := range cases {
		var got, err = modemBits(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	var _, err = modemBits("txd")
	require.ErrorContains(t, err, "txd")
}

func TestModemBitDirection(t *testing.T) {
	for _, name := range []string{"rts", "dtr"} {
		var _, err = outputModemBit(name)
		require.NoError(t, err, name)

		_, err = inputModemBit(name)
		require.ErrorContains(t, err, "not an input", name)
	}

	for _, name := range []string{"dsr", "cts", "dcd", "ri"} {
		var _, err = inputModemBit(name)
		require.NoError(t, err, name)

		_, err = outputModemBit(name)
		require.ErrorContains(t, err, "not an output", name)
	}
}

func TestNewSerialLine(t *testing.T) {
	var _, err = NewSerialLine(nil, "cts", true)
	require.ErrorContains(t, err, "not an output")

	_, err = NewSerialLine(nil, "bogus", true)
	require.Error(t, err)

	var l, lerr = NewSerialLine(nil, "DTR", true)
	require.NoError(t, lerr)
	assert.True(t, l.dtr)

	// No port, nothing to do.
	require.NoError(t, l.SetValue(1))
	require.NoError(t, l.Close())

	l, lerr = NewSerialLine(nil, "rts", false)
	require.NoError(t, lerr)
	assert.False(t, l.dtr)
	assert.False(t, l.owner)
}

func TestOpenSerialPortMissing(t *testing.T) {
	var _, err = OpenSerialPort(filepath.Join(t.TempDir(), "ttyUSB9"), 9600)
	require.ErrorContains(t, err, "could not open serial port")
}

func TestPollSerialKeyErrors(t *testing.T) {
	var ctx = context.Background()
	var set = func(bool) { t.Error("no key change expected") }

	require.Error(t, PollSerialKey(ctx, "/dev/null", "rts2", time.Millisecond, set))
	require.ErrorContains(t, PollSerialKey(ctx, "/dev/null", "rts", time.Millisecond, set), "not an input")
	require.ErrorContains(t, PollSerialKey(ctx, filepath.Join(t.TempDir(), "ttyS9"), "cts", time.Millisecond, set),
		"could not open serial port")

	// A plain file has no modem status lines.
	var path = filepath.Join(t.TempDir(), "notatty")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	require.ErrorContains(t, PollSerialKey(ctx, path, "cts", time.Millisecond, set), "reading serial cts")
}

func TestPollSerialKeyCancelled(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "notatty")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	var ctx, cancel = context.WithCancel(context.Background())
	cancel()

	require.NoError(t, PollSerialKey(ctx, path, "dsr", time.Hour, func(bool) {}))
}
