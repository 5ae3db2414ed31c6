package keyer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingsEmpty(t *testing.T) {
	var s, err = ParseSettings(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, MODE_IAMBIC_B, s.Keyer.Mode)
	assert.Equal(t, uint(14), s.Keyer.SpeedWPM)
	assert.Equal(t, uint32(700), s.Keyer.PitchHz)
	assert.Equal(t, PTT_METHOD_NONE, s.PTT.Method)
	assert.False(t, s.Paddles.Enabled())
}

func TestParseSettingsExample(t *testing.T) {
	var doc = `
keyer:
  mode: iambic-a
  speed_wpm: 22
  pitch_hz: 650
audio:
  sample_rate: 96000
  block_size: 96
paddles:
  chip: gpiochip1
  dit: 17
  dah: 27
ptt:
  method: Serial
  port: /dev/ttyUSB0
  line: rts
  line2: dtr
  key_line: cts
  tick_interval: 5ms
log_level: debug
`

	var s, err = ParseSettings([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, Config{Mode: MODE_IAMBIC_A, SpeedWPM: 22, PitchHz: 650}, s.Keyer)
	assert.Equal(t, uint32(96000), s.Audio.SampleRate)
	assert.Equal(t, 96, s.Audio.BlockSize)
	assert.Equal(t, 2, s.Audio.Channels, "left out, so default")
	assert.Equal(t, "gpiochip1", s.Paddles.Chip)
	assert.Equal(t, 17, s.Paddles.Dit)
	assert.Equal(t, -1, s.Paddles.Key)
	assert.True(t, s.Paddles.Enabled())
	assert.Equal(t, PTT_METHOD_SERIAL, s.PTT.Method)
	assert.Equal(t, "dtr", s.PTT.Line2)
	assert.Equal(t, 5*time.Millisecond, s.PTT.TickInterval)
	assert.Equal(t, int64(DEFAULT_KEY_TIMEOUT), s.PTT.Timeout)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestParseSettingsClampsSpeed(t *testing.T) {
	var s, err = ParseSettings([]byte("keyer:\n  speed_wpm: 100\n"))
	require.NoError(t, err)

	assert.Equal(t, uint(MAX_SPEED_WPM), s.Keyer.SpeedWPM)
}

func TestParseSettingsErrors(t *testing.T) {
	var cases = map[string]string{
		"unknown key":         "keyer:\n  weight: 50\n",
		"bad mode":            "keyer:\n  mode: bug\n",
		"bad channels":        "audio:\n  channels: 4\n",
		"bad method":          "ptt:\n  method: vox\n",
		"serial no port":      "ptt:\n  method: serial\n",
		"serial bad line":     "ptt:\n  method: serial\n  port: /dev/ttyS0\n  line: txd\n",
		"serial input as ptt": "ptt:\n  method: serial\n  port: /dev/ttyS0\n  line: cts\n",
		"serial bad line2":    "ptt:\n  method: serial\n  port: /dev/ttyS0\n  line2: dcd\n",
		"rts as key line":     "ptt:\n  port: /dev/ttyS0\n  key_line: rts\n",
		"gpio no offset":      "ptt:\n  method: gpio\n",
		"cm108 bad gpio":      "ptt:\n  method: cm108\n  gpio: 9\n",
		"key line no port":    "ptt:\n  key_line: cts\n",
		"negative timeout":    "ptt:\n  timeout_ticks: -1\n",
		"not a mapping":       "- 1\n- 2\n",
		"bad tick interval":   "ptt:\n  tick_interval: soon\n",
		"bad sample rate":     "audio:\n  sample_rate: 0\n",
		"volume out of range": "audio:\n  volume: 300\n",
	}

	for name, doc := range cases {
		var _, err = ParseSettings([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestSettingsMarshal(t *testing.T) {
	var s = DefaultSettings()
	s.Keyer.Mode = MODE_ULTIMATE
	s.PTT.Method = PTT_METHOD_CM108
	s.PTT.Device = "/dev/hidraw1"

	var out, err = s.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), "mode: ultimate")
	assert.Contains(t, string(out), "tick_interval: 10ms")

	var back, perr = ParseSettings(out)
	require.NoError(t, perr)
	assert.Equal(t, s, back)
}

func TestLoadSettings(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "cwkeyer.yaml")

	require.NoError(t, os.WriteFile(path, []byte("keyer:\n  mode: straight\n"), 0o600))

	var s, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, MODE_STRAIGHT, s.Keyer.Mode)

	_, err = LoadSettings(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("keyer: [\n"), 0o600))
	_, err = LoadSettings(path)
	require.ErrorContains(t, err, path)
}
