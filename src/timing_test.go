package keyer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"
)

func TestCalcTiming20WPM(t *testing.T) {
	var tm = CalcTiming(20)

	assert.Equal(t, int32(66), tm.DitTicks)
	assert.Equal(t, int32(54), tm.PauseTicks)
	assert.Equal(t, int32(186), tm.DahTicks)
	assert.Equal(t, int32(360), tm.SpaceTicks)
}

func TestCalcTimingEnds(t *testing.T) {
	assert.Equal(t, Timing{DitTicks: 306, DahTicks: 906, PauseTicks: 294, SpaceTicks: 1800}, CalcTiming(4))
	assert.Equal(t, Timing{DitTicks: 26, DahTicks: 66, PauseTicks: 14, SpaceTicks: 120}, CalcTiming(60))

	// Zero would divide by zero; it is clamped first.
	assert.Equal(t, CalcTiming(MIN_SPEED_WPM), CalcTiming(0))
	assert.Equal(t, CalcTiming(MAX_SPEED_WPM), CalcTiming(1000))
}

func TestClampSpeed(t *testing.T) {
	assert.Equal(t, uint(MIN_SPEED_WPM), ClampSpeed(0))
	assert.Equal(t, uint(MIN_SPEED_WPM), ClampSpeed(3))
	assert.Equal(t, uint(25), ClampSpeed(25))
	assert.Equal(t, uint(MAX_SPEED_WPM), ClampSpeed(61))
}

func TestTimingProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var wpm = rapid.UintRange(MIN_SPEED_WPM, MAX_SPEED_WPM).Draw(t, "wpm")
		var tm = CalcTiming(wpm)

		if tm.PauseTicks <= 0 {
			t.Fatalf("pause %d at %d WPM", tm.PauseTicks, wpm)
		}

		if tm.DitTicks <= SMOOTH_STEPS {
			t.Fatalf("dit %d too short for the falling edge at %d WPM", tm.DitTicks, wpm)
		}

		// Dit plus pause is two units give or take rounding.
		var unit = DIT_SCALED_1WPM / int32(wpm) / 100
		if d := tm.DitTicks + tm.PauseTicks - 2*unit; d < -1 || d > 1 {
			t.Fatalf("dit %d + pause %d vs unit %d at %d WPM", tm.DitTicks, tm.PauseTicks, unit, wpm)
		}

		if tm.DahTicks <= tm.DitTicks || tm.SpaceTicks <= tm.DahTicks {
			t.Fatalf("element order wrong at %d WPM: %+v", wpm, tm)
		}
	})
}

func TestParseMode(t *testing.T) {
	var cases = map[string]Mode{
		"iambic-b": MODE_IAMBIC_B,
		"IambicA":  MODE_IAMBIC_A,
		"a":        MODE_IAMBIC_A,
		"ultimate": MODE_ULTIMATE,
		"STRAIGHT": MODE_STRAIGHT,
	}

	for in, want := range cases {
		var got, err = ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	var _, err = ParseMode("bug")
	require.ErrorIs(t, err, ErrBadMode)
}

func TestModeYAML(t *testing.T) {
	var cfg = Config{Mode: MODE_ULTIMATE, SpeedWPM: 22, PitchHz: 650}

	var out, err = yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "mode: ultimate")

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg, back)

	require.ErrorIs(t, yaml.Unmarshal([]byte("mode: sideswiper\n"), &back), ErrBadMode)

	_, err = Mode(7).MarshalText()
	require.ErrorIs(t, err, ErrBadMode)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestModeAutomatic(t *testing.T) {
	assert.True(t, MODE_IAMBIC_A.Automatic())
	assert.True(t, MODE_IAMBIC_B.Automatic())
	assert.True(t, MODE_ULTIMATE.Automatic())
	assert.False(t, MODE_STRAIGHT.Automatic())
	assert.False(t, Mode(-1).Valid())
}
