package keyer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMorseUnits(t *testing.T) {
	assert.Equal(t, 1, MorseUnits('E'))
	assert.Equal(t, 3, MorseUnits('T'))
	assert.Equal(t, 3, MorseUnits('I'))
	assert.Equal(t, 3, MorseUnits('i'))
	assert.Equal(t, 19, MorseUnits('0'))
	assert.Equal(t, 1, MorseUnits(' '))
	assert.Equal(t, 1, MorseUnits('~'), "unknown is a gap")
}

func TestMorseUnitsString(t *testing.T) {
	assert.Equal(t, 0, MorseUnitsString(""))
	assert.Equal(t, 1, MorseUnitsString("E"))
	assert.Equal(t, 5, MorseUnitsString("EE"))
	assert.Equal(t, 9, MorseUnitsString("E E"))
	assert.Equal(t, 43, MorseUnitsString("PARIS"))
}

func TestMorseTimeline(t *testing.T) {
	var events, end = MorseTimeline("E", 20, 100, INPUT_KEY)

	assert.Equal(t, []KeyEvent{
		{AtMS: 100, Input: INPUT_KEY, Down: true},
		{AtMS: 160, Input: INPUT_KEY, Down: false},
	}, events)
	assert.Equal(t, 160, end)

	events, end = MorseTimeline("et", 20, 0, INPUT_DAH)

	assert.Equal(t, []KeyEvent{
		{AtMS: 0, Input: INPUT_DAH, Down: true},
		{AtMS: 60, Input: INPUT_DAH, Down: false},
		{AtMS: 240, Input: INPUT_DAH, Down: true},
		{AtMS: 420, Input: INPUT_DAH, Down: false},
	}, events)
	assert.Equal(t, 420, end)

	// Speed is clamped like the keyer's.
	_, end = MorseTimeline("E", 0, 0, INPUT_KEY)
	assert.Equal(t, 300, end)
}

func TestMorseTimelineProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var text = rapid.StringOfN(rapid.SampledFrom([]rune("ABCSOT0?/ e~")), 0, 30, -1).Draw(t, "text")
		var wpm = rapid.IntRange(MIN_SPEED_WPM, MAX_SPEED_WPM).Draw(t, "wpm")
		var start = rapid.IntRange(0, 10000).Draw(t, "start")

		var events, end = MorseTimeline(text, wpm, start, INPUT_KEY)

		var elements = 0
		for _, r := range text {
			var enc, _ = MorseLookup(r)
			elements += len(enc)
		}

		if len(events) != 2*elements {
			t.Fatalf("%d events for %d elements", len(events), elements)
		}

		var last = start
		for j, e := range events {
			if e.Down != (j%2 == 0) {
				t.Fatalf("event %d: %v out of order", j, e)
			}

			if e.AtMS < last {
				t.Fatalf("event %d: time goes backwards", j)
			}

			last = e.AtMS
		}

		var want = start + int(TIME_UNITS_TO_MS(MorseUnitsString(text), wpm)+0.5)
		if d := end - want; d < -1 || d > 1 {
			t.Fatalf("end %d, want %d", end, want)
		}
	})
}
