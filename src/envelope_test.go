package keyer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSmoothTableShape(t *testing.T) {
	assert.InDelta(t, 0.0, smoothTable[0], 1e-9)
	assert.InDelta(t, 1.0, smoothTable[ENVELOPE_TOP], 1e-3)

	for j := 1; j < SMOOTH_TABLE_SIZE; j++ {
		require.GreaterOrEqual(t, smoothTable[j], smoothTable[j-1], "entry %d", j)
	}
}

func TestEnvelopeRiseAndFall(t *testing.T) {
	var e Envelope

	var last int16

	for n := 1; n <= 2*ENVELOPE_TOP; n++ {
		var i, q int16 = 10000, -10000
		e.Apply(&i, &q, true)

		require.GreaterOrEqual(t, i, last, "call %d", n)
		require.Equal(t, -i, q)

		last = i
	}

	assert.True(t, e.FullyOn())
	assert.Equal(t, ENVELOPE_TOP, e.Index())

	// Stays at the top.
	for range 10 {
		var s int16 = 1000
		e.ApplyMono(&s, true)
	}
	assert.Equal(t, ENVELOPE_TOP, e.Index())

	last = 10000

	for n := 1; n <= 2*ENVELOPE_TOP; n++ {
		var s int16 = 10000
		e.ApplyMono(&s, false)

		require.LessOrEqual(t, s, last, "call %d", n)
		last = s
	}

	assert.True(t, e.FullyOff())

	var s int16 = 1000
	e.ApplyMono(&s, false)
	assert.Equal(t, 0, e.Index(), "clamped at the bottom")
	assert.Equal(t, int16(0), s)
}

func TestEnvelopeSmoothLen(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var smoothLen = rapid.IntRange(1, 8).Draw(t, "smoothLen")
		var calls = rapid.IntRange(0, 1200).Draw(t, "calls")

		var e = Envelope{SmoothLen: smoothLen}

		for range calls {
			var s int16 = 1
			e.ApplyMono(&s, true)
		}

		var want = min(ENVELOPE_TOP, calls/smoothLen)
		if e.Index() != want {
			t.Fatalf("after %d calls with SmoothLen %d index is %d, want %d", calls, smoothLen, e.Index(), want)
		}
	})
}

func TestEnvelopeDefaultSmoothLen(t *testing.T) {
	var e Envelope

	for range DEFAULT_SMOOTH_LEN*10 - 1 {
		var s int16 = 1
		e.ApplyMono(&s, true)
	}

	assert.Equal(t, 9, e.Index())

	e.Reset()
	assert.Equal(t, 0, e.Index())
	assert.True(t, e.FullyOff())
}
