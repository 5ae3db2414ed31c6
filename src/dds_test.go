package keyer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDDSStep(t *testing.T) {
	assert.Equal(t, uint32(1<<26), ddsStep(750, 48000))
	assert.Equal(t, uint32(62634940), ddsStep(700, 48000), "rounded, not truncated")
	assert.Equal(t, uint32(89478485), ddsStep(1000, 48000))
	assert.Equal(t, uint32(0), ddsStep(0, 48000))
	assert.Equal(t, uint32(0), ddsStep(700, 0))
}

func TestSineTable(t *testing.T) {
	var table = SineTable()

	assert.Equal(t, int16(0), table[0])
	assert.Equal(t, int16(SINE_AMPLITUDE), table[256])
	assert.Equal(t, int16(0), table[512])
	assert.Equal(t, int16(-SINE_AMPLITUDE), table[768])
}

func TestDDSPeriod(t *testing.T) {
	var d DDS
	d.SetFrequency(750, 48000, false)

	var first = make([]int16, 64)
	for j := range first {
		first[j] = d.NextSample()
	}

	assert.Equal(t, uint32(0), d.Phase(), "64 samples of 750 Hz at 48 kHz is one cycle")
	assert.Equal(t, int16(0), first[0])
	assert.Equal(t, int16(SINE_AMPLITUDE), first[16])

	for j := range first {
		require.Equal(t, first[j], d.NextSample(), "sample %d", j)
	}
}

func TestDDSZeroFrequency(t *testing.T) {
	var d DDS
	d.SetFrequency(0, 48000, false)

	for range 10 {
		assert.Equal(t, int16(0), d.NextSample())
	}
}

func TestQuadratureIndex(t *testing.T) {
	assert.Equal(t, uint32(768), QuadratureIndex(0))
	assert.Equal(t, uint32(0), QuadratureIndex(256))
	assert.Equal(t, uint32(767), QuadratureIndex(1023))

	rapid.Check(t, func(t *rapid.T) {
		var k = rapid.Uint32Range(0, DDS_TABLE_SIZE-1).Draw(t, "k")
		var q = QuadratureIndex(k)

		if q >= DDS_TABLE_SIZE {
			t.Fatalf("index %d out of table", q)
		}

		if (q+DDS_TABLE_SIZE-k)%DDS_TABLE_SIZE != 3*DDS_TABLE_SIZE/4 {
			t.Fatalf("%d -> %d is not 3/4 cycle", k, q)
		}
	})
}

func TestNextIQ(t *testing.T) {
	var d DDS
	d.SetFrequency(750, 48000, false)

	var i, q = d.NextIQ()
	assert.Equal(t, int16(0), i)
	assert.Equal(t, int16(-SINE_AMPLITUDE), q)

	// Quarter cycle on.
	for range 15 {
		d.NextIQ()
	}

	i, q = d.NextIQ()
	assert.Equal(t, int16(SINE_AMPLITUDE), i)
	assert.Equal(t, int16(0), q)
}

func TestGenSingleToneShortestSlice(t *testing.T) {
	var d DDS
	d.SetFrequency(750, 48000, false)

	var i = make([]int16, 10)
	var q = make([]int16, 4)

	d.GenSingleTone(i, q)

	assert.Equal(t, uint32(4*(1<<26)), d.Phase())
	assert.Equal(t, make([]int16, 6), i[4:], "only 4 pairs generated")
}

func TestContinuousRetune(t *testing.T) {
	var d DDS
	d.SetFrequency(750, 48000, false)

	for range 10 {
		d.NextSample()
	}

	var phase = d.Phase()
	require.NotZero(t, phase)

	d.SetFrequency(1000, 48000, true)
	assert.Equal(t, phase, d.Phase())
	assert.Equal(t, ddsStep(1000, 48000), d.Step())

	d.SetFrequency(1000, 48000, false)
	assert.Equal(t, uint32(0), d.Phase())
}

func TestDDSReset(t *testing.T) {
	var d DDS
	d.SetFrequency(700, 48000, false)

	var first = d.NextSample()

	for range 37 {
		d.NextSample()
	}

	d.Reset()
	assert.Equal(t, uint32(0), d.Phase())
	assert.Equal(t, ddsStep(700, 48000), d.Step(), "frequency kept")
	assert.Equal(t, first, d.NextSample())
}

func TestGenTwoToneIsAverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var fa = rapid.Uint32Range(0, 3000).Draw(t, "fa")
		var fb = rapid.Uint32Range(0, 3000).Draw(t, "fb")
		var n = rapid.IntRange(1, 200).Draw(t, "n")

		var a, b, refA, refB DDS
		a.SetFrequency(fa, 48000, false)
		b.SetFrequency(fb, 48000, false)
		refA.SetFrequency(fa, 48000, false)
		refB.SetFrequency(fb, 48000, false)

		var i = make([]int16, n)
		var q = make([]int16, n)
		GenTwoTone(&a, &b, i, q)

		for j := range n {
			var ia, qa = refA.NextIQ()
			var ib, qb = refB.NextIQ()

			if i[j] != int16((int32(ia)+int32(ib))/2) || q[j] != int16((int32(qa)+int32(qb))/2) {
				t.Fatalf("sample %d: got (%d, %d)", j, i[j], q[j])
			}
		}
	})
}

func TestTwoToneGenerator(t *testing.T) {
	var g TwoToneGenerator
	g.Configure([2]uint32{750, 0}, 48000, false)

	var i = make([]int16, 32)
	var q = make([]int16, 32)
	g.Run(i, q)

	var ref DDS
	ref.SetFrequency(750, 48000, false)

	var ri = make([]int16, 32)
	var rq = make([]int16, 32)
	ref.GenSingleTone(ri, rq)

	assert.Equal(t, ri, i, "second tone at 0 Hz means single tone")
	assert.Equal(t, rq, q)

	g.Configure([2]uint32{750, 750}, 48000, false)
	g.Run(i, q)
	assert.Equal(t, ri, i, "two identical tones average to one")
}

func TestMixInto(t *testing.T) {
	assert.Equal(t, int16(1000), MixInto(1000, 2000, 0))
	assert.Equal(t, int16(2000), MixInto(1000, 2000, MAX_SCALING))
	assert.Equal(t, int16(1500), MixInto(1000, 2000, 128))
	assert.Equal(t, int16(-1500), MixInto(-1000, -2000, 128))
	assert.Equal(t, int16(0), MixInto(-32767, 32767, 128))

	// Out of range scaling is clamped.
	assert.Equal(t, int16(2000), MixInto(1000, 2000, 300))
	assert.Equal(t, int16(1000), MixInto(1000, 2000, -5))

	rapid.Check(t, func(t *rapid.T) {
		var s = rapid.Int16().Draw(t, "sample")
		var o = rapid.Int16().Draw(t, "osc")
		var scaling = rapid.IntRange(0, MAX_SCALING).Draw(t, "scaling")

		var got = int32(MixInto(s, o, scaling))
		var lo = min(int32(s), int32(o)) - 1
		var hi = max(int32(s), int32(o)) + 1

		if got < lo || got > hi {
			t.Fatalf("MixInto(%d, %d, %d) = %d, outside inputs", s, o, scaling, got)
		}
	})
}

func TestAddToneToPair(t *testing.T) {
	var d DDS
	d.SetFrequency(750, 48000, false)

	for range 16 {
		d.NextSample()
	}

	var left, right int16 = 100, 100
	d.AddToneToPair(&left, &right, MAX_SCALING)

	assert.Equal(t, int16(SINE_AMPLITUDE), left)
	assert.Equal(t, left, right)

	var mono int16 = 500
	d.AddSingleTone(&mono, 0)
	assert.Equal(t, int16(500), mono, "scaling 0 leaves the stream alone")
}
