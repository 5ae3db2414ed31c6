package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Direct digital synthesis of the CW tone.
 *
 * Description:	A 32 bit phase accumulator advances by "step" for every
 *		sample.  The upper DDS_TABLE_BITS select an entry of the
 *		sine table.  Wraparound of the accumulator is the
 *		intended modulo 2^32 arithmetic.
 *
 *		The cosine companion for I/Q output comes from the same
 *		table, 3/4 of a cycle further on.
 *
 *---------------------------------------------------------------*/

// DDS is one table driven oscillator.  The zero value is a silent
// oscillator with phase 0.
type DDS struct {
	ptr  uint32 // Phase accumulator.
	step uint32 // Phase advance per sample.
}

/*-------------------------------------------------------------------
 *
 * Name:        SetFrequency
 *
 * Purpose:     Set oscillator frequency.
 *
 * Inputs:	freq		- Tone frequency in Hz.  0 is allowed and
 *				  gives a constant output.
 *
 *		sampleRate	- Samples per second.
 *
 *		continuous	- Keep the current phase so a tone that is
 *				  already running changes frequency without
 *				  a glitch.  When false the phase restarts
 *				  from 0.
 *
 *--------------------------------------------------------------------*/

func (d *DDS) SetFrequency(freq uint32, sampleRate uint32, continuous bool) {
	d.step = ddsStep(freq, sampleRate)

	if !continuous {
		d.Reset()
	}
}

// ddsStep is round(freq * 2^32 / sampleRate).
func ddsStep(freq uint32, sampleRate uint32) uint32 {
	if sampleRate == 0 {
		return 0
	}

	var shifted = (uint64(freq) * DDS_TABLE_SIZE) << DDS_PTR_SHIFT

	return uint32((shifted + uint64(sampleRate)/2) / uint64(sampleRate))
}

func (d *DDS) Step() uint32 {
	return d.step
}

func (d *DDS) Phase() uint32 {
	return d.ptr
}

// Reset restarts the oscillator at phase 0 without changing frequency.
func (d *DDS) Reset() {
	d.ptr = 0
}

// nextIndex returns the table index for the current phase then advances.
func (d *DDS) nextIndex() uint32 {
	var k = d.ptr >> DDS_PTR_SHIFT

	d.ptr += d.step

	return k
}

// QuadratureIndex gives the index 3/4 cycle after k, i.e. sin -> cos.
func QuadratureIndex(k uint32) uint32 {
	return (k + 3*DDS_TABLE_SIZE/4) % DDS_TABLE_SIZE
}

// NextSample returns the next sine sample.
func (d *DDS) NextSample() int16 {
	return sineTable[d.nextIndex()]
}

// NextIQ returns the next in-phase (sine) and quadrature (cosine) pair.
func (d *DDS) NextIQ() (int16, int16) {
	var k = d.nextIndex()

	return sineTable[k], sineTable[QuadratureIndex(k)]
}

// GenSingleTone fills i and q with consecutive I/Q pairs.
// The shorter of the two slices limits the count.
func (d *DDS) GenSingleTone(i []int16, q []int16) {
	var n = min(len(i), len(q))

	for j := range n {
		i[j], q[j] = d.NextIQ()
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        GenTwoTone
 *
 * Purpose:     Generate the sum of two tones as an I/Q stream.
 *
 * Description:	Each output is the average, not the sum, of the two
 *		oscillators so the result stays within +-32767.
 *
 *--------------------------------------------------------------------*/

func GenTwoTone(a *DDS, b *DDS, i []int16, q []int16) {
	var n = min(len(i), len(q))

	for j := range n {
		var ka = a.nextIndex()
		var kb = b.nextIndex()

		i[j] = int16((int32(sineTable[ka]) + int32(sineTable[kb])) / 2)
		q[j] = int16((int32(sineTable[QuadratureIndex(ka)]) + int32(sineTable[QuadratureIndex(kb)])) / 2)
	}
}

const MAX_SCALING = 256

/*-------------------------------------------------------------------
 *
 * Name:        MixInto
 *
 * Purpose:     Overlay an oscillator sample on an existing sample.
 *
 * Inputs:	sample		- What is already in the audio stream.
 *		oscSample	- Oscillator output.
 *		scaling		- 0 keeps the stream, 256 replaces it.
 *
 * Returns:	sample*(256-scaling)/256 + oscSample*scaling/256
 *
 *--------------------------------------------------------------------*/

func MixInto(sample int16, oscSample int16, scaling int) int16 {
	scaling = max(0, min(MAX_SCALING, scaling))

	var osc = int32(oscSample) * int32(scaling) / MAX_SCALING
	var buf = int32(sample) * int32(MAX_SCALING-scaling) / MAX_SCALING

	return int16(buf + osc)
}

// AddSingleTone overlays the next oscillator sample on one buffer slot.
func (d *DDS) AddSingleTone(buf *int16, scaling int) {
	*buf = MixInto(*buf, d.NextSample(), scaling)
}

// AddToneToPair overlays the same oscillator sample on two slots,
// typically the left and right channel of a monitor stream.
func (d *DDS) AddToneToPair(buf0 *int16, buf1 *int16, scaling int) {
	var s = d.NextSample()

	*buf0 = MixInto(*buf0, s, scaling)
	*buf1 = MixInto(*buf1, s, scaling)
}

// TwoToneGenerator drives a pair of oscillators, e.g. for a two tone
// transmitter linearity test.
type TwoToneGenerator struct {
	dds [2]DDS
}

func (g *TwoToneGenerator) Configure(freq [2]uint32, sampleRate uint32, continuous bool) {
	g.dds[0].SetFrequency(freq[0], sampleRate, continuous)
	g.dds[1].SetFrequency(freq[1], sampleRate, continuous)
}

// Run fills i and q.  A second oscillator at 0 Hz means single tone.
func (g *TwoToneGenerator) Run(i []int16, q []int16) {
	if g.dds[1].step > 0 {
		GenTwoTone(&g.dds[0], &g.dds[1], i, q)
	} else {
		g.dds[0].GenSingleTone(i, q)
	}
}
