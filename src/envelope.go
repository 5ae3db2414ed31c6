package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Remove key clicks at the start and end of a tone.
 *
 * Description:	Each call scales the sample by the current window
 *		value.  After SmoothLen calls the window index moves one
 *		step up (rising edge) or down (falling edge), clamped to
 *		the ends of the table.
 *
 *		With a 48 kHz I/Q stream and SmoothLen 2 a full ramp
 *		takes 256 samples, about 5.3 ms.
 *
 *---------------------------------------------------------------*/

const DEFAULT_SMOOTH_LEN = 2

const ENVELOPE_TOP = SMOOTH_TABLE_SIZE - 1

type Envelope struct {
	index   int // Position in smoothTable, 0 .. ENVELOPE_TOP.
	subStep int // Calls since the index last moved.

	// Calls per table step.  Zero means DEFAULT_SMOOTH_LEN.
	SmoothLen int
}

func (e *Envelope) smoothLen() int {
	if e.SmoothLen <= 0 {
		return DEFAULT_SMOOTH_LEN
	}

	return e.SmoothLen
}

// Apply scales an I/Q pair and advances the ramp by one call.
func (e *Envelope) Apply(i *int16, q *int16, rising bool) {
	var w = smoothTable[e.index]

	*i = int16(float32(*i) * w)
	*q = int16(float32(*q) * w)

	e.advance(rising)
}

// ApplyMono scales a single sample and advances the ramp by one call.
func (e *Envelope) ApplyMono(s *int16, rising bool) {
	*s = int16(float32(*s) * smoothTable[e.index])

	e.advance(rising)
}

func (e *Envelope) advance(rising bool) {
	e.subStep++

	if e.subStep < e.smoothLen() {
		return
	}

	e.subStep = 0

	if rising {
		if e.index < ENVELOPE_TOP {
			e.index++
		}
	} else if e.index > 0 {
		e.index--
	}
}

func (e *Envelope) Index() int {
	return e.index
}

// FullyOn means the caller should treat the tone as steady.
func (e *Envelope) FullyOn() bool {
	return e.index >= ENVELOPE_TOP
}

// FullyOff means the caller should treat the tone as silence.
func (e *Envelope) FullyOff() bool {
	return e.index == 0
}

// Reset starts a new key down interval.
func (e *Envelope) Reset() {
	e.index = 0
	e.subStep = 0
}
