package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Iambic keyer.
 *
 * Description:	Converts paddle contacts into timed dits and dahs.
 *
 *		Iambic A	Squeezing both paddles alternates dit and dah.
 *				Paddles are only looked at between elements.
 *
 *		Iambic B	Same, but the paddles are also sampled while
 *				an element is being sent, so a press of the
 *				opposite paddle during an element is
 *				remembered and sent next.
 *
 *		Ultimate	When both are held, the paddle that was pressed
 *				last wins and repeats.
 *
 *		The state machine is run once per audio block.  Several
 *		states can be passed through in one block; that loop is
 *		capped so a bad configuration can't hang the audio path.
 *
 *		Based on the K1EL keyer by way of the mcHF / UHSDR CW
 *		generator.
 *
 *---------------------------------------------------------------*/

import "fmt"

type State int

const (
	STATE_IDLE State = iota
	STATE_WAIT
	STATE_DIT_CHECK
	STATE_DAH_CHECK
	STATE_KEY_DOWN
	STATE_KEY_UP
	STATE_PAUSE
)

var stateNames = [...]string{
	STATE_IDLE:      "idle",
	STATE_WAIT:      "wait",
	STATE_DIT_CHECK: "dit-check",
	STATE_DAH_CHECK: "dah-check",
	STATE_KEY_DOWN:  "key-down",
	STATE_KEY_UP:    "key-up",
	STATE_PAUSE:     "pause",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

type Paddle int

const (
	PADDLE_DIT Paddle = iota
	PADDLE_DAH
)

func (p Paddle) String() string {
	if p == PADDLE_DAH {
		return "dah"
	}

	return "dit"
}

// Passes through the state machine allowed in one block.
// The longest legitimate chain is pause -> dah check -> idle -> wait ->
// dit check -> key down, well under this.
const MAX_TRANSITIONS = 16

// A code longer than this is not treated as a complete character.
// The value comes from the keyer this is based on; the reason for it
// is not documented there.
const CHAR_CODE_LIMIT = 50000

type Latches struct {
	DitLatched     bool // Dit paddle was pressed since last cleared.
	DahLatched     bool // Dah paddle was pressed since last cleared.
	DitProcessed   bool // A dit was just sent; try a dah next.
	EndOfCharacter bool // Start the character space timer when idle.
}

// RuntimeState is a copy of the keyer state, for tests and debugging.
type RuntimeState struct {
	State      State
	Latches    Latches
	KeyTimer   int32
	BreakTimer int32
	SpaceTimer int32
	CharCode   uint32
	Sending    bool
	Priority   Paddle
}

type Iambic struct {
	state      State
	latch      Latches
	keyTimer   int32 // Element or pause ticks remaining.
	breakTimer int32 // Ticks before asking for receive.
	spaceTimer int32 // Character space ticks remaining.
	charCode   uint32
	sending    bool
	priority   Paddle // Ultimate: last paddle pressed on its own.
}

func (s *Iambic) Runtime() RuntimeState {
	return RuntimeState{
		State:      s.state,
		Latches:    s.latch,
		KeyTimer:   s.keyTimer,
		BreakTimer: s.breakTimer,
		SpaceTimer: s.spaceTimer,
		CharCode:   s.charCode,
		Sending:    s.sending,
		Priority:   s.priority,
	}
}

// Reset returns to idle with everything cleared.  A single break tick is
// armed so the radio is handed back to receive on the next idle block.
func (s *Iambic) Reset() {
	*s = Iambic{
		state:      STATE_IDLE,
		breakTimer: 1,
		priority:   PADDLE_DIT,
	}
}

func (s *Iambic) armBreak() {
	s.breakTimer = 1
}

// cancelBreak drops a pending receive request.  Direct keying makes its
// own when its falling edge ends.
func (s *Iambic) cancelBreak() {
	s.breakTimer = 0
}

// latchPaddles remembers any paddle that is down.  Latches are sticky
// until the state machine clears them.
func (s *Iambic) latchPaddles(p PaddleState) {
	if p.Dah {
		s.latch.DahLatched = true
	}

	if p.Dit {
		s.latch.DitLatched = true
	}
}

// updatePriority: a paddle pressed alone takes priority, both together
// leave it as it was.
func (s *Iambic) updatePriority(p PaddleState) {
	if p.Dah && !p.Dit {
		s.priority = PADDLE_DAH
	}

	if p.Dit && !p.Dah {
		s.priority = PADDLE_DIT
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        Process
 *
 * Purpose:     Run the keyer for one audio block.
 *
 * Inputs:	buf	- Audio block, modified in place while the key is down.
 *
 *		p	- Paddles, read once for this block.
 *
 *		mode	- One of the automatic modes.
 *
 *		t	- Element timing for the current speed.
 *
 *		tone	- Oscillator and envelope.
 *
 *		rx	- Told when the break timer runs out.
 *
 *--------------------------------------------------------------------*/

func (s *Iambic) Process(buf []int16, p PaddleState, mode Mode, t Timing, tone *Sidetone, rx KeyReleaser) {
	for range MAX_TRANSITIONS {
		if !s.step(buf, p, mode, t, tone, rx) {
			return
		}
	}
}

// step handles the current state and reports whether another state
// should be handled in the same block.
func (s *Iambic) step(buf []int16, p PaddleState, mode Mode, t Timing, tone *Sidetone, rx KeyReleaser) bool {
	switch s.state {

	case STATE_IDLE:
		s.latchPaddles(p)

		if s.latch.DitLatched || s.latch.DahLatched {
			s.state = STATE_WAIT
			return true
		}

		if s.latch.EndOfCharacter {
			s.latch.EndOfCharacter = false
			s.spaceTimer = t.SpaceTicks
		}

		if s.spaceTimer > 0 {
			s.spaceTimer--

			if s.spaceTimer == 0 {
				s.sending = false
			}
		}

		if s.breakTimer > 0 && !s.sending {
			s.breakTimer--

			if s.breakTimer == 0 && rx != nil {
				rx.KeyReleased()
			}
		}

		return false

	case STATE_WAIT:
		// One pass for the paddle reading to settle.
		s.state = STATE_DIT_CHECK
		return true

	case STATE_DIT_CHECK:
		if s.latch.DitLatched {
			s.latch.DitProcessed = true
			s.state = STATE_KEY_DOWN
			s.keyTimer = t.DitTicks
			s.charCode = s.charCode*4 + 2
		} else {
			s.state = STATE_DAH_CHECK
		}

		return true

	case STATE_DAH_CHECK:
		if s.latch.DahLatched {
			s.state = STATE_KEY_DOWN
			s.keyTimer = t.DahTicks
			s.charCode = s.charCode*4 + 3
		} else {
			s.armBreak()
			s.state = STATE_IDLE
		}

		return true

	case STATE_KEY_DOWN:
		tone.Envelope.Reset()

		s.keyTone(buf, t, tone)

		if s.keyTimer > 0 {
			s.keyTimer--
		}

		// Cleared here and picked up again if still held.  That is how
		// a squeeze is noticed.
		s.latch.DitLatched = false
		s.latch.DahLatched = false
		s.state = STATE_KEY_UP

		return false

	case STATE_KEY_UP:
		if s.keyTimer == 0 {
			s.keyTimer = t.PauseTicks
			s.state = STATE_PAUSE
			return false
		}

		s.keyTone(buf, t, tone)

		if s.keyTimer > 0 {
			s.keyTimer--
		}

		if mode == MODE_IAMBIC_B {
			s.latchPaddles(p)
		}

		return false

	case STATE_PAUSE:
		s.latchPaddles(p)

		if s.keyTimer > 0 {
			s.keyTimer--
		}

		if s.keyTimer > 0 {
			return false
		}

		s.latch.EndOfCharacter = s.charCode <= CHAR_CODE_LIMIT

		if mode == MODE_ULTIMATE {
			s.updatePriority(p)

			// priority is the paddle last pressed on its own.  A
			// latched dah while that is still dit means the dah paddle
			// was added later, and the later paddle wins.
			if s.latch.DahLatched && s.priority == PADDLE_DIT {
				s.latch.DitLatched = false
				s.latch.DitProcessed = false
				s.state = STATE_DAH_CHECK
			} else {
				s.latch.DahLatched = false
				s.state = STATE_IDLE
				s.armBreak()
			}

			return true
		}

		if s.latch.DitProcessed {
			s.latch.DitLatched = false
			s.latch.DitProcessed = false
			s.state = STATE_DAH_CHECK
		} else {
			s.latch.DahLatched = false
			s.state = STATE_IDLE
			s.armBreak()
		}

		return true
	}

	// Unknown state.  Can't happen, but don't spin on it.
	s.state = STATE_IDLE

	return false
}

/*-------------------------------------------------------------------
 *
 * Name:        keyTone
 *
 * Purpose:     Put the tone for the current element into the block.
 *
 * Description:	Ramp up during the first half of a dit time, ramp
 *		down in the last SMOOTH_STEPS ticks.  When the ramp
 *		down is complete the element is over, even if the
 *		timer has not run out, and the rest of the block is
 *		left alone.
 *
 *--------------------------------------------------------------------*/

func (s *Iambic) keyTone(buf []int16, t Timing, tone *Sidetone) {
	var fs = tone.frameSize()

	for j := 0; j+fs <= len(buf); j += fs {
		var i, q = tone.next()

		if s.keyTimer > t.DitTicks/2 {
			tone.shape(&i, &q, true)
		}

		if s.keyTimer <= SMOOTH_STEPS {
			tone.shape(&i, &q, false)

			if tone.Envelope.FullyOff() {
				s.keyTimer = 0
			}
		}

		tone.mix(buf[j:j+fs], i, q)

		if s.keyTimer == 0 {
			break
		}
	}
}
