package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Keyer modes and element timing.
 *
 * Description:	All keyer times are counted in audio blocks ("ticks").
 *		The reference cadence is one block per millisecond.
 *
 *		1 WPM is 1.2 s per dit.  Times are scaled by 100 for
 *		precision, so one dit at 1 WPM is 120000.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"strings"
)

type Mode int

// Order matters: everything below MODE_STRAIGHT runs the iambic state machine.
const (
	MODE_IAMBIC_B Mode = iota
	MODE_IAMBIC_A
	MODE_ULTIMATE
	MODE_STRAIGHT
)

var modeNames = [...]string{
	MODE_IAMBIC_B: "iambic-b",
	MODE_IAMBIC_A: "iambic-a",
	MODE_ULTIMATE: "ultimate",
	MODE_STRAIGHT: "straight",
}

var ErrBadMode = errors.New("unknown keyer mode")

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}

	return modeNames[m]
}

func (m Mode) Valid() bool {
	return m >= MODE_IAMBIC_B && m <= MODE_STRAIGHT
}

// Automatic is true for the modes handled by the iambic state machine.
func (m Mode) Automatic() bool {
	return m >= MODE_IAMBIC_B && m < MODE_STRAIGHT
}

// ParseMode accepts "iambic-b", "iambicb", "b", "ultimate", "straight", etc.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "iambic-b", "iambicb", "iambic_b", "b":
		return MODE_IAMBIC_B, nil
	case "iambic-a", "iambica", "iambic_a", "a":
		return MODE_IAMBIC_A, nil
	case "ultimate", "u":
		return MODE_ULTIMATE, nil
	case "straight", "s":
		return MODE_STRAIGHT, nil
	}

	return MODE_IAMBIC_B, fmt.Errorf("%w: %q", ErrBadMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadMode, int(m))
	}

	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	var parsed, err = ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

const MIN_SPEED_WPM = 4
const MAX_SPEED_WPM = 60

/*
 * Length of the falling edge, in ticks, for the internal keyer.
 *
 *	SMOOTH_STEPS = (SMOOTH_TABLE_SIZE * smooth len) / (samples per ms) + 1
 *
 * 128 * 2 / 48 + 1 = 6 at 48 kHz.
 */
const SMOOTH_STEPS = 6

const EDGE_COMPENSATION = SMOOTH_STEPS * 100

// Ticks per dit at 1 WPM, scaled by 100.
const DIT_SCALED_1WPM = 120000

// Config is what the operator sets.
type Config struct {
	Mode     Mode   `yaml:"mode"`
	SpeedWPM uint   `yaml:"speed_wpm"`
	PitchHz  uint32 `yaml:"pitch_hz"`
}

// Timing is derived from the speed.
type Timing struct {
	DitTicks   int32
	DahTicks   int32
	PauseTicks int32
	SpaceTicks int32
}

// ClampSpeed keeps the speed where the timing arithmetic is meaningful.
// In particular 0 never reaches CalcTiming.
func ClampSpeed(wpm uint) uint {
	return max(MIN_SPEED_WPM, min(MAX_SPEED_WPM, wpm))
}

/*-------------------------------------------------------------------
 *
 * Name:        CalcTiming
 *
 * Purpose:     Element durations for a speed.
 *
 * Inputs:	wpm	- Speed.  Must already be clamped.
 *
 * Description:	Dit and dah are lengthened by the edge time and the
 *		pause shortened by the same amount, so the audible
 *		element, measured at half amplitude, has the right
 *		length.
 *
 *		Weight is fixed at 1.00.
 *
 *--------------------------------------------------------------------*/

func CalcTiming(wpm uint) Timing {
	var speed = int32(ClampSpeed(wpm))

	var dit = 1*DIT_SCALED_1WPM/speed + EDGE_COMPENSATION
	var pause = 1*DIT_SCALED_1WPM/speed - EDGE_COMPENSATION
	var dah = 3*DIT_SCALED_1WPM/speed + EDGE_COMPENSATION
	var space = 6 * DIT_SCALED_1WPM / speed

	return Timing{
		DitTicks:   dit / 100,
		DahTicks:   dah / 100,
		PauseTicks: pause / 100,
		SpaceTicks: space / 100,
	}
}
