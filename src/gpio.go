package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Paddle inputs and PTT output on GPIO lines, using the
 *		Linux GPIO character device.
 *
 * Description:	Paddle contacts normally pull the line to ground, so
 *		inputs are requested active low with the internal pull-up.
 *		A press is then a rising edge of the logical value.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

var ErrBadGPIO = errors.New("bad GPIO configuration")

const DEFAULT_GPIO_CHIP = "gpiochip0"

const DEFAULT_DEBOUNCE = 2 * time.Millisecond

// PaddleGPIO says where the paddle contacts are wired.  An offset of -1
// means not connected.
type PaddleGPIO struct {
	Chip      string        `yaml:"chip"`
	Dit       int           `yaml:"dit"`
	Dah       int           `yaml:"dah"`
	Key       int           `yaml:"key"` // Straight key / external keying contact.
	ActiveLow bool          `yaml:"active_low"`
	Debounce  time.Duration `yaml:"debounce"`
}

func DefaultPaddleGPIO() PaddleGPIO {
	return PaddleGPIO{
		Chip:      DEFAULT_GPIO_CHIP,
		Dit:       -1,
		Dah:       -1,
		Key:       -1,
		ActiveLow: true,
		Debounce:  DEFAULT_DEBOUNCE,
	}
}

func (g PaddleGPIO) Enabled() bool {
	return g.Dit >= 0 || g.Dah >= 0 || g.Key >= 0
}

// PaddleInputs owns the requested input lines.
type PaddleInputs struct {
	lines []*gpiocdev.Line
}

/*-------------------------------------------------------------------
 *
 * Name:        OpenPaddles
 *
 * Purpose:     Request the paddle lines and feed their edges to the PTT
 *		controller, which also updates the shared key lines.
 *
 * Inputs:	cfg	- Chip and line offsets.
 *
 *		ptt	- Receives every contact change.
 *
 * Returns:	The open inputs, to be closed on exit.
 *
 * Description:	The initial level of every line is read and applied so
 *		a paddle held during startup is not missed.
 *
 *--------------------------------------------------------------------*/

func OpenPaddles(cfg PaddleGPIO, ptt *PTT) (*PaddleInputs, error) {
	var p = new(PaddleInputs)

	var inputs = []struct {
		name   string
		offset int
		set    func(bool)
	}{
		{"dit", cfg.Dit, ptt.SetDit},
		{"dah", cfg.Dah, ptt.SetDah},
		{"key", cfg.Key, ptt.SetDTR},
	}

	for _, in := range inputs {
		if in.offset < 0 {
			continue
		}

		var set = in.set
		var name = in.name

		var opts = []gpiocdev.LineReqOption{
			gpiocdev.WithConsumer("cwkeyer-" + name),
			gpiocdev.AsInput,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				var down = evt.Type == gpiocdev.LineEventRisingEdge
				Logger().Debug("paddle", "line", name, "down", down)
				set(down)
			}),
		}

		if cfg.ActiveLow {
			opts = append(opts, gpiocdev.AsActiveLow, gpiocdev.WithPullUp)
		}

		if cfg.Debounce > 0 {
			opts = append(opts, gpiocdev.WithDebounce(cfg.Debounce))
		}

		var l, err = gpiocdev.RequestLine(cfg.Chip, in.offset, opts...)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("%w: %s line %d on %s: %w", ErrBadGPIO, name, in.offset, cfg.Chip, err)
		}

		p.lines = append(p.lines, l)

		var v, verr = l.Value()
		if verr == nil {
			set(v == 1)
		}

		Logger().Info("paddle input", "line", name, "chip", cfg.Chip, "offset", in.offset)
	}

	return p, nil
}

func (p *PaddleInputs) Close() error {
	var errs []error

	for _, l := range p.lines {
		errs = append(errs, l.Close())
	}

	p.lines = nil

	return errors.Join(errs...)
}

// OpenGPIOOutput requests one line as an output, initially inactive.
// *gpiocdev.Line satisfies OutputLine directly.
func OpenGPIOOutput(chip string, offset int) (OutputLine, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: output offset %d", ErrBadGPIO, offset)
	}

	var l, err = gpiocdev.RequestLine(chip, offset,
		gpiocdev.WithConsumer("cwkeyer-ptt"),
		gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("%w: PTT line %d on %s: %w", ErrBadGPIO, offset, chip, err)
	}

	return l, nil
}
