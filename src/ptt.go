package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Transmit / receive switching for the keyer.
 *
 * Description:	Any paddle, the external key line (DTR) or the external
 *		PTT line (RTS) going active puts the radio into transmit
 *		immediately.
 *
 *		Going back to receive is slower.  When the keyer reports
 *		that the key is up, the time is noted and the periodic
 *		Tick switches to receive once KeyTimeout ticks have passed
 *		with no new key down.  Receive is never selected while
 *		any input is still active.
 *
 *		Releasing RTS goes to receive at once (subject to the
 *		same condition).
 *
 *		The PTT output can be a GPIO line, a serial port control
 *		line or a CM108 GPIO pin.  Anything with SetValue and
 *		Close will do.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// OutputLine is a single digital output.  1 is the active level before
// any inversion.
type OutputLine interface {
	SetValue(v int) error
	Close() error
}

const DEFAULT_TICK_INTERVAL = 10 * time.Millisecond

// Ticks after key up before returning to receive.  250 ms at the
// default tick interval.
const DEFAULT_KEY_TIMEOUT = 25

type PTT struct {
	lines *KeyLines

	mu     sync.Mutex // Guards out and every change of tx.
	out    OutputLine
	invert bool
	tx     atomic.Bool

	// Tick count at key release, plus one.  0 means nothing pending.
	// Written from the audio path so it has to be atomic.
	keyOff atomic.Int64
	clock  atomic.Int64

	// KeyTimeout is the number of ticks between key up and receive.
	KeyTimeout int64

	// OnChange, if set, is called after every switch with the new state.
	OnChange func(tx bool)
}

/*-------------------------------------------------------------------
 *
 * Name:        NewPTT
 *
 * Purpose:     Start out in receive.
 *
 * Inputs:	lines	- Key inputs, shared with the keyer.
 *
 *		out	- PTT output.  May be nil for sidetone only use.
 *
 *		invert	- Drive the output low for transmit.
 *
 *--------------------------------------------------------------------*/

func NewPTT(lines *KeyLines, out OutputLine, invert bool) *PTT {
	var p = &PTT{
		lines:      lines,
		out:        out,
		invert:     invert,
		KeyTimeout: DEFAULT_KEY_TIMEOUT,
	}

	p.mu.Lock()
	p.driveLocked(false)
	p.mu.Unlock()

	return p
}

func (p *PTT) IsTX() bool {
	return p.tx.Load()
}

// driveLocked sets the output for tx (true) or rx (false).  p.mu must
// be held.
func (p *PTT) driveLocked(tx bool) {
	if p.out == nil {
		return
	}

	var v = 0
	if tx != p.invert {
		v = 1
	}

	if err := p.out.SetValue(v); err != nil {
		Logger().Error("PTT output", "tx", tx, "err", err)
	}
}

// setTX and setRX change tx and the output level together under p.mu.
// setRX checks Busy inside the same section.

func (p *PTT) setTX() {
	p.mu.Lock()
	p.keyOff.Store(0)

	var changed = p.tx.CompareAndSwap(false, true)
	if changed {
		p.driveLocked(true)
	}
	p.mu.Unlock()

	if changed {
		Logger().Debug("PTT on")

		if p.OnChange != nil {
			p.OnChange(true)
		}
	}
}

func (p *PTT) setRX() {
	p.mu.Lock()

	var changed = !p.lines.Busy() && p.tx.CompareAndSwap(true, false)
	if changed {
		p.keyOff.Store(0)
		p.driveLocked(false)
	}
	p.mu.Unlock()

	if changed {
		Logger().Debug("PTT off")

		if p.OnChange != nil {
			p.OnChange(false)
		}
	}
}

// SetDah records the dah paddle contact.  A press keys the transmitter.
func (p *PTT) SetDah(on bool) {
	p.lines.SetDah(on)

	if on {
		p.setTX()
	}
}

// SetDit records the dit paddle contact.  A press keys the transmitter.
func (p *PTT) SetDit(on bool) {
	p.lines.SetDit(on)

	if on {
		p.setTX()
	}
}

// SetDTR is the external key line.  It works like a straight key.
func (p *PTT) SetDTR(on bool) {
	if p.lines.DTR() == on {
		return
	}

	p.lines.SetDTR(on)

	if on {
		p.setTX()
	}
}

// SetRTS is the external PTT line.
func (p *PTT) SetRTS(on bool) {
	if p.lines.RTS() == on {
		return
	}

	p.lines.SetRTS(on)

	if on {
		p.setTX()
	} else {
		p.setRX()
	}
}

// KeyReleased notes the time the key went up.  Called by the keyer
// from the audio path; it only stores a number.
func (p *PTT) KeyReleased() {
	p.keyOff.Store(p.clock.Load() + 1)
}

// Tick advances the PTT clock and handles the return to receive.
func (p *PTT) Tick() {
	var now = p.clock.Add(1)

	var off = p.keyOff.Load()
	if off == 0 {
		return
	}

	if now-(off-1) > p.KeyTimeout {
		p.keyOff.CompareAndSwap(off, 0)
		p.setRX()
	}
}

// Run calls Tick every interval until ctx is done.
func (p *PTT) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DEFAULT_TICK_INTERVAL
	}

	var ticker = time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Close forces receive and releases the output.
func (p *PTT) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tx.Store(false)
	p.driveLocked(false)

	if p.out == nil {
		return nil
	}

	var err = p.out.Close()
	p.out = nil

	return err
}

// multiLine drives several outputs together, e.g. RTS and DTR of one
// port in opposite phase.
type multiLine []OutputLine

func (m multiLine) SetValue(v int) error {
	var errs []error

	for _, l := range m {
		errs = append(errs, l.SetValue(v))
	}

	return errors.Join(errs...)
}

func (m multiLine) Close() error {
	var errs []error

	for _, l := range m {
		errs = append(errs, l.Close())
	}

	return errors.Join(errs...)
}

// invertedLine flips the level of another line.
type invertedLine struct {
	OutputLine
}

func (l invertedLine) SetValue(v int) error {
	return l.OutputLine.SetValue(1 - v)
}

/*-------------------------------------------------------------------
 *
 * Name:        OpenPTTOutput
 *
 * Purpose:     Open the PTT output described by the configuration.
 *
 * Inputs:	cfg		- PTT section of the settings.
 *
 *		audioDevice	- Used to find the CM108 when no device is
 *				  given.
 *
 * Returns:	The output, nil for method none.
 *
 *--------------------------------------------------------------------*/

func OpenPTTOutput(cfg PTTConfig, audioDevice string) (OutputLine, error) {
	switch cfg.Method {
	case PTT_METHOD_GPIO:
		return OpenGPIOOutput(cfg.Chip, cfg.Offset)

	case PTT_METHOD_SERIAL:
		var port, err = OpenSerialPort(cfg.Port, cfg.Baud)
		if err != nil {
			return nil, err
		}

		var first, ferr = NewSerialLine(port, cfg.Line, true)
		if ferr != nil {
			port.Close()
			return nil, ferr
		}

		if cfg.Line2 == "" {
			return first, nil
		}

		var second, serr = NewSerialLine(port, cfg.Line2, false)
		if serr != nil {
			port.Close()
			return nil, serr
		}

		return multiLine{first, invertedLine{second}}, nil

	case PTT_METHOD_CM108:
		var device = cfg.Device
		if device == "" {
			var found, err = CM108FindPTT(audioDevice)
			if err != nil {
				return nil, err
			}

			device = found
		}

		Logger().Info("CM108 PTT", "device", device, "gpio", cfg.GPIO)

		var l, err = NewCM108Line(device, cfg.GPIO)
		if err != nil {
			return nil, err
		}

		return l, nil
	}

	return nil, nil //nolint:nilnil
}
