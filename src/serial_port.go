package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Serial port control lines.
 *
 * Description:	Traditionally PTT is the RTS (or DTR) output of a serial
 *		port.  Logging programs also key CW through a serial
 *		port; here that is read from one of the modem status
 *		inputs (DSR, CTS or DCD) and treated as the external
 *		key line.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/term"
	"golang.org/x/sys/unix"
)

/*-------------------------------------------------------------------
 *
 * Name:	OpenSerialPort
 *
 * Purpose:	Open serial port.
 *
 * Inputs:	devicename	- Usually /dev/tty...
 *				  Could be /dev/rfcomm0 for Bluetooth.
 *
 *		baud		- Speed.  1200, 4800, 9600 bps, etc.
 *				  If 0, leave it alone.
 *
 *---------------------------------------------------------------*/

func OpenSerialPort(devicename string, baud int) (*term.Term, error) {
	var fd, err = term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %s: %w", devicename, err)
	}

	switch baud {
	case 0: /* Leave it alone. */
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		if err := fd.SetSpeed(baud); err != nil {
			fd.Close()
			return nil, fmt.Errorf("serial port %s speed %d: %w", devicename, baud, err)
		}
	default:
		Logger().Warn("unsupported serial speed, using 4800", "port", devicename, "baud", baud)

		if err := fd.SetSpeed(4800); err != nil {
			fd.Close()
			return nil, fmt.Errorf("serial port %s speed 4800: %w", devicename, err)
		}
	}

	return fd, nil
}

// modemBits returns the TIOCM_* mask for a control line name.
func modemBits(name string) (int, error) {
	switch strings.ToLower(name) {
	case "rts":
		return unix.TIOCM_RTS, nil
	case "dtr":
		return unix.TIOCM_DTR, nil
	case "dsr":
		return unix.TIOCM_DSR, nil
	case "cts":
		return unix.TIOCM_CTS, nil
	case "dcd", "cd":
		return unix.TIOCM_CD, nil
	case "ri":
		return unix.TIOCM_RI, nil
	}

	return 0, fmt.Errorf("unknown serial control line %q", name)
}

// outputModemBit accepts only the lines a port drives: RTS and DTR.
func outputModemBit(name string) (int, error) {
	var bit, err = modemBits(name)
	if err != nil {
		return 0, err
	}

	if bit != unix.TIOCM_RTS && bit != unix.TIOCM_DTR {
		return 0, fmt.Errorf("serial control line %q is not an output", name)
	}

	return bit, nil
}

// inputModemBit accepts only the status lines: DSR, CTS, DCD and RI.
func inputModemBit(name string) (int, error) {
	var bit, err = modemBits(name)
	if err != nil {
		return 0, err
	}

	if bit == unix.TIOCM_RTS || bit == unix.TIOCM_DTR {
		return 0, fmt.Errorf("serial control line %q is not an input", name)
	}

	return bit, nil
}

func getModemBit(fd int, bit int) (bool, error) {
	var stuff, err = unix.IoctlGetInt(fd, unix.TIOCMGET)
	if err != nil {
		return false, err
	}

	return stuff&bit != 0, nil
}

// SerialLine is one output control line (RTS or DTR) of an open port.
type SerialLine struct {
	port  *term.Term
	dtr   bool // DTR rather than RTS.
	owner bool // Close the port when the line is closed.
}

/*-------------------------------------------------------------------
 *
 * Name:	NewSerialLine
 *
 * Purpose:	Use RTS or DTR of a serial port as an OutputLine.
 *
 * Inputs:	port	- Open port.
 *
 *		line	- "rts" or "dtr".
 *
 *		owner	- The line closes the port when it is closed.
 *			  Only one of two lines sharing a port should own it.
 *
 *---------------------------------------------------------------*/

func NewSerialLine(port *term.Term, line string, owner bool) (*SerialLine, error) {
	var bit, err = outputModemBit(line)
	if err != nil {
		return nil, err
	}

	return &SerialLine{port: port, dtr: bit == unix.TIOCM_DTR, owner: owner}, nil
}

func (s *SerialLine) SetValue(v int) error {
	if s.port == nil {
		return nil
	}

	if s.dtr {
		return s.port.SetDTR(v != 0)
	}

	return s.port.SetRTS(v != 0)
}

func (s *SerialLine) Close() error {
	if !s.owner || s.port == nil {
		return nil
	}

	var err = s.port.Close()
	s.port = nil

	return err
}

/*-------------------------------------------------------------------
 *
 * Name:	PollSerialKey
 *
 * Purpose:	Follow a serial status input and pass it on as the
 *		external key line.
 *
 * Inputs:	ctx		- Stop when done.
 *
 *		devicename	- Port, which may also be open for PTT.
 *
 *		line		- "dsr", "cts" or "dcd".
 *
 *		interval	- Poll period.  1 ms gives block resolution.
 *
 *		set		- Called on every change.
 *
 * Description:	The status lines are read with TIOCMGET on a second
 *		descriptor.  TIOCMIWAIT would avoid polling but is not
 *		supported by every USB serial driver.
 *
 *---------------------------------------------------------------*/

func PollSerialKey(ctx context.Context, devicename string, line string, interval time.Duration, set func(bool)) error {
	var bit, err = inputModemBit(line)
	if err != nil {
		return err
	}

	var f, oerr = os.OpenFile(devicename, os.O_RDONLY|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if oerr != nil {
		return fmt.Errorf("could not open serial port %s: %w", devicename, oerr)
	}
	defer f.Close()

	var ticker = time.NewTicker(interval)
	defer ticker.Stop()

	var last = false

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		var on, gerr = getModemBit(int(f.Fd()), bit)
		if gerr != nil {
			return fmt.Errorf("reading serial %s: %w", line, gerr)
		}

		if on != last {
			last = on
			Logger().Debug("serial key", "line", line, "on", on)
			set(on)
		}
	}
}
