package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Timed key input events, read from a simple script.
 *
 * Description:	One event per line:
 *
 *			<ms> <input> <down|up>
 *
 *		where <input> is dit, dah, key (external key line) or
 *		rts (external PTT).  Times are milliseconds from the
 *		start and must not go backwards.  '#' starts a comment.
 *
 *		Example, one squeezed "C" at 20 WPM:
 *
 *			0    dah down
 *			40   dit down
 *			600  dah up
 *			600  dit up
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type KeyInput int

const (
	INPUT_DIT KeyInput = iota
	INPUT_DAH
	INPUT_KEY
	INPUT_RTS
)

var keyInputNames = [...]string{
	INPUT_DIT: "dit",
	INPUT_DAH: "dah",
	INPUT_KEY: "key",
	INPUT_RTS: "rts",
}

func (k KeyInput) String() string {
	if k < 0 || int(k) >= len(keyInputNames) {
		return fmt.Sprintf("KeyInput(%d)", int(k))
	}

	return keyInputNames[k]
}

func parseKeyInput(s string) (KeyInput, error) {
	switch strings.ToLower(s) {
	case "dit", ".":
		return INPUT_DIT, nil
	case "dah", "-":
		return INPUT_DAH, nil
	case "key", "dtr", "straight":
		return INPUT_KEY, nil
	case "rts", "ptt":
		return INPUT_RTS, nil
	}

	return 0, fmt.Errorf("unknown input %q", s)
}

type KeyEvent struct {
	AtMS  int
	Input KeyInput
	Down  bool
}

func (e KeyEvent) String() string {
	var state = "up"
	if e.Down {
		state = "down"
	}

	return fmt.Sprintf("%d %s %s", e.AtMS, e.Input, state)
}

// Apply passes the event to the PTT controller, which updates the
// key lines too.
func (e KeyEvent) Apply(p *PTT) {
	switch e.Input {
	case INPUT_DIT:
		p.SetDit(e.Down)
	case INPUT_DAH:
		p.SetDah(e.Down)
	case INPUT_KEY:
		p.SetDTR(e.Down)
	case INPUT_RTS:
		p.SetRTS(e.Down)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        ParseScript
 *
 * Purpose:     Read key events.
 *
 * Returns:	Events in time order.  Errors name the line number.
 *
 *--------------------------------------------------------------------*/

func ParseScript(r io.Reader) ([]KeyEvent, error) {
	var events []KeyEvent
	var scanner = bufio.NewScanner(r)
	var lineno = 0
	var last = 0

	for scanner.Scan() {
		lineno++

		var line = scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		var fields = strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected \"<ms> <input> <down|up>\", got %q", lineno, strings.TrimSpace(line))
		}

		var at, err = strconv.Atoi(fields[0])
		if err != nil || at < 0 {
			return nil, fmt.Errorf("line %d: bad time %q", lineno, fields[0])
		}

		if at < last {
			return nil, fmt.Errorf("line %d: time %d is before %d", lineno, at, last)
		}

		var input, ierr = parseKeyInput(fields[1])
		if ierr != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, ierr)
		}

		var down bool

		switch strings.ToLower(fields[2]) {
		case "down", "on", "1":
			down = true
		case "up", "off", "0":
			down = false
		default:
			return nil, fmt.Errorf("line %d: expected down or up, got %q", lineno, fields[2])
		}

		events = append(events, KeyEvent{AtMS: at, Input: input, Down: down})
		last = at
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}

	return events, nil
}

// WriteScript writes events in the form ParseScript reads.
func WriteScript(w io.Writer, events []KeyEvent) error {
	for _, e := range events {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}

	return nil
}
