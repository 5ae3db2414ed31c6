package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Settings menu for a front panel with a rotary encoder
 *		and a button.
 *
 * Description:	Three rows: mode, speed and pitch.  Turning the knob
 *		moves between rows.  A long press starts editing the
 *		focused row, after which turning changes the value.  A
 *		long press again stores the value and applies it to the
 *		keyer; a short press leaves the value as it was.
 *
 *		Nothing can be changed while transmitting.
 *
 *		The panel rendering is up to the caller; Lines gives
 *		the text of each row.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

type MenuItem int

const (
	MENU_MODE MenuItem = iota
	MENU_SPEED
	MENU_PITCH
	MENU_ITEMS
)

// Pitch is set in 100 Hz steps.
const (
	MENU_PITCH_STEP = 100
	MIN_PITCH_HZ    = 300
	MAX_PITCH_HZ    = 1000
)

var ErrTransmitting = errors.New("settings can't be changed while transmitting")

// TXStatus is anything that knows whether the radio is transmitting.
// *PTT is one.
type TXStatus interface {
	IsTX() bool
}

type Menu struct {
	keyer *Keyer
	tx    TXStatus

	focus   MenuItem
	editing bool
	value   int // Candidate while editing, in encoder steps.
}

func NewMenu(k *Keyer, tx TXStatus) *Menu {
	return &Menu{keyer: k, tx: tx}
}

func (m *Menu) Focus() MenuItem {
	return m.focus
}

func (m *Menu) Editing() bool {
	return m.editing
}

func (m *Menu) transmitting() bool {
	return m.tx != nil && m.tx.IsTX()
}

// steps returns the number of encoder positions for an item.
func steps(item MenuItem) int {
	switch item {
	case MENU_MODE:
		return int(MODE_STRAIGHT) + 1
	case MENU_SPEED:
		return MAX_SPEED_WPM - MIN_SPEED_WPM + 1
	case MENU_PITCH:
		return (MAX_PITCH_HZ-MIN_PITCH_HZ)/MENU_PITCH_STEP + 1
	}

	return 1
}

// position converts the current keyer setting to an encoder position.
func (m *Menu) position(item MenuItem) int {
	var cfg = m.keyer.Config()

	switch item {
	case MENU_MODE:
		return int(cfg.Mode)
	case MENU_SPEED:
		return int(cfg.SpeedWPM) - MIN_SPEED_WPM
	case MENU_PITCH:
		var p = (int(cfg.PitchHz) - MIN_PITCH_HZ + MENU_PITCH_STEP/2) / MENU_PITCH_STEP
		return max(0, min(steps(MENU_PITCH)-1, p))
	}

	return 0
}

// Turn handles the knob.  Outside editing it moves the focus, wrapping
// around.  While editing it changes the candidate value, stopping at the
// ends of the range.
func (m *Menu) Turn(delta int) error {
	if m.transmitting() {
		return ErrTransmitting
	}

	if !m.editing {
		var n = int(MENU_ITEMS)
		m.focus = MenuItem(((int(m.focus)+delta)%n + n) % n)
		return nil
	}

	m.value = max(0, min(steps(m.focus)-1, m.value+delta))

	return nil
}

// LongPress starts editing, or stores the edited value.
func (m *Menu) LongPress() error {
	if m.transmitting() {
		return ErrTransmitting
	}

	if !m.editing {
		m.editing = true
		m.value = m.position(m.focus)
		return nil
	}

	m.editing = false

	switch m.focus {
	case MENU_MODE:
		return m.keyer.SetMode(Mode(m.value))
	case MENU_SPEED:
		m.keyer.SetSpeed(uint(m.value + MIN_SPEED_WPM))
	case MENU_PITCH:
		m.keyer.SetPitch(uint32(m.value*MENU_PITCH_STEP + MIN_PITCH_HZ))
	}

	return nil
}

// ShortPress leaves editing without a change.
func (m *Menu) ShortPress() {
	m.editing = false
}

func modeLabel(mode Mode) string {
	switch mode {
	case MODE_IAMBIC_B:
		return "IAMBIC_B"
	case MODE_IAMBIC_A:
		return "IAMBIC_A"
	case MODE_ULTIMATE:
		return "ULTIMATE"
	case MODE_STRAIGHT:
		return "STRAIGHT"
	}

	return "?"
}

// valueText is what a row shows for encoder position v.
func valueText(item MenuItem, v int) string {
	switch item {
	case MENU_MODE:
		return modeLabel(Mode(v))
	case MENU_SPEED:
		return fmt.Sprintf("%d WPM", v+MIN_SPEED_WPM)
	case MENU_PITCH:
		return fmt.Sprintf("%d Hz", v*MENU_PITCH_STEP+MIN_PITCH_HZ)
	}

	return ""
}

var menuLabels = [MENU_ITEMS]string{"MODE", "SPEED", "PITCH"}

// Lines renders the menu, one string per row.  The focused row is marked
// with '>', and '*' while it is being edited.
func (m *Menu) Lines() []string {
	var cfg = m.keyer.Config()
	var out = make([]string, 0, MENU_ITEMS)

	for item := MENU_MODE; item < MENU_ITEMS; item++ {
		var mark = " "
		var text string

		switch item {
		case MENU_MODE:
			text = modeLabel(cfg.Mode)
		case MENU_SPEED:
			text = fmt.Sprintf("%d WPM", cfg.SpeedWPM)
		case MENU_PITCH:
			text = fmt.Sprintf("%d Hz", cfg.PitchHz)
		}

		if item == m.focus {
			mark = ">"

			if m.editing {
				mark = "*"
				text = valueText(item, m.value)
			}
		}

		out = append(out, fmt.Sprintf("%s %-6s %s", mark, menuLabels[item], text))
	}

	return out
}
