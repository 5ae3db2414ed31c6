package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Turn text into key down / key up times.
 *
 * Description:	The result drives the external key line the same way a
 *		logging program would, so canned messages go through the
 *		normal straight keying path.
 *
 *		Standard PARIS timing: dit 1 unit, dah 3, 1 between
 *		elements, 3 between characters, 7 between words.
 *		One unit is 1200/wpm ms.
 *
 *---------------------------------------------------------------*/

import (
	"math"
	"unicode"
)

func TIME_UNITS_TO_MS(tu int, wpm int) float64 {
	return float64(tu*1200) / float64(wpm)
}

var MORSE = map[rune]string{
	'A': ".-",
	'B': "-...",
	'C': "-.-.",
	'D': "-..",
	'E': ".",
	'F': "..-.",
	'G': "--.",
	'H': "....",
	'I': "..",
	'J': ".---",
	'K': "-.-",
	'L': ".-..",
	'M': "--",
	'N': "-.",
	'O': "---",
	'P': ".--.",
	'Q': "--.-",
	'R': ".-.",
	'S': "...",
	'T': "-",
	'U': "..-",
	'V': "...-",
	'W': ".--",
	'X': "-..-",
	'Y': "-.--",
	'Z': "--..",
	'1': ".----",
	'2': "..---",
	'3': "...--",
	'4': "....-",
	'5': ".....",
	'6': "-....",
	'7': "--...",
	'8': "---..",
	'9': "----.",
	'0': "-----",
	'.': ".-.-.-",
	',': "--..--",
	'?': "..--..",
	'/': "-..-.",

	'=':  "-...-", /* from ARRL */
	'-':  "-....-",
	')':  "-.--.-", /* does not distinguish open/close */
	':':  "---...",
	';':  "-.-.-.",
	'"':  ".-..-.",
	'\'': ".----.",
	'$':  "...-..-",

	'!': "-.-.--",
	'(': "-.--.",
	'&': ".-...",
	'+': ".-.-.",
	'_': "..--.-",
	'@': ".--.-.",
}

// MorseLookup returns the dits and dahs for ch.  Anything not in the
// table, space included, is not found and is sent as a gap.
func MorseLookup(ch rune) (string, bool) {
	var enc, ok = MORSE[unicode.ToUpper(ch)]
	return enc, ok
}

/*-------------------------------------------------------------------
 *
 * Name:        MorseUnits
 *
 * Purpose:    	Find number of time units for a character.
 *
 * Returns:	1 for E (.)
 *		3 for T (-)
 *		3 for I (..)
 *		etc.
 *
 *		Space gives 1.  Between two characters there are
 *		already 3 on each side, so 1 more makes the word gap 7.
 *
 *--------------------------------------------------------------------*/

func MorseUnits(ch rune) int {
	var enc, ok = MorseLookup(ch)
	if !ok {
		return 1
	}

	var units = len(enc) - 1

	for _, k := range enc {
		if k == '-' {
			units += 3
		} else {
			units++
		}
	}

	return units
}

// MorseUnitsString gives the length of str: 1 for "E", 5 for "EE",
// 9 for "E E".
func MorseUnitsString(str string) int {
	var runes = []rune(str)
	if len(runes) == 0 {
		return 0
	}

	var units = (len(runes) - 1) * 3

	for _, r := range runes {
		units += MorseUnits(r)
	}

	return units
}

/*-------------------------------------------------------------------
 *
 * Name:        MorseTimeline
 *
 * Purpose:    	Key events for a string.
 *
 * Inputs:	str	- Text to send.
 *		wpm	- Speed.
 *		startMS	- Time of the first key down.
 *		input	- Which input to key, normally INPUT_KEY.
 *
 * Returns:	Events and the time the last element ends.
 *
 * Description:	Times are worked out from the running unit count so
 *		rounding doesn't accumulate.
 *
 *--------------------------------------------------------------------*/

func MorseTimeline(str string, wpm int, startMS int, input KeyInput) ([]KeyEvent, int) {
	wpm = int(ClampSpeed(uint(max(0, wpm))))

	var events []KeyEvent
	var units = 0

	var at = func(u int) int {
		return startMS + int(math.Round(TIME_UNITS_TO_MS(u, wpm)))
	}

	var runes = []rune(str)

	for i, ch := range runes {
		var enc, ok = MorseLookup(ch)

		if ok {
			for j, e := range enc {
				var length = 1
				if e == '-' {
					length = 3
				}

				events = append(events, KeyEvent{AtMS: at(units), Input: input, Down: true})
				units += length
				events = append(events, KeyEvent{AtMS: at(units), Input: input, Down: false})

				if j != len(enc)-1 {
					units++
				}
			}
		} else {
			units++
		}

		if i != len(runes)-1 {
			units += 3
		}
	}

	if units != MorseUnitsString(str) {
		Logger().Error("morse: inconsistent length", "units", units, "expected", MorseUnitsString(str))
	}

	return events, at(units)
}
