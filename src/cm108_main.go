package keyer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"syscall"
	"time"
)

/*-------------------------------------------------------------------
 *
 * Name:	CM108Main
 *
 * Purpose:	List USB audio and HID devices, or exercise a PTT pin.
 *
 * Optional command line arguments:
 *
 *		HID path
 *		GPIO number (default 3)
 *
 *		When specified the pin will be set high and low until interrupted.
 *
 *------------------------------------------------------------------*/

func cm108Usage() {
	fmt.Printf("\n")
	fmt.Printf("Usage:    cm108  [ device-path [ gpio-num ] ]\n")
	fmt.Printf("\n")
	fmt.Printf("With no command line arguments, this will produce a list of\n")
	fmt.Printf("Audio devices and Human Interface Devices (HID) and indicate\n")
	fmt.Printf("which ones can be used for GPIO PTT.\n")
	fmt.Printf("\n")
	fmt.Printf("Specify the HID device path to test the PTT function.\n")
	fmt.Printf("Its state should change once per second.\n")
	fmt.Printf("GPIO 3 is the default.  A different number can be optionally specified.\n")
}

func CM108Main() {
	if len(os.Args) >= 2 {
		if os.Args[1] == "-h" || os.Args[1] == "--help" {
			cm108Usage()
			os.Exit(0)
		}

		var path = os.Args[1]
		var gpio = DEFAULT_CM108_GPIO
		if len(os.Args) >= 3 {
			gpio, _ = strconv.Atoi(os.Args[2])
		}
		if gpio < 1 || gpio > 8 {
			fmt.Printf("GPIO number must be in range of 1 - 8.\n")
			cm108Usage()
			os.Exit(1)
		}

		var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := cm108Toggle(ctx, path, gpio, time.Second); err != nil {
			fmt.Printf("\nWRITE ERROR for USB Audio Adapter GPIO: %s\n", err)
			cm108Usage()
			os.Exit(1)
		}

		return
	}

	var devs, err = CM108Inventory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	writeCM108Table(os.Stdout, devs)
	writeCM108Rules(os.Stdout, devs)
}

// cm108Toggle flips the pin every interval until ctx is done, leaving it off.
func cm108Toggle(ctx context.Context, path string, gpio int, interval time.Duration) error {
	var state = 0

	for {
		fmt.Printf("%d", state)

		if err := CM108SetGPIOPin(path, gpio, state); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			fmt.Printf("\n")
			return CM108SetGPIOPin(path, gpio, 0)
		case <-time.After(interval):
		}

		state = 1 - state
	}
}

func writeCM108Table(w io.Writer, devs []CM108Device) {
	var productW, soundW, plugW, plugNameW, usbW = len("Product"), len("Sound"), len("ADEVICE"), len("ADEVICE"), len("USB")

	for _, d := range devs {
		productW = max(productW, len(d.Product))
		soundW = max(soundW, len(d.SoundNode))
		plugW = max(plugW, len(d.PlugHW))
		plugNameW = max(plugNameW, len(d.PlugHWName))
		usbW = max(usbW, len(d.USBNode))
	}

	fmt.Fprintf(w, "    VID  PID   %-*s %-*s %-*s %-*s %-*s %s\n",
		productW, "Product", soundW, "Sound", plugW, "ADEVICE", plugNameW, "ADEVICE", 17, "HID [ptt]", "USB")
	fmt.Fprintf(w, "    ---  ---   %-*s %-*s %-*s %-*s %-*s %s\n",
		productW, "-------", soundW, "-----", plugW, "-------", plugNameW, "-------", 17, "---------", "---")

	for _, d := range devs {
		var good = "  "
		if d.Good() {
			good = "**"
		}

		fmt.Fprintf(w, "%2s  %04x %04x  %-*s %-*s %-*s %-*s %-*s %s\n",
			good, d.VID, d.PID,
			productW, d.Product, soundW, d.SoundNode,
			plugW, d.PlugHW, plugNameW, d.PlugHWName,
			17, d.HIDRawNode, d.USBNode)
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "** = Can use Audio Adapter GPIO for PTT.\n")
	fmt.Fprintf(w, "\n")
}

var cardPathRe = regexp.MustCompile("(/devices/.+/card)[0-9]$")

var suggestedNames = []string{"Fred", "Wilma", "Pebbles", "Dino", "Barney", "Betty", "Bamm_Bamm", "Chip", "Roxy"}

// writeCM108Rules suggests udev rules giving each card a stable name.
func writeCM108Rules(w io.Writer, devs []CM108Device) {
	fmt.Fprintf(w, "Notice that each USB Audio adapter is assigned a number and a name.  These are not predictable so you could\n")
	fmt.Fprintf(w, "end up using the wrong adapter after adding or removing other USB devices or after rebooting.  You can assign a\n")
	fmt.Fprintf(w, "name to each USB adapter so you can refer to the same one each time.  A name can be assigned based on the\n")
	fmt.Fprintf(w, "physical USB socket.\n")
	fmt.Fprintf(w, "Create a file like \"/etc/udev/rules.d/85-my-usb-audio.rules\" with the following contents and then reboot.\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "SUBSYSTEM!=\"sound\", GOTO=\"my_usb_audio_end\"\n")
	fmt.Fprintf(w, "ACTION!=\"add\", GOTO=\"my_usb_audio_end\"\n")

	var iname = 0

	for i, d := range devs {
		if i > 0 && d.DevPath == devs[i-1].DevPath {
			continue
		}

		var m = cardPathRe.FindStringSubmatch(d.DevPath)
		if m == nil {
			continue
		}

		fmt.Fprintf(w, "DEVPATH==\"%s?\", ATTR{id}=\"%s\"\n", m[1], suggestedNames[iname])

		if iname < len(suggestedNames)-1 {
			iname++
		}
	}

	fmt.Fprintf(w, "LABEL=\"my_usb_audio_end\"\n")
	fmt.Fprintf(w, "\n")
}
