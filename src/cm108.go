package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Use the GPIO pins of a CM108 (or similar) USB audio
 *		adapter for PTT.
 *
 * Description:	Many cheap USB audio adapters have general purpose pins
 *		reachable through the HID interface of the same USB
 *		device.  To key the transmitter we need the /dev/hidraw*
 *		that belongs to the sound card used for audio.
 *
 *		udev gives us both sides: every sound device and every
 *		hidraw device, each with its parent USB device.  Pairs
 *		with the same parent go together.
 *
 *		The result looks something like this:
 *
 *	    VID  PID   Product                          Sound                  ADEVICE         HID [ptt]
 *	    ---  ---   -------                          -----                  -------         ---------
 *	**  0d8c 000c  C-Media USB Headphone Set        /dev/snd/pcmC1D0c      plughw:1,0      /dev/hidraw0
 *	**  0d8c 000c  C-Media USB Headphone Set        /dev/snd/pcmC1D0p      plughw:1,0      /dev/hidraw0
 *	    413c 2010  Dell USB Keyboard                                                       /dev/hidraw4
 *
 *		"**" marks devices known to work.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/jochenvg/go-udev"
	"golang.org/x/sys/unix"
)

const (
	CMEDIA_VID = 0x0d8c
	SSS_VID    = 0x0c76
	AIOC_VID   = 0x1209
	AIOC_PID   = 0x7388

	DEFAULT_CM108_GPIO = 3
)

var cmediaPIDs = map[uint16]bool{
	0x0008: true, // CM108AH, CM108B
	0x000c: true, // CM108AH
	0x000e: true,
	0x0012: true, // CM119B
	0x013a: true, // CM119A
	0x013c: true, // CM108AH
}

var sssPIDs = map[uint16]bool{
	0x1605: true,
	0x1607: true,
	0x160b: true,
}

// GoodDevice reports whether vid/pid is a device known to have usable GPIO.
func GoodDevice(vid, pid uint16) bool {
	switch vid {
	case CMEDIA_VID:
		return cmediaPIDs[pid]
	case SSS_VID:
		return sssPIDs[pid]
	case AIOC_VID:
		return pid == AIOC_PID
	}

	return false
}

// CM108Device is one row of the inventory.
type CM108Device struct {
	VID, PID   uint16
	Product    string
	SoundNode  string // e.g. /dev/snd/pcmC1D0p
	CardNumber string
	CardName   string
	PlugHW     string // plughw:1,0
	PlugHWName string // plughw:Device,0
	HIDRawNode string // e.g. /dev/hidraw0
	USBNode    string
	DevPath    string
}

func (d CM108Device) Good() bool {
	return GoodDevice(d.VID, d.PID)
}

func parseHex16(s string) uint16 {
	var v, _ = strconv.ParseUint(s, 16, 16)
	return uint16(v)
}

var pcmRe = regexp.MustCompile("pcmC([0-9]+)D([0-9]+)[cp]")

/*-------------------------------------------------------------------
 *
 * Name:	CM108Inventory
 *
 * Purpose:	Make a list of USB Audio Adapters and hidraw devices.
 *
 * Returns:	Sound devices, each with its hidraw partner if there is
 *		one, followed by hidraw devices that have no sound
 *		partner.
 *
 *------------------------------------------------------------------*/

func CM108Inventory() ([]CM108Device, error) {
	var u udev.Udev
	var devs []CM108Device

	var sound = u.NewEnumerate()
	if err := sound.AddMatchSubsystem("sound"); err != nil {
		return nil, fmt.Errorf("udev sound enumerate: %w", err)
	}

	var sounds, err = sound.Devices()
	if err != nil {
		return nil, fmt.Errorf("udev sound devices: %w", err)
	}

	for _, dev := range sounds {
		var devnode = dev.Devnode()
		if devnode == "" {
			continue
		}

		var parent = dev.ParentWithSubsystemDevtype("usb", "usb_device")
		if parent == nil {
			continue
		}

		var card = dev.Parent()
		var d = CM108Device{
			VID:       parseHex16(parent.SysattrValue("idVendor")),
			PID:       parseHex16(parent.SysattrValue("idProduct")),
			Product:   parent.SysattrValue("product"),
			SoundNode: devnode,
			USBNode:   parent.Devnode(),
			DevPath:   dev.Devpath(),
		}

		if card != nil {
			d.CardName = card.SysattrValue("id")
			d.CardNumber = card.SysattrValue("number")
		}

		if m := pcmRe.FindStringSubmatch(devnode); m != nil {
			d.PlugHW = fmt.Sprintf("plughw:%s,%s", m[1], m[2])
			d.PlugHWName = fmt.Sprintf("plughw:%s,%s", d.CardName, m[2])
		}

		devs = append(devs, d)
	}

	var hid = u.NewEnumerate()
	if err := hid.AddMatchSubsystem("hidraw"); err != nil {
		return nil, fmt.Errorf("udev hidraw enumerate: %w", err)
	}

	var hids, herr = hid.Devices()
	if herr != nil {
		return nil, fmt.Errorf("udev hidraw devices: %w", herr)
	}

	for _, dev := range hids {
		var devnode = dev.Devnode()
		if devnode == "" {
			continue
		}

		var parent = dev.ParentWithSubsystemDevtype("usb", "usb_device")
		if parent == nil {
			continue
		}

		var usb = parent.Devnode()
		var matched = false

		for i := range devs {
			if devs[i].USBNode == usb && usb != "" {
				devs[i].HIDRawNode = devnode
				matched = true
			}
		}

		if !matched {
			devs = append(devs, CM108Device{
				VID:        parseHex16(parent.SysattrValue("idVendor")),
				PID:        parseHex16(parent.SysattrValue("idProduct")),
				Product:    parent.SysattrValue("product"),
				HIDRawNode: devnode,
				USBNode:    usb,
				DevPath:    dev.Devpath(),
			})
		}
	}

	return devs, nil
}

var soundRe = regexp.MustCompile(".+:(CARD=)?([A-Za-z0-9_]+)(,.*)?")

// cardFromAudioDevice pulls the card number or name out of names like
// plughw:1,0 or surround41:CARD=Fred,DEV=0.
func cardFromAudioDevice(audioDevice string) string {
	var m = soundRe.FindStringSubmatch(audioDevice)
	if m == nil {
		return ""
	}

	return m[2]
}

/*-------------------------------------------------------------------
 *
 * Name:	CM108FindPTT
 *
 * Purpose:	Find the hidraw device of a USB audio card.
 *
 * Inputs:	audioDevice	- Audio device name such as plughw:2,0.
 *
 * Returns:	Something like /dev/hidraw2.
 *
 *------------------------------------------------------------------*/

func CM108FindPTT(audioDevice string) (string, error) {
	var card = cardFromAudioDevice(audioDevice)
	if card == "" {
		return "", fmt.Errorf("could not extract card number or name from %q", audioDevice)
	}

	var devs, err = CM108Inventory()
	if err != nil {
		return "", err
	}

	for _, d := range devs {
		if d.HIDRawNode == "" || (card != d.CardName && card != d.CardNumber) {
			continue
		}

		if !d.Good() {
			Logger().Warn("USB audio card is not a device known to work with GPIO PTT",
				"card", d.CardNumber, "name", d.CardName)
		}

		return d.HIDRawNode, nil
	}

	return "", fmt.Errorf("no HID device found for audio card %q", card)
}

// cm108Report is the output report for GPIO pin num (1..8).
// The first two bytes are 0; 5 bytes in total.  4 fails with EPIPE.
func cm108Report(num int, state int) ([]byte, error) {
	if num < 1 || num > 8 {
		return nil, fmt.Errorf("%w: CM108 GPIO number %d must be in range of 1 thru 8", ErrBadGPIO, num)
	}

	if state != 0 && state != 1 {
		return nil, fmt.Errorf("%w: CM108 GPIO state %d must be 0 or 1", ErrBadGPIO, state)
	}

	var iomask = 1 << (num - 1) // 0=input, 1=output
	var iodata = state << (num - 1)

	return []byte{0, 0, byte(iodata), byte(iomask), 0}, nil
}

/*-------------------------------------------------------------------
 *
 * Name:	CM108SetGPIOPin
 *
 * Purpose:	Set one GPIO pin of the CM108 or similar.
 *
 * Inputs:	name		- Name of device such as /dev/hidraw2.
 *
 *		num		- GPIO number, range 1 thru 8.
 *
 *		state		- 1 for on, 0 for off.
 *
 * Description:	By default the hidraw devices are accessible only by
 *		root.  A udev rule such as
 *
 *	SUBSYSTEM=="hidraw", ATTRS{idVendor}=="0d8c", GROUP="audio", MODE="0660"
 *
 *		gives members of the audio group access.
 *
 *------------------------------------------------------------------*/

func CM108SetGPIOPin(name string, num int, state int) error {
	var data, err = cm108Report(num, state)
	if err != nil {
		return err
	}

	var fd, oerr = os.OpenFile(name, os.O_RDWR, 0)
	if oerr != nil {
		return fmt.Errorf("could not open %s for write: %w", name, oerr)
	}
	defer fd.Close()

	var info, ioctlErr = unix.IoctlHIDGetRawInfo(int(fd.Fd()))
	if ioctlErr == nil && !GoodDevice(uint16(info.Vendor), uint16(info.Product)) {
		Logger().Warn("not a supported device type, proceed at your own risk",
			"device", name, "vid", fmt.Sprintf("%04x", uint16(info.Vendor)), "pid", fmt.Sprintf("%04x", uint16(info.Product)))
	}

	var n, werr = fd.Write(data)
	if werr != nil {
		if errors.Is(werr, unix.EACCES) {
			return fmt.Errorf("write to %s: %w (check the hidraw permissions)", name, werr)
		}

		return fmt.Errorf("write to %s: %w", name, werr)
	}

	if n != len(data) {
		return fmt.Errorf("write to %s: short write %d of %d", name, n, len(data))
	}

	return nil
}

// CM108Line is a CM108 GPIO pin used as an OutputLine.
type CM108Line struct {
	Device string
	GPIO   int
}

func NewCM108Line(device string, gpio int) (*CM108Line, error) {
	if gpio < 1 || gpio > 8 {
		return nil, fmt.Errorf("%w: CM108 GPIO number %d must be in range of 1 thru 8", ErrBadGPIO, gpio)
	}

	return &CM108Line{Device: device, GPIO: gpio}, nil
}

func (c *CM108Line) SetValue(v int) error {
	if v != 0 {
		v = 1
	}

	return CM108SetGPIOPin(c.Device, c.GPIO, v)
}

func (c *CM108Line) Close() error {
	return nil
}
