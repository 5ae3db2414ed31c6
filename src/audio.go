package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Live audio output.
 *
 * Description:	The sound card pulls blocks from the keyer: one
 *		PortAudio callback is one keyer block, so the callback
 *		rate is the keyer clock.  With 48 kHz and 48 frames per
 *		buffer that is 1 ms.
 *
 *		The block is cleared before the keyer mixes its tone in,
 *		so the output is the sidetone (or the I/Q pair) alone.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gordonklaus/portaudio"
)

type AudioOutput struct {
	stream *portaudio.Stream
	keyer  *Keyer
}

// findOutputDevice accepts "" for the default, a 1 based index into the
// device list, or the start of a device name.
func findOutputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultOutputDevice()
	}

	var devices, err = portaudio.Devices()
	if err != nil {
		return nil, err
	}

	if i, aerr := strconv.Atoi(name); aerr == nil && i > 0 && i <= len(devices) {
		return devices[i-1], nil
	}

	for _, d := range devices {
		if strings.HasPrefix(d.Name, name) && d.MaxOutputChannels > 0 {
			return d, nil
		}
	}

	return nil, fmt.Errorf("audio device not found: %s", name)
}

// ListOutputDevices gives "index: name" for every device with outputs.
func ListOutputDevices() ([]string, error) {
	var devices, err = portaudio.Devices()
	if err != nil {
		return nil, err
	}

	var out []string

	for i, d := range devices {
		if d.MaxOutputChannels > 0 {
			out = append(out, fmt.Sprintf("%d: %s (%d ch, %.0f Hz)", i+1, d.Name, d.MaxOutputChannels, d.DefaultSampleRate))
		}
	}

	return out, nil
}

/*-------------------------------------------------------------------
 *
 * Name:        OpenAudioOutput
 *
 * Purpose:     Open and start an output stream driven by the keyer.
 *
 * Inputs:	device	- See findOutputDevice.
 *
 *		audio	- Format.  Must match the keyer.
 *
 *		k	- Keyer producing the blocks.
 *
 * Description:	portaudio.Initialize must have been called.
 *
 *--------------------------------------------------------------------*/

func OpenAudioOutput(device string, audio AudioConfig, k *Keyer) (*AudioOutput, error) {
	if err := audio.Validate(); err != nil {
		return nil, err
	}

	var info, err = findOutputDevice(device)
	if err != nil {
		return nil, err
	}

	var p = portaudio.LowLatencyParameters(nil, info)
	p.Output.Channels = audio.Channels
	p.SampleRate = float64(audio.SampleRate)
	p.FramesPerBuffer = audio.BlockSize

	var a = &AudioOutput{keyer: k}

	a.stream, err = portaudio.OpenStream(p, a.callback)
	if err != nil {
		return nil, fmt.Errorf("open audio stream on %s: %w", info.Name, err)
	}

	if err := a.stream.Start(); err != nil {
		a.stream.Close()
		return nil, fmt.Errorf("start audio stream on %s: %w", info.Name, err)
	}

	Logger().Info("audio output", "device", info.Name, "rate", audio.SampleRate,
		"channels", audio.Channels, "frames", audio.BlockSize)

	return a, nil
}

func (a *AudioOutput) callback(out []int16) {
	clear(out)
	a.keyer.ProcessBlock(out)
}

func (a *AudioOutput) Close() error {
	if a.stream == nil {
		return nil
	}

	var stopErr = a.stream.Stop()
	var closeErr = a.stream.Close()
	a.stream = nil

	if stopErr != nil {
		return stopErr
	}

	return closeErr
}
