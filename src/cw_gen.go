package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Per audio block entry point of the CW generator.
 *
 * Description:	ProcessBlock is called once for every fixed size block
 *		on its way to the audio output.  That cadence is the
 *		keyer's clock: every timer here counts blocks.
 *
 *		The external key line (and, in straight mode, either
 *		paddle) keys the tone directly with its own edge
 *		tracking.  Otherwise, in the automatic modes, the block
 *		is handed to the iambic keyer.
 *
 *		All state lives in the Keyer.  Block processing and the
 *		configuration setters take the same lock, so a setting
 *		can only change between blocks.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"sync"
)

// Edge is the state of directly keyed tone.
type Edge int

const (
	EDGE_OFF Edge = iota
	EDGE_FALLING
	EDGE_STEADY
	EDGE_RISING
)

func (e Edge) String() string {
	switch e {
	case EDGE_OFF:
		return "off"
	case EDGE_FALLING:
		return "falling"
	case EDGE_STEADY:
		return "steady"
	case EDGE_RISING:
		return "rising"
	}

	return fmt.Sprintf("Edge(%d)", int(e))
}

const DEFAULT_SAMPLE_RATE = 48000

var ErrBadSampleRate = errors.New("sample rate must be greater than zero")
var ErrBadChannels = errors.New("audio channels must be 1 or 2")

// AudioConfig describes the stream passed to ProcessBlock.
type AudioConfig struct {
	SampleRate uint32 `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`   // 2 for interleaved I/Q, 1 for mono.
	Volume     int    `yaml:"volume"`     // Sidetone level 0 .. 256.
	BlockSize  int    `yaml:"block_size"` // Frames per block.  One block is one keyer tick.
	SmoothLen  int    `yaml:"smooth_len"` // Envelope calls per window step.
}

func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate: DEFAULT_SAMPLE_RATE,
		Channels:   2,
		Volume:     DEFAULT_VOLUME,
		BlockSize:  DEFAULT_SAMPLE_RATE / 1000,
		SmoothLen:  DEFAULT_SMOOTH_LEN,
	}
}

func (a AudioConfig) Validate() error {
	if a.SampleRate == 0 {
		return ErrBadSampleRate
	}

	if a.Channels != 1 && a.Channels != 2 {
		return fmt.Errorf("%w: got %d", ErrBadChannels, a.Channels)
	}

	if a.Volume < 0 || a.Volume > MAX_SCALING {
		return fmt.Errorf("volume %d out of range 0 .. %d", a.Volume, MAX_SCALING)
	}

	if a.BlockSize <= 0 {
		return fmt.Errorf("block size %d must be positive", a.BlockSize)
	}

	return nil
}

// Keyer is one CW generator: configuration, keyer state, envelope and
// oscillator.
type Keyer struct {
	mu sync.Mutex

	config     Config
	timing     Timing
	sampleRate uint32

	lines *KeyLines
	rx    KeyReleaser

	tone   Sidetone
	iambic Iambic
	edge   Edge
}

/*-------------------------------------------------------------------
 *
 * Name:        NewKeyer
 *
 * Purpose:     Set up a keyer ready for the first block.
 *
 * Inputs:	cfg	- Mode, speed and pitch.  Speed is clamped.
 *
 *		audio	- Stream format.
 *
 *		lines	- Shared paddle / key line state.
 *
 *		rx	- Told when the key has been released.  May be nil.
 *
 *--------------------------------------------------------------------*/

func NewKeyer(cfg Config, audio AudioConfig, lines *KeyLines, rx KeyReleaser) (*Keyer, error) {
	if err := audio.Validate(); err != nil {
		return nil, fmt.Errorf("keyer audio config: %w", err)
	}

	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("keyer config: %w: %d", ErrBadMode, int(cfg.Mode))
	}

	if lines == nil {
		lines = new(KeyLines)
	}

	var k = &Keyer{
		config:     cfg,
		sampleRate: audio.SampleRate,
		lines:      lines,
		rx:         rx,
	}

	k.tone.Volume = audio.Volume
	k.tone.Channels = audio.Channels
	k.tone.Envelope.SmoothLen = audio.SmoothLen

	k.config.SpeedWPM = ClampSpeed(cfg.SpeedWPM)
	k.tone.DDS.SetFrequency(cfg.PitchHz, k.sampleRate, false)
	k.resetKeyer()

	return k, nil
}

// resetKeyer recomputes timing and puts the keyer back to idle.
// Caller holds the lock.
func (k *Keyer) resetKeyer() {
	k.timing = CalcTiming(k.config.SpeedWPM)
	k.iambic.Reset()
	k.edge = EDGE_OFF
}

/*-------------------------------------------------------------------
 *
 * Name:        ProcessBlock
 *
 * Purpose:     Generate CW for one audio block.
 *
 * Inputs:	buf	- Interleaved I/Q (or mono) samples.  The tone is
 *			  mixed into whatever is already there.
 *
 * Description:	Bounded work, no allocation, no blocking other than
 *		the keyer lock.
 *
 *--------------------------------------------------------------------*/

func (k *Keyer) ProcessBlock(buf []int16) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var p = k.lines.Snapshot()

	var keyed = p.DTR || (k.config.Mode == MODE_STRAIGHT && (p.Dah || p.Dit))

	if keyed {
		if k.edge == EDGE_OFF {
			k.tone.Envelope.Reset()
			k.iambic.cancelBreak()
			k.edge = EDGE_RISING
		}
	} else if k.edge != EDGE_OFF {
		k.edge = EDGE_FALLING
	}

	if k.edge != EDGE_OFF {
		k.directTone(buf)
		return
	}

	if k.config.Mode.Automatic() {
		k.iambic.Process(buf, p, k.config.Mode, k.timing, &k.tone, k.rx)
	}
}

// directTone keys the tone straight from the key line.  Once a falling
// edge has ramped all the way down the rest of the block is left as it
// was and the PTT side is told the key is up.
func (k *Keyer) directTone(buf []int16) {
	var fs = k.tone.frameSize()

	for j := 0; j+fs <= len(buf); j += fs {
		var i, q = k.tone.next()

		if k.edge == EDGE_RISING {
			k.tone.shape(&i, &q, true)

			if k.tone.Envelope.FullyOn() {
				k.edge = EDGE_STEADY
			}
		}

		if k.edge == EDGE_FALLING {
			k.tone.shape(&i, &q, false)

			if k.tone.Envelope.FullyOff() {
				k.edge = EDGE_OFF
			}
		}

		k.tone.mix(buf[j:j+fs], i, q)

		if k.edge == EDGE_OFF {
			if k.rx != nil {
				k.rx.KeyReleased()
			}
			break
		}
	}
}

// SetMode changes the keyer mode and resets the keyer.
func (k *Keyer) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrBadMode, int(m))
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.config.Mode = m
	k.resetKeyer()

	Logger().Info("keyer mode", "mode", m)

	return nil
}

// SetSpeed changes the speed, clamped to MIN_SPEED_WPM .. MAX_SPEED_WPM,
// and resets the keyer.
func (k *Keyer) SetSpeed(wpm uint) {
	var clamped = ClampSpeed(wpm)
	if clamped != wpm {
		Logger().Warn("keyer speed out of range, clamped", "requested", wpm, "wpm", clamped)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.config.SpeedWPM = clamped
	k.resetKeyer()

	Logger().Info("keyer speed", "wpm", clamped, "dit", k.timing.DitTicks, "dah", k.timing.DahTicks)
}

// SetPitch retunes the sidetone without a phase jump and resets the keyer.
func (k *Keyer) SetPitch(hz uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.config.PitchHz = hz
	k.tone.DDS.SetFrequency(hz, k.sampleRate, true)
	k.resetKeyer()

	Logger().Info("keyer pitch", "hz", hz)
}

// ConfigureSampleRate must be called when the audio stream rate changes.
func (k *Keyer) ConfigureSampleRate(hz uint32) error {
	if hz == 0 {
		return ErrBadSampleRate
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.sampleRate = hz
	k.tone.DDS.SetFrequency(k.config.PitchHz, hz, true)

	Logger().Debug("keyer sample rate", "hz", hz, "step", k.tone.DDS.Step())

	return nil
}

// SetVolume sets the sidetone level, clamped to 0 .. 256.
func (k *Keyer) SetVolume(v int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.tone.Volume = max(0, min(MAX_SCALING, v))
}

func (k *Keyer) Config() Config {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.config
}

func (k *Keyer) Timing() Timing {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.timing
}

func (k *Keyer) SampleRate() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.sampleRate
}

func (k *Keyer) Runtime() RuntimeState {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.iambic.Runtime()
}

func (k *Keyer) EnvelopeIndex() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.tone.Envelope.Index()
}

func (k *Keyer) Edge() Edge {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.edge
}

// Lines gives access to the key inputs this keyer reads.
func (k *Keyer) Lines() *KeyLines {
	return k.lines
}
