package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Configuration file.
 *
 * Description:	A YAML document with a section per concern.  Anything
 *		left out keeps its default, which matches the radio's
 *		power on settings: Iambic B, 14 WPM, 700 Hz, 48 kHz audio
 *		in 1 ms blocks.
 *
 *		Example:
 *
 *		keyer:
 *		  mode: iambic-a
 *		  speed_wpm: 22
 *		  pitch_hz: 650
 *		paddles:
 *		  chip: gpiochip0
 *		  dit: 17
 *		  dah: 27
 *		ptt:
 *		  method: serial
 *		  port: /dev/ttyUSB0
 *		  line: rts
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_SPEED_WPM = 14
	DEFAULT_PITCH_HZ  = 700
)

const (
	PTT_METHOD_NONE   = "none"
	PTT_METHOD_GPIO   = "gpio"
	PTT_METHOD_SERIAL = "serial"
	PTT_METHOD_CM108  = "cm108"
)

func DefaultConfig() Config {
	return Config{
		Mode:     MODE_IAMBIC_B,
		SpeedWPM: DEFAULT_SPEED_WPM,
		PitchHz:  DEFAULT_PITCH_HZ,
	}
}

type PTTConfig struct {
	Method string `yaml:"method"`
	Invert bool   `yaml:"invert"`

	// gpio
	Chip   string `yaml:"chip"`
	Offset int    `yaml:"offset"`

	// serial
	Port    string `yaml:"port"`
	Baud    int    `yaml:"baud"`
	Line    string `yaml:"line"`     // rts or dtr.
	Line2   string `yaml:"line2"`    // Optional second line, driven in opposite phase.
	KeyLine string `yaml:"key_line"` // dsr, cts or dcd used as the external key.

	// cm108.  An empty device is looked up from the audio device name.
	Device string `yaml:"device"`
	GPIO   int    `yaml:"gpio"`

	Timeout      int64         `yaml:"timeout_ticks"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

func DefaultPTTConfig() PTTConfig {
	return PTTConfig{
		Method:       PTT_METHOD_NONE,
		Chip:         DEFAULT_GPIO_CHIP,
		Offset:       -1,
		Line:         "rts",
		GPIO:         DEFAULT_CM108_GPIO,
		Timeout:      DEFAULT_KEY_TIMEOUT,
		TickInterval: DEFAULT_TICK_INTERVAL,
	}
}

type Settings struct {
	Keyer       Config      `yaml:"keyer"`
	Audio       AudioConfig `yaml:"audio"`
	AudioDevice string      `yaml:"audio_device"`
	Paddles     PaddleGPIO  `yaml:"paddles"`
	PTT         PTTConfig   `yaml:"ptt"`
	LogLevel    string      `yaml:"log_level"`
}

func DefaultSettings() Settings {
	return Settings{
		Keyer:    DefaultConfig(),
		Audio:    DefaultAudioConfig(),
		Paddles:  DefaultPaddleGPIO(),
		PTT:      DefaultPTTConfig(),
		LogLevel: "info",
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        ParseSettings
 *
 * Purpose:     Decode a configuration document over the defaults.
 *
 * Description:	Unknown keys are an error, to catch typos.  Speed is
 *		clamped rather than rejected.
 *
 *--------------------------------------------------------------------*/

func ParseSettings(data []byte) (Settings, error) {
	var s = DefaultSettings()

	var dec = yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("decode config yaml: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

func LoadSettings(path string) (Settings, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config file: %w", err)
	}

	var s, perr = ParseSettings(data)
	if perr != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, perr)
	}

	return s, nil
}

func (s *Settings) Validate() error {
	if !s.Keyer.Mode.Valid() {
		return fmt.Errorf("keyer: %w: %d", ErrBadMode, int(s.Keyer.Mode))
	}

	s.Keyer.SpeedWPM = ClampSpeed(s.Keyer.SpeedWPM)

	if err := s.Audio.Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}

	s.PTT.Method = strings.ToLower(s.PTT.Method)

	switch s.PTT.Method {
	case "", PTT_METHOD_NONE:
		s.PTT.Method = PTT_METHOD_NONE
	case PTT_METHOD_GPIO:
		if s.PTT.Offset < 0 {
			return fmt.Errorf("ptt: %w: gpio method needs an offset", ErrBadGPIO)
		}
	case PTT_METHOD_SERIAL:
		if s.PTT.Port == "" {
			return errors.New("ptt: serial method needs a port")
		}

		if _, err := outputModemBit(s.PTT.Line); err != nil {
			return fmt.Errorf("ptt: line: %w", err)
		}

		if s.PTT.Line2 != "" {
			if _, err := outputModemBit(s.PTT.Line2); err != nil {
				return fmt.Errorf("ptt: line2: %w", err)
			}
		}
	case PTT_METHOD_CM108:
		if s.PTT.GPIO < 1 || s.PTT.GPIO > 8 {
			return fmt.Errorf("ptt: %w: CM108 GPIO number %d must be in range of 1 thru 8", ErrBadGPIO, s.PTT.GPIO)
		}
	default:
		return fmt.Errorf("ptt: unknown method %q", s.PTT.Method)
	}

	if s.PTT.KeyLine != "" {
		if s.PTT.Port == "" {
			return errors.New("ptt: key_line needs a serial port")
		}

		if _, err := inputModemBit(s.PTT.KeyLine); err != nil {
			return fmt.Errorf("ptt: %w", err)
		}
	}

	if s.PTT.Timeout < 0 {
		return fmt.Errorf("ptt: timeout_ticks %d must not be negative", s.PTT.Timeout)
	}

	return nil
}

// Marshal writes the settings back out, e.g. for --dump-config.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
