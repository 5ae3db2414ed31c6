package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Live keyer: paddles in, sidetone or I/Q out, PTT.
 *
 * Description:	Paddle contacts come from GPIO lines and, optionally,
 *		an external key line on a serial port.  The sound card
 *		callback drives the keyer one block at a time.  PTT is
 *		switched by the PTT controller on its 10 ms tick.
 *
 *		With --menu, the settings menu is available on the
 *		terminal:
 *
 *			<  >	turn the knob
 *			l	long press (edit / store)
 *			s	short press (cancel)
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"
)

func CWKeyerMain() {
	var configFile = pflag.StringP("config", "c", "", "YAML configuration file.")
	var device = pflag.StringP("device", "d", "", "Audio output device: number or start of name.  Default is the system default.")
	var listDevices = pflag.BoolP("list-devices", "L", false, "List audio output devices and exit.")
	var modeStr = pflag.StringP("mode", "m", "", "Keyer mode: iambic-a, iambic-b, ultimate, straight.")
	var speed = pflag.UintP("speed", "w", 0, "Keyer speed in WPM.")
	var pitch = pflag.Uint32P("pitch", "p", 0, "Sidetone pitch in Hz.")
	var menu = pflag.Bool("menu", false, "Settings menu on the terminal.")
	var dumpConfig = pflag.Bool("dump-config", false, "Print the effective configuration and exit.")
	var logLevel = pflag.StringP("log-level", "l", "", "debug, info, warn or error.")
	var showVersion = pflag.BoolP("version", "v", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - CW keyer.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		PrintVersion("cwkeyer", false)
		os.Exit(0)
	}

	var settings = DefaultSettings()

	if *configFile != "" {
		var s, err = LoadSettings(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}

		settings = s
	}

	if *modeStr != "" {
		var m, err = ParseMode(*modeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}

		settings.Keyer.Mode = m
	}

	if *speed != 0 {
		settings.Keyer.SpeedWPM = ClampSpeed(*speed)
	}

	if *pitch != 0 {
		settings.Keyer.PitchHz = *pitch
	}

	if *device != "" {
		settings.AudioDevice = *device
	}

	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}

	if *dumpConfig {
		var out, err = settings.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}

		fmt.Print(string(out))

		return
	}

	if err := SetLogLevel(settings.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Bad log level: %s\n", err)
		os.Exit(1)
	}

	if err := portaudio.Initialize(); err != nil {
		Logger().Fatal("Failed to initialize PortAudio", "err", err)
	}
	defer portaudio.Terminate() //nolint:errcheck

	if *listDevices {
		var names, err = ListOutputDevices()
		if err != nil {
			Logger().Fatal("Can't list audio devices", "err", err)
		}

		for _, n := range names {
			fmt.Println(n)
		}

		return
	}

	if err := runKeyer(settings, *menu); err != nil {
		Logger().Error("keyer stopped", "err", err)
		os.Exit(1)
	}
}

func runKeyer(settings Settings, withMenu bool) error {
	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var lines = new(KeyLines)

	var out, err = OpenPTTOutput(settings.PTT, settings.AudioDevice)
	if err != nil {
		return fmt.Errorf("PTT: %w", err)
	}

	var ptt = NewPTT(lines, out, settings.PTT.Invert)
	ptt.KeyTimeout = settings.PTT.Timeout
	ptt.OnChange = func(tx bool) {
		Logger().Info("PTT", "tx", tx)
	}
	defer ptt.Close()

	var k, kerr = NewKeyer(settings.Keyer, settings.Audio, lines, ptt)
	if kerr != nil {
		return kerr
	}

	Logger().Info("keyer", "mode", settings.Keyer.Mode, "wpm", settings.Keyer.SpeedWPM, "pitch", settings.Keyer.PitchHz)

	if settings.Paddles.Enabled() {
		var paddles, perr = OpenPaddles(settings.Paddles, ptt)
		if perr != nil {
			return perr
		}
		defer paddles.Close()
	}

	if settings.PTT.KeyLine != "" {
		go func() {
			if err := PollSerialKey(ctx, settings.PTT.Port, settings.PTT.KeyLine, time.Millisecond, ptt.SetDTR); err != nil {
				Logger().Error("serial key line", "err", err)
			}
		}()
	}

	var audio, aerr = OpenAudioOutput(settings.AudioDevice, settings.Audio, k)
	if aerr != nil {
		return aerr
	}
	defer audio.Close()

	go ptt.Run(ctx, settings.PTT.TickInterval)

	if withMenu {
		go runMenu(ctx, NewMenu(k, ptt), os.Stdin)
	}

	<-ctx.Done()

	Logger().Info("shutting down")

	return nil
}

// runMenu reads knob and button actions from the terminal, one per line.
func runMenu(ctx context.Context, m *Menu, in *os.File) {
	var show = func() {
		for _, l := range m.Lines() {
			fmt.Println(l)
		}
		fmt.Println()
	}

	show()

	var scanner = bufio.NewScanner(in)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		var err error

		for _, c := range strings.TrimSpace(scanner.Text()) {
			switch c {
			case '<', '-':
				err = m.Turn(-1)
			case '>', '+':
				err = m.Turn(1)
			case 'l', 'L':
				err = m.LongPress()
			case 's', 'S':
				m.ShortPress()
			}

			if err != nil {
				break
			}
		}

		if err != nil {
			fmt.Printf("%s\n", err)
		}

		show()
	}
}
