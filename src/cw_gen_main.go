package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Render keyer output to a .WAV file.
 *
 * Description:	Runs a paddle script, or text sent on the external key
 *		line, through the keyer one block at a time and writes
 *		what comes out.  Useful for listening to the keyer modes
 *		and for checking timing with an audio editor.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
)

const DEFAULT_OUTPUT_PATTERN = "cw-%Y%m%d-%H%M%S.wav"

func CWGenMain() {
	var configFile = pflag.StringP("config", "c", "", "YAML configuration file.")
	var outputFile = pflag.StringP("output-file", "o", "", "Write to this .wav file.  Default is a name made from --output-pattern.")
	var outputPattern = pflag.String("output-pattern", DEFAULT_OUTPUT_PATTERN, "strftime pattern for the default output file name.")
	var scriptFile = pflag.StringP("script", "s", "", "Paddle script: lines of \"<ms> <dit|dah|key|rts> <down|up>\".")
	var text = pflag.StringP("text", "t", "", "Send this text on the external key line.")
	var textWPM = pflag.Int("text-wpm", 0, "Speed for --text.  Default is the keyer speed.")
	var modeStr = pflag.StringP("mode", "m", "", "Keyer mode: iambic-a, iambic-b, ultimate, straight.")
	var speed = pflag.UintP("speed", "w", 0, "Keyer speed in WPM.")
	var pitch = pflag.Uint32P("pitch", "p", 0, "Sidetone pitch in Hz.")
	var sampleRate = pflag.Uint32P("sample-rate", "r", 0, "Audio sample rate.")
	var mono = pflag.Bool("mono", false, "One channel of sidetone rather than I/Q.")
	var volume = pflag.IntP("volume", "V", -1, "Tone level, 0 - 256.")
	var tailMS = pflag.Int("tail", 500, "Milliseconds to keep going after the last event.")
	var logLevel = pflag.StringP("log-level", "l", "", "debug, info, warn or error.")
	var showVersion = pflag.BoolP("version", "v", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Generate audio file for CW keyer output.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [text]\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  %s -o cq.wav -w 25 \"CQ CQ DE N0CALL\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "    Text is keyed like a straight key, at --text-wpm.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  %s -o squeeze.wav -m iambic-a -s squeeze.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "    Paddle events from a script go through the iambic keyer.\n")
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		PrintVersion("cw_gen", false)
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

	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}

	if err := SetLogLevel(settings.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Bad log level: %s\n", err)
		os.Exit(1)
	}

	if *modeStr != "" {
		var m, err = ParseMode(*modeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			pflag.Usage()
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

	if *sampleRate != 0 {
		settings.Audio.SampleRate = *sampleRate
		settings.Audio.BlockSize = max(1, int(*sampleRate/1000))
	}

	if *mono {
		settings.Audio.Channels = 1
	}

	if *volume >= 0 {
		settings.Audio.Volume = *volume
	}

	/*
	 * What to send.
	 */

	var events []KeyEvent

	if *scriptFile != "" {
		var f, err = os.Open(*scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Can't open script: %s\n", err)
			os.Exit(1)
		}

		events, err = ParseScript(f)
		f.Close()

		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", *scriptFile, err)
			os.Exit(1)
		}
	}

	var message = *text
	if message == "" && len(pflag.Args()) > 0 {
		message = strings.Join(pflag.Args(), " ")
	}

	if message != "" {
		var wpm = *textWPM
		if wpm <= 0 {
			wpm = int(settings.Keyer.SpeedWPM)
		}

		var start = 0
		if len(events) > 0 {
			start = events[len(events)-1].AtMS + 500
		}

		var textEvents, _ = MorseTimeline(message, wpm, start, INPUT_KEY)
		events = append(events, textEvents...)
	}

	if len(events) == 0 {
		fmt.Fprintf(os.Stderr, "Nothing to send.  Give --script, --text or text on the command line.\n")
		pflag.Usage()
		os.Exit(1)
	}

	/*
	 * Where to put it.
	 */

	var fname = *outputFile
	if fname == "" {
		var formatted, err = strftime.Format(*outputPattern, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad output pattern %q: %s\n", *outputPattern, err)
			os.Exit(1)
		}

		fname = formatted
	}

	var stats, err = renderToFile(fname, settings, events, *tailMS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s: %d blocks, %.0f ms, tone in %d blocks, PTT on for %d blocks.\n",
		fname, stats.Blocks, stats.DurationMS, stats.ToneBlocks, stats.TXBlocks)
}

func renderToFile(fname string, settings Settings, events []KeyEvent, tailMS int) (RenderStats, error) {
	var lines = new(KeyLines)
	var ptt = NewPTT(lines, nil, false)
	ptt.KeyTimeout = settings.PTT.Timeout

	var k, err = NewKeyer(settings.Keyer, settings.Audio, lines, ptt)
	if err != nil {
		return RenderStats{}, err
	}

	var f, cerr = os.Create(fname) //nolint:gosec // We expect to write to a user-supplied file from CLI
	if cerr != nil {
		return RenderStats{}, fmt.Errorf("couldn't open %s for write: %w", fname, cerr)
	}
	defer f.Close()

	var w, werr = NewWavWriter(f, settings.Audio.SampleRate, settings.Audio.Channels)
	if werr != nil {
		return RenderStats{}, fmt.Errorf("%s: %w", fname, werr)
	}

	var stats, rerr = Render(k, ptt, settings.Audio, settings.PTT.TickInterval, events, tailMS, w)
	if rerr != nil {
		return stats, fmt.Errorf("%s: %w", fname, rerr)
	}

	if err := w.Close(); err != nil {
		return stats, fmt.Errorf("%s: %w", fname, err)
	}

	return stats, nil
}
