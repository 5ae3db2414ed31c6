package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Run the keyer offline from a list of key events.
 *
 * Description:	Blocks are produced back to back instead of in real
 *		time.  Before each block the events that are due are
 *		applied through the PTT controller, exactly as the
 *		hardware handlers would, and the PTT tick runs at its
 *		usual interval measured in audio time.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"time"
)

// BlockWriter receives each finished block.
type BlockWriter interface {
	WriteBlock(samples []int16) error
}

type RenderStats struct {
	Blocks     int
	ToneBlocks int // Blocks with any non zero sample.
	TXBlocks   int // Blocks generated while PTT was on.
	TXSwitches int // Number of PTT changes.
	FinalTX    bool
	DurationMS float64
}

/*-------------------------------------------------------------------
 *
 * Name:        Render
 *
 * Purpose:     Generate audio for key events.
 *
 * Inputs:	k	- Keyer.  Its KeyReleaser should be ptt.
 *
 *		ptt	- PTT controller sharing k's key lines.
 *
 *		audio	- Block size and format.  Must match k.
 *
 *		events	- In time order.
 *
 *		tailMS	- Keep going this long after the last event.
 *
 *		out	- Gets every block.
 *
 *--------------------------------------------------------------------*/

func Render(k *Keyer, ptt *PTT, audio AudioConfig, tick time.Duration, events []KeyEvent, tailMS int, out BlockWriter) (RenderStats, error) {
	var stats RenderStats

	if err := audio.Validate(); err != nil {
		return stats, err
	}

	var blockMS = 1000 * float64(audio.BlockSize) / float64(audio.SampleRate)

	if tick <= 0 {
		tick = DEFAULT_TICK_INTERVAL
	}

	var tickEvery = max(1, int(float64(tick.Milliseconds())/blockMS+0.5))

	var endMS = tailMS
	if len(events) > 0 {
		endMS += events[len(events)-1].AtMS
	}

	var nblocks = int(float64(endMS)/blockMS + 0.5)
	var buf = make([]int16, audio.BlockSize*audio.Channels)
	var next = 0
	var wasTX = ptt.IsTX()

	for b := 0; b < nblocks; b++ {
		var now = float64(b) * blockMS

		for next < len(events) && float64(events[next].AtMS) <= now {
			events[next].Apply(ptt)
			next++
		}

		clear(buf)
		k.ProcessBlock(buf)

		if b%tickEvery == tickEvery-1 {
			ptt.Tick()
		}

		if out != nil {
			if err := out.WriteBlock(buf); err != nil {
				return stats, fmt.Errorf("block %d: %w", b, err)
			}
		}

		stats.Blocks++

		for _, s := range buf {
			if s != 0 {
				stats.ToneBlocks++
				break
			}
		}

		var tx = ptt.IsTX()
		if tx {
			stats.TXBlocks++
		}

		if tx != wasTX {
			stats.TXSwitches++
			wasTX = tx
		}
	}

	stats.FinalTX = ptt.IsTX()
	stats.DurationMS = float64(stats.Blocks) * blockMS

	Logger().Debug("render done", "blocks", stats.Blocks, "tone", stats.ToneBlocks, "tx", stats.TXBlocks)

	return stats, nil
}
