package keyer

/*------------------------------------------------------------------
 *
 * Purpose:   	Write 16 bit PCM .WAV files.
 *
 * Description:	The header is written first with zero lengths and
 *		fixed up on Close, so the output must be seekable.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

type WavHeader struct { /* .WAV file header. */
	Riff           [4]byte /* "RIFF" */
	FileSize       int32   /* file length - 8 */
	Wave           [4]byte /* "WAVE" */
	Fmt            [4]byte /* "fmt " */
	FmtSize        int32   /* 16. */
	FormatTag      int16   /* 1 for PCM. */
	Channels       int16   /* 1 for mono, 2 for stereo. */
	SamplesPerSec  int32   /* sampling freq, Hz. */
	AvgBytesPerSec int32   /* = BlockAlign * SamplesPerSec. */
	BlockAlign     int16   /* = BitsPerSample / 8 * Channels. */
	BitsPerSample  int16   /* 16. */
	Data           [4]byte /* "data" */
	DataSize       int32   /* number of bytes following. */
}

func newWavHeader(sampleRate uint32, channels int) WavHeader {
	var h = WavHeader{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		FormatTag:     1,
		Channels:      int16(channels),
		SamplesPerSec: int32(sampleRate),
		BitsPerSample: 16,
		Data:          [4]byte{'d', 'a', 't', 'a'},
	}

	h.BlockAlign = h.BitsPerSample / 8 * h.Channels
	h.AvgBytesPerSec = int32(h.BlockAlign) * h.SamplesPerSec

	return h
}

// WavWriter takes audio blocks and writes them to a .WAV file.
type WavWriter struct {
	out    io.WriteSeeker
	buf    *bufio.Writer
	header WavHeader
	bytes  int
}

func NewWavWriter(out io.WriteSeeker, sampleRate uint32, channels int) (*WavWriter, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrBadChannels, channels)
	}

	var w = &WavWriter{
		out:    out,
		header: newWavHeader(sampleRate, channels),
	}

	if err := binary.Write(out, binary.LittleEndian, w.header); err != nil {
		return nil, fmt.Errorf("couldn't write wav header: %w", err)
	}

	w.buf = bufio.NewWriter(out)

	return w, nil
}

// WriteBlock appends interleaved samples.
func (w *WavWriter) WriteBlock(samples []int16) error {
	if err := binary.Write(w.buf, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("couldn't write wav data: %w", err)
	}

	w.bytes += 2 * len(samples)

	return nil
}

// Frames is the number of sample frames written so far.
func (w *WavWriter) Frames() int {
	return w.bytes / int(w.header.BlockAlign)
}

// Close fills in the lengths.  It does not close the underlying file.
func (w *WavWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("couldn't write wav data: %w", err)
	}

	w.header.FileSize = int32(w.bytes + binary.Size(w.header) - 8)
	w.header.DataSize = int32(w.bytes)

	if _, err := w.out.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("couldn't seek in audio file: %w", err)
	}

	if err := binary.Write(w.out, binary.LittleEndian, w.header); err != nil {
		return fmt.Errorf("couldn't write wav header: %w", err)
	}

	var _, err = w.out.Seek(0, io.SeekEnd)

	return err
}

// ReadWavHeader reads back a header written by WavWriter.
func ReadWavHeader(r io.Reader) (WavHeader, error) {
	var h WavHeader

	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, err
	}

	if string(h.Riff[:]) != "RIFF" || string(h.Wave[:]) != "WAVE" {
		return h, fmt.Errorf("not a WAV file")
	}

	return h, nil
}
