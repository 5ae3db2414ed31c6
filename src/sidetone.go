package keyer

// Sidetone is the oscillator, envelope and mixing level shared by
// straight keying and the iambic keyer.
type Sidetone struct {
	DDS      DDS
	Envelope Envelope

	// Tone level when overlaid on the stream, 0 .. 256.
	Volume int

	// 2 for interleaved I/Q, 1 for mono.
	Channels int
}

const DEFAULT_VOLUME = 96

func (s *Sidetone) frameSize() int {
	if s.Channels == 1 {
		return 1
	}

	return 2
}

// next returns the raw oscillator output for one frame.  Mono uses I only.
func (s *Sidetone) next() (int16, int16) {
	return s.DDS.NextIQ()
}

func (s *Sidetone) shape(i *int16, q *int16, rising bool) {
	if s.Channels == 1 {
		s.Envelope.ApplyMono(i, rising)
		return
	}

	s.Envelope.Apply(i, q, rising)
}

func (s *Sidetone) mix(frame []int16, i int16, q int16) {
	frame[0] = MixInto(frame[0], i, s.Volume)

	if len(frame) > 1 {
		frame[1] = MixInto(frame[1], q, s.Volume)
	}
}
