package keyer

import "sync/atomic"

// PaddleState is one consistent reading of the key inputs, taken once
// per audio block.
type PaddleState struct {
	Dah bool
	Dit bool
	DTR bool // External key line, e.g. from a logging program.
}

// KeyLines holds the key contact state.  It is written from hardware
// event handlers and read by the audio path, so every field is atomic.
type KeyLines struct {
	dah atomic.Bool
	dit atomic.Bool
	dtr atomic.Bool
	rts atomic.Bool // External PTT.  Not a key input, but it holds off RX.
}

func (k *KeyLines) SetDah(on bool) { k.dah.Store(on) }
func (k *KeyLines) SetDit(on bool) { k.dit.Store(on) }
func (k *KeyLines) SetDTR(on bool) { k.dtr.Store(on) }
func (k *KeyLines) SetRTS(on bool) { k.rts.Store(on) }

func (k *KeyLines) Dah() bool { return k.dah.Load() }
func (k *KeyLines) Dit() bool { return k.dit.Load() }
func (k *KeyLines) DTR() bool { return k.dtr.Load() }
func (k *KeyLines) RTS() bool { return k.rts.Load() }

// Snapshot reads the paddles and key line.
func (k *KeyLines) Snapshot() PaddleState {
	return PaddleState{
		Dah: k.dah.Load(),
		Dit: k.dit.Load(),
		DTR: k.dtr.Load(),
	}
}

// Busy is true if anything is holding the transmitter on.
func (k *KeyLines) Busy() bool {
	return k.dah.Load() || k.dit.Load() || k.dtr.Load() || k.rts.Load()
}

// KeyReleaser is told when the key has been released and the radio
// may return to receive after its timeout.
type KeyReleaser interface {
	KeyReleased()
}

// KeyReleaserFunc adapts a function to KeyReleaser.
type KeyReleaserFunc func()

func (f KeyReleaserFunc) KeyReleased() { f() }
