package scanner

import "context"

// Decoder owns the camera/decoder resource for one scan session. onDecode is
// called with each decoded code while active; the session decides which one
// counts.
type Decoder interface {
	Activate(ctx context.Context, container string, onDecode func(code string)) error
	Deactivate() error
}

// Cue plays the audible scan confirmation.
type Cue interface {
	Play(ctx context.Context) error
}

// NopCue is used when no device can play the cue.
type NopCue struct{}

func (NopCue) Play(context.Context) error { return nil }

const (
	topicDecoded = "decoded"
	topicCue     = "cue"
	cuePayload   = "beep"
)
