package chat

import "context"

// Speaker narrates assistant replies. Implementations live outside the
// core; the orchestrator behaves identically when narration is a no-op.
type Speaker interface {
	Speak(text string)
}

// Recognizer feeds transcribed speech into the conversation. onResult is
// called once per final transcript with the plain text, which callers pass
// to HandleUtterance exactly like typed input. Implementations must stop
// delivering results after Stop returns.
type Recognizer interface {
	Start(ctx context.Context, onResult func(text string)) error
	Stop() error
}

// NopSpeaker discards narration requests. Used when no speech synthesis
// collaborator is available (text-only mode).
type NopSpeaker struct{}

func (NopSpeaker) Speak(string) {}

// NopRecognizer never produces a transcript. Used in text-only mode so
// callers can hold a Recognizer unconditionally.
type NopRecognizer struct{}

func (NopRecognizer) Start(context.Context, func(string)) error { return nil }

func (NopRecognizer) Stop() error { return nil }
