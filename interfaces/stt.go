package interfaces

import "context"

// SpeechToText is the interface for the voice recognition collaborator.
type SpeechToText interface {
	// Listen captures audio from the default microphone until a final
	// transcript is recognized or the context expires. An empty string
	// means nothing was heard.
	Listen(ctx context.Context) (string, error)
	Close()
}

// Synthesizer is the interface for the text-to-speech collaborator.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Close()
}
