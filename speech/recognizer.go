// Package speech wraps the Azure Cognitive Services Speech SDK for voice
// input (speech-to-text) and voice output (text-to-speech).
package speech

import (
	"context"
	"fmt"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	sdk "github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/sirupsen/logrus"

	"github.com/parallelpaths/game-companion/config"
)

// Recognizer captures speech from the default microphone.
type Recognizer struct {
	config *sdk.SpeechConfig
	log    *logrus.Entry
}

// NewRecognizer validates the credentials and prepares the speech config.
// The SDK recognizer itself is created per capture so each Listen call gets
// a clean session.
func NewRecognizer(cfg config.SpeechConfig, log *logrus.Entry) (*Recognizer, error) {
	if cfg.SubscriptionKey == "" || cfg.Region == "" {
		return nil, fmt.Errorf("speech recognition requires a subscription key and region")
	}

	speechConfig, err := sdk.NewSpeechConfigFromSubscription(cfg.SubscriptionKey, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech config: %w", err)
	}
	if err := speechConfig.SetSpeechRecognitionLanguage(cfg.Language); err != nil {
		speechConfig.Close()
		return nil, fmt.Errorf("failed to set recognition language: %w", err)
	}

	return &Recognizer{
		config: speechConfig,
		log:    log.WithField("service", "azure-stt"),
	}, nil
}

// Listen starts continuous recognition on the default microphone and returns
// the first final transcript. It stops when the context expires; an empty
// string means nothing was heard in time.
func (r *Recognizer) Listen(ctx context.Context) (string, error) {
	audioConfig, err := audio.NewAudioConfigFromDefaultMicrophoneInput()
	if err != nil {
		return "", fmt.Errorf("could not open default microphone: %w", err)
	}
	defer audioConfig.Close()

	recognizer, err := sdk.NewSpeechRecognizerFromConfig(r.config, audioConfig)
	if err != nil {
		return "", fmt.Errorf("could not create speech recognizer: %w", err)
	}
	defer recognizer.Close()

	resultChan := make(chan string, 1)
	errChan := make(chan error, 1)

	recognizer.SessionStarted(func(e sdk.SessionEventArgs) {
		r.log.Debug("azure recognition started")
	})
	recognizer.Recognized(func(e sdk.SpeechRecognitionEventArgs) {
		if e.Result.Text == "" {
			return
		}
		select {
		case resultChan <- e.Result.Text:
		default:
		}
	})
	recognizer.Canceled(func(e sdk.SpeechRecognitionCanceledEventArgs) {
		select {
		case errChan <- fmt.Errorf("azure recognition canceled: %s", e.ErrorDetails):
		default:
		}
	})

	if err := <-recognizer.StartContinuousRecognitionAsync(); err != nil {
		return "", fmt.Errorf("error starting azure recognition: %w", err)
	}
	defer func() {
		<-recognizer.StopContinuousRecognitionAsync()
	}()

	select {
	case text := <-resultChan:
		r.log.WithField("transcript_len", len(text)).Debug("transcript recognized")
		return text, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		// Nothing heard before the listen window closed.
		return "", nil
	}
}

// Close releases the underlying speech config.
func (r *Recognizer) Close() {
	if r.config != nil {
		r.config.Close()
	}
}
