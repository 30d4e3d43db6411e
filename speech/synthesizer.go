package speech

import (
	"context"
	"fmt"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	sdk "github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/sirupsen/logrus"

	"github.com/parallelpaths/game-companion/config"
)

// Synthesizer speaks text through the default audio output.
type Synthesizer struct {
	config *sdk.SpeechConfig
	log    *logrus.Entry
}

// NewSynthesizer prepares the text-to-speech config.
func NewSynthesizer(cfg config.SpeechConfig, log *logrus.Entry) (*Synthesizer, error) {
	if cfg.SubscriptionKey == "" || cfg.Region == "" {
		return nil, fmt.Errorf("speech synthesis requires a subscription key and region")
	}

	speechConfig, err := sdk.NewSpeechConfigFromSubscription(cfg.SubscriptionKey, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech config: %w", err)
	}
	if err := speechConfig.SetSpeechSynthesisLanguage(cfg.Language); err != nil {
		speechConfig.Close()
		return nil, fmt.Errorf("failed to set synthesis language: %w", err)
	}
	if cfg.Voice != "" {
		if err := speechConfig.SetSpeechSynthesisVoiceName(cfg.Voice); err != nil {
			speechConfig.Close()
			return nil, fmt.Errorf("failed to set synthesis voice: %w", err)
		}
	}

	return &Synthesizer{
		config: speechConfig,
		log:    log.WithField("service", "azure-tts"),
	}, nil
}

// Speak synthesizes the text on the default speaker and waits for playback
// to start. The context bounds how long we wait for the service.
func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	audioConfig, err := audio.NewAudioConfigFromDefaultSpeakerOutput()
	if err != nil {
		return fmt.Errorf("could not open default speaker: %w", err)
	}
	defer audioConfig.Close()

	synthesizer, err := sdk.NewSpeechSynthesizerFromConfig(s.config, audioConfig)
	if err != nil {
		return fmt.Errorf("failed to create speech synthesizer: %w", err)
	}
	defer synthesizer.Close()

	task := synthesizer.SpeakTextAsync(text)

	var outcome sdk.SpeechSynthesisOutcome
	select {
	case outcome = <-task:
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for synthesis result: %w", ctx.Err())
	}
	defer outcome.Close()

	if outcome.Error != nil {
		return fmt.Errorf("synthesis outcome error: %w", outcome.Error)
	}
	if outcome.Result.Reason != common.SynthesizingAudioCompleted {
		cancellation, _ := sdk.NewCancellationDetailsFromSpeechSynthesisResult(outcome.Result)
		details := ""
		if cancellation != nil {
			details = cancellation.ErrorDetails
		}
		return fmt.Errorf("synthesis failed: reason=%s, details=%s", outcome.Result.Reason.String(), details)
	}

	s.log.WithField("text_len", len(text)).Debug("synthesis complete")
	return nil
}

// Close releases the underlying speech config.
func (s *Synthesizer) Close() {
	if s.config != nil {
		s.config.Close()
	}
}
