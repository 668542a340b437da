package whisper

import (
	"context"
	"fmt"

	"github.com/vidscribe/vidscribe/internal/subtitle"
)

// TranscriptionRequest describes a single inference run.
type TranscriptionRequest struct {
	AudioPath string
	ModelPath string
	// Language is an ISO language code, or "auto" / empty for detection.
	Language string
}

// Engine runs speech-to-text inference and returns timed segments.
type Engine interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (subtitle.Transcript, error)
}

// TranscriptionError reports a failed model load or inference run.
type TranscriptionError struct {
	Audio string
	Err   error
}

func (e *TranscriptionError) Error() string {
	if e.Audio == "" {
		return fmt.Sprintf("transcription failed: %v", e.Err)
	}
	return fmt.Sprintf("transcribe %s: %v", e.Audio, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}
