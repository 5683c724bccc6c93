package voice

import "context"

// TranscriptionError wraps an error from a Provider. Analyzer.Analyze does
// not return it: a transcription failure there yields an Analysis with an
// empty transcript and Degraded set (spec §4.6).
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return "voice: transcription failed: " + e.Err.Error() }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// Provider transcribes one complete utterance's 16kHz mono PCM audio.
type Provider interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}
