package ports

import (
	"context"
	"io"

	"smartivr/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate   int
	Channels     int
	InputFormat  string
	InputDevice  string
	OutputFormat string
}

// AudioSession is a live capture session holding the hardware input.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// RecognitionConfig describes provider-agnostic speech recognition settings.
type RecognitionConfig struct {
	LanguageTag    string
	SampleRate     int
	Channels       int
	InterimResults bool
}

// RecognitionSession is an active speech recognition session. Events is
// closed when the session ends; Err reports the terminal driver error, if
// any, once Events is closed.
type RecognitionSession interface {
	Events() <-chan domain.TranscriptEvent
	Err() error
	Close() error
}

// SpeechProvider starts speech recognition sessions. Available reports
// whether the capability exists on this host; Start must not be called when
// it returns false.
type SpeechProvider interface {
	Available() bool
	Start(ctx context.Context, cfg RecognitionConfig) (RecognitionSession, error)
}

// BlobStore uploads a capture artifact to durable storage and returns an
// opaque URL handle for it.
type BlobStore interface {
	Put(ctx context.Context, name string, mime string, data []byte) (string, error)
}

// ClassifyRequest carries the primary signal for one classification.
// Exactly one of CaptureReference or Transcript is expected to be usable.
type ClassifyRequest struct {
	CaptureReference string
	Transcript       string
	LanguageTag      string
}

// Classifier produces a classification result. It never fails from the
// caller's point of view; failures are only observable inside the result.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) domain.RawResult
}

// KeyValue is the tab-scoped persistence boundary between flow steps.
// Get reports absence explicitly; callers treat absence as a valid state.
type KeyValue interface {
	Put(key string, value string)
	Get(key string) (string, bool)
	Delete(key string)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits flow state and events to the UI.
type EventSink interface {
	StepChanged(step domain.Step, reason domain.StepReason)
	ListeningChanged(state domain.ListenState)
	PartialTranscript(text string)
	Progress(frame domain.ProgressFrame)
	FlowError(code domain.ErrorCode, detail string)
}
