package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"smartivr/internal/ports"
)

func TestCaptureSessionStartStopYieldsArtifact(t *testing.T) {
	t.Parallel()

	session := newFakeAudioSession([]byte("abc"), []byte("def"))
	capture := NewCaptureSession(
		&fakeAudioCapture{sessions: []ports.AudioSession{session}},
		ports.AudioConfig{},
		&fakeEventSink{},
		zerolog.Nop(),
	)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !capture.Active() {
		t.Fatalf("expected active session")
	}

	artifact, err := capture.Stop()
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if string(artifact.Data) != "abcdef" {
		t.Fatalf("unexpected artifact data: %q", artifact.Data)
	}
	if artifact.MIME != "audio/wav" {
		t.Fatalf("unexpected mime: %q", artifact.MIME)
	}
	if !session.isStopped() {
		t.Fatalf("hardware resource was not released")
	}
	if capture.Active() {
		t.Fatalf("expected no active session after stop")
	}
}

func TestCaptureSessionStopWithoutStart(t *testing.T) {
	t.Parallel()

	capture := NewCaptureSession(&fakeAudioCapture{}, ports.AudioConfig{}, &fakeEventSink{}, zerolog.Nop())
	if _, err := capture.Stop(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if err := capture.Abort(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestCaptureSessionRejectsSecondStart(t *testing.T) {
	t.Parallel()

	session := newFakeAudioSession([]byte("abc"))
	capture := NewCaptureSession(
		&fakeAudioCapture{sessions: []ports.AudioSession{session}},
		ports.AudioConfig{},
		&fakeEventSink{},
		zerolog.Nop(),
	)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := capture.Start(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}

	if _, err := capture.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestCaptureSessionStartFailureIsResourceUnavailable(t *testing.T) {
	t.Parallel()

	capture := NewCaptureSession(
		&fakeAudioCapture{startErr: errors.New("permission denied")},
		ports.AudioConfig{},
		&fakeEventSink{},
		zerolog.Nop(),
	)

	err := capture.Start(context.Background())
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Fatalf("expected ErrResourceUnavailable, got %v", err)
	}
	if capture.Active() {
		t.Fatalf("expected no active session after failed start")
	}
}

func TestCaptureSessionAbortReleasesHardware(t *testing.T) {
	t.Parallel()

	session := newFakeAudioSession([]byte("abc"))
	next := newFakeAudioSession([]byte("xyz"))
	capture := NewCaptureSession(
		&fakeAudioCapture{sessions: []ports.AudioSession{session, next}},
		ports.AudioConfig{},
		&fakeEventSink{},
		zerolog.Nop(),
	)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := capture.Abort(); err != nil {
		t.Fatalf("abort failed: %v", err)
	}
	if !session.isStopped() {
		t.Fatalf("hardware resource was not released on abort")
	}

	// A new attempt can start after the abort released the resource.
	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if _, err := capture.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestCaptureSessionReleasesHardwareOnReadError(t *testing.T) {
	t.Parallel()

	session := newFakeAudioSession()
	session.readErr = errors.New("device disappeared")
	capture := NewCaptureSession(
		&fakeAudioCapture{sessions: []ports.AudioSession{session}},
		ports.AudioConfig{},
		&fakeEventSink{},
		zerolog.Nop(),
	)

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	_, err := capture.Stop()
	if err == nil {
		t.Fatalf("expected error when capture produced no audio")
	}
	if !session.isStopped() {
		t.Fatalf("hardware resource must be released on the error path too")
	}
}
