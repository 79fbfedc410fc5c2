package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"smartivr/internal/domain"
	"smartivr/internal/ports"
)

var (
	ErrNoActiveSession     = errors.New("no active recording session")
	ErrSessionActive       = errors.New("a recording session is already active")
	ErrResourceUnavailable = errors.New("audio input is unavailable")
)

const captureMIME = "audio/wav"

// CaptureSession owns the lifecycle of one recording attempt at a time.
// The hardware input is held between Start and Stop/Abort and is released
// on every exit path.
type CaptureSession struct {
	audio  ports.AudioCapture
	cfg    ports.AudioConfig
	events ports.EventSink
	log    zerolog.Logger

	mu      sync.Mutex
	current *captureAttempt
}

type captureAttempt struct {
	cancel  context.CancelFunc
	session ports.AudioSession
	done    chan struct{}

	mu      sync.Mutex
	buf     bytes.Buffer
	readErr error
}

func NewCaptureSession(audio ports.AudioCapture, cfg ports.AudioConfig, events ports.EventSink, log zerolog.Logger) *CaptureSession {
	return &CaptureSession{audio: audio, cfg: cfg, events: events, log: log}
}

// Start acquires the microphone. Starting while a session is active is
// rejected; a denied or missing input device fails with
// ErrResourceUnavailable.
func (c *CaptureSession) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.mu.Unlock()

	sessionCtx, cancel := context.WithCancel(ctx)
	session, err := c.audio.Start(sessionCtx, c.cfg)
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}

	attempt := &captureAttempt{
		cancel:  cancel,
		session: session,
		done:    make(chan struct{}),
	}

	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		cancel()
		_ = session.Stop()
		return ErrSessionActive
	}
	c.current = attempt
	c.mu.Unlock()

	go collectAudio(attempt)

	c.log.Debug().Msg("recording started")
	return nil
}

// Stop finalizes the capture and yields the artifact. The hardware resource
// is released unconditionally, even when the capture itself failed.
func (c *CaptureSession) Stop() (domain.CaptureArtifact, error) {
	attempt, err := c.take()
	if err != nil {
		return domain.CaptureArtifact{}, err
	}

	if stopErr := attempt.session.Stop(); stopErr != nil {
		c.events.FlowError(domain.ErrorCodeCaptureStop, stopErr.Error())
	}
	attempt.cancel()
	<-attempt.done

	attempt.mu.Lock()
	data := append([]byte(nil), attempt.buf.Bytes()...)
	readErr := attempt.readErr
	attempt.mu.Unlock()

	if len(data) == 0 {
		if readErr != nil {
			return domain.CaptureArtifact{}, fmt.Errorf("capture produced no audio: %w", readErr)
		}
		return domain.CaptureArtifact{}, errors.New("capture produced no audio")
	}

	c.log.Debug().Int("bytes", len(data)).Msg("recording stopped")
	return domain.CaptureArtifact{Data: data, MIME: captureMIME}, nil
}

// Abort discards an in-progress recording and releases the hardware.
func (c *CaptureSession) Abort() error {
	attempt, err := c.take()
	if err != nil {
		return err
	}

	_ = attempt.session.Stop()
	attempt.cancel()
	<-attempt.done

	c.log.Debug().Msg("recording discarded")
	return nil
}

// Active reports whether a recording attempt is in progress.
func (c *CaptureSession) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *CaptureSession) take() (*captureAttempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoActiveSession
	}
	attempt := c.current
	c.current = nil
	return attempt, nil
}

func collectAudio(attempt *captureAttempt) {
	defer close(attempt.done)

	chunk := make([]byte, 4096)
	for {
		n, err := attempt.session.Read(chunk)
		if n > 0 {
			attempt.mu.Lock()
			attempt.buf.Write(chunk[:n])
			attempt.mu.Unlock()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				attempt.mu.Lock()
				attempt.readErr = err
				attempt.mu.Unlock()
			}
			return
		}
	}
}
