package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"smartivr/internal/domain"
	"smartivr/internal/ports"
)

var ErrSpeechUnsupported = errors.New("speech recognition is not supported on this host")

// TranscriptionStream is a long-lived listener that accumulates finalized
// speech fragments while active. Its lifecycle is independent of the capture
// session: either can run without the other. Driver errors and silence
// timeouts end the listener and surface through the observable state; they
// are never raised to the caller.
type TranscriptionStream struct {
	provider ports.SpeechProvider
	events   ports.EventSink
	silence  time.Duration
	log      zerolog.Logger

	mu        sync.Mutex
	listening bool
	errMsg    string
	agg       *transcriptAggregator
	active    *listenAttempt
}

type listenAttempt struct {
	cancel  context.CancelFunc
	session ports.RecognitionSession
	done    chan struct{}
}

func NewTranscriptionStream(provider ports.SpeechProvider, silence time.Duration, events ports.EventSink, log zerolog.Logger) *TranscriptionStream {
	return &TranscriptionStream{
		provider: provider,
		events:   events,
		silence:  silence,
		agg:      newTranscriptAggregator(),
		log:      log,
	}
}

// HasSupport reports whether a recognition capability exists on this host.
// Begin must not be called when it returns false.
func (s *TranscriptionStream) HasSupport() bool {
	return s.provider.Available()
}

// Begin resets the transcript buffer and starts listening. A previous
// listener, if any, is ended first. A provider start failure is recorded in
// the observable state rather than interrupting the flow.
func (s *TranscriptionStream) Begin(ctx context.Context, languageTag string) error {
	if !s.provider.Available() {
		return ErrSpeechUnsupported
	}

	s.End()

	s.mu.Lock()
	s.agg = newTranscriptAggregator()
	s.errMsg = ""
	s.mu.Unlock()

	sessionCtx, cancel := context.WithCancel(ctx)
	session, err := s.provider.Start(sessionCtx, ports.RecognitionConfig{
		LanguageTag:    languageTag,
		InterimResults: true,
	})
	if err != nil {
		cancel()
		s.mu.Lock()
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("speech recognition failed to start")
		s.emitState()
		return nil
	}

	attempt := &listenAttempt{cancel: cancel, session: session, done: make(chan struct{})}

	s.mu.Lock()
	s.active = attempt
	s.listening = true
	agg := s.agg
	s.mu.Unlock()
	s.emitState()

	go s.consume(attempt, agg)
	return nil
}

// End stops the listener. Calling End with no active listener is a no-op.
func (s *TranscriptionStream) End() {
	s.mu.Lock()
	attempt := s.active
	s.active = nil
	s.listening = false
	s.mu.Unlock()

	if attempt == nil {
		return
	}
	_ = attempt.session.Close()
	attempt.cancel()
	<-attempt.done
	s.emitState()
}

// Snapshot returns the observable listener state.
func (s *TranscriptionStream) Snapshot() domain.ListenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ListenState{
		Listening:  s.listening,
		HasSupport: s.provider.Available(),
		Transcript: s.agg.Text(),
		Err:        s.errMsg,
	}
}

// Transcript returns the accumulated finalized text.
func (s *TranscriptionStream) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Text()
}

func (s *TranscriptionStream) consume(attempt *listenAttempt, agg *transcriptAggregator) {
	defer close(attempt.done)

	timeout := s.silence
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-attempt.session.Events():
			if !ok {
				s.finish(attempt, attempt.session.Err())
				return
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(timeout)

			agg.Add(event)
			if event.Kind == domain.TranscriptKindPartial {
				s.events.PartialTranscript(event.Text)
			} else {
				s.emitState()
			}
		case <-timer.C:
			// Silence is a normal auto-termination, not an error.
			_ = attempt.session.Close()
			s.finish(attempt, nil)
			return
		}
	}
}

// finish transitions to inactive unless End already detached the attempt.
func (s *TranscriptionStream) finish(attempt *listenAttempt, err error) {
	s.mu.Lock()
	if s.active != attempt {
		s.mu.Unlock()
		return
	}
	s.active = nil
	s.listening = false
	if err != nil {
		s.errMsg = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("speech recognition ended with error")
		s.events.FlowError(domain.ErrorCodeSpeech, err.Error())
	}
	attempt.cancel()
	s.emitState()
}

func (s *TranscriptionStream) emitState() {
	s.events.ListeningChanged(s.Snapshot())
}
