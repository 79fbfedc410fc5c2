package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"smartivr/internal/domain"
	"smartivr/internal/ports"
)

// Config controls Deepgram websocket settings.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SmartFormat bool
}

// Provider implements ports.SpeechProvider for Deepgram. It owns its own
// microphone capture: Start opens the websocket, starts an audio session in
// raw s16le, and pumps frames until the session is closed.
type Provider struct {
	cfg     Config
	capture ports.AudioCapture
	audio   ports.AudioConfig
}

func NewProvider(cfg Config, capture ports.AudioCapture, audio ports.AudioConfig) *Provider {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	return &Provider{cfg: cfg, capture: capture, audio: audio}
}

// Available reports whether live recognition is usable on this host.
func (p *Provider) Available() bool {
	return strings.TrimSpace(p.cfg.APIKey) != ""
}

func (p *Provider) Start(ctx context.Context, cfg ports.RecognitionConfig) (ports.RecognitionSession, error) {
	if !p.Available() {
		return nil, errors.New("DEEPGRAM_API_KEY is not configured")
	}

	wsURL, err := buildListenURL(p.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}

	audioCfg := p.audio
	audioCfg.OutputFormat = "s16le"
	if cfg.SampleRate > 0 {
		audioCfg.SampleRate = cfg.SampleRate
	}
	if cfg.Channels > 0 {
		audioCfg.Channels = cfg.Channels
	}

	mic, err := p.capture.Start(ctx, audioCfg)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start microphone for recognition: %w", err)
	}

	session := &recognitionSession{
		conn:   conn,
		mic:    mic,
		events: make(chan domain.TranscriptEvent, 64),
		done:   make(chan struct{}),
	}

	session.wg.Add(2)
	go session.readLoop()
	go session.pumpLoop()
	go func() {
		session.wg.Wait()
		close(session.events)
		close(session.done)
		_ = conn.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	return session, nil
}

type recognitionSession struct {
	conn *websocket.Conn
	mic  ports.AudioSession

	events chan domain.TranscriptEvent
	done   chan struct{}

	wg sync.WaitGroup

	writeMu sync.Mutex

	errMu   sync.Mutex
	err     error
	closing bool

	closeOnce sync.Once
}

func (s *recognitionSession) Events() <-chan domain.TranscriptEvent {
	return s.events
}

// Err reports the terminal driver error once Events is closed.
func (s *recognitionSession) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *recognitionSession) Close() error {
	s.closeOnce.Do(func() {
		s.errMu.Lock()
		s.closing = true
		s.errMu.Unlock()

		_ = s.mic.Stop()
		_ = s.conn.Close()
	})
	<-s.done
	return s.Err()
}

func (s *recognitionSession) setErr(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.closing {
		return
	}
	if s.err == nil {
		s.err = err
	}
}

func (s *recognitionSession) pumpLoop() {
	defer s.wg.Done()

	buf := make([]byte, 4096)
	for {
		n, readErr := s.mic.Read(buf)
		if n > 0 {
			s.writeMu.Lock()
			writeErr := s.conn.WriteMessage(websocket.BinaryMessage, buf[:n])
			s.writeMu.Unlock()
			if writeErr != nil {
				s.setErr(fmt.Errorf("failed to send audio: %w", writeErr))
				return
			}
		}
		if readErr != nil {
			break
		}
	}

	s.writeMu.Lock()
	err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
	s.writeMu.Unlock()
	if err != nil {
		s.setErr(fmt.Errorf("failed to close stream: %w", err))
	}
}

func (s *recognitionSession) readLoop() {
	defer s.wg.Done()
	defer func() { _ = s.mic.Stop() }()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read provider event: %w", err))
			return
		}

		var response deepgramResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}

		if strings.EqualFold(response.Type, "Error") {
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			s.setErr(errors.New(message))
			return
		}

		transcript := extractTranscript(response)
		if transcript == "" {
			continue
		}

		event := domain.TranscriptEvent{Text: transcript}
		if response.IsFinal || response.SpeechFinal {
			event.Kind = domain.TranscriptKindFinal
		} else {
			event.Kind = domain.TranscriptKindPartial
		}
		s.emit(event)
	}
}

func (s *recognitionSession) emit(event domain.TranscriptEvent) {
	select {
	case s.events <- event:
	case <-s.done:
	default:
	}
}

type deepgramResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`

	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func extractTranscript(response deepgramResponse) string {
	if len(response.Channel.Alternatives) > 0 {
		if text := strings.TrimSpace(response.Channel.Alternatives[0].Transcript); text != "" {
			return text
		}
	}
	if len(response.Results.Channels) > 0 && len(response.Results.Channels[0].Alternatives) > 0 {
		return strings.TrimSpace(response.Results.Channels[0].Alternatives[0].Transcript)
	}
	return ""
}

func buildListenURL(providerCfg Config, recognitionCfg ports.RecognitionConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if base == "" {
		base = "https://api.deepgram.com/v1"
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	if recognitionCfg.SampleRate <= 0 {
		recognitionCfg.SampleRate = 16000
	}
	if recognitionCfg.Channels <= 0 {
		recognitionCfg.Channels = 1
	}

	query := listenURL.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", "linear16")
	query.Set("sample_rate", fmt.Sprintf("%d", recognitionCfg.SampleRate))
	query.Set("channels", fmt.Sprintf("%d", recognitionCfg.Channels))
	query.Set("interim_results", fmt.Sprintf("%t", recognitionCfg.InterimResults))
	query.Set("smart_format", fmt.Sprintf("%t", providerCfg.SmartFormat))
	if recognitionCfg.LanguageTag != "" {
		query.Set("language", recognitionCfg.LanguageTag)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
