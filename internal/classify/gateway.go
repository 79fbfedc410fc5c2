// Package classify issues classification requests against the triage
// backend contract and guarantees a usable result on every path.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"smartivr/internal/domain"
	"smartivr/internal/ports"
)

// Config controls gateway behavior.
type Config struct {
	BaseURL         string
	DemoMode        bool
	Timeout         time.Duration
	DemoLatency     time.Duration
	LocalConfidence float64
}

// Gateway normalizes input into one outbound call and converts every
// failure into a deterministic fallback record. Classify never fails from
// the caller's point of view.
type Gateway struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger

	mu       sync.Mutex
	demoTurn int
}

func New(cfg Config, log zerolog.Logger) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.LocalConfidence <= 0 || cfg.LocalConfidence > 1 {
		cfg.LocalConfidence = 0.8
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// Classify resolves one classification. An audio reference goes to the
// backend (or the demo synthesizer); a text-only request is serviced by the
// local fallback policy because the external contract only accepts audio.
func (g *Gateway) Classify(ctx context.Context, req ports.ClassifyRequest) domain.RawResult {
	if req.CaptureReference == "" {
		return g.localResult(req)
	}
	if g.cfg.DemoMode {
		return g.demoResult(ctx)
	}

	result, err := g.processIssue(ctx, req.CaptureReference)
	if err != nil {
		g.log.Warn().Err(err).Str("audioUrl", req.CaptureReference).Msg("classification failed, using fallback result")
		return fallbackResult()
	}
	return domain.NewLiveResult(result)
}

// Health probes the backend liveness endpoint. Optional; never on the
// critical path.
func (g *Gateway) Health(ctx context.Context) error {
	if g.cfg.DemoMode {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint("/health"), nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend is not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend is not available: status %d", resp.StatusCode)
	}
	return nil
}

func (g *Gateway) processIssue(ctx context.Context, audioURL string) (domain.LiveResult, error) {
	body, err := json.Marshal(map[string]string{"audio_url": audioURL})
	if err != nil {
		return domain.LiveResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/process-issue"), bytes.NewReader(body))
	if err != nil {
		return domain.LiveResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.LiveResult{}, fmt.Errorf("process-issue request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.LiveResult{}, fmt.Errorf("process-issue returned status %d", resp.StatusCode)
	}

	var result domain.LiveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.LiveResult{}, fmt.Errorf("failed to decode process-issue response: %w", err)
	}
	return result, nil
}

// localResult fabricates a result from the transcript alone. The local kind
// marks it as an on-device fabrication rather than a genuine classification.
func (g *Gateway) localResult(req ports.ClassifyRequest) domain.RawResult {
	g.log.Debug().Msg("no audio reference, applying local fallback policy")
	return domain.NewLocalResult(domain.LocalResult{
		Category:   "general_support",
		Confidence: g.cfg.LocalConfidence,
		Department: "General Support",
		WaitTime:   "2 min",
		Language:   req.LanguageTag,
	})
}

// fallbackResult is returned on any backend failure: neutral category, zero
// confidence, fallback flag set. Downstream always gets a low-confidence
// decision to render.
func fallbackResult() domain.RawResult {
	return domain.NewLiveResult(domain.LiveResult{
		Language:      "Unknown",
		Transcript:    "Audio processing failed",
		IssueCategory: "general_support",
		Confidence:    0,
		RoutingTo:     "General Support",
		Fallback:      true,
	})
}

// demoScenarios cycle deterministically for demo variety: two confident
// classifications, then one low-confidence fallback.
var demoScenarios = []domain.LiveResult{
	{
		Language:      "English (US)",
		Transcript:    "My printer is making a loud grinding noise and won't feed paper through the tray",
		IssueCategory: "technical_issue",
		Confidence:    0.89,
		RoutingTo:     "Technical Support",
	},
	{
		Language:      "English (US)",
		Transcript:    "My printer is making a loud grinding noise and won't feed paper through the tray",
		IssueCategory: "technical_issue",
		Confidence:    0.89,
		RoutingTo:     "Technical Support",
	},
	{
		Language:      "Hindi",
		Transcript:    "Mera internet bahut slow hai",
		IssueCategory: "service_request",
		Confidence:    0.42,
		RoutingTo:     "General Support",
		Fallback:      true,
	},
}

func (g *Gateway) demoResult(ctx context.Context) domain.RawResult {
	if g.cfg.DemoLatency > 0 {
		timer := time.NewTimer(g.cfg.DemoLatency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	g.mu.Lock()
	scenario := demoScenarios[g.demoTurn%len(demoScenarios)]
	g.demoTurn++
	g.mu.Unlock()

	return domain.NewLiveResult(scenario)
}

func (g *Gateway) endpoint(path string) string {
	return strings.TrimRight(g.cfg.BaseURL, "/") + path
}
