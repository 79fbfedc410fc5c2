// Package simserver is a stand-in for the triage backend. It serves the
// same contract the desktop client speaks, but fabricates transcripts from
// a fixed utterance rotation instead of running speech recognition.
package simserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smartivr/internal/decision"
	"smartivr/internal/domain"
	"smartivr/internal/rules"
)

// Config controls simulated backend behavior.
type Config struct {
	ConfidenceThreshold float64
	ProcessingDelay     time.Duration
}

// utterance is one canned recognition outcome.
type utterance struct {
	Language   string
	Transcript string
}

// sampleUtterances rotate per request so repeated runs exercise every
// category, including a below-threshold one.
var sampleUtterances = []utterance{
	{Language: "Hindi (Hinglish)", Transcript: "mera bill bahut zyada aaya hai is mahine"},
	{Language: "English (US)", Transcript: "my internet is not working since yesterday"},
	{Language: "Hindi (Hinglish)", Transcript: "password bhool gaya hoon reset karna hai"},
	{Language: "English (US)", Transcript: "i cannot login to my account"},
	{Language: "Hindi (Hinglish)", Transcript: "mujhe kuch aur puchna tha"},
}

// CallRecord is one processed request, kept for the recent-calls endpoint.
type CallRecord struct {
	ID            string    `json:"id"`
	AudioURL      string    `json:"audio_url"`
	Language      string    `json:"language"`
	Transcript    string    `json:"transcript"`
	IssueCategory string    `json:"issue_category"`
	Confidence    float64   `json:"confidence"`
	RoutingTo     string    `json:"routing_to"`
	Fallback      bool      `json:"fallback"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// Server simulates the triage backend.
type Server struct {
	cfg    Config
	engine *rules.Engine
	log    zerolog.Logger

	mu    sync.Mutex
	turn  int
	calls []CallRecord
}

func New(cfg Config, engine *rules.Engine, log zerolog.Logger) *Server {
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold >= 1 {
		cfg.ConfidenceThreshold = 0.6
	}
	if engine == nil {
		engine = rules.NewEngine(nil)
	}
	return &Server{cfg: cfg, engine: engine, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	r.POST("/process-issue", s.processIssue)
	r.GET("/recent-calls", s.recentCalls)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "smartivr-simserver",
	})
}

type processIssueRequest struct {
	AudioURL string `json:"audio_url" binding:"required"`
}

func (s *Server) processIssue(c *gin.Context) {
	var req processIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio_url is required"})
		return
	}

	if s.cfg.ProcessingDelay > 0 {
		time.Sleep(s.cfg.ProcessingDelay)
	}

	spoken := s.nextUtterance()
	category, confidence := s.engine.Classify(spoken.Transcript)

	routingTo := decision.DepartmentFor(category)
	fallback := confidence < s.cfg.ConfidenceThreshold
	if fallback {
		routingTo = decision.FallbackRouting
	}

	result := domain.LiveResult{
		Language:      spoken.Language,
		Transcript:    spoken.Transcript,
		IssueCategory: category,
		Confidence:    confidence,
		RoutingTo:     routingTo,
		Fallback:      fallback,
	}
	s.record(req.AudioURL, result)

	s.log.Info().
		Str("audioUrl", req.AudioURL).
		Str("category", category).
		Float64("confidence", confidence).
		Bool("fallback", fallback).
		Msg("issue processed")

	c.JSON(http.StatusOK, result)
}

func (s *Server) recentCalls(c *gin.Context) {
	s.mu.Lock()
	calls := make([]CallRecord, len(s.calls))
	copy(calls, s.calls)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"calls": calls})
}

func (s *Server) nextUtterance() utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	spoken := sampleUtterances[s.turn%len(sampleUtterances)]
	s.turn++
	return spoken
}

// record keeps the most recent calls, newest first.
const recentCallLimit = 50

func (s *Server) record(audioURL string, result domain.LiveResult) {
	call := CallRecord{
		ID:            uuid.NewString(),
		AudioURL:      audioURL,
		Language:      result.Language,
		Transcript:    result.Transcript,
		IssueCategory: result.IssueCategory,
		Confidence:    result.Confidence,
		RoutingTo:     result.RoutingTo,
		Fallback:      result.Fallback,
		ProcessedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append([]CallRecord{call}, s.calls...)
	if len(s.calls) > recentCallLimit {
		s.calls = s.calls[:recentCallLimit]
	}
}
