package usecase

import (
	"strings"
	"sync"

	"smartivr/internal/domain"
)

// transcriptAggregator accumulates finalized fragments, space-joined.
// Interim fragments are observed but never appended; the buffer is reset at
// the start of each listening session.
type transcriptAggregator struct {
	mu     sync.Mutex
	finals []string
}

func newTranscriptAggregator() *transcriptAggregator {
	return &transcriptAggregator{}
}

func (a *transcriptAggregator) Add(event domain.TranscriptEvent) {
	if event.Kind != domain.TranscriptKindFinal {
		return
	}
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.finals = append(a.finals, text)
}

func (a *transcriptAggregator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.finals, " ")
}
