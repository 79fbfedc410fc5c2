package usecase

import (
	"testing"

	"smartivr/internal/domain"
)

func TestTranscriptAggregatorKeepsFinalsOnly(t *testing.T) {
	t.Parallel()

	agg := newTranscriptAggregator()
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "my internet"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "my internet is"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "my internet is not"})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "not working"})

	if got := agg.Text(); got != "my internet is not working" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestTranscriptAggregatorIgnoresBlankFragments(t *testing.T) {
	t.Parallel()

	agg := newTranscriptAggregator()
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "   "})
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: ""})
	if got := agg.Text(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestTranscriptAggregatorTrimsFragments(t *testing.T) {
	t.Parallel()

	agg := newTranscriptAggregator()
	agg.Add(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "  bill bahut zyada hai  "})
	if got := agg.Text(); got != "bill bahut zyada hai" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}
