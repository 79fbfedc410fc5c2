package usecase

import (
	"context"
	"time"

	"smartivr/internal/domain"
)

// Phase is one named stage of the analysis progress animation.
type Phase struct {
	Label    string
	Duration time.Duration
}

// DefaultPhases mirror the processing screen's staged narrative.
func DefaultPhases() []Phase {
	return []Phase{
		{Label: "Transcribing your voice...", Duration: 2000 * time.Millisecond},
		{Label: "Translating to English...", Duration: 1500 * time.Millisecond},
		{Label: "Analyzing issue category...", Duration: 1500 * time.Millisecond},
		{Label: "Matching with support team...", Duration: 1000 * time.Millisecond},
	}
}

// ProgressSimulator converts elapsed wall-clock time into animation frames
// over an ordered phase list. The progression is entirely time-driven; it is
// deliberately decoupled from the concurrent classification call and always
// reaches Complete regardless of that call's outcome or timing.
type ProgressSimulator struct {
	phases []Phase
	settle time.Duration
}

func NewProgressSimulator(phases []Phase, settle time.Duration) *ProgressSimulator {
	if len(phases) == 0 {
		phases = DefaultPhases()
	}
	if settle < 0 {
		settle = 0
	}
	return &ProgressSimulator{phases: phases, settle: settle}
}

// Snapshot maps total elapsed time since the simulation started to a frame.
// Percent is strictly clamped to 100; past the last phase the frame holds at
// 100% until the settle delay elapses, then reports Complete.
func (p *ProgressSimulator) Snapshot(elapsed time.Duration) domain.ProgressFrame {
	var consumed time.Duration
	for i, phase := range p.phases {
		if elapsed < consumed+phase.Duration {
			percent := float64(elapsed-consumed) / float64(phase.Duration) * 100
			if percent > 100 {
				percent = 100
			}
			return domain.ProgressFrame{Phase: i, Label: phase.Label, Percent: percent}
		}
		consumed += phase.Duration
	}

	last := len(p.phases) - 1
	frame := domain.ProgressFrame{Phase: last, Label: p.phases[last].Label, Percent: 100}
	if elapsed >= consumed+p.settle {
		frame.Complete = true
	}
	return frame
}

// Total is the deterministic upper bound on the simulation's running time.
func (p *ProgressSimulator) Total() time.Duration {
	var total time.Duration
	for _, phase := range p.phases {
		total += phase.Duration
	}
	return total + p.settle
}

// Run drives frames at the given interval until the simulation completes or
// ctx is cancelled. After cancellation no further frames are emitted. The
// return value reports whether Complete was reached.
func (p *ProgressSimulator) Run(ctx context.Context, interval time.Duration, emit func(domain.ProgressFrame)) bool {
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}

	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			frame := p.Snapshot(time.Since(start))
			emit(frame)
			if frame.Complete {
				return true
			}
		}
	}
}
