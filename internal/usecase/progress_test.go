package usecase

import (
	"context"
	"testing"
	"time"

	"smartivr/internal/domain"
)

func TestProgressSnapshotPhaseMapping(t *testing.T) {
	t.Parallel()

	sim := NewProgressSimulator(DefaultPhases(), 500*time.Millisecond)

	cases := []struct {
		elapsed      time.Duration
		wantPhase    int
		wantPercent  float64
		wantComplete bool
	}{
		{0, 0, 0, false},
		{1000 * time.Millisecond, 0, 50, false},
		{2000 * time.Millisecond, 1, 0, false},
		{2750 * time.Millisecond, 1, 50, false},
		{3500 * time.Millisecond, 2, 0, false},
		{5000 * time.Millisecond, 3, 0, false},
		{5500 * time.Millisecond, 3, 50, false},
		{6000 * time.Millisecond, 3, 100, false}, // settle window holds at 100
		{6499 * time.Millisecond, 3, 100, false},
		{6500 * time.Millisecond, 3, 100, true},
		{10 * time.Second, 3, 100, true},
	}

	for _, tc := range cases {
		frame := sim.Snapshot(tc.elapsed)
		if frame.Phase != tc.wantPhase {
			t.Fatalf("elapsed %v: phase = %d, want %d", tc.elapsed, frame.Phase, tc.wantPhase)
		}
		if frame.Percent != tc.wantPercent {
			t.Fatalf("elapsed %v: percent = %v, want %v", tc.elapsed, frame.Percent, tc.wantPercent)
		}
		if frame.Complete != tc.wantComplete {
			t.Fatalf("elapsed %v: complete = %v, want %v", tc.elapsed, frame.Complete, tc.wantComplete)
		}
	}
}

func TestProgressSnapshotPercentNeverExceeds100(t *testing.T) {
	t.Parallel()

	sim := NewProgressSimulator([]Phase{{Label: "only", Duration: 10 * time.Millisecond}}, 0)
	for elapsed := time.Duration(0); elapsed < 50*time.Millisecond; elapsed += time.Millisecond {
		if frame := sim.Snapshot(elapsed); frame.Percent > 100 {
			t.Fatalf("percent %v exceeds 100 at elapsed %v", frame.Percent, elapsed)
		}
	}
}

func TestProgressTotalBudget(t *testing.T) {
	t.Parallel()

	sim := NewProgressSimulator(DefaultPhases(), 500*time.Millisecond)
	if got := sim.Total(); got != 6500*time.Millisecond {
		t.Fatalf("unexpected total budget: %v", got)
	}
}

func TestProgressRunCompletesDeterministically(t *testing.T) {
	t.Parallel()

	phases := []Phase{
		{Label: "a", Duration: 15 * time.Millisecond},
		{Label: "b", Duration: 15 * time.Millisecond},
	}
	sim := NewProgressSimulator(phases, 5*time.Millisecond)

	var frames []domain.ProgressFrame
	start := time.Now()
	completed := sim.Run(context.Background(), 2*time.Millisecond, func(frame domain.ProgressFrame) {
		frames = append(frames, frame)
	})
	elapsed := time.Since(start)

	if !completed {
		t.Fatalf("expected run to complete")
	}
	if len(frames) == 0 || !frames[len(frames)-1].Complete {
		t.Fatalf("expected a terminal Complete frame")
	}
	// Total budget plus generous scheduling slack.
	if elapsed > sim.Total()+500*time.Millisecond {
		t.Fatalf("run took %v, budget was %v", elapsed, sim.Total())
	}
}

func TestProgressRunCancelStopsFrames(t *testing.T) {
	t.Parallel()

	sim := NewProgressSimulator([]Phase{{Label: "slow", Duration: time.Hour}}, 0)
	ctx, cancel := context.WithCancel(context.Background())

	frames := make(chan domain.ProgressFrame, 1024)
	done := make(chan bool, 1)
	go func() {
		done <- sim.Run(ctx, time.Millisecond, func(frame domain.ProgressFrame) {
			frames <- frame
		})
	}()

	waitFor(t, func() bool { return len(frames) > 0 })
	cancel()

	if completed := <-done; completed {
		t.Fatalf("cancelled run must not report completion")
	}

	// No further frames may be emitted after teardown.
	settled := len(frames)
	time.Sleep(20 * time.Millisecond)
	if len(frames) != settled {
		t.Fatalf("frames emitted after cancellation")
	}
}
