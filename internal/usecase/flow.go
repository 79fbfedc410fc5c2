package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smartivr/internal/decision"
	"smartivr/internal/domain"
	"smartivr/internal/handoff"
	"smartivr/internal/ports"
)

var ErrNothingToAnalyze = errors.New("record audio or type the issue before analyzing")

// Config controls flow behavior.
type Config struct {
	DefaultLanguage string
	Phases          []Phase
	SettleDelay     time.Duration
	FrameInterval   time.Duration
}

// FlowController drives the user through capture, processing and results.
// It coordinates the capture session, the transcription stream, the progress
// animation and the in-flight classification, handing state between steps
// through the session handoff.
type FlowController struct {
	capture    *CaptureSession
	stream     *TranscriptionStream
	store      ports.BlobStore
	classifier ports.Classifier
	clipboard  ports.Clipboard
	events     ports.EventSink
	handoff    *handoff.Handoff
	sim        *ProgressSimulator
	cfg        Config
	log        zerolog.Logger

	mu          sync.Mutex
	artifact    *domain.CaptureArtifact
	classifyGen int
}

func NewFlowController(
	capture *CaptureSession,
	stream *TranscriptionStream,
	store ports.BlobStore,
	classifier ports.Classifier,
	clipboard ports.Clipboard,
	events ports.EventSink,
	sessions *handoff.Handoff,
	cfg Config,
	log zerolog.Logger,
) *FlowController {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en-US"
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 500 * time.Millisecond
	}
	return &FlowController{
		capture:    capture,
		stream:     stream,
		store:      store,
		classifier: classifier,
		clipboard:  clipboard,
		events:     events,
		handoff:    sessions,
		sim:        NewProgressSimulator(cfg.Phases, cfg.SettleDelay),
		cfg:        cfg,
		log:        log,
	}
}

// StartRecording begins a microphone capture attempt.
func (f *FlowController) StartRecording(ctx context.Context) error {
	if err := f.capture.Start(ctx); err != nil {
		if !errors.Is(err, ErrSessionActive) {
			f.events.FlowError(domain.ErrorCodeCapture, err.Error())
		}
		return err
	}
	return nil
}

// StopRecording finalizes the capture attempt and retains the artifact for
// the analyze step.
func (f *FlowController) StopRecording() error {
	artifact, err := f.capture.Stop()
	if err != nil {
		if !errors.Is(err, ErrNoActiveSession) {
			f.events.FlowError(domain.ErrorCodeCapture, err.Error())
		}
		return err
	}

	f.mu.Lock()
	f.artifact = &artifact
	f.mu.Unlock()
	return nil
}

// AbortRecording discards an in-progress capture attempt.
func (f *FlowController) AbortRecording() error {
	return f.capture.Abort()
}

// BeginListening starts the transcription stream for the given language.
func (f *FlowController) BeginListening(ctx context.Context, languageTag string) error {
	if languageTag == "" {
		languageTag = f.cfg.DefaultLanguage
	}
	return f.stream.Begin(ctx, languageTag)
}

// EndListening stops the transcription stream. Safe to call when idle.
func (f *FlowController) EndListening() {
	f.stream.End()
}

// ListenState exposes the transcription stream state for polling.
func (f *FlowController) ListenState() domain.ListenState {
	return f.stream.Snapshot()
}

// SubmitForAnalysis moves from capture to processing: uploads the artifact
// if one exists, persists the handoff record, and issues the classification
// exactly once. An upload failure degrades to text-only classification when
// a transcript exists; with no usable signal at all the flow stays on the
// capture step.
func (f *FlowController) SubmitForAnalysis(ctx context.Context, typedText string) (domain.Step, error) {
	f.stream.End()

	transcript := strings.TrimSpace(typedText)
	if transcript == "" {
		transcript = strings.TrimSpace(f.stream.Transcript())
	}

	f.mu.Lock()
	artifact := f.artifact
	f.artifact = nil
	f.mu.Unlock()

	var captureRef string
	if artifact != nil {
		ref, err := f.uploadArtifact(ctx, *artifact)
		if err != nil {
			if transcript == "" {
				// Nothing to degrade to: keep the artifact for a retry.
				f.mu.Lock()
				f.artifact = artifact
				f.mu.Unlock()
				f.events.FlowError(domain.ErrorCodeUpload, err.Error())
				return domain.StepCapture, fmt.Errorf("failed to upload recording: %w", err)
			}
			f.log.Warn().Err(err).Msg("upload failed, degrading to text-only classification")
		} else {
			captureRef = ref
		}
	}

	if captureRef == "" && transcript == "" {
		return domain.StepCapture, ErrNothingToAnalyze
	}

	rec := handoff.Record{
		CaptureReference: captureRef,
		Transcript:       transcript,
		LanguageTag:      f.cfg.DefaultLanguage,
	}
	if err := f.handoff.Save(rec); err != nil {
		f.events.FlowError(domain.ErrorCodeHandoff, err.Error())
		return domain.StepCapture, err
	}

	f.launchClassification(ctx, rec)
	f.events.StepChanged(domain.StepProcessing, domain.StepReasonAnalyzeSubmitted)
	return domain.StepProcessing, nil
}

// RunProcessing drives the progress animation for the processing step. The
// animation always runs to completion on its own clock; the classification
// finishing early or never has no effect on its pace. Cancelling ctx (view
// unmount) stops the animation without navigating; the in-flight
// classification is left to complete and write its result to the handoff.
func (f *FlowController) RunProcessing(ctx context.Context) (domain.Step, error) {
	rec, err := f.handoff.Load()
	if err != nil {
		f.events.FlowError(domain.ErrorCodeHandoff, err.Error())
	}
	if err != nil || !rec.HasSignal() {
		// Reaching the processing step without input is expected on direct
		// navigation; silently return to capture.
		f.log.Info().Msg("no capture reference or transcript present, redirecting to capture")
		f.events.StepChanged(domain.StepCapture, domain.StepReasonMissingInput)
		return domain.StepCapture, nil
	}

	if !f.sim.Run(ctx, f.cfg.FrameInterval, f.events.Progress) {
		return domain.StepProcessing, ctx.Err()
	}

	f.events.StepChanged(domain.StepResults, domain.StepReasonProcessingDone)
	return domain.StepResults, nil
}

// Decision reads the handoff and produces the display-ready decision. When
// no classification result made it into the handoff, a fixed neutral
// placeholder is substituted instead of failing the view.
func (f *FlowController) Decision() domain.DecisionView {
	rec, err := f.handoff.Load()
	if err != nil {
		f.log.Warn().Err(err).Msg("failed to load handoff record, using placeholder decision")
		return decision.View(nil)
	}
	return decision.View(rec.RawResult)
}

// ConfirmRouting accepts the recommended routing, copies a summary to the
// clipboard, and restarts the flow.
func (f *FlowController) ConfirmRouting(ctx context.Context) error {
	view := f.Decision()
	summary := fmt.Sprintf("Routing to %s (%s, %d%% confidence)",
		view.Decision.DepartmentLabel, view.Decision.CategoryLabel, view.Decision.ConfidencePercent)

	var clipErr error
	if f.clipboard != nil {
		if clipErr = f.clipboard.SetText(ctx, summary); clipErr != nil {
			f.events.FlowError(domain.ErrorCodeClipboard, "routing summary ready but clipboard write failed")
		}
	}

	f.events.StepChanged(domain.StepCapture, domain.StepReasonRoutingConfirmed)
	return clipErr
}

// SelectCategory applies a manual override and restarts the flow. The
// override is recorded as a full-confidence local result so the results
// step, if revisited, reflects the user's choice.
func (f *FlowController) SelectCategory(categoryID string) (domain.DecisionView, error) {
	result := domain.NewLocalResult(domain.LocalResult{
		Category:   categoryID,
		Confidence: 100,
		Department: decision.DepartmentFor(categoryID),
		WaitTime:   "2 min",
		Language:   f.cfg.DefaultLanguage,
	})
	if err := f.handoff.SetRawResult(result); err != nil {
		f.events.FlowError(domain.ErrorCodeHandoff, err.Error())
		return domain.DecisionView{}, err
	}

	f.events.StepChanged(domain.StepCapture, domain.StepReasonCategoryPicked)
	return decision.View(&result), nil
}

// RetryCapture abandons the current flow and returns to the capture step.
func (f *FlowController) RetryCapture() {
	f.events.StepChanged(domain.StepCapture, domain.StepReasonRetryRequested)
}

// ManualCategories lists the manual-selection choices.
func (f *FlowController) ManualCategories() []domain.Category {
	return decision.ManualCategories()
}

// ProcessingBudget is the deterministic upper bound on the processing step.
func (f *FlowController) ProcessingBudget() time.Duration {
	return f.sim.Total()
}

func (f *FlowController) uploadArtifact(ctx context.Context, artifact domain.CaptureArtifact) (string, error) {
	name := uuid.NewString() + ".wav"
	ref, err := f.store.Put(ctx, name, artifact.MIME, artifact.Data)
	if err != nil {
		return "", err
	}
	f.log.Debug().Str("captureReference", ref).Msg("recording uploaded")
	return ref, nil
}

// launchClassification issues the classification once per analyze action.
// The call is detached from the submitting view's lifetime: navigating away
// does not cancel it, and its result is written to the handoff for the next
// view to discover. A generation counter keeps a slow result from an
// abandoned flow from overwriting a newer one.
func (f *FlowController) launchClassification(ctx context.Context, rec handoff.Record) {
	f.mu.Lock()
	f.classifyGen++
	gen := f.classifyGen
	f.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		result := f.classifier.Classify(detached, ports.ClassifyRequest{
			CaptureReference: rec.CaptureReference,
			Transcript:       rec.Transcript,
			LanguageTag:      rec.LanguageTag,
		})

		f.mu.Lock()
		stale := gen != f.classifyGen
		f.mu.Unlock()
		if stale {
			f.log.Debug().Msg("dropping classification result from superseded flow")
			return
		}

		if err := f.handoff.SetRawResult(result); err != nil {
			f.events.FlowError(domain.ErrorCodeHandoff, err.Error())
		}
	}()
}
