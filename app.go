package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"smartivr/internal/bootstrap"
	"smartivr/internal/config"
	"smartivr/internal/domain"
	"smartivr/internal/usecase"
)

const (
	eventStep      = "smartivr:step"
	eventListening = "smartivr:listening"
	eventPartial   = "smartivr:partial"
	eventProgress  = "smartivr:progress"
	eventError     = "smartivr:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	flow    *usecase.FlowController
	cfg     config.Config
	bootErr error

	processingCancel context.CancelFunc
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.FlowError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.flow = services.Flow
	a.StepChanged(domain.StepCapture, domain.StepReasonFlowStarted)
}

func (a *App) shutdown(_ context.Context) {
	if a.flow == nil {
		return
	}
	a.CancelProcessing()
	_ = a.flow.AbortRecording()
	a.flow.EndListening()
}

// StartRecording begins a microphone capture attempt.
func (a *App) StartRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.flow.StartRecording(a.ctx)
}

// StopRecording finalizes the capture; the artifact is retained for Analyze.
func (a *App) StopRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.flow.StopRecording(); err != nil {
		if errors.Is(err, usecase.ErrNoActiveSession) {
			return nil
		}
		return err
	}
	return nil
}

// AbortRecording discards an in-progress capture attempt.
func (a *App) AbortRecording() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.flow.AbortRecording(); err != nil {
		if errors.Is(err, usecase.ErrNoActiveSession) {
			return nil
		}
		return err
	}
	return nil
}

// BeginListening starts live speech recognition.
func (a *App) BeginListening(languageTag string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.flow.BeginListening(a.ctx, languageTag)
}

// EndListening stops live speech recognition. Safe to call when idle.
func (a *App) EndListening() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.flow.EndListening()
	return nil
}

// GetListenState returns the observable speech recognition state.
func (a *App) GetListenState() domain.ListenState {
	if a.flow == nil {
		return domain.ListenState{}
	}
	return a.flow.ListenState()
}

// Analyze submits the captured signal for classification and moves to the
// processing step.
func (a *App) Analyze(typedText string) (domain.Step, error) {
	if err := a.requireReady(); err != nil {
		return domain.StepCapture, err
	}
	return a.flow.SubmitForAnalysis(a.ctx, typedText)
}

// StartProcessing runs the processing step animation. It returns
// immediately; the resulting step change is delivered through events.
func (a *App) StartProcessing() error {
	if err := a.requireReady(); err != nil {
		return err
	}

	a.CancelProcessing()
	ctx, cancel := context.WithCancel(a.ctx)
	a.processingCancel = cancel

	go func() {
		defer cancel()
		if _, err := a.flow.RunProcessing(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.FlowError(domain.ErrorCodeHandoff, err.Error())
		}
	}()
	return nil
}

// CancelProcessing stops a running processing animation, if any.
func (a *App) CancelProcessing() {
	if a.processingCancel != nil {
		a.processingCancel()
		a.processingCancel = nil
	}
}

// GetDecision returns the display-ready decision for the results step.
func (a *App) GetDecision() (domain.DecisionView, error) {
	if err := a.requireReady(); err != nil {
		return domain.DecisionView{}, err
	}
	return a.flow.Decision(), nil
}

// ConfirmRouting accepts the recommendation and restarts the flow.
func (a *App) ConfirmRouting() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.flow.ConfirmRouting(a.ctx)
}

// SelectCategory applies a manual category override.
func (a *App) SelectCategory(categoryID string) (domain.DecisionView, error) {
	if err := a.requireReady(); err != nil {
		return domain.DecisionView{}, err
	}
	return a.flow.SelectCategory(categoryID)
}

// RetryCapture abandons the current result and returns to capture.
func (a *App) RetryCapture() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.flow.RetryCapture()
	return nil
}

// GetManualCategories lists the manual-selection choices.
func (a *App) GetManualCategories() []domain.Category {
	if a.flow == nil {
		return nil
	}
	return a.flow.ManualCategories()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"backend":    a.cfg.Backend.BaseURL,
		"demoMode":   fmt.Sprintf("%t", a.cfg.Backend.DemoMode),
		"provider":   "Deepgram",
		"model":      a.cfg.Deepgram.Model,
		"language":   a.cfg.Flow.DefaultLanguage,
		"audioInput": a.cfg.Audio.InputDevice,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.flow == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// StepChanged emits flow step transitions to the frontend.
func (a *App) StepChanged(step domain.Step, reason domain.StepReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventStep, map[string]string{
		"step":    string(step),
		"reason":  string(reason),
		"message": stepReasonMessage(reason),
	})
}

// ListeningChanged emits speech recognition state updates.
func (a *App) ListeningChanged(state domain.ListenState) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventListening, state)
}

// PartialTranscript emits live interim transcript text.
func (a *App) PartialTranscript(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPartial, map[string]string{"text": text})
}

// Progress emits one frame of the processing animation.
func (a *App) Progress(frame domain.ProgressFrame) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventProgress, frame)
}

// FlowError emits backend errors to the UI.
func (a *App) FlowError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func stepReasonMessage(reason domain.StepReason) string {
	switch reason {
	case domain.StepReasonFlowStarted:
		return "Ready to listen"
	case domain.StepReasonAnalyzeSubmitted:
		return "Analyzing your issue..."
	case domain.StepReasonProcessingDone:
		return "Analysis complete"
	case domain.StepReasonMissingInput:
		return "Record audio or type the issue first"
	case domain.StepReasonRoutingConfirmed:
		return "Routing confirmed"
	case domain.StepReasonCategoryPicked:
		return "Category selected"
	case domain.StepReasonRetryRequested:
		return "Let's try that again"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeCapture:
		return "Could not access the microphone. Try again."
	case domain.ErrorCodeCaptureStop:
		return "Recording stop issue. Try recording again."
	case domain.ErrorCodeUpload:
		return "Could not upload the recording. Try again."
	case domain.ErrorCodeSpeech:
		return "Speech recognition issue. You can type instead."
	case domain.ErrorCodeHandoff:
		return "Could not carry your input forward. Try again."
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
