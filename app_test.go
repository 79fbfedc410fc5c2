package main

import (
	"errors"
	"testing"

	"smartivr/internal/domain"
)

func TestStepReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.StepReason]string{
		domain.StepReasonFlowStarted:      "Ready to listen",
		domain.StepReasonAnalyzeSubmitted: "Analyzing your issue...",
		domain.StepReasonProcessingDone:   "Analysis complete",
		domain.StepReasonMissingInput:     "Record audio or type the issue first",
		domain.StepReasonRoutingConfirmed: "Routing confirmed",
		domain.StepReasonCategoryPicked:   "Category selected",
		domain.StepReasonRetryRequested:   "Let's try that again",
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := stepReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := stepReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:     "Startup failed",
		domain.ErrorCodeCapture:     "Could not access the microphone. Try again.",
		domain.ErrorCodeCaptureStop: "Recording stop issue. Try recording again.",
		domain.ErrorCodeUpload:      "Could not upload the recording. Try again.",
		domain.ErrorCodeSpeech:      "Speech recognition issue. You can type instead.",
		domain.ErrorCodeHandoff:     "Could not carry your input forward. Try again.",
		domain.ErrorCodeClipboard:   "Clipboard write failed",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
}

func TestGetListenStateWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	state := app.GetListenState()
	if state.Listening || state.HasSupport || state.Transcript != "" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if app.GetManualCategories() != nil {
		t.Fatalf("expected no categories before startup")
	}
}
