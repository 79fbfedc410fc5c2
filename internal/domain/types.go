package domain

// Step identifies a screen in the triage flow.
type Step string

const (
	StepCapture    Step = "capture"
	StepProcessing Step = "processing"
	StepResults    Step = "results"
)

// StepReason provides a structured reason for step transitions.
type StepReason string

const (
	StepReasonFlowStarted      StepReason = "flow_started"
	StepReasonAnalyzeSubmitted StepReason = "analyze_submitted"
	StepReasonProcessingDone   StepReason = "processing_done"
	StepReasonMissingInput     StepReason = "missing_input"
	StepReasonRoutingConfirmed StepReason = "routing_confirmed"
	StepReasonCategoryPicked   StepReason = "category_picked"
	StepReasonRetryRequested   StepReason = "retry_requested"
)

// ErrorCode identifies non-fatal and fatal flow errors.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeCapture     ErrorCode = "capture"
	ErrorCodeCaptureStop ErrorCode = "capture_stop"
	ErrorCodeUpload      ErrorCode = "upload"
	ErrorCodeSpeech      ErrorCode = "speech"
	ErrorCodeHandoff     ErrorCode = "handoff"
	ErrorCodeClipboard   ErrorCode = "clipboard"
)

// TranscriptKind identifies whether a recognition event is interim or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental recognition output from a provider.
type TranscriptEvent struct {
	Kind TranscriptKind `json:"kind"`
	Text string         `json:"text"`
}

// ListenState is the observable state of the transcription stream. Callers
// inspect Listening and Err instead of receiving rejected operations.
type ListenState struct {
	Listening  bool   `json:"listening"`
	HasSupport bool   `json:"hasSupport"`
	Transcript string `json:"transcript"`
	Err        string `json:"error,omitempty"`
}

// CaptureArtifact is the raw audio produced by one recording attempt. It is
// owned by exactly one code path at a time until uploaded or discarded.
type CaptureArtifact struct {
	Data []byte
	MIME string
}

// ProgressFrame is one frame of the analysis progress animation.
type ProgressFrame struct {
	Phase    int     `json:"phase"`
	Label    string  `json:"label"`
	Percent  float64 `json:"percent"`
	Complete bool    `json:"complete"`
}

// Category is one manual-selection choice.
type Category struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Subtitle string `json:"subtitle"`
}
