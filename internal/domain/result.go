package domain

// ResultKind tags which shape of classification result is present. Local
// results are fabricated on-device and were never produced by the backend;
// the kind keeps that provenance inspectable downstream.
type ResultKind string

const (
	ResultKindLive  ResultKind = "live"
	ResultKindLocal ResultKind = "local"
)

// LiveResult mirrors the POST /process-issue response body.
type LiveResult struct {
	Language      string  `json:"language"`
	Transcript    string  `json:"transcript"`
	IssueCategory string  `json:"issue_category"`
	Confidence    float64 `json:"confidence"`
	RoutingTo     string  `json:"routing_to"`
	Fallback      bool    `json:"fallback"`
}

// LocalResult is the shape fabricated by the local fallback policy when no
// audio reference exists. Confidence may arrive on either a 0-1 or 0-100
// scale; both shapes are untrusted input to the normalizer.
type LocalResult struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Department string  `json:"department"`
	WaitTime   string  `json:"waitTime"`
	Language   string  `json:"language"`
}

// RawResult is the tagged union of the two classification result shapes.
// Exactly one of Live or Local is set, matching Kind.
type RawResult struct {
	Kind  ResultKind   `json:"kind"`
	Live  *LiveResult  `json:"live,omitempty"`
	Local *LocalResult `json:"local,omitempty"`
}

// NewLiveResult wraps a backend response.
func NewLiveResult(r LiveResult) RawResult {
	return RawResult{Kind: ResultKindLive, Live: &r}
}

// NewLocalResult wraps a locally fabricated result.
func NewLocalResult(r LocalResult) RawResult {
	return RawResult{Kind: ResultKindLocal, Local: &r}
}

// DecisionRecord is the canonical, display-ready routing decision.
type DecisionRecord struct {
	CategoryLabel     string `json:"categoryLabel"`
	DepartmentLabel   string `json:"departmentLabel"`
	ConfidencePercent int    `json:"confidencePercent"`
	WaitTimeLabel     string `json:"waitTimeLabel"`
	IsHighConfidence  bool   `json:"isHighConfidence"`
}

// DecisionAction is one action offered on the results step.
type DecisionAction string

const (
	ActionConfirmRouting   DecisionAction = "confirm_routing"
	ActionOverrideCategory DecisionAction = "override_category"
	ActionPickCategory     DecisionAction = "pick_category"
	ActionRetryCapture     DecisionAction = "retry_capture"
)

// DecisionView pairs a decision with the action set the confidence policy
// selected for it. Placeholder marks the fixed neutral decision substituted
// when no raw result was available at all.
type DecisionView struct {
	Decision    DecisionRecord   `json:"decision"`
	Actions     []DecisionAction `json:"actions"`
	Placeholder bool             `json:"placeholder"`
}
