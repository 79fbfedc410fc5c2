// Package decision converts loosely-typed classification results into one
// canonical routing decision and applies the confidence branching policy.
package decision

import (
	"math"
	"strings"

	"smartivr/internal/domain"
)

const (
	// highConfidenceThreshold is exclusive: exactly 70 is not high confidence.
	highConfidenceThreshold = 70

	defaultCategoryLabel   = "Issue"
	defaultDepartmentLabel = "Support"
	defaultWaitTimeLabel   = "2 min"
)

// Normalize produces the canonical decision record from either result shape.
func Normalize(raw domain.RawResult) domain.DecisionRecord {
	var category, department, waitTime string
	var confidence float64

	switch raw.Kind {
	case domain.ResultKindLive:
		if raw.Live != nil {
			category = raw.Live.IssueCategory
			department = raw.Live.RoutingTo
			confidence = raw.Live.Confidence
		}
	case domain.ResultKindLocal:
		if raw.Local != nil {
			category = raw.Local.Category
			department = raw.Local.Department
			waitTime = raw.Local.WaitTime
			confidence = raw.Local.Confidence
		}
	}

	if category == "" {
		category = defaultCategoryLabel
	}
	if department == "" {
		department = defaultDepartmentLabel
	}
	if waitTime == "" {
		waitTime = defaultWaitTimeLabel
	}

	percent := normalizePercent(confidence)
	return domain.DecisionRecord{
		CategoryLabel:     strings.ReplaceAll(category, "_", " "),
		DepartmentLabel:   department,
		ConfidencePercent: percent,
		WaitTimeLabel:     waitTime,
		IsHighConfidence:  percent > highConfidenceThreshold,
	}
}

// normalizePercent detects the confidence scale by value range: values in
// [0,1] are fractions, anything above 1 is already percent-scaled. The
// boundary 1 is a fraction (100%), not a 1% score.
func normalizePercent(confidence float64) int {
	if confidence <= 0 {
		return 0
	}
	if confidence <= 1 {
		confidence *= 100
	}
	percent := int(math.Round(confidence))
	if percent > 100 {
		percent = 100
	}
	return percent
}

// Placeholder is the fixed neutral decision substituted when no raw result
// is available at all. Normalize must not be called in that case.
func Placeholder() domain.DecisionRecord {
	return domain.DecisionRecord{
		CategoryLabel:     "Internet Connectivity",
		DepartmentLabel:   "Technical Support",
		ConfidencePercent: 85,
		WaitTimeLabel:     defaultWaitTimeLabel,
		IsHighConfidence:  true,
	}
}

// View applies the branching policy: high confidence offers confirm plus a
// category override, low confidence withholds confirm entirely.
func View(raw *domain.RawResult) domain.DecisionView {
	if raw == nil {
		record := Placeholder()
		return domain.DecisionView{
			Decision:    record,
			Actions:     actionsFor(record.IsHighConfidence),
			Placeholder: true,
		}
	}

	record := Normalize(*raw)
	return domain.DecisionView{
		Decision: record,
		Actions:  actionsFor(record.IsHighConfidence),
	}
}

func actionsFor(highConfidence bool) []domain.DecisionAction {
	if highConfidence {
		return []domain.DecisionAction{domain.ActionConfirmRouting, domain.ActionOverrideCategory}
	}
	return []domain.DecisionAction{domain.ActionPickCategory, domain.ActionRetryCapture}
}
