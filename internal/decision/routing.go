package decision

import "smartivr/internal/domain"

// FallbackRouting receives everything that cannot be routed with confidence.
const FallbackRouting = "General Support"

// routingRules maps issue categories to support departments. Intentionally
// fixed for this demo; the system does not learn routing.
var routingRules = map[string]string{
	"billing":         "Billing Support",
	"technical_issue": "Technical Support",
	"password_reset":  "Account Security",
	"account_access":  "Account Security",
	"service_request": "Customer Service",
	"general_support": FallbackRouting,
}

// DepartmentFor resolves the department for a category, falling back for
// unknown categories.
func DepartmentFor(category string) string {
	if department, ok := routingRules[category]; ok {
		return department
	}
	return FallbackRouting
}

// KnownCategory reports whether a category has an explicit routing rule.
func KnownCategory(category string) bool {
	_, ok := routingRules[category]
	return ok
}

// ManualCategories returns the choices offered on the manual-selection step.
func ManualCategories() []domain.Category {
	return []domain.Category{
		{ID: "billing", Label: "Billing", Subtitle: "Payments & Invoices"},
		{ID: "technical_issue", Label: "Technical", Subtitle: "Troubleshooting"},
		{ID: "account_access", Label: "Account", Subtitle: "Profile & Access"},
		{ID: "service_request", Label: "Connectivity", Subtitle: "Network Issues"},
		{ID: "hardware", Label: "Hardware", Subtitle: "Device setup"},
		{ID: "security", Label: "Security", Subtitle: "Privacy & Safety"},
	}
}
