// Package intent classifies free-text chat messages: whether they are in
// scope for the onboarding assistant, whether they take an HR/analytics
// perspective, and which structured action (if any) they request.
//
// All classifiers are ordered rule tables evaluated top to bottom, so rule
// priority is explicit and testable rather than buried in branching.
package intent

import "strings"

// ActionKind enumerates the structured actions extractable from a message.
type ActionKind string

const (
	ActionGeneral         ActionKind = "general"
	ActionSearchEmployee  ActionKind = "search_employee"
	ActionDepartmentStats ActionKind = "department_stats"
	ActionStatusFilter    ActionKind = "status_filter"
	ActionAnalytics       ActionKind = "analytics"
)

// Action is the structured request extracted from a message. Exactly one
// of Query, Department, Status is set, depending on Kind.
type Action struct {
	Kind       ActionKind
	Query      string
	Department string
	Status     string
}

// Intent is the full classification of one message.
type Intent struct {
	InScope       bool
	HRPerspective bool
	Action        Action
}

// scopeKeywords gate the assistant to the onboarding domain. A message
// containing none of these is refused before any grounding work happens.
var scopeKeywords = []string{
	"onboarding", "joining", "training", "feedback", "personal details",
	"documents", "aadhaar", "pan", "bank proof", "nda", "manager", "buddy",
	"team", "dashboard", "tasks", "hr", "department", "form", "upload",
	"next button", "badge", "completion", "progress", "analytics", "statistics",
	"track", "employees", "summary", "report", "overview", "status",
}

// hrKeywords mark a message as taking the HR/admin analytical perspective.
var hrKeywords = []string{
	"all employees", "onboarding status", "completion rate", "analytics",
	"dashboard overview", "department stats", "feedback summary", "task statistics",
	"track onboarding", "employee details", "pending employees", "completed employees",
	"how many", "show me", "list", "report", "summary", "breakdown",
}

// departments recognized in department-stats requests.
var departments = []string{"engineering", "sales", "marketing", "hr", "finance", "operations"}

// InScope reports whether the message touches the onboarding domain.
func InScope(message string) bool {
	return containsAny(strings.ToLower(message), scopeKeywords)
}

// IsHRQuery reports whether the message reads as an HR-perspective
// analytical query rather than a personal onboarding question.
func IsHRQuery(message string) bool {
	return containsAny(strings.ToLower(message), hrKeywords)
}

// actionRules are tried in order; the first rule producing an action wins.
// Rules are mutually exclusive by construction order, not content analysis.
var actionRules = []func(string) (Action, bool){
	extractSearch,
	extractDepartment,
	extractPendingFilter,
	extractCompletedFilter,
	extractAnalytics,
}

// ExtractAction extracts the structured action requested by a message.
func ExtractAction(message string) Action {
	lower := strings.ToLower(message)
	for _, rule := range actionRules {
		if action, ok := rule(lower); ok {
			return action
		}
	}
	return Action{Kind: ActionGeneral}
}

// Classify runs all three classifiers over one message.
func Classify(message string) Intent {
	return Intent{
		InScope:       InScope(message),
		HRPerspective: IsHRQuery(message),
		Action:        ExtractAction(message),
	}
}

// extractSearch handles "search for <term>" style lookups. The search term
// is the first whitespace-delimited token after "search for"; if nothing
// follows, the rule declines and later rules get a chance.
func extractSearch(lower string) (Action, bool) {
	if !strings.Contains(lower, "search for") &&
		!strings.Contains(lower, "find employee") &&
		!strings.Contains(lower, "show employee") {
		return Action{}, false
	}

	_, rest, found := strings.Cut(lower, "search for")
	if !found {
		return Action{}, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Action{}, false
	}
	return Action{Kind: ActionSearchEmployee, Query: fields[0]}, true
}

func extractDepartment(lower string) (Action, bool) {
	if !strings.Contains(lower, "department") {
		return Action{}, false
	}
	for _, dept := range departments {
		if strings.Contains(lower, dept) {
			return Action{Kind: ActionDepartmentStats, Department: capitalize(dept)}, true
		}
	}
	return Action{}, false
}

func extractPendingFilter(lower string) (Action, bool) {
	if strings.Contains(lower, "pending") || strings.Contains(lower, "not completed") {
		return Action{Kind: ActionStatusFilter, Status: "pending"}, true
	}
	return Action{}, false
}

func extractCompletedFilter(lower string) (Action, bool) {
	if strings.Contains(lower, "completed") || strings.Contains(lower, "done") {
		return Action{Kind: ActionStatusFilter, Status: "completed"}, true
	}
	return Action{}, false
}

func extractAnalytics(lower string) (Action, bool) {
	if strings.Contains(lower, "analytics") || strings.Contains(lower, "overview") ||
		strings.Contains(lower, "summary") {
		return Action{Kind: ActionAnalytics}, true
	}
	return Action{}, false
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
