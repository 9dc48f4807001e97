// Package policy classifies chat messages into HR policy topics and serves
// the per-topic reference text that grounds the model prompt.
package policy

import (
	"regexp"
	"strings"
)

// Policy topic names. Each maps to a reference text file named
// "<lowercased, spaces→dashes>.txt" in the policy directory.
const (
	TopicWorkHours       = "Work Hours and Attendance"
	TopicCodeOfConduct   = "Code of Conduct"
	TopicCompensation    = "Compensation and Benefits"
	TopicConfidentiality = "Confidentiality and Intellectual Property"
	TopicExit            = "Exit and Transition"
	TopicHarassment      = "Harassment and Grievance Redressal (POSH)"
	TopicITUsage         = "IT Usage and Security"
	TopicLeave           = "Leave Policy"
	TopicPerformance     = "Performance and Appraisal"
	TopicRemoteWork      = "Remote Work and Hybrid Guidelines"
	TopicTravel          = "Travel and Expense Reimbursement"

	// TopicDefault is returned when no bucket matches.
	TopicDefault = "Company Policy"

	// TopicNone marks replies that never reached topic grounding
	// (out-of-scope refusals).
	TopicNone = "none"
)

// topicRule is one (topic, keyword set) bucket. Buckets are evaluated in
// order and the first match wins, so shared keywords resolve by priority.
type topicRule struct {
	topic   string
	pattern *regexp.Regexp
}

// topicRules in priority order. Matching is word-boundary, not substring,
// so "hr" cannot match inside "three".
var topicRules = []topicRule{
	{TopicWorkHours, keywordPattern("attendance", "absent", "late", "punch", "biometric", "work hours")},
	{TopicCodeOfConduct, keywordPattern("conduct", "behavior", "ethics")},
	{TopicCompensation, keywordPattern("salary", "bonus", "benefits", "compensation")},
	{TopicConfidentiality, keywordPattern("confidential", "intellectual", "ip")},
	{TopicExit, keywordPattern("exit", "resign", "transition", "notice period")},
	{TopicHarassment, keywordPattern("harassment", "posh", "grievance", "complaint")},
	{TopicITUsage, keywordPattern("vpn", "security", "device", "laptop", "it usage")},
	{TopicLeave, keywordPattern("leave", "vacation", "holiday", "sick", "casual")},
	{TopicPerformance, keywordPattern("performance", "appraisal", "review", "rating")},
	{TopicRemoteWork, keywordPattern("remote", "hybrid", "work from home", "wfh")},
	{TopicTravel, keywordPattern("travel", "expense", "reimbursement", "claim")},
}

// keywordPattern builds a single word-boundary alternation for a bucket.
func keywordPattern(keywords ...string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// DetectTopic maps free text to exactly one policy topic. Pure function of
// the case-normalized message; identical input yields identical output.
func DetectTopic(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range topicRules {
		if rule.pattern.MatchString(lower) {
			return rule.topic
		}
	}
	return TopicDefault
}

// Topics returns all classifiable topic names in priority order.
func Topics() []string {
	out := make([]string, 0, len(topicRules))
	for _, rule := range topicRules {
		out = append(out, rule.topic)
	}
	return out
}
