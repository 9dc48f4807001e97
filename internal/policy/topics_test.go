package policy_test

import (
	"testing"

	"github.com/sumerudigitals/onboard/internal/policy"
)

func TestDetectTopic(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"how many casual leaves do I get", policy.TopicLeave},
		{"vacation policy please", policy.TopicLeave},
		{"what are the work hours", policy.TopicWorkHours},
		{"biometric punch not working", policy.TopicWorkHours},
		{"when is my salary credited", policy.TopicCompensation},
		{"how do I file a harassment complaint", policy.TopicHarassment},
		{"vpn access for my laptop", policy.TopicITUsage},
		{"what is the notice period", policy.TopicExit},
		{"travel reimbursement claim", policy.TopicTravel},
		{"can I work from home on fridays", policy.TopicRemoteWork},
		{"is wfh allowed", policy.TopicRemoteWork},
		{"when is my appraisal", policy.TopicPerformance},
		{"tell me about the dress code", policy.TopicDefault},
		{"", policy.TopicDefault},
	}

	for _, tt := range tests {
		if got := policy.DetectTopic(tt.message); got != tt.want {
			t.Errorf("DetectTopic(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

// Keywords match on word boundaries, so "ip" must not fire inside
// "shipment" and "review" must not fire inside "preview".
func TestDetectTopic_WordBoundaries(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"where is my shipment", policy.TopicDefault},
		{"open the preview page", policy.TopicDefault},
		{"what is our ip policy", policy.TopicConfidentiality},
	}

	for _, tt := range tests {
		if got := policy.DetectTopic(tt.message); got != tt.want {
			t.Errorf("DetectTopic(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

// Buckets run in a fixed order; a message hitting two buckets lands in
// the earlier one.
func TestDetectTopic_BucketPriority(t *testing.T) {
	// "conduct" (Code of Conduct) comes before "performance".
	got := policy.DetectTopic("performance related conduct issues")
	if got != policy.TopicCodeOfConduct {
		t.Fatalf("DetectTopic = %q, want %q", got, policy.TopicCodeOfConduct)
	}
}

func TestDetectTopic_CaseInsensitive(t *testing.T) {
	if got := policy.DetectTopic("LEAVE Policy DETAILS"); got != policy.TopicLeave {
		t.Fatalf("DetectTopic = %q, want %q", got, policy.TopicLeave)
	}
}

func TestTopics(t *testing.T) {
	topics := policy.Topics()
	if len(topics) != 11 {
		t.Fatalf("len(Topics()) = %d, want 11", len(topics))
	}
	if topics[0] != policy.TopicWorkHours {
		t.Errorf("Topics()[0] = %q, want %q", topics[0], policy.TopicWorkHours)
	}
	if topics[len(topics)-1] != policy.TopicTravel {
		t.Errorf("Topics() last = %q, want %q", topics[len(topics)-1], policy.TopicTravel)
	}
}
