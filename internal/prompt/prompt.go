// Package prompt renders the final model prompt from the user message,
// the page context, and the matched policy text. Three templates exist:
// an HR analytics template, an employee template carrying identity, and
// an identity-free fallback used when the employee lookup fails.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sumerudigitals/onboard/internal/grounding"
	"github.com/sumerudigitals/onboard/internal/intent"
	"github.com/sumerudigitals/onboard/internal/policy"
	"github.com/sumerudigitals/onboard/pkg/models"
)

// hrPages are page names that force the HR template regardless of how
// the message itself reads.
var hrPages = map[string]bool{
	"hr dashboard":     true,
	"track onboarding": true,
	"employee details": true,
}

// Builder renders prompts. It resolves policy text through the library
// and employee identity through the tracker.
type Builder struct {
	policies *policy.Library
	tracker  *grounding.Tracker
}

// NewBuilder creates a prompt builder.
func NewBuilder(policies *policy.Library, tracker *grounding.Tracker) *Builder {
	return &Builder{policies: policies, tracker: tracker}
}

// Build renders the prompt for one chat turn. It never fails: when the
// token resolves to no employee the identity-free fallback template is
// used instead.
func (b *Builder) Build(ctx context.Context, message, token string, pageCtx *models.PageContext) string {
	topic := policy.DetectTopic(message)
	policyText := b.policies.Text(topic)
	contextBlob := pageCtx.String()

	if intent.IsHRQuery(message) || hrPages[strings.ToLower(pageCtx.Page())] {
		return hrPrompt(message, contextBlob, policyText)
	}

	emp, err := b.tracker.EmployeeByToken(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("Employee lookup failed, using fallback prompt")
		return fallbackPrompt(message, contextBlob)
	}
	return employeePrompt(message, contextBlob, policyText, emp)
}

func hrPrompt(message, contextBlob, policyText string) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are SUPA, an AI assistant helping HR at Sumeru Digitals with onboarding management.

Current Context:
%s

Relevant Policy:
%s

User asked: %s

Please provide concise, data-driven insights based on the context above. Focus on analytics, statistics, and actionable recommendations.
Format: Use bullets points, include specific numbers/percentages, suggest next steps.
`, contextBlob, policyText, message))
}

func employeePrompt(message, contextBlob, policyText string, emp *models.Employee) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are SUPA, an AI assistant helping employees at Sumeru Digitals with their onboarding.

Employee: %s
Department: %s

Page Context:
%s

Relevant Policy:
%s

IMPORTANT SYSTEM INFORMATION:
- The onboarding system uses a TASK MODULES system: Each main task (Personal Details, Joining Day, Training, etc.) is divided into smaller subtask modules for granular tracking.
- Module Progress: Employees can see which specific modules they've completed within each task (e.g., "Personal Details" has modules: basic_info, family_info, aadhaar, pan, bank_details, nda, declaration).
- PreReview Page: A final review page that shows all onboarding data after completing all 5 main tasks. It's accessible from the Dashboard as the "Final Review" card.
- Main Tasks: Personal Details, Joining Day, Training, Department Introduction, Feedback, PreReview (Final Review). Note: Pre-Onboarding is handled by HR/Admin, not an employee task.
- Tasks can be edited: Employees can return to tasks and update their information (e.g., feedback can be edited and resubmitted).

User asked: %s

Please respond with concise, actionable guidance (3-4 bullet points max) tailored to this employee's onboarding journey. Be friendly and helpful. When discussing tasks, mention specific modules if relevant. Reference the PreReview page when appropriate.
`, emp.Name, emp.Department, contextBlob, policyText, message))
}

func fallbackPrompt(message, contextBlob string) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are SUPA, an AI assistant at Sumeru Digitals helping employees with onboarding.

Context:
%s

IMPORTANT SYSTEM INFORMATION:
- The onboarding system uses a TASK MODULES system: Each main task is divided into smaller subtask modules for granular tracking.
- Main Tasks: Personal Details, Joining Day, Training, Department Introduction, Feedback, PreReview (Final Review). Note: Pre-Onboarding is handled by HR/Admin, not an employee task.
- PreReview Page: Final review page accessible after completing all 5 main tasks.
- Tasks can be edited: Employees can return to tasks and update their information.

User asked: %s

Please provide helpful, concise guidance about onboarding tasks and modules.
`, contextBlob, message))
}
