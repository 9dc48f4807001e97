package prompt_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sumerudigitals/onboard/internal/docstore"
	"github.com/sumerudigitals/onboard/internal/grounding"
	"github.com/sumerudigitals/onboard/internal/policy"
	"github.com/sumerudigitals/onboard/internal/prompt"
	"github.com/sumerudigitals/onboard/internal/store"
	"github.com/sumerudigitals/onboard/pkg/models"
)

func newTestBuilder(t *testing.T) *prompt.Builder {
	t.Helper()

	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })

	err := s.CreateEmployee(context.Background(), &models.Employee{
		ID: "E1", Name: "Asha Rao", Email: "asha@sumeru.example",
		Department: "Engineering", Token: "tok-asha", Status: models.StatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}

	policyDir := t.TempDir()
	leave := "Employees accrue 18 casual leaves per year."
	if err := os.WriteFile(filepath.Join(policyDir, "leave-policy.txt"), []byte(leave), 0o644); err != nil {
		t.Fatal(err)
	}
	policies := policy.NewLibrary(policyDir)
	t.Cleanup(func() { policies.Close() })

	tracker := grounding.NewTracker(s, docstore.NewLocalStore(t.TempDir()))
	return prompt.NewBuilder(policies, tracker)
}

func TestBuild_EmployeeTemplate(t *testing.T) {
	b := newTestBuilder(t)

	pageCtx := models.NewPageContext().
		Set("Page", "Dashboard").
		Set("Next Task", "Training")

	got := b.Build(context.Background(), "can i take casual leave during onboarding", "tok-asha", pageCtx)

	for _, want := range []string{
		"helping employees at Sumeru Digitals",
		"Employee: Asha Rao",
		"Department: Engineering",
		"Page: Dashboard\nNext Task: Training",
		"Employees accrue 18 casual leaves per year.",
		"IMPORTANT SYSTEM INFORMATION:",
		"User asked: can i take casual leave during onboarding",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(got, "helping HR") {
		t.Error("employee message rendered the HR template")
	}
}

// An HR-perspective message selects the HR template even on an employee
// page, and carries no employee identity.
func TestBuild_HRTemplateByMessage(t *testing.T) {
	b := newTestBuilder(t)

	pageCtx := models.NewPageContext().Set("Page", "Dashboard")
	got := b.Build(context.Background(), "show me the completion rate breakdown", "tok-asha", pageCtx)

	if !strings.Contains(got, "helping HR at Sumeru Digitals") {
		t.Error("HR message did not render the HR template")
	}
	if strings.Contains(got, "Employee: Asha Rao") {
		t.Error("HR prompt leaked employee identity")
	}
}

// HR pages force the HR template regardless of message wording.
func TestBuild_HRTemplateByPage(t *testing.T) {
	b := newTestBuilder(t)

	pageCtx := models.NewPageContext().
		Set("Page", "HR Dashboard").
		Set("Total Employees", 3)

	got := b.Build(context.Background(), "what is the joining day plan", "tok-asha", pageCtx)
	if !strings.Contains(got, "helping HR at Sumeru Digitals") {
		t.Error("HR page did not render the HR template")
	}
}

// Unknown tokens fall back to the identity-free template instead of
// failing the build.
func TestBuild_FallbackTemplate(t *testing.T) {
	b := newTestBuilder(t)

	pageCtx := models.NewPageContext().Set("Page", "Dashboard")
	got := b.Build(context.Background(), "what is my next task", "ghost-token", pageCtx)

	if !strings.Contains(got, "helping employees with onboarding") {
		t.Errorf("fallback template not used:\n%s", got)
	}
	if strings.Contains(got, "Employee:") {
		t.Error("fallback prompt carries identity")
	}
	if strings.Contains(got, "Relevant Policy:") {
		t.Error("fallback template should not carry a policy block")
	}
}

func TestBuild_MissingPolicyPlaceholder(t *testing.T) {
	b := newTestBuilder(t)

	pageCtx := models.NewPageContext().Set("Page", "Dashboard")
	got := b.Build(context.Background(), "vpn access for my laptop", "tok-asha", pageCtx)

	if !strings.Contains(got, "Policy file 'it-usage-and-security.txt' not found.") {
		t.Error("missing policy text did not degrade to placeholder")
	}
}
