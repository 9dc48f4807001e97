package grounding_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sumerudigitals/onboard/internal/grounding"
	"github.com/sumerudigitals/onboard/internal/intent"
	"github.com/sumerudigitals/onboard/internal/store"
	"github.com/sumerudigitals/onboard/pkg/models"
)

func buildContext(t *testing.T, tracker *grounding.Tracker, token, page string) *grounding.Result {
	t.Helper()
	result, err := tracker.BuildContext(context.Background(), token, page)
	if err != nil {
		t.Fatalf("BuildContext(%q, %q): %v", token, page, err)
	}
	return result
}

func TestBuildContext_Personal(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	result := buildContext(t, tracker, "tok-asha", "personal")

	c := result.Context
	if got := c.Page(); got != "personal-details" {
		t.Errorf("Page = %q, want personal-details", got)
	}

	// 12 of 16 fields filled rounds to 75%.
	if v, _ := c.Get("Completion"); v != "75%" {
		t.Errorf("Completion = %v, want 75%%", v)
	}

	// Module strings render per-module ticks.
	v, _ := c.Get("Task Modules")
	if s, _ := v.(string); !strings.Contains(s, "Basic Info (✓)") || !strings.Contains(s, "Declaration (○)") {
		t.Errorf("Task Modules = %v", v)
	}
	if v, _ := c.Get("Module Progress"); v != "2/3 modules completed" {
		t.Errorf("Module Progress = %v", v)
	}

	// Key order is stable: Page always leads.
	if keys := c.Keys(); keys[0] != "Page" {
		t.Errorf("first key = %q, want Page", keys[0])
	}
}

func TestBuildContext_Dashboard(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	c := buildContext(t, tracker, "tok-asha", "dashboard").Context

	if v, _ := c.Get("Completed Tasks"); v != "2 / 5" {
		t.Errorf("Completed Tasks = %v, want 2 / 5", v)
	}
	if v, _ := c.Get("Pending Tasks"); v != "Training, Department Introduction, Feedback" {
		t.Errorf("Pending Tasks = %v", v)
	}
	if v, _ := c.Get("Badge Status"); v != "Locked until all tasks complete" {
		t.Errorf("Badge Status = %v", v)
	}
	if v, _ := c.Get("Next Task"); v != "Training" {
		t.Errorf("Next Task = %v", v)
	}
	if v, _ := c.Get("Overall Completion"); v != "40%" {
		t.Errorf("Overall Completion = %v", v)
	}
}

func TestBuildContext_DashboardAllDone(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	c := buildContext(t, tracker, "tok-meera", "dashboard").Context

	if v, _ := c.Get("Pending Tasks"); v != "None" {
		t.Errorf("Pending Tasks = %v, want None", v)
	}
	if v, _ := c.Get("Badge Status"); v != "Unlocked" {
		t.Errorf("Badge Status = %v, want Unlocked", v)
	}
	if v, _ := c.Get("Next Task"); v != "None 🎉" {
		t.Errorf("Next Task = %v", v)
	}
}

func TestBuildContext_DepartmentIntro(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	c := buildContext(t, tracker, "tok-asha", "department-intro").Context

	v, _ := c.Get("Team Members")
	names, _ := v.([]string)
	if len(names) != 1 || names[0] != "Vikram Shah" {
		t.Errorf("Team Members = %v, want [Vikram Shah]", v)
	}
	if v, _ := c.Get("Team Count"); v != 1 {
		t.Errorf("Team Count = %v, want 1", v)
	}
}

func TestBuildContext_HRDashboard(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	result := buildContext(t, tracker, "", "hr-dashboard")

	if result.Degraded {
		t.Fatalf("Degraded = true, reason %q", result.Reason)
	}
	c := result.Context
	if v, _ := c.Get("Total Employees"); v != 3 {
		t.Errorf("Total Employees = %v, want 3", v)
	}
	if v, _ := c.Get("Overall Completion Rate"); v != "33.3%" {
		t.Errorf("Overall Completion Rate = %v, want 33.3%%", v)
	}
	if v, _ := c.Get("Feedback Average Rating"); v != 4.5 {
		t.Errorf("Feedback Average Rating = %v, want 4.5", v)
	}

	v, _ := c.Get("Departments")
	depts, _ := v.([]string)
	if len(depts) != 2 || depts[0] != "Engineering" || depts[1] != "Sales" {
		t.Errorf("Departments = %v, want [Engineering Sales]", v)
	}
}

// HR aggregate pages never need a valid token.
func TestBuildContext_EmployeeDetailsPage(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	c := buildContext(t, tracker, "not-a-token", "employee-details").Context

	if v, _ := c.Get("Total Employees"); v != 3 {
		t.Errorf("Total Employees = %v, want 3", v)
	}
	if v, _ := c.Get("Pending"); v != 2 {
		t.Errorf("Pending = %v, want 2", v)
	}
}

func TestBuildContext_UnknownPage(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	c := buildContext(t, tracker, "tok-asha", "settings").Context

	if got := c.Page(); got != "Settings" {
		t.Errorf("Page = %q, want Settings", got)
	}
	if v, _ := c.Get("Note"); v != "No structured context available for this page yet." {
		t.Errorf("Note = %v", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestBuildContext_UnknownTokenEmployeePage(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	_, err := tracker.BuildContext(context.Background(), "ghost", "dashboard")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// ── enrichment ──────────────────────────────────────────────

func TestEnrichContext_StatusFilter(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	result := buildContext(t, tracker, "", "hr-dashboard")

	in := intent.Classify("show me pending employees")
	degraded, _ := tracker.EnrichContext(context.Background(), result.Context, in)
	if degraded {
		t.Fatal("enrichment degraded unexpectedly")
	}

	v, ok := result.Context.Get("Pending Employees")
	if !ok {
		t.Fatalf("Pending Employees key missing; keys = %v", result.Context.Keys())
	}
	employees, ok := v.([]models.EmployeeSummary)
	if !ok {
		t.Fatalf("unexpected value shape %T", v)
	}
	if len(employees) != 2 {
		t.Errorf("len = %d, want 2 pending employees", len(employees))
	}
}

func TestEnrichContext_SearchAndAnalytics(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	ctx := context.Background()

	result := buildContext(t, tracker, "", "hr-dashboard")
	in := intent.Classify("search for meera in the employees list")
	if degraded, _ := tracker.EnrichContext(ctx, result.Context, in); degraded {
		t.Fatal("search enrichment degraded")
	}
	if !result.Context.Has("Search Results") {
		t.Error("Search Results key missing")
	}

	result = buildContext(t, tracker, "", "hr-dashboard")
	in = intent.Classify("give me the analytics overview for all employees")
	if degraded, _ := tracker.EnrichContext(ctx, result.Context, in); degraded {
		t.Fatal("analytics enrichment degraded")
	}
	if !result.Context.Has("Analytics") || !result.Context.Has("Summary") {
		t.Error("Analytics/Summary keys missing")
	}
}

// Non-HR messages never gain enrichment keys, whatever they ask.
func TestEnrichContext_EmployeePerspectiveNoOp(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	result := buildContext(t, tracker, "tok-asha", "dashboard")

	before := result.Context.Len()
	in := intent.Classify("what tasks are pending for me")
	if in.HRPerspective {
		t.Fatal("fixture message unexpectedly reads as HR")
	}
	tracker.EnrichContext(context.Background(), result.Context, in)
	if result.Context.Len() != before {
		t.Errorf("context grew from %d to %d keys", before, result.Context.Len())
	}
}
