package grounding

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sumerudigitals/onboard/pkg/models"
)

// Result carries a built page context plus a degradation marker. HR
// aggregate pages never fail the chat call outright: when their data
// source is down the context carries an Error field instead and Degraded
// records why.
type Result struct {
	Context  *models.PageContext
	Degraded bool
	Reason   string
}

// BuildContext assembles the page-specific context block for one chat
// turn. Employee pages fail hard on an unknown token; HR pages degrade.
func (t *Tracker) BuildContext(ctx context.Context, token, page string) (*Result, error) {
	switch strings.ToLower(page) {
	case "personal":
		return t.personalContext(ctx, token)
	case "dashboard":
		return t.dashboardContext(ctx, token)
	case "joining-day":
		return t.joiningDayContext(ctx, token)
	case "training":
		return t.trainingContext(ctx, token)
	case "department-intro":
		return t.departmentIntroContext(ctx, token)
	case "feedback":
		return t.feedbackContext(ctx, token)
	case "pre-review", "prereview":
		return t.preReviewContext(ctx, token)
	case "hr-dashboard", "hrdashboard":
		return t.hrDashboardContext(ctx)
	case "track-onboarding", "trackonboarding":
		return t.trackOnboardingContext(ctx)
	case "employee-details", "employeedetails":
		return t.employeeDetailsContext(ctx)
	default:
		c := models.NewPageContext().
			Set("Page", capitalize(strings.ToLower(page))).
			Set("Note", "No structured context available for this page yet.")
		return &Result{Context: c}, nil
	}
}

func (t *Tracker) personalContext(ctx context.Context, token string) (*Result, error) {
	info, err := t.PersonalInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	filled := 0
	required := info.RequiredFields()
	for _, val := range required {
		if val != "" {
			filled++
		}
	}
	percent := roundPercent(filled, len(required))

	docStatus, err := t.DocumentStatus(ctx, token)
	if err != nil {
		return nil, err
	}

	tm, err := t.TaskModuleProgress(ctx, token, "Personal Details")
	if err != nil {
		return nil, err
	}

	c := models.NewPageContext().
		Set("Page", "personal-details").
		Set("Completion", fmt.Sprintf("%d%%", percent)).
		Set("Required Documents", "Aadhaar, PAN, Bank Proof, NDA").
		Set("Save Behavior", "Save unlocks Next button").
		Set("Mandatory Fields", "Aadhaar and PAN are mandatory").
		Set("Document Status", formatDocStatus(docStatus)).
		Set("Task Modules", moduleList(tm, "basic_info, family_info, aadhaar, pan, bank_details, nda, declaration")).
		Set("Module Progress", moduleCount(tm, "Modules: basic_info, family_info, aadhaar, pan, bank_details, nda, declaration"))
	return &Result{Context: c}, nil
}

func (t *Tracker) dashboardContext(ctx context.Context, token string) (*Result, error) {
	status, err := t.TaskStatus(ctx, token)
	if err != nil {
		return nil, err
	}
	next, err := t.NextTask(ctx, token)
	if err != nil {
		return nil, err
	}
	byTask, err := t.ModuleProgress(ctx, token, "")
	if err != nil {
		return nil, err
	}

	pending := "None"
	badge := "Unlocked"
	if len(status.Pending) > 0 {
		pending = strings.Join(status.Pending, ", ")
		badge = "Locked until all tasks complete"
	}

	c := models.NewPageContext().
		Set("Page", "Dashboard").
		Set("Completed Tasks", fmt.Sprintf("%d / 5", len(status.Completed))).
		Set("Pending Tasks", pending).
		Set("Badge Status", badge).
		Set("Next Task", next).
		Set("Overall Completion", fmt.Sprintf("%d%%", status.Percent)).
		Set("Task Modules Progress", moduleSummary(byTask, "Module tracking enabled for all tasks")).
		Set("Main Tasks", "Personal Details, Joining Day, Training, Department Introduction, Feedback, PreReview (Final Review)").
		Set("Note", "Pre-Onboarding is handled by HR/Admin, not an employee task")
	return &Result{Context: c}, nil
}

func (t *Tracker) joiningDayContext(ctx context.Context, token string) (*Result, error) {
	tm, err := t.TaskModuleProgress(ctx, token, "Joining Day")
	if err != nil {
		return nil, err
	}

	c := models.NewPageContext().
		Set("Page", "Joining Day").
		Set("Checklist", "Set up company email, Attend orientation session, Complete policy acknowledgment").
		Set("Modules", moduleList(tm, "email_setup, orientation, policy_acknowledgment")).
		Set("Module Progress", moduleCount(tm, "3 modules: email_setup, orientation, policy_acknowledgment")).
		Set("Timing", "Starts at 10 AM IST").
		Set("Location", "Sumeru Digitals HQ, 5th Floor").
		Set("Dress Code", "Smart casual").
		Set("Documents Required", "Signed NDA, Aadhaar, PAN")
	return &Result{Context: c}, nil
}

func (t *Tracker) trainingContext(ctx context.Context, token string) (*Result, error) {
	tm, err := t.TaskModuleProgress(ctx, token, "Training")
	if err != nil {
		return nil, err
	}

	c := models.NewPageContext().
		Set("Page", "Training").
		Set("Training Modules", "POSH Certification, IT Systems Access, Collaboration Training").
		Set("Modules", moduleList(tm, "company_culture (POSH), technical_training (IT Access), compliance_training (Collaboration)")).
		Set("Module Progress", moduleCount(tm, "3 modules: company_culture, technical_training, compliance_training")).
		Set("Completion Criteria", "Upload PDF proof for each training module").
		Set("File Format", "Only PDF files are accepted").
		Set("Support", "Reach out to HR or your buddy for help").
		Set("Estimated Time", "2-3 hours total")
	return &Result{Context: c}, nil
}

func (t *Tracker) departmentIntroContext(ctx context.Context, token string) (*Result, error) {
	emp, err := t.EmployeeByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	members, err := t.DepartmentMembers(ctx, emp.Department, token)
	if err != nil {
		return nil, err
	}
	tm, err := t.TaskModuleProgress(ctx, token, "Department Introduction")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}

	c := models.NewPageContext().
		Set("Page", "Department Introduction").
		Set("Team Members", names).
		Set("Team Count", len(names)).
		Set("Modules", moduleList(tm, "org_chart (view organization chart), team_contact (contact team members)")).
		Set("Module Progress", moduleCount(tm, "2 modules: org_chart, team_contact")).
		Set("Features", "View organizational chart, See team members with details, Contact team via email, Copy email addresses").
		Set("Action", "Click 'View Details' on any team member to see their contact info, availability, and organization details")
	return &Result{Context: c}, nil
}

func (t *Tracker) feedbackContext(ctx context.Context, token string) (*Result, error) {
	tm, err := t.TaskModuleProgress(ctx, token, "Feedback")
	if err != nil {
		return nil, err
	}

	c := models.NewPageContext().
		Set("Page", "Feedback").
		Set("Purpose", "Share your onboarding experience").
		Set("Visibility", "Only HR and onboarding team can view your feedback").
		Set("Format", "Free text + star rating (1-5 stars)").
		Set("Modules", moduleList(tm, "rating (provide 1-5 star rating), comments (write feedback text), submission (submit feedback)")).
		Set("Module Progress", moduleCount(tm, "3 modules: rating, comments, submission")).
		Set("Editable", "Feedback can be edited and updated - new submission replaces previous one").
		Set("Next Steps", "Submit to unlock final badge (PreReview page)")
	return &Result{Context: c}, nil
}

func (t *Tracker) preReviewContext(ctx context.Context, token string) (*Result, error) {
	status, err := t.TaskStatus(ctx, token)
	if err != nil {
		return nil, err
	}
	byTask, err := t.ModuleProgress(ctx, token, "")
	if err != nil {
		return nil, err
	}

	completed := "None yet"
	if len(status.Completed) > 0 {
		completed = strings.Join(status.Completed, ", ")
	}

	c := models.NewPageContext().
		Set("Page", "PreReview (Final Review)").
		Set("Purpose", "Review all onboarding information before completion").
		Set("Content", "Shows employee details, personal info, completed tasks, training modules, feedback, and all submitted documents").
		Set("Access", "Available after all 5 main tasks are completed (Personal Details, Joining Day, Training, Department Introduction, Feedback). Note: Pre-Onboarding is handled by HR/Admin.").
		Set("Overall Progress", fmt.Sprintf("%d%%", status.Percent)).
		Set("Completed Tasks", completed).
		Set("Total Main Tasks", "5 tasks (Pre-Onboarding is admin-only)").
		Set("Task Modules Summary", moduleSummary(byTask, "All modules tracked per task")).
		Set("Final Step", "This is the last step before onboarding completion")
	return &Result{Context: c}, nil
}

func (t *Tracker) hrDashboardContext(ctx context.Context) (*Result, error) {
	analytics, err := t.OrgAnalytics(ctx)
	if err != nil {
		return degraded("HR Dashboard", "Could not load analytics", err), nil
	}
	summary, err := t.PopulationSummary(ctx)
	if err != nil {
		return degraded("HR Dashboard", "Could not load analytics", err), nil
	}
	feedback, err := t.FeedbackSummary(ctx)
	if err != nil {
		return degraded("HR Dashboard", "Could not load analytics", err), nil
	}

	c := models.NewPageContext().
		Set("Page", "HR Dashboard").
		Set("Total Employees", analytics.TotalEmployees).
		Set("Completed Onboarding", analytics.CompletedEmployees).
		Set("Pending Onboarding", analytics.PendingEmployees).
		Set("Overall Completion Rate", formatRate(analytics.CompletionRate)+"%").
		Set("Average Days to Complete", analytics.AverageDaysToComplete).
		Set("Departments", departmentNames(summary)).
		Set("Feedback Average Rating", feedback.AverageRating).
		Set("Total Feedback Count", feedback.Total)
	return &Result{Context: c}, nil
}

func (t *Tracker) trackOnboardingContext(ctx context.Context) (*Result, error) {
	analytics, err := t.OrgAnalytics(ctx)
	if err != nil {
		return degraded("Track Onboarding", "Could not load stats", err), nil
	}
	summary, err := t.PopulationSummary(ctx)
	if err != nil {
		return degraded("Track Onboarding", "Could not load stats", err), nil
	}

	c := models.NewPageContext().
		Set("Page", "Track Onboarding").
		Set("Total Employees", analytics.TotalEmployees).
		Set("Completed", analytics.CompletedEmployees).
		Set("Pending", analytics.PendingEmployees).
		Set("Task Statistics", analytics.TaskStatistics).
		Set("Department Breakdown", summary.Departments)
	return &Result{Context: c}, nil
}

func (t *Tracker) employeeDetailsContext(ctx context.Context) (*Result, error) {
	summary, err := t.PopulationSummary(ctx)
	if err != nil {
		return degraded("Employee Details", "Could not load data", err), nil
	}

	c := models.NewPageContext().
		Set("Page", "Employee Details").
		Set("Total Employees", summary.Total).
		Set("Completed", summary.Completed).
		Set("Pending", summary.Pending).
		Set("Departments", departmentNames(summary))
	return &Result{Context: c}, nil
}

// ── rendering helpers ───────────────────────────────────────

func degraded(page, prefix string, err error) *Result {
	c := models.NewPageContext().
		Set("Page", page).
		Set("Error", fmt.Sprintf("%s: %v", prefix, err))
	return &Result{Context: c, Degraded: true, Reason: err.Error()}
}

// moduleList renders "Name (✓)" / "Name (○)" per module, falling back to
// the static description when no modules are configured for the task.
func moduleList(tm *models.TaskModules, fallback string) string {
	if tm == nil || tm.TotalModules == 0 {
		return fallback
	}
	parts := make([]string, 0, len(tm.Modules))
	for _, m := range tm.Modules {
		mark := "○"
		if m.Status == models.TaskCompleted {
			mark = "✓"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, mark))
	}
	return strings.Join(parts, ", ")
}

func moduleCount(tm *models.TaskModules, fallback string) string {
	if tm == nil || tm.TotalModules == 0 {
		return fallback
	}
	return fmt.Sprintf("%d/%d modules completed", tm.CompletedModules, tm.TotalModules)
}

// moduleSummary renders "Task: c/t modules" per main task that has
// modules configured, in the fixed main-task order.
func moduleSummary(byTask map[string]*models.TaskModules, fallback string) string {
	var parts []string
	for _, title := range models.MainTasks {
		tm, ok := byTask[title]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d/%d modules", title, tm.CompletedModules, tm.TotalModules))
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, "; ")
}

func formatDocStatus(status map[string]string) string {
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+status[k])
	}
	return strings.Join(parts, ", ")
}

func departmentNames(summary *models.PopulationSummary) []string {
	names := make([]string, 0, len(summary.Departments))
	for name := range summary.Departments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
