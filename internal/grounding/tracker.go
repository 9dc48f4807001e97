// Package grounding assembles the per-employee and org-wide facts that
// anchor chat responses: task/module progress, document status, analytics,
// and the page-specific context objects fed to the prompt builder.
package grounding

import (
	"context"
	"fmt"
	"math"

	"github.com/sumerudigitals/onboard/internal/docstore"
	"github.com/sumerudigitals/onboard/internal/store"
	"github.com/sumerudigitals/onboard/pkg/models"
)

// Tracker answers grounding queries over the data store and document store.
// All operations are read-only with respect to persisted state.
type Tracker struct {
	store store.Store
	docs  docstore.Store
}

// NewTracker creates a tracker over the given stores.
func NewTracker(s store.Store, d docstore.Store) *Tracker {
	return &Tracker{store: s, docs: d}
}

// EmployeeByToken resolves the opaque chat token to an employee record.
func (t *Tracker) EmployeeByToken(ctx context.Context, token string) (*models.Employee, error) {
	emp, err := t.store.GetEmployeeByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	return emp, nil
}

// PersonalInfo returns the personal-details record for the token's employee.
func (t *Tracker) PersonalInfo(ctx context.Context, token string) (*models.PersonalInfo, error) {
	emp, err := t.EmployeeByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	info, err := t.store.GetPersonalInfo(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("personal info for %s: %w", emp.ID, err)
	}
	return info, nil
}

// DocumentStatus reports per-document upload status for the token's employee.
func (t *Tracker) DocumentStatus(ctx context.Context, token string) (map[string]string, error) {
	emp, err := t.EmployeeByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return t.docs.DocumentStatus(ctx, emp.FolderName)
}

// Documents lists the PDF files uploaded by the employee.
func (t *Tracker) Documents(ctx context.Context, employeeID string) ([]string, error) {
	emp, err := t.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return t.docs.ListDocuments(ctx, emp.FolderName)
}

// TaskStatus summarizes the employee's progress across the five main
// tasks. Percent rounds to the nearest integer.
func (t *Tracker) TaskStatus(ctx context.Context, token string) (*models.TaskStatus, error) {
	emp, err := t.EmployeeByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	tasks, err := t.store.ListTasks(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	completedSet := make(map[string]bool)
	for _, task := range tasks {
		if task.Status == models.TaskCompleted {
			completedSet[task.Title] = true
		}
	}

	status := &models.TaskStatus{}
	for _, title := range models.MainTasks {
		if completedSet[title] {
			status.Completed = append(status.Completed, title)
		} else {
			status.Pending = append(status.Pending, title)
		}
	}
	status.Percent = roundPercent(len(status.Completed), len(models.MainTasks))
	return status, nil
}

// NextTask returns the first pending main task, or a celebratory "None"
// once everything is done.
func (t *Tracker) NextTask(ctx context.Context, token string) (string, error) {
	status, err := t.TaskStatus(ctx, token)
	if err != nil {
		return "", err
	}
	if len(status.Pending) == 0 {
		return "None 🎉", nil
	}
	return status.Pending[0], nil
}

// ModuleProgress returns per-task module progress for the token's
// employee. taskTitle == "" returns every task's modules, keyed by task
// title. ProgressPercent truncates rather than rounds.
func (t *Tracker) ModuleProgress(ctx context.Context, token, taskTitle string) (map[string]*models.TaskModules, error) {
	emp, err := t.EmployeeByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	modules, err := t.store.ListModules(ctx, taskTitle)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	progress, err := t.store.ListModuleProgress(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("list module progress: %w", err)
	}

	progressByModule := make(map[string]models.TaskState, len(progress))
	for _, p := range progress {
		progressByModule[p.ModuleID] = p.Status
	}

	byTask := make(map[string]*models.TaskModules)
	for _, mod := range modules {
		tm, ok := byTask[mod.TaskTitle]
		if !ok {
			tm = &models.TaskModules{}
			byTask[mod.TaskTitle] = tm
		}

		state, ok := progressByModule[mod.ID]
		if !ok {
			state = models.TaskPending
		}
		tm.Modules = append(tm.Modules, models.ModuleState{
			Key:      mod.Key,
			Name:     mod.Name,
			Status:   state,
			Required: mod.Required,
		})
		tm.TotalModules++
		if state == models.TaskCompleted {
			tm.CompletedModules++
		}
	}

	for _, tm := range byTask {
		if tm.TotalModules > 0 {
			// Truncation is intentional here; task-level percent rounds.
			tm.ProgressPercent = tm.CompletedModules * 100 / tm.TotalModules
		}
	}
	return byTask, nil
}

// TaskModuleProgress is ModuleProgress narrowed to one task. Returns an
// empty summary when the task has no modules configured.
func (t *Tracker) TaskModuleProgress(ctx context.Context, token, taskTitle string) (*models.TaskModules, error) {
	byTask, err := t.ModuleProgress(ctx, token, taskTitle)
	if err != nil {
		return nil, err
	}
	if tm, ok := byTask[taskTitle]; ok {
		return tm, nil
	}
	return &models.TaskModules{}, nil
}

// DepartmentMembers lists the employee's department colleagues, excluding
// the employee themselves.
func (t *Tracker) DepartmentMembers(ctx context.Context, department, excludeToken string) ([]models.EmployeeSummary, error) {
	self, err := t.store.GetEmployeeByToken(ctx, excludeToken)
	if err != nil {
		return nil, err
	}

	members, err := t.store.ListByDepartment(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("list department %s: %w", department, err)
	}

	var out []models.EmployeeSummary
	for _, emp := range members {
		if emp.ID == self.ID {
			continue
		}
		out = append(out, summarize(emp))
	}
	return out, nil
}

// SearchEmployees matches employees by name or email substring,
// case-insensitive, capped at 10 results.
func (t *Tracker) SearchEmployees(ctx context.Context, term string) ([]models.EmployeeSummary, error) {
	employees, err := t.store.SearchEmployees(ctx, term, 10)
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	return summarizeAll(employees), nil
}

// EmployeesByDepartment lists all employees in a department.
func (t *Tracker) EmployeesByDepartment(ctx context.Context, department string) ([]models.EmployeeSummary, error) {
	employees, err := t.store.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	return summarizeAll(employees), nil
}

// EmployeesByStatus lists all employees with the given onboarding status.
func (t *Tracker) EmployeesByStatus(ctx context.Context, status string) ([]models.EmployeeSummary, error) {
	employees, err := t.store.ListByStatus(ctx, models.EmployeeStatus(status))
	if err != nil {
		return nil, err
	}
	return summarizeAll(employees), nil
}

// OrgAnalytics computes org-wide onboarding analytics.
func (t *Tracker) OrgAnalytics(ctx context.Context) (*models.OrgAnalytics, error) {
	employees, err := t.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	analytics := &models.OrgAnalytics{
		TotalEmployees: len(employees),
		TaskStatistics: make(map[string]models.TaskStat, len(models.MainTasks)),
		// Completion timestamps are not tracked yet; fixed estimate.
		AverageDaysToComplete: 7,
	}
	for _, emp := range employees {
		if emp.Status == models.StatusCompleted {
			analytics.CompletedEmployees++
		}
	}
	analytics.PendingEmployees = analytics.TotalEmployees - analytics.CompletedEmployees
	analytics.CompletionRate = rate(analytics.CompletedEmployees, analytics.TotalEmployees)

	type counts struct{ assigned, completed int }
	perTask := make(map[string]*counts, len(models.MainTasks))
	for _, title := range models.MainTasks {
		perTask[title] = &counts{}
	}

	for _, emp := range employees {
		tasks, err := t.store.ListTasks(ctx, emp.ID)
		if err != nil {
			return nil, fmt.Errorf("list tasks for %s: %w", emp.ID, err)
		}
		for _, task := range tasks {
			c, ok := perTask[task.Title]
			if !ok {
				continue
			}
			c.assigned++
			if task.Status == models.TaskCompleted {
				c.completed++
			}
		}
	}

	for title, c := range perTask {
		analytics.TaskStatistics[title] = models.TaskStat{
			Assigned:       c.assigned,
			Completed:      c.completed,
			CompletionRate: rate(c.completed, c.assigned),
		}
	}
	return analytics, nil
}

// DepartmentStats computes onboarding statistics scoped to one department.
func (t *Tracker) DepartmentStats(ctx context.Context, department string) (*models.DepartmentStats, error) {
	employees, err := t.store.ListByDepartment(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("list department %s: %w", department, err)
	}

	stats := &models.DepartmentStats{
		Department:     department,
		TotalEmployees: len(employees),
		TaskStats:      make(map[string]models.DeptTaskStat, len(models.MainTasks)),
	}
	for _, emp := range employees {
		if emp.Status == models.StatusCompleted {
			stats.Completed++
		}
	}
	stats.Pending = stats.TotalEmployees - stats.Completed
	stats.CompletionRate = rate(stats.Completed, stats.TotalEmployees)

	completedByTask := make(map[string]int, len(models.MainTasks))
	for _, emp := range employees {
		tasks, err := t.store.ListTasks(ctx, emp.ID)
		if err != nil {
			return nil, fmt.Errorf("list tasks for %s: %w", emp.ID, err)
		}
		for _, task := range tasks {
			if task.Status == models.TaskCompleted {
				completedByTask[task.Title]++
			}
		}
	}

	for _, title := range models.MainTasks {
		stats.TaskStats[title] = models.DeptTaskStat{
			Completed: completedByTask[title],
			Total:     stats.TotalEmployees,
			Rate:      rate(completedByTask[title], stats.TotalEmployees),
		}
	}
	return stats, nil
}

// PopulationSummary counts the whole org grouped by department.
func (t *Tracker) PopulationSummary(ctx context.Context) (*models.PopulationSummary, error) {
	employees, err := t.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	summary := &models.PopulationSummary{
		Total:       len(employees),
		Departments: make(map[string]models.DeptBreakdown),
	}
	for _, emp := range employees {
		if emp.Status == models.StatusCompleted {
			summary.Completed++
		} else {
			summary.Pending++
		}
		if emp.Department == "" {
			continue
		}
		b := summary.Departments[emp.Department]
		b.Total++
		if emp.Status == models.StatusCompleted {
			b.Completed++
		} else {
			b.Pending++
		}
		summary.Departments[emp.Department] = b
	}
	return summary, nil
}

// FeedbackSummary aggregates every feedback submission.
func (t *Tracker) FeedbackSummary(ctx context.Context) (*models.FeedbackSummary, error) {
	feedbacks, err := t.store.ListFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	summary := &models.FeedbackSummary{
		Total:              len(feedbacks),
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(feedbacks) == 0 {
		return summary, nil
	}

	sum := 0
	for _, fb := range feedbacks {
		sum += fb.Rating
		summary.RatingDistribution[fb.Rating]++
	}
	summary.AverageRating = math.Round(float64(sum)/float64(len(feedbacks))*100) / 100
	return summary, nil
}

// ── helpers ─────────────────────────────────────────────────

func summarize(emp models.Employee) models.EmployeeSummary {
	return models.EmployeeSummary{
		ID:         emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Department: emp.Department,
		Role:       emp.Role,
		Status:     emp.Status,
	}
}

func summarizeAll(employees []models.Employee) []models.EmployeeSummary {
	out := make([]models.EmployeeSummary, 0, len(employees))
	for _, emp := range employees {
		out = append(out, summarize(emp))
	}
	return out
}

// roundPercent is the task-level percentage: round(100 * part / total).
func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// rate is a percentage with one decimal place.
func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
