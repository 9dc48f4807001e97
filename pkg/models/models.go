// Package models defines the shared domain types for the onboarding backend:
// employees, tasks, task modules, feedback, and the chat pipeline types
// exchanged between the API layer and the grounding/prompt components.
package models

import "time"

// ── Employee ─────────────────────────────────────────────────

// EmployeeStatus tracks where an employee is in the onboarding flow.
type EmployeeStatus string

const (
	StatusPending   EmployeeStatus = "pending"
	StatusCompleted EmployeeStatus = "completed"
)

// Employee is the core identity record. Token is the opaque per-employee
// identifier used in lieu of a persistent session.
type Employee struct {
	ID         string         `json:"emp_id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Role       string         `json:"role"`
	Department string         `json:"department"`
	Status     EmployeeStatus `json:"status"`
	Token      string         `json:"token"`
	FolderName string         `json:"folder_name,omitempty"`
	CreatedAt  time.Time      `json:"created_at,omitempty"`
}

// PersonalInfo holds the personal-details form for one employee.
type PersonalInfo struct {
	EmployeeID string `json:"employee_id"`

	Name   string `json:"name"`
	Role   string `json:"role"`
	DOB    string `json:"dob"`
	Mobile string `json:"mobile"`
	Gender string `json:"gender"`
	Email  string `json:"email"`

	AadhaarNumber string `json:"aadhaar_number"`
	PANNumber     string `json:"pan_number"`
	BankNumber    string `json:"bank_number"`
	IFSCCode      string `json:"ifsc_code"`

	Family1Name     string `json:"family1_name"`
	Family1Relation string `json:"family1_relation"`
	Family1Mobile   string `json:"family1_mobile"`
	Family2Name     string `json:"family2_name"`
	Family2Relation string `json:"family2_relation"`
	Family2Mobile   string `json:"family2_mobile"`
}

// RequiredFields returns the fixed set of fields that count toward the
// profile completion percentage, in their canonical order.
func (p *PersonalInfo) RequiredFields() []string {
	return []string{
		p.Name, p.Role, p.DOB, p.Mobile, p.Gender, p.Email,
		p.AadhaarNumber, p.PANNumber, p.BankNumber, p.IFSCCode,
		p.Family1Name, p.Family1Relation, p.Family1Mobile,
		p.Family2Name, p.Family2Relation, p.Family2Mobile,
	}
}

// ── Tasks & Modules ──────────────────────────────────────────

// MainTasks is the fixed list of employee-facing onboarding tasks.
// Pre-Onboarding is handled by HR/Admin and is deliberately absent.
var MainTasks = []string{
	"Personal Details",
	"Joining Day",
	"Training",
	"Department Introduction",
	"Feedback",
}

// TaskState is a task's completion state for one employee.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskCompleted TaskState = "completed"
)

// Task is one top-level onboarding task assigned to an employee.
type Task struct {
	EmployeeID string    `json:"employee_id"`
	Title      string    `json:"title"`
	Status     TaskState `json:"status"`
}

// TaskStatus summarizes an employee's progress across the main tasks.
// Percent is round(100 * completed / total).
type TaskStatus struct {
	Completed []string `json:"completed"`
	Pending   []string `json:"pending"`
	Percent   int      `json:"percent"`
}

// TaskModule is a subdivision of a main task, tracked independently.
type TaskModule struct {
	ID         string `json:"id"`
	TaskTitle  string `json:"task_title"`
	Key        string `json:"module_key"`
	Name       string `json:"module_name"`
	OrderIndex int    `json:"order_index"`
	Required   bool   `json:"is_required"`
}

// ModuleProgress records one employee's state on one module.
type ModuleProgress struct {
	EmployeeID string    `json:"employee_id"`
	ModuleID   string    `json:"module_id"`
	Status     TaskState `json:"status"`
}

// ModuleState is a module with its per-employee status, as reported to
// callers of the module-progress queries.
type ModuleState struct {
	Key      string    `json:"module_key"`
	Name     string    `json:"module_name"`
	Status   TaskState `json:"status"`
	Required bool      `json:"is_required"`
}

// TaskModules summarizes module progress within one task.
// ProgressPercent truncates: int(100 * completed / total).
type TaskModules struct {
	TotalModules     int           `json:"total_modules"`
	CompletedModules int           `json:"completed_modules"`
	ProgressPercent  int           `json:"progress_percent"`
	Modules          []ModuleState `json:"modules"`
}

// ── Feedback ─────────────────────────────────────────────────

// Feedback is an employee's onboarding feedback submission. A new
// submission replaces the previous one.
type Feedback struct {
	EmployeeID  string    `json:"employee_id"`
	Rating      int       `json:"rating"` // 1..5
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// FeedbackSummary aggregates all feedback for HR.
type FeedbackSummary struct {
	Total              int         `json:"total"`
	AverageRating      float64     `json:"average_rating"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// ── HR analytics ─────────────────────────────────────────────

// TaskStat is a per-task assignment/completion count across the org.
type TaskStat struct {
	Assigned       int     `json:"assigned"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// OrgAnalytics is the org-wide onboarding analytics view.
type OrgAnalytics struct {
	TotalEmployees        int                 `json:"total_employees"`
	CompletedEmployees    int                 `json:"completed_employees"`
	PendingEmployees      int                 `json:"pending_employees"`
	CompletionRate        float64             `json:"completion_rate"`
	TaskStatistics        map[string]TaskStat `json:"task_statistics"`
	AverageDaysToComplete int                 `json:"average_days_to_complete"`
}

// DeptTaskStat is a per-task completion count within one department.
type DeptTaskStat struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

// DepartmentStats is the department-scoped onboarding view.
type DepartmentStats struct {
	Department     string                  `json:"department"`
	TotalEmployees int                     `json:"total_employees"`
	Completed      int                     `json:"completed"`
	Pending        int                     `json:"pending"`
	CompletionRate float64                 `json:"completion_rate"`
	TaskStats      map[string]DeptTaskStat `json:"task_stats"`
}

// DeptBreakdown is the per-department slice of the population summary.
type DeptBreakdown struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// PopulationSummary is the whole-org head count grouped by department.
type PopulationSummary struct {
	Total       int                      `json:"total"`
	Completed   int                      `json:"completed"`
	Pending     int                      `json:"pending"`
	Departments map[string]DeptBreakdown `json:"departments"`
}

// EmployeeSummary is the trimmed employee record returned by search and
// status/department listings.
type EmployeeSummary struct {
	ID         string         `json:"emp_id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Department string         `json:"department"`
	Role       string         `json:"role"`
	Status     EmployeeStatus `json:"status"`
}

// ── Chat pipeline types ──────────────────────────────────────

// ChatRequest is one inbound chat call. Transient, never persisted.
type ChatRequest struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Page    string `json:"page"`
}

// ChatReply is the externally observable result of the pipeline.
type ChatReply struct {
	Response    string `json:"response"`
	ModelUsed   string `json:"model_used"`
	PolicyTopic string `json:"policy_topic"`
}

// ModelResponse is the output of the model invoker. Model is "none" when
// every candidate was exhausted or rejected.
type ModelResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}
