// Package store provides the storage interface and implementations for the
// onboarding backend. The in-memory store backs tests and zero-config local
// runs; PostgreSQL (pgx) backs production deployments.
package store

import (
	"context"
	"errors"

	"github.com/sumerudigitals/onboard/pkg/models"
)

// ErrNotFound is returned when a token, employee, or record does not
// resolve. Callers surface it as an invalid-session / unknown-employee
// client error.
var ErrNotFound = errors.New("not found")

// Store is the primary storage interface. All handler and grounding code
// depends on this interface, making it easy to swap between in-memory
// (tests) and PostgreSQL (production) implementations.
type Store interface {
	EmployeeStore
	TaskStore
	ModuleStore
	FeedbackStore

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ── Employee Store ──────────────────────────────────────────

type EmployeeStore interface {
	// GetEmployeeByToken resolves the opaque chat token to an identity.
	GetEmployeeByToken(ctx context.Context, token string) (*models.Employee, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, emp *models.Employee) error
	UpdateEmployee(ctx context.Context, emp *models.Employee) error

	// SearchEmployees matches name or email by case-insensitive substring.
	SearchEmployees(ctx context.Context, term string, limit int) ([]models.Employee, error)
	ListByDepartment(ctx context.Context, department string) ([]models.Employee, error)
	ListByStatus(ctx context.Context, status models.EmployeeStatus) ([]models.Employee, error)

	GetPersonalInfo(ctx context.Context, employeeID string) (*models.PersonalInfo, error)
	UpsertPersonalInfo(ctx context.Context, info *models.PersonalInfo) error
}

// ── Task Store ──────────────────────────────────────────────

type TaskStore interface {
	ListTasks(ctx context.Context, employeeID string) ([]models.Task, error)
	UpsertTask(ctx context.Context, task *models.Task) error
}

// ── Module Store ────────────────────────────────────────────

type ModuleStore interface {
	// ListModules returns the module catalog ordered by task title and
	// order index. taskTitle == "" returns all tasks' modules.
	ListModules(ctx context.Context, taskTitle string) ([]models.TaskModule, error)
	CreateModule(ctx context.Context, module *models.TaskModule) error
	ListModuleProgress(ctx context.Context, employeeID string) ([]models.ModuleProgress, error)
	UpsertModuleProgress(ctx context.Context, progress *models.ModuleProgress) error
}

// ── Feedback Store ──────────────────────────────────────────

type FeedbackStore interface {
	ListFeedback(ctx context.Context) ([]models.Feedback, error)
	GetFeedback(ctx context.Context, employeeID string) (*models.Feedback, error)
	UpsertFeedback(ctx context.Context, fb *models.Feedback) error
}
