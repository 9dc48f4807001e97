// PostgreSQL Store implementation backed by pgx.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/sumerudigitals/onboard/pkg/models"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, url string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("PostgreSQL store ready")
	return s, nil
}

// migrate creates the schema if it does not exist.
func (s *PostgresStore) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS employees (
	emp_id      TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT '',
	department  TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	token       TEXT UNIQUE,
	folder_name TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS personal_info (
	employee_id      TEXT PRIMARY KEY REFERENCES employees(emp_id),
	name             TEXT NOT NULL DEFAULT '',
	role             TEXT NOT NULL DEFAULT '',
	dob              TEXT NOT NULL DEFAULT '',
	mobile           TEXT NOT NULL DEFAULT '',
	gender           TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL DEFAULT '',
	aadhaar_number   TEXT NOT NULL DEFAULT '',
	pan_number       TEXT NOT NULL DEFAULT '',
	bank_number      TEXT NOT NULL DEFAULT '',
	ifsc_code        TEXT NOT NULL DEFAULT '',
	family1_name     TEXT NOT NULL DEFAULT '',
	family1_relation TEXT NOT NULL DEFAULT '',
	family1_mobile   TEXT NOT NULL DEFAULT '',
	family2_name     TEXT NOT NULL DEFAULT '',
	family2_relation TEXT NOT NULL DEFAULT '',
	family2_mobile   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tasks (
	employee_id TEXT NOT NULL REFERENCES employees(emp_id),
	title       TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'pending',
	PRIMARY KEY (employee_id, title)
);
CREATE TABLE IF NOT EXISTS task_modules (
	id          TEXT PRIMARY KEY,
	task_title  TEXT NOT NULL,
	module_key  TEXT NOT NULL,
	module_name TEXT NOT NULL,
	order_index INT NOT NULL DEFAULT 0,
	is_required BOOLEAN NOT NULL DEFAULT true
);
CREATE TABLE IF NOT EXISTS module_progress (
	employee_id TEXT NOT NULL REFERENCES employees(emp_id),
	module_id   TEXT NOT NULL REFERENCES task_modules(id),
	status      TEXT NOT NULL DEFAULT 'pending',
	PRIMARY KEY (employee_id, module_id)
);
CREATE TABLE IF NOT EXISTS feedback (
	employee_id  TEXT PRIMARY KEY REFERENCES employees(emp_id),
	rating       INT NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// ── Employee Store ──────────────────────────────────────────

const employeeColumns = `emp_id, name, email, role, department, status, COALESCE(token, ''), folder_name, created_at`

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var emp models.Employee
	err := row.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Role, &emp.Department,
		&emp.Status, &emp.Token, &emp.FolderName, &emp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *PostgresStore) GetEmployeeByToken(ctx context.Context, token string) (*models.Employee, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE token = $1`, token)
	return scanEmployee(row)
}

func (s *PostgresStore) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE emp_id = $1`, id)
	return scanEmployee(row)
}

func (s *PostgresStore) listEmployees(ctx context.Context, query string, args ...any) ([]models.Employee, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	return s.listEmployees(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY emp_id`)
}

func (s *PostgresStore) CreateEmployee(ctx context.Context, emp *models.Employee) error {
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (emp_id, name, email, role, department, status, token, folder_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		ON CONFLICT (emp_id) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role,
			department = EXCLUDED.department, status = EXCLUDED.status,
			token = EXCLUDED.token, folder_name = EXCLUDED.folder_name`,
		emp.ID, emp.Name, emp.Email, emp.Role, emp.Department, emp.Status, emp.Token, emp.FolderName, emp.CreatedAt)
	return err
}

func (s *PostgresStore) UpdateEmployee(ctx context.Context, emp *models.Employee) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE employees SET name = $2, email = $3, role = $4, department = $5,
			status = $6, token = NULLIF($7, ''), folder_name = $8
		WHERE emp_id = $1`,
		emp.ID, emp.Name, emp.Email, emp.Role, emp.Department, emp.Status, emp.Token, emp.FolderName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SearchEmployees(ctx context.Context, term string, limit int) ([]models.Employee, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + term + "%"
	return s.listEmployees(ctx, `
		SELECT `+employeeColumns+` FROM employees
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY emp_id LIMIT $2`, pattern, limit)
}

func (s *PostgresStore) ListByDepartment(ctx context.Context, department string) ([]models.Employee, error) {
	return s.listEmployees(ctx, `
		SELECT `+employeeColumns+` FROM employees
		WHERE lower(department) = lower($1) ORDER BY emp_id`, department)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.EmployeeStatus) ([]models.Employee, error) {
	return s.listEmployees(ctx, `
		SELECT `+employeeColumns+` FROM employees
		WHERE status = $1 ORDER BY emp_id`, string(status))
}

func (s *PostgresStore) GetPersonalInfo(ctx context.Context, employeeID string) (*models.PersonalInfo, error) {
	var info models.PersonalInfo
	err := s.pool.QueryRow(ctx, `
		SELECT employee_id, name, role, dob, mobile, gender, email,
			aadhaar_number, pan_number, bank_number, ifsc_code,
			family1_name, family1_relation, family1_mobile,
			family2_name, family2_relation, family2_mobile
		FROM personal_info WHERE employee_id = $1`, employeeID).Scan(
		&info.EmployeeID, &info.Name, &info.Role, &info.DOB, &info.Mobile, &info.Gender, &info.Email,
		&info.AadhaarNumber, &info.PANNumber, &info.BankNumber, &info.IFSCCode,
		&info.Family1Name, &info.Family1Relation, &info.Family1Mobile,
		&info.Family2Name, &info.Family2Relation, &info.Family2Mobile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *PostgresStore) UpsertPersonalInfo(ctx context.Context, info *models.PersonalInfo) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO personal_info (employee_id, name, role, dob, mobile, gender, email,
			aadhaar_number, pan_number, bank_number, ifsc_code,
			family1_name, family1_relation, family1_mobile,
			family2_name, family2_relation, family2_mobile)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (employee_id) DO UPDATE SET
			name = EXCLUDED.name, role = EXCLUDED.role, dob = EXCLUDED.dob,
			mobile = EXCLUDED.mobile, gender = EXCLUDED.gender, email = EXCLUDED.email,
			aadhaar_number = EXCLUDED.aadhaar_number, pan_number = EXCLUDED.pan_number,
			bank_number = EXCLUDED.bank_number, ifsc_code = EXCLUDED.ifsc_code,
			family1_name = EXCLUDED.family1_name, family1_relation = EXCLUDED.family1_relation,
			family1_mobile = EXCLUDED.family1_mobile, family2_name = EXCLUDED.family2_name,
			family2_relation = EXCLUDED.family2_relation, family2_mobile = EXCLUDED.family2_mobile`,
		info.EmployeeID, info.Name, info.Role, info.DOB, info.Mobile, info.Gender, info.Email,
		info.AadhaarNumber, info.PANNumber, info.BankNumber, info.IFSCCode,
		info.Family1Name, info.Family1Relation, info.Family1Mobile,
		info.Family2Name, info.Family2Relation, info.Family2Mobile)
	return err
}

// ── Task Store ──────────────────────────────────────────────

func (s *PostgresStore) ListTasks(ctx context.Context, employeeID string) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT employee_id, title, status FROM tasks WHERE employee_id = $1`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.EmployeeID, &t.Title, &t.Status); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertTask(ctx context.Context, task *models.Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (employee_id, title, status) VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, title) DO UPDATE SET status = EXCLUDED.status`,
		task.EmployeeID, task.Title, task.Status)
	return err
}

// ── Module Store ────────────────────────────────────────────

func (s *PostgresStore) ListModules(ctx context.Context, taskTitle string) ([]models.TaskModule, error) {
	query := `
		SELECT id, task_title, module_key, module_name, order_index, is_required
		FROM task_modules`
	var args []any
	if taskTitle != "" {
		query += ` WHERE task_title = $1`
		args = append(args, taskTitle)
	}
	query += ` ORDER BY task_title, order_index`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskModule
	for rows.Next() {
		var m models.TaskModule
		if err := rows.Scan(&m.ID, &m.TaskTitle, &m.Key, &m.Name, &m.OrderIndex, &m.Required); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateModule(ctx context.Context, module *models.TaskModule) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO task_modules (id, task_title, module_key, module_name, order_index, is_required)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			task_title = EXCLUDED.task_title, module_key = EXCLUDED.module_key,
			module_name = EXCLUDED.module_name, order_index = EXCLUDED.order_index,
			is_required = EXCLUDED.is_required`,
		module.ID, module.TaskTitle, module.Key, module.Name, module.OrderIndex, module.Required)
	return err
}

func (s *PostgresStore) ListModuleProgress(ctx context.Context, employeeID string) ([]models.ModuleProgress, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT employee_id, module_id, status FROM module_progress WHERE employee_id = $1`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ModuleProgress
	for rows.Next() {
		var p models.ModuleProgress
		if err := rows.Scan(&p.EmployeeID, &p.ModuleID, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertModuleProgress(ctx context.Context, progress *models.ModuleProgress) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO module_progress (employee_id, module_id, status) VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, module_id) DO UPDATE SET status = EXCLUDED.status`,
		progress.EmployeeID, progress.ModuleID, progress.Status)
	return err
}

// ── Feedback Store ──────────────────────────────────────────

func (s *PostgresStore) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT employee_id, rating, message, submitted_at FROM feedback ORDER BY employee_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.EmployeeID, &fb.Rating, &fb.Message, &fb.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetFeedback(ctx context.Context, employeeID string) (*models.Feedback, error) {
	var fb models.Feedback
	err := s.pool.QueryRow(ctx, `
		SELECT employee_id, rating, message, submitted_at FROM feedback WHERE employee_id = $1`,
		employeeID).Scan(&fb.EmployeeID, &fb.Rating, &fb.Message, &fb.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (s *PostgresStore) UpsertFeedback(ctx context.Context, fb *models.Feedback) error {
	if fb.SubmittedAt.IsZero() {
		fb.SubmittedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feedback (employee_id, rating, message, submitted_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id) DO UPDATE SET
			rating = EXCLUDED.rating, message = EXCLUDED.message, submitted_at = EXCLUDED.submitted_at`,
		fb.EmployeeID, fb.Rating, fb.Message, fb.SubmittedAt)
	return err
}

// ── Lifecycle ───────────────────────────────────────────────

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
