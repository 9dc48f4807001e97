// In-memory Store implementation.
// Used as a fallback when PostgreSQL is not configured (local dev, tests).
// Supports file-based snapshot persistence so data survives restarts.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sumerudigitals/onboard/pkg/models"
)

// snapshot is the JSON-serializable shape written to disk.
type snapshot struct {
	Employees      map[string]*models.Employee     `json:"employees"`       // key: emp_id
	PersonalInfo   map[string]*models.PersonalInfo `json:"personal_info"`   // key: emp_id
	Tasks          map[string][]*models.Task       `json:"tasks"`           // key: emp_id
	Modules        []*models.TaskModule            `json:"modules"`         // catalog, ordered
	ModuleProgress map[string][]*models.ModuleProgress `json:"module_progress"` // key: emp_id
	Feedback       map[string]*models.Feedback     `json:"feedback"`        // key: emp_id
}

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu             sync.RWMutex
	employees      map[string]*models.Employee     // key: emp_id
	tokens         map[string]string               // key: token → emp_id
	personalInfo   map[string]*models.PersonalInfo // key: emp_id
	tasks          map[string][]*models.Task       // key: emp_id
	modules        []*models.TaskModule            // catalog
	moduleProgress map[string][]*models.ModuleProgress // key: emp_id
	feedback       map[string]*models.Feedback     // key: emp_id

	// Persistence
	snapshotPath string        // empty = no persistence
	saveMu       sync.Mutex    // guards file writes
	saveCh       chan struct{} // debounce channel
	doneCh       chan struct{} // signals the background saver to stop
	closeOnce    sync.Once
}

// NewMemoryStore creates a new in-memory store. If ONBOARD_DATA_DIR is set,
// data is persisted to a JSON file in that directory; otherwise the store
// is purely ephemeral.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		employees:      make(map[string]*models.Employee),
		tokens:         make(map[string]string),
		personalInfo:   make(map[string]*models.PersonalInfo),
		tasks:          make(map[string][]*models.Task),
		moduleProgress: make(map[string][]*models.ModuleProgress),
		feedback:       make(map[string]*models.Feedback),
		saveCh:         make(chan struct{}, 1),
		doneCh:         make(chan struct{}),
	}

	if dataDir := os.Getenv("ONBOARD_DATA_DIR"); dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", dataDir).Msg("Cannot create data dir, persistence disabled")
		} else {
			m.snapshotPath = filepath.Join(dataDir, "data.json")
			m.loadSnapshot()
		}
	}

	go m.saveLoop()
	return m
}

// ── Employee Store ──────────────────────────────────────────

func (m *MemoryStore) GetEmployeeByToken(_ context.Context, token string) (*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	emp := *m.employees[id]
	return &emp, nil
}

func (m *MemoryStore) GetEmployee(_ context.Context, id string) (*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *emp
	return &cp, nil
}

func (m *MemoryStore) ListEmployees(_ context.Context) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		out = append(out, *emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CreateEmployee(_ context.Context, emp *models.Employee) error {
	m.mu.Lock()
	cp := *emp
	m.employees[emp.ID] = &cp
	if emp.Token != "" {
		m.tokens[emp.Token] = emp.ID
	}
	m.mu.Unlock()

	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateEmployee(_ context.Context, emp *models.Employee) error {
	m.mu.Lock()
	old, ok := m.employees[emp.ID]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if old.Token != "" && old.Token != emp.Token {
		delete(m.tokens, old.Token)
	}
	cp := *emp
	m.employees[emp.ID] = &cp
	if emp.Token != "" {
		m.tokens[emp.Token] = emp.ID
	}
	m.mu.Unlock()

	m.requestSave()
	return nil
}

func (m *MemoryStore) SearchEmployees(_ context.Context, term string, limit int) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(term)
	var out []models.Employee
	for _, emp := range m.employees {
		if strings.Contains(strings.ToLower(emp.Name), needle) ||
			strings.Contains(strings.ToLower(emp.Email), needle) {
			out = append(out, *emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ListByDepartment(_ context.Context, department string) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Employee
	for _, emp := range m.employees {
		if strings.EqualFold(emp.Department, department) {
			out = append(out, *emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListByStatus(_ context.Context, status models.EmployeeStatus) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Employee
	for _, emp := range m.employees {
		if emp.Status == status {
			out = append(out, *emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetPersonalInfo(_ context.Context, employeeID string) (*models.PersonalInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.personalInfo[employeeID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *info
	return &cp, nil
}

func (m *MemoryStore) UpsertPersonalInfo(_ context.Context, info *models.PersonalInfo) error {
	m.mu.Lock()
	cp := *info
	m.personalInfo[info.EmployeeID] = &cp
	m.mu.Unlock()

	m.requestSave()
	return nil
}

// ── Task Store ──────────────────────────────────────────────

func (m *MemoryStore) ListTasks(_ context.Context, employeeID string) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Task, 0, len(m.tasks[employeeID]))
	for _, t := range m.tasks[employeeID] {
		out = append(out, *t)
	}
	return out, nil
}

func (m *MemoryStore) UpsertTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	list := m.tasks[task.EmployeeID]
	replaced := false
	for i, t := range list {
		if t.Title == task.Title {
			cp := *task
			list[i] = &cp
			replaced = true
			break
		}
	}
	if !replaced {
		cp := *task
		m.tasks[task.EmployeeID] = append(list, &cp)
	}
	m.mu.Unlock()

	m.requestSave()
	return nil
}

// ── Module Store ────────────────────────────────────────────

func (m *MemoryStore) ListModules(_ context.Context, taskTitle string) ([]models.TaskModule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.TaskModule
	for _, mod := range m.modules {
		if taskTitle == "" || mod.TaskTitle == taskTitle {
			out = append(out, *mod)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TaskTitle != out[j].TaskTitle {
			return out[i].TaskTitle < out[j].TaskTitle
		}
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

func (m *MemoryStore) CreateModule(_ context.Context, module *models.TaskModule) error {
	m.mu.Lock()
	cp := *module
	m.modules = append(m.modules, &cp)
	m.mu.Unlock()

	m.requestSave()
	return nil
}

func (m *MemoryStore) ListModuleProgress(_ context.Context, employeeID string) ([]models.ModuleProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ModuleProgress, 0, len(m.moduleProgress[employeeID]))
	for _, p := range m.moduleProgress[employeeID] {
		out = append(out, *p)
	}
	return out, nil
}

func (m *MemoryStore) UpsertModuleProgress(_ context.Context, progress *models.ModuleProgress) error {
	m.mu.Lock()
	list := m.moduleProgress[progress.EmployeeID]
	replaced := false
	for i, p := range list {
		if p.ModuleID == progress.ModuleID {
			cp := *progress
			list[i] = &cp
			replaced = true
			break
		}
	}
	if !replaced {
		cp := *progress
		m.moduleProgress[progress.EmployeeID] = append(list, &cp)
	}
	m.mu.Unlock()

	m.requestSave()
	return nil
}

// ── Feedback Store ──────────────────────────────────────────

func (m *MemoryStore) ListFeedback(_ context.Context) ([]models.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Feedback, 0, len(m.feedback))
	for _, fb := range m.feedback {
		out = append(out, *fb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (m *MemoryStore) GetFeedback(_ context.Context, employeeID string) (*models.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fb, ok := m.feedback[employeeID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *fb
	return &cp, nil
}

func (m *MemoryStore) UpsertFeedback(_ context.Context, fb *models.Feedback) error {
	m.mu.Lock()
	cp := *fb
	if cp.SubmittedAt.IsZero() {
		cp.SubmittedAt = time.Now().UTC()
	}
	m.feedback[fb.EmployeeID] = &cp
	m.mu.Unlock()

	m.requestSave()
	return nil
}

// ── Lifecycle ───────────────────────────────────────────────

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.doneCh)
		m.writeSnapshot()
	})
	return nil
}

// ── Snapshot persistence ────────────────────────────────────

// requestSave schedules a debounced snapshot write.
func (m *MemoryStore) requestSave() {
	if m.snapshotPath == "" {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
	}
}

func (m *MemoryStore) saveLoop() {
	for {
		select {
		case <-m.doneCh:
			return
		case <-m.saveCh:
			// Debounce bursts of writes
			time.Sleep(250 * time.Millisecond)
			m.writeSnapshot()
		}
	}
}

func (m *MemoryStore) writeSnapshot() {
	if m.snapshotPath == "" {
		return
	}

	m.mu.RLock()
	snap := snapshot{
		Employees:      m.employees,
		PersonalInfo:   m.personalInfo,
		Tasks:          m.tasks,
		Modules:        m.modules,
		ModuleProgress: m.moduleProgress,
		Feedback:       m.feedback,
	}
	data, err := json.MarshalIndent(&snap, "", "  ")
	m.mu.RUnlock()

	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal store snapshot")
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	tmp := m.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Warn().Err(err).Msg("Failed to write store snapshot")
		return
	}
	if err := os.Rename(tmp, m.snapshotPath); err != nil {
		log.Warn().Err(err).Msg("Failed to replace store snapshot")
	}
}

func (m *MemoryStore) loadSnapshot() {
	data, err := os.ReadFile(m.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Failed to read store snapshot")
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Msg("Failed to parse store snapshot, starting empty")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Employees != nil {
		m.employees = snap.Employees
		for id, emp := range m.employees {
			if emp.Token != "" {
				m.tokens[emp.Token] = id
			}
		}
	}
	if snap.PersonalInfo != nil {
		m.personalInfo = snap.PersonalInfo
	}
	if snap.Tasks != nil {
		m.tasks = snap.Tasks
	}
	if snap.Modules != nil {
		m.modules = snap.Modules
	}
	if snap.ModuleProgress != nil {
		m.moduleProgress = snap.ModuleProgress
	}
	if snap.Feedback != nil {
		m.feedback = snap.Feedback
	}

	log.Info().Int("employees", len(m.employees)).Str("path", m.snapshotPath).Msg("Store snapshot loaded")
}
