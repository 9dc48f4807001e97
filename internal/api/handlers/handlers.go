// Package handlers implements the HTTP handlers for the onboarding
// backend: the chat endpoint, employee and task CRUD, module progress,
// feedback, grounding inspection, and the HR analytics surface.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sumerudigitals/onboard/internal/chat"
	"github.com/sumerudigitals/onboard/internal/grounding"
	"github.com/sumerudigitals/onboard/internal/store"
	"github.com/sumerudigitals/onboard/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store    store.Store
	Tracker  *grounding.Tracker
	Pipeline *chat.Pipeline
}

// New creates a new Handlers instance with all dependencies.
func New(s store.Store, tracker *grounding.Tracker, pipeline *chat.Pipeline) *Handlers {
	return &Handlers{Store: s, Tracker: tracker, Pipeline: pipeline}
}

// ══════════════════════════════════════════════════════════════
// ── Chat ─────────────────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.Pipeline.Chat(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Unknown token")
			return
		}
		log.Error().Err(err).Msg("Chat pipeline failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

// ══════════════════════════════════════════════════════════════
// ── Employees ────────────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	respondJSON(w, http.StatusOK, employees)
}

func (h *Handlers) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var emp models.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if emp.Name == "" || emp.Email == "" {
		respondError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	if emp.Token == "" {
		emp.Token = uuid.New().String()
	}
	if emp.Status == "" {
		emp.Status = models.StatusPending
	}
	if emp.FolderName == "" {
		emp.FolderName = folderName(emp.Name, emp.ID)
	}
	emp.CreatedAt = time.Now().UTC()

	if err := h.Store.CreateEmployee(r.Context(), &emp); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Every employee starts with the five main tasks pending.
	for _, title := range models.MainTasks {
		task := &models.Task{EmployeeID: emp.ID, Title: title, Status: models.TaskPending}
		if err := h.Store.UpsertTask(r.Context(), task); err != nil {
			log.Warn().Err(err).Str("employee", emp.ID).Str("task", title).Msg("Task seeding failed")
		}
	}

	log.Info().Str("employee", emp.ID).Str("department", emp.Department).Msg("Employee created")
	respondJSON(w, http.StatusCreated, emp)
}

func (h *Handlers) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

func (h *Handlers) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	existing, err := h.Store.GetEmployee(r.Context(), employeeID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	var update models.Employee
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update.ID = existing.ID
	if update.Token == "" {
		update.Token = existing.Token
	}
	if update.FolderName == "" {
		update.FolderName = existing.FolderName
	}
	if update.Status == "" {
		update.Status = existing.Status
	}
	update.CreatedAt = existing.CreatedAt

	if err := h.Store.UpdateEmployee(r.Context(), &update); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, update)
}

func (h *Handlers) SearchEmployees(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		respondError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	results, err := h.Tracker.SearchEmployees(r.Context(), term)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []models.EmployeeSummary{}
	}
	respondJSON(w, http.StatusOK, results)
}

// ── Personal info ────────────────────────────────────────────

func (h *Handlers) GetPersonalInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Store.GetPersonalInfo(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *Handlers) UpsertPersonalInfo(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if _, err := h.Store.GetEmployee(r.Context(), employeeID); err != nil {
		respondStoreError(w, err)
		return
	}

	var info models.PersonalInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	info.EmployeeID = employeeID

	if err := h.Store.UpsertPersonalInfo(r.Context(), &info); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// ══════════════════════════════════════════════════════════════
// ── Tasks & Modules ──────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

type taskUpdateRequest struct {
	Status models.TaskState `json:"status"`
}

// UpdateTask sets one main task's status for the token's employee. When
// the last main task completes, the employee flips to completed.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	title := chi.URLParam(r, "title")

	emp, err := h.Store.GetEmployeeByToken(r.Context(), token)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !isMainTask(title) {
		respondError(w, http.StatusBadRequest, "Unknown task title")
		return
	}

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != models.TaskPending && req.Status != models.TaskCompleted {
		respondError(w, http.StatusBadRequest, "Status must be pending or completed")
		return
	}

	task := &models.Task{EmployeeID: emp.ID, Title: title, Status: req.Status}
	if err := h.Store.UpsertTask(r.Context(), task); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.syncEmployeeStatus(r, emp); err != nil {
		log.Warn().Err(err).Str("employee", emp.ID).Msg("Employee status sync failed")
	}

	status, err := h.Tracker.TaskStatus(r.Context(), token)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// syncEmployeeStatus derives the employee-level status from main-task
// completion.
func (h *Handlers) syncEmployeeStatus(r *http.Request, emp *models.Employee) error {
	status, err := h.Tracker.TaskStatus(r.Context(), emp.Token)
	if err != nil {
		return err
	}

	derived := models.StatusPending
	if len(status.Pending) == 0 {
		derived = models.StatusCompleted
	}
	if emp.Status == derived {
		return nil
	}
	emp.Status = derived
	return h.Store.UpdateEmployee(r.Context(), emp)
}

func (h *Handlers) CreateModule(w http.ResponseWriter, r *http.Request) {
	var mod models.TaskModule
	if err := json.NewDecoder(r.Body).Decode(&mod); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if mod.TaskTitle == "" || mod.Key == "" || mod.Name == "" {
		respondError(w, http.StatusBadRequest, "task_title, module_key, and module_name are required")
		return
	}
	if mod.ID == "" {
		mod.ID = uuid.New().String()
	}

	if err := h.Store.CreateModule(r.Context(), &mod); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, mod)
}

func (h *Handlers) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.Store.ListModules(r.Context(), r.URL.Query().Get("task"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if modules == nil {
		modules = []models.TaskModule{}
	}
	respondJSON(w, http.StatusOK, modules)
}

// UpdateModuleProgress sets one module's state for the token's employee.
func (h *Handlers) UpdateModuleProgress(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	moduleID := chi.URLParam(r, "moduleId")

	emp, err := h.Store.GetEmployeeByToken(r.Context(), token)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != models.TaskPending && req.Status != models.TaskCompleted {
		respondError(w, http.StatusBadRequest, "Status must be pending or completed")
		return
	}

	progress := &models.ModuleProgress{EmployeeID: emp.ID, ModuleID: moduleID, Status: req.Status}
	if err := h.Store.UpsertModuleProgress(r.Context(), progress); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// ══════════════════════════════════════════════════════════════
// ── Feedback ─────────────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

// SubmitFeedback records feedback for the token's employee, replacing any
// previous submission, and marks the Feedback task completed.
func (h *Handlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	emp, err := h.Store.GetEmployeeByToken(r.Context(), token)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	fb := &models.Feedback{
		EmployeeID:  emp.ID,
		Rating:      req.Rating,
		Message:     req.Message,
		SubmittedAt: time.Now().UTC(),
	}
	if err := h.Store.UpsertFeedback(r.Context(), fb); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	task := &models.Task{EmployeeID: emp.ID, Title: "Feedback", Status: models.TaskCompleted}
	if err := h.Store.UpsertTask(r.Context(), task); err != nil {
		log.Warn().Err(err).Str("employee", emp.ID).Msg("Feedback task update failed")
	}
	if err := h.syncEmployeeStatus(r, emp); err != nil {
		log.Warn().Err(err).Str("employee", emp.ID).Msg("Employee status sync failed")
	}

	respondJSON(w, http.StatusCreated, fb)
}

// ══════════════════════════════════════════════════════════════
// ── Grounding inspection ─────────────────────────────────────
// ══════════════════════════════════════════════════════════════

// GetPageContext exposes the exact context block the chat prompt would
// see for a token and page.
func (h *Handlers) GetPageContext(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	page := chi.URLParam(r, "page")

	result, err := h.Tracker.BuildContext(r.Context(), token, page)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"context":  result.Context,
		"degraded": result.Degraded,
	})
}

func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Tracker.TaskStatus(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *Handlers) GetNextTask(w http.ResponseWriter, r *http.Request) {
	next, err := h.Tracker.NextTask(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"next_task": next})
}

func (h *Handlers) GetDocumentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Tracker.DocumentStatus(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *Handlers) GetModuleProgress(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	taskTitle := r.URL.Query().Get("task")

	if taskTitle != "" {
		tm, err := h.Tracker.TaskModuleProgress(r.Context(), token, taskTitle)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, tm)
		return
	}

	byTask, err := h.Tracker.ModuleProgress(r.Context(), token, "")
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, byTask)
}

// ══════════════════════════════════════════════════════════════
// ── HR analytics ─────────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.Tracker.OrgAnalytics(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, analytics)
}

func (h *Handlers) GetDepartmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Tracker.DepartmentStats(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handlers) GetPopulationSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Tracker.PopulationSummary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handlers) GetFeedbackSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Tracker.FeedbackSummary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ListHREmployees lists employees filtered by status or department, or
// all when no filter is given.
func (h *Handlers) ListHREmployees(w http.ResponseWriter, r *http.Request) {
	var (
		results []models.EmployeeSummary
		err     error
	)

	switch {
	case r.URL.Query().Get("status") != "":
		results, err = h.Tracker.EmployeesByStatus(r.Context(), r.URL.Query().Get("status"))
	case r.URL.Query().Get("department") != "":
		results, err = h.Tracker.EmployeesByDepartment(r.Context(), r.URL.Query().Get("department"))
	default:
		var employees []models.Employee
		employees, err = h.Store.ListEmployees(r.Context())
		for _, emp := range employees {
			results = append(results, models.EmployeeSummary{
				ID: emp.ID, Name: emp.Name, Email: emp.Email,
				Department: emp.Department, Role: emp.Role, Status: emp.Status,
			})
		}
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []models.EmployeeSummary{}
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *Handlers) GetEmployeeDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.Tracker.EmployeeDetails(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// ══════════════════════════════════════════════════════════════
// ── Helpers ──────────────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func isMainTask(title string) bool {
	for _, t := range models.MainTasks {
		if t == title {
			return true
		}
	}
	return false
}

// folderName derives the upload folder for a new employee:
// "Asha Rao", "E102" → "asha-rao-E102".
func folderName(name, id string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug + "-" + id
}
