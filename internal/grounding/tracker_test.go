package grounding_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sumerudigitals/onboard/internal/docstore"
	"github.com/sumerudigitals/onboard/internal/grounding"
	"github.com/sumerudigitals/onboard/internal/store"
	"github.com/sumerudigitals/onboard/pkg/models"
)

// newTestTracker builds a tracker over an ephemeral memory store and a
// local document root, pre-seeded with a small org:
//
//	E1 Asha  (Engineering, pending, token tok-asha): 2 of 5 tasks done
//	E2 Vikram (Engineering, pending, token tok-vikram)
//	E3 Meera (Sales, completed, token tok-meera): all tasks done
func newTestTracker(t *testing.T) (*grounding.Tracker, *store.MemoryStore, string) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("ONBOARD_DATA_DIR", "")
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	employees := []models.Employee{
		{ID: "E1", Name: "Asha Rao", Email: "asha@sumeru.example", Role: "Engineer",
			Department: "Engineering", Status: models.StatusPending, Token: "tok-asha", FolderName: "asha-rao-E1"},
		{ID: "E2", Name: "Vikram Shah", Email: "vikram@sumeru.example", Role: "Engineer",
			Department: "Engineering", Status: models.StatusPending, Token: "tok-vikram", FolderName: "vikram-shah-E2"},
		{ID: "E3", Name: "Meera Iyer", Email: "meera@sumeru.example", Role: "AE",
			Department: "Sales", Status: models.StatusCompleted, Token: "tok-meera", FolderName: "meera-iyer-E3"},
	}
	for i := range employees {
		if err := s.CreateEmployee(ctx, &employees[i]); err != nil {
			t.Fatal(err)
		}
	}

	seedTasks := func(empID string, completed ...string) {
		done := make(map[string]bool, len(completed))
		for _, title := range completed {
			done[title] = true
		}
		for _, title := range models.MainTasks {
			state := models.TaskPending
			if done[title] {
				state = models.TaskCompleted
			}
			if err := s.UpsertTask(ctx, &models.Task{EmployeeID: empID, Title: title, Status: state}); err != nil {
				t.Fatal(err)
			}
		}
	}
	seedTasks("E1", "Personal Details", "Joining Day")
	seedTasks("E2")
	seedTasks("E3", models.MainTasks...)

	// Three modules under Personal Details; Asha finished two.
	modules := []models.TaskModule{
		{ID: "m1", TaskTitle: "Personal Details", Key: "basic_info", Name: "Basic Info", OrderIndex: 0, Required: true},
		{ID: "m2", TaskTitle: "Personal Details", Key: "family_info", Name: "Family Info", OrderIndex: 1, Required: true},
		{ID: "m3", TaskTitle: "Personal Details", Key: "declaration", Name: "Declaration", OrderIndex: 2, Required: true},
	}
	for i := range modules {
		if err := s.CreateModule(ctx, &modules[i]); err != nil {
			t.Fatal(err)
		}
	}
	for _, moduleID := range []string{"m1", "m2"} {
		err := s.UpsertModuleProgress(ctx, &models.ModuleProgress{
			EmployeeID: "E1", ModuleID: moduleID, Status: models.TaskCompleted,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	// 12 of the 16 personal-info fields filled for Asha.
	err := s.UpsertPersonalInfo(ctx, &models.PersonalInfo{
		EmployeeID: "E1",
		Name:       "Asha Rao", Role: "Engineer", DOB: "1998-04-02", Mobile: "9876500000",
		Gender: "female", Email: "asha@sumeru.example",
		AadhaarNumber: "1234-5678-9012", PANNumber: "ABCDE1234F",
		BankNumber: "001122334455", IFSCCode: "SUMR0000123",
		Family1Name: "Ravi Rao", Family1Relation: "father",
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, fb := range []models.Feedback{
		{EmployeeID: "E1", Rating: 4, Message: "Smooth so far", SubmittedAt: time.Now()},
		{EmployeeID: "E3", Rating: 5, Message: "Great experience", SubmittedAt: time.Now()},
	} {
		if err := s.UpsertFeedback(ctx, &fb); err != nil {
			t.Fatal(err)
		}
	}

	tracker := grounding.NewTracker(s, docstore.NewLocalStore(dir))
	return tracker, s, dir
}

func TestTaskStatus(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	status, err := tracker.TaskStatus(context.Background(), "tok-asha")
	if err != nil {
		t.Fatal(err)
	}

	if status.Percent != 40 {
		t.Errorf("Percent = %d, want 40", status.Percent)
	}
	wantCompleted := []string{"Personal Details", "Joining Day"}
	if len(status.Completed) != 2 || status.Completed[0] != wantCompleted[0] || status.Completed[1] != wantCompleted[1] {
		t.Errorf("Completed = %v, want %v", status.Completed, wantCompleted)
	}
	if len(status.Pending) != 3 || status.Pending[0] != "Training" {
		t.Errorf("Pending = %v, want Training first", status.Pending)
	}
}

func TestTaskStatus_NoTasks(t *testing.T) {
	tracker, s, _ := newTestTracker(t)
	ctx := context.Background()

	if err := s.CreateEmployee(ctx, &models.Employee{ID: "E9", Name: "New Hire", Token: "tok-new"}); err != nil {
		t.Fatal(err)
	}

	status, err := tracker.TaskStatus(ctx, "tok-new")
	if err != nil {
		t.Fatal(err)
	}
	if status.Percent != 0 {
		t.Errorf("Percent = %d, want 0", status.Percent)
	}
	if len(status.Pending) != 5 {
		t.Errorf("len(Pending) = %d, want 5", len(status.Pending))
	}
}

func TestNextTask(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	ctx := context.Background()

	next, err := tracker.NextTask(ctx, "tok-asha")
	if err != nil {
		t.Fatal(err)
	}
	if next != "Training" {
		t.Errorf("NextTask = %q, want %q", next, "Training")
	}

	next, err = tracker.NextTask(ctx, "tok-meera")
	if err != nil {
		t.Fatal(err)
	}
	if next != "None 🎉" {
		t.Errorf("NextTask for finished employee = %q, want %q", next, "None 🎉")
	}
}

// Module percent truncates: 2 of 3 completed is 66, not 67.
func TestModuleProgress_TruncatedPercent(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	tm, err := tracker.TaskModuleProgress(context.Background(), "tok-asha", "Personal Details")
	if err != nil {
		t.Fatal(err)
	}
	if tm.TotalModules != 3 || tm.CompletedModules != 2 {
		t.Fatalf("modules = %d/%d, want 2/3", tm.CompletedModules, tm.TotalModules)
	}
	if tm.ProgressPercent != 66 {
		t.Errorf("ProgressPercent = %d, want 66", tm.ProgressPercent)
	}
}

func TestModuleProgress_NoModulesConfigured(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	tm, err := tracker.TaskModuleProgress(context.Background(), "tok-asha", "Training")
	if err != nil {
		t.Fatal(err)
	}
	if tm.TotalModules != 0 || tm.ProgressPercent != 0 {
		t.Errorf("empty task = %+v, want zero summary", tm)
	}
}

func TestDepartmentMembers_ExcludesSelf(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	members, err := tracker.DepartmentMembers(context.Background(), "Engineering", "tok-asha")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 {
		t.Fatalf("len(members) = %d, want 1", len(members))
	}
	if members[0].Name != "Vikram Shah" {
		t.Errorf("member = %q, want Vikram Shah", members[0].Name)
	}
}

func TestSearchEmployees(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	results, err := tracker.SearchEmployees(context.Background(), "asha")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "E1" {
		t.Fatalf("results = %v, want just E1", results)
	}

	// Email substrings match too.
	results, err = tracker.SearchEmployees(context.Background(), "sumeru.example")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("len(results) = %d, want 3", len(results))
	}
}

func TestOrgAnalytics(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	analytics, err := tracker.OrgAnalytics(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if analytics.TotalEmployees != 3 {
		t.Errorf("TotalEmployees = %d, want 3", analytics.TotalEmployees)
	}
	if analytics.CompletedEmployees != 1 || analytics.PendingEmployees != 2 {
		t.Errorf("completed/pending = %d/%d, want 1/2", analytics.CompletedEmployees, analytics.PendingEmployees)
	}
	if analytics.CompletionRate != 33.3 {
		t.Errorf("CompletionRate = %v, want 33.3", analytics.CompletionRate)
	}

	stat := analytics.TaskStatistics["Personal Details"]
	if stat.Assigned != 3 || stat.Completed != 2 {
		t.Errorf("Personal Details stat = %+v, want 2 of 3", stat)
	}
	if stat.CompletionRate != 66.7 {
		t.Errorf("Personal Details rate = %v, want 66.7", stat.CompletionRate)
	}
}

func TestDepartmentStats(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	stats, err := tracker.DepartmentStats(context.Background(), "Engineering")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalEmployees != 2 || stats.Completed != 0 {
		t.Errorf("dept = %d total / %d completed, want 2/0", stats.TotalEmployees, stats.Completed)
	}
	if ts := stats.TaskStats["Joining Day"]; ts.Completed != 1 || ts.Total != 2 || ts.Rate != 50 {
		t.Errorf("Joining Day stat = %+v, want 1/2 at 50", ts)
	}
}

func TestPopulationSummary(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	summary, err := tracker.PopulationSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 3 || summary.Completed != 1 || summary.Pending != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if b := summary.Departments["Engineering"]; b.Total != 2 || b.Pending != 2 {
		t.Errorf("Engineering breakdown = %+v, want 2 pending of 2", b)
	}
	if b := summary.Departments["Sales"]; b.Total != 1 || b.Completed != 1 {
		t.Errorf("Sales breakdown = %+v, want 1 completed of 1", b)
	}
}

func TestFeedbackSummary(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	summary, err := tracker.FeedbackSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 2 {
		t.Errorf("Total = %d, want 2", summary.Total)
	}
	if summary.AverageRating != 4.5 {
		t.Errorf("AverageRating = %v, want 4.5", summary.AverageRating)
	}
	if summary.RatingDistribution[4] != 1 || summary.RatingDistribution[5] != 1 {
		t.Errorf("RatingDistribution = %v", summary.RatingDistribution)
	}
	if summary.RatingDistribution[1] != 0 {
		t.Errorf("RatingDistribution[1] = %d, want 0", summary.RatingDistribution[1])
	}
}

func TestDocumentStatus(t *testing.T) {
	tracker, _, dir := newTestTracker(t)

	folder := filepath.Join(dir, "asha-rao-E1")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"aadhaar.pdf", "nda_signed.pdf"} {
		if err := os.WriteFile(filepath.Join(folder, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	status, err := tracker.DocumentStatus(context.Background(), "tok-asha")
	if err != nil {
		t.Fatal(err)
	}
	if status["aadhaar"] != docstore.StatusUploaded || status["nda"] != docstore.StatusUploaded {
		t.Errorf("status = %v, want aadhaar and nda uploaded", status)
	}
	if status["pan"] != docstore.StatusMissing {
		t.Errorf("pan = %q, want missing", status["pan"])
	}
}

func TestEmployeeDetails(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	details, err := tracker.EmployeeDetails(context.Background(), "E1")
	if err != nil {
		t.Fatal(err)
	}
	if details.Name != "Asha Rao" || details.Token != "tok-asha" {
		t.Errorf("details = %+v", details)
	}
	if details.PersonalInfo == nil || details.PersonalInfo.PANNumber != "ABCDE1234F" {
		t.Errorf("PersonalInfo = %+v", details.PersonalInfo)
	}
	if len(details.Tasks) != 5 {
		t.Errorf("len(Tasks) = %d, want 5", len(details.Tasks))
	}
	if details.Feedback == nil || details.Feedback.Rating != 4 {
		t.Errorf("Feedback = %+v", details.Feedback)
	}
}

func TestEmployeeDetails_MissingSections(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	// E2 has no personal info and no feedback.
	details, err := tracker.EmployeeDetails(context.Background(), "E2")
	if err != nil {
		t.Fatal(err)
	}
	if details.PersonalInfo != nil {
		t.Errorf("PersonalInfo = %+v, want nil", details.PersonalInfo)
	}
	if details.Feedback != nil {
		t.Errorf("Feedback = %+v, want nil", details.Feedback)
	}
}

func TestEmployeeByToken_Unknown(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	_, err := tracker.EmployeeByToken(context.Background(), "no-such-token")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
