package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sumerudigitals/onboard/internal/store"
	"github.com/sumerudigitals/onboard/pkg/models"
)

func newEmployee(id, name, email, dept, token string) *models.Employee {
	return &models.Employee{
		ID: id, Name: name, Email: email, Role: "Engineer",
		Department: dept, Status: models.StatusPending, Token: token,
	}
}

func TestMemoryStore_EmployeeCRUD(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.CreateEmployee(ctx, newEmployee("E1", "Asha Rao", "asha@x.example", "Engineering", "tok-1")); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetEmployee(ctx, "E1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Asha Rao" {
		t.Errorf("Name = %q, want Asha Rao", got.Name)
	}

	byToken, err := s.GetEmployeeByToken(ctx, "tok-1")
	if err != nil {
		t.Fatal(err)
	}
	if byToken.ID != "E1" {
		t.Errorf("token lookup ID = %q, want E1", byToken.ID)
	}

	// Returned values are copies; mutations must not leak in.
	got.Name = "changed"
	again, _ := s.GetEmployee(ctx, "E1")
	if again.Name != "Asha Rao" {
		t.Error("stored employee mutated through returned copy")
	}

	if _, err := s.GetEmployee(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetEmployeeByToken(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// Rotating an employee's token unmaps the old one.
func TestMemoryStore_TokenRotation(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	emp := newEmployee("E1", "Asha Rao", "asha@x.example", "Engineering", "tok-old")
	if err := s.CreateEmployee(ctx, emp); err != nil {
		t.Fatal(err)
	}

	emp.Token = "tok-new"
	if err := s.UpdateEmployee(ctx, emp); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetEmployeeByToken(ctx, "tok-old"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old token still resolves, err = %v", err)
	}
	if got, err := s.GetEmployeeByToken(ctx, "tok-new"); err != nil || got.ID != "E1" {
		t.Errorf("new token lookup = %v, %v", got, err)
	}
}

func TestMemoryStore_SearchLimit(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	names := []string{"Asha", "Ashish", "Ashok", "Aisha"}
	for i, name := range names {
		id := string(rune('A' + i))
		if err := s.CreateEmployee(ctx, newEmployee("E"+id, name, name+"@x.example", "Engineering", "tok-"+id)); err != nil {
			t.Fatal(err)
		}
	}

	out, err := s.SearchEmployees(ctx, "ash", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want limit of 2", len(out))
	}
	// Deterministic order by ID.
	if out[0].ID > out[1].ID {
		t.Errorf("results not sorted: %v", out)
	}
}

func TestMemoryStore_TaskUpsertReplaces(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	task := &models.Task{EmployeeID: "E1", Title: "Training", Status: models.TaskPending}
	if err := s.UpsertTask(ctx, task); err != nil {
		t.Fatal(err)
	}
	task.Status = models.TaskCompleted
	if err := s.UpsertTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	tasks, err := s.ListTasks(ctx, "E1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len = %d, want 1 after upsert", len(tasks))
	}
	if tasks[0].Status != models.TaskCompleted {
		t.Errorf("Status = %q, want completed", tasks[0].Status)
	}
}

func TestMemoryStore_ModulesOrdered(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	mods := []models.TaskModule{
		{ID: "m2", TaskTitle: "Training", Key: "b", Name: "B", OrderIndex: 1},
		{ID: "m1", TaskTitle: "Training", Key: "a", Name: "A", OrderIndex: 0},
		{ID: "m3", TaskTitle: "Feedback", Key: "c", Name: "C", OrderIndex: 0},
	}
	for i := range mods {
		if err := s.CreateModule(ctx, &mods[i]); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListModules(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// Sorted by task title, then order index.
	if all[0].ID != "m3" || all[1].ID != "m1" || all[2].ID != "m2" {
		t.Errorf("order = %s,%s,%s", all[0].ID, all[1].ID, all[2].ID)
	}

	training, err := s.ListModules(ctx, "Training")
	if err != nil {
		t.Fatal(err)
	}
	if len(training) != 2 || training[0].ID != "m1" {
		t.Errorf("filtered = %v", training)
	}
}

func TestMemoryStore_FeedbackReplaces(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.UpsertFeedback(ctx, &models.Feedback{EmployeeID: "E1", Rating: 2, Message: "rough start"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertFeedback(ctx, &models.Feedback{EmployeeID: "E1", Rating: 5, Message: "much better now"}); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListFeedback(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("len = %d, want 1", len(all))
	}
	if all[0].Rating != 5 {
		t.Errorf("Rating = %d, want 5", all[0].Rating)
	}
	if all[0].SubmittedAt.IsZero() {
		t.Error("SubmittedAt not defaulted")
	}
}

// Data written before Close survives a restart via the JSON snapshot.
func TestMemoryStore_SnapshotPersistence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ONBOARD_DATA_DIR", dir)

	s := store.NewMemoryStore()
	ctx := context.Background()
	if err := s.CreateEmployee(ctx, newEmployee("E1", "Asha Rao", "asha@x.example", "Engineering", "tok-1")); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertFeedback(ctx, &models.Feedback{EmployeeID: "E1", Rating: 4, Message: "ok", SubmittedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := store.NewMemoryStore()
	defer reopened.Close()

	emp, err := reopened.GetEmployeeByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("token index not rebuilt from snapshot: %v", err)
	}
	if emp.Name != "Asha Rao" {
		t.Errorf("Name = %q, want Asha Rao", emp.Name)
	}
	if _, err := reopened.GetFeedback(ctx, "E1"); err != nil {
		t.Errorf("feedback not restored: %v", err)
	}
}
