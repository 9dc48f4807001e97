package grounding

import (
	"context"
	"errors"
	"fmt"

	"github.com/sumerudigitals/onboard/internal/store"
	"github.com/sumerudigitals/onboard/pkg/models"
)

// EmployeeDetails is the full HR drill-down view of one employee.
type EmployeeDetails struct {
	ID         string                `json:"emp_id"`
	Name       string                `json:"name"`
	Email      string                `json:"email"`
	Role       string                `json:"role"`
	Department string                `json:"department"`
	Status     models.EmployeeStatus `json:"status"`
	Token      string                `json:"token"`

	PersonalInfo *DetailPersonalInfo `json:"personal_info"`
	Tasks        []DetailTask        `json:"tasks"`
	Documents    []string            `json:"documents"`
	Feedback     *DetailFeedback     `json:"feedback"`
}

// DetailPersonalInfo is the identity subset shown to HR.
type DetailPersonalInfo struct {
	Mobile        string `json:"mobile"`
	DOB           string `json:"dob"`
	Gender        string `json:"gender"`
	AadhaarNumber string `json:"aadhaar_number"`
	PANNumber     string `json:"pan_number"`
}

// DetailTask is one task row in the drill-down.
type DetailTask struct {
	Title  string           `json:"title"`
	Status models.TaskState `json:"status"`
}

// DetailFeedback is the feedback row in the drill-down. Message is
// truncated to 100 characters for list rendering.
type DetailFeedback struct {
	Rating      int    `json:"rating"`
	Message     string `json:"message"`
	SubmittedAt string `json:"submitted_at"`
}

// EmployeeDetails builds the drill-down view for one employee. Missing
// personal info or feedback leaves the corresponding section nil.
func (t *Tracker) EmployeeDetails(ctx context.Context, employeeID string) (*EmployeeDetails, error) {
	emp, err := t.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	details := &EmployeeDetails{
		ID:         emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Role:       emp.Role,
		Department: emp.Department,
		Status:     emp.Status,
		Token:      emp.Token,
	}

	info, err := t.store.GetPersonalInfo(ctx, emp.ID)
	switch {
	case err == nil:
		details.PersonalInfo = &DetailPersonalInfo{
			Mobile:        info.Mobile,
			DOB:           info.DOB,
			Gender:        info.Gender,
			AadhaarNumber: info.AadhaarNumber,
			PANNumber:     info.PANNumber,
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("personal info: %w", err)
	}

	tasks, err := t.store.ListTasks(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for _, task := range tasks {
		details.Tasks = append(details.Tasks, DetailTask{Title: task.Title, Status: task.Status})
	}

	docs, err := t.docs.ListDocuments(ctx, emp.FolderName)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	details.Documents = docs

	fb, err := t.store.GetFeedback(ctx, emp.ID)
	switch {
	case err == nil:
		msg := fb.Message
		if len(msg) > 100 {
			msg = msg[:100] + "..."
		}
		details.Feedback = &DetailFeedback{
			Rating:      fb.Rating,
			Message:     msg,
			SubmittedAt: fb.SubmittedAt.Format("2006-01-02"),
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("feedback: %w", err)
	}

	return details, nil
}
