package types

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	apperrors "taskmanager-core/internal/errors"
	"taskmanager-core/internal/validation"
)

const (
	maxTaskTitleLength       = 200
	maxTaskDescriptionLength = 2000
)

// Task is a single unit of work. Instances are only ever produced by NewTask
// or by the copy-with-update operations, so every observable Task satisfies
// the status and date invariants.
type Task struct {
	ID          *int       `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Tags        []Tag      `json:"tags"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskParams carries the raw inputs for NewTask. Zero values get defaults:
// status todo, priority medium, created_at the current time.
type TaskParams struct {
	ID          *int
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Tags        []Tag
	DueDate     *time.Time
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewTask creates a validated task.
//
// completed_at is derived from status rather than trusted: done tasks get the
// current time when none is supplied, todo and in-progress tasks always carry
// none, and archived tasks must already carry one since archiving is only
// reachable from done.
func NewTask(p TaskParams) (*Task, error) {
	title, err := validation.NotEmptyString(p.Title, "title")
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(title); n > maxTaskTitleLength {
		return nil, apperrors.NewFieldValidation(
			"title",
			fmt.Sprintf("Title must be at most %d characters long (got %d)", maxTaskTitleLength, n),
			title,
		).WithDetail("max_length", maxTaskTitleLength)
	}

	if n := utf8.RuneCountInString(p.Description); n > maxTaskDescriptionLength {
		return nil, apperrors.NewFieldValidation(
			"description",
			fmt.Sprintf("Description must be at most %d characters long (got %d)", maxTaskDescriptionLength, n),
			nil,
		).WithDetail("max_length", maxTaskDescriptionLength)
	}

	status := p.Status
	if status == "" {
		status = StatusTodo
	}
	if !status.IsValid() {
		_, err := ParseStatus(string(status))
		return nil, err
	}

	priority := p.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		_, err := ParsePriority(string(priority))
		return nil, err
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = timeNow()
	}

	completedAt, err := deriveCompletedAt(status, p.CompletedAt)
	if err != nil {
		return nil, err
	}

	if p.DueDate != nil && p.DueDate.Before(createdAt) {
		return nil, apperrors.NewDateRange(
			"due_date cannot be before created_at",
			"due_date",
			p.DueDate.Format(time.RFC3339Nano),
		).WithDetail("created_at", createdAt.Format(time.RFC3339Nano))
	}

	task := &Task{
		ID:          copyIntPtr(p.ID),
		Title:       title,
		Description: p.Description,
		Status:      status,
		Priority:    priority,
		Tags:        copyTags(p.Tags),
		DueDate:     copyTimePtr(p.DueDate),
		CreatedAt:   createdAt,
		CompletedAt: completedAt,
	}
	return task, nil
}

// deriveCompletedAt enforces the status/completion invariant at construction.
func deriveCompletedAt(status Status, completedAt *time.Time) (*time.Time, error) {
	switch status {
	case StatusDone:
		if completedAt == nil {
			now := timeNow()
			return &now, nil
		}
		return copyTimePtr(completedAt), nil
	case StatusArchived:
		if completedAt == nil {
			return nil, apperrors.NewStateValidation(
				"Archived tasks must have a completed_at timestamp",
				string(StatusArchived), "",
			).WithCode("ARCHIVED_WITHOUT_COMPLETION").WithDetail(
				"suggestion", "Complete the task before archiving it",
			)
		}
		return copyTimePtr(completedAt), nil
	default:
		// todo and in_progress tasks never carry completion evidence.
		return nil, nil
	}
}

// MarkComplete produces a new task with status done and completed_at set to
// the current time. Completing an already-done or archived task fails.
func (t *Task) MarkComplete() (*Task, error) {
	switch t.Status {
	case StatusDone:
		e := apperrors.NewInvalidTransition(
			"Task is already completed",
			string(StatusDone), string(StatusDone),
		).WithCode("ALREADY_COMPLETED").WithDetail("task_title", t.Title)
		if t.ID != nil {
			e.WithDetail("task_id", *t.ID)
		}
		if t.CompletedAt != nil {
			e.WithDetail("completed_at", t.CompletedAt.Format(time.RFC3339Nano))
		}
		return nil, e
	case StatusArchived:
		e := apperrors.NewInvalidTransition(
			"Cannot complete an archived task",
			string(StatusArchived), string(StatusDone),
		).WithCode("ARCHIVED_TASK_COMPLETION").WithDetails(map[string]any{
			"task_title": t.Title,
			"suggestion": "Restore the task from archive before marking it complete",
		})
		if t.ID != nil {
			e.WithDetail("task_id", *t.ID)
		}
		return nil, e
	}

	now := timeNow()
	updated := t.clone()
	updated.Status = StatusDone
	updated.CompletedAt = &now
	return updated, nil
}

// Archive produces a new task with status archived. Only done tasks can be
// archived; the completion timestamp is preserved.
func (t *Task) Archive() (*Task, error) {
	if t.Status != StatusDone {
		return nil, apperrors.NewStateValidation(
			"Only completed tasks can be archived",
			string(t.Status), string(StatusArchived),
		).WithCode("ARCHIVED_WITHOUT_COMPLETION").WithDetail(
			"suggestion", "Complete the task before archiving it",
		)
	}
	updated := t.clone()
	updated.Status = StatusArchived
	return updated, nil
}

// IsOverdue reports whether the task has a due date in the past and is not
// done. Archived tasks with a past due date count as overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusDone
}

// ToExternalForm converts the task to a plain key-value representation:
// enums as string labels, timestamps as ISO-8601 text, tags recursively
// converted. Absent optional fields map to nil.
func (t *Task) ToExternalForm() map[string]any {
	tags := make([]map[string]any, len(t.Tags))
	for i, tag := range t.Tags {
		tags[i] = tag.ToExternalForm()
	}

	var id any
	if t.ID != nil {
		id = *t.ID
	}
	var description any
	if t.Description != "" {
		description = t.Description
	}
	var dueDate any
	if t.DueDate != nil {
		dueDate = t.DueDate.Format(time.RFC3339Nano)
	}
	var completedAt any
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.Format(time.RFC3339Nano)
	}

	return map[string]any{
		"id":           id,
		"title":        t.Title,
		"description":  description,
		"status":       string(t.Status),
		"priority":     string(t.Priority),
		"tags":         tags,
		"due_date":     dueDate,
		"created_at":   t.CreatedAt.Format(time.RFC3339Nano),
		"completed_at": completedAt,
	}
}

// ToJSON renders the external form as JSON.
func (t *Task) ToJSON() ([]byte, error) {
	data, err := json.Marshal(t.ToExternalForm())
	if err != nil {
		return nil, apperrors.NewSerialization("failed to serialize task to JSON", "to_json", err)
	}
	return data, nil
}

// clone produces a deep copy so copy-with-update operations never alias the
// original's slices or pointers.
func (t *Task) clone() *Task {
	return &Task{
		ID:          copyIntPtr(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Tags:        copyTags(t.Tags),
		DueDate:     copyTimePtr(t.DueDate),
		CreatedAt:   t.CreatedAt,
		CompletedAt: copyTimePtr(t.CompletedAt),
	}
}

func copyTags(tags []Tag) []Tag {
	if tags == nil {
		return []Tag{}
	}
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTimePtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
