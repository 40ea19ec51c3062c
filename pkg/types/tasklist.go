package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	apperrors "taskmanager-core/internal/errors"
	"taskmanager-core/internal/validation"
)

const maxTaskListNameLength = 100

// TaskList is an ordered collection of tasks owned by a single principal.
// The list never contains two tasks sharing a non-nil ID.
type TaskList struct {
	Name      string    `json:"name"`
	Tasks     []Task    `json:"tasks"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskList creates a validated task list. The duplicate-ID invariant is
// checked across the initial tasks; tasks without an ID never count as
// duplicates of one another.
func NewTaskList(name, owner string, tasks []Task) (*TaskList, error) {
	trimmed, err := validation.NotEmptyString(name, "name")
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(trimmed); n > maxTaskListNameLength {
		return nil, apperrors.NewFieldValidation(
			"name",
			fmt.Sprintf("Task list name must be at most %d characters long (got %d)", maxTaskListNameLength, n),
			trimmed,
		).WithDetail("max_length", maxTaskListNameLength)
	}

	if err := checkDuplicateTaskIDs(tasks); err != nil {
		return nil, err
	}

	return &TaskList{
		Name:      trimmed,
		Tasks:     copyTasks(tasks),
		Owner:     owner,
		CreatedAt: timeNow(),
	}, nil
}

// checkDuplicateTaskIDs fails when any non-nil task ID repeats, reporting
// every repeated ID rather than just the first.
func checkDuplicateTaskIDs(tasks []Task) error {
	counts := map[int]int{}
	for _, t := range tasks {
		if t.ID == nil {
			continue
		}
		counts[*t.ID]++
	}

	var duplicates []int
	for id, n := range counts {
		if n > 1 {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) == 0 {
		return nil
	}
	sort.Ints(duplicates)

	return apperrors.NewDuplicateEntity("Task list contains duplicate task IDs").
		WithCode("DUPLICATE_TASK_IDS_IN_LIST").
		WithDetails(map[string]any{
			"duplicate_ids": duplicates,
			"total_tasks":   len(tasks),
			"unique_ids":    len(counts),
			"suggestion":    "Assign a unique ID to each task in the list",
		})
}

// AddTask returns a new list with the task appended. The task's ID is checked
// against the existing tasks first; the original list is never mutated.
func (l *TaskList) AddTask(task Task) (*TaskList, error) {
	if task.ID != nil {
		for _, existing := range l.Tasks {
			if existing.ID != nil && *existing.ID == *task.ID {
				return nil, apperrors.NewDuplicateEntity(
					fmt.Sprintf("Task with ID '%d' already exists in list '%s'", *task.ID, l.Name),
				).WithCode("DUPLICATE_TASK_IN_ADD").WithDetails(map[string]any{
					"task_id":             *task.ID,
					"task_title":          task.Title,
					"existing_task_count": len(l.Tasks),
					"suggestion":          "Assign a unique task ID before adding the task to the list",
				})
			}
		}
	}

	updated := &TaskList{
		Name:      l.Name,
		Tasks:     append(copyTasks(l.Tasks), task),
		Owner:     l.Owner,
		CreatedAt: l.CreatedAt,
	}
	return updated, nil
}

// TasksByStatus returns the tasks with the given status, in list order.
func (l *TaskList) TasksByStatus(status Status) []Task {
	var out []Task
	for _, t := range l.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// TasksByStatusLabel filters by a string status label. Unrecognized labels
// fail with every valid value enumerated.
func (l *TaskList) TasksByStatusLabel(label string) ([]Task, error) {
	status, err := ParseStatus(label)
	if err != nil {
		return nil, err
	}
	return l.TasksByStatus(status), nil
}

// TasksByPriority returns the tasks with the given priority, in list order.
func (l *TaskList) TasksByPriority(priority Priority) []Task {
	var out []Task
	for _, t := range l.Tasks {
		if t.Priority == priority {
			out = append(out, t)
		}
	}
	return out
}

// TasksByPriorityLabel filters by a string priority label.
func (l *TaskList) TasksByPriorityLabel(label string) ([]Task, error) {
	priority, err := ParsePriority(label)
	if err != nil {
		return nil, err
	}
	return l.TasksByPriority(priority), nil
}

// OverdueTasks returns the tasks whose due date precedes now and which are
// not done. Archived tasks with a past due date are included: only done
// excludes a task from being overdue.
func (l *TaskList) OverdueTasks(now time.Time) []Task {
	var out []Task
	for _, t := range l.Tasks {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out
}

// ToExternalForm converts the list and its tasks to a plain key-value
// representation.
func (l *TaskList) ToExternalForm() map[string]any {
	tasks := make([]map[string]any, len(l.Tasks))
	for i := range l.Tasks {
		tasks[i] = l.Tasks[i].ToExternalForm()
	}
	return map[string]any{
		"name":       l.Name,
		"tasks":      tasks,
		"owner":      l.Owner,
		"created_at": l.CreatedAt.Format(time.RFC3339Nano),
	}
}

// ToJSON renders the external form as JSON.
func (l *TaskList) ToJSON() ([]byte, error) {
	data, err := json.Marshal(l.ToExternalForm())
	if err != nil {
		return nil, apperrors.NewSerialization("failed to serialize task list to JSON", "to_json", err)
	}
	return data, nil
}

func copyTasks(tasks []Task) []Task {
	if tasks == nil {
		return []Task{}
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
