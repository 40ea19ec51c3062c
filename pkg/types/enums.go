// Package types provides the validated task manager entities: Tag, Task,
// TaskList and User. Entities are value objects: constructors validate every
// invariant before an instance becomes observable, and updates are expressed
// as copy-with-update operations that never mutate the original.
package types

import (
	"fmt"
	"time"

	apperrors "taskmanager-core/internal/errors"
)

// timeNow is the clock seam for construction defaults and transitions.
var timeNow = time.Now

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

// AllStatuses returns every valid status in declaration order.
func AllStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone, StatusArchived}
}

// IsValid reports whether the status is a member of the enum.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

// ParseStatus converts a string label into a Status. Unrecognized labels fail
// with every valid value enumerated in details.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.IsValid() {
		return "", apperrors.NewFieldValidation(
			"status",
			fmt.Sprintf("Invalid status value: '%s'", value),
			value,
		).WithCode("INVALID_STATUS_VALUE").WithDetails(map[string]any{
			"valid_statuses": statusLabels(),
			"hint":           "Use one of the valid status values",
		})
	}
	return s, nil
}

func statusLabels() []string {
	all := AllStatuses()
	labels := make([]string, len(all))
	for i, s := range all {
		labels[i] = string(s)
	}
	return labels
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// AllPriorities returns every valid priority in declaration order.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// IsValid reports whether the priority is a member of the enum.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// ParsePriority converts a string label into a Priority.
func ParsePriority(value string) (Priority, error) {
	p := Priority(value)
	if !p.IsValid() {
		return "", apperrors.NewFieldValidation(
			"priority",
			fmt.Sprintf("Invalid priority value: '%s'", value),
			value,
		).WithCode("INVALID_PRIORITY_VALUE").WithDetails(map[string]any{
			"valid_priorities": priorityLabels(),
			"hint":             "Use one of the valid priority values",
		})
	}
	return p, nil
}

func priorityLabels() []string {
	all := AllPriorities()
	labels := make([]string, len(all))
	for i, p := range all {
		labels[i] = string(p)
	}
	return labels
}
