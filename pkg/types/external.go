package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	apperrors "taskmanager-core/internal/errors"
)

// Draft structs mirror the external form with loose typing so mapstructure
// can absorb JSON-decoded maps. Reconstruction always goes back through the
// constructors, so every invariant is re-checked on the way in.

type tagDraft struct {
	Name  string `mapstructure:"name"`
	Color string `mapstructure:"color"`
}

type taskDraft struct {
	ID          *int       `mapstructure:"id"`
	Title       string     `mapstructure:"title"`
	Description string     `mapstructure:"description"`
	Status      string     `mapstructure:"status"`
	Priority    string     `mapstructure:"priority"`
	Tags        []tagDraft `mapstructure:"tags"`
	DueDate     *time.Time `mapstructure:"due_date"`
	CreatedAt   *time.Time `mapstructure:"created_at"`
	CompletedAt *time.Time `mapstructure:"completed_at"`
}

type taskListDraft struct {
	Name      string      `mapstructure:"name"`
	Tasks     []taskDraft `mapstructure:"tasks"`
	Owner     string      `mapstructure:"owner"`
	CreatedAt *time.Time  `mapstructure:"created_at"`
}

type userDraft struct {
	ID        *int            `mapstructure:"id"`
	Username  string          `mapstructure:"username"`
	Email     string          `mapstructure:"email"`
	FullName  string          `mapstructure:"full_name"`
	IsActive  *bool           `mapstructure:"is_active"`
	TaskLists []taskListDraft `mapstructure:"task_lists"`
}

// decodeExternal decodes a generic map into a draft struct, converting
// RFC 3339 timestamp strings into time.Time along the way.
func decodeExternal(form map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return apperrors.NewSerialization("failed to build external form decoder", "from_external_form", err)
	}
	if err := decoder.Decode(form); err != nil {
		if strings.Contains(err.Error(), "parsing time") {
			return apperrors.NewDateRange(
				fmt.Sprintf("invalid timestamp in external form: %v", err),
				"",
				"",
			).WithCode("INVALID_DATE_TYPE")
		}
		return apperrors.NewSerialization("failed to decode external form", "from_external_form", err)
	}
	return nil
}

// TagFromExternalForm reconstructs a Tag from its external form.
func TagFromExternalForm(form map[string]any) (Tag, error) {
	var draft tagDraft
	if err := decodeExternal(form, &draft); err != nil {
		return Tag{}, err
	}
	return NewTag(draft.Name, draft.Color)
}

// TaskFromExternalForm reconstructs a Task from its external form, re-running
// every constructor check against the decoded values.
func TaskFromExternalForm(form map[string]any) (*Task, error) {
	var draft taskDraft
	if err := decodeExternal(form, &draft); err != nil {
		return nil, err
	}
	return taskFromDraft(draft)
}

func taskFromDraft(draft taskDraft) (*Task, error) {
	tags := make([]Tag, 0, len(draft.Tags))
	for _, td := range draft.Tags {
		tag, err := NewTag(td.Name, td.Color)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	status := StatusTodo
	if draft.Status != "" {
		parsed, err := ParseStatus(draft.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	priority := PriorityMedium
	if draft.Priority != "" {
		parsed, err := ParsePriority(draft.Priority)
		if err != nil {
			return nil, err
		}
		priority = parsed
	}

	var createdAt time.Time
	if draft.CreatedAt != nil {
		createdAt = *draft.CreatedAt
	}

	return NewTask(TaskParams{
		ID:          draft.ID,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      status,
		Priority:    priority,
		Tags:        tags,
		DueDate:     draft.DueDate,
		CreatedAt:   createdAt,
		CompletedAt: draft.CompletedAt,
	})
}

// TaskListFromExternalForm reconstructs a TaskList, including its tasks.
func TaskListFromExternalForm(form map[string]any) (*TaskList, error) {
	var draft taskListDraft
	if err := decodeExternal(form, &draft); err != nil {
		return nil, err
	}
	return taskListFromDraft(draft)
}

func taskListFromDraft(draft taskListDraft) (*TaskList, error) {
	tasks := make([]Task, 0, len(draft.Tasks))
	for _, td := range draft.Tasks {
		task, err := taskFromDraft(td)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	list, err := NewTaskList(draft.Name, draft.Owner, tasks)
	if err != nil {
		return nil, err
	}
	if draft.CreatedAt != nil {
		list.CreatedAt = *draft.CreatedAt
	}
	return list, nil
}

// UserFromExternalForm reconstructs a User and every nested list and task.
func UserFromExternalForm(form map[string]any) (*User, error) {
	var draft userDraft
	if err := decodeExternal(form, &draft); err != nil {
		return nil, err
	}

	lists := make([]TaskList, 0, len(draft.TaskLists))
	for _, ld := range draft.TaskLists {
		list, err := taskListFromDraft(ld)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}

	return NewUser(UserParams{
		ID:        draft.ID,
		Username:  draft.Username,
		Email:     draft.Email,
		FullName:  draft.FullName,
		IsActive:  draft.IsActive,
		TaskLists: lists,
	})
}
