package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	apperrors "taskmanager-core/internal/errors"
	"taskmanager-core/internal/validation"
)

// nameFolder implements case-insensitive task list name comparison,
// including non-ASCII names.
var nameFolder = cases.Fold()

// User is an account owning a set of task lists. Task list names are unique
// per user under case-insensitive comparison. All operations except SetActive
// return updated copies rather than mutating the receiver.
type User struct {
	ID        *int       `json:"id,omitempty"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	IsActive  bool       `json:"is_active"`
	TaskLists []TaskList `json:"task_lists"`
}

// UserParams carries the inputs for NewUser.
type UserParams struct {
	ID        *int
	Username  string
	Email     string
	FullName  string
	IsActive  *bool
	TaskLists []TaskList
}

// NewUser creates a validated user. Username and email are normalized by
// their validators; IsActive defaults to true.
func NewUser(params UserParams) (*User, error) {
	username, err := validation.UsernameFormat(params.Username)
	if err != nil {
		return nil, err
	}
	email, err := validation.EmailFormat(params.Email)
	if err != nil {
		return nil, err
	}
	if err := checkDuplicateListNames(params.TaskLists); err != nil {
		return nil, err
	}

	active := true
	if params.IsActive != nil {
		active = *params.IsActive
	}

	return &User{
		ID:        copyIntPtr(params.ID),
		Username:  username,
		Email:     email,
		FullName:  strings.TrimSpace(params.FullName),
		IsActive:  active,
		TaskLists: copyTaskLists(params.TaskLists),
	}, nil
}

// checkDuplicateListNames fails when two lists collide under case-insensitive
// comparison. Duplicate names are reported with their original casing, in
// first-appearance order of the repeated name.
func checkDuplicateListNames(lists []TaskList) error {
	seen := map[string]string{}
	reported := map[string]bool{}
	var duplicates []string
	for _, list := range lists {
		key := nameFolder.String(strings.TrimSpace(list.Name))
		if first, ok := seen[key]; ok {
			if !reported[key] {
				duplicates = append(duplicates, first)
				reported[key] = true
			}
			continue
		}
		seen[key] = list.Name
	}
	if len(duplicates) == 0 {
		return nil
	}

	return apperrors.NewDuplicateEntity("User has task lists with duplicate names").
		WithCode("DUPLICATE_TASKLIST_NAMES").
		WithDetails(map[string]any{
			"duplicate_names": duplicates,
			"total_lists":     len(lists),
			"unique_names":    len(seen),
			"comparison":      "case-insensitive",
			"suggestion":      "Rename the task lists so each name is unique",
		})
}

// WithTaskLists returns a copy of the user holding the given lists, after
// re-checking the duplicate-name invariant.
func (u *User) WithTaskLists(lists []TaskList) (*User, error) {
	if err := checkDuplicateListNames(lists); err != nil {
		return nil, err
	}
	updated := u.clone()
	updated.TaskLists = copyTaskLists(lists)
	return updated, nil
}

// AddTaskList returns a copy of the user with the list appended.
func (u *User) AddTaskList(list TaskList) (*User, error) {
	return u.WithTaskLists(append(copyTaskLists(u.TaskLists), list))
}

// SetActive flips the account's active flag in place. This is the only
// mutating operation on User.
func (u *User) SetActive(active bool) {
	u.IsActive = active
}

// ValidateTaskListOwnership finds the user's list with the given name and
// verifies the user owns it. Lookup is case-insensitive.
func (u *User) ValidateTaskListOwnership(name string) (*TaskList, error) {
	key := nameFolder.String(strings.TrimSpace(name))
	for i := range u.TaskLists {
		list := &u.TaskLists[i]
		if nameFolder.String(strings.TrimSpace(list.Name)) != key {
			continue
		}
		if list.Owner != u.Username {
			return nil, apperrors.NewOwnership(
				fmt.Sprintf("Task list '%s' is not owned by user '%s'", list.Name, u.Username),
				"task_list", list.Name, u.Username,
			).WithCode("TASKLIST_OWNERSHIP_MISMATCH").WithDetails(map[string]any{
				"expected_owner": u.Username,
				"actual_owner":   list.Owner,
			})
		}
		found := *list
		found.Tasks = copyTasks(list.Tasks)
		return &found, nil
	}

	available := make([]string, len(u.TaskLists))
	for i, list := range u.TaskLists {
		available[i] = list.Name
	}
	return nil, apperrors.NewEntityNotFound(
		fmt.Sprintf("Task list '%s' not found for user '%s'", name, u.Username),
	).WithCode("TASKLIST_NOT_FOUND").WithDetails(map[string]any{
		"task_list_name":  name,
		"username":        u.Username,
		"available_lists": available,
	})
}

// requireActive guards operations that inactive accounts may not perform.
func (u *User) requireActive(operation string) error {
	if u.IsActive {
		return nil
	}
	return apperrors.NewStateValidation(
		fmt.Sprintf("Cannot perform '%s' on inactive user '%s'", operation, u.Username),
		"inactive", "",
	).WithCode("INACTIVE_USER_OPERATION").WithDetails(map[string]any{
		"operation":  operation,
		"username":   u.Username,
		"is_active":  false,
		"suggestion": "Activate the user account before performing this operation",
	})
}

// ToExternalForm converts the user and all nested lists to a plain key-value
// representation. Inactive users refuse the conversion.
func (u *User) ToExternalForm() (map[string]any, error) {
	if err := u.requireActive("to_dict"); err != nil {
		return nil, err
	}

	lists := make([]map[string]any, len(u.TaskLists))
	for i := range u.TaskLists {
		lists[i] = u.TaskLists[i].ToExternalForm()
	}

	form := map[string]any{
		"username":   u.Username,
		"email":      u.Email,
		"is_active":  u.IsActive,
		"task_lists": lists,
	}
	if u.ID != nil {
		form["id"] = *u.ID
	} else {
		form["id"] = nil
	}
	if u.FullName != "" {
		form["full_name"] = u.FullName
	} else {
		form["full_name"] = nil
	}
	return form, nil
}

// ToJSON renders the external form as JSON. Inactive users refuse the
// conversion.
func (u *User) ToJSON() ([]byte, error) {
	if err := u.requireActive("to_json"); err != nil {
		return nil, err
	}
	form, err := u.ToExternalForm()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(form)
	if err != nil {
		return nil, apperrors.NewSerialization("failed to serialize user to JSON", "to_json", err)
	}
	return data, nil
}

func (u *User) clone() *User {
	return &User{
		ID:        copyIntPtr(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		TaskLists: copyTaskLists(u.TaskLists),
	}
}

func copyTaskLists(lists []TaskList) []TaskList {
	if lists == nil {
		return []TaskList{}
	}
	out := make([]TaskList, len(lists))
	copy(out, lists)
	return out
}
