// Command demo walks through the validation core: field validators, batch
// validation, entity invariants, state transitions and persistence.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"taskmanager-core/internal/config"
	apperrors "taskmanager-core/internal/errors"
	"taskmanager-core/internal/logging"
	"taskmanager-core/internal/storage"
	"taskmanager-core/internal/validation"
	"taskmanager-core/pkg/types"
)

var (
	header  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	note    = color.New(color.FgYellow)
)

func section(title string) {
	fmt.Println()
	header.Println(title)
	header.Println(strings.Repeat("=", len(title)))
}

func showOK(what string) {
	success.Printf("  ok   %s\n", what)
}

func showErr(err error) {
	failure.Printf("  fail %v\n", err)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		failure.Printf("invalid configuration: %v\n", err)
		cfg = config.DefaultConfig()
	}
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		failure.Printf("logger setup failed: %v\n", err)
		logger = logging.NewLogger(logging.INFO)
	}

	demoValidators()
	demoBatchValidation()
	demoEntities()
	demoTransitions()
	demoStorage(cfg, logger)
}

func demoValidators() {
	section("Field validators")

	if hex, err := validation.HexColor("#ff8800"); err == nil {
		showOK(fmt.Sprintf("HexColor normalized to %s", hex))
	}
	if _, err := validation.HexColor("FF8800"); err != nil {
		showErr(err)
	}
	if email, err := validation.EmailFormat("  User@Example.COM "); err == nil {
		showOK(fmt.Sprintf("EmailFormat normalized to %s", email))
	}
	if _, err := validation.EmailFormat("user@@example.com"); err != nil {
		showErr(err)
	}
	if _, err := validation.UsernameFormat("john__doe"); err != nil {
		showErr(err)
	}
	if _, err := validation.FutureDate(time.Now().Add(-time.Hour), 0, "due_date"); err != nil {
		showErr(err)
	}
}

func demoBatchValidation() {
	section("Batch validation")

	ctx := validation.NewContext()
	ctx.Validate(func() error {
		_, err := validation.NotEmptyString("", "title")
		return err
	})
	ctx.Validate(func() error {
		_, err := validation.HexColor("purple")
		return err
	})
	ctx.Validate(func() error {
		_, err := validation.EmailFormat("alice@example.com")
		return err
	})

	if err := ctx.Err(); err != nil {
		var coll *apperrors.Collection
		if errors.As(err, &coll) {
			note.Println(coll.Format(true))
		}
	}
}

func demoEntities() {
	section("Entity construction")

	tag, err := types.NewTag("urgent", "#ff0000")
	if err != nil {
		showErr(err)
		return
	}
	showOK(fmt.Sprintf("tag %s (%s)", tag.Name, tag.Color))

	id := 1
	due := time.Now().Add(72 * time.Hour)
	task, err := types.NewTask(types.TaskParams{
		ID:       &id,
		Title:    "Prepare quarterly report",
		Priority: types.PriorityHigh,
		Tags:     []types.Tag{tag},
		DueDate:  &due,
	})
	if err != nil {
		showErr(err)
		return
	}
	showOK(fmt.Sprintf("task %q status=%s priority=%s", task.Title, task.Status, task.Priority))

	// duplicate IDs are rejected across the whole list
	if _, err := types.NewTaskList("Work", "alice", []types.Task{*task, *task}); err != nil {
		showErr(err)
	}

	list, err := types.NewTaskList("Work", "alice", []types.Task{*task})
	if err != nil {
		showErr(err)
		return
	}
	showOK(fmt.Sprintf("list %q with %d task(s)", list.Name, len(list.Tasks)))

	if _, err := types.NewUser(types.UserParams{
		Username:  "alice",
		Email:     "alice@example.com",
		TaskLists: []types.TaskList{*list},
	}); err == nil {
		showOK("user alice with list Work")
	}
}

func demoTransitions() {
	section("State transitions")

	task, err := types.NewTask(types.TaskParams{Title: "Ship release"})
	if err != nil {
		showErr(err)
		return
	}

	done, err := task.MarkComplete()
	if err != nil {
		showErr(err)
		return
	}
	showOK(fmt.Sprintf("completed at %s", done.CompletedAt.Format(time.RFC3339)))

	if _, err := done.MarkComplete(); err != nil {
		showErr(err)
	}

	archived, err := done.Archive()
	if err != nil {
		showErr(err)
		return
	}
	showOK("archived after completion")

	if _, err := archived.MarkComplete(); err != nil {
		showErr(err)
	}
	if _, err := task.Archive(); err != nil {
		showErr(err)
	}
}

func demoStorage(cfg *config.Config, logger logging.Logger) {
	section("Persistence")

	storageCfg := cfg.Storage
	if storageCfg.Provider == "sqlite" && storageCfg.DSN == config.DefaultConfig().Storage.DSN {
		// keep the walkthrough self-contained unless a store was configured
		storageCfg.DSN = ":memory:"
	}
	store, err := storage.Open(storageCfg)
	if err != nil {
		showErr(err)
		return
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	list, err := types.NewTaskList("Errands", "alice", nil)
	if err != nil {
		showErr(err)
		return
	}

	if err := store.SaveTaskList(ctx, list); err != nil {
		logger.Error("save failed", logging.ErrorFields(err)...)
		showErr(err)
		return
	}
	loaded, err := store.GetTaskList(ctx, "Errands")
	if err != nil {
		showErr(err)
		return
	}
	logger.Info("task list persisted", "name", loaded.Name, "owner", loaded.Owner)
	showOK(fmt.Sprintf("round-tripped list %q owned by %s", loaded.Name, loaded.Owner))

	if _, err := store.GetTaskList(ctx, "Missing"); err != nil {
		showErr(err)
	}
}
