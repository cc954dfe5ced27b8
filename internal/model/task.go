package model

import (
	"context"
	"errors"
	"time"
)

type Task struct {
	ID          int
	AssigneeID  int64
	Description string
	// Zero deadline means the task has no deadline.
	Deadline  time.Time
	Status    TaskStatus
	CreatorID int64
	CreatedAt time.Time
}

func NewTask(assigneeID int64, description string, deadline time.Time, creatorID int64) *Task {
	return &Task{
		AssigneeID:  assigneeID,
		Description: description,
		Deadline:    deadline,
		Status:      TaskStatusOpen,
		CreatorID:   creatorID,
	}
}

func (t Task) HasDeadline() bool {
	return !t.Deadline.IsZero()
}

type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskAlreadyDone is returned on an attempt to complete a task twice.
	// A done task never goes back to open.
	ErrTaskAlreadyDone = errors.New("task already done")
)

type TaskRepository interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTaskByID(ctx context.Context, id int) (*Task, error)
	FetchTasksByAssignee(ctx context.Context, assigneeID int64) ([]Task, error)
	FetchAllTasks(ctx context.Context) ([]Task, error)
	CompleteTask(ctx context.Context, id int) (*Task, error)
	RemoveTask(ctx context.Context, id int) error
}
