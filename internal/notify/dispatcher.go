// Package notify computes who must hear about a task state transition and
// what to tell them. It produces (recipient, payload) pairs only, delivering
// them is the transport's job: the caller sends each payload at least once
// and a failed send never rolls the task state back.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/agalitsyn/team-tasks-bot/internal/model"
)

type EventKind string

const (
	EventTaskCreated   EventKind = "created"
	EventTaskCompleted EventKind = "completed"
)

type Notification struct {
	RecipientID int64
	Text        string
	// Set on assignment notifications, lets the transport attach a
	// "mark as done" button for this task.
	TaskID int
}

type Dispatcher struct {
	roles model.RoleRepository
}

func NewDispatcher(roles model.RoleRepository) *Dispatcher {
	return &Dispatcher{roles: roles}
}

// Dispatch renders the notifications for a finished transition.
// A created task notifies its assignee. A completed task notifies every
// admin except the assignee, so an admin closing their own task hears
// nothing about it.
func (d *Dispatcher) Dispatch(ctx context.Context, task model.Task, kind EventKind) ([]Notification, error) {
	switch kind {
	case EventTaskCreated:
		text := fmt.Sprintf("📌 New task assigned:\n%s\n🕒 Deadline: %s", task.Description, FormatDeadline(task.Deadline))
		return []Notification{{RecipientID: task.AssigneeID, Text: text, TaskID: task.ID}}, nil

	case EventTaskCompleted:
		admins, err := d.roles.FetchAdmins(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not fetch admins: %w", err)
		}
		text := fmt.Sprintf("📬 User %d completed a task:\n%s", task.AssigneeID, task.Description)
		var notifications []Notification
		for _, adminID := range admins {
			if adminID == task.AssigneeID {
				continue
			}
			notifications = append(notifications, Notification{RecipientID: adminID, Text: text})
		}
		return notifications, nil

	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}

// FormatDeadline renders a deadline for humans, "no deadline" for the zero
// value.
func FormatDeadline(t time.Time) string {
	if t.IsZero() {
		return "no deadline"
	}
	return t.Format("2006-01-02")
}
