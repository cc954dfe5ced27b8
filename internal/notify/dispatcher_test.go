package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalitsyn/team-tasks-bot/internal/model"
)

type stubRoles struct {
	roles map[int64]model.UserRole
}

func (s *stubRoles) RoleOf(ctx context.Context, userID int64) (model.UserRole, error) {
	return s.roles[userID], nil
}

func (s *stubRoles) SetRole(ctx context.Context, userID int64, role model.UserRole) error {
	s.roles[userID] = role
	return nil
}

func (s *stubRoles) FetchAdmins(ctx context.Context) ([]int64, error) {
	var admins []int64
	// Deterministic order keeps assertions simple.
	for _, id := range []int64{100, 200, 300, 400} {
		if s.roles[id] == model.UserRoleAdmin {
			admins = append(admins, id)
		}
	}
	return admins, nil
}

func TestDispatchCreated(t *testing.T) {
	d := NewDispatcher(&stubRoles{roles: map[int64]model.UserRole{}})

	task := model.Task{
		ID:          7,
		AssigneeID:  123456789,
		Description: "write the report",
		Deadline:    time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC),
	}

	notifications, err := d.Dispatch(context.Background(), task, EventTaskCreated)
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	n := notifications[0]
	assert.Equal(t, int64(123456789), n.RecipientID)
	assert.Equal(t, 7, n.TaskID)
	assert.Contains(t, n.Text, "write the report")
	assert.Contains(t, n.Text, "2024-01-05")
}

func TestDispatchCreatedWithoutDeadline(t *testing.T) {
	d := NewDispatcher(&stubRoles{roles: map[int64]model.UserRole{}})

	task := model.Task{ID: 1, AssigneeID: 55555, Description: "just do it"}
	notifications, err := d.Dispatch(context.Background(), task, EventTaskCreated)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Text, "no deadline")
}

func TestDispatchCompleted(t *testing.T) {
	roles := &stubRoles{roles: map[int64]model.UserRole{
		100: model.UserRoleAdmin,
		200: model.UserRoleAdmin,
		300: model.UserRoleMember,
	}}
	d := NewDispatcher(roles)

	task := model.Task{ID: 3, AssigneeID: 300, Description: "done deal", Status: model.TaskStatusDone}
	notifications, err := d.Dispatch(context.Background(), task, EventTaskCompleted)
	require.NoError(t, err)

	var recipients []int64
	for _, n := range notifications {
		recipients = append(recipients, n.RecipientID)
		assert.Contains(t, n.Text, "done deal")
		assert.Contains(t, n.Text, "300")
	}
	assert.Equal(t, []int64{100, 200}, recipients)
}

func TestDispatchCompletedExcludesAdminAssignee(t *testing.T) {
	roles := &stubRoles{roles: map[int64]model.UserRole{
		100: model.UserRoleAdmin,
		200: model.UserRoleAdmin,
	}}
	d := NewDispatcher(roles)

	// An admin completing their own task does not notify themselves.
	task := model.Task{ID: 4, AssigneeID: 200, Description: "self assigned"}
	notifications, err := d.Dispatch(context.Background(), task, EventTaskCompleted)
	require.NoError(t, err)

	require.Len(t, notifications, 1)
	assert.Equal(t, int64(100), notifications[0].RecipientID)
}

func TestDispatchUnknownKind(t *testing.T) {
	d := NewDispatcher(&stubRoles{roles: map[int64]model.UserRole{}})
	_, err := d.Dispatch(context.Background(), model.Task{}, EventKind("exploded"))
	assert.Error(t, err)
}

func TestFormatDeadline(t *testing.T) {
	assert.Equal(t, "no deadline", FormatDeadline(time.Time{}))
	assert.Equal(t, "2024-01-05", FormatDeadline(time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC)))
}
