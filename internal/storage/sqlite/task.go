package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agalitsyn/team-tasks-bot/internal/model"
)

type TaskStorage struct {
	db *sql.DB
}

func NewTaskStorage(db *sql.DB) *TaskStorage {
	return &TaskStorage{db: db}
}

func (s *TaskStorage) CreateTask(ctx context.Context, task *model.Task) error {
	const query = `
		INSERT INTO tasks (assignee_id, description, status, deadline, creator_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if task.Status == "" {
		task.Status = model.TaskStatusOpen
	}
	task.CreatedAt = time.Now().UTC()

	var deadline sql.NullTime
	if task.HasDeadline() {
		deadline.Time = task.Deadline
		deadline.Valid = true
	}

	result, err := s.db.ExecContext(ctx, query,
		task.AssigneeID,
		task.Description,
		string(task.Status),
		deadline,
		task.CreatorID,
		task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get last insert id: %w", err)
	}

	task.ID = int(id)
	return nil
}

func (s *TaskStorage) GetTaskByID(ctx context.Context, id int) (*model.Task, error) {
	const query = `
		SELECT id, assignee_id, description, status, deadline, creator_id, created_at
		FROM tasks
		WHERE id = ?
	`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	return task, nil
}

func (s *TaskStorage) FetchTasksByAssignee(ctx context.Context, assigneeID int64) ([]model.Task, error) {
	const query = `
		SELECT id, assignee_id, description, status, deadline, creator_id, created_at
		FROM tasks
		WHERE assignee_id = ?
		ORDER BY created_at ASC, id ASC
	`
	return s.fetchTasks(ctx, query, assigneeID)
}

func (s *TaskStorage) FetchAllTasks(ctx context.Context) ([]model.Task, error) {
	const query = `
		SELECT id, assignee_id, description, status, deadline, creator_id, created_at
		FROM tasks
		ORDER BY created_at ASC, id ASC
	`
	return s.fetchTasks(ctx, query)
}

// CompleteTask flips an open task to done inside a transaction, so two racing
// completions (or a completion racing a delete) resolve to exactly one winner.
func (s *TaskStorage) CompleteTask(ctx context.Context, id int) (*model.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM tasks WHERE id = ?`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not get task status: %w", err)
	}
	if model.TaskStatus(status) == model.TaskStatusDone {
		return nil, model.ErrTaskAlreadyDone
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET status = ? WHERE id = ?`, string(model.TaskStatusDone), id,
	); err != nil {
		return nil, fmt.Errorf("could not update task status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit: %w", err)
	}

	return s.GetTaskByID(ctx, id)
}

func (s *TaskStorage) RemoveTask(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not remove task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func (s *TaskStorage) fetchTasks(ctx context.Context, query string, args ...interface{}) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not fetch tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var task model.Task
	var deadline sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.AssigneeID,
		&task.Description,
		&task.Status,
		&deadline,
		&task.CreatorID,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		task.Deadline = deadline.Time
	}
	return &task, nil
}
