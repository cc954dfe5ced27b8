package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/agalitsyn/team-tasks-bot/internal/model"
)

type taskRecord struct {
	ID          int        `json:"id"`
	AssigneeID  int64      `json:"assignee_id"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
	CreatorID   int64      `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

type TaskStorage struct {
	path string

	mu     sync.Mutex
	tasks  []model.Task
	nextID int
}

// NewTaskStorage loads the task collection from path. A missing file starts
// an empty collection; a malformed one is logged and treated as empty, the
// same way an empty store would be.
func NewTaskStorage(path string) (*TaskStorage, error) {
	s := &TaskStorage{path: path, nextID: 1}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	var records []taskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("ERROR malformed task file %s, starting empty: %s", path, err)
		return s, nil
	}

	for _, r := range records {
		task := model.Task{
			ID:          r.ID,
			AssigneeID:  r.AssigneeID,
			Description: r.Description,
			Status:      model.TaskStatus(r.Status),
			CreatorID:   r.CreatorID,
			CreatedAt:   r.CreatedAt,
		}
		if r.Deadline != nil {
			task.Deadline = *r.Deadline
		}
		s.tasks = append(s.tasks, task)
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	return s, nil
}

func (s *TaskStorage) CreateTask(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextID
	if task.Status == "" {
		task.Status = model.TaskStatusOpen
	}
	task.CreatedAt = time.Now().UTC()

	s.tasks = append(s.tasks, *task)
	if err := s.save(); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		task.ID = 0
		return fmt.Errorf("could not create task: %w", err)
	}
	s.nextID++
	return nil
}

func (s *TaskStorage) GetTaskByID(ctx context.Context, id int) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, model.ErrTaskNotFound
	}
	task := s.tasks[i]
	return &task, nil
}

func (s *TaskStorage) FetchTasksByAssignee(ctx context.Context, assigneeID int64) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []model.Task
	for _, t := range s.tasks {
		if t.AssigneeID == assigneeID {
			tasks = append(tasks, t)
		}
	}
	sortByCreatedAt(tasks)
	return tasks, nil
}

func (s *TaskStorage) FetchAllTasks(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]model.Task, len(s.tasks))
	copy(tasks, s.tasks)
	sortByCreatedAt(tasks)
	return tasks, nil
}

func (s *TaskStorage) CompleteTask(ctx context.Context, id int) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, model.ErrTaskNotFound
	}
	if s.tasks[i].Status == model.TaskStatusDone {
		return nil, model.ErrTaskAlreadyDone
	}

	s.tasks[i].Status = model.TaskStatusDone
	if err := s.save(); err != nil {
		s.tasks[i].Status = model.TaskStatusOpen
		return nil, fmt.Errorf("could not complete task: %w", err)
	}
	task := s.tasks[i]
	return &task, nil
}

func (s *TaskStorage) RemoveTask(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		// No rewrite of the file on a miss.
		return model.ErrTaskNotFound
	}

	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	if err := s.save(); err != nil {
		s.tasks = append(s.tasks[:i], append([]model.Task{removed}, s.tasks[i:]...)...)
		return fmt.Errorf("could not remove task: %w", err)
	}
	return nil
}

func (s *TaskStorage) indexOf(id int) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// save rewrites the whole collection. Callers hold the mutex and roll back
// their in-memory change when it fails.
func (s *TaskStorage) save() error {
	records := make([]taskRecord, 0, len(s.tasks))
	for _, t := range s.tasks {
		r := taskRecord{
			ID:          t.ID,
			AssigneeID:  t.AssigneeID,
			Description: t.Description,
			Status:      string(t.Status),
			CreatorID:   t.CreatorID,
			CreatedAt:   t.CreatedAt,
		}
		if t.HasDeadline() {
			deadline := t.Deadline
			r.Deadline = &deadline
		}
		records = append(records, r)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}

func sortByCreatedAt(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}
