package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/agalitsyn/team-tasks-bot/internal/model"
)

type RoleStorage struct {
	path string

	mu    sync.Mutex
	roles map[int64]model.UserRole
}

func NewRoleStorage(path string) (*RoleStorage, error) {
	s := &RoleStorage{path: path, roles: make(map[int64]model.UserRole)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	// Stored as {"<user id>": "<role>"}, user IDs are decimal string keys.
	var records map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("ERROR malformed role file %s, starting empty: %s", path, err)
		return s, nil
	}
	for key, role := range records {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			log.Printf("ERROR skipping bad user id %q in %s", key, path)
			continue
		}
		s.roles[userID] = model.UserRole(role)
	}
	return s, nil
}

func (s *RoleStorage) RoleOf(ctx context.Context, userID int64) (model.UserRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[userID]
	if !ok {
		return model.UserRoleUnknown, nil
	}
	return role, nil
}

func (s *RoleStorage) SetRole(ctx context.Context, userID int64, role model.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.roles[userID]
	s.roles[userID] = role
	if err := s.save(); err != nil {
		if existed {
			s.roles[userID] = prev
		} else {
			delete(s.roles, userID)
		}
		return fmt.Errorf("could not set role: %w", err)
	}
	return nil
}

func (s *RoleStorage) FetchAdmins(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var admins []int64
	for userID, role := range s.roles {
		if role == model.UserRoleAdmin {
			admins = append(admins, userID)
		}
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i] < admins[j] })
	return admins, nil
}

func (s *RoleStorage) save() error {
	records := make(map[string]string, len(s.roles))
	for userID, role := range s.roles {
		records[strconv.FormatInt(userID, 10)] = string(role)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}
