package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agalitsyn/team-tasks-bot/internal/model"
)

type RoleStorage struct {
	db *sql.DB
}

func NewRoleStorage(db *sql.DB) *RoleStorage {
	return &RoleStorage{db: db}
}

func (s *RoleStorage) RoleOf(ctx context.Context, userID int64) (model.UserRole, error) {
	const query = `SELECT role FROM user_roles WHERE user_id = ?`

	var roleStr string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&roleStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserRoleUnknown, nil
		}
		return model.UserRoleUnknown, err
	}
	return model.UserRole(roleStr), nil
}

func (s *RoleStorage) SetRole(ctx context.Context, userID int64, role model.UserRole) error {
	const query = `
		INSERT INTO user_roles (user_id, role) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET role = excluded.role
	`
	_, err := s.db.ExecContext(ctx, query, userID, string(role))
	return err
}

func (s *RoleStorage) FetchAdmins(ctx context.Context) ([]int64, error) {
	const query = `SELECT user_id FROM user_roles WHERE role = ? ORDER BY user_id ASC`

	rows, err := s.db.QueryContext(ctx, query, string(model.UserRoleAdmin))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		admins = append(admins, userID)
	}
	return admins, rows.Err()
}
