package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"changehub/backend/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string, role model.UserRole) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	UpdateUsername(ctx context.Context, id, username string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	CountAdmins(ctx context.Context) (int, error)
	PromoteToAdmin(ctx context.Context, id string) error
}

type SQLUserRepository struct {
	db *sql.DB
}

func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

const insertUserSQL = `
INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const findUserSQL = `
SELECT id, username, password_hash, role, created_at, updated_at
FROM users
`

func (r *SQLUserRepository) Create(ctx context.Context, username, passwordHash string, role model.UserRole) (model.User, error) {
	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := r.db.ExecContext(ctx, insertUserSQL, user.ID, user.Username, user.PasswordHash, string(user.Role), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isConstraintErr(err) {
			return model.User{}, ErrDuplicateUsername
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *SQLUserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return r.findOne(ctx, findUserSQL+"WHERE username = ? LIMIT 1", username)
}

func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, findUserSQL+"WHERE id = ? LIMIT 1", id)
}

func (r *SQLUserRepository) findOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	user := model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *SQLUserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET username = ?, updated_at = ? WHERE id = ?`, username, time.Now().UTC(), id)
	if err != nil && isConstraintErr(err) {
		return ErrDuplicateUsername
	}
	return err
}

func (r *SQLUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, time.Now().UTC(), id)
	return err
}

func (r *SQLUserRepository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE role = 'admin'`).Scan(&n)
	return n, err
}

func (r *SQLUserRepository) PromoteToAdmin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET role = 'admin', updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	return err
}
