package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cam-server/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user and returns it with the generated id
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, approved, last_login)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Approved,
		user.LastLogin,
	).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email. Returns nil when no user exists.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, approved, last_login
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Approved,
		&user.LastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username. Returns nil when no user exists.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, approved, last_login
		FROM users
		WHERE username = $1
	`
	var user models.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Approved,
		&user.LastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// GetUsersByApproval lists users filtered by approval state
func (r *UserRepository) GetUsersByApproval(ctx context.Context, approved bool) ([]*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, approved, last_login
		FROM users
		WHERE approved = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, approved)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Approved,
			&user.LastLogin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// ApproveUser marks a user approved and returns the updated row.
// Returns nil when the user does not exist.
func (r *UserRepository) ApproveUser(ctx context.Context, id int64) (*models.User, error) {
	query := `
		UPDATE users
		SET approved = TRUE
		WHERE id = $1
		RETURNING id, username, email, password_hash, approved, last_login
	`
	var user models.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Approved,
		&user.LastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}
	return &user, nil
}

// TouchLastLogin records a successful login time
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
