package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cam-server/internal/models"
)

type CameraRepository struct {
	db *sql.DB
}

func NewCameraRepository(db *sql.DB) *CameraRepository {
	return &CameraRepository{db: db}
}

// CreateCamera inserts a new camera and returns it with the generated id
func (r *CameraRepository) CreateCamera(ctx context.Context, camera *models.Camera) (*models.Camera, error) {
	query := `
		INSERT INTO cameras (name, device_id, camera_index, status, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		camera.Name,
		camera.DeviceID,
		camera.CameraIndex,
		camera.Status,
		camera.UserID,
	).Scan(&camera.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}
	return camera, nil
}

// GetCameraByID retrieves a camera by id. Returns nil when no camera exists.
func (r *CameraRepository) GetCameraByID(ctx context.Context, id int64) (*models.Camera, error) {
	query := `
		SELECT id, name, device_id, camera_index, status, user_id
		FROM cameras
		WHERE id = $1
	`
	var camera models.Camera
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&camera.ID,
		&camera.Name,
		&camera.DeviceID,
		&camera.CameraIndex,
		&camera.Status,
		&camera.UserID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get camera: %w", err)
	}
	return &camera, nil
}

// ListCamerasByUserID retrieves all cameras owned by a user
func (r *CameraRepository) ListCamerasByUserID(ctx context.Context, userID int64) ([]*models.Camera, error) {
	query := `
		SELECT id, name, device_id, camera_index, status, user_id
		FROM cameras
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cameras: %w", err)
	}
	defer rows.Close()

	var cameras []*models.Camera
	for rows.Next() {
		var camera models.Camera
		err := rows.Scan(
			&camera.ID,
			&camera.Name,
			&camera.DeviceID,
			&camera.CameraIndex,
			&camera.Status,
			&camera.UserID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cameras = append(cameras, &camera)
	}
	return cameras, rows.Err()
}

// UpdateCameraName renames a camera and returns the updated row.
// Returns nil when the camera does not exist.
func (r *CameraRepository) UpdateCameraName(ctx context.Context, id int64, name string) (*models.Camera, error) {
	query := `
		UPDATE cameras
		SET name = $1
		WHERE id = $2
		RETURNING id, name, device_id, camera_index, status, user_id
	`
	var camera models.Camera
	err := r.db.QueryRowContext(ctx, query, name, id).Scan(
		&camera.ID,
		&camera.Name,
		&camera.DeviceID,
		&camera.CameraIndex,
		&camera.Status,
		&camera.UserID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update camera: %w", err)
	}
	return &camera, nil
}

// DeleteCamera removes a camera by id
func (r *CameraRepository) DeleteCamera(ctx context.Context, id int64) error {
	query := `DELETE FROM cameras WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete camera: %w", err)
	}
	return nil
}
