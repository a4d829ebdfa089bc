package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cam-server/internal/models"
)

type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// CreateVideo inserts a new video record and returns it with the generated id
func (r *VideoRepository) CreateVideo(ctx context.Context, video *models.Video) (*models.Video, error) {
	query := `
		INSERT INTO videos (file_path, frame_count, status, recorded_at, camera_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		video.FilePath,
		video.FrameCount,
		video.Status,
		video.RecordedAt,
		video.CameraID,
	).Scan(&video.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	return video, nil
}

// GetVideoByID retrieves a video by id. Returns nil when no video exists.
func (r *VideoRepository) GetVideoByID(ctx context.Context, id int64) (*models.Video, error) {
	query := `
		SELECT id, file_path, frame_count, status, recorded_at, camera_id
		FROM videos
		WHERE id = $1
	`
	var video models.Video
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&video.ID,
		&video.FilePath,
		&video.FrameCount,
		&video.Status,
		&video.RecordedAt,
		&video.CameraID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

// UpdateVideoFrameCount sets the extracted frame count and status of a video
func (r *VideoRepository) UpdateVideoFrameCount(ctx context.Context, id int64, frameCount int, status string) error {
	query := `
		UPDATE videos
		SET frame_count = $1, status = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, frameCount, status, id)
	if err != nil {
		return fmt.Errorf("failed to update video frame count: %w", err)
	}
	return nil
}

// UpdateVideoStatus sets the processing status of a video
func (r *VideoRepository) UpdateVideoStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE videos SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update video status: %w", err)
	}
	return nil
}
