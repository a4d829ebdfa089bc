package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cam-server/internal/models"
)

type FrameRepository struct {
	db *sql.DB
}

func NewFrameRepository(db *sql.DB) *FrameRepository {
	return &FrameRepository{db: db}
}

// BulkInsertProcessedFrames inserts a batch of processed frame records in
// one transaction. The batch is all-or-nothing.
func (r *FrameRepository) BulkInsertProcessedFrames(ctx context.Context, frames []*models.ProcessedFrame) error {
	if len(frames) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO processed_frames (file_path, filter_type, processed_at, video_id)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, frame := range frames {
		if _, err := stmt.ExecContext(ctx, frame.FilePath, frame.FilterType, frame.ProcessedAt, frame.VideoID); err != nil {
			return fmt.Errorf("failed to insert processed frame: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit processed frames: %w", err)
	}
	return nil
}
