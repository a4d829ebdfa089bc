package pipeline

import (
	"context"
	"fmt"
	"log"

	"cam-server/internal/models"
)

// VideoUpdater is the persistence surface the persist stage needs.
type VideoUpdater interface {
	GetVideoByID(ctx context.Context, id int64) (*models.Video, error)
	UpdateVideoFrameCount(ctx context.Context, id int64, frameCount int, status string) error
}

// PersistStage records the extracted frame count on the video and marks
// it processed. It runs last; reaching it means every prior stage
// succeeded.
type PersistStage struct {
	videos VideoUpdater
}

func NewPersistStage(videos VideoUpdater) *PersistStage {
	return &PersistStage{videos: videos}
}

func (s *PersistStage) Name() string { return "persist" }

func (s *PersistStage) Run(ctx context.Context, vc *VideoContext) error {
	video, err := s.videos.GetVideoByID(ctx, vc.VideoID)
	if err != nil {
		return err
	}
	if video == nil {
		return fmt.Errorf("video %d not found", vc.VideoID)
	}

	if err := s.videos.UpdateVideoFrameCount(ctx, vc.VideoID, len(vc.Frames), models.VideoStatusProcessed); err != nil {
		return err
	}
	log.Printf("Stored result for video %d: %d frames", vc.VideoID, len(vc.Frames))
	return nil
}
