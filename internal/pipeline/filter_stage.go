package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cam-server/internal/filter"
	"cam-server/internal/models"

	"gocv.io/x/gocv"
)

// FrameStore persists processed frame records in bulk.
type FrameStore interface {
	BulkInsertProcessedFrames(ctx context.Context, frames []*models.ProcessedFrame) error
}

// FilterStage loads every extracted frame and runs it through the fixed
// filter set, writing one derived image per (frame, filter) pair. The
// resulting records are persisted in a single bulk insert after all
// frames are done.
type FilterStage struct {
	filters     []filter.Filter
	frames      FrameStore
	jpegQuality int
}

func NewFilterStage(filters []filter.Filter, frames FrameStore, jpegQuality int) *FilterStage {
	return &FilterStage{filters: filters, frames: frames, jpegQuality: jpegQuality}
}

func (s *FilterStage) Name() string { return "filter" }

func (s *FilterStage) Run(ctx context.Context, vc *VideoContext) error {
	log.Printf("Applying %d filters to %d frames for video %d", len(s.filters), len(vc.Frames), vc.VideoID)

	var records []*models.ProcessedFrame
	for _, framePath := range vc.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}

		processed, err := s.applyAll(framePath, vc.VideoID)
		if err != nil {
			return err
		}
		records = append(records, processed...)
	}

	if err := s.frames.BulkInsertProcessedFrames(ctx, records); err != nil {
		return fmt.Errorf("failed to persist processed frames: %w", err)
	}
	return nil
}

func (s *FilterStage) applyAll(framePath string, videoID int64) ([]*models.ProcessedFrame, error) {
	img := gocv.IMRead(framePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("failed to read frame %s", framePath)
	}
	defer img.Close()

	outputDir := filepath.Join(filepath.Dir(framePath), "filters")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create filter directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(framePath), filepath.Ext(framePath))

	records := make([]*models.ProcessedFrame, 0, len(s.filters))
	for _, f := range s.filters {
		result := f.Apply(img)
		outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.jpg", base, f.Name()))
		ok := gocv.IMWriteWithParams(outputPath, result, []int{gocv.IMWriteJpegQuality, s.jpegQuality})
		result.Close()
		if !ok {
			return nil, fmt.Errorf("failed to write filtered frame %s", outputPath)
		}

		records = append(records, &models.ProcessedFrame{
			FilePath:    outputPath,
			FilterType:  f.Name(),
			ProcessedAt: time.Now().UTC(),
			VideoID:     videoID,
		})
	}
	return records, nil
}
