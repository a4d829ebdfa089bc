package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"cam-server/internal/config"
	"cam-server/internal/models"
	"cam-server/internal/pipeline"
	"cam-server/pkg/ffmpeg"
)

// VideoStore is the persistence surface the ingest path needs.
type VideoStore interface {
	CreateVideo(ctx context.Context, video *models.Video) (*models.Video, error)
}

// Enqueuer accepts work items for the processing pipeline.
type Enqueuer interface {
	Enqueue(item pipeline.WorkItem)
}

// VideoPublisher fans out video lifecycle events.
type VideoPublisher interface {
	VideoReceived(videoID int64, cameraID int64, bytes int64)
}

// IngestResult describes one completed (possibly truncated) upload.
type IngestResult struct {
	Video         *models.Video
	BytesReceived int64
	Truncated     bool
}

// VideoService receives raw video bytes, stores them on disk, registers the
// video and hands it to the processing queue.
type VideoService struct {
	config     *config.Config
	videoStore VideoStore
	queue      Enqueuer
	events     VideoPublisher
}

func NewVideoService(cfg *config.Config, videoStore VideoStore, queue Enqueuer, events VideoPublisher) *VideoService {
	return &VideoService{
		config:     cfg,
		videoStore: videoStore,
		queue:      queue,
		events:     events,
	}
}

// Ingest copies exactly length bytes from stream into a day-partitioned
// video file. A peer that closes the stream early ends the copy; whatever
// arrived is kept and the result is marked truncated. The video record is
// created with frame count 0 and status pending, then enqueued for
// processing.
func (s *VideoService) Ingest(ctx context.Context, cameraID int64, length int64, stream io.Reader) (*IngestResult, error) {
	now := time.Now()
	dir := filepath.Join(s.config.VideoDir, now.Format("20060102"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create video directory: %w", err)
	}

	filePath := filepath.Join(dir, fmt.Sprintf("%d_%s_%03d.mp4", cameraID, now.Format("150405"), now.Nanosecond()/1e6))
	log.Printf("Receiving video: %s (expected size: %d bytes)", filePath, length)

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create video file: %w", err)
	}

	total, copyErr := s.copyExact(file, stream, length)
	closeErr := file.Close()
	if copyErr != nil {
		return nil, copyErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close video file: %w", closeErr)
	}

	truncated := total < length
	if truncated {
		log.Printf("Connection closed prematurely. Received %d/%d bytes", total, length)
	}

	// Verify the bytes actually reached disk. A mismatch is logged, not
	// fatal: the value reported to the client is informational.
	if info, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("video file was not created: %w", err)
	} else if info.Size() != total {
		log.Printf("WARNING: file size mismatch for %s: copied %d, on disk %d", filePath, total, info.Size())
	}

	if duration, err := ffmpeg.ProbeDuration(ctx, filePath); err != nil {
		log.Printf("Could not probe video duration for %s: %v", filePath, err)
	} else {
		log.Printf("Video received: %d bytes, duration %.2fs, saved to %s", total, duration.Seconds(), filePath)
	}

	video := &models.Video{
		FilePath:   filePath,
		FrameCount: 0,
		Status:     models.VideoStatusPending,
		RecordedAt: now,
		CameraID:   cameraID,
	}
	video, err = s.videoStore.CreateVideo(ctx, video)
	if err != nil {
		return nil, err
	}
	log.Printf("Video saved to database with ID: %d", video.ID)

	s.queue.Enqueue(pipeline.WorkItem{VideoID: video.ID, FilePath: filePath})
	if s.events != nil {
		s.events.VideoReceived(video.ID, cameraID, total)
	}

	return &IngestResult{Video: video, BytesReceived: total, Truncated: truncated}, nil
}

// copyExact copies up to length bytes with a fixed-size buffer, stopping
// early on EOF. It never reads past the declared length.
func (s *VideoService) copyExact(dst io.Writer, src io.Reader, length int64) (int64, error) {
	bufSize := s.config.UploadBufSize
	if bufSize <= 0 {
		bufSize = 8192
	}
	buf := make([]byte, bufSize)
	var total int64

	for total < length {
		toRead := int64(len(buf))
		if remaining := length - total; remaining < toRead {
			toRead = remaining
		}

		n, err := src.Read(buf[:toRead])
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return total, fmt.Errorf("failed to write video file: %w", werr)
			}
			total += int64(n)

			// Progress log roughly every MiB
			if total%(1<<20) < int64(n) || total == length {
				log.Printf("Progress: %d/%d bytes (%.1f%%)", total, length, float64(total)*100/float64(length))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read video stream: %w", err)
		}
	}
	return total, nil
}
