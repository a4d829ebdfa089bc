package pipeline

import (
	"context"
	"log"

	"cam-server/internal/models"
)

// StatusStore records the durable outcome of a processing attempt.
type StatusStore interface {
	UpdateVideoStatus(ctx context.Context, id int64, status string) error
}

// WorkerPublisher fans out processing outcome events.
type WorkerPublisher interface {
	VideoProcessed(videoID int64, frameCount int)
	VideoFailed(videoID int64)
}

// Worker drains the queue and runs each item through the pipeline. A
// failed item is marked failed and skipped; the worker keeps going.
type Worker struct {
	queue    *Queue
	pipeline *Pipeline
	videos   StatusStore
	events   WorkerPublisher
}

func NewWorker(queue *Queue, p *Pipeline, videos StatusStore, events WorkerPublisher) *Worker {
	return &Worker{
		queue:    queue,
		pipeline: p,
		videos:   videos,
		events:   events,
	}
}

// Run consumes the queue until it is closed and drained.
func (w *Worker) Run(ctx context.Context) {
	log.Println("Video processing worker started")
	for {
		item, ok := w.queue.Dequeue()
		if !ok {
			log.Println("Video processing worker stopped")
			return
		}

		vc := &VideoContext{VideoID: item.VideoID, VideoPath: item.FilePath}
		if err := w.pipeline.Run(ctx, vc); err != nil {
			log.Printf("Pipeline failed for video %d: %v", item.VideoID, err)
			if serr := w.videos.UpdateVideoStatus(ctx, item.VideoID, models.VideoStatusFailed); serr != nil {
				log.Printf("Failed to mark video %d failed: %v", item.VideoID, serr)
			}
			if w.events != nil {
				w.events.VideoFailed(item.VideoID)
			}
			continue
		}

		log.Printf("Pipeline completed for video %d (%d frames)", item.VideoID, len(vc.Frames))
		if w.events != nil {
			w.events.VideoProcessed(item.VideoID, len(vc.Frames))
		}
	}
}
