package pipeline

import (
	"context"
	"fmt"
	"log"
)

// VideoContext is the mutable unit of work threaded through the stages.
// A fresh context is built per dequeued item and discarded afterwards.
type VideoContext struct {
	VideoID   int64
	VideoPath string
	Frames    []string // extracted frame paths, in decode order
}

// Stage is one step of the video pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, vc *VideoContext) error
}

// Pipeline runs an ordered list of stages sequentially. A stage error
// abandons the item; there is no partial-success state.
type Pipeline struct {
	stages []Stage
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Run(ctx context.Context, vc *VideoContext) error {
	log.Printf("Starting video pipeline for video %d (%d stages)", vc.VideoID, len(p.stages))
	for _, stage := range p.stages {
		log.Printf("Executing stage %q for video %d", stage.Name(), vc.VideoID)
		if err := stage.Run(ctx, vc); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}
	return nil
}
