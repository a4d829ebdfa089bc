package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"gocv.io/x/gocv"
)

// ExtractStage decodes the source video sequentially and writes every
// frame as a JPEG into a video-id-scoped directory. Decode order is the
// only ordering guarantee; frame paths are appended to the context in
// that order.
type ExtractStage struct {
	frameDir    string
	jpegQuality int
}

func NewExtractStage(frameDir string, jpegQuality int) *ExtractStage {
	return &ExtractStage{frameDir: frameDir, jpegQuality: jpegQuality}
}

func (s *ExtractStage) Name() string { return "extract" }

func (s *ExtractStage) Run(ctx context.Context, vc *VideoContext) error {
	outputDir := filepath.Join(s.frameDir, strconv.FormatInt(vc.VideoID, 10))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create frame directory: %w", err)
	}

	capture, err := gocv.VideoCaptureFile(vc.VideoPath)
	if err != nil {
		return fmt.Errorf("failed to open video %s: %w", vc.VideoPath, err)
	}
	defer capture.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	frameNum := 0
	for capture.Read(&mat) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if mat.Empty() {
			continue
		}

		framePath := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.jpg", frameNum))
		params := []int{gocv.IMWriteJpegQuality, s.jpegQuality}
		if ok := gocv.IMWriteWithParams(framePath, mat, params); !ok {
			return fmt.Errorf("failed to write frame %s", framePath)
		}
		vc.Frames = append(vc.Frames, framePath)
		frameNum++
	}

	log.Printf("Extracted %d frames for video %d into %s", frameNum, vc.VideoID, outputDir)
	return nil
}
