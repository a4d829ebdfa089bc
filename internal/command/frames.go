package command

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"cam-server/internal/models"
	"cam-server/internal/service"

	"github.com/google/uuid"
)

// CameraGetter resolves the camera an upload claims to come from.
type CameraGetter interface {
	GetCameraByID(ctx context.Context, id int64) (*models.Camera, error)
}

// Ingestor receives the raw video bytes and registers the video.
type Ingestor interface {
	Ingest(ctx context.Context, cameraID int64, length int64, stream io.Reader) (*service.IngestResult, error)
}

// FramesHandler answers FRAMES|UPLOAD|deviceId|cameraId|length followed by
// exactly length raw bytes on the same stream. Ownership is validated
// before a single payload byte is consumed; the session closes after the
// response either way.
type FramesHandler struct {
	cameras CameraGetter
	videos  Ingestor
}

func NewFramesHandler(cameras CameraGetter, videos Ingestor) *FramesHandler {
	return &FramesHandler{cameras: cameras, videos: videos}
}

func (h *FramesHandler) Command() string { return "FRAMES" }

// Handle covers the line-mode path, which cannot carry a payload.
func (h *FramesHandler) Handle(ctx context.Context, args []string) string {
	return h.HandleStream(ctx, args, nil)
}

func (h *FramesHandler) HandleStream(ctx context.Context, args []string, stream io.Reader) string {
	if stream == nil {
		return "ERROR|required stream"
	}
	if len(args) < 5 {
		return "ERROR|Usage: FRAMES|UPLOAD|deviceId|cameraId|length"
	}

	deviceID, err := uuid.Parse(args[2])
	if err != nil {
		return "ERROR|Invalid device ID"
	}
	cameraID, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		return "ERROR|Invalid camera ID"
	}
	length, err := strconv.ParseInt(args[4], 10, 64)
	if err != nil || length < 0 {
		return "ERROR|Invalid length"
	}

	camera, err := h.cameras.GetCameraByID(ctx, cameraID)
	if err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	if camera == nil {
		return "ERROR|Camera not found"
	}
	if camera.DeviceID != deviceID.String() {
		return "ERROR|Camera does not belong to the specified device"
	}

	result, err := h.videos.Ingest(ctx, cameraID, length, stream)
	if err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	return fmt.Sprintf("OK|Received %d bytes", result.BytesReceived)
}
