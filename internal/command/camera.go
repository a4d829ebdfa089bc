package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cam-server/internal/models"

	"github.com/google/uuid"
)

// CameraStore is the persistence surface for camera commands.
type CameraStore interface {
	CreateCamera(ctx context.Context, camera *models.Camera) (*models.Camera, error)
	GetCameraByID(ctx context.Context, id int64) (*models.Camera, error)
	ListCamerasByUserID(ctx context.Context, userID int64) ([]*models.Camera, error)
	UpdateCameraName(ctx context.Context, id int64, name string) (*models.Camera, error)
	DeleteCamera(ctx context.Context, id int64) error
}

// CameraHandler answers the CAMERA command family:
//
//	CAMERA|REGISTER|name|deviceId|cameraIndex|userId
//	CAMERA|GET|userId
//	CAMERA|UPDATE|cameraId|name
//	CAMERA|DELETE|cameraId
type CameraHandler struct {
	cameras CameraStore
}

func NewCameraHandler(cameras CameraStore) *CameraHandler {
	return &CameraHandler{cameras: cameras}
}

func (h *CameraHandler) Command() string { return "CAMERA" }

func (h *CameraHandler) Handle(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "ERROR|Invalid format. Usage: CAMERA|REGISTER|name|deviceId|cameraIndex|userId or CAMERA|GET|userId"
	}

	switch strings.ToUpper(args[1]) {
	case "REGISTER":
		return h.registerCamera(ctx, args)
	case "GET":
		return h.getCameras(ctx, args)
	case "UPDATE":
		return h.updateCamera(ctx, args)
	case "DELETE":
		return h.deleteCamera(ctx, args)
	default:
		return "ERROR|Unknown action. Supported: REGISTER, GET, DELETE, UPDATE"
	}
}

func (h *CameraHandler) registerCamera(ctx context.Context, args []string) string {
	if len(args) < 6 {
		return "ERROR|Invalid format. Usage: CAMERA|REGISTER|name|deviceId|cameraIndex|userId"
	}

	deviceID, err := uuid.Parse(args[3])
	if err != nil {
		return "ERROR|Invalid device ID"
	}
	cameraIndex, err := strconv.Atoi(args[4])
	if err != nil {
		return "ERROR|Invalid camera index"
	}
	userID, err := strconv.ParseInt(args[5], 10, 64)
	if err != nil {
		return "ERROR|Invalid user ID"
	}

	camera := &models.Camera{
		Name:        args[2],
		DeviceID:    deviceID.String(),
		CameraIndex: cameraIndex,
		Status:      true,
		UserID:      userID,
	}
	camera, err = h.cameras.CreateCamera(ctx, camera)
	if err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	return successJSON(camera)
}

func (h *CameraHandler) getCameras(ctx context.Context, args []string) string {
	if len(args) < 3 {
		return "ERROR|Invalid format. Usage: CAMERA|GET|userId"
	}

	userID, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return "ERROR|Invalid user ID"
	}

	cameras, err := h.cameras.ListCamerasByUserID(ctx, userID)
	if err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	if cameras == nil {
		cameras = []*models.Camera{}
	}
	return successJSON(cameras)
}

func (h *CameraHandler) updateCamera(ctx context.Context, args []string) string {
	if len(args) < 4 {
		return "ERROR|Invalid format. Usage: CAMERA|UPDATE|cameraId|name"
	}

	cameraID, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return "ERROR|Invalid camera ID"
	}

	camera, err := h.cameras.UpdateCameraName(ctx, cameraID, args[3])
	if err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	if camera == nil {
		return "ERROR|Camera not found"
	}
	return successJSON(camera)
}

func (h *CameraHandler) deleteCamera(ctx context.Context, args []string) string {
	if len(args) < 3 {
		return "ERROR|Invalid format. Usage: CAMERA|DELETE|cameraId"
	}

	cameraID, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return "ERROR|Invalid camera ID"
	}

	if err := h.cameras.DeleteCamera(ctx, cameraID); err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	return "SUCCESS|Camera deleted successfully"
}

func successJSON(payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("ERROR|%v", err)
	}
	return "SUCCESS|" + string(data)
}
