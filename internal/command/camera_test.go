package command

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"cam-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCameraStore struct {
	cameras map[int64]*models.Camera
	nextID  int64
}

func newFakeCameraStore() *fakeCameraStore {
	return &fakeCameraStore{cameras: make(map[int64]*models.Camera), nextID: 1}
}

func (s *fakeCameraStore) CreateCamera(ctx context.Context, camera *models.Camera) (*models.Camera, error) {
	camera.ID = s.nextID
	s.nextID++
	clone := *camera
	s.cameras[camera.ID] = &clone
	return camera, nil
}

func (s *fakeCameraStore) GetCameraByID(ctx context.Context, id int64) (*models.Camera, error) {
	camera, ok := s.cameras[id]
	if !ok {
		return nil, nil
	}
	clone := *camera
	return &clone, nil
}

func (s *fakeCameraStore) ListCamerasByUserID(ctx context.Context, userID int64) ([]*models.Camera, error) {
	var result []*models.Camera
	for id := int64(1); id < s.nextID; id++ {
		if camera, ok := s.cameras[id]; ok && camera.UserID == userID {
			clone := *camera
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (s *fakeCameraStore) UpdateCameraName(ctx context.Context, id int64, name string) (*models.Camera, error) {
	camera, ok := s.cameras[id]
	if !ok {
		return nil, nil
	}
	camera.Name = name
	clone := *camera
	return &clone, nil
}

func (s *fakeCameraStore) DeleteCamera(ctx context.Context, id int64) error {
	delete(s.cameras, id)
	return nil
}

func TestCameraRegisterThenGetRoundTrip(t *testing.T) {
	store := newFakeCameraStore()
	h := NewCameraHandler(store)
	ctx := context.Background()
	deviceID := uuid.New().String()

	response := h.Handle(ctx, []string{"CAMERA", "REGISTER", "porch", deviceID, "0", "7"})
	require.True(t, strings.HasPrefix(response, "SUCCESS|"), response)

	var registered models.Camera
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(response, "SUCCESS|")), &registered))
	assert.Equal(t, "porch", registered.Name)
	assert.Equal(t, deviceID, registered.DeviceID)
	assert.True(t, registered.Status)

	response = h.Handle(ctx, []string{"CAMERA", "GET", "7"})
	require.True(t, strings.HasPrefix(response, "SUCCESS|"), response)

	var cameras []models.Camera
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(response, "SUCCESS|")), &cameras))
	require.Len(t, cameras, 1)
	assert.Equal(t, registered.ID, cameras[0].ID)
}

func TestCameraGetEmptyReturnsEmptyArray(t *testing.T) {
	h := NewCameraHandler(newFakeCameraStore())

	response := h.Handle(context.Background(), []string{"CAMERA", "GET", "99"})
	assert.Equal(t, "SUCCESS|[]", response)
}

func TestCameraUpdate(t *testing.T) {
	store := newFakeCameraStore()
	h := NewCameraHandler(store)
	ctx := context.Background()

	h.Handle(ctx, []string{"CAMERA", "REGISTER", "old", uuid.New().String(), "0", "1"})

	response := h.Handle(ctx, []string{"CAMERA", "UPDATE", "1", "new"})
	require.True(t, strings.HasPrefix(response, "SUCCESS|"), response)

	var camera models.Camera
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(response, "SUCCESS|")), &camera))
	assert.Equal(t, "new", camera.Name)

	assert.Equal(t, "ERROR|Camera not found", h.Handle(ctx, []string{"CAMERA", "UPDATE", "42", "x"}))
}

func TestCameraDelete(t *testing.T) {
	store := newFakeCameraStore()
	h := NewCameraHandler(store)
	ctx := context.Background()

	h.Handle(ctx, []string{"CAMERA", "REGISTER", "cam", uuid.New().String(), "0", "1"})

	assert.Equal(t, "SUCCESS|Camera deleted successfully", h.Handle(ctx, []string{"CAMERA", "DELETE", "1"}))
	assert.Equal(t, "SUCCESS|[]", h.Handle(ctx, []string{"CAMERA", "GET", "1"}))
}

func TestCameraMalformedArguments(t *testing.T) {
	h := NewCameraHandler(newFakeCameraStore())
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no action", []string{"CAMERA"}, "ERROR|Invalid format. Usage: CAMERA|REGISTER|name|deviceId|cameraIndex|userId or CAMERA|GET|userId"},
		{"unknown action", []string{"CAMERA", "FLY"}, "ERROR|Unknown action. Supported: REGISTER, GET, DELETE, UPDATE"},
		{"register too few", []string{"CAMERA", "REGISTER", "cam"}, "ERROR|Invalid format. Usage: CAMERA|REGISTER|name|deviceId|cameraIndex|userId"},
		{"register bad device", []string{"CAMERA", "REGISTER", "cam", "not-a-uuid", "0", "1"}, "ERROR|Invalid device ID"},
		{"register bad user", []string{"CAMERA", "REGISTER", "cam", uuid.New().String(), "0", "x"}, "ERROR|Invalid user ID"},
		{"get bad user", []string{"CAMERA", "GET", "abc"}, "ERROR|Invalid user ID"},
		{"delete bad id", []string{"CAMERA", "DELETE", "abc"}, "ERROR|Invalid camera ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Handle(ctx, tt.args))
		})
	}
}
