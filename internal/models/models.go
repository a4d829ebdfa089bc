package models

import "time"

// User is an account that owns cameras. Registration leaves a user
// unapproved; an operator approves it through USER|PUT.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Approved     bool      `json:"approved"`
	LastLogin    time.Time `json:"last_login"`
}

// Camera is a registered capture source tied to one device and one user.
type Camera struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DeviceID    string `json:"device_id"`
	CameraIndex int    `json:"camera_index"`
	Status      bool   `json:"status"`
	UserID      int64  `json:"user_id"`
}

// Video is one uploaded recording awaiting or finished processing.
type Video struct {
	ID         int64     `json:"id"`
	FilePath   string    `json:"file_path"`
	FrameCount int       `json:"frame_count"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
	CameraID   int64     `json:"camera_id"`
}

// ProcessedFrame is one filter output for one extracted frame.
type ProcessedFrame struct {
	ID          int64     `json:"id"`
	FilePath    string    `json:"file_path"`
	FilterType  string    `json:"filter_type"`
	ProcessedAt time.Time `json:"processed_at"`
	VideoID     int64     `json:"video_id"`
}

// Video statuses
const (
	VideoStatusPending   = "pending"
	VideoStatusProcessed = "processed"
	VideoStatusFailed    = "failed"
)
