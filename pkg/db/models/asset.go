package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset is an uploaded image plus the metadata extracted from it. Coordinates
// and capture time live here as extracted facts; manual corrections live in
// AssetOverride and win during effective resolution.
type Asset struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UploaderID *uuid.UUID `gorm:"column:uploader_id;type:uuid"`
	FileName   string     `gorm:"column:file_name;not null"`
	MimeType   string     `gorm:"column:mime_type;not null"`
	SizeBytes  int64      `gorm:"column:size_bytes;not null"`

	CapturedAt  *time.Time `gorm:"column:captured_at"`
	Latitude    *float64   `gorm:"column:latitude"`
	Longitude   *float64   `gorm:"column:longitude"`
	Altitude    *float64   `gorm:"column:altitude"`
	CameraMake  *string    `gorm:"column:camera_make"`
	CameraModel *string    `gorm:"column:camera_model"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// DeviceKey returns the lowercase make+model identity used to group assets by
// camera. It is empty unless both parts are known, so half-identified devices
// never match each other.
func (a Asset) DeviceKey() string {
	if a.CameraMake == nil || a.CameraModel == nil {
		return ""
	}
	cameraMake := strings.TrimSpace(strings.ToLower(*a.CameraMake))
	cameraModel := strings.TrimSpace(strings.ToLower(*a.CameraModel))
	if cameraMake == "" || cameraModel == "" {
		return ""
	}
	return cameraMake + " " + cameraModel
}
