package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is one uploaded file in the catalog. SessionID links the upload to
// the analysis session it produced, once the pipeline has run.
type Video struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	UploadTime   time.Time `json:"upload_time"`
	SessionID    string    `json:"session_id,omitempty"`
}

func NewVideo(originalName, filename, contentType string, size int64) *Video {
	return &Video{
		ID:           uuid.New().String(),
		OriginalName: originalName,
		Filename:     filename,
		ContentType:  contentType,
		Size:         size,
		UploadTime:   time.Now(),
	}
}
