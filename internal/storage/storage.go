package storage

import (
	"image"
	"io"
	"mime/multipart"
)

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Storage persists uploaded videos under generated names.
type Storage interface {
	SaveFile(file multipart.File, info FileInfo) (string, error)
	OpenFile(path string) (io.ReadSeekCloser, error)
	DeleteFile(path string) error
}

// FrameStorage persists representative detection frames and serves them back
// by the filename it returned.
type FrameStorage interface {
	SaveFrame(sessionID string, frameIndex int, img image.Image) (string, error)
	OpenFrame(filename string) (io.ReadSeekCloser, error)
}
