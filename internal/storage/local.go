package storage

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage keeps uploaded videos on the local filesystem under random
// uuid filenames, so uploads can never clobber each other.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) SaveFile(file multipart.File, info FileInfo) (string, error) {
	ext := filepath.Ext(info.Filename)
	if ext == "" {
		ext = ".mp4"
	}

	filename := uuid.New().String() + ext
	fullPath := filepath.Join(ls.basePath, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filename, nil
}

func (ls *LocalStorage) OpenFile(path string) (io.ReadSeekCloser, error) {
	fullPath, err := securePath(ls.basePath, path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (ls *LocalStorage) DeleteFile(path string) error {
	fullPath, err := securePath(ls.basePath, path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FullPath resolves a stored filename to its on-disk location, for callers
// that hand the file to external tooling.
func (ls *LocalStorage) FullPath(path string) (string, error) {
	return securePath(ls.basePath, path)
}

// FrameStore persists representative detection frames as JPEGs named after
// the session and source frame index, the stable scheme evaluation reports
// and API clients rely on.
type FrameStore struct {
	basePath string
}

func NewFrameStore(basePath string) (*FrameStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frames directory: %w", err)
	}
	return &FrameStore{basePath: basePath}, nil
}

func (fs *FrameStore) SaveFrame(sessionID string, frameIndex int, img image.Image) (string, error) {
	filename := fmt.Sprintf("%s_frame_%04d.jpg", sessionID, frameIndex)
	fullPath := filepath.Join(fs.basePath, filename)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create frame file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}

	return filename, nil
}

func (fs *FrameStore) OpenFrame(filename string) (io.ReadSeekCloser, error) {
	fullPath, err := securePath(fs.basePath, filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	return f, nil
}

func securePath(base, path string) (string, error) {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") || filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("invalid path")
	}
	return filepath.Join(base, cleanPath), nil
}
