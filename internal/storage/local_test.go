package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

type mockFile struct {
	*bytes.Reader
}

func (m *mockFile) Close() error {
	return nil
}

func TestLocalStorage(t *testing.T) {
	tmpDir := t.TempDir()
	storage, err := NewLocalStorage(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Run("SaveFile", func(t *testing.T) {
		content := []byte("test video content")
		reader := &mockFile{bytes.NewReader(content)}

		info := FileInfo{
			Filename:    "test.mp4",
			ContentType: "video/mp4",
			Size:        int64(len(content)),
		}

		filename, err := storage.SaveFile(reader, info)
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}

		if filepath.Ext(filename) != ".mp4" {
			t.Errorf("Expected .mp4 extension, got %s", filepath.Ext(filename))
		}

		savedPath := filepath.Join(tmpDir, filename)
		if _, err := os.Stat(savedPath); os.IsNotExist(err) {
			t.Errorf("File was not saved to expected location: %s", savedPath)
		}
	})

	t.Run("SaveFileDefaultsExtension", func(t *testing.T) {
		reader := &mockFile{bytes.NewReader([]byte("clip"))}

		filename, err := storage.SaveFile(reader, FileInfo{Filename: "upload"})
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		if filepath.Ext(filename) != ".mp4" {
			t.Errorf("Expected default .mp4 extension, got %s", filepath.Ext(filename))
		}
	})

	t.Run("OpenFile", func(t *testing.T) {
		content := []byte("test video content")
		testFile := "test-file.mp4"
		fullPath := filepath.Join(tmpDir, testFile)

		if err := os.WriteFile(fullPath, content, 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		file, err := storage.OpenFile(testFile)
		if err != nil {
			t.Fatalf("Failed to open file: %v", err)
		}
		defer file.Close()

		buf := make([]byte, len(content))
		n, err := file.Read(buf)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}

		if n != len(content) || !bytes.Equal(buf, content) {
			t.Errorf("File content mismatch")
		}
	})

	t.Run("DeleteFile", func(t *testing.T) {
		testFile := "delete-test.mp4"
		fullPath := filepath.Join(tmpDir, testFile)

		if err := os.WriteFile(fullPath, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		if err := storage.DeleteFile(testFile); err != nil {
			t.Fatalf("Failed to delete file: %v", err)
		}

		if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
			t.Errorf("File was not deleted")
		}
	})

	t.Run("FullPath", func(t *testing.T) {
		got, err := storage.FullPath("clip.mp4")
		if err != nil {
			t.Fatalf("FullPath: %v", err)
		}
		if got != filepath.Join(tmpDir, "clip.mp4") {
			t.Errorf("Unexpected path: %s", got)
		}
	})

	t.Run("PathTraversalPrevention", func(t *testing.T) {
		_, err := storage.OpenFile("../../../etc/passwd")
		if err == nil {
			t.Errorf("Path traversal was not prevented")
		}

		err = storage.DeleteFile("../../../etc/passwd")
		if err == nil {
			t.Errorf("Path traversal was not prevented in delete")
		}

		_, err = storage.FullPath("/etc/passwd")
		if err == nil {
			t.Errorf("Absolute path was not rejected")
		}
	})
}

func TestFrameStore(t *testing.T) {
	tmpDir := t.TempDir()
	frames, err := NewFrameStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create frame store: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	filename, err := frames.SaveFrame("20260825_120000_abcd1234", 42, img)
	if err != nil {
		t.Fatalf("SaveFrame: %v", err)
	}
	if filename != "20260825_120000_abcd1234_frame_0042.jpg" {
		t.Errorf("Unexpected frame filename: %s", filename)
	}

	f, err := frames.OpenFrame(filename)
	if err != nil {
		t.Fatalf("OpenFrame: %v", err)
	}
	defer f.Close()

	decoded, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("Saved frame is not a valid JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 8 {
		t.Errorf("Unexpected frame dimensions: %v", decoded.Bounds())
	}

	if _, err := frames.OpenFrame("../escape.jpg"); err == nil {
		t.Errorf("Path traversal was not prevented for frames")
	}
}
