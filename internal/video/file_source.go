package video

import (
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"
)

// FileSource decodes a video file frame by frame through OpenCV. It is a
// single-pass reader; once Next returns io.EOF the source is spent.
type FileSource struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat

	fps         float64
	totalFrames int
	closed      bool
}

// OpenFile opens a video file and probes its frame rate and frame count.
func OpenFile(path string) (*FileSource, error) {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("could not open video: %s", path)
	}

	return &FileSource{
		capture:     capture,
		mat:         gocv.NewMat(),
		fps:         capture.Get(gocv.VideoCaptureFPS),
		totalFrames: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

func (s *FileSource) FPS() float64     { return s.fps }
func (s *FileSource) TotalFrames() int { return s.totalFrames }

// Duration estimates the video length in seconds from the probed metadata.
func (s *FileSource) Duration() float64 {
	if s.fps <= 0 {
		return 0
	}
	return float64(s.totalFrames) / s.fps
}

// Next decodes the next frame. Decoded mats are converted to image.Image so
// callers never hold OpenCV-owned memory.
func (s *FileSource) Next() (image.Image, error) {
	if s.closed {
		return nil, io.EOF
	}
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, io.EOF
	}
	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

func (s *FileSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.mat.Close()
	return s.capture.Close()
}
