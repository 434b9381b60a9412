package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hooptrack/hooptrack/internal/models"
)

// ErrNoGroundTruth means no answer key exists for the video. It is a
// distinct condition, never conflated with a zero score.
var ErrNoGroundTruth = errors.New("no ground truth for video")

// Loader reads hand-authored ground truth files. Each video's answer key
// lives at <dir>/<video name without extension>.json.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load returns the ground truth for a video file name.
func (l *Loader) Load(videoName string) (*models.GroundTruth, error) {
	base := strings.TrimSuffix(filepath.Base(videoName), filepath.Ext(videoName))
	path := filepath.Join(l.dir, base+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoGroundTruth, videoName)
		}
		return nil, fmt.Errorf("read ground truth %s: %w", path, err)
	}

	var groundTruth models.GroundTruth
	if err := json.Unmarshal(data, &groundTruth); err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}
	if groundTruth.VideoName == "" {
		groundTruth.VideoName = videoName
	}
	return &groundTruth, nil
}
