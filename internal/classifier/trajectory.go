package classifier

import (
	"image"
	"log"
	"math"

	"github.com/hooptrack/hooptrack/internal/video"
)

// BallDetector locates a ball-like object in a single frame, returning its
// bounding box when one is found.
type BallDetector interface {
	DetectBall(img image.Image) (box image.Rectangle, found bool)
}

type position struct {
	x, y float64
}

// TrajectoryClassifier infers an action purely from the path the ball traces
// across a clip: an arc means a shot, repeated vertical bounces mean
// dribbling, fast horizontal travel means a pass, a near-still ball means a
// catch.
type TrajectoryClassifier struct {
	detector BallDetector
	ready    bool
}

func NewTrajectoryClassifier(detector BallDetector) *TrajectoryClassifier {
	return &TrajectoryClassifier{detector: detector}
}

func (t *TrajectoryClassifier) Name() string { return "Ball Trajectory" }

func (t *TrajectoryClassifier) Initialize() error {
	if t.ready {
		return nil
	}
	t.ready = true
	return nil
}

func (t *TrajectoryClassifier) Ready() bool {
	return t.ready && t.detector != nil
}

// ActionKeywords overrides the defaults with this classifier's own label
// vocabulary: it emits "shooting basketball" rather than a bare "shooting".
func (t *TrajectoryClassifier) ActionKeywords() map[string][]string {
	return map[string][]string{
		"shooting":  {"shooting basketball", "throw", "shot"},
		"passing":   {"passing basketball", "pass"},
		"dribbling": {"dribbling basketball", "dribble"},
		"dunking":   {"dunk", "slam"},
		"blocking":  {"block", "defend"},
		"catching":  {"catching basketball", "catch"},
	}
}

func (t *TrajectoryClassifier) Classify(clip *video.Clip) (result Result) {
	if !t.Ready() {
		log.Printf("Trajectory classifier not ready")
		return Result{Action: "unknown", Confidence: 0}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Trajectory classification panic: %v", r)
			result = ErrorResult()
		}
	}()

	positions := t.detectPositions(clip)
	return analyzeTrajectory(positions)
}

// detectPositions runs the ball detector on every frame of the clip. Frames
// with no ball produce a nil entry so the detection rate stays observable.
func (t *TrajectoryClassifier) detectPositions(clip *video.Clip) []*position {
	positions := make([]*position, 0, len(clip.Frames))
	for _, frame := range clip.Frames {
		bounds := frame.Image.Bounds()
		if bounds.Dx() == 0 || bounds.Dy() == 0 {
			positions = append(positions, nil)
			continue
		}

		box, found := t.detector.DetectBall(frame.Image)
		if !found {
			positions = append(positions, nil)
			continue
		}

		centerX := float64(box.Min.X+box.Max.X) / 2 / float64(bounds.Dx())
		centerY := float64(box.Min.Y+box.Max.Y) / 2 / float64(bounds.Dy())
		positions = append(positions, &position{x: centerX, y: centerY})
	}
	return positions
}

// analyzeTrajectory classifies the ball path. Rules are evaluated in a fixed
// order and the first match wins. Image coordinates grow downward, so a
// negative dy is upward travel.
func analyzeTrajectory(positions []*position) Result {
	valid := make([]position, 0, len(positions))
	for _, p := range positions {
		if p != nil {
			valid = append(valid, *p)
		}
	}

	if len(valid) < 3 {
		return Result{
			Action:     "no_ball_detected",
			Confidence: 0,
			Metadata:   map[string]interface{}{"valid_detections": len(valid)},
		}
	}

	dx := valid[len(valid)-1].x - valid[0].x
	dy := valid[len(valid)-1].y - valid[0].y

	var sumVX, sumVY float64
	yVelocity := make([]float64, 0, len(valid)-1)
	for i := 0; i < len(valid)-1; i++ {
		vy := valid[i+1].y - valid[i].y
		yVelocity = append(yVelocity, vy)
		sumVX += math.Abs(valid[i+1].x - valid[i].x)
		sumVY += math.Abs(vy)
	}
	avgVX := sumVX / float64(len(valid)-1)
	avgVY := sumVY / float64(len(valid)-1)

	yDirectionChanges := 0
	for i := 0; i < len(yVelocity)-1; i++ {
		if sign(yVelocity[i+1]) != sign(yVelocity[i]) {
			yDirectionChanges++
		}
	}

	totalMovement := math.Sqrt(dx*dx + dy*dy)
	midY := valid[len(valid)/2].y

	var action string
	var confidence float64
	switch {
	case dy < -0.1 && len(valid) > 5 && midY < valid[0].y && midY < valid[len(valid)-1].y:
		// Upward travel that settles back down: the arc of a shot.
		action = "shooting basketball"
		confidence = math.Min(0.9, 0.5+math.Abs(dy)*2)
	case yDirectionChanges >= 2 && avgVY > 0.02:
		action = "dribbling basketball"
		confidence = math.Min(0.85, 0.4+float64(yDirectionChanges)*0.15)
	case avgVX > avgVY*1.5 && totalMovement > 0.15:
		action = "passing basketball"
		confidence = math.Min(0.8, 0.4+totalMovement*2)
	case totalMovement < 0.05 && len(valid) > 5:
		action = "catching basketball"
		confidence = 0.6
	default:
		action = "playing basketball"
		confidence = 0.5
	}

	return Result{
		Action:     action,
		Confidence: confidence,
		Metadata: map[string]interface{}{
			"valid_detections":    len(valid),
			"total_frames":        len(positions),
			"detection_rate":      float64(len(valid)) / float64(len(positions)),
			"total_movement":      totalMovement,
			"dx":                  dx,
			"dy":                  dy,
			"y_direction_changes": yDirectionChanges,
		},
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
