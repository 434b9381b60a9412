package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gocv.io/x/gocv"

	"github.com/hooptrack/hooptrack/internal/video"
)

const captionPrompt = "These images are consecutive frames from a short basketball video clip. " +
	"Decide which single action they show. Answer with exactly one line in the form " +
	"\"label|confidence\" where label is one of: shooting, passing, dribbling, dunking, " +
	"blocking, catching, playing basketball; and confidence is a number between 0 and 1."

// CaptionConfig tunes the model-backed classifier. FrameSize caps the longer
// side of each sampled frame before it is sent; larger frames are downscaled
// to keep request payloads small.
type CaptionConfig struct {
	APIKey        string
	Model         string
	FramesPerClip int
	FrameSize     int
	Timeout       time.Duration
}

// CaptionClassifier delegates to an OpenAI vision chat model: it samples a
// few frames from the clip, asks the model to name the action, and parses
// the answer. Every failure mode degrades to the error sentinel so one bad
// clip never aborts a run.
type CaptionClassifier struct {
	cfg    CaptionConfig
	client *openai.Client
}

func NewCaptionClassifier(cfg CaptionConfig) *CaptionClassifier {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.FramesPerClip <= 0 {
		cfg.FramesPerClip = 4
	}
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = 512
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CaptionClassifier{cfg: cfg}
}

func (c *CaptionClassifier) Name() string { return "Vision Caption" }

func (c *CaptionClassifier) Initialize() error {
	if c.client != nil {
		return nil
	}
	if c.cfg.APIKey == "" {
		return fmt.Errorf("caption classifier requires an OpenAI API key")
	}
	c.client = openai.NewClient(c.cfg.APIKey)
	return nil
}

func (c *CaptionClassifier) Ready() bool { return c.client != nil }

func (c *CaptionClassifier) ActionKeywords() map[string][]string {
	return DefaultActionKeywords()
}

func (c *CaptionClassifier) Classify(clip *video.Clip) Result {
	if !c.Ready() {
		log.Printf("Caption classifier not ready")
		return Result{Action: "unknown", Confidence: 0}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: captionPrompt,
	}}
	for _, frame := range sampleFrames(clip.Frames, c.cfg.FramesPerClip) {
		encoded, err := encodeJPEGBase64(frame, c.cfg.FrameSize)
		if err != nil {
			log.Printf("Caption classifier: encode frame %d: %v", frame.Index, err)
			return ErrorResult()
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + encoded,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	})
	if err != nil {
		log.Printf("Caption classifier: completion failed: %v", err)
		return ErrorResult()
	}
	if len(resp.Choices) == 0 {
		log.Printf("Caption classifier: empty response")
		return ErrorResult()
	}

	action, confidence, err := parseCaptionAnswer(resp.Choices[0].Message.Content)
	if err != nil {
		log.Printf("Caption classifier: %v", err)
		return ErrorResult()
	}

	return Result{
		Action:     action,
		Confidence: confidence,
		Metadata: map[string]interface{}{
			"model":          c.cfg.Model,
			"frames_sampled": c.cfg.FramesPerClip,
		},
	}
}

// sampleFrames picks count frames spread evenly across the clip.
func sampleFrames(frames []video.Frame, count int) []video.Frame {
	if len(frames) <= count {
		return frames
	}
	sampled := make([]video.Frame, 0, count)
	step := float64(len(frames)-1) / float64(count-1)
	for i := 0; i < count; i++ {
		sampled = append(sampled, frames[int(float64(i)*step)])
	}
	return sampled
}

func encodeJPEGBase64(frame video.Frame, maxSize int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, downscale(frame.Image, maxSize), &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// downscale shrinks img so its longer side is at most maxSize, preserving
// aspect ratio. Frames already small enough pass through untouched.
func downscale(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	var dstW, dstH int
	if w >= h {
		dstW = maxSize
		dstH = int(math.Round(float64(h) * float64(maxSize) / float64(w)))
	} else {
		dstH = maxSize
		dstW = int(math.Round(float64(w) * float64(maxSize) / float64(h)))
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return img
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(dstW, dstH), 0, 0, gocv.InterpolationArea)

	out, err := resized.ToImage()
	if err != nil {
		return img
	}
	return out
}

// parseCaptionAnswer expects "label|confidence"; a bare label is accepted
// with a conservative default confidence.
func parseCaptionAnswer(content string) (string, float64, error) {
	line := strings.TrimSpace(content)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if line == "" {
		return "", 0, fmt.Errorf("blank answer from model")
	}

	label := line
	confidence := 0.5
	if idx := strings.IndexByte(line, '|'); idx >= 0 {
		label = strings.TrimSpace(line[:idx])
		parsed, err := strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)
		if err != nil {
			return "", 0, fmt.Errorf("unparseable confidence in answer %q", line)
		}
		confidence = parsed
	}

	label = strings.ToLower(label)
	if label == "" {
		return "", 0, fmt.Errorf("blank label in answer %q", line)
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return label, confidence, nil
}
