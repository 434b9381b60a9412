package video

import (
	"errors"
	"fmt"
	"io"
)

// ExtractorOptions describe the clip windowing: clips of Duration seconds,
// consecutive clips overlapping by the Overlap fraction, at most MaxClips
// emitted in total.
type ExtractorOptions struct {
	FPS      float64
	Duration float64
	Overlap  float64
	MaxClips int
}

// Extractor turns a frame stream into a lazy, finite sequence of overlapping
// clips. It buffers frames until a full window is available, emits it, then
// drops one stride's worth of frames so the remainder seeds the next window.
// The sequence is not restartable: the underlying source is read once.
type Extractor struct {
	src           FrameSource
	framesPerClip int
	stride        int
	maxClips      int

	buffer    []Frame
	nextIndex int
	emitted   int
	exhausted bool
}

// NewExtractor validates the windowing parameters and fails fast on a
// configuration that could never produce a well-formed clip.
func NewExtractor(src FrameSource, opts ExtractorOptions) (*Extractor, error) {
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid frame rate: %v", opts.FPS)
	}
	if opts.Overlap < 0 || opts.Overlap >= 1 {
		return nil, fmt.Errorf("clip overlap must be in [0,1), got %v", opts.Overlap)
	}
	framesPerClip := int(opts.FPS * opts.Duration)
	if framesPerClip <= 0 {
		return nil, fmt.Errorf("clip duration %vs at %v fps yields no frames", opts.Duration, opts.FPS)
	}
	stride := int(float64(framesPerClip) * (1 - opts.Overlap))
	if stride <= 0 {
		stride = 1
	}
	if opts.MaxClips <= 0 {
		return nil, fmt.Errorf("max clips must be positive, got %d", opts.MaxClips)
	}

	return &Extractor{
		src:           src,
		framesPerClip: framesPerClip,
		stride:        stride,
		maxClips:      opts.MaxClips,
		buffer:        make([]Frame, 0, framesPerClip),
	}, nil
}

// FramesPerClip reports the window length in frames.
func (e *Extractor) FramesPerClip() int { return e.framesPerClip }

// Stride reports how many frames apart consecutive clips begin.
func (e *Extractor) Stride() int { return e.stride }

// Next returns the next clip, or io.EOF when the source is exhausted or the
// clip limit has been reached. A source holding fewer frames than one full
// window produces zero clips.
func (e *Extractor) Next() (*Clip, error) {
	if e.exhausted || e.emitted >= e.maxClips {
		return nil, io.EOF
	}

	for len(e.buffer) < e.framesPerClip {
		img, err := e.src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				e.exhausted = true
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read frame %d: %w", e.nextIndex, err)
		}
		e.buffer = append(e.buffer, Frame{Index: e.nextIndex, Image: img})
		e.nextIndex++
	}

	clip := &Clip{
		StartFrame: e.buffer[0].Index,
		Frames:     append([]Frame(nil), e.buffer...),
	}
	e.buffer = append(e.buffer[:0], e.buffer[e.stride:]...)
	e.emitted++

	return clip, nil
}

// ExtractAll drains the extractor into a slice.
func (e *Extractor) ExtractAll() ([]*Clip, error) {
	var clips []*Clip
	for {
		clip, err := e.Next()
		if errors.Is(err, io.EOF) {
			return clips, nil
		}
		if err != nil {
			return clips, err
		}
		clips = append(clips, clip)
	}
}
