package video

import "image"

// Frame is one decoded image, tagged with its ordinal position in the
// original video.
type Frame struct {
	Index int
	Image image.Image
}

// Clip is a fixed-length window of consecutive frames. StartFrame is the
// index of the first frame in the original video.
type Clip struct {
	StartFrame int
	Frames     []Frame
}

// MiddleFrame returns the representative frame of the clip, used when a
// detection image is persisted.
func (c *Clip) MiddleFrame() Frame {
	return c.Frames[len(c.Frames)/2]
}

// FrameSource is a one-pass stream of decoded frames. Next returns io.EOF
// once the source is exhausted.
type FrameSource interface {
	Next() (image.Image, error)
	Close() error
}
