package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Basketball-orange hue band in OpenCV's 0-180 HSV space, with saturation
// and value floors that reject washed-out court and skin tones.
var (
	ballHSVLower = gocv.NewScalar(5, 100, 80, 0)
	ballHSVUpper = gocv.NewScalar(25, 255, 255, 0)
)

// minBallArea filters speckle contours; measured in pixels of the mask.
const minBallArea = 60.0

// ColorBallDetector finds a ball-like object by color segmentation: mask the
// orange hue band, clean the mask, and take the bounding box of the largest
// remaining roughly-square contour.
type ColorBallDetector struct{}

func NewColorBallDetector() *ColorBallDetector {
	return &ColorBallDetector{}
}

// DetectBall returns the bounding box of the most ball-like region of the
// frame, or found=false when nothing plausible is visible.
func (d *ColorBallDetector) DetectBall(img image.Image) (image.Rectangle, bool) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return image.Rectangle{}, false
	}
	defer mat.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorRGBToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, ballHSVLower, ballHSVUpper, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(5, 5))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best := image.Rectangle{}
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < minBallArea || area <= bestArea {
			continue
		}
		rect := gocv.BoundingRect(contour)
		if !roughlySquare(rect) {
			continue
		}
		best = rect
		bestArea = area
	}

	return best, bestArea > 0
}

// roughlySquare rejects elongated regions (court lines, jerseys) that share
// the ball's color.
func roughlySquare(rect image.Rectangle) bool {
	w, h := float64(rect.Dx()), float64(rect.Dy())
	if w == 0 || h == 0 {
		return false
	}
	ratio := w / h
	return ratio > 0.5 && ratio < 2.0
}
