package display

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func blackFrame(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func TestDrawRegionsOutlinesInBlue(t *testing.T) {
	frame := blackFrame(100, 100)
	defer frame.Close()

	r := image.Rect(10, 20, 60, 80)
	DrawRegions(&frame, []image.Rectangle{r})

	// Top-left corner of the outline is BGR (255, 0, 0).
	v := frame.GetVecbAt(r.Min.Y, r.Min.X)
	if v[0] != 255 || v[1] != 0 || v[2] != 0 {
		t.Errorf("Corner pixel = %v, want [255 0 0]", v)
	}

	// Interior stays untouched.
	c := frame.GetVecbAt(50, 35)
	if c[0] != 0 || c[1] != 0 || c[2] != 0 {
		t.Errorf("Interior pixel = %v, want black", c)
	}
}

func TestDrawRegionsNone(t *testing.T) {
	frame := blackFrame(20, 20)
	defer frame.Close()

	DrawRegions(&frame, nil)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	if n := gocv.CountNonZero(gray); n != 0 {
		t.Errorf("Expected untouched frame, found %d lit pixels", n)
	}
}
