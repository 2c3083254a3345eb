package detection

import (
	"image"
	"math"
	"testing"

	"github.com/ironsheep/streak-scanner/internal/imaging"
)

// createFrame creates an 8-bit frame filled with a background value
func createFrame(width, height int, background float64) *imaging.Frame {
	f := imaging.NewFrame(width, height, 8)
	for i := range f.Pix {
		f.Pix[i] = background
	}
	return f
}

// fillRect paints the half-open rectangle r with value v
func fillRect(f *imaging.Frame, r image.Rectangle, v float64) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.Set(x, y, v)
		}
	}
}

func TestSegment_EmptyFrame(t *testing.T) {
	s := NewSegmenter(nil)

	for _, bg := range []float64{0, 40} {
		seg := s.Segment(createFrame(64, 64, bg))
		if len(seg.Regions) != 0 {
			t.Errorf("background %v: got %d regions, want 0", bg, len(seg.Regions))
		}
		if seg.BorderRejected != 0 {
			t.Errorf("background %v: BorderRejected = %d, want 0", bg, seg.BorderRejected)
		}
	}
}

func TestSegment_HorizontalBar(t *testing.T) {
	f := createFrame(100, 60, 0)
	fillRect(f, image.Rect(30, 20, 70, 25), 200)

	seg := NewSegmenter(nil).Segment(f)
	if len(seg.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(seg.Regions))
	}
	r := seg.Regions[0]

	if r.Area != 200 {
		t.Errorf("Area: got %d, want 200", r.Area)
	}
	want := BBox{MinRow: 20, MinCol: 30, MaxRow: 25, MaxCol: 70}
	if r.BBox != want {
		t.Errorf("BBox: got %+v, want %+v", r.BBox, want)
	}
	if math.Abs(r.Orientation) > 1e-9 {
		t.Errorf("Orientation: got %v, want 0", r.Orientation)
	}

	// Uniform w x h rectangle: variance along an axis is (n^2-1)/12.
	wantMajor := 4 * math.Sqrt((40.0*40.0-1)/12)
	wantMinor := 4 * math.Sqrt((5.0*5.0-1)/12)
	if math.Abs(r.MajorAxisLength-wantMajor) > 1e-6 {
		t.Errorf("MajorAxisLength: got %v, want %v", r.MajorAxisLength, wantMajor)
	}
	if math.Abs(r.MinorAxisLength-wantMinor) > 1e-6 {
		t.Errorf("MinorAxisLength: got %v, want %v", r.MinorAxisLength, wantMinor)
	}
	if math.Abs(r.CentroidRow-22) > 1e-9 || math.Abs(r.CentroidCol-49.5) > 1e-9 {
		t.Errorf("Centroid: got (%v,%v), want (22,49.5)", r.CentroidRow, r.CentroidCol)
	}
}

func TestSegment_VerticalBar(t *testing.T) {
	f := createFrame(60, 100, 0)
	fillRect(f, image.Rect(20, 30, 25, 70), 180)

	seg := NewSegmenter(nil).Segment(f)
	if len(seg.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(seg.Regions))
	}
	if got := seg.Regions[0].Orientation; math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("Orientation: got %v, want pi/2", got)
	}
}

func TestSegment_AscendingDiagonal(t *testing.T) {
	f := createFrame(100, 100, 0)
	// Band rising to the right as viewed: rows decrease while columns increase.
	for i := 0; i < 41; i++ {
		for w := -2; w <= 2; w++ {
			f.Set(30+i, 70-i+w, 220)
		}
	}

	seg := NewSegmenter(nil).Segment(f)
	if len(seg.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(seg.Regions))
	}
	r := seg.Regions[0]
	if math.Abs(r.Orientation-math.Pi/4) > 0.05 {
		t.Errorf("Orientation: got %v, want ~pi/4", r.Orientation)
	}
	if r.MajorAxisLength <= r.MinorAxisLength {
		t.Errorf("major %v should exceed minor %v", r.MajorAxisLength, r.MinorAxisLength)
	}
}

func TestSegment_BorderRegionCleared(t *testing.T) {
	f := createFrame(100, 60, 0)
	fillRect(f, image.Rect(0, 10, 40, 15), 200)  // touches left edge
	fillRect(f, image.Rect(50, 59, 90, 60), 200) // touches bottom edge
	fillRect(f, image.Rect(40, 30, 80, 35), 200) // interior

	seg := NewSegmenter(nil).Segment(f)
	if len(seg.Regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(seg.Regions))
	}
	if seg.BorderRejected != 2 {
		t.Errorf("BorderRejected: got %d, want 2", seg.BorderRejected)
	}
	b := seg.Regions[0].BBox
	if b.MinRow == 0 || b.MinCol == 0 || b.MaxRow == 60 || b.MaxCol == 100 {
		t.Errorf("surviving region touches the border: %+v", b)
	}
}

func TestSegment_ClosingBridgesGap(t *testing.T) {
	f := createFrame(100, 60, 0)
	fillRect(f, image.Rect(20, 20, 49, 25), 200)
	fillRect(f, image.Rect(50, 20, 80, 25), 200) // one-column gap at x=49

	seg := NewSegmenter(nil).Segment(f)
	if len(seg.Regions) != 1 {
		t.Fatalf("got %d regions, want the gap bridged into 1", len(seg.Regions))
	}
	if seg.Regions[0].Area != 300 {
		t.Errorf("Area: got %d, want 300", seg.Regions[0].Area)
	}
}

func TestSegment_SeparateStreaksStaySeparate(t *testing.T) {
	f := createFrame(100, 60, 0)
	fillRect(f, image.Rect(20, 10, 80, 14), 200)
	fillRect(f, image.Rect(20, 30, 80, 34), 200)

	seg := NewSegmenter(nil).Segment(f)
	if len(seg.Regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(seg.Regions))
	}
	if seg.Regions[0].BBox.MinRow != 10 || seg.Regions[1].BBox.MinRow != 30 {
		t.Errorf("regions not in raster order: %+v, %+v", seg.Regions[0].BBox, seg.Regions[1].BBox)
	}
}

func TestSegment_ThresholdDerivedPerFrame(t *testing.T) {
	s := NewSegmenter(MaxFractionPolicy{Fraction: 0.1})

	dim := createFrame(50, 50, 0)
	fillRect(dim, image.Rect(10, 10, 20, 20), 100)
	bright := createFrame(50, 50, 0)
	fillRect(bright, image.Rect(10, 10, 20, 20), 250)

	t1 := s.Segment(dim).Threshold
	t2 := s.Segment(bright).Threshold
	if math.Abs(t1-10) > 1e-9 || math.Abs(t2-25) > 1e-9 {
		t.Errorf("thresholds: got %v and %v, want 10 and 25", t1, t2)
	}
}

func TestBinarize_StrictlyGreater(t *testing.T) {
	f := createFrame(3, 1, 0)
	f.Pix = []float64{9, 10, 11}

	mask := Binarize(f, 10)
	want := []bool{false, false, true}
	for i := range want {
		if mask[i] != want[i] {
			t.Errorf("mask[%d]: got %v, want %v", i, mask[i], want[i])
		}
	}
}

func TestLabelComponents_DiagonalConnectivity(t *testing.T) {
	// Two pixels touching only at a corner are one 8-connected component.
	mask := []bool{
		false, false, false, false,
		false, true, false, false,
		false, false, true, false,
		false, false, false, false,
	}

	comps := labelComponents(mask, 4, 4)
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	if len(comps[0].pixels) != 2 {
		t.Errorf("component size: got %d, want 2", len(comps[0].pixels))
	}
	if comps[0].touchesBorder {
		t.Error("interior component flagged as touching border")
	}
}

func TestLabelComponents_BorderFlag(t *testing.T) {
	mask := []bool{
		true, false, false,
		false, false, false,
		false, false, true,
	}

	comps := labelComponents(mask, 3, 3)
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}
	for i, c := range comps {
		if !c.touchesBorder {
			t.Errorf("component %d should touch the border", i)
		}
	}
}

func TestMeasureRegion_SinglePixel(t *testing.T) {
	r := measureRegion([]image.Point{{X: 5, Y: 7}})

	if r.Area != 1 {
		t.Errorf("Area: got %d, want 1", r.Area)
	}
	want := BBox{MinRow: 7, MinCol: 5, MaxRow: 8, MaxCol: 6}
	if r.BBox != want {
		t.Errorf("BBox: got %+v, want %+v", r.BBox, want)
	}
	if r.MajorAxisLength != 0 || r.MinorAxisLength != 0 {
		t.Errorf("axes: got %v/%v, want 0/0", r.MajorAxisLength, r.MinorAxisLength)
	}
	if r.Orientation <= -math.Pi/2 || r.Orientation > math.Pi/2 {
		t.Errorf("Orientation %v outside (-pi/2, pi/2]", r.Orientation)
	}
}

func TestMeasureRegion_OneRowLine(t *testing.T) {
	pixels := make([]image.Point, 0, 20)
	for x := 0; x < 20; x++ {
		pixels = append(pixels, image.Point{X: 10 + x, Y: 3})
	}

	r := measureRegion(pixels)
	if r.MinorAxisLength != 0 {
		t.Errorf("MinorAxisLength: got %v, want 0", r.MinorAxisLength)
	}
	if r.MajorAxisLength <= 0 {
		t.Errorf("MajorAxisLength: got %v, want > 0", r.MajorAxisLength)
	}
}
