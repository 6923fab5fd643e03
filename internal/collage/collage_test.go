package collage

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/romanclock/internal/settings"
)

func makeImages(n int) []settings.CollageImage {
	images := make([]settings.CollageImage, n)
	for i := range images {
		images[i] = settings.NewCollageImage(string(rune('a' + i)))
		images[i].ZIndex = n - i
		images[i].ScaleType = settings.ScaleFitCenter
	}
	return images
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestApplyLayoutEmpty(t *testing.T) {
	for _, kind := range settings.CollageLayouts() {
		if got := ApplyLayout(nil, kind, nil); len(got) != 0 {
			t.Errorf("%v: expected empty result, got %d images", kind, len(got))
		}
	}
}

func TestApplyLayoutPreservesIdentity(t *testing.T) {
	in := makeImages(7)
	rng := rand.New(rand.NewPCG(1, 2))
	for _, kind := range settings.CollageLayouts() {
		out := ApplyLayout(in, kind, rng)
		if len(out) != len(in) {
			t.Fatalf("%v: length %d, want %d", kind, len(out), len(in))
		}
		for i := range in {
			if out[i].URI != in[i].URI || out[i].ZIndex != in[i].ZIndex || out[i].ScaleType != in[i].ScaleType {
				t.Errorf("%v: image %d identity changed: %+v", kind, i, out[i])
			}
		}
	}
	if in[0].Width != 0.3 || in[0].X != 0 {
		t.Errorf("input mutated: %+v", in[0])
	}
}

func TestGridLayout(t *testing.T) {
	for n := 1; n <= 9; n++ {
		out := ApplyLayout(makeImages(n), settings.LayoutGrid, nil)
		rows := map[float64]bool{}
		cells := map[[2]float64]bool{}
		for _, img := range out {
			rows[img.Y] = true
			cell := [2]float64{img.X, img.Y}
			if cells[cell] {
				t.Errorf("n=%d: two images share cell %v", n, cell)
			}
			cells[cell] = true
			if img.Width != 0.25 || img.Height != 0.25 || img.Rotation != 0 {
				t.Errorf("n=%d: unexpected size/rotation %+v", n, img)
			}
		}
		if want := (n + 2) / 3; len(rows) != want {
			t.Errorf("n=%d: %d distinct rows, want %d", n, len(rows), want)
		}
	}

	out := ApplyLayout(makeImages(5), settings.LayoutGrid, nil)
	if !near(out[4].X, 0.35) || !near(out[4].Y, 0.35) {
		t.Errorf("image 4 at (%v,%v), want (0.35,0.35)", out[4].X, out[4].Y)
	}
}

func TestMasonryLayout(t *testing.T) {
	out := ApplyLayout(makeImages(6), settings.LayoutMasonry, nil)
	if out[1].X != 0.55 || out[1].Height != 0.35 {
		t.Errorf("unexpected tile 1 %+v", out[1])
	}
	if out[5].X != out[0].X || out[5].Y != out[0].Y {
		t.Errorf("tile 5 should cycle back to tile 0: %+v", out[5])
	}
	wantRot := []float64{0, 5, 10, 0, 5, 10}
	for i, img := range out {
		if img.Rotation != wantRot[i] {
			t.Errorf("image %d rotation %v, want %v", i, img.Rotation, wantRot[i])
		}
	}
}

func TestCenterFocusSingleImage(t *testing.T) {
	out := ApplyLayout(makeImages(1), settings.LayoutCenterFocus, nil)
	img := out[0]
	if img.X != 0.25 || img.Y != 0.25 || img.Width != 0.5 || img.Height != 0.5 || img.Rotation != 0 {
		t.Errorf("single image not centered and enlarged: %+v", img)
	}
}

func TestCenterFocusRing(t *testing.T) {
	out := ApplyLayout(makeImages(5), settings.LayoutCenterFocus, nil)
	// Four ring images at 0, 90, 180 and 270 degrees.
	want := []struct{ x, y, rot float64 }{
		{0.75, 0.4, 0},
		{0.4, 0.75, 90},
		{0.05, 0.4, 180},
		{0.4, 0.05, 270},
	}
	for k, w := range want {
		img := out[k+1]
		if !near(img.X, w.x) || !near(img.Y, w.y) || !near(img.Rotation, w.rot) {
			t.Errorf("ring image %d = (%v,%v,%v), want (%v,%v,%v)", k+1, img.X, img.Y, img.Rotation, w.x, w.y, w.rot)
		}
		if img.Width != 0.2 || img.Height != 0.2 {
			t.Errorf("ring image %d size %vx%v", k+1, img.Width, img.Height)
		}
	}
}

func TestSpiralLayoutFloorsSize(t *testing.T) {
	out := ApplyLayout(makeImages(25), settings.LayoutSpiral, nil)
	if !near(out[0].Width, 0.2) || !near(out[3].Width, 0.17) {
		t.Errorf("unexpected spiral sizes %v, %v", out[0].Width, out[3].Width)
	}
	for i, img := range out {
		if img.Width < MinImageSize || img.Height < MinImageSize {
			t.Errorf("image %d size %v below floor", i, img.Width)
		}
	}
	if out[24].Width != MinImageSize {
		t.Errorf("image 24 width %v, want floor %v", out[24].Width, MinImageSize)
	}
	if !near(out[2].Rotation, 2*180/math.Pi) {
		t.Errorf("image 2 rotation %v", out[2].Rotation)
	}
}

func TestRandomLayoutRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	out := ApplyLayout(makeImages(200), settings.LayoutRandom, rng)
	for i, img := range out {
		if img.X < 0 || img.X > 0.7 || img.Y < 0 || img.Y > 0.7 {
			t.Errorf("image %d position out of range (%v,%v)", i, img.X, img.Y)
		}
		if img.Width < 0.15 || img.Width > 0.30+1e-9 || img.Height < 0.15 || img.Height > 0.30+1e-9 {
			t.Errorf("image %d size out of range %vx%v", i, img.Width, img.Height)
		}
		if img.Rotation < 0 || img.Rotation >= 360 {
			t.Errorf("image %d rotation %v", i, img.Rotation)
		}
		if img.Opacity < 0.6 || img.Opacity > 1+1e-9 {
			t.Errorf("image %d opacity %v", i, img.Opacity)
		}
	}
}

func TestNewImages(t *testing.T) {
	out := NewImages([]string{"a", "b", "c", "d"}, 8)
	if len(out) != 4 {
		t.Fatalf("got %d images", len(out))
	}
	// Index 8 is the last grid cell; index 9 wraps to the first.
	if !near(out[0].X, 0.65) || !near(out[0].Y, 0.65) {
		t.Errorf("index 8 at (%v,%v)", out[0].X, out[0].Y)
	}
	if !near(out[1].X, 0.05) || !near(out[1].Y, 0.05) {
		t.Errorf("index 9 at (%v,%v)", out[1].X, out[1].Y)
	}
	if out[0].ZIndex != 8 || out[3].ZIndex != 11 {
		t.Errorf("zIndex %d..%d", out[0].ZIndex, out[3].ZIndex)
	}
	if !near(out[0].Width, 0.35) || !near(out[0].Opacity, 0.9) || out[0].Rotation != 40 {
		t.Errorf("unexpected index 8 placement %+v", out[0])
	}
}

func TestEditHelpers(t *testing.T) {
	images := Append(nil, "a", "b", "c")
	if len(images) != 3 || images[2].ZIndex != 2 {
		t.Fatalf("Append produced %+v", images)
	}

	front := BringToFront(images, "a")
	if front[0].ZIndex != 3 || images[0].ZIndex != 0 {
		t.Errorf("BringToFront z=%d, original z=%d", front[0].ZIndex, images[0].ZIndex)
	}
	if order := SortedByZ(front); order[2].URI != "a" {
		t.Errorf("expected a on top, got %s", order[2].URI)
	}

	updated := images[1]
	updated.Rotation = 33
	replaced := Replace(images, updated)
	if replaced[1].Rotation != 33 || images[1].Rotation == 33 {
		t.Errorf("Replace did not copy: %v / %v", replaced[1].Rotation, images[1].Rotation)
	}

	removed := Remove(images, "b")
	if len(removed) != 2 || removed[1].URI != "c" || len(images) != 3 {
		t.Errorf("Remove produced %+v", removed)
	}

	faded := SetOpacityAll(images, 1.4)
	for _, img := range faded {
		if img.Opacity != 1 {
			t.Errorf("opacity not clamped: %v", img.Opacity)
		}
	}

	rotated := RotateBy(images, -50)
	if !near(rotated[0].Rotation, 310) {
		t.Errorf("RotateBy(-50) from 0 = %v", rotated[0].Rotation)
	}
}

func TestSortedByZ(t *testing.T) {
	images := []settings.CollageImage{
		{URI: "first", ZIndex: 2},
		{URI: "second", ZIndex: 0},
		{URI: "third", ZIndex: 1},
		{URI: "tie", ZIndex: 0},
	}
	got := SortedByZ(images)
	want := []string{"second", "tie", "third", "first"}
	for i, img := range got {
		if img.URI != want[i] {
			t.Errorf("position %d = %s, want %s", i, img.URI, want[i])
		}
	}
}
