package render

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"orrery/internal/state"
	"orrery/internal/testsupport"
)

func testDocument() state.Document {
	people := []state.Person{
		{ID: "p1", Name: "Riya", XPosition: 0.3, YPosition: -0.2,
			Tag: &state.Tag{Name: "Friend", Color: "#45B7D1"}},
		{ID: "p2", Name: "Aman", XPosition: -0.6, YPosition: 0.4},
	}
	return state.Build(state.User{ID: "u1", Name: "Ada"}, people, time.Now())
}

func TestRenderFrameDimensions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := New(cfg)

	img, err := r.RenderFrame(testDocument(), 0, 10, "Added Riya as Friend")
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != cfg.Render.Width || bounds.Dy() != cfg.Render.Height {
		t.Errorf("frame bounds = %v, want %dx%d", bounds, cfg.Render.Width, cfg.Render.Height)
	}
}

func TestRenderFrameDeterministicStars(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := New(cfg)
	doc := testDocument()

	a, err := r.RenderFrame(doc, 3, 10, "")
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	b, err := r.RenderFrame(doc, 3, 10, "")
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if !sameImage(a, b) {
		t.Error("two renders of the same frame differ")
	}
}

func TestRenderFrameAlphaFadesPlanet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := New(cfg)

	opaque := testDocument()
	faded := testDocument()
	zero := 0.0
	for i := range faded.People {
		faded.People[i].Alpha = &zero
	}

	a, _ := r.RenderFrame(opaque, 0, 0, "")
	b, _ := r.RenderFrame(faded, 0, 0, "")
	if sameImage(a, b) {
		t.Error("fully faded people rendered identically to opaque people")
	}
}

func TestRenderFrameProgressAdvances(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := New(cfg)
	doc := testDocument()

	first, _ := r.RenderFrame(doc, 0, 100, "")
	last, _ := r.RenderFrame(doc, 99, 100, "")
	if sameImage(first, last) {
		t.Error("progress bar did not change between first and last frame")
	}
}

func TestWritePNG(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := New(cfg)

	img, err := r.RenderStill(testDocument())
	if err != nil {
		t.Fatalf("RenderStill: %v", err)
	}
	path := filepath.Join(t.TempDir(), "still.png")
	if err := WritePNG(path, img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("wrote empty png")
	}
}

func TestParseHexColor(t *testing.T) {
	r, g, b, ok := parseHexColor("#FF6B6B")
	if !ok || r != 0xFF || g != 0x6B || b != 0x6B {
		t.Errorf("parse #FF6B6B = %d %d %d %v", r, g, b, ok)
	}
	if _, _, _, ok := parseHexColor("nonsense"); ok {
		t.Error("accepted invalid color")
	}
}

func sameImage(a, b image.Image) bool {
	ra, rb := a.Bounds(), b.Bounds()
	if ra != rb {
		return false
	}
	for y := ra.Min.Y; y < ra.Max.Y; y++ {
		for x := ra.Min.X; x < ra.Max.X; x++ {
			if a.At(x, y) != b.At(x, y) {
				return false
			}
		}
	}
	return true
}
