package render

import (
	"hash/fnv"
	"image"
	"image/color"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"orrery/internal/config"
	"orrery/internal/state"
)

// FrameRenderer turns one state document into a frame image. The timeline
// pipeline depends on this interface so tests can substitute a cheap fake.
type FrameRenderer interface {
	RenderStill(doc state.Document) (image.Image, error)
	RenderFrame(doc state.Document, frameIndex, totalFrames int, changeSummary string) (image.Image, error)
}

var (
	spaceColor  = color.RGBA{R: 10, G: 10, B: 26, A: 255}
	nebulaColor = color.RGBA{R: 15, G: 27, B: 61}
	goldColor   = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	white       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Renderer paints the orbit scene: gradient space background, a seeded star
// field, orbital reference rings, connection lines, tag-colored planets with
// name labels, the owner at the center, a stats strip, and for video frames
// a change summary plus a progress bar.
type Renderer struct {
	width  int
	height int
}

// New builds a Renderer with the configured frame dimensions.
func New(cfg *config.Config) *Renderer {
	return &Renderer{width: cfg.Render.Width, height: cfg.Render.Height}
}

// RenderStill paints a standalone share image without the video overlays.
func (r *Renderer) RenderStill(doc state.Document) (image.Image, error) {
	return r.render(doc, "", -1, 0), nil
}

// RenderFrame paints one video frame. The summary is drawn only when
// non-empty; the progress bar reflects frameIndex within totalFrames.
func (r *Renderer) RenderFrame(doc state.Document, frameIndex, totalFrames int, changeSummary string) (image.Image, error) {
	return r.render(doc, changeSummary, frameIndex, totalFrames), nil
}

func (r *Renderer) render(doc state.Document, summary string, frameIndex, totalFrames int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	fillRect(img, 0, 0, r.width, r.height, spaceColor)

	cx, cy := r.width/2, r.height/2
	// Normalized position 1.0 lands on this pixel radius from the center.
	scale := minInt(r.width, r.height) * 5 / 12

	r.drawGradient(img, cx, cy, scale)
	r.drawStars(img, doc.User.ID)
	r.drawRings(img, cx, cy, scale)

	for _, person := range doc.People {
		px := cx + int(person.XPosition*float64(scale))
		py := cy + int(person.YPosition*float64(scale))
		lineColor := personColor(person, 38)
		drawLine(img, cx, cy, px, py, lineColor)
	}

	planetR := maxInt(scale/22, 2)
	for _, person := range doc.People {
		px := cx + int(person.XPosition*float64(scale))
		py := cy + int(person.YPosition*float64(scale))
		opacity := person.Opacity()

		// Soft halo rings around the planet.
		for i, haloAlpha := range []float64{30, 50, 80} {
			c := personColor(person, uint8(haloAlpha*opacity))
			fillCircle(img, px, py, planetR+3-i, c)
		}
		fillCircle(img, px, py, planetR, personColor(person, uint8(255*opacity)))

		if r.width >= 256 {
			drawTextCentered(img, px, py+planetR+12, person.Name,
				color.RGBA{R: 255, G: 255, B: 255, A: uint8(230 * opacity)})
		}
	}

	r.drawOwner(img, doc.User, cx, cy, scale)

	if r.width >= 256 {
		r.drawStatsBar(img, doc)
		drawTextCentered(img, cx, 35, "My Solar System", color.RGBA{R: 255, G: 255, B: 255, A: 204})
		if summary != "" {
			drawTextCentered(img, cx, r.height-r.height/12, summary, color.RGBA{R: 255, G: 255, B: 255, A: 200})
		}
	}

	if totalFrames > 0 {
		progress := float64(frameIndex) / float64(maxInt(totalFrames-1, 1))
		barWidth := int(float64(r.width) * progress)
		fillRect(img, 0, r.height-4, barWidth, r.height, color.RGBA{R: 255, G: 255, B: 255, A: 100})
	}

	return img
}

func (r *Renderer) drawGradient(img *image.RGBA, cx, cy, scale int) {
	maxRadius := scale + scale/9
	step := maxInt(maxRadius/50, 1)
	for radius := maxRadius; radius > 0; radius -= step {
		alpha := uint8(40 * (1.0 - float64(radius)/float64(maxRadius)))
		c := nebulaColor
		c.A = alpha
		fillCircle(img, cx, cy, radius, c)
	}
}

// drawStars scatters a deterministic star field so every frame of a video
// shares the same sky.
func (r *Renderer) drawStars(img *image.RGBA, seed string) {
	h := fnv.New64a()
	h.Write([]byte(seed))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	small := r.width * r.height * 150 / (1080 * 1080)
	for i := 0; i < maxInt(small, 20); i++ {
		x := rng.Intn(r.width)
		y := rng.Intn(r.height)
		radius := []int{1, 1, 1, 2}[rng.Intn(4)]
		brightness := uint8(180 + rng.Intn(76))
		fillCircle(img, x, y, radius, color.RGBA{R: brightness, G: brightness, B: brightness, A: 255})
	}
	for i := 0; i < maxInt(small/7, 3); i++ {
		x := rng.Intn(r.width)
		y := rng.Intn(r.height)
		radius := 2 + rng.Intn(2)
		fillCircle(img, x, y, radius, color.RGBA{R: 255, G: 255, B: 255, A: 128})
	}
}

func (r *Renderer) drawRings(img *image.RGBA, cx, cy, scale int) {
	ringColor := color.RGBA{R: 255, G: 255, B: 255, A: 18}
	for _, fraction := range []float64{0.22, 0.44, 0.67, 0.89, 1.0} {
		strokeCircle(img, cx, cy, int(float64(scale)*fraction), ringColor)
	}
}

func (r *Renderer) drawOwner(img *image.RGBA, user state.User, cx, cy, scale int) {
	ownerR := maxInt(scale/11, 4)
	for i, haloAlpha := range []uint8{15, 25, 40} {
		c := goldColor
		c.A = haloAlpha
		fillCircle(img, cx, cy, ownerR+(3-i)*ownerR/10+2, c)
	}
	fillCircle(img, cx, cy, ownerR, goldColor)

	if r.width >= 256 {
		drawTextCentered(img, cx, cy-ownerR-8, "YOU", color.RGBA{R: 255, G: 255, B: 255, A: 153})
		drawTextCentered(img, cx, cy+ownerR+16, user.Name, white)
	}
}

func (r *Renderer) drawStatsBar(img *image.RGBA, doc state.Document) {
	barTop := r.height - r.height*80/1080
	fillRect(img, 0, barTop, r.width, r.height, color.RGBA{A: 153})

	line1 := strconv.Itoa(doc.TotalActivePeople) + " people in my orbit"
	drawText(img, 30, barTop+16, line1, white)

	breakdown := ""
	for _, name := range sortedSummaryKeys(doc.TagsSummary) {
		if breakdown != "" {
			breakdown += " · "
		}
		breakdown += strconv.Itoa(doc.TagsSummary[name]) + " " + name
	}
	drawText(img, 30, barTop+32, breakdown, color.RGBA{R: 255, G: 255, B: 255, A: 179})

	date := time.Now().Format("Jan 2006")
	drawText(img, r.width-30-textWidth(date), barTop+24, date, color.RGBA{R: 255, G: 255, B: 255, A: 128})
}

func personColor(person state.Person, alpha uint8) color.RGBA {
	if person.Tag != nil {
		if r, g, b, ok := parseHexColor(person.Tag.Color); ok {
			return color.RGBA{R: r, G: g, B: b, A: alpha}
		}
	}
	if person.CustomColor != "" {
		if r, g, b, ok := parseHexColor(person.CustomColor); ok {
			return color.RGBA{R: r, G: g, B: b, A: alpha}
		}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: alpha}
}

func parseHexColor(s string) (r, g, b uint8, ok bool) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func sortedSummaryKeys(summary map[string]int) []string {
	keys := make([]string, 0, len(summary))
	for key := range summary {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
