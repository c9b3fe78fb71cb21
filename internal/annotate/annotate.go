// Package annotate draws identifier-labeled bounding boxes onto screenshots
// so the reasoning model can reference elements by id.
package annotate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/qapilothq/Valetudo/internal/logger"
)

// Box is one element outline: its id label and the raw Android bounds string.
type Box struct {
	ID     string
	Bounds string
}

type Annotator struct {
	debugDir string
	log      *logger.Zap
}

// New creates an annotator. debugDir is optional; when set, every annotated
// image is also saved there for inspection.
func New(debugDir string, log *logger.Zap) *Annotator {
	return &Annotator{debugDir: debugDir, log: log}
}

var red = color.NRGBA{R: 255, A: 255}

// Annotate decodes a base64 screenshot, outlines every box in red with its
// id label, and returns the result re-encoded as base64 JPEG. Boxes with
// unparseable bounds are skipped.
func (a *Annotator) Annotate(encodedImage string, boxes []Box) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encodedImage)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	canvas := imaging.Clone(img)
	for _, box := range boxes {
		x1, y1, x2, y2, err := parseBoxBounds(box.Bounds)
		if err != nil {
			continue
		}
		drawRect(canvas, x1, y1, x2, y2, 3)
		drawLabel(canvas, box.ID, x1-30, y1-30)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG); err != nil {
		return "", fmt.Errorf("encode annotated image: %w", err)
	}

	a.saveDebugCopy(canvas)

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// saveDebugCopy writes the annotated image to the debug directory. Failures
// are logged, never returned: debug output must not break the request.
func (a *Annotator) saveDebugCopy(canvas *image.NRGBA) {
	if a.debugDir == "" {
		return
	}
	if err := os.MkdirAll(a.debugDir, 0o755); err != nil {
		a.log.Warn("create annotate debug dir failed", zap.Error(err))
		return
	}
	name := fmt.Sprintf("annotated_image_%s_%s.jpg",
		time.Now().Format("20060102_150405"),
		strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err := imaging.Save(canvas, filepath.Join(a.debugDir, name)); err != nil {
		a.log.Warn("save annotated image failed", zap.Error(err))
	}
}

// parseBoxBounds parses "[x1,y1][x2,y2]" into the four corners.
func parseBoxBounds(s string) (x1, y1, x2, y2 int, err error) {
	coords := strings.Split(strings.Trim(strings.ReplaceAll(s, "][", ","), "[]"), ",")
	if len(coords) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("malformed bounds %q", s)
	}
	var vals [4]int
	for i, c := range coords {
		v, err := strconv.Atoi(c)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("malformed bounds %q: %w", s, err)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

// drawRect outlines the rectangle with the given stroke width, clipped to
// the canvas.
func drawRect(canvas *image.NRGBA, x1, y1, x2, y2, stroke int) {
	bounds := canvas.Bounds()
	set := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			canvas.SetNRGBA(x, y, red)
		}
	}
	for s := 0; s < stroke; s++ {
		for x := x1; x <= x2; x++ {
			set(x, y1+s)
			set(x, y2-s)
		}
		for y := y1; y <= y2; y++ {
			set(x1+s, y)
			set(x2-s, y)
		}
	}
}

// drawLabel renders the element id near the box's top-left corner.
func drawLabel(canvas *image.NRGBA, label string, x, y int) {
	if x < 0 {
		x = 0
	}
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(red),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}
