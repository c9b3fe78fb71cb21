package hierarchy

import (
	"fmt"
	"strconv"
	"strings"
)

// Bounds is the rectangle encoded by the Android bounds attribute
// "[x1,y1][x2,y2]".
type Bounds struct {
	X1, Y1, X2, Y2 int
}

func (b Bounds) Width() int  { return b.X2 - b.X1 }
func (b Bounds) Height() int { return b.Y2 - b.Y1 }
func (b Bounds) Area() int   { return b.Width() * b.Height() }

func (b Bounds) CenterX() float64 { return float64(b.X1+b.X2) / 2 }
func (b Bounds) CenterY() float64 { return float64(b.Y1+b.Y2) / 2 }

// ParseBounds parses "[x1,y1][x2,y2]". The format is fixed: two comma pairs,
// integers, no whitespace tolerance.
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(strings.Trim(s, "[]"), "][")
	if len(parts) != 2 {
		return Bounds{}, fmt.Errorf("malformed bounds %q", s)
	}
	var coords [4]int
	for i, pair := range parts {
		xy := strings.Split(pair, ",")
		if len(xy) != 2 {
			return Bounds{}, fmt.Errorf("malformed bounds %q", s)
		}
		for j, raw := range xy {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return Bounds{}, fmt.Errorf("malformed bounds %q: %w", s, err)
			}
			coords[i*2+j] = v
		}
	}
	return Bounds{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}, nil
}
