package imaging

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// FillAuto asks for the dominant colour of a reference image as fill.
const FillAuto = "auto"

// ParseFill parses a canvas fill value. Accepted forms:
//   - a single 0-255 integer, used for all three channels ("114")
//   - three comma separated 0-255 integers ("114,114,114")
//   - a hex colour ("#727272" or "727272")
//
// The empty string is black.
func ParseFill(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{A: 0xff}, nil
	}

	parts := strings.Split(s, ",")
	switch len(parts) {
	case 1:
		if v, err := strconv.ParseUint(s, 10, 8); err == nil {
			return color.NRGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 0xff}, nil
		}
	case 3:
		var rgb [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("invalid fill component %q: %w", p, err)
			}
			rgb[i] = uint8(v)
		}
		return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid fill %q", s)
	}

	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid fill %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// DominantColor returns the most frequent colour of img after quantizing
// each component down to a multiple of 16, the same bucketing used to group
// near-identical background shades.
func DominantColor(img *image.NRGBA) color.NRGBA {
	counts := make(map[[3]uint8]int)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			counts[[3]uint8{c.R / 16 * 16, c.G / 16 * 16, c.B / 16 * 16}]++
		}
	}

	keys := make([][3]uint8, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	// Deterministic tie-break on the colour value.
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		for c := 0; c < 3; c++ {
			if keys[i][c] != keys[j][c] {
				return keys[i][c] < keys[j][c]
			}
		}
		return false
	})

	if len(keys) == 0 {
		return color.NRGBA{A: 0xff}
	}
	k := keys[0]
	return color.NRGBA{R: k[0], G: k[1], B: k[2], A: 0xff}
}

// LabelColor picks a stable, saturated colour for a label so that the same
// label is drawn the same way across previews.
func LabelColor(label string) color.NRGBA {
	var h uint32 = 2166136261
	for i := 0; i < len(label); i++ {
		h ^= uint32(label[i])
		h *= 16777619
	}
	hue := float64(h%360)
	r, g, b := colorful.Hsv(hue, 0.85, 0.95).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
