// Package textmeasure measures rendered text without drawing it.
//
// A Ruler parses each known TTF once and lazily builds one font.Face per
// requested size. Faces are reused across calls, so measuring is cheap after
// the first call for a given font. A Ruler is not safe for concurrent use:
// hosts with multiple goroutines must guard it with a mutex or give each
// goroutine its own.
package textmeasure

import (
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"oss.audgraph.dev/aud/audrenderers/audfonts"
)

// Tab characters align to multiples of TAB_SIZE spaces.
const TAB_SIZE = 4

type Ruler struct {
	// LineHeightFactor scales the vertical distance between two lines of text.
	LineHeightFactor float64

	ttfs map[audfonts.Font]*truetype.Font

	faces       map[audfonts.Font]font.Face
	lineHeights map[audfonts.Font]float64
	tabWidths   map[audfonts.Font]float64
}

func NewRuler() (*Ruler, error) {
	r := &Ruler{
		LineHeightFactor: 1.,
		ttfs:             make(map[audfonts.Font]*truetype.Font),
		faces:            make(map[audfonts.Font]font.Face),
		lineHeights:      make(map[audfonts.Font]float64),
		tabWidths:        make(map[audfonts.Font]float64),
	}

	for _, fontFamily := range audfonts.FontFamilies {
		for _, fontStyle := range audfonts.FontStyles {
			f := audfonts.Font{
				Family: fontFamily,
				Style:  fontStyle,
			}
			// FontFaces lookup is size-agnostic.
			b, has := audfonts.FontFaces[f]
			if !has {
				continue
			}
			ttf, err := truetype.Parse(b)
			if err != nil {
				return nil, err
			}
			r.ttfs[f] = ttf
		}
	}

	return r, nil
}

func (r *Ruler) HasFontFamilyLoaded(fontFamily audfonts.FontFamily) bool {
	for _, fontStyle := range audfonts.FontStyles {
		f := audfonts.Font{
			Family: fontFamily,
			Style:  fontStyle,
		}
		if _, ok := r.ttfs[f]; !ok {
			return false
		}
	}
	return true
}

func (r *Ruler) addFontSize(f audfonts.Font) {
	face := truetype.NewFace(r.ttfs[f.Sizeless()], &truetype.Options{
		Size: float64(f.Size),
	})
	r.faces[f] = face

	m := face.Metrics()
	r.lineHeights[f] = float64(m.Ascent+m.Descent) / 64
	adv, _ := face.GlyphAdvance(' ')
	r.tabWidths[f] = float64(adv) / 64 * TAB_SIZE
}

func (r *Ruler) face(f audfonts.Font) font.Face {
	if _, ok := r.faces[f]; !ok {
		r.addFontSize(f)
	}
	return r.faces[f]
}

// Measure returns the dimensions of s rendered with f, rounded up to whole
// pixels. Newlines and tabs are supported; carriage returns reset the line.
func (r *Ruler) Measure(f audfonts.Font, s string) (width, height int) {
	w, h := r.MeasurePrecise(f, s)
	return int(math.Ceil(w)), int(math.Ceil(h))
}

func (r *Ruler) MeasurePrecise(f audfonts.Font, s string) (width, height float64) {
	if s == "" {
		return 0, 0
	}

	face := r.face(f)
	lines := strings.Split(s, "\n")
	for _, line := range lines {
		width = math.Max(width, r.lineWidth(face, f, line))
	}
	height = float64(len(lines)) * r.LineHeightFactor * r.lineHeights[f]
	return width, height
}

// lineWidth measures a single line, advancing past tabs to the next multiple
// of the tab width. font.MeasureString applies kerning within each segment.
func (r *Ruler) lineWidth(face font.Face, f audfonts.Font, line string) float64 {
	var w float64
	for i, seg := range strings.Split(line, "\t") {
		if i > 0 {
			w = (math.Floor(w/r.tabWidths[f]) + 1) * r.tabWidths[f]
		}
		seg = strings.TrimSuffix(seg, "\r")
		w += float64(font.MeasureString(face, seg)) / 64
	}
	return w
}

// SpaceWidth returns the advance of a single space in f.
func (r *Ruler) SpaceWidth(f audfonts.Font) float64 {
	face := r.face(f)
	adv, _ := face.GlyphAdvance(' ')
	return float64(adv) / 64
}
