// audfonts holds the fonts aud measures and renders with.
//
// The Go font family ships as TTF data inside golang.org/x/image, so nothing
// here needs to be fetched or embedded at build time.
package audfonts

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

type FontFamily string
type FontStyle string

type Font struct {
	Family FontFamily
	Style  FontStyle
	Size   int
}

func (f FontFamily) Font(size int, style FontStyle) Font {
	return Font{
		Family: f,
		Style:  style,
		Size:   size,
	}
}

// Sizeless strips the size so f can key FontFaces and FontEncodings, which
// hold one entry per family+style.
func (f Font) Sizeless() Font {
	f.Size = 0
	return f
}

const (
	FONT_SIZE_XS = 13
	FONT_SIZE_S  = 14
	FONT_SIZE_M  = 16
	FONT_SIZE_L  = 20

	FONT_STYLE_REGULAR FontStyle = "regular"
	FONT_STYLE_BOLD    FontStyle = "bold"
	FONT_STYLE_ITALIC  FontStyle = "italic"

	GoSans FontFamily = "GoSans"
	GoMono FontFamily = "GoMono"
)

var FontSizes = []int{
	FONT_SIZE_XS,
	FONT_SIZE_S,
	FONT_SIZE_M,
	FONT_SIZE_L,
}

var FontStyles = []FontStyle{
	FONT_STYLE_REGULAR,
	FONT_STYLE_BOLD,
	FONT_STYLE_ITALIC,
}

var FontFamilies = []FontFamily{
	GoSans,
	GoMono,
}

var FontFaces map[Font][]byte
var FontEncodings map[Font]string

func init() {
	FontFaces = map[Font][]byte{
		{
			Family: GoSans,
			Style:  FONT_STYLE_REGULAR,
		}: goregular.TTF,
		{
			Family: GoSans,
			Style:  FONT_STYLE_BOLD,
		}: gobold.TTF,
		{
			Family: GoSans,
			Style:  FONT_STYLE_ITALIC,
		}: goitalic.TTF,
		{
			Family: GoMono,
			Style:  FONT_STYLE_REGULAR,
		}: gomono.TTF,
		{
			Family: GoMono,
			Style:  FONT_STYLE_BOLD,
		}: gomonobold.TTF,
		{
			Family: GoMono,
			Style:  FONT_STYLE_ITALIC,
		}: gomonoitalic.TTF,
	}

	FontEncodings = make(map[Font]string, len(FontFaces))
	for f, ttf := range FontFaces {
		FontEncodings[f] = fmt.Sprintf("data:font/ttf;base64,%v", base64.StdEncoding.EncodeToString(ttf))
	}
}
