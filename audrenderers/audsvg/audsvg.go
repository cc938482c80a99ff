// audsvg implements an SVG renderer for aud diagrams.
// The input is audexporter's output
package audsvg

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"strings"

	"oss.audgraph.dev/aud/audrenderers/audfonts"
	"oss.audgraph.dev/aud/audtarget"
	"oss.audgraph.dev/aud/audthemes"
	"oss.audgraph.dev/aud/audthemes/audthemescatalog"
	"oss.audgraph.dev/aud/lib/color"
	"oss.audgraph.dev/aud/lib/geo"
	"oss.audgraph.dev/aud/lib/svg"
	"oss.audgraph.dev/aud/lib/version"
)

const (
	DEFAULT_PADDING = 48

	// Gap between a param port's circle and its label.
	paramLabelGap = 6

	// Wires leave and enter horizontally; the bend never collapses below
	// this even when the ports are close.
	minWireBend = 40.
)

//go:embed style.css
var baseStylesheet string

type RenderOpts struct {
	Pad      *int64
	ThemeID  *int64
	NoXMLTag *bool
}

func dimensions(diagram *audtarget.Diagram, pad int) (left, top, width, height int) {
	tl, br := diagram.BoundingBox()
	left = tl.X - pad
	top = tl.Y - pad
	width = br.X - tl.X + pad*2
	height = br.Y - tl.Y + pad*2

	return left, top, width, height
}

func Render(diagram *audtarget.Diagram, opts *RenderOpts) ([]byte, error) {
	pad := DEFAULT_PADDING
	themeID := audthemescatalog.StudioLight.ID
	noXMLTag := false
	if opts != nil {
		if opts.Pad != nil {
			pad = int(*opts.Pad)
		}
		if opts.ThemeID != nil {
			themeID = *opts.ThemeID
		}
		if opts.NoXMLTag != nil {
			noXMLTag = *opts.NoXMLTag
		}
	}

	theme := audthemescatalog.Find(themeID)
	if theme.Name == "" {
		return nil, fmt.Errorf("theme %d does not exist", themeID)
	}

	fontFamily := audfonts.GoSans
	if theme.SpecialRules.Mono {
		fontFamily = audfonts.GoMono
	}

	// Apply hash on IDs for targeting, to be specific for this diagram
	diagramHash, err := diagram.HashID()
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}

	if len(diagram.Connections) > 0 {
		defineArrowheadMarker(buf, diagramHash, theme)
	}

	// Wires first so nodes paint over their endpoints.
	anchors := portAnchors(diagram)
	for _, c := range diagram.Connections {
		drawConnection(buf, diagramHash, c, anchors)
	}
	for _, n := range diagram.Nodes {
		// Unplaced nodes are not renderable.
		if n.Pos == nil {
			continue
		}
		err := drawNode(buf, n, theme)
		if err != nil {
			return nil, err
		}
	}

	left, top, w, h := dimensions(diagram, pad)

	// generate style elements that will be appended to the SVG tag
	upperBuf := &bytes.Buffer{}
	EmbedFonts(upperBuf, diagramHash, buf.String(), fontFamily)
	themeStylesheet, err := themeCSS(diagramHash, theme)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(upperBuf, `<style type="text/css"><![CDATA[%s%s]]></style>`, baseStylesheet, themeStylesheet)

	backgroundEl := fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"></rect>`,
		left, top, w, h, theme.Colors.Neutrals.N7)

	xmlTag := ""
	if !noXMLTag {
		xmlTag = `<?xml version="1.0" encoding="utf-8"?>`
	}
	fitToScreenWrapperOpening := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" data-aud-version="%s" preserveAspectRatio="xMinYMin meet" viewBox="0 0 %d %d">`,
		version.Version,
		w, h,
	)

	docRendered := fmt.Sprintf(`%s%s<svg class="%s" width="%d" height="%d" viewBox="%d %d %d %d">%s%s%s</svg></svg>`,
		xmlTag,
		fitToScreenWrapperOpening,
		strings.Join([]string{diagramHash, "aud-svg"}, " "),
		w, h, left, top, w, h,
		backgroundEl,
		upperBuf.String(),
		buf.String(),
	)
	return []byte(docRendered), nil
}

// portAnchors maps every placed node's port id to the point wires attach to:
// just outside the port circle, on the side the wire approaches from.
func portAnchors(diagram *audtarget.Diagram) map[string]*geo.Point {
	anchors := make(map[string]*geo.Point)
	for _, n := range diagram.Nodes {
		if n.Pos == nil {
			continue
		}
		for _, p := range n.Ports {
			x := float64(n.Pos.X) + p.X
			y := float64(n.Pos.Y) + p.Y
			if p.Type == audtarget.PortTypeOutput {
				x += audtarget.PortRadius
			} else {
				x -= audtarget.PortRadius
			}
			anchors[p.ID] = geo.NewPoint(x, y)
		}
	}
	return anchors
}

// drawConnection draws one wire as a cubic bezier that leaves the source
// port and enters the destination port horizontally. Wires whose endpoints
// are not both placed are skipped.
func drawConnection(buf *bytes.Buffer, diagramHash string, c audtarget.Connection, anchors map[string]*geo.Point) {
	src, ok := anchors[c.SrcPort]
	if !ok {
		return
	}
	dst, ok := anchors[c.DstPort]
	if !ok {
		return
	}

	bend := math.Max(minWireBend, math.Abs(dst.X-src.X)/2)
	pb := svg.NewPathBuilder(geo.NewPoint(0, 0), 1, 1)
	pb.StartAt(src)
	pb.C(false, src.X+bend, src.Y, dst.X-bend, dst.Y, dst.X, dst.Y)

	fmt.Fprintf(buf, `<path class="wire" data-wire-id="%s" d="%s" marker-end="url(#%s-arrowhead)" />`,
		svg.EscapeText(c.ID), pb.PathData(), diagramHash)
}

func drawNode(buf *bytes.Buffer, n audtarget.Node, theme audthemes.Theme) error {
	fill := categoryFill(theme, n.Category)
	stroke, err := color.Darken(fill)
	if err != nil {
		return err
	}

	fmt.Fprintf(buf, `<g data-node-id="%s">`, svg.EscapeText(n.ID))

	rx := audtarget.NodeCornerRadius
	if theme.SpecialRules.NoCornerRadius {
		rx = 0
	}
	fmt.Fprintf(buf, `<rect class="node-body" x="%d" y="%d" width="%d" height="%d" rx="%d" fill="%s" stroke="%s" />`,
		n.Pos.X, n.Pos.Y, n.Width, n.Height, rx, fill, stroke)

	ink := theme.Colors.Neutrals.N1
	lum, err := color.LuminanceCategory(fill)
	if err != nil {
		return err
	}
	if lum == "dark" || lum == "darker" {
		ink = theme.Colors.Neutrals.N7
	}
	fmt.Fprintf(buf, `<text class="text-bold" text-anchor="middle" x="%d" y="%d" style="font-size: %dpx; fill: %s;">%s</text>`,
		n.Pos.X+n.Width/2,
		n.Pos.Y+int(audtarget.PortSectionTopPadding)/2+int(float64(n.LabelHeight)*0.3),
		audfonts.FONT_SIZE_M, ink, svg.EscapeText(n.Label))

	for _, p := range n.Ports {
		cx := float64(n.Pos.X) + p.X
		cy := float64(n.Pos.Y) + p.Y
		class := "port"
		if p.Type == audtarget.PortTypeParam {
			class = "port port-param"
		}
		fmt.Fprintf(buf, `<circle class="%s" data-port-id="%s" cx="%v" cy="%v" r="%d" />`,
			class, svg.EscapeText(p.ID), cx, cy, audtarget.PortRadius)

		if p.Label != "" {
			fmt.Fprintf(buf, `<text class="text" x="%v" y="%v" style="font-size: %dpx;">%s</text>`,
				cx+audtarget.PortRadius+paramLabelGap,
				cy+float64(p.LabelHeight)*0.3,
				audfonts.FONT_SIZE_XS, svg.EscapeText(p.Label))
		}
	}

	fmt.Fprint(buf, `</g>`)
	return nil
}

func categoryFill(theme audthemes.Theme, category audtarget.Category) string {
	switch category {
	case audtarget.CategorySource:
		return theme.Colors.Source
	case audtarget.CategoryDestination:
		return theme.Colors.Destination
	case audtarget.CategoryAnalysis:
		return theme.Colors.Analysis
	default:
		return theme.Colors.Processing
	}
}

func defineArrowheadMarker(buf *bytes.Buffer, diagramHash string, theme audthemes.Theme) {
	fmt.Fprintf(buf, `<defs><marker id="%s-arrowhead" markerWidth="8" markerHeight="8" refX="7" refY="4" orient="auto" markerUnits="userSpaceOnUse"><path d="M 0 0 L 8 4 L 0 8 Z" fill="%s" /></marker></defs>`,
		diagramHash, theme.Colors.Wire)
}

// TODO include only colors that are being used to reduce size
func themeCSS(diagramHash string, theme audthemes.Theme) (string, error) {
	paramStroke, err := color.Darken(theme.Colors.Param)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
.%s text { fill: %s; }
.%s .wire { stroke: %s; stroke-width: %d; }
.%s .node-body { stroke-width: %d; }
.%s .port { fill: %s; stroke: %s; stroke-width: %d; }
.%s .port-param { fill: %s; stroke: %s; }`,
		diagramHash, theme.Colors.Neutrals.N1,
		diagramHash, theme.Colors.Wire, audtarget.WireStrokeWidth,
		diagramHash, audtarget.NodeStrokeWidth,
		diagramHash, theme.Colors.Neutrals.N7, theme.Colors.Neutrals.N2, audtarget.NodeStrokeWidth,
		diagramHash, theme.Colors.Param, paramStroke,
	), nil
}

func EmbedFonts(buf *bytes.Buffer, diagramHash, source string, fontFamily audfonts.FontFamily) {
	fmt.Fprint(buf, `<style type="text/css"><![CDATA[`)

	appendOnTrigger(
		buf,
		source,
		[]string{
			`class="text"`,
			`class="text `,
		},
		fmt.Sprintf(`
.%s .text {
	font-family: "%s-font-regular";
}
@font-face {
	font-family: %s-font-regular;
	src: url("%s");
}`,
			diagramHash,
			diagramHash,
			diagramHash,
			audfonts.FontEncodings[fontFamily.Font(0, audfonts.FONT_STYLE_REGULAR)],
		),
	)

	appendOnTrigger(
		buf,
		source,
		[]string{
			`class="text-bold"`,
			`class="text-bold `,
		},
		fmt.Sprintf(`
.%s .text-bold {
	font-family: "%s-font-bold";
}
@font-face {
	font-family: %s-font-bold;
	src: url("%s");
}`,
			diagramHash,
			diagramHash,
			diagramHash,
			audfonts.FontEncodings[fontFamily.Font(0, audfonts.FONT_STYLE_BOLD)],
		),
	)

	fmt.Fprint(buf, `]]></style>`)
}

func appendOnTrigger(buf *bytes.Buffer, source string, triggers []string, newContent string) {
	for _, trigger := range triggers {
		if strings.Contains(source, trigger) {
			fmt.Fprint(buf, newContent)
			break
		}
	}
}
