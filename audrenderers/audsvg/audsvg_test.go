package audsvg_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.audgraph.dev/aud/audexporter"
	"oss.audgraph.dev/aud/audrenderers/audfonts"
	"oss.audgraph.dev/aud/audrenderers/audsvg"
	"oss.audgraph.dev/aud/audtrace"
	"oss.audgraph.dev/aud/lib/go2"
	"oss.audgraph.dev/aud/lib/log"
)

type fakeRuler struct{}

func (fakeRuler) Measure(f audfonts.Font, s string) (width, height int) {
	return len(s) * f.Size, f.Size
}

const patchTrace = `{"kind":"context-created","sampleRate":44100}
{"kind":"node-created","nodeId":"osc","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"gain","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"dest","nodeType":"AudioDestinationNode","numberOfInputs":1,"numberOfOutputs":0}
{"kind":"param-created","nodeId":"gain","paramId":"gain","paramType":"gain"}
{"kind":"nodes-connected","sourceId":"osc","destinationId":"gain"}
{"kind":"nodes-connected","sourceId":"gain","destinationId":"dest"}
{"kind":"node-placed","nodeId":"osc","x":120,"y":90}
{"kind":"node-placed","nodeId":"gain","x":420,"y":90}
{"kind":"node-placed","nodeId":"dest","x":760,"y":90}`

func render(t *testing.T, trace string, opts *audsvg.RenderOpts) []byte {
	ctx := log.WithTB(context.Background(), t, nil)
	g, err := audtrace.Load(ctx, t.Name(), fakeRuler{}, strings.NewReader(trace))
	require.NoError(t, err)
	diagram, err := audexporter.Export(ctx, g)
	require.NoError(t, err)
	out, err := audsvg.Render(diagram, opts)
	require.NoError(t, err)
	return out
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("basic", func(t *testing.T) {
		t.Parallel()
		out := render(t, patchTrace, nil)
		assert.True(t, strings.HasPrefix(string(out), `<?xml version="1.0" encoding="utf-8"?>`))
		assert.Contains(t, string(out), "data-aud-version")

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
		require.NoError(t, err)

		assert.Equal(t, 3, doc.Find("g[data-node-id]").Length())
		// osc: 1 port, gain: 3 ports, dest: 1 port.
		assert.Equal(t, 5, doc.Find("circle.port").Length())
		assert.Equal(t, 1, doc.Find("circle.port-param").Length())
		assert.Equal(t, 2, doc.Find("path.wire").Length())

		wire := doc.Find("path.wire").First()
		d, _ := wire.Attr("d")
		assert.True(t, strings.HasPrefix(d, "M "))
		assert.Contains(t, d, "C ")
		markerEnd, _ := wire.Attr("marker-end")
		assert.Contains(t, markerEnd, "arrowhead")

		labels := doc.Find("text.text-bold").Map(func(i int, s *goquery.Selection) string {
			return s.Text()
		})
		assert.Contains(t, labels, "Oscillator 1")
		assert.Contains(t, labels, "Gain 2")

		// Param labels render in the regular face.
		assert.Equal(t, "gain", doc.Find("text.text").First().Text())

		// Both faces appear, so both get embedded.
		assert.Equal(t, 2, strings.Count(string(out), "@font-face"))
	})

	t.Run("skips_unplaced", func(t *testing.T) {
		t.Parallel()
		trace := `{"kind":"node-created","nodeId":"a","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"b","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"nodes-connected","sourceId":"a","destinationId":"b"}
{"kind":"node-placed","nodeId":"a","x":100,"y":100}`
		out := render(t, trace, nil)

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 1, doc.Find("g[data-node-id]").Length())
		// A wire into an unplaced node has no endpoint to draw to.
		assert.Equal(t, 0, doc.Find("path.wire").Length())
	})

	t.Run("no_xml_tag", func(t *testing.T) {
		t.Parallel()
		out := render(t, patchTrace, &audsvg.RenderOpts{NoXMLTag: go2.Pointer(true)})
		assert.True(t, strings.HasPrefix(string(out), "<svg"))
	})

	t.Run("terminal_theme", func(t *testing.T) {
		t.Parallel()
		out := render(t, patchTrace, &audsvg.RenderOpts{ThemeID: go2.Pointer(int64(3))})

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
		require.NoError(t, err)
		rx, _ := doc.Find("rect.node-body").First().Attr("rx")
		assert.Equal(t, "0", rx)
	})

	t.Run("unknown_theme", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)
		g, err := audtrace.Load(ctx, t.Name(), fakeRuler{}, strings.NewReader(patchTrace))
		require.NoError(t, err)
		diagram, err := audexporter.Export(ctx, g)
		require.NoError(t, err)

		_, err = audsvg.Render(diagram, &audsvg.RenderOpts{ThemeID: go2.Pointer(int64(99))})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "99")
	})

	t.Run("empty_diagram", func(t *testing.T) {
		t.Parallel()
		out := render(t, `{"kind":"context-created","sampleRate":48000}`, nil)
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 0, doc.Find("g[data-node-id]").Length())
	})
}
