package audexporter_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"cdr.dev/slog"

	tassert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.audgraph.dev/aud/audexporter"
	"oss.audgraph.dev/aud/audrenderers/audfonts"
	"oss.audgraph.dev/aud/audtarget"
	"oss.audgraph.dev/aud/audtrace"
	"oss.audgraph.dev/aud/lib/diff"
	"oss.audgraph.dev/aud/lib/log"
)

type fakeRuler struct{}

func (fakeRuler) Measure(f audfonts.Font, s string) (width, height int) {
	return len(s) * f.Size, f.Size
}

type testCase struct {
	name  string
	trace string

	assertions func(t *testing.T, d *audtarget.Diagram)
}

func TestExport(t *testing.T) {
	t.Parallel()

	t.Run("nodes", testNodes)
	t.Run("connections", testConnections)
	t.Run("golden", testGolden)
}

func testNodes(t *testing.T) {
	tcs := []testCase{
		{
			name: "categories",
			trace: `{"kind":"node-created","nodeId":"a","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"b","nodeType":"BiquadFilterNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"c","nodeType":"AnalyserNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"d","nodeType":"AudioDestinationNode","numberOfInputs":1,"numberOfOutputs":0}`,
			assertions: func(t *testing.T, d *audtarget.Diagram) {
				require.Len(t, d.Nodes, 4)
				tassert.Equal(t, audtarget.CategorySource, d.Nodes[0].Category)
				tassert.Equal(t, audtarget.CategoryProcessing, d.Nodes[1].Category)
				tassert.Equal(t, audtarget.CategoryAnalysis, d.Nodes[2].Category)
				tassert.Equal(t, audtarget.CategoryDestination, d.Nodes[3].Category)
			},
		},
		{
			name: "unplaced_has_no_pos",
			trace: `{"kind":"node-created","nodeId":"a","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"b","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-placed","nodeId":"b","x":100,"y":100}`,
			assertions: func(t *testing.T, d *audtarget.Diagram) {
				require.Len(t, d.Nodes, 2)
				tassert.Nil(t, d.Nodes[0].Pos)
				require.NotNil(t, d.Nodes[1].Pos)
				// Center (100, 100) converted to the top-left corner.
				tassert.Equal(t, 100-d.Nodes[1].Width/2, d.Nodes[1].Pos.X)
				tassert.Equal(t, 100-d.Nodes[1].Height/2, d.Nodes[1].Pos.Y)
			},
		},
		{
			name: "ports_flattened_in_order",
			trace: `{"kind":"node-created","nodeId":"g","nodeType":"GainNode","numberOfInputs":2,"numberOfOutputs":1}
{"kind":"param-created","nodeId":"g","paramId":"gain","paramType":"gain"}`,
			assertions: func(t *testing.T, d *audtarget.Diagram) {
				require.Len(t, d.Nodes, 1)
				n := d.Nodes[0]
				require.Len(t, n.Ports, 4)
				tassert.Equal(t, "g-input-0", n.Ports[0].ID)
				tassert.Equal(t, "g-input-1", n.Ports[1].ID)
				tassert.Equal(t, "g-output-0", n.Ports[2].ID)
				tassert.Equal(t, "g-param-gain", n.Ports[3].ID)

				params := n.PortsByType(audtarget.PortTypeParam)
				require.Len(t, params, 1)
				tassert.Equal(t, "gain", params[0].Label)
				tassert.NotZero(t, params[0].LabelWidth)

				// Input and output ports carry no label.
				tassert.Empty(t, n.Ports[0].Label)
				tassert.Zero(t, n.Ports[0].LabelWidth)
			},
		},
	}

	runa(t, tcs)
}

func testConnections(t *testing.T) {
	tcs := []testCase{
		{
			name: "wires_in_creation_order",
			trace: `{"kind":"node-created","nodeId":"o","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"g","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"d","nodeType":"AudioDestinationNode","numberOfInputs":1,"numberOfOutputs":0}
{"kind":"param-created","nodeId":"g","paramId":"gain","paramType":"gain"}
{"kind":"nodes-connected","sourceId":"g","destinationId":"d"}
{"kind":"nodes-connected","sourceId":"o","destinationId":"g","destinationParamId":"gain"}`,
			assertions: func(t *testing.T, d *audtarget.Diagram) {
				require.Len(t, d.Connections, 2)
				tassert.Equal(t, "g-output-0->d-input-0", d.Connections[0].ID)
				tassert.Equal(t, "o-output-0->g-param-gain", d.Connections[1].ID)
				tassert.Equal(t, "g-param-gain", d.Connections[1].DstPort)
			},
		},
	}

	runa(t, tcs)
}

func testGolden(t *testing.T) {
	tcs := []testCase{
		{
			name: "placed_pair",
			trace: `{"kind":"context-created","sampleRate":44100}
{"kind":"node-created","nodeId":"osc","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"dest","nodeType":"AudioDestinationNode","numberOfInputs":1,"numberOfOutputs":0}
{"kind":"nodes-connected","sourceId":"osc","destinationId":"dest"}
{"kind":"node-placed","nodeId":"osc","x":150,"y":80}
{"kind":"node-placed","nodeId":"dest","x":600,"y":80}`,
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := export(t, tc)
			err := diff.TestdataJSON(filepath.Join("..", "testdata", "audexporter", t.Name()), got)
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func runa(t *testing.T, tcs []testCase) {
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := export(t, tc)
			if tc.assertions != nil {
				t.Run("assertions", func(t *testing.T) {
					tc.assertions(t, got)
				})
			}
		})
	}
}

func export(t *testing.T, tc testCase) *audtarget.Diagram {
	ctx := context.Background()
	ctx = log.WithTB(ctx, t, nil)
	ctx = log.Leveled(ctx, slog.LevelDebug)

	g, err := audtrace.Load(ctx, t.Name(), fakeRuler{}, strings.NewReader(tc.trace))
	if err != nil {
		t.Fatal(err)
	}

	got, err := audexporter.Export(ctx, g)
	if err != nil {
		t.Fatal(err)
	}
	return got
}
