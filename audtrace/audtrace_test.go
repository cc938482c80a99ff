package audtrace_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.audgraph.dev/aud/audgraph"
	"oss.audgraph.dev/aud/audrenderers/audfonts"
	"oss.audgraph.dev/aud/audtrace"
	"oss.audgraph.dev/aud/lib/log"
)

type fakeRuler struct{}

func (fakeRuler) Measure(f audfonts.Font, s string) (width, height int) {
	return len(s) * f.Size, f.Size
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("kinds_and_blank_lines", func(t *testing.T) {
		t.Parallel()
		evs, err := audtrace.Parse(strings.NewReader(`
{"kind":"context-created","contextId":"ctx1","sampleRate":48000}

{"kind":"node-created","nodeId":"n1","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"nodes-connected","sourceId":"n1","destinationId":"n2","destinationInputIndex":1}
`))
		require.NoError(t, err)
		require.Len(t, evs, 3)
		assert.Equal(t, audtrace.KindContextCreated, evs[0].Kind)
		assert.Equal(t, 48000, evs[0].SampleRate)
		assert.Equal(t, "OscillatorNode", evs[1].NodeType)
		// Absent and present indices are distinguishable after decode.
		assert.Nil(t, evs[2].SourceOutput)
		require.NotNil(t, evs[2].DestinationInput)
		assert.Equal(t, 1, *evs[2].DestinationInput)
	})

	t.Run("malformed_line", func(t *testing.T) {
		t.Parallel()
		_, err := audtrace.Parse(strings.NewReader(`{"kind":"context-created"}
{not json}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("missing_kind", func(t *testing.T) {
		t.Parallel()
		_, err := audtrace.Parse(strings.NewReader(`{"nodeId":"n1"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		trace  string
		expErr string

		assertions func(t *testing.T, g *audgraph.Graph)
	}{
		{
			name: "builds_graph",
			trace: `{"kind":"context-created","contextId":"ctx1","sampleRate":44100}
{"kind":"node-created","nodeId":"osc","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"gain","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"dest","nodeType":"AudioDestinationNode","numberOfInputs":1,"numberOfOutputs":0}
{"kind":"param-created","nodeId":"gain","paramId":"gain","paramType":"gain"}
{"kind":"nodes-connected","sourceId":"osc","sourceOutputIndex":0,"destinationId":"gain","destinationInputIndex":0}
{"kind":"nodes-connected","sourceId":"gain","sourceOutputIndex":0,"destinationId":"dest","destinationInputIndex":0}
{"kind":"node-placed","nodeId":"osc","x":100,"y":80}
{"kind":"node-placed","nodeId":"gain","x":320,"y":80}
{"kind":"node-placed","nodeId":"dest","x":540,"y":80}`,
			assertions: func(t *testing.T, g *audgraph.Graph) {
				// The trace's context id wins over the caller-supplied name.
				assert.Equal(t, "ctx1", g.Name)
				assert.Equal(t, 44100, g.SampleRate)
				require.Len(t, g.Nodes, 3)
				assert.Equal(t, "Oscillator 1", g.Nodes[0].Label)
				assert.Equal(t, "Gain 2", g.Nodes[1].Label)
				assert.Equal(t, "AudioDestination 3", g.Nodes[2].Label)

				gain := g.Node("gain")
				require.NotNil(t, gain)
				require.NotNil(t, gain.Ports["gain-param-gain"])

				require.Len(t, g.Edges, 2)
				assert.Equal(t, "osc-output-0->gain-input-0", g.Edges[0].ID)

				for _, n := range g.Nodes {
					assert.True(t, n.Placed(), "node %q unplaced", n.ID)
				}
				assert.Equal(t, 320., g.Node("gain").Center().X)
			},
		},
		{
			name: "coerces_missing_indices",
			trace: `{"kind":"node-created","nodeId":"o","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"d","nodeType":"AudioDestinationNode","numberOfInputs":1,"numberOfOutputs":0}
{"kind":"nodes-connected","sourceId":"o","destinationId":"d"}`,
			assertions: func(t *testing.T, g *audgraph.Graph) {
				require.Len(t, g.Edges, 1)
				assert.Equal(t, "o-output-0->d-input-0", g.Edges[0].ID)
			},
		},
		{
			name: "param_connection",
			trace: `{"kind":"node-created","nodeId":"lfo","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"g","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"param-created","nodeId":"g","paramId":"gain","paramType":"gain"}
{"kind":"nodes-connected","sourceId":"lfo","destinationId":"g","destinationParamId":"gain"}`,
			assertions: func(t *testing.T, g *audgraph.Graph) {
				require.Len(t, g.Edges, 1)
				assert.Equal(t, "lfo-output-0->g-param-gain", g.Edges[0].ID)
			},
		},
		{
			name: "disconnect_removes_wire",
			trace: `{"kind":"node-created","nodeId":"o","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"d","nodeType":"AudioDestinationNode","numberOfInputs":1,"numberOfOutputs":0}
{"kind":"nodes-connected","sourceId":"o","destinationId":"d"}
{"kind":"nodes-disconnected","sourceId":"o","destinationId":"d"}`,
			assertions: func(t *testing.T, g *audgraph.Graph) {
				assert.Empty(t, g.Edges)
			},
		},
		{
			name: "dispose_removes_node_and_wires",
			trace: `{"kind":"node-created","nodeId":"o","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"d","nodeType":"AudioDestinationNode","numberOfInputs":1,"numberOfOutputs":0}
{"kind":"nodes-connected","sourceId":"o","destinationId":"d"}
{"kind":"node-disposed","nodeId":"o"}`,
			assertions: func(t *testing.T, g *audgraph.Graph) {
				assert.Nil(t, g.Node("o"))
				require.Len(t, g.Nodes, 1)
				assert.Empty(t, g.Edges)
			},
		},
		{
			name: "unknown_kind_skipped",
			trace: `{"kind":"node-created","nodeId":"o","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"window-resized","nodeId":"o"}`,
			assertions: func(t *testing.T, g *audgraph.Graph) {
				assert.Len(t, g.Nodes, 1)
			},
		},
		{
			name: "param_for_unknown_node",
			trace: `{"kind":"param-created","nodeId":"ghost","paramId":"gain","paramType":"gain"}`,

			expErr: `trace event 1 (param-created): param-created: no node "ghost"`,
		},
		{
			name: "connect_unknown_node",
			trace: `{"kind":"node-created","nodeId":"o","nodeType":"OscillatorNode","numberOfInputs":0,"numberOfOutputs":1}
{"kind":"nodes-connected","sourceId":"o","destinationId":"ghost"}`,

			expErr: `trace event 2 (nodes-connected): connect: no node "ghost"`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := log.WithTB(context.Background(), t, nil)
			g, err := audtrace.Load(ctx, t.Name(), fakeRuler{}, strings.NewReader(tc.trace))
			if tc.expErr != "" {
				require.Error(t, err)
				assert.Equal(t, tc.expErr, err.Error())
				return
			}
			require.NoError(t, err)

			if tc.assertions != nil {
				t.Run("assertions", func(t *testing.T) {
					tc.assertions(t, g)
				})
			}
		})
	}
}
