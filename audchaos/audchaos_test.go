package audchaos_test

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/util-go/xjson"

	"oss.audgraph.dev/aud/audchaos"
	"oss.audgraph.dev/aud/audexporter"
	"oss.audgraph.dev/aud/audgraph"
	"oss.audgraph.dev/aud/audrenderers/audsvg"
	"oss.audgraph.dev/aud/audtrace"
	"oss.audgraph.dev/aud/lib/log"
	"oss.audgraph.dev/aud/lib/textmeasure"
)

// usage: AUD_CHAOS_MAXI=100 AUD_CHAOS_N=100 go test ./audchaos
//
// AUD_CHAOS_MAXI controls the number of events the trace generator should
// emit into each input trace. It's roughly equivalent to the complexity
// level of each generated session.
//
// AUD_CHAOS_N controls the number of traces to generate and run the full
// pipeline on.
//
// All generated traces are stored in ./out/<n>.trace and also
// ./out/<n>.trace.goenc. The goenc version is the trace encoded as a Go
// string. It lets you replay a test by adding it to testPinned below as you
// can just copy paste the go string in.
func TestAudChaos(t *testing.T) {
	t.Parallel()

	const outDir = "out"
	err := os.MkdirAll(outDir, 0755)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("writing generated traces to %s", outDir)

	t.Run("pinned", func(t *testing.T) {
		testPinned(t, outDir)
	})

	n := 1
	if os.Getenv("AUD_CHAOS_N") != "" {
		envn, err := strconv.Atoi(os.Getenv("AUD_CHAOS_N"))
		if err != nil {
			t.Errorf("failed to atoi $AUD_CHAOS_N: %v", err)
		} else {
			n = envn
		}
	}

	maxi := 50
	if os.Getenv("AUD_CHAOS_MAXI") != "" {
		envMaxi, err := strconv.Atoi(os.Getenv("AUD_CHAOS_MAXI"))
		if err != nil {
			t.Errorf("failed to atoi $AUD_CHAOS_MAXI: %v", err)
		} else {
			maxi = envMaxi
		}
	}

	for i := 0; i < n; i++ {
		i := i
		t.Run("", func(t *testing.T) {
			t.Parallel()

			trace, err := audchaos.GenTrace(maxi)
			if err != nil {
				t.Fatal(err)
			}

			tracePath := filepath.Join(outDir, fmt.Sprintf("%d.trace", i))
			test(t, tracePath, trace)
		})
	}
}

func test(t *testing.T, tracePath, trace string) {
	t.Logf("writing trace to %v (%d bytes)", tracePath, len(trace))
	err := ioutil.WriteFile(tracePath, []byte(trace), 0644)
	if err != nil {
		t.Fatal(err)
	}

	goencTrace := fmt.Sprintf("%#v", trace)
	t.Logf("writing trace.goenc to %v (%d bytes)", tracePath+".goenc", len(goencTrace))
	err = ioutil.WriteFile(tracePath+".goenc", []byte(goencTrace), 0644)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("layout", func(t *testing.T) {
		defer func() {
			r := recover()
			if r != nil {
				t.Errorf("recovered layout panic: %#v\n%s", r, debug.Stack())
			}
		}()

		ctx := log.WithTB(context.Background(), t, nil)

		ruler, err := textmeasure.NewRuler()
		assert.Nil(t, err)

		g, err := audtrace.Load(ctx, tracePath, ruler, strings.NewReader(trace))
		if err != nil {
			t.Fatal(err)
		}

		assertGraphInvariants(t, g)

		diagram, err := audexporter.Export(ctx, g)
		if err != nil {
			t.Fatal(err)
		}
		_, err = audsvg.Render(diagram, nil)
		if err != nil {
			t.Fatal(err)
		}
	})
}

// assertGraphInvariants sweeps every node for the guarantees the layout
// holds no matter what order the trace grew the node in: ports sit on the
// node's edges strictly between its corners, and wires only reference ports
// that exist.
func assertGraphInvariants(t *testing.T, g *audgraph.Graph) {
	seenLabels := make(map[string]string)
	for _, n := range g.Nodes {
		if n.Box.Width <= 0 || n.Box.Height <= 0 {
			t.Errorf("node %q has an empty box: %s", n.ID, xjson.Marshal(n))
		}
		if prev, ok := seenLabels[n.Label]; ok {
			t.Errorf("nodes %q and %q share label %q", prev, n.ID, n.Label)
		}
		seenLabels[n.Label] = n.ID

		for _, p := range n.PortsArray {
			if p.Y <= 0 || p.Y >= n.Box.Height {
				t.Errorf("port %q lies outside node %q: %s", p.ID, n.ID, xjson.Marshal(n))
			}
			switch p.Kind {
			case audgraph.PortOutput:
				if p.X != n.Box.Width {
					t.Errorf("output port %q is off the right edge of node %q: %s", p.ID, n.ID, xjson.Marshal(n))
				}
			default:
				if p.X != 0 {
					t.Errorf("port %q is off the left edge of node %q: %s", p.ID, n.ID, xjson.Marshal(n))
				}
			}
		}
	}

	for _, e := range g.Edges {
		if g.Node(e.Src.ID) == nil || g.Node(e.Dst.ID) == nil {
			t.Errorf("wire %q references a disposed node", e.ID)
			continue
		}
		if e.Src.Ports[e.SrcPort] == nil || e.Dst.Ports[e.DstPort] == nil {
			t.Errorf("wire %q references a missing port: %s", e.ID, xjson.Marshal(e))
		}
	}
}

func testPinned(t *testing.T, outDir string) {
	t.Parallel()

	outDir = filepath.Join(outDir, t.Name())
	err := os.MkdirAll(outDir, 0755)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("writing generated traces to %v", outDir)

	testCases := []struct {
		name  string
		trace string
	}{
		{
			name: "lfo drives oscillator frequency",
			trace: `{"kind":"context-created","contextId":"ctx-1","sampleRate":44100}
{"kind":"node-created","nodeId":"osc","nodeType":"OscillatorNode","numberOfOutputs":1}
{"kind":"param-created","nodeId":"osc","paramId":"frequency","paramType":"frequency"}
{"kind":"param-created","nodeId":"osc","paramId":"detune","paramType":"detune"}
{"kind":"node-created","nodeId":"lfo","nodeType":"OscillatorNode","numberOfOutputs":1}
{"kind":"nodes-connected","sourceId":"lfo","destinationId":"osc","destinationParamId":"frequency"}
{"kind":"node-placed","nodeId":"osc","x":400,"y":200}
`,
		},
		{
			name: "indices omitted for default ports",
			trace: `{"kind":"context-created","sampleRate":48000}
{"kind":"node-created","nodeId":"a","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"b","nodeType":"AudioDestinationNode","numberOfInputs":1}
{"kind":"nodes-connected","sourceId":"a","destinationId":"b"}
{"kind":"nodes-disconnected","sourceId":"a","sourceOutputIndex":0,"destinationId":"b","destinationInputIndex":0}
`,
		},
		{
			name: "dispose cascades over live wires",
			trace: `{"kind":"context-created","sampleRate":44100}
{"kind":"node-created","nodeId":"src","nodeType":"ConstantSourceNode","numberOfOutputs":1}
{"kind":"node-created","nodeId":"mid","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"param-created","nodeId":"mid","paramId":"gain","paramType":"gain"}
{"kind":"node-created","nodeId":"out","nodeType":"AudioDestinationNode","numberOfInputs":1}
{"kind":"nodes-connected","sourceId":"src","destinationId":"mid"}
{"kind":"nodes-connected","sourceId":"src","destinationId":"mid","destinationParamId":"gain"}
{"kind":"nodes-connected","sourceId":"mid","destinationId":"out"}
{"kind":"node-disposed","nodeId":"mid"}
{"kind":"nodes-connected","sourceId":"src","destinationId":"out"}
`,
		},
		{
			name: "duplicate connect collapses to one wire",
			trace: `{"kind":"context-created","sampleRate":44100}
{"kind":"node-created","nodeId":"a","nodeType":"OscillatorNode","numberOfOutputs":1}
{"kind":"node-created","nodeId":"b","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"nodes-connected","sourceId":"a","destinationId":"b"}
{"kind":"nodes-connected","sourceId":"a","sourceOutputIndex":0,"destinationId":"b","destinationInputIndex":0}
{"kind":"nodes-disconnected","sourceId":"a","destinationId":"b"}
`,
		},
		{
			name: "unknown kinds skipped",
			trace: `{"kind":"context-created","sampleRate":44100}
{"kind":"screen-resized","x":1920,"y":1080}
{"kind":"node-created","nodeId":"a","nodeType":"AnalyserNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"selection-changed","nodeId":"a"}
{"kind":"node-placed","nodeId":"a","x":100,"y":100}
`,
		},
		{
			name: "merger fans in on distinct inputs",
			trace: `{"kind":"context-created","sampleRate":96000}
{"kind":"node-created","nodeId":"m","nodeType":"ChannelMergerNode","numberOfInputs":6,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"s1","nodeType":"OscillatorNode","numberOfOutputs":1}
{"kind":"node-created","nodeId":"s2","nodeType":"OscillatorNode","numberOfOutputs":1}
{"kind":"nodes-connected","sourceId":"s1","destinationId":"m","destinationInputIndex":0}
{"kind":"nodes-connected","sourceId":"s2","destinationId":"m","destinationInputIndex":5}
{"kind":"node-placed","nodeId":"m","x":640,"y":360}
`,
		},
		{
			name: "recreated id keeps its first label",
			trace: `{"kind":"context-created","sampleRate":44100}
{"kind":"node-created","nodeId":"a","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"a","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
{"kind":"node-created","nodeId":"b","nodeType":"GainNode","numberOfInputs":1,"numberOfOutputs":1}
`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tracePath := filepath.Join(outDir, fmt.Sprintf("%s.trace", tc.name))
			test(t, tracePath, tc.trace)
		})
	}
}
