// Package audchaos generates random instrumentation traces to stress the
// layout pipeline end to end.
package audchaos

import (
	"encoding/json"
	"fmt"
	mathrand "math/rand"
	"strings"
	"time"

	"oss.terrastruct.com/xrand"

	"oss.audgraph.dev/aud/audgraph"
	"oss.audgraph.dev/aud/audtrace"
	"oss.audgraph.dev/aud/lib/go2"
)

// GenTrace generates a random trace with up to maxi events after the opening
// context-created. Every generated trace replays cleanly: wires are only
// disconnected while they exist and nodes are only referenced while alive.
// Unknown event kinds and omitted port indices are generated on purpose,
// loaders are expected to tolerate both.
func GenTrace(maxi int) (_ string, err error) {
	gs := &traceGenState{
		rand:   mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
		specs:  make(map[string]nodeSpec),
		params: make(map[string][]string),
		wires:  make(map[string]audtrace.Event),
	}
	err = gs.gen(maxi)
	if err != nil {
		return "", err
	}
	return gs.b.String(), nil
}

type nodeSpec struct {
	Type       string
	NumInputs  int
	NumOutputs int
	Params     []string
}

// nodeSpecs mirrors the node constructors of a real audio host, with their
// true port counts and params.
var nodeSpecs = []nodeSpec{
	{"OscillatorNode", 0, 1, []string{"frequency", "detune"}},
	{"AudioBufferSourceNode", 0, 1, []string{"playbackRate", "detune"}},
	{"ConstantSourceNode", 0, 1, []string{"offset"}},
	{"MediaElementAudioSourceNode", 0, 1, nil},
	{"GainNode", 1, 1, []string{"gain"}},
	{"BiquadFilterNode", 1, 1, []string{"frequency", "detune", "Q", "gain"}},
	{"DelayNode", 1, 1, []string{"delayTime"}},
	{"DynamicsCompressorNode", 1, 1, []string{"threshold", "knee", "ratio", "attack", "release"}},
	{"StereoPannerNode", 1, 1, []string{"pan"}},
	{"PannerNode", 1, 1, []string{"positionX", "positionY", "positionZ", "orientationX", "orientationY", "orientationZ"}},
	{"ConvolverNode", 1, 1, nil},
	{"WaveShaperNode", 1, 1, nil},
	{"AnalyserNode", 1, 1, nil},
	{"ChannelSplitterNode", 1, 6, nil},
	{"ChannelMergerNode", 6, 1, nil},
	{"AudioDestinationNode", 1, 0, nil},
}

var sampleRates = []int{22050, 44100, 48000, 96000}

type traceGenState struct {
	rand *mathrand.Rand
	b    strings.Builder
	seq  int

	nodesArr []string
	specs    map[string]nodeSpec
	params   map[string][]string
	wiresArr []string
	wires    map[string]audtrace.Event
}

func (gs *traceGenState) gen(maxi int) error {
	maxi = gs.rand.Intn(maxi) + 1

	err := gs.emit(audtrace.Event{
		Kind:       audtrace.KindContextCreated,
		ContextID:  fmt.Sprintf("ctx-%d", gs.rand.Intn(1000)),
		SampleRate: sampleRates[gs.rand.Intn(len(sampleRates))],
	})
	if err != nil {
		return err
	}

	for i := 0; i < maxi; i++ {
		switch gs.roll(30, 40, 10, 10, 5, 5) {
		case 0:
			// 30% chance of creating a new node.
			_, err = gs.node()
		case 1:
			// 40% chance of wiring two random nodes together.
			err = gs.connect()
		case 2:
			// 10% chance of placing or moving a node.
			err = gs.place()
		case 3:
			// 10% chance of tearing down an existing wire.
			err = gs.disconnect()
		case 4:
			// 5% chance of disposing a node and everything wired to it.
			err = gs.dispose()
		case 5:
			// 5% chance of an event kind this version does not know about.
			err = gs.junk()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (gs *traceGenState) node() (string, error) {
	spec := nodeSpecs[gs.rand.Intn(len(nodeSpecs))]
	if gs.roll(90, 10) == 1 {
		// 10% chance of a node type this version has never heard of. The
		// label generator and renderer must take whatever the host sends.
		spec = nodeSpec{
			Type:       xrand.String(gs.rand.Intn(12)+1, []rune{'\n'}),
			NumInputs:  gs.rand.Intn(3),
			NumOutputs: gs.rand.Intn(3),
		}
	}

	gs.seq++
	nodeID := fmt.Sprintf("n%03d", gs.seq)
	err := gs.emit(audtrace.Event{
		Kind:       audtrace.KindNodeCreated,
		NodeID:     nodeID,
		NodeType:   spec.Type,
		NumInputs:  spec.NumInputs,
		NumOutputs: spec.NumOutputs,
	})
	if err != nil {
		return "", err
	}
	gs.nodesArr = append(gs.nodesArr, nodeID)
	gs.specs[nodeID] = spec

	for _, param := range spec.Params {
		err = gs.emit(audtrace.Event{
			Kind:      audtrace.KindParamCreated,
			NodeID:    nodeID,
			ParamID:   param,
			ParamType: param,
		})
		if err != nil {
			return "", err
		}
		gs.params[nodeID] = append(gs.params[nodeID], param)
	}

	if gs.roll(30, 70) == 1 {
		// 70% chance the user dragged the node somewhere.
		err = gs.placeNode(nodeID)
		if err != nil {
			return "", err
		}
	}
	return nodeID, nil
}

func (gs *traceGenState) connect() error {
	src, err := gs.randNode(func(s nodeSpec) bool { return s.NumOutputs > 0 })
	if err != nil || src == "" {
		return err
	}
	dst, err := gs.randNode(func(s nodeSpec) bool { return s.NumInputs > 0 || len(s.Params) > 0 })
	if err != nil || dst == "" {
		return err
	}

	ev := audtrace.Event{
		Kind:          audtrace.KindNodesConnected,
		SourceID:      src,
		DestinationID: dst,
	}
	srcIndex := gs.rand.Intn(gs.specs[src].NumOutputs)
	if srcIndex > 0 || gs.randBool() {
		// Hosts omit an index when the call used the single-port default.
		ev.SourceOutput = go2.Pointer(srcIndex)
	}

	dstPort := ""
	if params := gs.params[dst]; len(params) > 0 && (gs.specs[dst].NumInputs == 0 || gs.roll(75, 25) == 1) {
		// Modulating a param instead of feeding an input, the way an LFO
		// drives an oscillator's frequency.
		ev.DestinationParamID = params[gs.rand.Intn(len(params))]
		dstPort = audgraph.ParamPortID(dst, ev.DestinationParamID)
	} else {
		dstIndex := gs.rand.Intn(gs.specs[dst].NumInputs)
		if dstIndex > 0 || gs.randBool() {
			ev.DestinationInput = go2.Pointer(dstIndex)
		}
		dstPort = audgraph.InputPortID(dst, dstIndex)
	}

	err = gs.emit(ev)
	if err != nil {
		return err
	}
	wireID := audgraph.WireID(audgraph.OutputPortID(src, srcIndex), dstPort)
	if _, ok := gs.wires[wireID]; !ok {
		gs.wiresArr = append(gs.wiresArr, wireID)
		gs.wires[wireID] = ev
	}
	return nil
}

func (gs *traceGenState) disconnect() error {
	if len(gs.wiresArr) == 0 {
		return gs.connect()
	}
	wireID := gs.wiresArr[gs.rand.Intn(len(gs.wiresArr))]
	ev := gs.wires[wireID]
	ev.Kind = audtrace.KindNodesDisconnected
	err := gs.emit(ev)
	if err != nil {
		return err
	}
	gs.forgetWire(wireID)
	return nil
}

func (gs *traceGenState) place() error {
	nodeID, err := gs.randNode(nil)
	if err != nil || nodeID == "" {
		return err
	}
	return gs.placeNode(nodeID)
}

func (gs *traceGenState) placeNode(nodeID string) error {
	return gs.emit(audtrace.Event{
		Kind:   audtrace.KindNodePlaced,
		NodeID: nodeID,
		X:      float64(gs.rand.Intn(1600) + 50),
		Y:      float64(gs.rand.Intn(900) + 50),
	})
}

func (gs *traceGenState) dispose() error {
	if len(gs.nodesArr) == 0 {
		_, err := gs.node()
		return err
	}
	i := gs.rand.Intn(len(gs.nodesArr))
	nodeID := gs.nodesArr[i]
	err := gs.emit(audtrace.Event{
		Kind:   audtrace.KindNodeDisposed,
		NodeID: nodeID,
	})
	if err != nil {
		return err
	}
	gs.nodesArr = append(gs.nodesArr[:i], gs.nodesArr[i+1:]...)
	delete(gs.specs, nodeID)
	delete(gs.params, nodeID)
	for _, wireID := range go2.Filter(gs.wiresArr, func(wireID string) bool {
		ev := gs.wires[wireID]
		return ev.SourceID == nodeID || ev.DestinationID == nodeID
	}) {
		gs.forgetWire(wireID)
	}
	return nil
}

func (gs *traceGenState) junk() error {
	kinds := []string{"screen-resized", "selection-changed", "param-automated", "context-suspended"}
	return gs.emit(audtrace.Event{
		Kind: kinds[gs.rand.Intn(len(kinds))],
		X:    float64(gs.rand.Intn(100)),
	})
}

// randNode picks a random live node satisfying pred, creating nodes until one
// does. A nil pred accepts any node.
func (gs *traceGenState) randNode(pred func(nodeSpec) bool) (string, error) {
	for attempts := 0; ; attempts++ {
		candidates := gs.nodesArr
		if pred != nil {
			candidates = go2.Filter(gs.nodesArr, func(nodeID string) bool {
				return pred(gs.specs[nodeID])
			})
		}
		if len(candidates) > 0 {
			return candidates[gs.rand.Intn(len(candidates))], nil
		}
		if attempts >= 8 {
			// Rolled nothing but destinations or sources, skip the event.
			return "", nil
		}
		_, err := gs.node()
		if err != nil {
			return "", err
		}
	}
}

func (gs *traceGenState) forgetWire(wireID string) {
	delete(gs.wires, wireID)
	for i, id := range gs.wiresArr {
		if id == wireID {
			gs.wiresArr = append(gs.wiresArr[:i], gs.wiresArr[i+1:]...)
			break
		}
	}
}

func (gs *traceGenState) randBool() bool {
	return gs.rand.Intn(2) == 0
}

func (gs *traceGenState) emit(ev audtrace.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	gs.b.Write(raw)
	gs.b.WriteByte('\n')
	return nil
}

func (gs *traceGenState) roll(probs ...int) int {
	max := 0
	for _, p := range probs {
		max += p
	}

	n := gs.rand.Intn(max)
	var acc int
	for i, p := range probs {
		if n >= acc && n < acc+p {
			return i
		}
		acc += p
	}

	panic("audchaos: unreachable")
}
