// Package audtrace decodes instrumentation traces of an audio graph session
// and replays them onto an audgraph.Graph.
//
// A trace is JSON Lines: one event object per line, discriminated by "kind",
// in the order the instrumented host emitted them. Ordering matters: param
// layout depends on how many params a node already had, so events must be
// applied as they arrived.
package audtrace

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"cdr.dev/slog"

	"oss.audgraph.dev/aud/audgraph"
	"oss.audgraph.dev/aud/lib/log"
)

const (
	KindContextCreated    = "context-created"
	KindNodeCreated       = "node-created"
	KindParamCreated      = "param-created"
	KindNodesConnected    = "nodes-connected"
	KindNodesDisconnected = "nodes-disconnected"
	KindNodeDisposed      = "node-disposed"
	KindNodePlaced        = "node-placed"
)

// Event is one trace line. Fields are a union across kinds; decoding leaves
// the ones a kind does not carry at their zero value. The two port indices
// are pointers so an absent index can be told apart from an explicit 0.
type Event struct {
	Kind string `json:"kind"`

	ContextID  string `json:"contextId,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`

	NodeID     string `json:"nodeId,omitempty"`
	NodeType   string `json:"nodeType,omitempty"`
	NumInputs  int    `json:"numberOfInputs,omitempty"`
	NumOutputs int    `json:"numberOfOutputs,omitempty"`

	ParamID   string `json:"paramId,omitempty"`
	ParamType string `json:"paramType,omitempty"`

	SourceID           string `json:"sourceId,omitempty"`
	SourceOutput       *int   `json:"sourceOutputIndex,omitempty"`
	DestinationID      string `json:"destinationId,omitempty"`
	DestinationInput   *int   `json:"destinationInputIndex,omitempty"`
	DestinationParamID string `json:"destinationParamId,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
}

// Parse decodes a JSONL trace. Blank lines are skipped; a malformed line
// fails the whole parse with its line number.
func Parse(r io.Reader) ([]Event, error) {
	var evs []Event
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		raw := bytes.TrimSpace(s.Bytes())
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("trace line %d: %w", line, err)
		}
		if ev.Kind == "" {
			return nil, fmt.Errorf("trace line %d: missing event kind", line)
		}
		evs = append(evs, ev)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return evs, nil
}

// Apply replays one event onto g. Events referencing unknown nodes or ports
// are errors; events of unknown kinds are skipped so traces from newer
// instrumentation still load.
func Apply(ctx context.Context, g *audgraph.Graph, ev Event) error {
	switch ev.Kind {
	case KindContextCreated:
		if ev.ContextID != "" {
			g.Name = ev.ContextID
		}
		if ev.SampleRate > 0 {
			g.SampleRate = ev.SampleRate
		}
		return nil
	case KindNodeCreated:
		if ev.NodeID == "" {
			return fmt.Errorf("node-created: missing nodeId")
		}
		g.AddNode(ev.NodeID, ev.NodeType, ev.NumInputs, ev.NumOutputs)
		return nil
	case KindParamCreated:
		n := g.Node(ev.NodeID)
		if n == nil {
			return fmt.Errorf("param-created: no node %q", ev.NodeID)
		}
		n.AddParamPort(ev.ParamID, ev.ParamType)
		return nil
	case KindNodesConnected:
		if ev.DestinationParamID != "" {
			_, err := g.ConnectParam(ev.SourceID, indexOrZero(ev.SourceOutput), ev.DestinationID, ev.DestinationParamID)
			return err
		}
		_, err := g.Connect(ev.SourceID, indexOrZero(ev.SourceOutput), ev.DestinationID, indexOrZero(ev.DestinationInput))
		return err
	case KindNodesDisconnected:
		if ev.DestinationParamID != "" {
			return g.DisconnectParam(ev.SourceID, indexOrZero(ev.SourceOutput), ev.DestinationID, ev.DestinationParamID)
		}
		return g.Disconnect(ev.SourceID, indexOrZero(ev.SourceOutput), ev.DestinationID, indexOrZero(ev.DestinationInput))
	case KindNodeDisposed:
		return g.RemoveNode(ev.NodeID)
	case KindNodePlaced:
		n := g.Node(ev.NodeID)
		if n == nil {
			return fmt.Errorf("node-placed: no node %q", ev.NodeID)
		}
		n.SetCenter(ev.X, ev.Y)
		return nil
	default:
		log.Debug(ctx, "skipping unknown trace event", slog.F("kind", ev.Kind))
		return nil
	}
}

// Load parses a trace and replays it onto a fresh graph. The first failing
// event aborts the load.
func Load(ctx context.Context, name string, ruler audgraph.TextMeasurer, r io.Reader) (*audgraph.Graph, error) {
	evs, err := Parse(r)
	if err != nil {
		return nil, err
	}
	g := audgraph.NewGraph(name, ruler)
	for i, ev := range evs {
		if err := Apply(ctx, g, ev); err != nil {
			return nil, fmt.Errorf("trace event %d (%s): %w", i+1, ev.Kind, err)
		}
	}
	return g, nil
}

// indexOrZero coerces an absent port index to 0: instrumentation layers omit
// the index when the traced call used the single-port default. An explicit 0
// decodes to the same value either way.
func indexOrZero(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
