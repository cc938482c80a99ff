// Package audlib turns a raw instrumentation trace into a renderable
// diagram in one call.
package audlib

import (
	"context"
	"errors"
	"strings"

	"oss.terrastruct.com/xdefer"

	"oss.audgraph.dev/aud/audexporter"
	"oss.audgraph.dev/aud/audgraph"
	"oss.audgraph.dev/aud/audtarget"
	"oss.audgraph.dev/aud/audtrace"
)

type CompileOptions struct {
	Ruler audgraph.TextMeasurer

	// Layout runs after the trace is replayed and before export. Traces
	// normally carry node-placed events, so this is only for callers that
	// want to position whatever the trace left unplaced.
	Layout audgraph.LayoutGraph
}

func Compile(ctx context.Context, trace string, opts *CompileOptions) (_ *audtarget.Diagram, _ *audgraph.Graph, err error) {
	defer xdefer.Errorf(&err, "failed to compile trace")

	if opts == nil {
		opts = &CompileOptions{}
	}
	if opts.Ruler == nil {
		return nil, nil, errors.New("no ruler to measure labels with")
	}

	g, err := audtrace.Load(ctx, "", opts.Ruler, strings.NewReader(trace))
	if err != nil {
		return nil, nil, err
	}

	if opts.Layout != nil {
		err = opts.Layout(ctx, g)
		if err != nil {
			return nil, nil, err
		}
	}

	diagram, err := audexporter.Export(ctx, g)
	return diagram, g, err
}
